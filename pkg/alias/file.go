package alias

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileStore persists the alias map as a flat YAML mapping of external
// identifier to canonical identifier. The file is read at process start and
// appended to by the review tool.
type FileStore struct {
	path string
	*Store
}

// OpenFile loads a file-backed store. A missing file yields an empty store;
// the file is created on first Save.
func OpenFile(path string) (*FileStore, error) {
	fs := &FileStore{path: path, Store: NewStore()}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading alias file: %w", err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing alias file %s: %w", path, err)
	}
	fs.Store = NewStoreFrom(raw)
	return fs, nil
}

// Save writes the current map back to disk.
func (fs *FileStore) Save() error {
	raw := make(map[string]string, fs.Len())
	for _, e := range fs.Entries() {
		raw[e.External] = e.Canonical
	}

	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshaling aliases: %w", err)
	}

	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating alias directory: %w", err)
		}
	}

	if err := os.WriteFile(fs.path, data, 0o600); err != nil {
		return fmt.Errorf("writing alias file: %w", err)
	}
	return nil
}

// Path returns the backing file path.
func (fs *FileStore) Path() string {
	return fs.path
}
