package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/orgmatch/pkg/directory"
	"github.com/otherjamesbrown/orgmatch/pkg/match"
)

// loadOrgChart reads an org structure YAML file rooted at a single node.
func loadOrgChart(path string) (*directory.OrgNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading org chart: %w", err)
	}

	var root directory.OrgNode
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing org chart %s: %w", path, err)
	}
	if root.Name == "" {
		return nil, fmt.Errorf("org chart %s has no root name", path)
	}
	return &root, nil
}

// loadIdentities reads external identities from a YAML file. The file is
// either a list of identity objects or a bare list of identifier strings.
func loadIdentities(path string) ([]match.ExternalIdentity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading identities: %w", err)
	}

	var identities []match.ExternalIdentity
	if err := yaml.Unmarshal(data, &identities); err == nil {
		return identities, nil
	}

	// Fall back to a bare list of identifiers.
	var ids []string
	if err := yaml.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parsing identities %s: %w", path, err)
	}

	identities = make([]match.ExternalIdentity, 0, len(ids))
	for _, id := range ids {
		identities = append(identities, match.ExternalIdentity{ID: id})
	}
	return identities, nil
}
