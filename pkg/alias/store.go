// Package alias holds the manually curated override map from external
// identifiers to canonical identifiers. The store is consulted before any
// algorithmic matching; an identifier with a recorded alias never falls
// through to fuzzy matching. Entries are created by humans reviewing the
// needs-resolution queue, between pipeline runs; within a run the store is
// read-only.
package alias

import (
	"sort"
	"strings"

	"github.com/otherjamesbrown/orgmatch/pkg/directory"
)

// Normalize lower-cases an identifier and strips surrounding and embedded
// whitespace. Applied to both keys and values before storage and lookup.
func Normalize(id string) string {
	return strings.ToLower(strings.Join(strings.Fields(id), ""))
}

// Store is an in-memory alias map with normalized keys.
type Store struct {
	entries map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]string)}
}

// NewStoreFrom creates a store seeded from a raw map, normalizing both
// sides of every entry.
func NewStoreFrom(raw map[string]string) *Store {
	s := NewStore()
	for k, v := range raw {
		s.Set(k, v)
	}
	return s
}

// Set records or corrects an override. Entries are never auto-deleted.
func (s *Store) Set(external, canonical string) {
	s.entries[Normalize(external)] = Normalize(canonical)
}

// Resolve returns the canonical identifier for an external identifier, or
// the normalized input unchanged when no override exists.
func (s *Store) Resolve(id string) string {
	norm := Normalize(id)
	if canonical, ok := s.entries[norm]; ok {
		return canonical
	}
	return norm
}

// Has reports whether an override is recorded for the identifier.
func (s *Store) Has(id string) bool {
	_, ok := s.entries[Normalize(id)]
	return ok
}

// IsKnown reports whether the alias-resolved identifier exists in the
// directory.
func (s *Store) IsKnown(id string, dir *directory.Directory) bool {
	return dir != nil && dir.Contains(s.Resolve(id))
}

// Len returns the number of recorded overrides.
func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns all overrides sorted by external identifier.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for k, v := range s.entries {
		out = append(out, Entry{External: k, Canonical: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].External < out[j].External })
	return out
}

// Entry is one recorded override.
type Entry struct {
	External  string `yaml:"external" json:"external"`
	Canonical string `yaml:"canonical" json:"canonical"`
}
