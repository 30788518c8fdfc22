// Package draft persists the raw airdrop form between sessions.
package draft

import (
	"fmt"

	"github.com/Mohsinsiddi/tsender/internal/config"
	"github.com/Mohsinsiddi/tsender/internal/form"
)

// Key is the entry the form is stored under.
const Key = "tsender.airdrop-form"

type document map[string]form.Fields

// Store reads and writes the draft file.
type Store struct {
	path string
}

// NewStore creates a Store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load returns the saved fields. A missing or unreadable draft yields
// empty fields.
func (s *Store) Load() form.Fields {
	doc, err := config.LoadJSON[document](s.path)
	if err != nil || doc == nil || *doc == nil {
		return form.Fields{}
	}
	return (*doc)[Key]
}

// Save replaces the stored fields, keeping any other keys in the file.
func (s *Store) Save(fields form.Fields) error {
	doc, err := config.LoadJSON[document](s.path)
	if err != nil || doc == nil || *doc == nil {
		d := document{}
		doc = &d
	}
	(*doc)[Key] = fields
	if err := config.SaveJSON(s.path, *doc); err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}

// Clear removes the stored fields.
func (s *Store) Clear() error {
	doc, err := config.LoadJSON[document](s.path)
	if err != nil || doc == nil || *doc == nil {
		return s.write(document{})
	}
	delete(*doc, Key)
	return s.write(*doc)
}

func (s *Store) write(doc document) error {
	if err := config.SaveJSON(s.path, doc); err != nil {
		return fmt.Errorf("clearing draft: %w", err)
	}
	return nil
}
