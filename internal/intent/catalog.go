package intent

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingField is returned when a declared intent lacks id, name or owned_scope
	ErrMissingField = errors.New("intent missing required field")
	// ErrDuplicateID is returned when two intents share an id
	ErrDuplicateID = errors.New("duplicate intent id")
	// ErrInvalidStatus is returned for a status outside PENDING, IN_PROGRESS, COMPLETED
	ErrInvalidStatus = errors.New("invalid intent status")
	// ErrInvalidDocument is returned when the root active_intents list is absent
	ErrInvalidDocument = errors.New("invalid intents document")
)

// rawIntent distinguishes an absent owned_scope from an empty one
type rawIntent struct {
	ID                 string    `yaml:"id"`
	Name               string    `yaml:"name"`
	Status             Status    `yaml:"status"`
	OwnedScope         *[]string `yaml:"owned_scope"`
	Constraints        []string  `yaml:"constraints"`
	AcceptanceCriteria []string  `yaml:"acceptance_criteria"`
}

type document struct {
	ActiveIntents *[]rawIntent `yaml:"active_intents"`
}

// Catalog is an immutable, concurrency-safe set of intents plus the ignore list
type Catalog struct {
	intents []Intent
	byID    map[string]int
	ignore  []string
	source  string
}

// NewCatalog builds a catalog from already-validated intents
func NewCatalog(intents []Intent, ignore []string) (*Catalog, error) {
	c := &Catalog{
		intents: make([]Intent, 0, len(intents)),
		byID:    make(map[string]int, len(intents)),
		ignore:  append([]string(nil), ignore...),
		source:  IntentsFile,
	}
	for _, in := range intents {
		if in.ID == "" {
			return nil, fmt.Errorf("%w: id", ErrMissingField)
		}
		if _, dup := c.byID[in.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, in.ID)
		}
		if in.Status == "" {
			in.Status = StatusPending
		}
		if !in.Status.Valid() {
			return nil, fmt.Errorf("%w: %q on intent %s", ErrInvalidStatus, in.Status, in.ID)
		}
		c.byID[in.ID] = len(c.intents)
		c.intents = append(c.intents, in.clone())
	}
	return c, nil
}

// IntentsFile is the conventional name of the declaration file, used in messages
const IntentsFile = "active_intents.yaml"

// Parse decodes an intents document. Any record missing id, name or
// owned_scope makes the whole document invalid.
func Parse(data []byte) ([]Intent, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.ActiveIntents == nil {
		return nil, fmt.Errorf("%w: missing active_intents list", ErrInvalidDocument)
	}

	out := make([]Intent, 0, len(*doc.ActiveIntents))
	for idx, raw := range *doc.ActiveIntents {
		switch {
		case raw.ID == "":
			return nil, fmt.Errorf("%w: id (record %d)", ErrMissingField, idx)
		case raw.Name == "":
			return nil, fmt.Errorf("%w: name (intent %s)", ErrMissingField, raw.ID)
		case raw.OwnedScope == nil:
			return nil, fmt.Errorf("%w: owned_scope (intent %s)", ErrMissingField, raw.ID)
		}
		out = append(out, Intent{
			ID:                 raw.ID,
			Name:               raw.Name,
			Status:             raw.Status,
			OwnedScope:         *raw.OwnedScope,
			Constraints:        raw.Constraints,
			AcceptanceCriteria: raw.AcceptanceCriteria,
		})
	}
	return out, nil
}

// Load reads the intents document at intentsPath and the ignore list at
// ignorePath. A missing intents file is an error; a missing ignore list is not.
func Load(intentsPath, ignorePath string) (*Catalog, error) {
	// #nosec G304 - path comes from process configuration
	data, err := os.ReadFile(intentsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read intents: %w", err)
	}
	intents, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", intentsPath, err)
	}
	ignore, err := LoadIgnoreList(ignorePath)
	if err != nil {
		return nil, err
	}
	return NewCatalog(intents, ignore)
}

// Get returns a copy of the intent with the given id
func (c *Catalog) Get(id string) (Intent, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Intent{}, false
	}
	return c.intents[idx].clone(), true
}

// Has reports whether id is declared
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// All returns copies of every intent in declaration order
func (c *Catalog) All() []Intent {
	out := make([]Intent, len(c.intents))
	for i, in := range c.intents {
		out[i] = in.clone()
	}
	return out
}

// IDs returns every intent id in declaration order
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.intents))
	for i, in := range c.intents {
		out[i] = in.ID
	}
	return out
}

// Len returns the number of declared intents
func (c *Catalog) Len() int { return len(c.intents) }

// Ignore returns the ignore-list patterns
func (c *Catalog) Ignore() []string {
	return append([]string(nil), c.ignore...)
}

// Source names the declaration file for messages
func (c *Catalog) Source() string { return c.source }

// Constraints returns the constraints of an intent
func (c *Catalog) Constraints(id string) ([]string, error) {
	in, ok := c.Get(id)
	if !ok {
		return nil, fmt.Errorf("intent %s not found", id)
	}
	return in.Constraints, nil
}
