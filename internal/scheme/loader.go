package scheme

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	errMissingID   = errors.New("scheme: scheme_id is required")
	errMissingName = errors.New("scheme: name is required")
)

// CorpusFile is the top-level structure of a scheme corpus YAML file.
//
// Example:
//
//	schemes:
//	  - scheme_id: pm_kisan
//	    name: "पीएम किसान सन्मान निधी"
//	    category: "शेतकरी"
//	    benefits: "वार्षिक ₹6000 थेट बँक खात्यात"
//	    rules:
//	      occupation_in: [farmer]
//	      max_income_annual: 200000
type CorpusFile struct {
	Schemes []Scheme `yaml:"schemes"`
}

// Corpus is the immutable, ordered scheme collection loaded at startup.
// Order is preserved from the source file; the ranker uses it for stable
// tie-breaking. Safe for concurrent use after construction.
type Corpus struct {
	schemes []Scheme
	byID    map[string]*Scheme
}

// NewCorpus builds a corpus from schemes, validating each entry and rejecting
// duplicate IDs.
func NewCorpus(schemes []Scheme) (*Corpus, error) {
	c := &Corpus{
		schemes: make([]Scheme, len(schemes)),
		byID:    make(map[string]*Scheme, len(schemes)),
	}
	copy(c.schemes, schemes)

	for i := range c.schemes {
		s := &c.schemes[i]
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("scheme: corpus entry %d: %w", i, err)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("scheme: duplicate scheme_id %q", s.ID)
		}
		c.byID[s.ID] = s
	}
	return c, nil
}

// LoadCorpus reads and parses a scheme corpus YAML file from disk.
func LoadCorpus(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scheme: open corpus file %q: %w", path, err)
	}
	defer f.Close()

	c, err := LoadCorpusFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("scheme: parse corpus file %q: %w", path, err)
	}
	return c, nil
}

// LoadCorpusFromReader parses corpus YAML from an [io.Reader]. Useful in tests
// where corpora are constructed from string literals.
func LoadCorpusFromReader(r io.Reader) (*Corpus, error) {
	var cf CorpusFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // reject unknown keys to catch typos
	if err := dec.Decode(&cf); err != nil {
		return nil, fmt.Errorf("scheme: decode corpus yaml: %w", err)
	}
	return NewCorpus(cf.Schemes)
}

// All returns the schemes in corpus order. Callers must not mutate the
// returned slice.
func (c *Corpus) All() []Scheme {
	return c.schemes
}

// Get returns the scheme with the given ID, or (nil, false) when absent.
func (c *Corpus) Get(id string) (*Scheme, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Len returns the number of schemes in the corpus.
func (c *Corpus) Len() int {
	return len(c.schemes)
}
