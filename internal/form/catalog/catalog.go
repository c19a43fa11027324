// Package catalog loads the form definitions served by the intake API.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"formdesk/internal/domain"
	"formdesk/internal/form"
)

//go:embed definitions/*.yaml
var embedded embed.FS

type fileStep struct {
	ID     string           `yaml:"id"`
	Title  string           `yaml:"title"`
	Fields []form.FieldRule `yaml:"fields"`
}

type fileDefinition struct {
	Type        string     `yaml:"type"`
	Category    string     `yaml:"category"`
	Title       string     `yaml:"title"`
	MaxUploadMB int64      `yaml:"max_upload_mb"`
	Steps       []fileStep `yaml:"steps"`
}

// Catalog is an immutable registry of form definitions keyed by form type.
type Catalog struct {
	defs  map[string]*form.Definition
	types []string
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the catalog built from the embedded definitions.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Load(embedded, "definitions")
	})
	return defaultCat, defaultErr
}

// MustDefault is Default for program start-up and tests.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Load parses every *.yaml file in dir of fsys.
func Load(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("catalog.Load: %w", err)
	}
	c := &Catalog{defs: make(map[string]*form.Definition)}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("catalog.Load: %w", err)
		}
		def, err := Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("catalog.Load %s: %w", e.Name(), err)
		}
		if _, dup := c.defs[def.Type]; dup {
			return nil, fmt.Errorf("catalog.Load %s: duplicate form type %q", e.Name(), def.Type)
		}
		c.defs[def.Type] = def
		c.types = append(c.types, def.Type)
	}
	sort.Strings(c.types)
	return c, nil
}

// New builds a catalog from already constructed definitions.
func New(defs ...*form.Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]*form.Definition, len(defs))}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.defs[def.Type]; dup {
			return nil, fmt.Errorf("catalog.New: duplicate form type %q", def.Type)
		}
		c.defs[def.Type] = def
		c.types = append(c.types, def.Type)
	}
	sort.Strings(c.types)
	return c, nil
}

// Parse decodes one YAML definition, resolves named rules and validates the step partition.
func Parse(raw []byte) (*form.Definition, error) {
	var fd fileDefinition
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	if fd.Type == "" {
		return nil, fmt.Errorf("definition has no type")
	}

	var (
		rules []form.FieldRule
		steps = make([]form.Step, 0, len(fd.Steps))
	)
	for _, st := range fd.Steps {
		step := form.Step{ID: st.ID, Title: st.Title}
		for _, rule := range st.Fields {
			if err := resolveRule(&rule); err != nil {
				return nil, fmt.Errorf("%s.%s: %w", fd.Type, rule.Key, err)
			}
			rules = append(rules, rule)
			step.FieldKeys = append(step.FieldKeys, rule.Key)
		}
		steps = append(steps, step)
	}

	schema, err := form.BuildSchema(rules...)
	if err != nil {
		return nil, err
	}
	def := &form.Definition{
		Type:           fd.Type,
		Category:       fd.Category,
		Title:          fd.Title,
		Schema:         schema,
		Steps:          steps,
		MaxUploadBytes: fd.MaxUploadMB * 1024 * 1024,
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// Get returns the definition for formType.
func (c *Catalog) Get(formType string) (*form.Definition, error) {
	def, ok := c.defs[formType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownFormType, formType)
	}
	return def, nil
}

// Has reports whether formType is known.
func (c *Catalog) Has(formType string) bool {
	_, ok := c.defs[formType]
	return ok
}

// Types returns the known form types sorted.
func (c *Catalog) Types() []string {
	out := make([]string, len(c.types))
	copy(out, c.types)
	return out
}

// All returns every definition ordered by form type.
func (c *Catalog) All() []*form.Definition {
	out := make([]*form.Definition, 0, len(c.types))
	for _, t := range c.types {
		out = append(out, c.defs[t])
	}
	return out
}
