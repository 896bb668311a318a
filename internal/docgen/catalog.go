// Package docgen fills Word (.docx) templates with case data. Templates are
// listed in a templates.yaml catalog that lives next to the .docx files.
package docgen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// CatalogFile is the name of the catalog inside the templates directory.
const CatalogFile = "templates.yaml"

// Template kinds.
const (
	KindAgreement = "agreement"
	KindGeneric   = "generic"
)

// Catalog errors.
var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidCatalog   = errors.New("invalid template catalog")
	ErrMissingKey       = errors.New("missing template data")
)

// Template describes one entry of the catalog.
type Template struct {
	Name        string   `yaml:"name" json:"name"`
	File        string   `yaml:"file" json:"file"`
	Kind        string   `yaml:"kind" json:"kind"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Output      string   `yaml:"output,omitempty" json:"output,omitempty"`
	Required    []string `yaml:"required,omitempty" json:"required,omitempty"`
}

// Catalog is the set of templates available in a directory.
type Catalog struct {
	Dir       string     `yaml:"-" json:"dir"`
	Templates []Template `yaml:"templates" json:"templates"`
}

// LoadCatalog reads dir/templates.yaml. A directory without a catalog
// yields an empty one.
func LoadCatalog(dir string) (*Catalog, error) {
	c := &Catalog{Dir: dir}
	data, err := os.ReadFile(filepath.Join(dir, CatalogFile))
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading template catalog: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	seen := make(map[string]bool, len(c.Templates))
	for i, t := range c.Templates {
		if t.Name == "" || t.File == "" {
			return fmt.Errorf("%w: entry %d needs a name and a file", ErrInvalidCatalog, i+1)
		}
		if seen[t.Name] {
			return fmt.Errorf("%w: duplicate template %q", ErrInvalidCatalog, t.Name)
		}
		seen[t.Name] = true
		switch t.Kind {
		case KindAgreement, KindGeneric:
		case "":
			c.Templates[i].Kind = KindGeneric
		default:
			return fmt.Errorf("%w: template %q has unknown kind %q", ErrInvalidCatalog, t.Name, t.Kind)
		}
		if t.Output != "" {
			if _, err := template.New(t.Name).Parse(t.Output); err != nil {
				return fmt.Errorf("%w: template %q output pattern: %v", ErrInvalidCatalog, t.Name, err)
			}
		}
	}
	return nil
}

// Lookup returns the template with the given name.
func (c *Catalog) Lookup(name string) (Template, error) {
	for _, t := range c.Templates {
		if t.Name == name {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
}

// FirstOfKind returns the first template of the given kind.
func (c *Catalog) FirstOfKind(kind string) (Template, error) {
	for _, t := range c.Templates {
		if t.Kind == kind {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: no %s template", ErrTemplateNotFound, kind)
}

// Path returns the absolute location of t's .docx file.
func (c *Catalog) Path(t Template) string {
	if filepath.IsAbs(t.File) {
		return t.File
	}
	return filepath.Join(c.Dir, t.File)
}

// OutputName renders t's output pattern against data. Path separators in
// the result are replaced so the name stays inside the target folder.
// Templates without a pattern fall back to fallback.
func OutputName(t Template, data map[string]any, fallback string) (string, error) {
	name := fallback
	if t.Output != "" {
		tmpl, err := template.New(t.Name).Option("missingkey=error").Parse(t.Output)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
		var b strings.Builder
		if err := tmpl.Execute(&b, data); err != nil {
			return "", fmt.Errorf("%w: output name for %s: %v", ErrMissingKey, t.Name, err)
		}
		name = b.String()
	}
	name = strings.NewReplacer("/", "-", `\`, "-").Replace(strings.TrimSpace(name))
	if name == "" {
		return "", fmt.Errorf("%w: empty output name for %s", ErrInvalidCatalog, t.Name)
	}
	if !strings.HasSuffix(strings.ToLower(name), ".docx") {
		name += ".docx"
	}
	return name, nil
}

// CheckRequired verifies that every dotted key in t.Required resolves to a
// non-empty value in data.
func CheckRequired(t Template, data map[string]any) error {
	var missing []string
	for _, key := range t.Required {
		if v, ok := lookupPath(data, key); !ok || isEmpty(v) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingKey, strings.Join(missing, ", "))
	}
	return nil
}

func lookupPath(data map[string]any, path string) (any, bool) {
	var cur any = data
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case []map[string]any:
		return len(x) == 0
	}
	return false
}
