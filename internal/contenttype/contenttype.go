package contenttype

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"backoffice/internal/textutil"
)

// Field describes one field of a content type.
type Field struct {
	Name string
	Type string
	// Uses names the fields a slug field is generated from.
	Uses []string
}

// ContentType is a content definition from contenttypes.yml.
type ContentType struct {
	Slug         string
	Name         string
	SingularName string
	SingularSlug string
	Fields       []Field
}

// HasField reports whether the type defines a field called name.
func (ct *ContentType) HasField(name string) bool {
	return ct.Field(name) != nil
}

// Field returns the named field, or nil.
func (ct *ContentType) Field(name string) *Field {
	if ct == nil {
		return nil
	}
	for i := range ct.Fields {
		if ct.Fields[i].Name == name {
			return &ct.Fields[i]
		}
	}
	return nil
}

// Registry holds content types in definition order.
type Registry struct {
	types []ContentType
}

type rawField struct {
	Type string    `yaml:"type"`
	Uses yaml.Node `yaml:"uses"`
}

type rawType struct {
	Name         string    `yaml:"name"`
	Slug         string    `yaml:"slug"`
	SingularName string    `yaml:"singular_name"`
	SingularSlug string    `yaml:"singular_slug"`
	Fields       yaml.Node `yaml:"fields"`
}

// Load reads a contenttypes.yml file. A missing file yields an empty registry.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Registry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read content types: %w", err)
	}
	return Parse(data)
}

// Parse decodes contenttypes.yml content, keeping the order of definitions.
func Parse(data []byte) (*Registry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse content types: %w", err)
	}
	reg := &Registry{}
	if len(doc.Content) == 0 {
		return reg, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("parse content types: top level must be a mapping")
	}

	titler := cases.Title(language.English)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		var raw rawType
		if err := root.Content[i+1].Decode(&raw); err != nil {
			return nil, fmt.Errorf("content type %s: %w", key, err)
		}
		ct := ContentType{
			Slug:         strings.TrimSpace(raw.Slug),
			Name:         strings.TrimSpace(raw.Name),
			SingularName: strings.TrimSpace(raw.SingularName),
			SingularSlug: strings.TrimSpace(raw.SingularSlug),
		}
		if ct.Slug == "" {
			ct.Slug = textutil.Slugify(key, 0)
		}
		if ct.Name == "" {
			ct.Name = titler.String(strings.ReplaceAll(ct.Slug, "-", " "))
		}
		if ct.SingularName == "" {
			ct.SingularName = ct.Name
		}
		if ct.SingularSlug == "" {
			ct.SingularSlug = textutil.Slugify(ct.SingularName, 0)
		}
		fields, err := decodeFields(&raw.Fields)
		if err != nil {
			return nil, fmt.Errorf("content type %s: %w", key, err)
		}
		ct.Fields = fields
		reg.types = append(reg.types, ct)
	}
	return reg, nil
}

func decodeFields(node *yaml.Node) ([]Field, error) {
	if node == nil || node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.New("fields must be a mapping")
	}
	fields := make([]Field, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var raw rawField
		if err := node.Content[i+1].Decode(&raw); err != nil {
			return nil, fmt.Errorf("field %s: %w", node.Content[i].Value, err)
		}
		field := Field{Name: node.Content[i].Value, Type: raw.Type}
		switch raw.Uses.Kind {
		case yaml.ScalarNode:
			field.Uses = []string{raw.Uses.Value}
		case yaml.SequenceNode:
			if err := raw.Uses.Decode(&field.Uses); err != nil {
				return nil, fmt.Errorf("field %s uses: %w", field.Name, err)
			}
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// All returns the content types in definition order.
func (r *Registry) All() []ContentType {
	if r == nil {
		return nil
	}
	out := make([]ContentType, len(r.types))
	copy(out, r.types)
	return out
}

// Get resolves a content type by slug or singular slug.
func (r *Registry) Get(slug string) (*ContentType, bool) {
	if r == nil {
		return nil, false
	}
	slug = strings.TrimSpace(slug)
	for i := range r.types {
		if r.types[i].Slug == slug || r.types[i].SingularSlug == slug {
			ct := r.types[i]
			return &ct, true
		}
	}
	return nil, false
}
