// Package schema loads tag schema definitions: the valid fields, alias
// mappings, primary-key flags, and row-ignore symbols for each tag type.
//
// The schema is a fixed external input; this package never infers fields
// from data. A default schema is embedded in the binary and can be replaced
// with --schema or the DECKTAB_SCHEMA environment variable.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tailscale/hujson"
)

// DefaultVersion names the embedded schema.
const DefaultVersion = "veda-tags-2024"

//go:embed veda-tags.json
var embeddedSchema []byte

// FieldDef describes one valid field of a tag type.
type FieldDef struct {
	// Name is the field name as written in workbooks.
	Name string `json:"name"`
	// UseName is the canonical name; defaults to Name when empty.
	UseName string `json:"use_name,omitempty"`
	// Aliases lists alternative header spellings that resolve to UseName.
	Aliases []string `json:"aliases,omitempty"`
	// QueryField marks the field as part of the table's primary key.
	QueryField bool `json:"query_field,omitempty"`
	// Required marks the field as mandatory during validation.
	Required bool `json:"required,omitempty"`
	// RowIgnoreSymbol lists comment prefixes that, when leading a value in
	// this field, mark the row as annotated rather than changed.
	RowIgnoreSymbol []string `json:"row_ignore_symbol,omitempty"`
}

// TagDef describes one tag type.
type TagDef struct {
	// TagName is the tag type (matched case-insensitively).
	TagName string `json:"tag_name"`
	// ValidFields lists the tag's fields in canonical column order.
	ValidFields []FieldDef `json:"valid_fields"`
}

// Schema provides lookups over a set of tag definitions.
type Schema struct {
	// Version identifies the loaded schema for index stamping.
	Version string

	tags        map[string]TagDef
	fieldsByUse map[string]map[string]FieldDef // tag -> lower(use_name) -> field
	aliases     map[string]map[string]string   // tag -> lower(alias) -> use_name
}

// Default returns the embedded schema.
func Default() (*Schema, error) {
	s, err := parse(embeddedSchema)
	if err != nil {
		return nil, fmt.Errorf("embedded schema: %w", err)
	}
	s.Version = DefaultVersion
	return s, nil
}

// Load reads a schema file. The file may carry comments and trailing commas.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	s, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing schema %s: %w", path, err)
	}
	s.Version = DefaultVersion
	return s, nil
}

func parse(data []byte) (*Schema, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, err
	}

	var defs []TagDef
	if err := json.Unmarshal(std, &defs); err != nil {
		return nil, err
	}

	s := &Schema{
		tags:        make(map[string]TagDef),
		fieldsByUse: make(map[string]map[string]FieldDef),
		aliases:     make(map[string]map[string]string),
	}

	for _, def := range defs {
		tagName := strings.ToLower(strings.TrimSpace(def.TagName))
		if tagName == "" {
			continue
		}
		s.tags[tagName] = def

		fields := make(map[string]FieldDef)
		aliases := make(map[string]string)
		for _, field := range def.ValidFields {
			if field.Name == "" {
				continue
			}
			useName := field.UseName
			if useName == "" {
				useName = field.Name
			}
			fields[strings.ToLower(useName)] = field
			if !strings.EqualFold(field.Name, useName) {
				aliases[strings.ToLower(field.Name)] = useName
			}
			for _, alias := range field.Aliases {
				aliases[strings.ToLower(alias)] = useName
			}
		}
		s.fieldsByUse[tagName] = fields
		s.aliases[tagName] = aliases
	}

	return s, nil
}

// HasTag reports whether the schema defines the tag type.
func (s *Schema) HasTag(tagType string) bool {
	_, ok := s.tags[strings.ToLower(tagType)]
	return ok
}

// ValidFields returns the canonical field names of a tag type in schema
// order, or nil for an unknown tag.
func (s *Schema) ValidFields(tagType string) []string {
	def, ok := s.tags[strings.ToLower(tagType)]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(def.ValidFields))
	for _, field := range def.ValidFields {
		useName := field.UseName
		if useName == "" {
			useName = field.Name
		}
		names = append(names, useName)
	}
	return names
}

// PrimaryKeys returns the canonical names of fields flagged as query fields,
// in schema order.
func (s *Schema) PrimaryKeys(tagType string) []string {
	def, ok := s.tags[strings.ToLower(tagType)]
	if !ok {
		return nil
	}
	var keys []string
	for _, field := range def.ValidFields {
		if !field.QueryField {
			continue
		}
		useName := field.UseName
		if useName == "" {
			useName = field.Name
		}
		keys = append(keys, useName)
	}
	return keys
}

// CanonicalName resolves a raw header (alias or canonical, case-insensitive)
// to the schema's canonical spelling. ok is false when the header is unknown
// to the tag type.
func (s *Schema) CanonicalName(tagType, header string) (string, bool) {
	tagName := strings.ToLower(tagType)
	headerLower := strings.ToLower(strings.TrimSpace(header))

	if useName, ok := s.aliases[tagName][headerLower]; ok {
		return useName, true
	}
	if field, ok := s.fieldsByUse[tagName][headerLower]; ok {
		useName := field.UseName
		if useName == "" {
			useName = field.Name
		}
		return useName, true
	}
	return "", false
}

// Field returns the full definition for a canonical name or alias.
func (s *Schema) Field(tagType, header string) (FieldDef, bool) {
	canonical, ok := s.CanonicalName(tagType, header)
	if !ok {
		return FieldDef{}, false
	}
	field, ok := s.fieldsByUse[strings.ToLower(tagType)][strings.ToLower(canonical)]
	return field, ok
}

// RowIgnoreSymbols returns the comment prefixes recognized for a field, or
// nil when the field has none.
func (s *Schema) RowIgnoreSymbols(tagType, field string) []string {
	def, ok := s.Field(tagType, field)
	if !ok {
		return nil
	}
	return def.RowIgnoreSymbol
}

// RequiredFields returns the canonical names of required fields.
func (s *Schema) RequiredFields(tagType string) []string {
	def, ok := s.tags[strings.ToLower(tagType)]
	if !ok {
		return nil
	}
	var required []string
	for _, field := range def.ValidFields {
		if !field.Required {
			continue
		}
		useName := field.UseName
		if useName == "" {
			useName = field.Name
		}
		required = append(required, useName)
	}
	return required
}
