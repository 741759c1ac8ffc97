package record

import (
	"fmt"
)

// Kind is the declared type of a schema field.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindUint16 Kind = "uint16"
	KindBool   Kind = "bool"
	// KindUint64 and KindUint128 are unsigned integers carried as decimal
	// strings, the way the contracts serialize Uint64 and Uint128.
	KindUint64  Kind = "uint64"
	KindUint128 Kind = "uint128"
	// KindHex is a lowercase hex string of even length.
	KindHex    Kind = "hex"
	KindList   Kind = "list"
	KindStruct Kind = "struct"
	KindObject Kind = "object"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindString, KindInt, KindUint16, KindBool, KindUint64, KindUint128,
		KindHex, KindList, KindStruct, KindObject:
		return true
	}
	return false
}

// Field declares one field of a schema.
type Field struct {
	Name     string
	Kind     Kind
	Optional bool

	// Elem is the element type of a KindList field. Its Name is unused.
	Elem *Field

	// Schema is the nested schema of a KindStruct field.
	Schema *Schema
}

// Schema declares the fields of a record in canonical order.
type Schema struct {
	Name   string
	Fields []Field
}

// Field returns the declared field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns the field names in canonical order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Validate checks the schema for structural errors: empty or duplicate
// names, unknown kinds, lists without an element type and structs without
// a nested schema.
func (s *Schema) Validate() error {
	if s == nil {
		return fmt.Errorf("schema is nil")
	}
	if s.Name == "" {
		return fmt.Errorf("schema has no name")
	}
	seen := make(map[string]bool, len(s.Fields))
	for i, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema %s: field %d has no name", s.Name, i)
		}
		if seen[f.Name] {
			return fmt.Errorf("schema %s: duplicate field %q", s.Name, f.Name)
		}
		seen[f.Name] = true
		if err := validateField(s.Name+"."+f.Name, f); err != nil {
			return err
		}
	}
	return nil
}

func validateField(path string, f Field) error {
	if !f.Kind.Valid() {
		return fmt.Errorf("%s: unknown kind %q", path, f.Kind)
	}
	switch f.Kind {
	case KindList:
		if f.Elem == nil {
			return fmt.Errorf("%s: list field has no element type", path)
		}
		return validateField(path+"[]", *f.Elem)
	case KindStruct:
		if f.Schema == nil {
			return fmt.Errorf("%s: struct field has no schema", path)
		}
		return f.Schema.Validate()
	}
	return nil
}
