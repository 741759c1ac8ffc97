package schema

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/outbe/tribute-attest/internal/record"
)

// CompileError reports a schema file problem with its CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// schemaDef is a parsed but unresolved schema.
type schemaDef struct {
	name   string
	pos    token.Pos
	fields []fieldDef
}

type fieldDef struct {
	name     string
	kind     record.Kind
	optional bool
	elem     record.Kind
	ref      string
	pos      token.Pos
}

// parseSchemas reads every schema under the top-level "schema" field in
// declaration order.
func parseSchemas(v cue.Value) ([]schemaDef, error) {
	schemasVal := v.LookupPath(cue.ParsePath("schema"))
	if !schemasVal.Exists() {
		return nil, nil
	}

	iter, err := schemasVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var defs []schemaDef
	for iter.Next() {
		def, err := parseSchema(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func parseSchema(name string, v cue.Value) (schemaDef, error) {
	def := schemaDef{name: name, pos: v.Pos()}

	list, err := v.List()
	if err != nil {
		return def, formatCUEError(err)
	}

	seen := make(map[string]bool)
	for list.Next() {
		f, err := parseField(list.Value())
		if err != nil {
			return def, err
		}
		if seen[f.name] {
			return def, &CompileError{
				Field:   "schema." + name + "." + f.name,
				Message: "duplicate field",
				Pos:     f.pos,
			}
		}
		seen[f.name] = true
		def.fields = append(def.fields, f)
	}

	if len(def.fields) == 0 {
		return def, &CompileError{Field: "schema." + name, Message: "schema has no fields", Pos: def.pos}
	}
	return def, nil
}

func parseField(v cue.Value) (fieldDef, error) {
	f := fieldDef{pos: v.Pos()}

	name, err := v.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		return f, formatCUEError(err)
	}
	f.name = name

	kind, err := v.LookupPath(cue.ParsePath("kind")).String()
	if err != nil {
		return f, formatCUEError(err)
	}
	f.kind = record.Kind(kind)

	if opt := v.LookupPath(cue.ParsePath("optional")); opt.Exists() {
		d, _ := opt.Default()
		b, err := d.Bool()
		if err != nil {
			return f, formatCUEError(err)
		}
		f.optional = b
	}

	if elem := v.LookupPath(cue.ParsePath("elem")); elem.Exists() {
		s, err := elem.String()
		if err != nil {
			return f, formatCUEError(err)
		}
		f.elem = record.Kind(s)
	}

	if ref := v.LookupPath(cue.ParsePath("schema")); ref.Exists() {
		s, err := ref.String()
		if err != nil {
			return f, formatCUEError(err)
		}
		f.ref = s
	}

	switch {
	case f.kind == record.KindList && f.elem == "":
		return f, &CompileError{Field: f.name, Message: "list field requires elem", Pos: f.pos}
	case f.kind != record.KindList && f.elem != "":
		return f, &CompileError{Field: f.name, Message: "elem is only valid on list fields", Pos: f.pos}
	case f.elem == record.KindList:
		return f, &CompileError{Field: f.name, Message: "nested lists are not supported", Pos: f.pos}
	}

	needsRef := f.kind == record.KindStruct || f.elem == record.KindStruct
	if needsRef && f.ref == "" {
		return f, &CompileError{Field: f.name, Message: "struct field requires schema", Pos: f.pos}
	}
	if !needsRef && f.ref != "" {
		return f, &CompileError{Field: f.name, Message: "schema is only valid on struct fields", Pos: f.pos}
	}
	return f, nil
}

// resolve links struct references and builds record schemas. References
// may point at other new definitions or at existing schemas. Recursive
// schemas are rejected.
func resolve(defs []schemaDef, existing map[string]*record.Schema) (map[string]*record.Schema, error) {
	byName := make(map[string]schemaDef, len(defs))
	for _, d := range defs {
		byName[d.name] = d
	}

	built := make(map[string]*record.Schema, len(defs))
	visiting := make(map[string]bool)

	var build func(name string) (*record.Schema, error)
	build = func(name string) (*record.Schema, error) {
		if s, ok := built[name]; ok {
			return s, nil
		}
		def, ok := byName[name]
		if !ok {
			if s, ok := existing[name]; ok {
				return s, nil
			}
			return nil, nil
		}
		if visiting[name] {
			return nil, &CompileError{Field: "schema." + name, Message: "recursive schema reference", Pos: def.pos}
		}
		visiting[name] = true
		defer delete(visiting, name)

		s := &record.Schema{Name: name, Fields: make([]record.Field, 0, len(def.fields))}
		for _, fd := range def.fields {
			f := record.Field{Name: fd.name, Kind: fd.kind, Optional: fd.optional}

			var nested *record.Schema
			if fd.ref != "" {
				n, err := build(fd.ref)
				if err != nil {
					return nil, err
				}
				if n == nil {
					return nil, &CompileError{
						Field:   "schema." + name + "." + fd.name,
						Message: fmt.Sprintf("unknown schema %q", fd.ref),
						Pos:     fd.pos,
					}
				}
				nested = n
			}

			if fd.kind == record.KindList {
				f.Elem = &record.Field{Kind: fd.elem, Schema: nested}
			} else {
				f.Schema = nested
			}
			s.Fields = append(s.Fields, f)
		}

		if err := s.Validate(); err != nil {
			return nil, &CompileError{Field: "schema." + name, Message: err.Error(), Pos: def.pos}
		}
		built[name] = s
		return s, nil
	}

	for _, d := range defs {
		if _, err := build(d.name); err != nil {
			return nil, err
		}
	}
	return built, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
