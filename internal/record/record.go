package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"github.com/outbe/tribute-attest/internal/protoerr"
)

// Record is a schema-bound set of field values: the raw record that gets
// hashed, signed or encrypted. Records are values; With returns a copy.
type Record struct {
	Schema *Schema
	Fields map[string]Value
}

func (Record) recordValue() {}

// Pair is a field name and value for typed Record construction.
type Pair struct {
	Name  string
	Value Value
}

// F is a shorthand for Pair.
// Example: New(schema, F("token_id", String("1")), F("commitment_tier", Int(1)))
func F(name string, v Value) Pair {
	return Pair{Name: name, Value: v}
}

// New creates a record bound to schema. Values are not checked until the
// record is encoded; use Validate to check early.
func New(schema *Schema, pairs ...Pair) Record {
	fields := make(map[string]Value, len(pairs))
	for _, p := range pairs {
		fields[p.Name] = p.Value
	}
	return Record{Schema: schema, Fields: fields}
}

// Get returns the value of a field.
func (r Record) Get(name string) (Value, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// GetString returns a field holding a String.
func (r Record) GetString(name string) (string, bool) {
	v, ok := r.Fields[name].(String)
	return string(v), ok
}

// With returns a copy of r with the field set to v.
func (r Record) With(name string, v Value) Record {
	fields := maps.Clone(r.Fields)
	if fields == nil {
		fields = make(map[string]Value, 1)
	}
	fields[name] = v
	return Record{Schema: r.Schema, Fields: fields}
}

// Without returns a copy of r with the field removed.
func (r Record) Without(name string) Record {
	fields := maps.Clone(r.Fields)
	delete(fields, name)
	return Record{Schema: r.Schema, Fields: fields}
}

// Validate reports whether the record can be canonically encoded.
func (r Record) Validate() error {
	_, err := Encode(r)
	return err
}

// MarshalJSON returns the canonical encoding so records embedded in wire
// messages carry exactly the bytes that were hashed.
func (r Record) MarshalJSON() ([]byte, error) {
	return Encode(r)
}

// Bind parses JSON data into a record of the given schema.
//
// Numbers must be integers, null is only accepted for optional fields (and
// treated as absent), and fields the schema does not declare are rejected.
// The bound record is validated before it is returned.
func Bind(schema *Schema, data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Record{}, &protoerr.EncodingError{Op: "bind", Message: "malformed JSON", Err: err}
	}
	if dec.More() {
		return Record{}, &protoerr.EncodingError{Op: "bind", Message: "trailing data after JSON value"}
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return Record{}, &protoerr.EncodingError{Op: "bind", Message: fmt.Sprintf("expected JSON object, got %s", jsonType(raw))}
	}

	rec, err := bindStruct(schema, obj, "")
	if err != nil {
		return Record{}, err
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func bindStruct(schema *Schema, obj map[string]any, path string) (Record, error) {
	fields := make(map[string]Value, len(obj))
	for name, raw := range obj {
		fpath := join(path, name)
		f, ok := schema.Field(name)
		if !ok {
			return Record{}, bindErr(fpath, "field not declared by schema %s", schema.Name)
		}
		if raw == nil {
			if f.Optional {
				continue
			}
			return Record{}, bindErr(fpath, "null is not allowed for required field")
		}
		v, err := bindValue(f, raw, fpath)
		if err != nil {
			return Record{}, err
		}
		fields[name] = v
	}
	return Record{Schema: schema, Fields: fields}, nil
}

func bindValue(f Field, raw any, path string) (Value, error) {
	switch f.Kind {
	case KindString, KindHex, KindUint64, KindUint128:
		s, ok := raw.(string)
		if !ok {
			return nil, bindErr(path, "expected string for %s, got %s", f.Kind, jsonType(raw))
		}
		return String(s), nil

	case KindInt, KindUint16:
		n, ok := raw.(json.Number)
		if !ok {
			return nil, bindErr(path, "expected integer, got %s", jsonType(raw))
		}
		return bindInt(n, path)

	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, bindErr(path, "expected bool, got %s", jsonType(raw))
		}
		return Bool(b), nil

	case KindList:
		arr, ok := raw.([]any)
		if !ok {
			return nil, bindErr(path, "expected list, got %s", jsonType(raw))
		}
		list := make(List, len(arr))
		for i, elem := range arr {
			epath := fmt.Sprintf("%s[%d]", path, i)
			if elem == nil {
				return nil, bindErr(epath, "null is not allowed")
			}
			v, err := bindValue(*f.Elem, elem, epath)
			if err != nil {
				return nil, err
			}
			list[i] = v
		}
		return list, nil

	case KindStruct:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, bindErr(path, "expected object, got %s", jsonType(raw))
		}
		return bindStruct(f.Schema, obj, path)

	case KindObject:
		return bindFree(raw, path)
	}
	return nil, bindErr(path, "unknown kind %q", f.Kind)
}

// bindFree converts schema-less JSON. Rejects null and floats.
func bindFree(raw any, path string) (Value, error) {
	switch val := raw.(type) {
	case nil:
		return nil, bindErr(path, "null is not allowed")
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case json.Number:
		return bindInt(val, path)
	case []any:
		list := make(List, len(val))
		for i, elem := range val {
			v, err := bindFree(elem, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			list[i] = v
		}
		return list, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			v, err := bindFree(elem, join(path, k))
			if err != nil {
				return nil, err
			}
			obj[k] = v
		}
		return obj, nil
	default:
		return nil, bindErr(path, "unsupported JSON value %T", raw)
	}
}

func bindInt(n json.Number, path string) (Value, error) {
	s := n.String()
	if strings.ContainsAny(s, ".eE") {
		return nil, bindErr(path, "floats are not allowed: %s", s)
	}
	i, err := n.Int64()
	if err != nil {
		return nil, bindErr(path, "integer out of int64 range: %s", s)
	}
	return Int(i), nil
}

func bindErr(path, format string, args ...any) error {
	e := protoerr.Encoding(path, format, args...)
	e.Op = "bind"
	return e
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return "string"
	case json.Number:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
