package record

import (
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface over the value kinds a record may hold.
// Only String, Int, Bool, List, Object and Record implement it.
type Value interface {
	recordValue()
}

// String is a string value. Decimal amounts and hex digests are Strings too;
// the schema decides how they are validated.
type String string

func (String) recordValue() {}

// Int is an integer value. Always int64, never a float.
type Int int64

func (Int) recordValue() {}

// Bool is a boolean value.
type Bool bool

func (Bool) recordValue() {}

// List is an ordered list of values.
type List []Value

func (List) recordValue() {}

// Object is a free-form map without a schema. Keys are encoded in RFC 8785
// order.
type Object map[string]Value

func (Object) recordValue() {}

// Strings builds a List of String values.
func Strings(ss ...string) List {
	l := make(List, len(ss))
	for i, s := range ss {
		l[i] = String(s)
	}
	return l
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings compares UTF-8 bytes, which orders supplementary-plane
// characters differently.
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}
