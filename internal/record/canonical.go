package record

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/outbe/tribute-attest/internal/protoerr"
)

// Encode produces the canonical byte encoding of a record.
// CRITICAL: this is the ONLY serialization that may be hashed or signed.
//
// Rules:
//  1. Schema-bound objects emit fields in schema declaration order
//  2. Free-form objects emit keys in RFC 8785 order (UTF-16 code units)
//  3. Strings are NFC-normalized, no HTML escaping, U+2028/U+2029 raw
//  4. Integers are plain decimal; uint64/uint128 fields are decimal strings
//     with no sign and no leading zeros
//  5. Hex fields are lowercased
//  6. Compact output, no trailing newline
//
// Any value that does not fit its declared kind is an EncodingError.
func Encode(r Record) ([]byte, error) {
	if r.Schema == nil {
		return nil, protoerr.Encoding("", "record has no schema")
	}
	var buf bytes.Buffer
	if err := encodeStruct(&buf, r, ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MustEncode is Encode that panics on error. For fixtures only.
func MustEncode(r Record) []byte {
	b, err := Encode(r)
	if err != nil {
		panic(fmt.Sprintf("MustEncode: %v", err))
	}
	return b
}

// Hash returns SHA-256 over the canonical encoding.
func Hash(r Record) ([32]byte, error) {
	b, err := Encode(r)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(b), nil
}

func encodeStruct(buf *bytes.Buffer, r Record, path string) error {
	for name := range r.Fields {
		if _, ok := r.Schema.Field(name); !ok {
			return protoerr.Encoding(join(path, name), "field not declared by schema %s", r.Schema.Name)
		}
	}

	buf.WriteByte('{')
	first := true
	for _, f := range r.Schema.Fields {
		fpath := join(path, f.Name)
		v, ok := r.Fields[f.Name]
		if !ok || v == nil {
			if f.Optional {
				continue
			}
			return protoerr.Encoding(fpath, "required field missing")
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		if err := encodeString(buf, f.Name, fpath); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := encodeField(buf, f, v, fpath); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func encodeField(buf *bytes.Buffer, f Field, v Value, path string) error {
	switch f.Kind {
	case KindString:
		s, ok := v.(String)
		if !ok {
			return mismatch(path, f.Kind, v)
		}
		return encodeString(buf, string(s), path)

	case KindInt:
		n, ok := v.(Int)
		if !ok {
			return mismatch(path, f.Kind, v)
		}
		buf.WriteString(strconv.FormatInt(int64(n), 10))
		return nil

	case KindUint16:
		n, ok := v.(Int)
		if !ok {
			return mismatch(path, f.Kind, v)
		}
		if n < 0 || n > 0xFFFF {
			return protoerr.Encoding(path, "value %d out of uint16 range", n)
		}
		buf.WriteString(strconv.FormatInt(int64(n), 10))
		return nil

	case KindBool:
		b, ok := v.(Bool)
		if !ok {
			return mismatch(path, f.Kind, v)
		}
		buf.WriteString(strconv.FormatBool(bool(b)))
		return nil

	case KindUint64, KindUint128:
		s, ok := v.(String)
		if !ok {
			return mismatch(path, f.Kind, v)
		}
		bits := 64
		if f.Kind == KindUint128 {
			bits = 128
		}
		if err := checkDecimal(string(s), bits); err != nil {
			return protoerr.Encoding(path, "%v", err)
		}
		return encodeString(buf, string(s), path)

	case KindHex:
		s, ok := v.(String)
		if !ok {
			return mismatch(path, f.Kind, v)
		}
		lower := strings.ToLower(string(s))
		if err := checkHex(lower); err != nil {
			return protoerr.Encoding(path, "%v", err)
		}
		return encodeString(buf, lower, path)

	case KindList:
		list, ok := v.(List)
		if !ok {
			return mismatch(path, f.Kind, v)
		}
		buf.WriteByte('[')
		for i, elem := range list {
			if i > 0 {
				buf.WriteByte(',')
			}
			epath := fmt.Sprintf("%s[%d]", path, i)
			if elem == nil {
				return protoerr.Encoding(epath, "unsupported nil value")
			}
			if err := encodeField(buf, *f.Elem, elem, epath); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case KindStruct:
		nested, ok := v.(Record)
		if !ok {
			return mismatch(path, f.Kind, v)
		}
		if nested.Schema == nil {
			nested.Schema = f.Schema
		}
		if nested.Schema.Name != f.Schema.Name {
			return protoerr.Encoding(path, "expected %s record, got %s", f.Schema.Name, nested.Schema.Name)
		}
		return encodeStruct(buf, nested, path)

	case KindObject:
		obj, ok := v.(Object)
		if !ok {
			return mismatch(path, f.Kind, v)
		}
		return encodeFree(buf, obj, path)
	}
	return protoerr.Encoding(path, "unknown kind %q", f.Kind)
}

// encodeFree encodes a value with no schema. Objects use RFC 8785 ordering.
func encodeFree(buf *bytes.Buffer, v Value, path string) error {
	switch val := v.(type) {
	case String:
		return encodeString(buf, string(val), path)
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
		return nil
	case List:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeFree(buf, elem, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case Object:
		buf.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, k, join(path, k)); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encodeFree(buf, val[k], join(path, k)); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case Record:
		return encodeStruct(buf, val, path)
	case nil:
		return protoerr.Encoding(path, "unsupported nil value")
	default:
		return protoerr.Encoding(path, "unsupported value type %T", v)
	}
}

// encodeString writes a JSON string with NFC normalization.
// Only quote, backslash and control characters are escaped. Invalid UTF-8
// is an EncodingError.
func encodeString(buf *bytes.Buffer, s, path string) error {
	if !utf8.ValidString(s) {
		return protoerr.Encoding(path, "invalid UTF-8")
	}
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return protoerr.Encoding(path, "string: %v", err)
	}
	out := bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'})
	// json.Encoder always escapes U+2028 and U+2029 for JavaScript embedding.
	buf.Write(unescapeLineSeparators(out))
	return nil
}

// unescapeLineSeparators rewrites \u2028 and \u2029 escapes as literal
// characters. Escape pairs are consumed left to right, so an escaped
// backslash followed by "u2028" text stays untouched.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if i+6 <= len(data) && data[i+1] == 'u' {
			switch string(data[i+2 : i+6]) {
			case "2028":
				out = append(out, "\u2028"...)
				i += 5
				continue
			case "2029":
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}

var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

func checkDecimal(s string, bits int) error {
	if s == "" {
		return fmt.Errorf("empty decimal string")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return fmt.Errorf("invalid decimal %q", s)
		}
	}
	if len(s) > 1 && s[0] == '0' {
		return fmt.Errorf("decimal %q has leading zeros", s)
	}
	if bits == 64 {
		if _, err := strconv.ParseUint(s, 10, 64); err != nil {
			return fmt.Errorf("decimal %q out of uint64 range", s)
		}
		return nil
	}
	n, _ := new(big.Int).SetString(s, 10)
	if n.Cmp(maxUint128) > 0 {
		return fmt.Errorf("decimal %q out of uint128 range", s)
	}
	return nil
}

func checkHex(s string) error {
	if len(s)%2 != 0 {
		return fmt.Errorf("hex string %q has odd length", s)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return fmt.Errorf("invalid hex string %q", s)
		}
	}
	return nil
}

func mismatch(path string, kind Kind, v Value) error {
	if v == nil {
		return protoerr.Encoding(path, "unsupported nil value")
	}
	return protoerr.Encoding(path, "expected %s, got %s", kind, valueKind(v))
}

func valueKind(v Value) string {
	switch v.(type) {
	case String:
		return "string"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case List:
		return "list"
	case Object:
		return "object"
	case Record:
		return "record"
	}
	return fmt.Sprintf("%T", v)
}
