// Package canonjson implements the deterministic JSON-shaped
// serializer TS1 hashes: object keys sorted lexicographically,
// "key: value" and "e1, e2" separators (a space after every colon and
// comma), and scalars rendered the way encoding/json would render
// them. It is not meant to round-trip as standard JSON — only to be
// stable across runs and implementations.
package canonjson

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

type kind int

const (
	kindNull kind = iota
	kindBool
	kindInt
	kindString
	kindArray
	kindObject
)

// Value is the small tagged union CanonJSON renders. Build one with
// Null, Bool, Int, String, Array or Object.
type Value struct {
	kind kind
	b    bool
	i    int64
	s    string
	arr  []Value
	obj  map[string]Value
}

func Null() Value           { return Value{kind: kindNull} }
func Bool(b bool) Value     { return Value{kind: kindBool, b: b} }
func Int(i int64) Value     { return Value{kind: kindInt, i: i} }
func String(s string) Value { return Value{kind: kindString, s: s} }
func Array(items []Value) Value {
	return Value{kind: kindArray, arr: items}
}
func Object(fields map[string]Value) Value {
	return Value{kind: kindObject, obj: fields}
}

// Marshal renders v in canonical form.
func Marshal(v Value) string {
	var sb strings.Builder
	render(&sb, v)
	return sb.String()
}

func render(sb *strings.Builder, v Value) {
	switch v.kind {
	case kindNull:
		sb.WriteString("null")
	case kindBool:
		if v.b {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case kindInt:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case kindString:
		sb.Write(mustMarshalScalar(v.s))
	case kindArray:
		sb.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				sb.WriteString(", ")
			}
			render(sb, e)
		}
		sb.WriteByte(']')
	case kindObject:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.Write(mustMarshalScalar(k))
			sb.WriteString(": ")
			render(sb, v.obj[k])
		}
		sb.WriteByte('}')
	}
}

// mustMarshalScalar defers string quoting/escaping to encoding/json so
// CanonJSON agrees with the reference JSON encoder byte for byte.
func mustMarshalScalar(s string) []byte {
	b, err := json.Marshal(s)
	if err != nil {
		// Only possible for invalid UTF-8, which callers never feed in.
		return []byte(`""`)
	}
	return b
}
