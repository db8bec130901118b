// Package signature normalizes the result shapes transaction senders return
// into one canonical signature string.
//
// Senders disagree: some return the signature, some a (signature, slot)
// pair, some an object whose "signature" or "txid" field holds either of the
// former. Result models those shapes as a tagged union and Normalize covers
// every tag.
package signature

import (
	"fmt"
	"sort"

	"github.com/mr-tron/base58"
)

// Kind tags the shape held by a Result.
type Kind uint8

const (
	KindOpaque Kind = iota
	KindString
	KindPair
	KindObject
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindPair:
		return "pair"
	case KindObject:
		return "object"
	case KindBytes:
		return "bytes"
	default:
		return "opaque"
	}
}

// Result is one sender result. Construct it with String, Pair, Object,
// Bytes, Opaque or FromAny; the zero value is an empty opaque result.
type Result struct {
	kind Kind

	text  string // KindString; KindPair first element
	slot  any    // KindPair second element
	raw   []byte // KindBytes
	value any    // KindOpaque

	primary   *Result // KindObject "signature"
	alternate *Result // KindObject "txid"
}

func String(s string) Result { return Result{kind: KindString, text: s} }

// Pair is an ordered (signature, context) tuple; only the first element counts.
func Pair(sig string, second any) Result { return Result{kind: KindPair, text: sig, slot: second} }

// Object holds the named fields of an object result. Either may be nil.
func Object(primary, alternate *Result) Result {
	return Result{kind: KindObject, primary: primary, alternate: alternate}
}

// Bytes is a raw signature; it normalizes to base58.
func Bytes(b []byte) Result { return Result{kind: KindBytes, raw: append([]byte(nil), b...)} }

// Opaque wraps a value of no known shape; it normalizes to fmt's rendering.
func Opaque(v any) Result { return Result{kind: KindOpaque, value: v} }

func (r Result) Kind() Kind { return r.kind }

// Ref returns a pointer to a copy of r, for building Object fields inline.
func (r Result) Ref() *Result { return &r }

// Normalize returns the canonical signature carried by r.
//
// It never fails. The worst case is an empty or best-effort stringified
// value; callers must treat "" as a missing signature.
func Normalize(r Result) string {
	switch r.kind {
	case KindString, KindPair:
		return r.text
	case KindBytes:
		if len(r.raw) == 0 {
			return ""
		}
		return base58.Encode(r.raw)
	case KindObject:
		if r.primary != nil {
			return Normalize(*r.primary)
		}
		if r.alternate != nil {
			return Normalize(*r.alternate)
		}
		return ""
	default:
		if r.value == nil {
			return ""
		}
		return fmt.Sprint(r.value)
	}
}

// Field names recognised on object results, in precedence order.
const (
	FieldSignature = "signature"
	FieldTxID      = "txid"
)

// FromAny classifies a dynamically typed value, such as a decoded JSON
// document or a structpb value, into a Result.
//
// Slices use their first element, stringified. Maps use FieldSignature, then
// FieldTxID, each classified recursively. Anything else is Opaque.
func FromAny(v any) Result {
	switch x := v.(type) {
	case Result:
		return x
	case string:
		return String(x)
	case []byte:
		return Bytes(x)
	case []any:
		if len(x) == 0 {
			return Opaque(nil)
		}
		var second any
		if len(x) > 1 {
			second = x[1]
		}
		return Pair(stringify(x[0]), second)
	case []string:
		if len(x) == 0 {
			return Opaque(nil)
		}
		return Pair(x[0], nil)
	case map[string]any:
		var obj Result
		obj.kind = KindObject
		if f, ok := x[FieldSignature]; ok && f != nil {
			obj.primary = FromAny(f).Ref()
		}
		if f, ok := x[FieldTxID]; ok && f != nil {
			obj.alternate = FromAny(f).Ref()
		}
		if obj.primary == nil && obj.alternate == nil {
			return Opaque(describeMap(x))
		}
		return obj
	default:
		return Opaque(v)
	}
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return base58.Encode(x)
	default:
		return fmt.Sprint(x)
	}
}

// describeMap renders x with sorted keys so fallback output is stable.
func describeMap(x map[string]any) string {
	keys := make([]string, 0, len(x))
	for k := range x {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := "map["
	for i, k := range keys {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s:%v", k, x[k])
	}
	return out + "]"
}

// ToAny renders r as a JSON-compatible value that FromAny maps back to a
// Result with the same normalized signature. Bytes become base58 strings.
func ToAny(r Result) any {
	switch r.kind {
	case KindString:
		return r.text
	case KindPair:
		return []any{r.text, r.slot}
	case KindBytes:
		return Normalize(r)
	case KindObject:
		if r.primary == nil && r.alternate == nil {
			return nil
		}
		m := map[string]any{}
		if r.primary != nil {
			m[FieldSignature] = ToAny(*r.primary)
		}
		if r.alternate != nil {
			m[FieldTxID] = ToAny(*r.alternate)
		}
		return m
	default:
		return r.value
	}
}
