// Package canonical produces the deterministic string form of a payload that
// gets signed. Mappings are emitted with sorted keys so insertion order never
// matters; sequences keep their order.
//
// Output grammar:
//
//	mapping  {"key":value|"key":value}
//	sequence [value,value]
//	string   Go-quoted, so delimiters inside values are escaped
//	number   plain decimal digits, no exponent, no locale
//	bool     true | false
//	null     null
package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	pairSep = "|"
	itemSep = ","
)

// Encode normalizes v through its JSON representation (so struct tags decide
// key names) and returns the canonical string.
func Encode(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("canonical: marshal: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return "", fmt.Errorf("canonical: decode: %w", err)
	}
	return EncodeValue(tree)
}

// EncodeValue encodes an already generic tree of maps, slices and scalars.
func EncodeValue(v any) (string, error) {
	var b strings.Builder
	if err := encode(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

func encode(b *strings.Builder, v any) error {
	switch t := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(t))
	case string:
		b.WriteString(strconv.Quote(t))
	case json.Number:
		s, err := normalizeNumber(t)
		if err != nil {
			return err
		}
		b.WriteString(s)
	case int:
		b.WriteString(strconv.Itoa(t))
	case int64:
		b.WriteString(strconv.FormatInt(t, 10))
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("canonical: non-finite number %v", t)
		}
		b.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteString(pairSep)
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			if err := encode(b, t[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case map[string]string:
		generic := make(map[string]any, len(t))
		for k, val := range t {
			generic[k] = val
		}
		return encode(b, generic)
	case []any:
		b.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				b.WriteString(itemSep)
			}
			if err := encode(b, item); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case []string:
		items := make([]any, len(t))
		for i, s := range t {
			items[i] = s
		}
		return encode(b, items)
	default:
		return fmt.Errorf("canonical: unsupported type %T", v)
	}
	return nil
}

// normalizeNumber keeps integers as-is and renders other numbers in plain
// decimal notation, so 1e2 and 100 encode the same way.
func normalizeNumber(n json.Number) (string, error) {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	f, err := n.Float64()
	if err != nil {
		return "", fmt.Errorf("canonical: bad number %q", n.String())
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("canonical: non-finite number %q", n.String())
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}
