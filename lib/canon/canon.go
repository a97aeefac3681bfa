// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package canon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Canonicalize returns the canonical byte encoding of v. v may be a
// struct (tagged with `json` struct tags, as with any value passed to
// encoding/json.Marshal), a map, a slice, or a JSON primitive.
//
// The result is stable across Go map iteration order, struct field
// declaration order, and repeated calls: Canonicalize(v) always
// produces the same bytes for values that are equal under
// encoding/json's own equality (same fields, same values).
func Canonicalize(v any) ([]byte, error) {
	// Round-trip through encoding/json to normalize v into the generic
	// tree of map[string]any / []any / primitives that Go's decoder
	// produces. This is what lets a struct with a declared field order
	// and a map literal with a different insertion order converge to
	// the same canonical bytes: both become the same generic shape.
	intermediate, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canon: marshaling value: %w", err)
	}

	var generic any
	decoder := json.NewDecoder(bytes.NewReader(intermediate))
	decoder.UseNumber()
	if err := decoder.Decode(&generic); err != nil {
		return nil, fmt.Errorf("canon: decoding to generic form: %w", err)
	}

	var out bytes.Buffer
	if err := encodeCanonical(&out, generic); err != nil {
		return nil, fmt.Errorf("canon: encoding canonical form: %w", err)
	}
	return out.Bytes(), nil
}

// MustCanonicalize is Canonicalize but panics on error. Used at call
// sites where v's shape is controlled by this codebase (no user input)
// and a marshaling failure would indicate a programmer error — the
// same convention lib/artifact's keyedHash uses for its own
// can't-actually-fail error paths.
func MustCanonicalize(v any) []byte {
	data, err := Canonicalize(v)
	if err != nil {
		panic("canon: MustCanonicalize: " + err.Error())
	}
	return data
}

// encodeCanonical writes the canonical encoding of a generic decoded
// value (as produced by a json.Decoder with UseNumber) to out.
func encodeCanonical(out *bytes.Buffer, value any) error {
	switch v := value.(type) {
	case nil:
		out.WriteString("null")
		return nil
	case bool:
		if v {
			out.WriteString("true")
		} else {
			out.WriteString("false")
		}
		return nil
	case json.Number:
		// json.Number preserves the decoder's original shortest textual
		// form, which is already round-trip-minimal — re-encoding it
		// through strconv would risk reformatting (e.g. trailing
		// zeros) differently than another implementation's encoder.
		out.WriteString(v.String())
		return nil
	case string:
		encoded, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out.Write(encoded)
		return nil
	case []any:
		out.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				out.WriteByte(',')
			}
			if err := encodeCanonical(out, elem); err != nil {
				return err
			}
		}
		out.WriteByte(']')
		return nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				out.WriteByte(',')
			}
			encodedKey, err := json.Marshal(k)
			if err != nil {
				return err
			}
			out.Write(encodedKey)
			out.WriteByte(':')
			if err := encodeCanonical(out, v[k]); err != nil {
				return err
			}
		}
		out.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("canon: unexpected decoded type %T", v)
	}
}
