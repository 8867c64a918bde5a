// Package keygen derives deterministic identity keys for entities and
// content fingerprints for whole records.
//
// Identity keys are the first 16 hex characters of a SHA-256 digest over a
// canonical string rendering of the input. Fingerprints are full 16-byte
// BLAKE2b digests and are reserved for record-level content addressing.
package keygen

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// KeyLength is the number of hex characters kept from the SHA-256 digest.
const KeyLength = 16

// fingerprintSize is the BLAKE2b digest size in bytes.
const fingerprintSize = 16

// ErrUnsupportedType is returned when a value cannot be rendered into a key.
var ErrUnsupportedType = errors.New("unsupported type for key generation")

// Tuple is an ordered collection of key parts.
// A Tuple of only dates is rendered sorted; any other Tuple keeps its order.
type Tuple []any

// StaticKey renders value and returns its 16 character identity key.
//
// Supported inputs are strings, scalars, time values, slices of those and
// string-keyed maps. A nil value renders as the literal token "None".
func StaticKey(value any) (string, error) {
	rendered, err := Render(value)
	if err != nil {
		return "", err
	}
	return digest(rendered), nil
}

// MustStaticKey is StaticKey for plain strings, which can never fail.
func MustStaticKey(s string) string {
	return digest(s)
}

// Fingerprint returns the hex BLAKE2b-128 digest of s.
func Fingerprint(s string) string {
	h, err := blake2b.New(fingerprintSize, nil)
	if err != nil {
		// Only reachable with an invalid size or key length.
		panic(fmt.Sprintf("blake2b: %v", err))
	}
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// Render returns the canonical string form of value used as key input.
func Render(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "None", nil
	case string:
		return v, nil
	case *string:
		if v == nil {
			return "None", nil
		}
		return *v, nil
	case bool:
		if v {
			return "True", nil
		}
		return "False", nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return renderFloat(float64(v)), nil
	case float64:
		return renderFloat(v), nil
	case time.Time:
		return v.Format(time.DateOnly), nil
	case *time.Time:
		if v == nil {
			return "None", nil
		}
		return v.Format(time.DateOnly), nil
	case Tuple:
		return renderSlice([]any(v))
	case []any:
		return renderSlice(v)
	case []string:
		parts := make([]any, len(v))
		for i, s := range v {
			parts[i] = s
		}
		return renderSlice(parts)
	case []time.Time:
		parts := make([]any, len(v))
		for i, d := range v {
			parts[i] = d
		}
		return renderSlice(parts)
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return renderMap(m)
	case map[string]any:
		return renderMap(v)
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedType, value)
	}
}

func renderSlice(values []any) (string, error) {
	if allDates(values) {
		iso := make([]string, len(values))
		for i, v := range values {
			iso[i] = asTime(v).Format(time.DateOnly)
		}
		sort.Strings(iso)
		return strings.Join(iso, "_"), nil
	}

	parts := make([]string, len(values))
	for i, v := range values {
		s, err := Render(v)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, "_"), nil
}

func renderMap(m map[string]any) (string, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		s, err := Render(m[k])
		if err != nil {
			return "", err
		}
		parts[i] = k + ":" + s
	}
	return strings.Join(parts, "_"), nil
}

func allDates(values []any) bool {
	for _, v := range values {
		switch t := v.(type) {
		case time.Time:
		case *time.Time:
			if t == nil {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func asTime(v any) time.Time {
	if p, ok := v.(*time.Time); ok {
		return *p
	}
	return v.(time.Time)
}

// renderFloat keeps a trailing ".0" on integral values so 1.0 and 1 differ.
func renderFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:KeyLength]
}
