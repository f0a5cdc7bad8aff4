// Package ids implements stable, content-addressed identity and canonical
// payload hashing (component C1 of the design).
package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// normalize recursively rewrites a payload into a canonical form: map keys
// sorted, floats rounded to 12 decimal places, everything else left as-is.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out[k] = normalize(t[k])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case float64:
		return roundTo(t, 12)
	case float32:
		return roundTo(float64(t), 12)
	default:
		return v
	}
}

func roundTo(f float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(f*shift) / shift
}

// Canonicalize produces deterministic JSON bytes for a payload: sorted map
// keys, 12-decimal float rounding, compact separators. The payload is first
// marshaled to JSON and unmarshaled into generic interfaces so that any Go
// struct (with json tags) can be hashed the same way the source project's
// dict-shaped payloads are.
func Canonicalize(payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ids: marshal payload: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("ids: unmarshal payload: %w", err)
	}
	norm := normalize(generic)
	out, err := marshalSorted(norm)
	if err != nil {
		return nil, fmt.Errorf("ids: marshal canonical: %w", err)
	}
	return out, nil
}

// marshalSorted serializes using encoding/json, which already sorts map[string]any
// keys by default — kept as a named step so the canonicalization contract is
// explicit and testable independent of stdlib behavior.
func marshalSorted(v any) ([]byte, error) {
	return json.Marshal(v)
}

// HashPayload returns the hex-encoded SHA-256 of the canonical bytes of payload.
func HashPayload(payload any) (string, error) {
	b, err := Canonicalize(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// StableID returns "prefix:<hex12>" where hex12 is the first 12 hex
// characters of the SHA-256 of the canonical payload.
func StableID(prefix string, payload map[string]any) (string, error) {
	h, err := HashPayload(payload)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s", prefix, h[:12]), nil
}

// MustStableID panics on hashing failure; used only for payloads that are
// guaranteed JSON-marshalable (plain maps of primitives).
func MustStableID(prefix string, payload map[string]any) string {
	id, err := StableID(prefix, payload)
	if err != nil {
		panic(err)
	}
	return id
}

// DerivedID computes the id of an entity derived from parentID under a given
// derivation kind and shape parameters, per spec invariant 1: re-deriving
// identical inputs yields an identical id.
func DerivedID(parentID, kind string, params map[string]any) (string, error) {
	payload := map[string]any{
		"parent_id": parentID,
		"kind":      kind,
		"params":    params,
	}
	return StableID(parentID+":"+kind, payload)
}

// MustDerivedID panics on hashing failure; see MustStableID.
func MustDerivedID(parentID, kind string, params map[string]any) string {
	id, err := DerivedID(parentID, kind, params)
	if err != nil {
		panic(err)
	}
	return id
}
