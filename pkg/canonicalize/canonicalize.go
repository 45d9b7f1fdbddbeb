// Package canonicalize produces RFC 8785 JSON Canonicalization Scheme
// (JCS) output, the deterministic byte representation the audit chain
// hashes over so that two equal records always hash identically regardless
// of Go map key ordering or struct field order.
package canonicalize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/gowebpki/jcs"
)

// Canonical marshals v to JSON and then canonicalizes it per RFC 8785.
func Canonical(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jcs.Transform(raw)
}

// Hash returns the hex-encoded SHA-256 digest of v's canonical JSON form.
func Hash(v interface{}) (string, error) {
	canon, err := Canonical(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}
