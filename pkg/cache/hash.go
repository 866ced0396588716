package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash returns the hex SHA-256 of data. FileCache also uses it to name
// entry files, so keys never reach the file system verbatim.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON hashes the JSON encoding of v. Terminal sets and render plans
// are hashed this way to form the content part of build and render keys;
// field order is fixed by the struct definitions, so equal layouts hash
// equally.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}

// hashKey joins a stage prefix with the hash of parts, e.g.
// "build:<64 hex>".
func hashKey(stage string, parts ...any) string {
	h, err := HashJSON(parts)
	if err != nil {
		// NaN or Inf in the options; fall back to their Go syntax.
		h = Hash([]byte(fmt.Sprintf("%#v", parts)))
	}
	return stage + ":" + h
}
