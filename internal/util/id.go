// Package util holds small shared helpers.
package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random identifier, optionally namespaced by a prefix
// ("obj" yields "obj_9f2c..."). Ten random bytes keep collisions implausible
// for a single-document dataset while staying readable in history payloads.
func NewID(prefix string) string {
	buf := make([]byte, 10)
	_, _ = rand.Read(buf)
	if prefix == "" {
		return hex.EncodeToString(buf)
	}
	return prefix + "_" + hex.EncodeToString(buf)
}
