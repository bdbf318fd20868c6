// Package store persists the goal document. Backends receive and return
// the whole document; they never reach into it.
package store

import (
	"context"
	"encoding/json"

	"northstar/api/internal/okr"
)

// DocumentStore is the persistence boundary. Load must always produce a
// usable document: missing fields default to empty sequences and unreadable
// payloads fall back to an empty document rather than failing the caller.
// Save errors are returned so the caller can surface the divergence between
// in-memory and persisted state.
type DocumentStore interface {
	Load(ctx context.Context) (*okr.Document, error)
	Save(ctx context.Context, doc *okr.Document) error
}

// DecodeDocument parses a persisted payload, recovering to an empty
// document on malformed input. Availability over strictness: the tool must
// always come up with a usable, if empty, state.
func DecodeDocument(raw []byte) *okr.Document {
	doc := &okr.Document{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, doc); err != nil {
			doc = &okr.Document{}
		}
	}
	okr.Normalize(doc)
	return doc
}

// EncodeDocument renders the document in its persisted JSON form.
func EncodeDocument(doc *okr.Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
