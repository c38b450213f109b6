package preset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/MrWong99/colliderkit/internal/model"
)

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("preset: encode: %w", err)
	}
	return nil
}

// Decode reads a document. Numbers are kept as [json.Number] so that field
// decoding sees the exact text; legacy documents that store numbers and
// booleans as strings decode as well, the conversion happens per field on
// [Load].
//
// Decode returns [ErrNotDocument] when the input is not a JSON object or
// carries neither a "colliders" nor a "rigidbodies" section.
func Decode(r io.Reader) (Document, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrNotDocument, err)
	}
	if raw == nil {
		return Document{}, ErrNotDocument
	}
	_, hasColliders := raw["colliders"]
	_, hasBodies := raw["rigidbodies"]
	if !hasColliders && !hasBodies {
		return Document{}, fmt.Errorf("%w: no colliders or rigidbodies section", ErrNotDocument)
	}

	var doc Document
	for key, dst := range map[string]*map[string]model.Fields{
		"colliders":     &doc.Colliders,
		"rigidbodies":   &doc.Rigidbodies,
		"autoColliders": &doc.AutoColliders,
	} {
		msg, ok := raw[key]
		if !ok {
			continue
		}
		sec, err := decodeSection(msg)
		if err != nil {
			return Document{}, fmt.Errorf("%w: section %q: %v", ErrNotDocument, key, err)
		}
		*dst = sec
	}
	return doc, nil
}

func decodeSection(msg json.RawMessage) (map[string]model.Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	var sec map[string]model.Fields
	if err := dec.Decode(&sec); err != nil {
		return nil, err
	}
	return sec, nil
}
