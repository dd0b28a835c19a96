package normalizr

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// NormalizeJSON decodes a JSON document and normalizes it against s. Numbers
// decode through json.Number so numeric ids keep their textual form.
func NormalizeJSON(data []byte, s Schema) (*Normalized, error) {
	v, err := decodeJSON(data)
	if err != nil {
		return nil, Issues{Issue{Code: CodeParseError, Message: "invalid JSON input", Cause: err}}
	}
	return Normalize(v, s)
}

// DenormalizeJSON decodes a JSON document of the persisted shape
// {"result": ..., "entities": {type: {id: record}}} and reconstructs the
// nested graph against s.
func DenormalizeJSON(data []byte, s Schema, opts ...DenormalizeOption) (any, error) {
	var doc struct {
		Result   any   `json:"result"`
		Entities Store `json:"entities"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, Issues{Issue{Code: CodeParseError, Message: "invalid normalized JSON input", Cause: err}}
	}
	return Denormalize(doc.Result, s, doc.Entities, opts...)
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
