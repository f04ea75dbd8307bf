package item

import (
	"bytes"
	"encoding/json"
	"errors"
)

var ErrNullText = errors.New("must be a string, got null")

// OptionalText is a string field that may be left out of a request body
// but, when present, must be a string.
type OptionalText struct {
	Value string
}

func (t *OptionalText) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return ErrNullText
	}
	return json.Unmarshal(data, &t.Value)
}
