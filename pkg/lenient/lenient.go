// Package lenient decodes JSON without insisting on exact field types. A
// number sent for a text field becomes its decimal string, a numeric
// string sent for an id becomes the number, and null leaves the zero value.
// Fields the target does not know are ignored.
package lenient

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/mitchellh/mapstructure"
)

// Decode reads one JSON value from r into v. It returns io.EOF, unwrapped,
// when r is empty.
func Decode(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	return assign(raw, v)
}

// Unmarshal is Decode for a complete document: trailing data is an error.
func Unmarshal(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("lenient: trailing data after JSON value")
	}
	return assign(raw, v)
}

func assign(raw, v interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           v,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}
