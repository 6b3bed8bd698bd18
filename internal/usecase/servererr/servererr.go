// Package servererr reads the first validation message out of an auth
// service error body shaped like
//
//	{"message":[{"messages":[{"message":"Email already taken"}]}]}
package servererr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// Path is the JSONPath of the first validation message.
const Path = "$.message[0].messages[0].message"

// FallbackMessage is shown when an error body does not follow the expected shape.
const FallbackMessage = "Registration failed"

var (
	ErrNotJSON         = errors.New("response body is not valid JSON")
	ErrUnexpectedShape = errors.New("unexpected error body shape")
)

// Extract returns the message at Path.
//
// Policy:
// - body that does not parse -> ErrNotJSON
// - path missing, or value not a non-empty string -> ErrUnexpectedShape
func Extract(body []byte) (string, error) {
	doc, err := parseJSON(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotJSON, err)
	}

	val, err := jsonpath.Get(Path, doc)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnexpectedShape, Path, err)
	}

	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, not a string", ErrUnexpectedShape, Path, val)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrUnexpectedShape, Path)
	}
	return s, nil
}

// IsJSON reports whether body parses as a single JSON value.
func IsJSON(body []byte) bool {
	_, err := parseJSON(body)
	return err == nil
}

func parseJSON(body []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// IsJSONPrefix reports whether body starts with a JSON value. It is used for
// bodies cut off by the bounded read, which never parse as a whole.
func IsJSONPrefix(body []byte) bool {
	dec := json.NewDecoder(bytes.NewReader(body))
	_, err := dec.Token()
	return err == nil
}

// ExtractPrefix walks Path with a streaming decoder, so the message is found
// even when the tail of body is missing. Anything else is ErrUnexpectedShape.
func ExtractPrefix(body []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	// $.message[0].messages[0].message
	steps := []string{"message", "", "messages", "", "message"}
	for _, key := range steps {
		var err error
		if key == "" {
			err = enterFirstElement(dec)
		} else {
			err = seekKey(dec, key)
		}
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrUnexpectedShape, Path, err)
		}
	}

	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnexpectedShape, Path, err)
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, not a string", ErrUnexpectedShape, Path, tok)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrUnexpectedShape, Path)
	}
	return s, nil
}

// seekKey consumes an object opening and skips members until key; the
// decoder is then positioned on key's value.
func seekKey(dec *json.Decoder, key string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object before %q", key)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		if name == key {
			return nil
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return err
		}
	}
	return fmt.Errorf("key %q not found", key)
}

// enterFirstElement consumes an array opening; the decoder is then
// positioned on element 0.
func enterFirstElement(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return fmt.Errorf("expected array")
	}
	if !dec.More() {
		return fmt.Errorf("array is empty")
	}
	return nil
}
