package servererr

import (
	"errors"
	"strings"
	"testing"
)

func TestExtract_NestedMessage(t *testing.T) {
	body := []byte(`{"message":[{"messages":[{"message":"Email already taken"}]}]}`)

	got, err := Extract(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Email already taken" {
		t.Fatalf("expected nested message, got %q", got)
	}
}

func TestExtract_TakesFirstOfMany(t *testing.T) {
	body := []byte(`{
		"statusCode": 400,
		"error": "Bad Request",
		"message": [
			{"messages": [
				{"id": "Auth.form.error.email.taken", "message": "Email is already taken."},
				{"id": "second", "message": "ignored"}
			]},
			{"messages": [{"message": "also ignored"}]}
		]
	}`)

	got, err := Extract(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Email is already taken." {
		t.Fatalf("expected first message, got %q", got)
	}
}

func TestExtract_UnexpectedShape(t *testing.T) {
	cases := map[string]string{
		"missing message":          `{"error":"Bad Request"}`,
		"message is string":        `{"message":"Bad Request"}`,
		"empty outer array":        `{"message":[]}`,
		"missing messages":         `{"message":[{}]}`,
		"empty messages":           `{"message":[{"messages":[]}]}`,
		"inner message missing":    `{"message":[{"messages":[{"id":"x"}]}]}`,
		"inner message not string": `{"message":[{"messages":[{"message":42}]}]}`,
		"inner message blank":      `{"message":[{"messages":[{"message":"  "}]}]}`,
		"top-level array":          `[1,2,3]`,
		"null":                     `null`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Extract([]byte(body))
			if !errors.Is(err, ErrUnexpectedShape) {
				t.Fatalf("expected ErrUnexpectedShape, got %v", err)
			}
		})
	}
}

func TestExtract_NotJSON(t *testing.T) {
	for _, body := range []string{"", "<html>502 Bad Gateway</html>", "{"} {
		_, err := Extract([]byte(body))
		if !errors.Is(err, ErrNotJSON) {
			t.Fatalf("body %q: expected ErrNotJSON, got %v", body, err)
		}
	}
}

func TestExtractPrefix_CutOffTail(t *testing.T) {
	full := `{"data":null,"message":[{"messages":[{"id":"Auth.form.error.email.taken","message":"Email already taken"}]}],"padding":"` +
		strings.Repeat("x", 1024) + `"}`
	body := []byte(full[:len(full)-200])

	if _, err := Extract(body); !errors.Is(err, ErrNotJSON) {
		t.Fatalf("expected cut body to fail a full parse, got %v", err)
	}

	got, err := ExtractPrefix(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Email already taken" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestExtractPrefix_SkipsLargeSiblings(t *testing.T) {
	body := []byte(`{"statusCode":400,"trace":["` + strings.Repeat("y", 2048) + `"],` +
		`"message":[{"messages":[{"message":"Password too short"}]}]}`)

	got, err := ExtractPrefix(body)
	if err != nil || got != "Password too short" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestExtractPrefix_UnexpectedShape(t *testing.T) {
	cases := map[string]string{
		"cut before message": `{"padding":"` + strings.Repeat("z", 64),
		"cut inside message": `{"message":[{"messages":[{"message":"Email alr`,
		"empty array":        `{"message":[]}`,
		"not an object":      `["message"]`,
		"number":             `{"message":[{"messages":[{"message":42}]}]}`,
		"blank":              `{"message":[{"messages":[{"message":"  "}]}]}`,
		"not json":           `<html>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ExtractPrefix([]byte(body)); !errors.Is(err, ErrUnexpectedShape) {
				t.Fatalf("expected ErrUnexpectedShape, got %v", err)
			}
		})
	}
}

func TestIsJSONPrefix(t *testing.T) {
	if !IsJSONPrefix([]byte(`{"jwt":"abc`)) || !IsJSONPrefix([]byte(`[1,2`)) {
		t.Fatalf("expected JSON prefixes")
	}
	for _, body := range []string{"", "<html>", "ok"} {
		if IsJSONPrefix([]byte(body)) {
			t.Fatalf("body %q: expected not a JSON prefix", body)
		}
	}
}

func TestIsJSON(t *testing.T) {
	if !IsJSON([]byte(`{"ok":true}`)) || !IsJSON([]byte(`[]`)) || !IsJSON([]byte(`"s"`)) {
		t.Fatalf("expected valid JSON values")
	}
	if IsJSON([]byte("")) || IsJSON([]byte("ok")) {
		t.Fatalf("expected invalid JSON")
	}
}
