package llm

import (
	"encoding/json"
	"errors"
	"iter"
	"reflect"
	"strings"

	"github.com/ppiankov/trustie/internal/model"
)

// FirstJSONArray returns the first well-formed JSON array embedded in text.
// Replies often wrap the payload in prose or code fences.
func FirstJSONArray(text string) (json.RawMessage, bool) {
	return firstJSON(text, '[')
}

// FirstJSONObject returns the first well-formed JSON object embedded in text
func FirstJSONObject(text string) (json.RawMessage, bool) {
	return firstJSON(text, '{')
}

func firstJSON(text string, open byte) (json.RawMessage, bool) {
	for raw := range candidates(text, open) {
		return raw, true
	}
	return nil, false
}

// candidates yields every well-formed JSON value in text that starts with
// open, in order of appearance
func candidates(text string, open byte) iter.Seq[json.RawMessage] {
	return func(yield func(json.RawMessage) bool) {
		for i := 0; i < len(text); i++ {
			if text[i] != open {
				continue
			}
			var raw json.RawMessage
			if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&raw); err != nil {
				continue
			}
			if !yield(raw) {
				return
			}
		}
	}
}

// DecodeArray unmarshals into v the first JSON array in text that fits v's
// type. Bracketed prose such as a citation marker is skipped.
func DecodeArray(op, text string, v any) error {
	return decodeFirst(op, text, '[', v)
}

// DecodeObject unmarshals into v the first JSON object in text that fits
// v's type
func DecodeObject(op, text string, v any) error {
	return decodeFirst(op, text, '{', v)
}

// decodeFirst tries each candidate against a fresh value so a rejected
// candidate leaves nothing behind in v
func decodeFirst(op, text string, open byte, v any) error {
	target := reflect.ValueOf(v)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return &model.ParseError{Op: op, Raw: text, Err: errors.New("decode target must be a non-nil pointer")}
	}

	var lastErr error
	for raw := range candidates(text, open) {
		fresh := reflect.New(target.Elem().Type())
		if err := json.Unmarshal(raw, fresh.Interface()); err != nil {
			lastErr = err
			continue
		}
		target.Elem().Set(fresh.Elem())
		return nil
	}
	return &model.ParseError{Op: op, Raw: text, Err: lastErr}
}
