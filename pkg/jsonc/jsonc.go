// Package jsonc turns JSON-with-comments text into strict JSON.
//
// Strip removes `//` line comments and `/* */` block comments while leaving
// every other byte untouched, so line numbers reported by a later strict
// parse still point at the original source.
package jsonc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type scanState int

const (
	stateNormal scanState = iota
	stateString
	stateLineComment
	stateBlockComment
)

// Strip returns text with all comments removed.
//
// A quote preceded by exactly one backslash is escaped and does not close the
// string; a quote preceded by a double backslash does. An unterminated block
// comment swallows the remainder of the input.
func Strip(text string) string {
	var out strings.Builder
	out.Grow(len(text))

	state := stateNormal
	n := len(text)
	for i := 0; i < n; i++ {
		c := text[i]
		var next byte
		if i+1 < n {
			next = text[i+1]
		}

		switch state {
		case stateString:
			out.WriteByte(c)
			if c == '"' && !escapedQuote(text, i) {
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				out.WriteByte(c)
				state = stateNormal
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				i++
				state = stateNormal
			}
		default:
			switch {
			case c == '"':
				out.WriteByte(c)
				state = stateString
			case c == '/' && next == '/':
				i++
				state = stateLineComment
			case c == '/' && next == '*':
				i++
				state = stateBlockComment
			default:
				out.WriteByte(c)
			}
		}
	}
	return out.String()
}

// escapedQuote reports whether the quote at text[i] is escaped by a single
// backslash (`\"`) rather than following an escaped backslash (`\\"`).
func escapedQuote(text string, i int) bool {
	if i == 0 || text[i-1] != '\\' {
		return false
	}
	return !(i > 1 && text[i-2] == '\\')
}

// Parse strips comments from raw and decodes the remainder as JSON.
//
// Numbers are decoded as json.Number so they survive re-serialisation with
// their original spelling. Duplicate object keys are tolerated and the last
// occurrence wins.
func Parse(raw []byte) (any, error) {
	return Decode([]byte(Strip(string(raw))))
}

// Decode parses strict JSON with the same number handling as Parse.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected trailing data after JSON value")
	}
	return v, nil
}

// Marshal renders v as indented JSON using two spaces, without HTML escaping.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
