package ndjson

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

// jsonAPI is a drop-in replacement for encoding/json with better performance.
var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrEmptyLine indicates DecodeLine was given nothing but whitespace.
var ErrEmptyLine = errors.New("empty line")

// SyntaxError reports a line that is not a single valid JSON value.
type SyntaxError struct {
	Line int // 1-based line number, 0 when decoding a lone line
	Err  error
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("ndjson line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("ndjson: %v", e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Decode splits data on line feeds and decodes every non-empty line as one JSON value.
// A malformed line fails the whole call; no partial result is returned.
func Decode(data []byte) ([]Value, error) {
	values := make([]Value, 0, bytes.Count(data, []byte{'\n'})+1)
	lineNo := 0
	for len(data) > 0 {
		lineNo++
		line := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			data = nil
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		v, err := decodeValue(line)
		if err != nil {
			return nil, &SyntaxError{Line: lineNo, Err: err}
		}
		values = append(values, v)
	}
	return values, nil
}

// DecodeString is Decode for string input.
func DecodeString(s string) ([]Value, error) {
	return Decode([]byte(s))
}

// DecodeLine decodes exactly one JSON value. Surrounding whitespace, including a
// trailing line terminator, is ignored; anything else after the value is an error.
func DecodeLine(line []byte) (Value, error) {
	if len(bytes.TrimSpace(line)) == 0 {
		return Value{}, &SyntaxError{Err: ErrEmptyLine}
	}
	v, err := decodeValue(line)
	if err != nil {
		return Value{}, &SyntaxError{Err: err}
	}
	return v, nil
}

func decodeValue(data []byte) (Value, error) {
	iter := jsoniter.ParseBytes(jsonAPI, data)
	v := readValue(iter)
	if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
		return Value{}, iter.Error
	}
	// At the true end of input the iterator records io.EOF; a stray byte leaves
	// Error unset.
	if next := iter.WhatIsNext(); next != jsoniter.InvalidValue || iter.Error == nil {
		return Value{}, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

func readValue(iter *jsoniter.Iterator) Value {
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()
		return Value{}
	case jsoniter.BoolValue:
		return BoolValue(iter.ReadBool())
	case jsoniter.NumberValue:
		n := iter.ReadNumber()
		if !validNumber(string(n)) {
			// Set directly: ReportError may keep an io.EOF recorded while reading
			// a number that ends the input.
			iter.Error = fmt.Errorf("readValue: invalid number literal %q", string(n))
			return Value{}
		}
		return NumberValue(n)
	case jsoniter.StringValue:
		return StringValue(iter.ReadString())
	case jsoniter.ArrayValue:
		items := []Value{}
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			items = append(items, readValue(it))
			return healthy(it)
		})
		return Value{kind: Array, items: items}
	case jsoniter.ObjectValue:
		members := []Member{}
		iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
			members = append(members, Member{Key: key, Value: readValue(it)})
			return healthy(it)
		})
		return Value{kind: Object, members: members}
	default:
		iter.ReportError("readValue", "expected a JSON value")
		return Value{}
	}
}

// healthy reports whether iteration may continue. Reaching the end of input inside a
// container is not fatal here; the container read then reports the missing closer.
func healthy(iter *jsoniter.Iterator) bool {
	return iter.Error == nil || errors.Is(iter.Error, io.EOF)
}

// validNumber reports whether s matches the JSON number grammar. The iterator collects
// any run of number characters, so "1-2" or "01" arrive here intact.
func validNumber(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	switch {
	case i < len(s) && s[i] == '0':
		i++
	case i < len(s) && s[i] >= '1' && s[i] <= '9':
		i = skipDigits(s, i)
	default:
		return false
	}
	if i < len(s) && s[i] == '.' {
		j := skipDigits(s, i+1)
		if j == i+1 {
			return false
		}
		i = j
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		j := skipDigits(s, i)
		if j == i {
			return false
		}
		i = j
	}
	return i == len(s)
}

func skipDigits(s string, i int) int {
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}
