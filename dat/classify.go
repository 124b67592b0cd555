package dat

import (
	"fmt"
	"regexp"

	"github.com/randalmurphal/datkit/ndjson"
)

// Default patterns for recognizing dat's error messages. Matching is a case-sensitive
// regular expression search against the English messages dat prints.
const (
	DefaultNotRepositoryPattern = `not a .*repository`
	DefaultAutoDetectPattern    = `[Cc]ould not auto detect .*input type`
)

// Classifier turns captured dat output into records or typed errors.
type Classifier struct {
	NotARepository *regexp.Regexp
	AutoDetect     *regexp.Regexp
}

// DefaultClassifier returns a Classifier using the default message patterns.
func DefaultClassifier() Classifier {
	return Classifier{
		NotARepository: regexp.MustCompile(DefaultNotRepositoryPattern),
		AutoDetect:     regexp.MustCompile(DefaultAutoDetectPattern),
	}
}

// NewClassifier compiles custom message patterns. An empty pattern keeps the default.
func NewClassifier(notRepository, autoDetect string) (Classifier, error) {
	c := DefaultClassifier()
	if notRepository != "" {
		re, err := regexp.Compile(notRepository)
		if err != nil {
			return Classifier{}, fmt.Errorf("compile not-a-repository pattern: %w", err)
		}
		c.NotARepository = re
	}
	if autoDetect != "" {
		re, err := regexp.Compile(autoDetect)
		if err != nil {
			return Classifier{}, fmt.Errorf("compile auto-detect pattern: %w", err)
		}
		c.AutoDetect = re
	}
	return c, nil
}

// Response is the decoded output of one dat command.
type Response struct {
	Records []ndjson.Value
}

// Single returns the lone record of a single-record command.
func (r Response) Single() (ndjson.Value, error) {
	if len(r.Records) == 0 {
		return ndjson.Value{}, ErrEmptyResponse
	}
	return r.Records[0], nil
}

// Classify decodes text as NDJSON.
//
// Several records are returned as they are; they are never inspected for error
// records. A single record may be an object or a one-element array wrapping an
// object; the wrapper is removed. A single record whose "error" field is truthy
// becomes a *ToolError whose kind depends on its message. Anything else is returned
// as the response.
func (c Classifier) Classify(text string) (Response, error) {
	records, err := ndjson.DecodeString(text)
	if err != nil {
		return Response{}, err
	}
	if len(records) != 1 {
		return Response{Records: records}, nil
	}
	record := unwrap(records[0])
	if err := c.ErrorFor(record); err != nil {
		return Response{}, err
	}
	return Response{Records: []ndjson.Value{record}}, nil
}

// ErrorFor returns a *ToolError if record, or the object a one-element array wraps,
// is a dat error record. Otherwise it returns nil.
func (c Classifier) ErrorFor(record ndjson.Value) error {
	record = unwrap(record)
	flag, ok := record.Get("error")
	if !ok || !flag.Truthy() {
		return nil
	}
	message, _ := record.GetString("message")
	return &ToolError{
		Kind:    c.kindOf(message),
		Message: message,
		Record:  record,
	}
}

// unwrap returns the object inside a one-element array, or v unchanged.
func unwrap(v ndjson.Value) ndjson.Value {
	if v.Kind() != ndjson.Array || v.Len() != 1 {
		return v
	}
	inner, _ := v.Index(0)
	if inner.Kind() != ndjson.Object {
		return v
	}
	return inner
}

func (c Classifier) kindOf(message string) ErrorKind {
	switch {
	case c.NotARepository != nil && c.NotARepository.MatchString(message):
		return KindNotARepository
	case c.AutoDetect != nil && c.AutoDetect.MatchString(message):
		return KindAutoDetect
	default:
		return KindGeneric
	}
}
