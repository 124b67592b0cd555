// Package diffview renders dat diff records as unified diffs.
//
// dat reports a changed key as a record holding the key and the versions of its row
// on each side:
//
//	{"key":"42","forks":["a1","b2"],"versions":[{"n":1},{"n":2}]}
//
// Render shows the two versions as pretty-printed JSON, diffed line by line.
package diffview

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/randalmurphal/datkit/ndjson"
)

// ErrNotDiffRecord indicates a record without a versions array.
var ErrNotDiffRecord = errors.New("not a dat diff record")

// contextLines is the number of unchanged lines shown around each change.
const contextLines = 3

// Render returns the unified diff between the first and second version of record.
// A record with a single version renders it as added. Identical versions render as "".
func Render(record ndjson.Value) (string, error) {
	if record.Kind() != ndjson.Object {
		return "", fmt.Errorf("%w: got %s", ErrNotDiffRecord, record.Kind())
	}
	versions, ok := record.Get("versions")
	if !ok || versions.Kind() != ndjson.Array || versions.Len() == 0 {
		return "", fmt.Errorf("%w: no versions", ErrNotDiffRecord)
	}

	key := recordKey(record)
	var from, to ndjson.Value
	if versions.Len() == 1 {
		to, _ = versions.Index(0)
	} else {
		from, _ = versions.Index(0)
		to, _ = versions.Index(1)
	}

	a, err := lines(from)
	if err != nil {
		return "", err
	}
	b, err := lines(to)
	if err != nil {
		return "", err
	}

	ud := difflib.UnifiedDiff{
		A:        a,
		B:        b,
		FromFile: key + "@0",
		ToFile:   key + "@1",
		Context:  contextLines,
	}
	return difflib.GetUnifiedDiffString(ud)
}

// RenderAll renders every record in order. Records whose versions are identical are
// skipped.
func RenderAll(records []ndjson.Value) (string, error) {
	var b strings.Builder
	for i, rec := range records {
		text, err := Render(rec)
		if err != nil {
			return "", fmt.Errorf("record %d: %w", i, err)
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

func recordKey(record ndjson.Value) string {
	k, ok := record.Get("key")
	if !ok {
		return "record"
	}
	if s, ok := k.Str(); ok {
		return s
	}
	return k.String()
}

// lines pretty-prints v and splits it for difflib. A null or missing version has no
// lines, so a created or deleted row shows as pure additions or removals.
func lines(v ndjson.Value) ([]string, error) {
	if v.IsNull() {
		return []string{}, nil
	}
	compact, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode version: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("indent version: %w", err)
	}
	return difflib.SplitLines(pretty.String()), nil
}
