package diffview_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/datkit/diffview"
	"github.com/randalmurphal/datkit/ndjson"
)

func decodeOne(t *testing.T, line string) ndjson.Value {
	t.Helper()
	v, err := ndjson.DecodeLine([]byte(line))
	require.NoError(t, err)
	return v
}

func TestRender_ChangedField(t *testing.T) {
	rec := decodeOne(t, `{"key":"42","forks":["a","b"],"versions":[{"name":"ada","n":1},{"name":"ada","n":2}]}`)

	out, err := diffview.Render(rec)
	require.NoError(t, err)
	assert.Contains(t, out, "--- 42@0\n")
	assert.Contains(t, out, "+++ 42@1\n")
	assert.Contains(t, out, "-  \"n\": 1\n")
	assert.Contains(t, out, "+  \"n\": 2\n")
	assert.Contains(t, out, "   \"name\": \"ada\",\n")
}

func TestRender_KeepsFieldOrder(t *testing.T) {
	rec := decodeOne(t, `{"key":"k","versions":[{"z":1,"a":1},{"z":1,"a":2}]}`)

	out, err := diffview.Render(rec)
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, `"z"`), strings.Index(out, `"a"`))
}

func TestRender_SingleVersionIsAddition(t *testing.T) {
	rec := decodeOne(t, `{"key":"new","versions":[{"n":1}]}`)

	out, err := diffview.Render(rec)
	require.NoError(t, err)
	assert.Contains(t, out, "+{\n")
	assert.Contains(t, out, "+  \"n\": 1\n")
	assert.NotContains(t, out, "\n-")
}

func TestRender_DeletedRow(t *testing.T) {
	rec := decodeOne(t, `{"key":7,"versions":[{"n":1},null]}`)

	out, err := diffview.Render(rec)
	require.NoError(t, err)
	assert.Contains(t, out, "--- 7@0\n")
	assert.Contains(t, out, "-  \"n\": 1\n")
	assert.NotContains(t, out, "\n+ ")
}

func TestRender_IdenticalVersions(t *testing.T) {
	rec := decodeOne(t, `{"key":"k","versions":[{"n":1},{"n":1}]}`)

	out, err := diffview.Render(rec)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRender_NotADiffRecord(t *testing.T) {
	for _, line := range []string{`[1,2]`, `{"key":"k"}`, `{"versions":[]}`, `{"versions":"x"}`} {
		_, err := diffview.Render(decodeOne(t, line))
		assert.ErrorIs(t, err, diffview.ErrNotDiffRecord, line)
	}
}

func TestRenderAll(t *testing.T) {
	records, err := ndjson.DecodeString(`{"key":"a","versions":[{"n":1},{"n":2}]}
{"key":"b","versions":[{"n":1},{"n":1}]}
{"key":"c","versions":[{"n":3},{"n":4}]}`)
	require.NoError(t, err)

	out, err := diffview.RenderAll(records)
	require.NoError(t, err)
	assert.Contains(t, out, "--- a@0")
	assert.NotContains(t, out, "--- b@0")
	assert.Contains(t, out, "--- c@0")

	_, err = diffview.RenderAll([]ndjson.Value{ndjson.StringValue("x")})
	assert.ErrorIs(t, err, diffview.ErrNotDiffRecord)
}
