package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/datkit/dat"
	"github.com/randalmurphal/datkit/internal/output"
	"github.com/randalmurphal/datkit/ndjson"
)

func record(t *testing.T, line string) ndjson.Value {
	t.Helper()
	v, err := ndjson.DecodeLine([]byte(line))
	require.NoError(t, err)
	return v
}

func TestPrinter_RecordJSONKeepsOrder(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewPrinter(&buf, true, false)

	require.NoError(t, p.Record(record(t, `{"z":1,"a":"x"}`)))
	assert.Equal(t, "{\"z\":1,\"a\":\"x\"}\n", buf.String())
}

func TestPrinter_RecordHuman(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewPrinter(&buf, false, false)

	require.NoError(t, p.Records([]ndjson.Value{record(t, `{"version":"v1"}`)}))
	assert.Equal(t, "{\n  \"version\": \"v1\"\n}\n", buf.String())
}

func TestPrinter_RecordHighlightedOnTTY(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewPrinter(&buf, false, true)

	require.NoError(t, p.Record(record(t, `{"version":"v1"}`)))
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "v1")
}

func TestPrinter_List(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewPrinter(&buf, true, false)
	require.NoError(t, p.List("datasets", []string{"a", "b"}))

	var got map[string][]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []string{"a", "b"}, got["datasets"])

	buf.Reset()
	p = output.NewPrinter(&buf, false, false)
	require.NoError(t, p.List("forks", []string{"f1", "f2"}))
	assert.Equal(t, "f1\nf2\n", buf.String())

	buf.Reset()
	require.NoError(t, p.List("forks", nil))
	assert.Equal(t, "(no forks)\n", buf.String())
}

func TestPrinter_Lines(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewPrinter(&buf, true, false)
	require.NoError(t, p.Lines([]string{`{"a":1}`, `{"a":2}`}))
	assert.Equal(t, "{\"a\":1}\n{\"a\":2}\n", buf.String())
}

func TestPrinter_Diff(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewPrinter(&buf, false, false)

	p.Diff("--- k@0\n+++ k@1\n")
	assert.Equal(t, "--- k@0\n+++ k@1\n", buf.String())

	buf.Reset()
	p.Diff("")
	assert.Equal(t, "(no changes)\n", buf.String())
}

func TestPrinter_Error(t *testing.T) {
	var out, errOut bytes.Buffer
	p := output.NewPrinter(&out, false, false).WithStderr(&errOut)
	p.Error(errors.New("boom"))
	assert.Empty(t, out.String())
	assert.Equal(t, "Error: boom\n", errOut.String())

	out.Reset()
	p = output.NewPrinter(&out, true, false)
	p.Error(&dat.ExecutionError{Stderr: "disk full"})

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "dat execution failed: disk full", got["error"])
	assert.EqualValues(t, output.ExitSystemError, got["code"])
}

func TestPrinter_SuccessAndWarn(t *testing.T) {
	var out, errOut bytes.Buffer
	p := output.NewPrinter(&out, false, false).WithStderr(&errOut)
	require.NoError(t, p.Success("initialized"))
	p.Warn("slow %s", "disk")
	assert.Equal(t, "initialized\n", out.String())
	assert.Equal(t, "Warning: slow disk\n", errOut.String())

	out.Reset()
	p = output.NewPrinter(&out, true, false)
	require.NoError(t, p.Success("initialized"))
	p.Warn("ignored in JSON mode")
	assert.JSONEq(t, `{"message":"initialized"}`, out.String())
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, output.ExitSuccess},
		{"exit error", output.NewSystemError("x"), output.ExitSystemError},
		{"invalid argument", dat.NewError("import", dat.ErrNoImportSource), output.ExitUserError},
		{"not a repository", &dat.ToolError{Kind: dat.KindNotARepository}, output.ExitUserError},
		{"auto detect", &dat.ToolError{Kind: dat.KindAutoDetect}, output.ExitUserError},
		{"generic tool error", &dat.ToolError{Kind: dat.KindGeneric}, output.ExitSystemError},
		{"execution", dat.NewError("log", &dat.ExecutionError{Stderr: "x"}), output.ExitSystemError},
		{"malformed", fmt.Errorf("wrap: %w", dat.ErrMalformedRecord), output.ExitSystemError},
		{"untyped", errors.New("other"), output.ExitUserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, output.ExitCodeFor(tt.err))
		})
	}
}

func TestFromError(t *testing.T) {
	assert.NoError(t, output.FromError(nil))

	cause := &dat.ExecutionError{Stderr: "x"}
	err := output.FromError(cause)
	var exitErr *output.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, output.ExitSystemError, exitErr.Code)
	assert.ErrorIs(t, err, cause)

	user := output.NewUserError("bad")
	assert.Same(t, user, output.FromError(user))
}

func TestHighlight(t *testing.T) {
	out, ok := output.Highlight("-a\n+b\n", "diff")
	require.True(t, ok)
	assert.Contains(t, out, "\x1b[")
}
