package log

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryAndFields(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, slog.LevelDebug)
	t.Cleanup(func() { Init(nil, slog.LevelInfo) })

	Debug(CatProject, "skipped record", "id", "n1")

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "cat=project")
	assert.Contains(t, out, `msg="skipped record"`)
	assert.Contains(t, out, "id=n1")
}

func TestMinLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, slog.LevelWarn)
	t.Cleanup(func() { Init(nil, slog.LevelInfo) })

	Info(CatUndo, "hidden")
	require.Empty(t, buf.String())

	SetMinLevel(slog.LevelInfo)
	Info(CatUndo, "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestErrorErr(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, slog.LevelInfo)
	t.Cleanup(func() { Init(nil, slog.LevelInfo) })

	ErrorErr(CatExt, "apply failed", errors.New("boom"), "ext", "notes")
	ErrorErr(CatExt, "apply failed", nil)

	out := buf.String()
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "ext=notes")
	assert.Contains(t, out, "error=<nil>")
}

func TestNilWriterDisables(t *testing.T) {
	Init(nil, slog.LevelDebug)
	Error(CatCLI, "nowhere") // must not panic
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
