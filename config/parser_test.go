package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleMatrix = `{
	"os": ["ubuntu-latest", "windows-latest", "macos-latest"],
	"versions": {"rust": ["1.80.0", "1.85.0", "stable"]},
	"ghpages_branch": "ghgapes"
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matrix.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseConfig(t *testing.T) {
	path := writeConfig(t, exampleMatrix)

	for _, strict := range []bool{false, true} {
		cfg, err := ParseConfig(path, strict)
		require.NoError(t, err)

		assert.Equal(t, []string{"ubuntu-latest", "windows-latest", "macos-latest"}, cfg.OS())
		rust, ok := cfg.VersionsFor("rust")
		require.True(t, ok)
		assert.Equal(t, []string{"1.80.0", "1.85.0", "stable"}, rust)
		assert.Equal(t, "ghgapes", cfg.GhPagesBranch())
		assert.Equal(t, []string{"rust"}, cfg.Ecosystems())
	}
}

func TestParseConfig_Fixture(t *testing.T) {
	cfg, err := ParseConfig(filepath.Join("testdata", "rust_project_matrix.json"), true)
	require.NoError(t, err)

	assert.Contains(t, cfg.OS(), "macos-latest")
	rust, _ := cfg.VersionsFor("rust")
	assert.Equal(t, []string{"1.80.0", "1.81.0", "1.82.0", "1.83.0", "1.84.0", "1.84.1", "1.85.0", "stable"}, rust)
	assert.Equal(t, "ghgapes", cfg.GhPagesBranch())
}

func TestParseConfig_PreservesDocumentAsWritten(t *testing.T) {
	path := writeConfig(t, `{
		"os": ["windows-latest", "ubuntu-latest", "windows-latest"],
		"versions": {
			"python": ["3.13", "3.10", "3.13"],
			"go": [],
			"nodejs": ["22", "18"]
		},
		"ghpages_branch": "gh-pages"
	}`)

	cfg, err := ParseConfig(path, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"windows-latest", "ubuntu-latest", "windows-latest"}, cfg.OS())
	assert.Equal(t, []string{"python", "go", "nodejs"}, cfg.Ecosystems())
	assert.Equal(t, map[string][]string{
		"python": {"3.13", "3.10", "3.13"},
		"go":     {},
		"nodejs": {"22", "18"},
	}, cfg.Versions())

	goVersions, ok := cfg.VersionsFor("go")
	assert.True(t, ok)
	assert.Empty(t, goVersions)
}

func TestParseConfig_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		strict  bool
		kind    Kind
	}{
		{name: "empty file", content: "", kind: KindSyntax},
		{name: "whitespace only", content: " \n\t", kind: KindSyntax},
		{name: "truncated braces", content: `{"os": ["ubuntu-latest"], "versions": {"rust": []}`, kind: KindSyntax},
		{name: "trailing garbage", content: exampleMatrix + "}", kind: KindSyntax},
		{name: "second top-level value", content: exampleMatrix + ` {}`, kind: KindSyntax},
		{name: "invalid utf-8 in ecosystem", content: "{\"os\": [], \"versions\": {\"ru\xffst\": [\"1\"]}, \"ghpages_branch\": \"x\"}", kind: KindSyntax},
		{name: "invalid utf-8 in ignored key", content: "{\"os\": [], \"versions\": {}, \"ghpages_branch\": \"x\", \"\xc3\": 1}", kind: KindSyntax},
		{name: "not an object", content: `["ubuntu-latest"]`, kind: KindShape},
		{name: "missing versions", content: `{"os": [], "ghpages_branch": "x"}`, kind: KindShape},
		{name: "missing versions strict", content: `{"os": [], "ghpages_branch": "x"}`, strict: true, kind: KindShape},
		{name: "missing os", content: `{"versions": {}, "ghpages_branch": "x"}`, kind: KindShape},
		{name: "missing ghpages_branch", content: `{"os": [], "versions": {}}`, kind: KindShape},
		{name: "os is a string", content: `{"os": "ubuntu-latest", "versions": {}, "ghpages_branch": "x"}`, kind: KindShape},
		{name: "os holds a number", content: `{"os": ["ubuntu-latest", 1], "versions": {}, "ghpages_branch": "x"}`, kind: KindShape},
		{name: "os is null", content: `{"os": null, "versions": {}, "ghpages_branch": "x"}`, kind: KindShape},
		{name: "versions is an array", content: `{"os": [], "versions": ["1.0"], "ghpages_branch": "x"}`, kind: KindShape},
		{name: "versions value is a string", content: `{"os": [], "versions": {"rust": "stable"}, "ghpages_branch": "x"}`, kind: KindShape},
		{name: "branch is a number", content: `{"os": [], "versions": {}, "ghpages_branch": 1}`, kind: KindShape},
		{name: "os holds a huge number", content: `{"os": [1e400], "versions": {}, "ghpages_branch": "x"}`, kind: KindShape},
		{name: "huge number in extra key strict", content: `{"os": [], "versions": {}, "ghpages_branch": "x", "extra": 1e400}`, strict: true, kind: KindStrict},
		{name: "extra key strict", content: `{"os": [], "versions": {}, "ghpages_branch": "x", "extra": 1}`, strict: true, kind: KindStrict},
		{name: "duplicate top-level key strict", content: `{"os": [], "os": [], "versions": {}, "ghpages_branch": "x"}`, strict: true, kind: KindStrict},
		{name: "duplicate ecosystem strict", content: `{"os": [], "versions": {"go": [], "go": ["1.24.0"]}, "ghpages_branch": "x"}`, strict: true, kind: KindStrict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)

			cfg, err := ParseConfig(path, tt.strict)
			require.Error(t, err)
			assert.Nil(t, cfg)

			var pe *ParseError
			require.True(t, errors.As(err, &pe), "expected *ParseError, got %T", err)
			assert.Equal(t, tt.kind, pe.Kind)
			assert.Equal(t, path, pe.Path)
			assert.True(t, errors.Is(err, tt.kind.sentinel()))
			assert.Contains(t, err.Error(), path)
		})
	}
}

func TestParseConfig_FileNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "non-existent.json")

	cfg, err := ParseConfig(path, false)
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "non-existent.json")
}

func TestParseConfig_DirectoryIsIOFailure(t *testing.T) {
	_, err := ParseConfig(t.TempDir(), false)
	assert.ErrorIs(t, err, ErrIO)
}

func TestParseConfig_ExtraKey(t *testing.T) {
	path := writeConfig(t, `{
		"os": ["ubuntu-latest"],
		"versions": {"go": ["1.24.0"]},
		"ghpages_branch": "gh-pages",
		"extra": 1
	}`)

	_, err := ParseConfig(path, true)
	require.ErrorIs(t, err, ErrStrict)
	assert.Contains(t, err.Error(), `"extra"`)

	cfg, err := ParseConfig(path, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"ubuntu-latest"}, cfg.OS())
	assert.Equal(t, map[string][]string{"go": {"1.24.0"}}, cfg.Versions())
	assert.Equal(t, "gh-pages", cfg.GhPagesBranch())
	assert.Equal(t, []string{"extra"}, cfg.Ignored())
}

func TestParseConfig_ExtraKeyOutOfFloatRange(t *testing.T) {
	path := writeConfig(t, `{"os": ["ubuntu-latest"], "versions": {"rust": []}, "ghpages_branch": "x", "extra": 1e400}`)

	cfg, err := ParseConfig(path, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"ubuntu-latest"}, cfg.OS())
	assert.Equal(t, []string{"rust"}, cfg.Ecosystems())
	assert.Equal(t, []string{"extra"}, cfg.Ignored())
}

func TestParseConfig_InvalidUTF8(t *testing.T) {
	path := writeConfig(t, "{\"os\": [], \"versions\": {\"ru\xffst\": [\"1\"]}, \"ghpages_branch\": \"x\"}")

	cfg, err := ParseConfig(path, false)
	assert.Nil(t, cfg)
	require.ErrorIs(t, err, ErrSyntax)
	assert.Contains(t, err.Error(), "UTF-8")
}

func TestParseConfig_NoIgnoredKeys(t *testing.T) {
	cfg, err := ParseConfig(writeConfig(t, exampleMatrix), false)
	require.NoError(t, err)
	assert.NotNil(t, cfg.Ignored())
	assert.Empty(t, cfg.Ignored())
}

func TestParseConfig_DuplicateKeysLastWinsWhenTolerant(t *testing.T) {
	path := writeConfig(t, `{
		"os": ["a"],
		"versions": {"go": ["1.22.0"], "rust": [], "go": ["1.24.0"]},
		"ghpages_branch": "first",
		"ghpages_branch": "second",
		"versions2": {}
	}`)

	cfg, err := ParseConfig(path, false)
	require.NoError(t, err)
	assert.Equal(t, "second", cfg.GhPagesBranch())
	assert.Equal(t, []string{"versions2"}, cfg.Ignored())
	assert.Equal(t, []string{"go", "rust"}, cfg.Ecosystems())
	goVersions, _ := cfg.VersionsFor("go")
	assert.Equal(t, []string{"1.24.0"}, goVersions)
}

func TestParseConfig_DuplicateVersionsObjectNotMerged(t *testing.T) {
	path := writeConfig(t, `{
		"os": [],
		"versions": {"go": ["1.22.0"]},
		"versions": {"rust": ["stable"]},
		"ghpages_branch": "x"
	}`)

	cfg, err := ParseConfig(path, false)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"rust": {"stable"}}, cfg.Versions())
}

func TestParseConfig_ShapeViolationsListed(t *testing.T) {
	path := writeConfig(t, `{"os": [1, "ok"], "versions": {"rust": "stable"}}`)

	_, err := ParseConfig(path, false)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, KindShape, pe.Kind)

	msg := err.Error()
	assert.Contains(t, msg, "ghpages_branch")
	assert.Contains(t, msg, "/os/0")
	assert.Contains(t, msg, "/versions/rust")
	assert.GreaterOrEqual(t, len(pe.Violations()), 3)
}

func TestParseConfig_SyntaxErrorPosition(t *testing.T) {
	path := writeConfig(t, "{\n  \"os\": [\n    \"ubuntu-latest\",,\n  ]\n}")

	_, err := ParseConfig(path, false)
	require.ErrorIs(t, err, ErrSyntax)
	assert.Contains(t, err.Error(), "line 3")
}

func TestParseConfig_RoundTrip(t *testing.T) {
	path := writeConfig(t, `{
		"os": ["ubuntu-latest", "macos-latest"],
		"versions": {"ruby": ["3.3.6", "3.4.1"], "nodejs": [], "go": ["1.24.0"]},
		"ghpages_branch": "ghgapes"
	}`)

	original, err := ParseConfig(path, true)
	require.NoError(t, err)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	again, err := NewParser(WithStrict(true)).ParseBytes(data, "round-trip")
	require.NoError(t, err)
	assert.Equal(t, original, again)
}

func TestParser_ParseBytes(t *testing.T) {
	cfg, err := NewParser().ParseBytes([]byte(exampleMatrix), "inline")
	require.NoError(t, err)
	assert.Equal(t, "ghgapes", cfg.GhPagesBranch())

	_, err = NewParser().ParseBytes([]byte(`{`), "inline")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "inline", pe.Path)
	assert.Equal(t, KindSyntax, pe.Kind)
}

func TestParser_ZeroValue(t *testing.T) {
	var p Parser
	assert.False(t, p.Strict())

	cfg, err := p.ParseBytes([]byte(exampleMatrix), "zero")
	require.NoError(t, err)
	assert.Equal(t, []string{"rust"}, cfg.Ecosystems())
}

func TestParser_LogsRejection(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	p := NewParser(WithStrict(true), WithLogger(logger))
	assert.True(t, p.Strict())

	_, err := p.ParseBytes([]byte(`{"os": [], "versions": {}, "ghpages_branch": "x", "extra": 1}`), "strict.json")
	require.Error(t, err)

	var entries []map[string]interface{}
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var entry map[string]interface{}
		require.NoError(t, dec.Decode(&entry))
		entries = append(entries, entry)
	}
	require.NotEmpty(t, entries)

	last := entries[len(entries)-1]
	assert.Equal(t, "matrix config rejected", last["message"])
	assert.Equal(t, "strict.json", last["path"])
	assert.Equal(t, "strict", last["kind"])
}

func TestParseConfig_Concurrent(t *testing.T) {
	good := writeConfig(t, exampleMatrix)
	bad := writeConfig(t, `{"os": []}`)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, err := ParseConfig(good, i%4 == 0)
				assert.NoError(t, err)
			} else {
				_, err := ParseConfig(bad, false)
				assert.ErrorIs(t, err, ErrShape)
			}
		}(i)
	}
	wg.Wait()
}
