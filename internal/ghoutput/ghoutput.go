// Package ghoutput turns a matrix config into GitHub Actions step outputs.
//
// Every list is exposed twice: as a JSON array under its own name (ready
// for fromJSON in a workflow matrix) and item by item with an index suffix.
//
//	OS=["ubuntu-latest", "macos-latest"]
//	OS_0=ubuntu-latest
//	OS_1=macos-latest
//	VERSIONS_RUST=["1.85.0", "stable"]
//	VERSIONS_RUST_0=1.85.0
//	VERSIONS_RUST_1=stable
//	GHPAGES_BRANCH=gh-pages
package ghoutput

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/json2vars-setter/json2vars/config"
)

// ErrNoOutputFile is returned when no GITHUB_OUTPUT file is configured.
var ErrNoOutputFile = errors.New("GITHUB_OUTPUT is not set")

// Pair is a single step output.
type Pair struct {
	Key   string
	Value string
}

// Flatten returns the outputs of cfg in document order. Output names are
// upper-cased, so ecosystems that differ only in case (or that shadow an
// indexed item, like "rust" and "rust_0") are rejected.
func Flatten(cfg *config.MatrixConfig) ([]Pair, error) {
	var pairs []Pair

	list, err := listPairs("OS", cfg.OS())
	if err != nil {
		return nil, err
	}
	pairs = append(pairs, list...)

	for _, eco := range cfg.Ecosystems() {
		versions, _ := cfg.VersionsFor(eco)
		list, err := listPairs("VERSIONS_"+strings.ToUpper(eco), versions)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, list...)
	}

	pairs = append(pairs, Pair{Key: "GHPAGES_BRANCH", Value: cfg.GhPagesBranch()})

	seen := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		if err := checkKey(p.Key); err != nil {
			return nil, err
		}
		if seen[p.Key] {
			return nil, fmt.Errorf("duplicate output name %q", p.Key)
		}
		seen[p.Key] = true
	}
	return pairs, nil
}

// ToMap indexes pairs by key.
func ToMap(pairs []Pair) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p.Key] = p.Value
	}
	return m
}

func listPairs(key string, items []string) ([]Pair, error) {
	text, err := arrayText(items)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", key, err)
	}

	pairs := []Pair{{Key: key, Value: text}}
	for i, item := range items {
		pairs = append(pairs, Pair{Key: fmt.Sprintf("%s_%d", key, i), Value: item})
	}
	return pairs, nil
}

// arrayText renders items as a JSON array with ", " separators.
func arrayText(items []string) (string, error) {
	parts := make([]string, len(items))
	for i, item := range items {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(item); err != nil {
			return "", err
		}
		parts[i] = strings.TrimSuffix(buf.String(), "\n")
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

func checkKey(key string) error {
	if key == "" || strings.ContainsAny(key, "=\r\n") {
		return fmt.Errorf("invalid output name %q", key)
	}
	return nil
}

// Write writes pairs in the GITHUB_OUTPUT file format. Multi-line values
// use the heredoc form with a random delimiter.
func Write(w io.Writer, pairs []Pair) error {
	for _, p := range pairs {
		if err := checkKey(p.Key); err != nil {
			return err
		}

		var err error
		if strings.ContainsAny(p.Value, "\r\n") {
			delim := "ghadelimiter_" + uuid.NewString()
			_, err = fmt.Fprintf(w, "%s<<%s\n%s\n%s\n", p.Key, delim, p.Value, delim)
		} else {
			_, err = fmt.Fprintf(w, "%s=%s\n", p.Key, p.Value)
		}
		if err != nil {
			return fmt.Errorf("writing output %s: %w", p.Key, err)
		}
	}
	return nil
}

// Append appends pairs to the GITHUB_OUTPUT file at path.
func Append(path string, pairs []Pair) error {
	if path == "" {
		return ErrNoOutputFile
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening output file: %w", err)
	}

	if err := Write(f, pairs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
