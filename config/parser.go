package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/json2vars-setter/json2vars/pkg/jsonpath"
)

// Parser parses matrix files. The zero value is a tolerant parser that
// does not log; a Parser holds no state between calls and is safe for
// concurrent use.
type Parser struct {
	strict bool
	logger *zerolog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithStrict switches strict mode on or off.
func WithStrict(strict bool) Option {
	return func(p *Parser) {
		p.strict = strict
	}
}

// WithLogger sets the logger parse diagnostics are written to.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Parser) {
		p.logger = &logger
	}
}

// NewParser creates a parser. Without options it is tolerant and silent.
func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Strict reports whether the parser runs in strict mode.
func (p *Parser) Strict() bool {
	return p.strict
}

// ParseConfig reads and validates the matrix file at path.
func ParseConfig(path string, strict bool) (*MatrixConfig, error) {
	return NewParser(WithStrict(strict)).Parse(path)
}

// Parse reads the whole file at path and parses it.
func (p *Parser) Parse(path string) (*MatrixConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, p.reject(newParseError(path, KindIO, err))
	}
	return p.ParseBytes(data, path)
}

// ParseBytes parses an in-memory document. source names the document in
// diagnostics only.
func (p *Parser) ParseBytes(data []byte, source string) (*MatrixConfig, error) {
	p.log().Debug().Str("path", source).Bool("strict", p.strict).Int("bytes", len(data)).Msg("parsing matrix config")

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, p.reject(newParseError(source, KindSyntax, errors.New("empty document")))
	}

	if !utf8.Valid(data) {
		return nil, p.reject(newParseError(source, KindSyntax, errors.New("document is not valid UTF-8")))
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return nil, p.reject(newParseError(source, KindSyntax, describeSyntaxError(data, err)))
	}

	schema, err := shapeSchema()
	if err != nil {
		return nil, p.reject(newParseError(source, KindShape, err))
	}
	if errs := schema.ValidateValue(doc); len(errs) > 0 {
		return nil, p.reject(newParseError(source, KindShape, errs))
	}

	if p.strict {
		if err := checkStrict(string(data)); err != nil {
			return nil, p.reject(newParseError(source, KindStrict, err))
		}
	}

	cfg, err := decode(data)
	if err != nil {
		return nil, p.reject(newParseError(source, KindShape, err))
	}

	p.log().Debug().Str("path", source).
		Int("os", len(cfg.os)).
		Strs("ecosystems", cfg.ecosystems).
		Strs("ignored", cfg.ignored).
		Msg("matrix config parsed")

	return cfg, nil
}

func (p *Parser) log() *zerolog.Logger {
	if p.logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return p.logger
}

func (p *Parser) reject(err *ParseError) error {
	p.log().Debug().Err(err.Err).Str("path", err.Path).Stringer("kind", err.Kind).Msg("matrix config rejected")
	return err
}

// decodeDocument reads exactly one JSON value. Numbers are kept as
// json.Number so that values outside the float64 range stay well-formed.
func decodeDocument(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.New("unexpected end of JSON input")
		}
		return nil, err
	}

	var trailing interface{}
	switch err := dec.Decode(&trailing); {
	case err == io.EOF:
		return doc, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
	case err != nil:
		return nil, err
	default:
		return nil, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
	}
}

// checkStrict rejects unknown top-level keys and duplicate keys at the top
// level or inside versions.
func checkStrict(doc string) error {
	dups, err := jsonpath.Duplicates(doc, "$")
	if err != nil {
		return err
	}
	if len(dups) > 0 {
		return fmt.Errorf("duplicate key(s) %s", quoteAll(dups))
	}

	keys, err := jsonpath.Keys(doc, "$")
	if err != nil {
		return err
	}
	var unknown []string
	for _, k := range keys {
		if !knownFields[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown field(s) %s", quoteAll(unknown))
	}

	dups, err = jsonpath.Duplicates(doc, "$.versions")
	if err != nil {
		return err
	}
	if len(dups) > 0 {
		return fmt.Errorf("duplicate key(s) %s in versions", quoteAll(dups))
	}

	return nil
}

// decode builds the config from a document that already passed the schema.
// Top-level fields are decoded one by one so that a repeated key keeps only
// its last value instead of being merged.
func decode(data []byte) (*MatrixConfig, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	var (
		osList   []string
		versions map[string][]string
		branch   string
	)
	if err := json.Unmarshal(fields["os"], &osList); err != nil {
		return nil, fmt.Errorf("os: %w", err)
	}
	if err := json.Unmarshal(fields["versions"], &versions); err != nil {
		return nil, fmt.Errorf("versions: %w", err)
	}
	if err := json.Unmarshal(fields["ghpages_branch"], &branch); err != nil {
		return nil, fmt.Errorf("ghpages_branch: %w", err)
	}

	ecosystems, err := jsonpath.Keys(string(fields["versions"]), "$")
	if err != nil {
		return nil, fmt.Errorf("versions: %w", err)
	}

	keys, err := jsonpath.Keys(string(data), "$")
	if err != nil {
		return nil, err
	}
	var ignored []string
	for _, k := range keys {
		if !knownFields[k] {
			ignored = append(ignored, k)
		}
	}

	cfg := newMatrixConfig(osList, ecosystems, versions, branch)
	cfg.ignored = cloneStrings(ignored)
	return cfg, nil
}

// describeSyntaxError adds the line and column to JSON syntax errors.
func describeSyntaxError(data []byte, err error) error {
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return err
	}

	offset := int(syntaxErr.Offset)
	if offset > len(data) {
		offset = len(data)
	}
	line := 1 + bytes.Count(data[:offset], []byte("\n"))
	col := offset - bytes.LastIndexByte(data[:offset], '\n')

	return fmt.Errorf("line %d, column %d: %w", line, col, err)
}

func quoteAll(keys []string) string {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = fmt.Sprintf("%q", k)
	}
	return strings.Join(quoted, ", ")
}
