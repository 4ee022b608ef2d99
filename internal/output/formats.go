package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/json2vars-setter/json2vars/config"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatJSON outputs indented JSON that parses back to the same config
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs YAML with keys in document order
	FormatYAML OutputFormat = "yaml"
	// FormatText is a human-readable summary
	FormatText OutputFormat = "text"
)

// Formats lists the accepted format names.
func Formats() []string {
	return []string{string(FormatJSON), string(FormatYAML), string(FormatText)}
}

// ParseFormat converts a format name to an OutputFormat.
func ParseFormat(name string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatYAML, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q, must be one of: %s", name, strings.Join(Formats(), ", "))
	}
}

// Render writes cfg to w in the given format.
func Render(w io.Writer, cfg *config.MatrixConfig, format OutputFormat, noColor bool) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	case FormatText:
		_, err := io.WriteString(w, Summary(cfg, noColor))
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Summary describes cfg in a few human-readable lines.
func Summary(cfg *config.MatrixConfig, noColor bool) string {
	scheme := Scheme(noColor)
	var buf strings.Builder

	osList := cfg.OS()
	fmt.Fprintf(&buf, "%s %s: %s\n",
		scheme.Label.Sprint("OS"), scheme.Count.Sprintf("(%d)", len(osList)), joinOrDash(osList, scheme))

	fmt.Fprintf(&buf, "%s\n", scheme.Label.Sprint("Versions"))
	ecosystems := cfg.Ecosystems()
	if len(ecosystems) == 0 {
		buf.WriteString("  -\n")
	}
	for _, eco := range ecosystems {
		versions, _ := cfg.VersionsFor(eco)
		fmt.Fprintf(&buf, "  %s %s: %s\n",
			scheme.Key.Sprint(eco), scheme.Count.Sprintf("(%d)", len(versions)), joinOrDash(versions, scheme))
	}

	fmt.Fprintf(&buf, "%s: %s\n", scheme.Label.Sprint("GitHub Pages branch"), scheme.Highlight.Sprint(cfg.GhPagesBranch()))

	return buf.String()
}

func joinOrDash(items []string, scheme *ColorScheme) string {
	if len(items) == 0 {
		return "-"
	}
	colored := make([]string, len(items))
	for i, item := range items {
		colored[i] = scheme.Value.Sprint(item)
	}
	return strings.Join(colored, ", ")
}
