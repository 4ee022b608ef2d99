// Package config parses and validates build-matrix configuration files.
//
// A matrix file is a JSON object with exactly three recognized keys:
//   - os: the operating systems to build on, e.g. ["ubuntu-latest", "macos-latest"]
//   - versions: per-ecosystem version lists, e.g. {"rust": ["1.84.0", "stable"]}
//   - ghpages_branch: the branch generated pages are published to
//
// Basic Usage:
//
//	cfg, err := config.ParseConfig(".github/workflows/matrix.json", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, eco := range cfg.Ecosystems() {
//	    versions, _ := cfg.VersionsFor(eco)
//	    fmt.Printf("%s: %v\n", eco, versions)
//	}
//
// Strict Mode:
//
// In strict mode, unknown top-level keys and duplicate object keys are
// rejected. Otherwise unknown keys are ignored and a duplicated key keeps
// its last value. Missing or mistyped fields fail in both modes.
//
// Errors:
//
// Every failure is a *ParseError whose Kind tells I/O, syntax, shape and
// strict-mode failures apart:
//
//	if errors.Is(err, config.ErrShape) {
//	    var pe *config.ParseError
//	    errors.As(err, &pe)
//	    for _, v := range pe.Violations() {
//	        fmt.Println(v)
//	    }
//	}
//
// A parsed *MatrixConfig has no mutation API. Its accessors return copies.
package config
