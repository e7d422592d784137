package testrunner

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Metadata is the YAML front matter of a test262 file.
type Metadata struct {
	Description string    `yaml:"description"`
	Features    []string  `yaml:"features"`
	Flags       []string  `yaml:"flags"`
	Includes    []string  `yaml:"includes"`
	Negative    *Negative `yaml:"negative"`
}

// Negative describes a test that must fail in the given phase.
type Negative struct {
	Phase string `yaml:"phase"` // parse, resolution or runtime
	Type  string `yaml:"type"`  // constructor name, e.g. SyntaxError
}

// HasFlag reports whether the test carries flag.
func (m Metadata) HasFlag(flag string) bool {
	return slices.Contains(m.Flags, flag)
}

// ParseMetadata extracts the front matter between /*--- and ---*/. A file
// without front matter yields empty metadata.
func ParseMetadata(source string) (Metadata, error) {
	var meta Metadata
	start := strings.Index(source, "/*---")
	if start < 0 {
		return meta, nil
	}
	end := strings.Index(source[start:], "---*/")
	if end < 0 {
		return meta, fmt.Errorf("unterminated front matter")
	}
	if err := yaml.Unmarshal([]byte(source[start+5:start+end]), &meta); err != nil {
		return meta, fmt.Errorf("front matter: %w", err)
	}
	return meta, nil
}

var unsupportedFeatures = map[string]bool{
	"Array.fromAsync":                 true,
	"ArrayBuffer":                     true,
	"Atomics":                         true,
	"BigInt":                          true,
	"DataView":                        true,
	"FinalizationRegistry":            true,
	"IsHTMLDDA":                       true,
	"Intl":                            true,
	"Promise":                         true,
	"Proxy":                           true,
	"SharedArrayBuffer":               true,
	"Symbol.asyncIterator":            true,
	"Symbol.isConcatSpreadable":       true,
	"Symbol.match":                    true,
	"Symbol.matchAll":                 true,
	"Symbol.replace":                  true,
	"Symbol.search":                   true,
	"Symbol.species":                  true,
	"Symbol.split":                    true,
	"Symbol.unscopables":              true,
	"Temporal":                        true,
	"TypedArray":                      true,
	"WeakRef":                         true,
	"async-functions":                 true,
	"async-iteration":                 true,
	"class-fields-private":            true,
	"class-methods-private":           true,
	"class-static-methods-private":    true,
	"decorators":                      true,
	"dynamic-import":                  true,
	"generators":                      true,
	"import-assertions":               true,
	"import.meta":                     true,
	"json-modules":                    true,
	"regexp-lookbehind":               true,
	"regexp-unicode-property-escapes": true,
	"tail-call-optimization":          true,
	"top-level-await":                 true,
}

// unsupportedFeature returns the first feature the engine does not
// implement, or "".
func (m Metadata) unsupportedFeature() string {
	for _, f := range m.Features {
		if unsupportedFeatures[f] {
			return f
		}
	}
	return ""
}
