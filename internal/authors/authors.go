// Package authors cleans scraped bylines and resolves pen names to the
// contributors behind them.
package authors

import (
	"strings"

	"github.com/lesleyera/cncreport/internal/config"
)

// Unknown is returned when a byline normalizes to nothing.
const Unknown = "미상"

// reporterSuffixes are stripped anywhere in the raw byline before tokenizing.
var reporterSuffixes = []string{"전문기자", "기자"}

// titles are standalone tokens that precede the actual name in some bylines
// ("편집인 김철수"). When the first token is one of these the second token is
// the name.
var titles = []string{"편집인", "전문", "편집", "기자"}

// Normalize reduces a raw byline to a single clean name token.
//
// Order matters: the glued 전문기자/기자 suffixes go first (longest first, so
// 전문기자 is not left as a dangling 전문), then the byline is cut down to one
// token, then any title fragment still glued to the name is removed. Empty
// input, or input that is nothing but titles, becomes Unknown.
func Normalize(raw string) string {
	name := strings.ReplaceAll(raw, "#", "")
	for _, s := range reporterSuffixes {
		name = strings.ReplaceAll(name, s, "")
	}
	name = strings.TrimSpace(name)

	words := strings.Fields(name)
	switch {
	case len(words) > 1:
		if isTitle(words[0]) {
			name = words[1]
		} else {
			name = words[0]
		}
	case len(words) == 1:
		name = words[0]
	}

	for _, t := range titles {
		name = strings.ReplaceAll(name, t, "")
	}
	name = strings.Join(strings.Fields(name), " ")

	if name == "" {
		return Unknown
	}
	return name
}

func isTitle(word string) bool {
	for _, t := range titles {
		if word == t {
			return true
		}
	}
	return false
}

// Resolver maps pen names to real contributor names. The table is static
// configuration, loaded once; lookups are safe for concurrent use.
type Resolver struct {
	penToReal map[string]string
}

// NewResolver builds a resolver from the configured mapping rows.
func NewResolver(mapping []config.PenName) *Resolver {
	m := make(map[string]string, len(mapping))
	for _, row := range mapping {
		m[row.Pen] = row.Real
	}
	return &Resolver{penToReal: m}
}

// Resolve returns the real name behind a pen name, or the pen name itself
// when no mapping exists. An unmapped byline is not an error.
func (r *Resolver) Resolve(penName string) string {
	if real, ok := r.penToReal[penName]; ok {
		return real
	}
	return penName
}

// Size returns the number of mapped pen names.
func (r *Resolver) Size() int {
	return len(r.penToReal)
}
