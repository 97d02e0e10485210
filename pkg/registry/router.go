package registry

import (
	"fmt"
	"regexp"
)

var (
	placeholderRe = regexp.MustCompile(`\{(\w+)\}`)
	markerRe      = regexp.MustCompile("\x00(\\w+)\x00")
)

// patternMatcher is the compiled form of a resource URI pattern.
type patternMatcher struct {
	re *regexp.Regexp
}

// compilePattern turns a URI pattern with {name} placeholders into an
// anchored regular expression. Literal characters, including regex
// metacharacters such as '.' and '[', match themselves; each placeholder
// becomes a named capture matching one or more non-slash characters.
//
// Escaping works by swapping placeholders for NUL-delimited markers first,
// quoting the whole pattern, then expanding the markers: NUL cannot appear
// in a URI pattern and survives quoting untouched.
func compilePattern(pattern string) (*patternMatcher, error) {
	marked := placeholderRe.ReplaceAllString(pattern, "\x00$1\x00")
	quoted := regexp.QuoteMeta(marked)
	expr := markerRe.ReplaceAllString(quoted, `(?P<$1>[^/]+)`)

	re, err := regexp.Compile(`\A` + expr + `\z`)
	if err != nil {
		return nil, fmt.Errorf("invalid resource pattern %q: %w", pattern, err)
	}
	return &patternMatcher{re: re}, nil
}

// match tests uri against the whole pattern and returns the captured
// placeholder values.
func (m *patternMatcher) match(uri string) (map[string]string, bool) {
	groups := m.re.FindStringSubmatch(uri)
	if groups == nil {
		return nil, false
	}

	params := make(map[string]string)
	for i, name := range m.re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		params[name] = groups[i]
	}
	return params, true
}
