package evaluator

import (
	"fmt"
	"strings"

	"github.com/yuin/gopher-lua/pm"
)

// patternMatch is one match of a script pattern over a subject string.
// Offsets are byte positions into the whole subject.
type patternMatch struct {
	start, end int
	caps       []Object // string captures as String, position captures as Number
}

// findPattern runs pat against s starting at byte offset, returning at most
// limit matches (all of them when limit is negative).
func findPattern(pat, s string, offset, limit int) ([]patternMatch, error) {
	if limit == 0 {
		return nil, nil
	}
	if err := checkPattern(pat); err != nil {
		return nil, err
	}
	mds, err := pm.Find(pat, []byte(s), offset, limit)
	if err != nil {
		return nil, err
	}
	out := make([]patternMatch, 0, len(mds))
	for _, md := range mds {
		m := patternMatch{start: md.Capture(0), end: md.Capture(1)}
		for i := 2; i+1 < md.CaptureLength(); i += 2 {
			if md.IsPosCapture(i) {
				m.caps = append(m.caps, NewNumber(float64(md.Capture(i))))
				continue
			}
			m.caps = append(m.caps, NewString(s[md.Capture(i):md.Capture(i+1)]))
		}
		out = append(out, m)
	}
	return out, nil
}

// checkPattern rejects what pm would silently misread: a trailing '%', a
// short %b and frontier items, which pm parses as a literal 'f'.
func checkPattern(pat string) error {
	inSet := false
	for i := 0; i < len(pat); i++ {
		switch c := pat[i]; {
		case c == '%':
			if i+1 >= len(pat) {
				return fmt.Errorf("malformed pattern (ends with '%%')")
			}
			switch {
			case inSet:
			case pat[i+1] == 'f':
				return fmt.Errorf("frontier pattern %%f is not supported")
			case pat[i+1] == 'b':
				if i+3 >= len(pat) {
					return fmt.Errorf("missing arguments to '%%b'")
				}
				i += 2
			}
			i++
		case c == '[' && !inSet:
			inSet = true
			if i+1 < len(pat) && pat[i+1] == '^' {
				i++
			}
			if i+1 < len(pat) && pat[i+1] == ']' {
				i++
			}
		case c == ']' && inSet:
			inSet = false
		}
	}
	return nil
}

// values returns the captures, or the whole match when there are none.
func (m patternMatch) values(s string) []Object {
	if len(m.caps) == 0 {
		return []Object{NewString(s[m.start:m.end])}
	}
	return m.caps
}

// hasPatternSpecials reports whether find can skip the matcher.
func hasPatternSpecials(pat string) bool {
	return strings.ContainsAny(pat, "^$*+?.([%-")
}
