package textutil

import (
	"strconv"
	"strings"
	"unicode"
)

// MarkerStyle identifies one family of list markers. Styles that mix class or
// delimiter ("1." vs "2)") never link in hierarchy detection, so the style
// carries both.
type MarkerStyle string

const (
	MarkerNone       MarkerStyle = ""
	MarkerNumericDot MarkerStyle = "numeric_dot"   // 1. 2. 3.
	MarkerNumericPar MarkerStyle = "numeric_paren" // 1) 2) 3)
	MarkerAlphaDot   MarkerStyle = "alpha_dot"     // a. b. c.
	MarkerAlphaPar   MarkerStyle = "alpha_paren"   // a) b) c)
	MarkerRomanDot   MarkerStyle = "roman_dot"     // i. ii. iii.
	MarkerBullet     MarkerStyle = "bullet"        // - * •
)

// Marker is a parsed leading list marker.
type Marker struct {
	Style MarkerStyle
	// Index is the ordinal the marker encodes (1-based). Bullets carry no
	// ordinal and report 0.
	Index int
	// Rest is the text after the marker and its separating whitespace.
	Rest string
}

// ParseMarker inspects the leading characters of a line for a list marker.
// The zero Marker (Style == MarkerNone) means no marker was found.
func ParseMarker(text string) Marker {
	s := strings.TrimLeft(text, " \t")
	if s == "" {
		return Marker{}
	}

	if m, ok := parseBullet(s); ok {
		return m
	}
	if m, ok := parseNumeric(s); ok {
		return m
	}
	if m, ok := parseRoman(s); ok {
		return m
	}
	if m, ok := parseAlpha(s); ok {
		return m
	}
	return Marker{}
}

func parseBullet(s string) (Marker, bool) {
	r := []rune(s)
	if r[0] != '-' && r[0] != '*' && r[0] != '•' {
		return Marker{}, false
	}
	if len(r) > 1 && !unicode.IsSpace(r[1]) {
		return Marker{}, false
	}
	return Marker{Style: MarkerBullet, Rest: strings.TrimLeft(string(r[1:]), " \t")}, true
}

func parseNumeric(s string) (Marker, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(s) {
		return Marker{}, false
	}
	style, ok := delimiterStyle(s[i], MarkerNumericDot, MarkerNumericPar)
	if !ok {
		return Marker{}, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil || n <= 0 {
		return Marker{}, false
	}
	return Marker{Style: style, Index: n, Rest: strings.TrimLeft(s[i+1:], " \t")}, true
}

// parseRoman recognizes lowercase roman numerals up to a few symbols; anything
// longer is almost certainly prose, not a marker.
func parseRoman(s string) (Marker, bool) {
	i := 0
	for i < len(s) && i < 4 && (s[i] == 'i' || s[i] == 'v' || s[i] == 'x') {
		i++
	}
	if i == 0 || i >= len(s) {
		return Marker{}, false
	}
	if _, ok := delimiterStyle(s[i], MarkerRomanDot, MarkerNone); !ok || s[i] != '.' {
		return Marker{}, false
	}
	n := romanValue(s[:i])
	if n == 0 {
		return Marker{}, false
	}
	return Marker{Style: MarkerRomanDot, Index: n, Rest: strings.TrimLeft(s[i+1:], " \t")}, true
}

func parseAlpha(s string) (Marker, bool) {
	c := s[0]
	if c < 'a' || c > 'z' || len(s) < 2 {
		return Marker{}, false
	}
	style, ok := delimiterStyle(s[1], MarkerAlphaDot, MarkerAlphaPar)
	if !ok {
		return Marker{}, false
	}
	return Marker{Style: style, Index: int(c-'a') + 1, Rest: strings.TrimLeft(s[2:], " \t")}, true
}

func delimiterStyle(c byte, dot, paren MarkerStyle) (MarkerStyle, bool) {
	switch c {
	case '.':
		return dot, true
	case ')':
		if paren == MarkerNone {
			return MarkerNone, false
		}
		return paren, true
	}
	return MarkerNone, false
}

var romans = map[string]int{
	"i": 1, "ii": 2, "iii": 3, "iv": 4, "v": 5,
	"vi": 6, "vii": 7, "viii": 8, "ix": 9, "x": 10,
}

func romanValue(s string) int {
	return romans[s]
}

var connectorTokens = map[string]struct{}{
	"->": {}, "=>": {}, "-->": {}, "==>": {},
	"<-": {}, "<=": {}, "<--": {},
	"→": {}, "⇒": {}, "←": {}, "⇐": {},
	"↑": {}, "↓": {}, "⇑": {}, "⇓": {},
}

// IsConnector reports whether text is nothing but an arrow-like token. Only
// OCR-transcribed arrow text counts; hand-drawn ink strokes never reach the
// pipeline as text.
func IsConnector(text string) bool {
	_, ok := connectorTokens[strings.TrimSpace(text)]
	return ok
}

// ConnectorDirection reports the horizontal direction an arrow token points:
// +1 right, -1 left, 0 vertical or unknown.
func ConnectorDirection(text string) int {
	switch strings.TrimSpace(text) {
	case "->", "=>", "-->", "==>", "→", "⇒":
		return 1
	case "<-", "<=", "<--", "←", "⇐":
		return -1
	}
	return 0
}
