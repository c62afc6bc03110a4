package textutil

import "testing"

func TestParseMarker(t *testing.T) {
	tests := []struct {
		text  string
		style MarkerStyle
		index int
		rest  string
	}{
		{"1. Buy milk", MarkerNumericDot, 1, "Buy milk"},
		{"12. later item", MarkerNumericDot, 12, "later item"},
		{"3) third", MarkerNumericPar, 3, "third"},
		{"a. first letter", MarkerAlphaDot, 1, "first letter"},
		{"c) third letter", MarkerAlphaPar, 3, "third letter"},
		{"ii. second", MarkerRomanDot, 2, "second"},
		{"iv. fourth", MarkerRomanDot, 4, "fourth"},
		{"- dash item", MarkerBullet, 0, "dash item"},
		{"* star item", MarkerBullet, 0, "star item"},
		{"• dot item", MarkerBullet, 0, "dot item"},
		{"  2. indented", MarkerNumericDot, 2, "indented"},
		{"no marker here", MarkerNone, 0, ""},
		{"1 missing delimiter", MarkerNone, 0, ""},
		{"0. zero ordinal", MarkerNone, 0, ""},
		{"-joined", MarkerNone, 0, ""},
		{"", MarkerNone, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			m := ParseMarker(tt.text)
			if m.Style != tt.style || m.Index != tt.index {
				t.Fatalf("ParseMarker(%q) = {%s %d}, want {%s %d}", tt.text, m.Style, m.Index, tt.style, tt.index)
			}
			if tt.style != MarkerNone && m.Rest != tt.rest {
				t.Errorf("ParseMarker(%q).Rest = %q, want %q", tt.text, m.Rest, tt.rest)
			}
		})
	}
}

func TestMarkerStylesDoNotMix(t *testing.T) {
	dot := ParseMarker("1. one")
	paren := ParseMarker("2) two")
	if dot.Style == paren.Style {
		t.Fatalf("dot and paren markers share style %s", dot.Style)
	}
}

func TestIsConnector(t *testing.T) {
	for _, text := range []string{"->", "=>", " → ", "<-", "↓"} {
		if !IsConnector(text) {
			t.Errorf("IsConnector(%q) = false, want true", text)
		}
	}
	for _, text := range []string{"to be -> or not", "arrow", "", "- item"} {
		if IsConnector(text) {
			t.Errorf("IsConnector(%q) = true, want false", text)
		}
	}
}

func TestConnectorDirection(t *testing.T) {
	if ConnectorDirection("->") != 1 {
		t.Error("-> should point right")
	}
	if ConnectorDirection("<-") != -1 {
		t.Error("<- should point left")
	}
	if ConnectorDirection("↓") != 0 {
		t.Error("vertical arrow should report 0")
	}
}
