package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		title string
		year  int
		want  string
	}{
		{"simple", "The Shawshank Redemption", 1994, "the-shawshank-redemption-1994"},
		{"punctuation", "Birdman (or The Unexpected Virtue of Ignorance)", 2014, "birdman-or-the-unexpected-virtue-of-ignorance-2014"},
		{"accents", "Amélie", 2001, "amelie-2001"},
		{"extra whitespace", "  Blade   Runner  ", 1982, "blade-runner-1982"},
		{"digits kept", "2001: A Space Odyssey", 1968, "2001-a-space-odyssey-1968"},
		{"already hyphenated", "Spider-Man", 2002, "spider-man-2002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.title, tt.year); got != tt.want {
				t.Fatalf("Make(%q, %d) = %q, want %q", tt.title, tt.year, got, tt.want)
			}
		})
	}
}

func TestMakeDeterministic(t *testing.T) {
	first := Make("Heat", 1995)
	second := Make("Heat", 1995)
	if first != second {
		t.Fatalf("Make is not deterministic: %q != %q", first, second)
	}
}
