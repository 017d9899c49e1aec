package semver

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		major   int
		minor   int
		patch   int
		wantErr bool
	}{
		{"initial", "1.0.0", 1, 0, 0, false},
		{"double digits", "10.21.302", 10, 21, 302, false},
		{"zeros", "0.0.0", 0, 0, 0, false},
		{"leading zeros tolerated", "1.02.003", 1, 2, 3, false},
		{"empty", "", 0, 0, 0, true},
		{"two components", "1.0", 0, 0, 0, true},
		{"four components", "1.0.0.0", 0, 0, 0, true},
		{"v prefix", "v1.0.0", 0, 0, 0, true},
		{"prerelease", "1.0.0-beta", 0, 0, 0, true},
		{"negative", "1.0.-1", 0, 0, 0, true},
		{"plus sign", "+1.0.0", 0, 0, 0, true},
		{"letters", "1.0.x", 0, 0, 0, true},
		{"empty component", "1..0", 0, 0, 0, true},
		{"whitespace", "1.0. 0", 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			major, minor, patch, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %d.%d.%d", tt.input, major, minor, patch)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if major != tt.major || minor != tt.minor || patch != tt.patch {
				t.Errorf("Parse(%q) = %d.%d.%d, want %d.%d.%d",
					tt.input, major, minor, patch, tt.major, tt.minor, tt.patch)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid(Initial) {
		t.Errorf("IsValid(%q) = false, want true", Initial)
	}
	if IsValid("1.0") {
		t.Error("IsValid(\"1.0\") = true, want false")
	}
}

func TestBumpPatch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1.0.0", "1.0.1"},
		{"1.2.3", "1.2.4"},
		{"1.0.9", "1.0.10"},
		{"0.0.0", "0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := BumpPatch(tt.input)
			if err != nil {
				t.Fatalf("BumpPatch(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("BumpPatch(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	if _, err := BumpPatch("not-a-version"); err == nil {
		t.Error("BumpPatch on invalid input should error")
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a    string
		b    string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.1", "1.0.0", 1},
		{"1.0.0", "1.0.1", -1},
		{"2.0.0", "1.9.9", 1},
		{"1.1.0", "1.0.99", 1},
		// Numeric, not lexicographic: "1.0.10" sorts after "1.0.9".
		{"1.0.10", "1.0.9", 1},
		{"1.0.9", "1.0.10", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			got, err := Compare(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Compare(%q, %q) unexpected error: %v", tt.a, tt.b, err)
			}
			if got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}

	if _, err := Compare("1.0.0", "junk"); err == nil {
		t.Error("Compare with invalid input should error")
	}
}

func TestMax(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{"picks numeric maximum", []string{"1.0.2", "1.0.10", "1.0.9"}, "1.0.10"},
		{"single candidate", []string{"1.0.0"}, "1.0.0"},
		{"skips invalid entries", []string{"garbage", "1.0.1", ""}, "1.0.1"},
		{"all invalid", []string{"x", ""}, ""},
		{"empty input", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Max(tt.candidates); got != tt.want {
				t.Errorf("Max(%v) = %q, want %q", tt.candidates, got, tt.want)
			}
		})
	}
}
