package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Cessna 172S  ",
			want:  "Cessna 172S",
		},
		{
			name:  "multiple spaces between words",
			input: "Piper    Archer",
			want:  "Piper Archer",
		},
		{
			name:  "tabs and newlines",
			input: "Diamond\t\nDA40",
			want:  "Diamond DA40",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "preserve special characters",
			input: " O'Brien & Sons ",
			want:  "O'Brien & Sons",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercase and trim",
			input: "  Jane.Doe@Example.COM ",
			want:  "jane.doe@example.com",
		},
		{
			name:  "already normalized",
			input: "cfi@flightline.io",
			want:  "cfi@flightline.io",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeEmail(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeTailNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercase with hyphen",
			input: "n-123ab",
			want:  "N123AB",
		},
		{
			name:  "embedded spaces",
			input: " n 456 cd ",
			want:  "N456CD",
		},
		{
			name:  "already normalized",
			input: "N789EF",
			want:  "N789EF",
		},
		{
			name:  "idempotent",
			input: NormalizeTailNumber("c-gabc"),
			want:  "CGABC",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTailNumber(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeTailNumber(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeRatings(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "dedup and lowercase",
			input: []string{" CFI ", "cfi", "CFII", ""},
			want:  []string{"cfi", "cfii"},
		},
		{
			name:  "empty slice",
			input: nil,
			want:  []string{},
		},
		{
			name:  "whitespace only entries dropped",
			input: []string{"  ", "\t", "mei"},
			want:  []string{"mei"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeRatings(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("NormalizeRatings(%v) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("NormalizeRatings(%v)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}
