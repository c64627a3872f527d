package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "us number without country code",
			input: "(415) 555-2671",
			want:  "+14155552671",
		},
		{
			name:  "already e164",
			input: "+14155552671",
			want:  "+14155552671",
		},
		{
			name:  "dashes and spaces",
			input: " 415-555-2671 ",
			want:  "+14155552671",
		},
		{
			name:  "international number",
			input: "+442071838750",
			want:  "+442071838750",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "garbage input",
			input: "not-a-phone",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	once := NormalizePhone("(415) 555-2671")
	twice := NormalizePhone(once)
	if once != twice {
		t.Errorf("NormalizePhone not idempotent: %q != %q", once, twice)
	}
}
