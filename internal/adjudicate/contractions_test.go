package adjudicate

import "testing"

func TestExpandContractions(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"It's not accurate.", "It is not accurate."},
		{"Sources don't agree.", "Sources do not agree."},
		{"They won't change.", "They will not change."},
		{"We can't tell; they're unsure.", "We cannot tell; they are unsure."},
		{"It doesn’t hold.", "It does not hold."},
		{"We've checked and we'd say so.", "We have checked and we would say so."},
		{"Earth's orbit is elliptical.", "Earth's orbit is elliptical."},
		{"No contractions here.", "No contractions here."},
	}

	for _, tt := range tests {
		if got := ExpandContractions(tt.in); got != tt.want {
			t.Errorf("ExpandContractions(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
