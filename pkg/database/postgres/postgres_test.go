package postgres

import "testing"

func TestValidUUID(t *testing.T) {
	tests := map[string]bool{
		"6f1c2c1e-3f6a-4b8e-9a8e-2d7c1f0b5a11": true,
		"abc":                                  false,
		"":                                     false,
		"6f1c2c1e-3f6a-4b8e-9a8e":              false,
	}
	for id, want := range tests {
		if got := ValidUUID(id); got != want {
			t.Errorf("ValidUUID(%q) = %v, want %v", id, got, want)
		}
	}
}
