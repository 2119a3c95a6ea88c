package crypto

import (
	"strings"
	"testing"
)

func TestNewNanoID(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  error
		wantMask byte
	}{
		{name: "default alphabet", args: nil, wantMask: 63},
		{name: "empty string uses default", args: []string{""}, wantMask: 63},
		{name: "hex alphabet", args: []string{"0123456789abcdef"}, wantMask: 15},
		{name: "odd size alphabet", args: []string{"ABCDEFGHIJ"}, wantMask: 15},
		{name: "too short", args: []string{"a"}, wantErr: ErrAlphabetSize},
		{name: "too long", args: []string{strings.Repeat("a", 256)}, wantErr: ErrAlphabetSize},
		{name: "non ascii", args: []string{"abcdefgé"}, wantErr: ErrAlphabetASCII},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Act
			gen, err := NewNanoID(test.args...)

			// Assert
			if err != test.wantErr {
				t.Fatalf("NewNanoID() error = %v, want %v", err, test.wantErr)
			}
			if err == nil && gen.mask != test.wantMask {
				t.Errorf("mask = %d, want %d", gen.mask, test.wantMask)
			}
		})
	}
}

func TestNanoIDGenerator_Generate(t *testing.T) {
	// Arrange
	alphabet := "ABCDEFGHIJ"
	gen, err := NewNanoID(alphabet)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		// Act
		id, err := gen.Generate()

		// Assert
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(id) != tokenIDLength {
			t.Fatalf("len(id) = %d, want %d", len(id), tokenIDLength)
		}
		for _, r := range id {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("id %q contains %q outside the alphabet", id, r)
			}
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
