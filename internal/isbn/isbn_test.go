package isbn

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// ISBN-10 to ISBN-13 conversion
		{"0141439513", "9780141439518"}, // Pride and Prejudice, Penguin Classics
		{"0-141-43951-3", "9780141439518"},
		{"0 141 43951 3", "9780141439518"},
		{"043942089X", "9780439420891"}, // 'X' check digit
		{"043942089x", "9780439420891"}, // lowercase check digit

		// Already ISBN-13
		{"9780141439518", "9780141439518"},
		{"978-0-14-143951-8", "9780141439518"},
		{"  9780451524935  ", "9780451524935"}, // 1984

		// Separators mixed in
		{"978.0.14.303943.3", "9780143039433"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize(%q) failed: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeRejectsInvalid(t *testing.T) {
	tests := []string{
		"",
		"123",             // too short
		"12345678901234",  // too long
		"0141439514",      // bad ISBN-10 checksum
		"9780141439519",   // bad ISBN-13 checksum
		"978014143951X",   // 'X' only legal in ISBN-10
		"X141439513",      // 'X' not in check position
		"abcdefghij",      // non-digits
		"97801414395!8",   // stray punctuation
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Normalize(input)
			if !errors.Is(err, ErrInvalidISBN) {
				t.Errorf("Normalize(%q) = %v, expected ErrInvalidISBN", input, err)
			}
		})
	}
}

// Conversion must itself produce a checksum-valid ISBN-13 for any valid ISBN-10.
func TestConvertedChecksumsValid(t *testing.T) {
	inputs := []string{"0141439513", "043942089X", "0451524934", "0743273567"}
	for _, input := range inputs {
		canonical, err := Normalize(input)
		if err != nil {
			t.Fatalf("Normalize(%q) failed: %v", input, err)
		}
		if len(canonical) != 13 {
			t.Fatalf("Normalize(%q) = %q, expected a 13-digit result", input, canonical)
		}
		if !IsValid(canonical) {
			t.Errorf("Normalize(%q) = %q, which fails the ISBN-13 checksum", input, canonical)
		}
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid("9780141439518") {
		t.Error("expected 9780141439518 to be valid")
	}
	if IsValid("9780141439510") {
		t.Error("expected 9780141439510 to be invalid")
	}
}
