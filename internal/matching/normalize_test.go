package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEAN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "3850012345678", "3850012345678"},
		{"hyphens", "385-001-234-5678", "3850012345678"},
		{"spaces", "385 001 234 5678", "3850012345678"},
		{"all zeros placeholder", "0000000000000", ""},
		{"short code kept", "12345", "12345"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeEAN(tt.input))
		})
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Čokolada", "cokolada"},
		{"ĆEVAPI", "cevapi"},
		{"Đuveč", "djuvec"},
		{"Crème Brûlée", "creme brulee"},
		{"Straße", "strasse"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Fold(tt.input))
		})
	}
}
