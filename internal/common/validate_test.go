package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidUsername(t *testing.T) {
	tests := map[string]bool{
		"abc":                    true,
		"a_b-c":                  true,
		"Alice99":                true,
		strings.Repeat("a", 30):  true,
		"ab":                     false,
		strings.Repeat("a", 31):  false,
		"al ice":                 false,
		"al.ice":                 false,
		"":                       false,
		"алиса":                  false,
	}
	for in, want := range tests {
		assert.Equal(t, want, ValidUsername(in), in)
	}
}

func TestValidEmail(t *testing.T) {
	tests := map[string]bool{
		"alice@example.com":      true,
		"a.b+tag@sub.example.io": true,
		"alice@example":          false,
		"alice@example.c":        false,
		"alice.example.com":      false,
		"@example.com":           false,
		"alice@@example.com":     false,
	}
	for in, want := range tests {
		assert.Equal(t, want, ValidEmail(in), in)
	}
}
