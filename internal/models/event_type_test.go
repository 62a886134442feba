package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"intro-call-1a2b3c4d", "intro-call"},
		{"intro-call", "intro-call"},
		{"intro-1234567", "intro-1234567"},
		{"-1a2b3c4d", "-1a2b3c4d"},
		{"  demo-abcdefgh ", "demo"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSlug(tt.in), tt.in)
	}
}
