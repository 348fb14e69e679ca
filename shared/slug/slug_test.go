package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"taco-place", "taco-place"},
		{"Taco Place", "taco-place"},
		{"Joe's Diner!", "joe-s-diner-"},
		{" Cafe 42 ", "-cafe-42-"},
		{"Crème", "cr-me"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("taco-place"))
	assert.False(t, Valid("Taco Place"))
	assert.False(t, Valid(""))
}

func TestNewDocumentSlug(t *testing.T) {
	a, b := NewDocumentSlug(), NewDocumentSlug()
	assert.NotEqual(t, a, b)
	assert.True(t, Valid(a))
	assert.Len(t, a, 36)
}
