package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"jamie@example.com", "jamie@example.com"},
		{"Jamie@Example.COM", "jamie@example.com"},
		{"  jamie@example.com  ", "jamie@example.com"},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeEmail(tc.in))
	}
}
