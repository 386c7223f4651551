package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLastSequence(t *testing.T) {
	cases := []struct {
		number string
		want   int
	}{
		{"V-2025-0901-001", 1},
		{"V-2025-0901-042", 42},
		{"V-2025-1231-999", 999},
		{"EGR-20250901-007", 7},
		{"EGR-20250901-120", 120},
		{"V-2025-0901-", 0},
		{"sin-guiones-abc", 0},
		{"", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, lastSequence(tc.number), "number %q", tc.number)
	}
}
