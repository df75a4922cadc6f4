package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReduce(t *testing.T) {
	tests := []struct {
		name     string
		in       int
		expected int
	}{
		{name: "single digit unchanged", in: 7, expected: 7},
		{name: "two digits reduce", in: 29, expected: 11},
		{name: "long chain", in: 48, expected: 3},
		{name: "master 11 preserved", in: 11, expected: 11},
		{name: "master 22 preserved", in: 22, expected: 22},
		{name: "master 33 preserved", in: 33, expected: 33},
		{name: "master 44 preserved", in: 44, expected: 44},
		{name: "reduction stops at master", in: 38, expected: 11},
		{name: "zero", in: 0, expected: 0},
		{name: "negative treated as magnitude", in: -12, expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Reduce(tt.in))
		})
	}
}

func TestIsMaster(t *testing.T) {
	for _, n := range []int{11, 22, 33, 44} {
		assert.True(t, IsMaster(n), "expected %d to be master", n)
	}
	for _, n := range []int{1, 10, 12, 21, 55} {
		assert.False(t, IsMaster(n), "expected %d not to be master", n)
	}
}
