package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll_SixteenColumnsRequiredFirst(t *testing.T) {
	require.Len(t, All, 16)
	assert.Equal(t, Required, All[:4])
	assert.Equal(t, Optional, All[4:])
}

func TestValidVarName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple", "age", true},
		{"underscore and digits", "visit_2_date", true},
		{"single letter", "x", true},
		{"max length", "a2345678901234567890123456", true},
		{"too long", "a23456789012345678901234567", false},
		{"leading digit", "2bad", false},
		{"leading underscore", "_hidden", false},
		{"uppercase", "Age", false},
		{"space", "my var", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidVarName(tt.input))
		})
	}
}

func TestBufferIndex_RoundTrip(t *testing.T) {
	// Row 2 is the first data row.
	assert.Equal(t, 0, BufferIndex(2))
	assert.Equal(t, 8, BufferIndex(10))
	// Row 1 addresses the header, which has no buffer slot.
	assert.Equal(t, -1, BufferIndex(1))

	for idx := 0; idx < 5; idx++ {
		assert.Equal(t, idx, BufferIndex(RowNumber(idx)))
	}
}

func TestIsCanonicalAndRequired(t *testing.T) {
	assert.True(t, IsCanonical(ColVariable))
	assert.True(t, IsCanonical(ColAnnotation))
	assert.False(t, IsCanonical("variable"))

	assert.True(t, IsRequired(ColFormName))
	assert.False(t, IsRequired(ColSectionHeader))
}
