package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateTextScan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      interface{}
		expected DateText
	}{
		{"string", "2024-03-01", "2024-03-01"},
		{"bytes", []byte("2024-03-01"), "2024-03-01"},
		{"nil", nil, ""},
		{"midnight time", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-03-01"},
		{"time of day", time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC), "2024-03-01 14:05:09"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var d DateText
			require.NoError(t, d.Scan(tt.src))
			assert.Equal(t, tt.expected, d)
		})
	}

	t.Run("unsupported type", func(t *testing.T) {
		t.Parallel()
		var d DateText
		assert.Error(t, d.Scan(42))
	})
}

func TestNewDateText(t *testing.T) {
	t.Parallel()
	assert.Nil(t, NewDateText(nil))

	s := "2024-03-01"
	d := NewDateText(&s)
	require.NotNil(t, d)
	assert.Equal(t, DateText("2024-03-01"), *d)
}
