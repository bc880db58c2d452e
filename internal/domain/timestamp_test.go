package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "naive ISO-8601 treated as UTC",
			input: "2025-01-01T12:30:00",
			want:  time.Date(2025, 1, 1, 12, 30, 0, 0, time.UTC),
		},
		{
			name:  "trailing Z normalized",
			input: "2025-01-01T12:30:00Z",
			want:  time.Date(2025, 1, 1, 12, 30, 0, 0, time.UTC),
		},
		{
			name:  "positive offset converted to UTC",
			input: "2025-01-01T12:30:00+02:00",
			want:  time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "negative offset converted to UTC",
			input: "2025-01-01T00:30:00-05:00",
			want:  time.Date(2025, 1, 1, 5, 30, 0, 0, time.UTC),
		},
		{
			name:  "fractional seconds preserved",
			input: "2025-01-01T12:30:00.250000",
			want:  time.Date(2025, 1, 1, 12, 30, 0, 250000000, time.UTC),
		},
		{
			name:  "bare date",
			input: "2025-01-01",
			want:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseTimestamp(tc.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(tc.want), "got %v, want %v", got.Time, tc.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	t.Run("rejects garbage", func(t *testing.T) {
		t.Parallel()

		_, err := ParseTimestamp("yesterday")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "yesterday")
	})
}

func TestTimestampJSON(t *testing.T) {
	t.Parallel()

	t.Run("output is naive UTC without offset", func(t *testing.T) {
		t.Parallel()

		ts := Timestamp{time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
		data, err := json.Marshal(ts)
		require.NoError(t, err)
		assert.Equal(t, `"2025-01-02T03:04:05"`, string(data))
	})

	t.Run("aware input marshals as UTC", func(t *testing.T) {
		t.Parallel()

		loc := time.FixedZone("CET", 3600)
		ts := Timestamp{time.Date(2025, 1, 2, 4, 4, 5, 0, loc)}
		data, err := json.Marshal(ts)
		require.NoError(t, err)
		assert.Equal(t, `"2025-01-02T03:04:05"`, string(data))
	})

	t.Run("round trip through unmarshal", func(t *testing.T) {
		t.Parallel()

		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(`"2025-06-15T08:00:00Z"`), &ts))

		data, err := json.Marshal(ts)
		require.NoError(t, err)
		assert.Equal(t, `"2025-06-15T08:00:00"`, string(data))
	})

	t.Run("unmarshal rejects non-string", func(t *testing.T) {
		t.Parallel()

		var ts Timestamp
		assert.Error(t, json.Unmarshal([]byte(`12345`), &ts))
	})
}

func TestTimestampScan(t *testing.T) {
	t.Parallel()

	t.Run("time value converted to UTC", func(t *testing.T) {
		t.Parallel()

		loc := time.FixedZone("PST", -8*3600)
		var ts Timestamp
		require.NoError(t, ts.Scan(time.Date(2025, 3, 1, 16, 0, 0, 0, loc)))
		assert.True(t, ts.Equal(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, time.UTC, ts.Location())
	})

	t.Run("string value parsed", func(t *testing.T) {
		t.Parallel()

		var ts Timestamp
		require.NoError(t, ts.Scan("2025-03-01T16:00:00"))
		assert.True(t, ts.Equal(time.Date(2025, 3, 1, 16, 0, 0, 0, time.UTC)))
	})

	t.Run("unsupported type errors", func(t *testing.T) {
		t.Parallel()

		var ts Timestamp
		assert.Error(t, ts.Scan(42))
	})
}
