package kernel_test

import (
	"testing"
	"time"

	"marketplace/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestUUID(t *testing.T) {
	t.Run("should create valid random UUID", func(t *testing.T) {
		id := kernel.NewUUID()

		require.NoError(t, id.Validate())
		assert.Len(t, id.String(), 36)
	})

	t.Run("should parse from string", func(t *testing.T) {
		id := kernel.NewUUID()

		parsed, err := kernel.UUIDFromString(id.String())

		require.NoError(t, err)
		assert.True(t, id.IsEqual(parsed))
	})

	t.Run("should fail on invalid string", func(t *testing.T) {
		_, err := kernel.UUIDFromString("not-a-uuid")

		require.Error(t, err)
	})

	t.Run("should round-trip through bytes", func(t *testing.T) {
		id := kernel.NewUUID()
		raw := id.Bytes()

		restored, err := kernel.UUIDFromBytes(raw[:])

		require.NoError(t, err)
		assert.True(t, id.IsEqual(restored))
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var id kernel.UUID

		require.ErrorIs(t, id.Validate(), kernel.ErrUUIDIsNotConstructed)
	})
}

func TestOrderNumber(t *testing.T) {
	t.Run("should follow the ORD-YYYYMMDD-XXXXXX pattern", func(t *testing.T) {
		now := mustParseTime(t, "2026-09-01T10:00:00Z")

		number := kernel.NewOrderNumber(now)

		assert.Regexp(t, `^ORD-20260901-[A-Z0-9]{6}$`, number)
	})

	t.Run("should produce distinct suffixes", func(t *testing.T) {
		now := mustParseTime(t, "2026-09-01T10:00:00Z")

		seen := make(map[string]bool)
		for range 100 {
			seen[kernel.NewOrderNumber(now)] = true
		}

		assert.Greater(t, len(seen), 90)
	})
}

func TestConfirmationCode(t *testing.T) {
	t.Run("should prepend the prefix", func(t *testing.T) {
		code := kernel.NewConfirmationCode("PU")

		assert.Regexp(t, `^PU[A-Z0-9]{8}$`, code)
	})
}
