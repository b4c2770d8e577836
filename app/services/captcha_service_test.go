package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeStore(t *testing.T) {
	t.Run("TakeConsumesChallenge", func(t *testing.T) {
		store := newChallengeStore(time.Minute)
		store.Put("abc", 135)

		angle, ok := store.Take("abc")
		require.True(t, ok)
		assert.Equal(t, 135, angle)

		// a second attempt must not see the consumed challenge
		_, ok = store.Take("abc")
		assert.False(t, ok)
	})

	t.Run("UnknownIDMisses", func(t *testing.T) {
		store := newChallengeStore(time.Minute)
		_, ok := store.Take("never-stored")
		assert.False(t, ok)
	})

	t.Run("ExpiredChallengeMisses", func(t *testing.T) {
		store := newChallengeStore(time.Minute)
		store.Put("old", 90)
		store.mu.Lock()
		e := store.m["old"]
		e.expiresAt = time.Now().Add(-time.Second)
		store.m["old"] = e
		store.mu.Unlock()

		_, ok := store.Take("old")
		assert.False(t, ok)
	})

	t.Run("ZeroTTLFallsBackToDefault", func(t *testing.T) {
		store := newChallengeStore(0)
		assert.Equal(t, 2*time.Minute, store.ttl)
	})
}

func TestGenerateCaptchaBackgrounds(t *testing.T) {
	imgs := generateCaptchaBackgrounds(3, 220)
	require.Len(t, imgs, 3)
	for _, img := range imgs {
		bounds := img.Bounds()
		assert.Equal(t, 220, bounds.Dx())
		assert.Equal(t, 220, bounds.Dy())
	}

	// non-positive count still yields one usable background
	imgs = generateCaptchaBackgrounds(0, 100)
	assert.Len(t, imgs, 1)
}
