package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefreshTokenActive(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	tok := RefreshToken{ExpiresAt: now.Add(time.Hour)}

	assert.True(t, tok.Active(now))
	assert.False(t, tok.Active(now.Add(time.Hour)))

	revoked := now.Add(-time.Minute)
	tok.RevokedAt = &revoked
	assert.False(t, tok.Active(now))
}
