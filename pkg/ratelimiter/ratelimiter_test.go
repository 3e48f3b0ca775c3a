package ratelimiter

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"santara.dev/chirpnet/pkg/apperror"
)

func TestRateLimitErrorIsRateLimited(t *testing.T) {
	err := &RateLimitError{Message: "slow down", RetryAfter: 3 * time.Second}

	assert.ErrorIs(t, err, apperror.ErrRateLimited)
	assert.Equal(t, http.StatusTooManyRequests, apperror.MapErrorToStatus(err))
	assert.Equal(t, "slow down", err.Error())
}

// Without redis the limiter degrades to a no-op on every path.
func TestNilClientAllowsEverything(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	allowed, err := CheckAndSetRateLimit(ctx, nil, userID, "post", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, allowed)

	ttl, err := GetRateLimitTTL(ctx, nil, userID, "post")
	require.NoError(t, err)
	assert.Zero(t, ttl)

	assert.NoError(t, ClearRateLimit(ctx, nil, userID, "post"))
}
