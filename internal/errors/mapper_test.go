package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapUpstream_Nil(t *testing.T) {
	assert.NoError(t, MapUpstream(nil))
}

func TestMapUpstream_ContextCancellation(t *testing.T) {
	assert.ErrorIs(t, MapUpstream(context.Canceled), context.Canceled)
	assert.ErrorIs(t, MapUpstream(context.DeadlineExceeded), ErrProviderUnavailable)
}

func TestMapUpstream_ProviderFailures(t *testing.T) {
	cases := []string{
		"status code 401, unauthorized",
		"API returned 429: rate limit exceeded",
		"request timeout after 30s",
		"dial tcp: connection refused",
		"network is unreachable",
		"internal server error (500)",
	}
	for _, msg := range cases {
		err := MapUpstream(stderrors.New(msg))
		assert.ErrorIs(t, err, ErrProviderUnavailable, "message: %s", msg)
	}
}

func TestMapUpstream_NotFound(t *testing.T) {
	err := MapUpstream(stderrors.New("model not found"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMapUpstream_InvalidInput(t *testing.T) {
	err := MapUpstream(stderrors.New("invalid request: missing messages"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMapUpstream_PreservesCause(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")
	err := MapUpstream(cause)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "ErrNotFound", Category(NotFound("booking")))
	assert.Equal(t, "ErrInvalidInput", Category(InvalidInput("empty phone")))
	assert.Equal(t, "ErrProviderUnavailable", Category(ProviderUnavailable("upstream down")))
	assert.Equal(t, "ErrInternal", Category(Internal("boom")))
	assert.Equal(t, "Unknown", Category(fmt.Errorf("boom")))
	assert.Equal(t, "", Category(nil))
}

func TestIsCategory(t *testing.T) {
	err := Wrap(ErrNotFound, "booking APT-1")
	assert.True(t, IsCategory(err, ErrNotFound))
	assert.False(t, IsCategory(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "APT-1")
}
