//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"

	thermalapi "github.com/oshokin/thermal-sentinel/internal/api/grpc/thermal"
	"github.com/oshokin/thermal-sentinel/internal/domain/alarm"
)

// TestDial_ValidatesAddress verifies that Dial rejects empty addresses.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestDial_AppliesOptions checks the timeout option on a lazily connected client.
func TestDial_AppliesOptions(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "127.0.0.1:1", WithCallTimeout(time.Second))
	require.NoError(t, err)
	require.Equal(t, time.Second, c.callTimeout)
	require.NoError(t, c.Close())

	require.NoError(t, (*Client)(nil).Close())
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	require.NotNil(t, ctx)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}

// TestWithActor attaches the identity only when known.
func TestWithActor(t *testing.T) {
	t.Parallel()

	ctx := withActor(context.Background(), nil)
	_, ok := metadata.FromOutgoingContext(ctx)
	require.False(t, ok)

	ctx = withActor(context.Background(), &alarm.Actor{Hostname: "bench", Username: "qa"})
	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)
	require.Equal(t, []string{"bench"}, md.Get(thermalapi.MetadataHostname))
	require.Equal(t, []string{"qa"}, md.Get(thermalapi.MetadataUsername))
}
