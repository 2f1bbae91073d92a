package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/concave-dev/dhcpool/internal/api"
	"github.com/concave-dev/dhcpool/internal/dhcpsvc"
	"github.com/concave-dev/dhcpool/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient serves the real API router over an in-memory store.
func newTestClient(t *testing.T) *PoolAPIClient {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := api.DefaultConfig()
	cfg.Version = "test"
	cfg.Service = dhcpsvc.NewService(st)
	cfg.RateLimit.Enabled = false

	srv := httptest.NewServer(api.NewServer(cfg).Handler())
	t.Cleanup(srv.Close)
	return NewPoolAPIClient(strings.TrimPrefix(srv.URL, "http://"), 5*time.Second)
}

func TestCallRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	view, summary, err := c.AddSubnetCIDR(ctx, "10.0.0.0/24", dhcpsvc.SubnetCIDROptions{Router: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0", view.CN)
	assert.Equal(t, 24, view.Netmask)
	assert.Equal(t, "10.0.0.1", view.Router)
	assert.NotEmpty(t, summary)

	subnets, err := c.FindSubnets(ctx, "")
	require.NoError(t, err)
	require.Len(t, subnets, 1)
	assert.Equal(t, "10.0.0.0", subnets[0].CN)

	pool, _, err := c.AddPool(ctx, "10.0.0.0", "lab", dhcpsvc.PoolAddOptions{Range: "10.0.0.10 10.0.0.20"})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.10 10.0.0.20", pool.Range)

	_, err = c.DelPool(ctx, "10.0.0.0", "lab")
	require.NoError(t, err)
	pools, err := c.FindPools(ctx, "10.0.0.0", "")
	require.NoError(t, err)
	assert.Empty(t, pools)
}

func TestCallCommandError(t *testing.T) {
	c := newTestClient(t)

	_, err := c.ShowSubnet(context.Background(), "192.168.9.0")
	require.Error(t, err)

	var cmdErr *dhcpsvc.CommandError
	require.True(t, errors.As(err, &cmdErr), "want *dhcpsvc.CommandError, got %T", err)
	assert.Equal(t, dhcpsvc.CodeNotFound, cmdErr.Code)
}

func TestIsValid(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	res, err := c.IsValid(ctx, []string{"10.0.0.0"}, "10.0.0.10 10.0.0.20")
	require.NoError(t, err)
	assert.False(t, res.Result)
	assert.Equal(t, dhcpsvc.MsgNoSuchSubnet, res.Value)

	_, _, err = c.AddSubnetCIDR(ctx, "10.0.0.0/24", dhcpsvc.SubnetCIDROptions{})
	require.NoError(t, err)

	res, err = c.IsValid(ctx, []string{"10.0.0.0"}, "10.0.0.10 10.0.0.20")
	require.NoError(t, err)
	assert.True(t, res.Result)
	assert.Equal(t, dhcpsvc.MsgValidRange, res.Value)

	res, err = c.IsValid(ctx, []string{"10.0.0.0"}, "10.0.1.10 10.0.1.20")
	require.NoError(t, err)
	assert.False(t, res.Result)
	assert.Contains(t, res.Value, "outside parent subnet")
}

func TestHealth(t *testing.T) {
	c := newTestClient(t)

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", health.Version)
	assert.NotEmpty(t, health.Uptime)
	assert.Equal(t, "ok", health.Database)
}

func TestHealthDegraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unhealthy","database":"error","error":"database is locked"}`))
	}))
	defer srv.Close()

	c := NewPoolAPIClient(strings.TrimPrefix(srv.URL, "http://"), time.Second)
	health, err := c.Health(context.Background())
	require.Error(t, err)
	require.NotNil(t, health)
	assert.Equal(t, "unhealthy", health.Status)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewPoolAPIClient(strings.TrimPrefix(srv.URL, "http://"), time.Second)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := c.ShowConfig(ctx)
		var stErr *statusError
		require.True(t, errors.As(err, &stErr), "call %d: want *statusError, got %v", i, err)
		assert.Equal(t, http.StatusInternalServerError, stErr.code)
	}

	_, err := c.ShowConfig(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(5), hits.Load(), "an open breaker must not reach the server")
}

func TestBreakerIgnoresCommandErrors(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := c.ShowSubnet(ctx, "192.168.9.0")
		var cmdErr *dhcpsvc.CommandError
		require.True(t, errors.As(err, &cmdErr), "call %d: want *dhcpsvc.CommandError, got %v", i, err)
	}
}
