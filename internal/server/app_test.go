package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/xbackend/internal/logging"
	"github.com/dmitrijs2005/xbackend/internal/server/config"
	"github.com/dmitrijs2005/xbackend/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDSN = repomanager.MemoryDSN
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.PasswordHashCost = 4
	return c
}

func TestNewApp_MemoryStore(t *testing.T) {
	app, err := newApp(context.Background(), testConfig(), logging.Nop{})
	require.NoError(t, err)
	assert.NotNil(t, app.httpServer)
	assert.NotNil(t, app.grpcServer)
	assert.Len(t, app.closers, 1)
}

func TestNewApp_RateLimitStores(t *testing.T) {
	c := testConfig()
	c.RateLimitRequests = 10

	app, err := newApp(context.Background(), c, logging.Nop{})
	require.NoError(t, err)
	assert.Len(t, app.closers, 1, "memory limiter needs no closer")

	c = testConfig()
	c.RateLimitRequests = 10
	c.RedisAddr = "127.0.0.1:6379"

	app, err = newApp(context.Background(), c, logging.Nop{})
	require.NoError(t, err)
	assert.Len(t, app.closers, 2, "redis client is closed on shutdown")
	app.close(context.Background())
}

func TestNewApp_SharedSecretRejected(t *testing.T) {
	c := testConfig()
	c.RefreshTokenSecret = c.AccessTokenSecret

	_, err := newApp(context.Background(), c, logging.Nop{})
	assert.Error(t, err)
}

func TestNewApp_UnknownMailProvider(t *testing.T) {
	c := testConfig()
	c.MailProvider = "pigeon"

	_, err := newApp(context.Background(), c, logging.Nop{})
	assert.Error(t, err)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	c := testConfig()
	c.RefreshTokenCleanupInterval = 10 * time.Millisecond

	app, err := newApp(context.Background(), c, logging.Nop{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}
