package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/xbackend/internal/client/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatus(t *testing.T) {
	f := &fakeClient{}
	a, _ := newTestApp(f)
	assert.Equal(t, "(guest)", a.getStatus())

	f.loggedIn = true
	a.email = "x@example.org"
	assert.Equal(t, "(x@example.org)", a.getStatus())
}

func TestNewApp(t *testing.T) {
	a, err := NewApp(&config.Config{ServerEndpointAddr: "localhost:0"})
	require.NoError(t, err)
	require.NotNil(t, a.client)
	assert.False(t, a.isLoggedIn())
	require.NoError(t, a.client.Close())
}

func TestRun_ReadsCommandsFromInput(t *testing.T) {
	silence(t)
	stubInputs(t, []string{"tok"}, nil)

	f := &fakeClient{msg: "ok"}
	var out bytes.Buffer
	a := newApp(&config.Config{}, f, strings.NewReader("verify\nexit\n"), &out)

	a.Run(context.Background())
	assert.Equal(t, []string{"verify"}, f.calls)
}
