package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubReadFile(t *testing.T, data []byte, err error) {
	t.Helper()
	orig := readFile
	readFile = func(string) ([]byte, error) { return data, err }
	t.Cleanup(func() { readFile = orig })
}

func TestAvatar_Uploads(t *testing.T) {
	f := &fakeClient{loggedIn: true, msg: "http://s3.local/avatars/k"}
	a, out := newTestApp(f)
	stubInputs(t, []string{"me.png"}, nil)
	stubReadFile(t, []byte("\x89PNG\r\n\x1a\nrest"), nil)

	require.NoError(t, a.Avatar(context.Background()))
	assert.Equal(t, []string{"avatar"}, f.calls)
	assert.Equal(t, "image/png", f.args[1])
	assert.True(t, f.deadline)
	assert.Contains(t, out.String(), "http://s3.local/avatars/k")
}

func TestAvatar_ReadError(t *testing.T) {
	f := &fakeClient{loggedIn: true}
	a, out := newTestApp(f)
	stubInputs(t, []string{"missing.png"}, nil)
	stubReadFile(t, nil, errors.New("no such file"))

	require.Error(t, a.Avatar(context.Background()))
	assert.Empty(t, f.calls)
	assert.Contains(t, out.String(), "no such file")
}

func TestAvatar_TooLarge(t *testing.T) {
	f := &fakeClient{loggedIn: true}
	a, _ := newTestApp(f)
	stubInputs(t, []string{"big.png"}, nil)
	stubReadFile(t, make([]byte, maxAvatarSize+1), nil)

	require.Error(t, a.Avatar(context.Background()))
	assert.Empty(t, f.calls)
}
