package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecteru2/hatchery/config"
	"github.com/projecteru2/hatchery/progress"
	"github.com/projecteru2/hatchery/types"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	conf := config.DefaultConfig()
	conf.RootDir = t.TempDir()
	conf.RunDir = t.TempDir()
	return conf
}

func testProfile(url string) *types.DistroProfile {
	return &types.DistroProfile{
		Name:      "alma9",
		MediaURL:  url,
		MediaFile: "test.iso",
	}
}

func TestEnsureDownloadsOnce(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("iso-payload"))
	}))
	defer srv.Close()

	conf := testConfig(t)
	d, err := New(conf)
	require.NoError(t, err)
	profile := testProfile(srv.URL + "/test.iso")

	require.NoError(t, d.Ensure(context.Background(), profile, progress.Nop))
	assert.Equal(t, int64(1), hits.Load())

	data, err := os.ReadFile(conf.MediaPath(profile))
	require.NoError(t, err)
	assert.Equal(t, "iso-payload", string(data))

	// second call: cached file wins, zero transfers
	require.NoError(t, d.Ensure(context.Background(), profile, progress.Nop))
	assert.Equal(t, int64(1), hits.Load())
}

func TestEnsureReplacesPartialFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("complete-payload"))
	}))
	defer srv.Close()

	conf := testConfig(t)
	d, err := New(conf)
	require.NoError(t, err)
	profile := testProfile(srv.URL + "/test.iso")

	// zero-byte leftover from an aborted run is not a valid cache entry
	require.NoError(t, os.WriteFile(conf.MediaPath(profile), nil, 0o644))

	require.NoError(t, d.Ensure(context.Background(), profile, progress.Nop))
	data, err := os.ReadFile(conf.MediaPath(profile))
	require.NoError(t, err)
	assert.Equal(t, "complete-payload", string(data))
}

func TestEnsureServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	conf := testConfig(t)
	d, err := New(conf)
	require.NoError(t, err)
	profile := testProfile(srv.URL + "/test.iso")

	err = d.Ensure(context.Background(), profile, progress.Nop)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrTransport)
	assert.NoFileExists(t, conf.MediaPath(profile))
}

func TestEnsureUnreachableHost(t *testing.T) {
	conf := testConfig(t)
	d, err := New(conf)
	require.NoError(t, err)
	// closed server: connection refused
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err = d.Ensure(context.Background(), testProfile(url+"/test.iso"), progress.Nop)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrTransport)
}
