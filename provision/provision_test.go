package provision

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecteru2/hatchery/config"
	"github.com/projecteru2/hatchery/hypervisor"
	"github.com/projecteru2/hatchery/types"
)

type fakeHypervisor struct {
	existing map[string]bool
	installs []hypervisor.InstallRequest
}

func (f *fakeHypervisor) Available() error { return nil }

func (f *fakeHypervisor) DomainExists(_ context.Context, name string) (bool, error) {
	return f.existing[name], nil
}

func (f *fakeHypervisor) Install(_ context.Context, req hypervisor.InstallRequest) error {
	f.installs = append(f.installs, req)
	return nil
}

func (f *fakeHypervisor) State(context.Context, string) (types.InstallState, error) {
	return types.StateRunning, nil
}

func (f *fakeHypervisor) BlockActivity(context.Context, string) (int64, error) { return 0, nil }

func (f *fakeHypervisor) Resume(context.Context, string) error { return nil }

func (f *fakeHypervisor) HostAddress(context.Context) (string, error) { return "192.168.122.1", nil }

type fakeHasher struct{}

func (fakeHasher) Hash(_ context.Context, _ string) (string, error) {
	return "$6$fake$hash", nil
}

type fakeServer struct{}

func (fakeServer) URL(hostAddr, file string) string {
	return "http://" + hostAddr + ":8089/" + file
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	conf := config.DefaultConfig()
	conf.RootDir = t.TempDir()
	conf.RunDir = t.TempDir()
	require.NoError(t, conf.EnsureDirs())
	return conf
}

func testSpec() *types.VMSpec {
	return &types.VMSpec{
		Distro:       "alma9",
		Hostname:     "web-01",
		RAMMiB:       2048,
		VCPUs:        2,
		DiskGiB:      40,
		Timezone:     "UTC",
		UserPassword: "hunter2hunter2",
		RootPassword: "correcthorse",
	}
}

func TestProvisionRejectsInvalidSpec(t *testing.T) {
	conf := testConfig(t)
	hv := &fakeHypervisor{}
	p := New(conf, hv, fakeHasher{})

	spec := testSpec()
	spec.RAMMiB = 1 // out of bounds
	profile, err := types.LookupDistro(spec.Distro)
	require.NoError(t, err)

	_, err = p.Provision(context.Background(), spec, profile, fakeServer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Empty(t, hv.installs)
}

func TestProvisionDomainConflict(t *testing.T) {
	conf := testConfig(t)
	hv := &fakeHypervisor{existing: map[string]bool{"web-01": true}}
	p := New(conf, hv, fakeHasher{})

	spec := testSpec()
	profile, err := types.LookupDistro(spec.Distro)
	require.NoError(t, err)

	_, err = p.Provision(context.Background(), spec, profile, fakeServer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConflict)
	assert.Empty(t, hv.installs)

	// nothing was rendered for the conflicting VM
	_, statErr := os.Stat(filepath.Join(conf.ServeDir(), "web-01.cfg"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestProvisionDiskConflict(t *testing.T) {
	conf := testConfig(t)
	hv := &fakeHypervisor{}
	p := New(conf, hv, fakeHasher{})

	spec := testSpec()
	profile, err := types.LookupDistro(spec.Distro)
	require.NoError(t, err)

	// pre-existing disk image must never be overwritten
	diskPath := conf.DiskPath(spec.Hostname)
	require.NoError(t, os.WriteFile(diskPath, []byte("leftover"), 0o644))

	_, err = p.Provision(context.Background(), spec, profile, fakeServer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConflict)
	assert.Empty(t, hv.installs)

	data, err := os.ReadFile(diskPath)
	require.NoError(t, err)
	assert.Equal(t, "leftover", string(data))
}

func TestUsernameFromHostname(t *testing.T) {
	cases := map[string]string{
		"web-01":       "web",
		"DB.lab.local": "db",
		"app":          "app",
		"A1-b2-c3":     "a1",
	}
	for hostname, want := range cases {
		assert.Equal(t, want, username(hostname), hostname)
	}
}
