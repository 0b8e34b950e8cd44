package libvirt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/projecteru2/hatchery/hypervisor"
	"github.com/projecteru2/hatchery/types"
)

func TestInstallerArgs(t *testing.T) {
	ks := hypervisor.InstallRequest{
		ConfigKind: types.ConfigKickstart,
		ConfigURL:  "http://192.168.122.1:8089/web-01.cfg",
	}
	assert.Equal(t, "inst.ks=http://192.168.122.1:8089/web-01.cfg console=ttyS0", installerArgs(ks))

	ps := hypervisor.InstallRequest{
		ConfigKind: types.ConfigPreseed,
		ConfigURL:  "http://192.168.122.1:8089/deb-01.cfg",
	}
	assert.Equal(t, "auto=true priority=critical url=http://192.168.122.1:8089/deb-01.cfg console=ttyS0", installerArgs(ps))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound("error: failed to get domain 'web-01'"))
	assert.True(t, isNotFound("error: Domain not found: no domain with matching name"))
	assert.False(t, isNotFound("error: Failed to connect socket"))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "running", firstLine("running\n\n"))
	assert.Equal(t, "one", firstLine("one\ntwo"))
	assert.Equal(t, "", firstLine("  \n "))
}
