package libvirt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecteru2/hatchery/types"
)

func TestParseDomState(t *testing.T) {
	cases := map[string]types.InstallState{
		"running\n\n":  types.StateRunning,
		"paused\n":     types.StatePaused,
		"shut off\n":   types.StateShutOff,
		"crashed\n":    types.StateCrashed,
		"in shutdown":  types.StateUnknown,
		"pmsuspended":  types.StateUnknown,
		"idle":         types.StateUnknown,
		"blocked":      types.StateUnknown,
		"weird output": types.StateUnknown,
	}
	for out, want := range cases {
		assert.Equal(t, want, parseDomState(out), "%q", out)
	}
}

func TestParseBlockDevices(t *testing.T) {
	out := ` Target   Source
--------------------------------------------
 vda      /var/lib/hatchery/disks/web-01.qcow2
 sda      -

`
	assert.Equal(t, []string{"vda", "sda"}, parseBlockDevices(out))
	assert.Empty(t, parseBlockDevices(""))
}

func TestParseBlockBytes(t *testing.T) {
	out := `vda rd_req 2490
vda rd_bytes 80424960
vda wr_req 759
vda wr_bytes 19099648
vda errs 0
`
	assert.Equal(t, int64(80424960+19099648), parseBlockBytes(out))
	assert.Zero(t, parseBlockBytes("garbage\n"))
}

func TestParseHostAddress(t *testing.T) {
	dump := `<network>
  <name>default</name>
  <bridge name='virbr0'/>
  <ip address='192.168.122.1' netmask='255.255.255.0'>
    <dhcp><range start='192.168.122.2' end='192.168.122.254'/></dhcp>
  </ip>
</network>`
	addr, err := parseHostAddress(dump, "default")
	require.NoError(t, err)
	assert.Equal(t, "192.168.122.1", addr)
}

func TestParseHostAddressPrefersIPv4(t *testing.T) {
	dump := `<network>
  <name>dual</name>
  <ip family='ipv6' address='fd00::1' prefix='64'/>
  <ip family='ipv4' address='10.0.0.1' netmask='255.255.255.0'/>
</network>`
	addr, err := parseHostAddress(dump, "dual")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", addr)
}

func TestParseHostAddressMissing(t *testing.T) {
	_, err := parseHostAddress("<network><name>empty</name></network>", "empty")
	require.Error(t, err)

	_, err = parseHostAddress("not xml", "bad")
	require.Error(t, err)
}
