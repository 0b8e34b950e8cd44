package provision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecteru2/hatchery/types"
)

func TestParseSpec(t *testing.T) {
	args := []string{"web-01", "2048", "2", "40", "Europe/Amsterdam", "userpass123", "rootpass123"}
	spec, err := parseSpec("alma9", args)
	require.NoError(t, err)
	assert.Equal(t, &types.VMSpec{
		Distro:       "alma9",
		Hostname:     "web-01",
		RAMMiB:       2048,
		VCPUs:        2,
		DiskGiB:      40,
		Timezone:     "Europe/Amsterdam",
		UserPassword: "userpass123",
		RootPassword: "rootpass123",
	}, spec)
}

func TestParseSpecBadNumbers(t *testing.T) {
	base := []string{"web-01", "2048", "2", "40", "UTC", "userpass123", "rootpass123"}
	for _, idx := range []int{1, 2, 3} {
		args := append([]string(nil), base...)
		args[idx] = "lots"
		_, err := parseSpec("alma9", args)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrValidation)
	}
}
