package adapter

import (
	"testing"

	"github.com/karalabe/hid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	devices := []hid.DeviceInfo{
		{Path: "/dev/hidraw0", VendorID: 0x046d, ProductID: 0xc52b},
		{Path: "/dev/hidraw1", VendorID: VendorID, ProductID: ProductID, Serial: "0001234"},
	}
	found := Detect(devices)
	require.Len(t, found, 1)
	assert.Equal(t, "MCP2221", found[0].Name)
	assert.Equal(t, "/dev/hidraw1", found[0].Path)
	assert.Equal(t, "0001234", found[0].Serial)

	assert.Empty(t, Detect(devices[:1]))
	assert.Empty(t, Detect(nil))
}
