package adapter

import (
	"github.com/karalabe/hid"
)

// Bridge identifies a supported USB to I2C bridge by its USB ids.
type Bridge struct {
	Name      string
	VendorID  uint16
	ProductID uint16
}

// Bridges lists the USB bridges the cm1106 tool can drive.
var Bridges = []Bridge{
	{Name: "MCP2221", VendorID: VendorID, ProductID: ProductID},
}

// DetectedBridge is a connected HID device matching one of Bridges.
type DetectedBridge struct {
	Bridge
	Path   string
	Serial string
}

// Enumerate lists every HID device visible to the host.
func Enumerate() []hid.DeviceInfo {
	return hid.Enumerate(0, 0)
}

// Detect matches devices against known bridges.
func Detect(devices []hid.DeviceInfo) []DetectedBridge {
	var found []DetectedBridge
	for _, dev := range devices {
		for _, b := range Bridges {
			if b.VendorID == dev.VendorID && b.ProductID == dev.ProductID {
				found = append(found, DetectedBridge{Bridge: b, Path: dev.Path, Serial: dev.Serial})
			}
		}
	}
	return found
}
