package air

import (
	"fmt"
	"strings"
)

// Variant is the chip family. CM1106 and CM1107 share the I2C protocol but
// assign different meanings to status codes.
type Variant int

const (
	VariantCM1106 Variant = iota
	VariantCM1107
)

func (v Variant) String() string {
	switch v {
	case VariantCM1107:
		return "CM1107"
	default:
		return "CM1106"
	}
}

// ParseVariant parses a case-insensitive chip family name.
func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(name) {
	case "cm1106", "":
		return VariantCM1106, nil
	case "cm1107":
		return VariantCM1107, nil
	}
	return VariantCM1106, fmt.Errorf("unknown sensor variant %q", name)
}

// Status is the device state reported with every measurement.
type Status byte

// CM1106 status codes.
const (
	StatusPreheating       Status = 0x00
	StatusNormal           Status = 0x01
	StatusOperatingTrouble Status = 0x02
	StatusOutOfFullScale   Status = 0x03
	StatusNonCalibrated    Status = 0x05
)

// CM1107 status codes.
const (
	StatusCM1107Preheating Status = 0x00
	StatusCM1107Normal     Status = 0x01
	StatusCM1107OverRange  Status = 0x02
	StatusCM1107UnderRange Status = 0x03
	StatusCM1107Calibrated Status = 0x04
	StatusCM1107LightAging Status = 0x05
	StatusCM1107Drift      Status = 0x06
)

var cm1106Statuses = map[Status]string{
	StatusPreheating:       "preheating",
	StatusNormal:           "normal operation",
	StatusOperatingTrouble: "operating trouble",
	StatusOutOfFullScale:   "out of full scale",
	StatusNonCalibrated:    "non-calibrated",
}

var cm1107Statuses = map[Status]string{
	StatusCM1107Preheating: "preheating",
	StatusCM1107Normal:     "normal operation",
	StatusCM1107OverRange:  "over measurement range",
	StatusCM1107UnderRange: "less than measurement range",
	StatusCM1107Calibrated: "calibrated",
	StatusCM1107LightAging: "light aging",
	StatusCM1107Drift:      "drift",
}

// Describe returns a human readable status for the given chip family.
func (s Status) Describe(v Variant) string {
	names := cm1106Statuses
	if v == VariantCM1107 {
		names = cm1107Statuses
	}
	if name, ok := names[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown (0x%02x)", byte(s))
}

// Preheating is true while the sensor warms up. Readings are not reliable yet.
func (s Status) Preheating() bool {
	return s == StatusPreheating
}

// Normal is true when the sensor reports normal operation.
func (s Status) Normal() bool {
	return s == StatusNormal
}
