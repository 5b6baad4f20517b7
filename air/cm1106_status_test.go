package air

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Describe(t *testing.T) {
	tests := []struct {
		status   Status
		variant  Variant
		expected string
	}{
		{StatusPreheating, VariantCM1106, "preheating"},
		{StatusNormal, VariantCM1106, "normal operation"},
		{StatusOperatingTrouble, VariantCM1106, "operating trouble"},
		{StatusOutOfFullScale, VariantCM1106, "out of full scale"},
		{StatusNonCalibrated, VariantCM1106, "non-calibrated"},
		{0x04, VariantCM1106, "unknown (0x04)"},
		{StatusCM1107OverRange, VariantCM1107, "over measurement range"},
		{StatusCM1107UnderRange, VariantCM1107, "less than measurement range"},
		{StatusCM1107Calibrated, VariantCM1107, "calibrated"},
		{StatusCM1107LightAging, VariantCM1107, "light aging"},
		{StatusCM1107Drift, VariantCM1107, "drift"},
		{0x7F, VariantCM1107, "unknown (0x7f)"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s-%d", tt.variant, tt.status), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.Describe(tt.variant))
		})
	}
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("CM1107")
	require.NoError(t, err)
	assert.Equal(t, VariantCM1107, v)

	v, err = ParseVariant("")
	require.NoError(t, err)
	assert.Equal(t, VariantCM1106, v)

	_, err = ParseVariant("scd41")
	assert.Error(t, err)
}
