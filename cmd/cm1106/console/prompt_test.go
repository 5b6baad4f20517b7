package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromptText(t *testing.T) {
	assert.Equal(t, "calibrate? [N/y]:", promptText("calibrate?", []string{No, Yes}))
}

func TestMatchAnswer(t *testing.T) {
	tests := []struct {
		given    string
		expected string
	}{
		{"", No},
		{"y", Yes},
		{" Y ", Yes},
		{"n", No},
		{"maybe", No},
	}
	for _, tt := range tests {
		t.Run(tt.given, func(t *testing.T) {
			assert.Equal(t, tt.expected, matchAnswer(tt.given, []string{No, Yes}))
		})
	}
}
