package air

import (
	"context"
	"sync"
)

// CO2BehaviorFunc defines the function signature for CO2 measurement behavior.
type CO2BehaviorFunc func(ctx context.Context) (Measurement, error)

// MockCO2Sensor is a mock implementation of a CO2 sensor that uses a behavior
// function to produce results without requiring hardware.
// This can be used to mock sensors like CM1106.
type MockCO2Sensor struct {
	behavior CO2BehaviorFunc

	mx      sync.Mutex
	last    Measurement
	hasLast bool
}

// NewMockCO2Sensor creates a new mock CO2 sensor with the given behavior function.
// The behavior function is called whenever Measure is invoked.
//
// Example usage:
//
//	sensor := NewMockCO2Sensor(func(ctx context.Context) (Measurement, error) {
//		return Measurement{CO2: 415, Status: StatusNormal}, nil
//	})
func NewMockCO2Sensor(behavior CO2BehaviorFunc) *MockCO2Sensor {
	return &MockCO2Sensor{behavior: behavior}
}

// Measure returns the measurement produced by the behavior function.
// Successful measurements are cached like the real driver does.
func (m *MockCO2Sensor) Measure(ctx context.Context) (Measurement, error) {
	res, err := m.behavior(ctx)
	if err != nil {
		return Measurement{}, err
	}
	m.mx.Lock()
	m.last = res
	m.hasLast = true
	m.mx.Unlock()
	return res, nil
}

// LastMeasurement returns the last successful measurement.
func (m *MockCO2Sensor) LastMeasurement() (Measurement, bool) {
	m.mx.Lock()
	defer m.mx.Unlock()
	return m.last, m.hasLast
}

// NewMockCM1106 creates a new mock CM1106 sensor (alias for NewMockCO2Sensor).
func NewMockCM1106(behavior CO2BehaviorFunc) *MockCO2Sensor {
	return NewMockCO2Sensor(behavior)
}
