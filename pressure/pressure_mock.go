package pressure

import (
	"context"
)

// PressureBehaviorFunc defines the function signature for pressure behavior.
// It returns the barometric pressure in kPa or an error.
type PressureBehaviorFunc func(ctx context.Context) (float64, error)

// TemperatureBehaviorFunc defines the function signature for temperature behavior.
// It returns the temperature in Celsius or an error.
type TemperatureBehaviorFunc func(ctx context.Context) (float64, error)

// MockBarometer is a mock implementation of a pressure/temperature sensor
// that uses behavior functions to produce results without requiring any
// hardware. It can stand in for an MPL115A2 wherever only the measurement
// operations are used.
type MockBarometer struct {
	pressureBehavior PressureBehaviorFunc
	tempBehavior     TemperatureBehaviorFunc
}

// NewMockBarometer creates a new mock barometer with the given behavior
// functions. The pressure behavior is called by GetPressure() and
// GetPressTemp(); the temperature behavior by GetTemperature() and
// GetPressTemp().
//
// Example usage:
//
//	sensor := NewMockBarometer(
//		func(ctx context.Context) (float64, error) { return 101.32, nil },
//		func(ctx context.Context) (float64, error) { return 21.5, nil },
//	)
func NewMockBarometer(pressureBehavior PressureBehaviorFunc, tempBehavior TemperatureBehaviorFunc) *MockBarometer {
	return &MockBarometer{
		pressureBehavior: pressureBehavior,
		tempBehavior:     tempBehavior,
	}
}

// GetPressure returns the pressure by calling the pressure behavior function.
func (m *MockBarometer) GetPressure(ctx context.Context) (float64, error) {
	return m.pressureBehavior(ctx)
}

// GetTemperature returns the temperature by calling the temperature behavior function.
func (m *MockBarometer) GetTemperature(ctx context.Context) (float64, error) {
	return m.tempBehavior(ctx)
}

// GetPressTemp returns a full measurement by calling both behavior functions.
func (m *MockBarometer) GetPressTemp(ctx context.Context) (Measurement, error) {
	pressure, err := m.pressureBehavior(ctx)
	if err != nil {
		return Measurement{}, err
	}
	temp, err := m.tempBehavior(ctx)
	if err != nil {
		return Measurement{}, err
	}
	return Measurement{PressureKPa: pressure, TemperatureC: temp}, nil
}

// NewMockMPL115A2 creates a new mock MPL115A2 sensor (alias for NewMockBarometer).
func NewMockMPL115A2(pressureBehavior PressureBehaviorFunc, tempBehavior TemperatureBehaviorFunc) *MockBarometer {
	return NewMockBarometer(pressureBehavior, tempBehavior)
}
