package pressure

import (
	"context"
	"fmt"
	"testing"
)

func TestMockBarometer_StaticValues(t *testing.T) {
	s := NewMockBarometer(
		func(ctx context.Context) (float64, error) { return 101.32, nil },
		func(ctx context.Context) (float64, error) { return 21.5, nil },
	)
	ctx := context.Background()
	m, err := s.GetPressTemp(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.PressureKPa != 101.32 {
		t.Errorf("expected 101.32, got %f", m.PressureKPa)
	}
	if m.TemperatureC != 21.5 {
		t.Errorf("expected 21.5, got %f", m.TemperatureC)
	}
}

func TestMockBarometer_Dynamic(t *testing.T) {
	pressure := 98.5
	s := NewMockBarometer(
		func(ctx context.Context) (float64, error) { return pressure, nil },
		func(ctx context.Context) (float64, error) { return 20.0, nil },
	)
	ctx := context.Background()

	p1, _ := s.GetPressure(ctx)
	if p1 != 98.5 {
		t.Errorf("expected 98.5, got %f", p1)
	}
	pressure = 99.1
	p2, _ := s.GetPressure(ctx)
	if p2 != 99.1 {
		t.Errorf("expected 99.1, got %f", p2)
	}
}

func TestMockBarometer_Error(t *testing.T) {
	s := NewMockBarometer(
		func(ctx context.Context) (float64, error) { return 0, fmt.Errorf("sensor error") },
		func(ctx context.Context) (float64, error) { return 21.5, nil },
	)
	ctx := context.Background()
	_, err := s.GetPressTemp(ctx)
	if err == nil || err.Error() != "sensor error" {
		t.Errorf("expected sensor error, got %v", err)
	}
}

func TestMockBarometer_ContextPropagation(t *testing.T) {
	var received context.Context
	s := NewMockBarometer(
		func(ctx context.Context) (float64, error) { received = ctx; return 101.32, nil },
		func(ctx context.Context) (float64, error) { return 21.5, nil },
	)
	type ctxKey string
	key := ctxKey("k")
	ctx := context.WithValue(context.Background(), key, "v")
	_, _ = s.GetPressure(ctx)
	if received.Value(key) != "v" {
		t.Error("context was not propagated")
	}
}
