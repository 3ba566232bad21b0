package pressure

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockI2CBus is a mock implementation of barometer.I2CBus using testify/mock
type MockI2CBus struct {
	mock.Mock
}

func (m *MockI2CBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	return args.Error(0)
}

func (m *MockI2CBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	if args.Get(0) != nil {
		if data, ok := args.Get(0).([]byte); ok && len(data) <= len(buffer) {
			copy(buffer, data)
		}
	}
	return args.Error(1)
}

func (m *MockI2CBus) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func bufferOfLen(n int) interface{} {
	return mock.MatchedBy(func(b []byte) bool { return len(b) == n })
}

// expectMeasurementCycle scripts one full successful measurement on the bus:
// coefficient range read, conversion start, ADC range read.
func expectMeasurementCycle(bus *MockI2CBus, addr byte, coeff, adc []byte) {
	bus.On("WriteToAddr", mock.Anything, addr, []byte{regA0MSB}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, addr, bufferOfLen(8)).Return(coeff, nil).Once()
	bus.On("WriteToAddr", mock.Anything, addr, []byte{regConvert, 0x00}).Return(nil).Once()
	bus.On("WriteToAddr", mock.Anything, addr, []byte{regPadcMSB}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, addr, bufferOfLen(4)).Return(adc, nil).Once()
}

func convertWriteIssued(bus *MockI2CBus) bool {
	for _, call := range bus.Calls {
		if call.Method != "WriteToAddr" {
			continue
		}
		buf, ok := call.Arguments.Get(2).([]byte)
		if ok && len(buf) == 2 && buf[0] == regConvert {
			return true
		}
	}
	return false
}

func TestToSigned(t *testing.T) {
	tests := []struct {
		given    uint16
		bits     uint
		expected int
	}{
		{0x0000, 16, 0},
		{0x0001, 16, 1},
		{0x7FFF, 16, 32767},
		{0x8000, 16, -32768},
		{0xFFFF, 16, -1},
		{0x1FFF, 14, 8191},
		{0x2000, 14, -8192},
		{0x3FFF, 14, -1},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%#x_%dbit", test.given, test.bits), func(t *testing.T) {
			assert.Equal(t, test.expected, toSigned(test.given, test.bits))
		})
	}
}

func TestMPL115A2_GetPressTemp(t *testing.T) {
	tests := []struct {
		name         string
		coefficients []byte
		adc          []byte
		pressureKPa  float64
		temperatureC float64
	}{
		{
			// a0=2013.0, b1=0.03857421875, b2=0, c12 positive
			name:         "positive coefficients",
			coefficients: []byte{0x3E, 0xE8, 0x01, 0x3C, 0x00, 0x00, 0x7D, 0x98},
			adc:          []byte{0x6C, 0x00, 0x7A, 0x40},
			pressureKPa:  204.68,
			temperatureC: 26.7,
		},
		{
			// datasheet example coefficients, Padc=410, Tadc=507
			name:         "datasheet coefficients",
			coefficients: []byte{0x3E, 0xCE, 0xB3, 0xF9, 0xC5, 0x17, 0x33, 0xC8},
			adc:          []byte{0x66, 0x80, 0x7E, 0xC0},
			pressureKPa:  96.59,
			temperatureC: 23.3,
		},
		{
			name:         "all zero registers",
			coefficients: []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
			adc:          []byte{0x00, 0x00, 0x00, 0x00},
			pressureKPa:  50.0,
			temperatureC: 118.1,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bus := new(MockI2CBus)
			expectMeasurementCycle(bus, mpl115a2Address, test.coefficients, test.adc)
			sensor := NewMPL115A2(bus, WithConversionDelay(0))

			m, err := sensor.GetPressTemp(context.Background())
			require.NoError(t, err)
			assert.Equal(t, test.pressureKPa, m.PressureKPa)
			assert.Equal(t, test.temperatureC, m.TemperatureC)
			// rounding granularity: 2 decimals for pressure, 1 for temperature
			assert.Equal(t, m.PressureKPa, round(m.PressureKPa, 2))
			assert.Equal(t, m.TemperatureC, round(m.TemperatureC, 1))
			bus.AssertExpectations(t)
		})
	}
}

func TestMPL115A2_GetPressTemp_CustomAddress(t *testing.T) {
	bus := new(MockI2CBus)
	expectMeasurementCycle(bus, 0x61,
		[]byte{0x3E, 0xCE, 0xB3, 0xF9, 0xC5, 0x17, 0x33, 0xC8},
		[]byte{0x66, 0x80, 0x7E, 0xC0})
	sensor := NewMPL115A2(bus, WithAddress(0x61), WithConversionDelay(0))

	m, err := sensor.GetPressTemp(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 96.59, m.PressureKPa)
	bus.AssertExpectations(t)
}

func TestMPL115A2_GetPressTemp_CoefficientReadFailure(t *testing.T) {
	bus := new(MockI2CBus)
	bus.On("WriteToAddr", mock.Anything, byte(mpl115a2Address), []byte{regA0MSB}).
		Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(mpl115a2Address), bufferOfLen(8)).
		Return(nil, errors.New("i2c read failed")).Once()
	sensor := NewMPL115A2(bus, WithConversionDelay(0))

	_, err := sensor.GetPressTemp(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mpl115a2: could not read registers")
	assert.Contains(t, err.Error(), "i2c read failed")
	// the failed coefficient read must abort the cycle before the
	// conversion start command is issued
	assert.False(t, convertWriteIssued(bus))
	bus.AssertExpectations(t)
}

func TestMPL115A2_GetPressTemp_ConvertWriteFailure(t *testing.T) {
	bus := new(MockI2CBus)
	bus.On("WriteToAddr", mock.Anything, byte(mpl115a2Address), []byte{regA0MSB}).
		Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(mpl115a2Address), bufferOfLen(8)).
		Return([]byte{0x3E, 0xCE, 0xB3, 0xF9, 0xC5, 0x17, 0x33, 0xC8}, nil).Once()
	bus.On("WriteToAddr", mock.Anything, byte(mpl115a2Address), []byte{regConvert, 0x00}).
		Return(errors.New("i2c write failed")).Once()
	sensor := NewMPL115A2(bus, WithConversionDelay(0))

	_, err := sensor.GetPressTemp(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mpl115a2: could not write register 0x12")
	bus.AssertExpectations(t)
}

func TestMPL115A2_GetPressTemp_DefaultConversionDelay(t *testing.T) {
	bus := new(MockI2CBus)
	expectMeasurementCycle(bus, mpl115a2Address,
		[]byte{0x3E, 0xCE, 0xB3, 0xF9, 0xC5, 0x17, 0x33, 0xC8},
		[]byte{0x66, 0x80, 0x7E, 0xC0})
	sensor := NewMPL115A2(bus)

	start := time.Now()
	_, err := sensor.GetPressTemp(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, defaultConversionDelay, "measurement must honor the device conversion time")
	bus.AssertExpectations(t)
}

func TestMPL115A2_GetPressTemp_ContextCancelledDuringWait(t *testing.T) {
	bus := new(MockI2CBus)
	bus.On("WriteToAddr", mock.Anything, byte(mpl115a2Address), []byte{regA0MSB}).
		Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(mpl115a2Address), bufferOfLen(8)).
		Return([]byte{0x3E, 0xCE, 0xB3, 0xF9, 0xC5, 0x17, 0x33, 0xC8}, nil).Once()
	bus.On("WriteToAddr", mock.Anything, byte(mpl115a2Address), []byte{regConvert, 0x00}).
		Return(nil).Once()
	sensor := NewMPL115A2(bus, WithConversionDelay(time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := sensor.GetPressTemp(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	bus.AssertExpectations(t)
}

func TestMPL115A2_GetPressureAndGetTemperature(t *testing.T) {
	coeff := []byte{0x3E, 0xCE, 0xB3, 0xF9, 0xC5, 0x17, 0x33, 0xC8}
	adc := []byte{0x66, 0x80, 0x7E, 0xC0}

	bus := new(MockI2CBus)
	expectMeasurementCycle(bus, mpl115a2Address, coeff, adc)
	sensor := NewMPL115A2(bus, WithConversionDelay(0))
	p, err := sensor.GetPressure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 96.59, p)
	bus.AssertExpectations(t)

	bus = new(MockI2CBus)
	expectMeasurementCycle(bus, mpl115a2Address, coeff, adc)
	sensor = NewMPL115A2(bus, WithConversionDelay(0))
	temp, err := sensor.GetTemperature(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 23.3, temp)
	bus.AssertExpectations(t)
}

func TestMPL115A2_SetRegister(t *testing.T) {
	t.Run("writable register issues a single write", func(t *testing.T) {
		bus := new(MockI2CBus)
		bus.On("WriteToAddr", mock.Anything, byte(mpl115a2Address), []byte{regCfgB, 0xAB}).
			Return(nil).Once()
		sensor := NewMPL115A2(bus)

		err := sensor.SetRegister(context.Background(), regCfgB, 0xAB)
		require.NoError(t, err)
		assert.Len(t, bus.Calls, 1)
		bus.AssertExpectations(t)
	})

	t.Run("non-writable register is rejected before any I/O", func(t *testing.T) {
		bus := new(MockI2CBus)
		sensor := NewMPL115A2(bus)

		err := sensor.SetRegister(context.Background(), regA0LSB, 0x01)
		assert.ErrorIs(t, err, ErrRegisterNotWritable)
		assert.Empty(t, bus.Calls)
	})

	t.Run("transport failure is surfaced", func(t *testing.T) {
		bus := new(MockI2CBus)
		bus.On("WriteToAddr", mock.Anything, byte(mpl115a2Address), []byte{regMode, 0x00}).
			Return(errors.New("i2c write failed")).Once()
		sensor := NewMPL115A2(bus)

		err := sensor.SetRegister(context.Background(), regMode, 0x00)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mpl115a2: could not write register")
		bus.AssertExpectations(t)
	})
}

func TestMPL115A2_ReadRegister(t *testing.T) {
	bus := new(MockI2CBus)
	bus.On("WriteToAddr", mock.Anything, byte(mpl115a2Address), []byte{regA0MSB}).
		Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(mpl115a2Address), bufferOfLen(1)).
		Return([]byte{0x3E}, nil).Once()
	sensor := NewMPL115A2(bus)

	value, err := sensor.readRegister(context.Background(), regA0MSB)
	require.NoError(t, err)
	assert.Equal(t, byte(0x3E), value)
	bus.AssertExpectations(t)
}
