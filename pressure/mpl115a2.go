package pressure

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/mklimuk/barometer"
)

// MPL115A2 default 7-bit I2C address.
const mpl115a2Address = 0x60

// Register map (per datasheet)
//
//	0x00..0x03: pressure and temperature ADC result pairs (MSB first)
//	0x04..0x0B: factory calibration coefficients a0, b1, b2, c12
//	0x12: conversion start command register
const (
	regPadcMSB byte = 0x00
	regPadcLSB byte = 0x01
	regTadcMSB byte = 0x02
	regTadcLSB byte = 0x03
	regA0MSB   byte = 0x04
	regA0LSB   byte = 0x05
	regB1MSB   byte = 0x06
	regB1LSB   byte = 0x07
	regB2MSB   byte = 0x08
	regB2LSB   byte = 0x09
	regC12MSB  byte = 0x0A
	regC12LSB  byte = 0x0B
	regConvert byte = 0x12
)

// Host-writable configuration registers. These alias the ADC result
// addresses in the datasheet map but are only ever targeted by writes,
// which the device routes to the configuration block.
const (
	regCfgA byte = 0x00
	regCfgB byte = 0x01
	regMode byte = 0x02
)

// Coefficient LSB scaling: a0 carries 3 fractional bits, b1 13, b2 14
// and c12 22 (including the 9-bit left pad documented in the datasheet).
const (
	a0Divider  = 8.0
	b1Divider  = 8192.0
	b2Divider  = 16384.0
	c12Divider = 4194304.0
)

// Minimum conversion time required by the device between the start
// command and the ADC readout.
const defaultConversionDelay = 40 * time.Millisecond

var ErrRegisterNotWritable = errors.New("mpl115a2: register not writable")

// Measurement is a single calibrated readout.
type Measurement struct {
	PressureKPa  float64
	TemperatureC float64
}

type MPL115A2Opts struct {
	Address         byte
	ConversionDelay time.Duration
}

type MPL115A2Opt func(*MPL115A2Opts)

func WithAddress(address byte) MPL115A2Opt {
	return func(o *MPL115A2Opts) {
		o.Address = address
	}
}

// WithConversionDelay overrides the wait between the conversion start
// command and the ADC readout. Intended for test harnesses; production
// code must keep the 40ms datasheet minimum.
func WithConversionDelay(delay time.Duration) MPL115A2Opt {
	return func(o *MPL115A2Opts) {
		o.ConversionDelay = delay
	}
}

// MPL115A2 represents the Freescale MPL115A2 digital barometer.
// Typical usage:
//
//	s := NewMPL115A2(bus)
//	m, err := s.GetPressTemp(ctx)
//
// Every call is a self-contained read-compute cycle: coefficients are
// read fresh, a conversion is triggered and the ADC counts are fetched
// after the device conversion time. Access to a sensor instance (and to
// the underlying bus) must be serialized by the caller.
type MPL115A2 struct {
	transport barometer.I2CBus
	addr      byte
	delay     time.Duration
}

func NewMPL115A2(trans barometer.I2CBus, opts ...MPL115A2Opt) *MPL115A2 {
	config := MPL115A2Opts{
		Address:         mpl115a2Address,
		ConversionDelay: defaultConversionDelay,
	}
	for _, opt := range opts {
		opt(&config)
	}
	return &MPL115A2{
		transport: trans,
		addr:      config.Address,
		delay:     config.ConversionDelay,
	}
}

// GetPressTemp performs one full measurement cycle and returns the
// compensated pressure in kPa (2 decimals) and temperature in Celsius
// (1 decimal). Any transport failure aborts the cycle; no partial
// result is returned and no retry is attempted.
func (s *MPL115A2) GetPressTemp(ctx context.Context) (Measurement, error) {
	coeff, err := s.readRegisterRange(ctx, regA0MSB, regC12LSB)
	if err != nil {
		return Measurement{}, err
	}
	a0Raw := binary.BigEndian.Uint16(coeff[0:2])
	b1Raw := binary.BigEndian.Uint16(coeff[2:4])
	b2Raw := binary.BigEndian.Uint16(coeff[4:6])
	// c12 is a 14-bit field stored shifted two bits to the left
	c12Raw := binary.BigEndian.Uint16(coeff[6:8]) >> 2

	if err := s.writeRegister(ctx, regConvert, 0x00); err != nil {
		return Measurement{}, err
	}
	if err := s.waitConversion(ctx); err != nil {
		return Measurement{}, err
	}

	adc, err := s.readRegisterRange(ctx, regPadcMSB, regTadcLSB)
	if err != nil {
		return Measurement{}, err
	}
	// 10-bit counts left-justified in the 16-bit register pairs
	pAdc := float64(binary.BigEndian.Uint16(adc[0:2]) >> 6)
	tAdc := float64(binary.BigEndian.Uint16(adc[2:4]) >> 6)

	a0 := float64(toSigned(a0Raw, 16)) / a0Divider
	b1 := float64(toSigned(b1Raw, 16)) / b1Divider
	b2 := float64(toSigned(b2Raw, 16)) / b2Divider
	c12 := float64(toSigned(c12Raw, 14)) / c12Divider

	pComp := a0 + (b1+c12*tAdc)*pAdc + b2*tAdc
	return Measurement{
		PressureKPa:  round(pComp*(65.0/1023.0)+50.0, 2),
		TemperatureC: round((tAdc-498.0)/-5.35+25.0, 1),
	}, nil
}

// GetPressure performs a full measurement cycle and returns the
// compensated pressure in kPa.
func (s *MPL115A2) GetPressure(ctx context.Context) (float64, error) {
	m, err := s.GetPressTemp(ctx)
	return m.PressureKPa, err
}

// GetTemperature performs a full measurement cycle and returns the
// temperature in Celsius.
func (s *MPL115A2) GetTemperature(ctx context.Context) (float64, error) {
	m, err := s.GetPressTemp(ctx)
	return m.TemperatureC, err
}

// SetRegister writes a configuration register. Only the host-writable
// range [regCfgA, regMode] is accepted; anything else is rejected with
// ErrRegisterNotWritable before any bus traffic.
func (s *MPL115A2) SetRegister(ctx context.Context, register, value byte) error {
	if register < regCfgA || register > regMode {
		return fmt.Errorf("%w: %#x", ErrRegisterNotWritable, register)
	}
	return s.writeRegister(ctx, register, value)
}

func (s *MPL115A2) waitConversion(ctx context.Context) error {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *MPL115A2) readRegister(ctx context.Context, register byte) (byte, error) {
	buf, err := s.readRegisterRange(ctx, register, register)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (s *MPL115A2) readRegisterRange(ctx context.Context, start, end byte) ([]byte, error) {
	err := s.transport.WriteToAddr(ctx, s.addr, []byte{start})
	if err != nil {
		return nil, fmt.Errorf("mpl115a2: could not write register address %#x: %w", start, err)
	}
	buf := make([]byte, int(end-start)+1)
	err = s.transport.ReadFromAddr(ctx, s.addr, buf)
	if err != nil {
		return nil, fmt.Errorf("mpl115a2: could not read registers %#x..%#x: %w", start, end, err)
	}
	return buf, nil
}

func (s *MPL115A2) writeRegister(ctx context.Context, register, value byte) error {
	err := s.transport.WriteToAddr(ctx, s.addr, []byte{register, value})
	if err != nil {
		return fmt.Errorf("mpl115a2: could not write register %#x: %w", register, err)
	}
	return nil
}

// toSigned interprets the low bits of v as a two's complement number of
// the given width.
func toSigned(v uint16, bits uint) int {
	u := int(v)
	if u&(1<<(bits-1)) != 0 {
		return u - 1<<bits
	}
	return u
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
