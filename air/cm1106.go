package air

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mklimuk/cm1106"
)

// CM1106 default 7-bit I2C address.
const CM1106Address = 0x31

// Command map. Every frame on the wire is [command][data...][checksum].
const (
	cmdMeasure         byte = 0x01
	cmdCalibrate       byte = 0x03
	cmdAutoZero        byte = 0x10
	cmdFirmwareVersion byte = 0x1E
	cmdSerialNumber    byte = 0x1F
)

// Response frame lengths including command and checksum bytes.
const (
	measureFrameLen   = 5
	autoZeroFrameLen  = 8
	calibrateFrameLen = 4
	serialFrameLen    = 12
	versionFrameLen   = 12
)

// Auto-zero frame constants. The accelerate value and the reserved byte are
// fixed by the vendor at 100.
const (
	autoZeroAccelerate byte = 100
	autoZeroReserved   byte = 100
)

const (
	// ZeroSwitchOpen enables automatic zero calibration.
	ZeroSwitchOpen byte = 0
	// ZeroSwitchClosed disables automatic zero calibration.
	ZeroSwitchClosed byte = 2
)

const (
	MinZeroPeriod        = 1
	MaxZeroPeriod        = 15
	MinZeroConcentration = 400
	MaxZeroConcentration = 1499
	MinCalibrationTarget = 400
	MaxCalibrationTarget = 1500
	// MaxConcentration is the upper end of the measurement range.
	MaxConcentration = 5000
)

// DefaultAckDelay is the time the module needs to prepare its reply.
const DefaultAckDelay = 500 * time.Millisecond

var (
	ErrShortBuffer      = fmt.Errorf("cm1106: response shorter than expected")
	ErrHeaderMismatch   = fmt.Errorf("cm1106: frame header does not match command")
	ErrChecksumMismatch = fmt.Errorf("cm1106: checksum mismatch")

	ErrInvalidZeroSwitch        = fmt.Errorf("cm1106: zero setting switch must be 0 or 2")
	ErrInvalidZeroPeriod        = fmt.Errorf("cm1106: zero calibration period must be between %d and %d", MinZeroPeriod, MaxZeroPeriod)
	ErrInvalidZeroConcentration = fmt.Errorf("cm1106: zero calibration concentration must be between %d and %d", MinZeroConcentration, MaxZeroConcentration)
	ErrInvalidCalibrationTarget = fmt.Errorf("cm1106: calibration target must be between %d and %d", MinCalibrationTarget, MaxCalibrationTarget)
)

// PPM is CO2 concentration in parts per million.
type PPM uint16

func (p PPM) String() string {
	return fmt.Sprintf("%d ppm", uint16(p))
}

// Measurement is a single decoded measure reply.
type Measurement struct {
	CO2    PPM       `yaml:"co2" json:"co2" cbor:"co2"`
	Status Status    `yaml:"status" json:"status" cbor:"status"`
	Time   time.Time `yaml:"time" json:"time" cbor:"time"`
}

// AutoZeroConfig holds automatic zero calibration parameters.
type AutoZeroConfig struct {
	// Switch is ZeroSwitchOpen or ZeroSwitchClosed.
	Switch byte `yaml:"switch"`
	// Period in days.
	Period byte `yaml:"period"`
	// Concentration used as the zero reference.
	Concentration uint16 `yaml:"concentration"`
}

// Validate checks parameters in switch, period, concentration order.
func (c AutoZeroConfig) Validate() error {
	if c.Switch != ZeroSwitchOpen && c.Switch != ZeroSwitchClosed {
		return fmt.Errorf("%w: got %d", ErrInvalidZeroSwitch, c.Switch)
	}
	if c.Period < MinZeroPeriod || c.Period > MaxZeroPeriod {
		return fmt.Errorf("%w: got %d", ErrInvalidZeroPeriod, c.Period)
	}
	if c.Concentration < MinZeroConcentration || c.Concentration > MaxZeroConcentration {
		return fmt.Errorf("%w: got %d", ErrInvalidZeroConcentration, c.Concentration)
	}
	return nil
}

// SerialNumber is the five word serial number of the module.
type SerialNumber [5]uint16

func (s SerialNumber) String() string {
	parts := make([]string, len(s))
	for i, w := range s {
		parts[i] = fmt.Sprintf("%04X", w)
	}
	return strings.Join(parts, "-")
}

type CM1106Opts struct {
	AckDelay time.Duration
	Variant  Variant
	Address  byte
	Logger   *slog.Logger
}

type CM1106Opt func(*CM1106Opts)

func WithAckDelay(delay time.Duration) CM1106Opt {
	return func(o *CM1106Opts) {
		o.AckDelay = delay
	}
}

func WithVariant(v Variant) CM1106Opt {
	return func(o *CM1106Opts) {
		o.Variant = v
	}
}

func WithAddress(addr byte) CM1106Opt {
	return func(o *CM1106Opts) {
		o.Address = addr
	}
}

func WithLogger(l *slog.Logger) CM1106Opt {
	return func(o *CM1106Opts) {
		o.Logger = l
	}
}

// CM1106 represents Cubic CM1106 (or CM1107) NDIR CO2 sensor.
// Typical usage:
//
//	s := NewCM1106(bus)
//	m, err := s.Measure(ctx)
//
// Every call is a single request/response transaction. Transactions are
// serialized, failures are returned as is and never retried.
type CM1106 struct {
	mx     sync.Mutex
	config CM1106Opts

	transport cm1106.I2CBus
	last      Measurement
	hasLast   bool
}

func NewCM1106(transport cm1106.I2CBus, opts ...CM1106Opt) *CM1106 {
	config := CM1106Opts{
		AckDelay: DefaultAckDelay,
		Variant:  VariantCM1106,
		Address:  CM1106Address,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &CM1106{
		config:    config,
		transport: transport,
	}
}

// Variant returns the chip family used to interpret status codes.
func (s *CM1106) Variant() Variant {
	return s.config.Variant
}

// Close waits for an in-flight transaction to finish.
func (s *CM1106) Close(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.mx.Lock()
		defer s.mx.Unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Measure triggers a measurement and returns the CO2 concentration and status.
func (s *CM1106) Measure(ctx context.Context) (Measurement, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	frame, err := s.transact(ctx, []byte{cmdMeasure}, measureFrameLen)
	if err != nil {
		return Measurement{}, err
	}
	m := Measurement{
		CO2:    PPM(binary.BigEndian.Uint16(frame[1:3])),
		Status: Status(frame[3]),
		Time:   time.Now(),
	}
	s.last = m
	s.hasLast = true
	s.config.Logger.Debug("cm1106 measurement", "co2", uint16(m.CO2), "status", m.Status.Describe(s.config.Variant))
	return m, nil
}

// LastMeasurement returns the last successful measurement, if any.
func (s *CM1106) LastMeasurement() (Measurement, bool) {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.last, s.hasLast
}

// SetAutoZero configures automatic zero calibration. Parameters are validated
// before anything is sent to the device.
func (s *CM1106) SetAutoZero(ctx context.Context, cfg AutoZeroConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	req := []byte{
		cmdAutoZero,
		autoZeroAccelerate,
		cfg.Switch,
		cfg.Period,
		0, 0,
		autoZeroReserved,
	}
	binary.BigEndian.PutUint16(req[4:6], cfg.Concentration)

	s.mx.Lock()
	defer s.mx.Unlock()
	frame, err := s.transact(ctx, req, autoZeroFrameLen)
	if err != nil {
		return err
	}
	s.config.Logger.Debug("cm1106 auto zero set",
		"accelerate", frame[1],
		"switch", frame[2],
		"period", frame[3],
		"concentration", binary.BigEndian.Uint16(frame[4:6]),
		"reserved", frame[6])
	return nil
}

// Calibrate performs a single point calibration against the given reference
// concentration.
func (s *CM1106) Calibrate(ctx context.Context, target uint16) error {
	if target < MinCalibrationTarget || target > MaxCalibrationTarget {
		return fmt.Errorf("%w: got %d", ErrInvalidCalibrationTarget, target)
	}
	req := []byte{cmdCalibrate, 0, 0}
	binary.BigEndian.PutUint16(req[1:3], target)

	s.mx.Lock()
	defer s.mx.Unlock()
	frame, err := s.transact(ctx, req, calibrateFrameLen)
	if err != nil {
		return err
	}
	s.config.Logger.Debug("cm1106 calibrated", "adjust", binary.BigEndian.Uint16(frame[1:3]))
	return nil
}

func (s *CM1106) ReadSerialNumber(ctx context.Context) (SerialNumber, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	var sn SerialNumber
	frame, err := s.transact(ctx, []byte{cmdSerialNumber}, serialFrameLen)
	if err != nil {
		return sn, err
	}
	for i := range sn {
		sn[i] = binary.BigEndian.Uint16(frame[1+2*i : 3+2*i])
	}
	return sn, nil
}

func (s *CM1106) ReadFirmwareVersion(ctx context.Context) (string, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	frame, err := s.transact(ctx, []byte{cmdFirmwareVersion}, versionFrameLen)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(frame[1:10]), "\x00 "), nil
}

// transact writes the request, waits for the device to prepare the reply and
// reads a frame of respLen bytes. The returned frame is validated.
// Caller must hold s.mx.
func (s *CM1106) transact(ctx context.Context, req []byte, respLen int) ([]byte, error) {
	cmd := req[0]
	err := s.transport.WriteToAddr(ctx, s.config.Address, req)
	if err != nil {
		return nil, fmt.Errorf("cm1106: write command %#x failed: %w", cmd, err)
	}

	timer := time.NewTimer(s.config.AckDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	frame := make([]byte, respLen)
	n, err := cm1106.ReadCount(ctx, s.transport, s.config.Address, frame)
	if err != nil {
		return nil, fmt.Errorf("%w: read reply to %#x failed: %w", ErrShortBuffer, cmd, err)
	}
	if err := validateFrame(cmd, frame, n); err != nil {
		s.config.Logger.Debug("cm1106 invalid frame", "cmd", cmd, "received", n, "frame", fmt.Sprintf("% x", frame[:min(n, len(frame))]), "error", err)
		return nil, err
	}
	return frame, nil
}

// validateFrame checks length, header and checksum in that order.
func validateFrame(cmd byte, frame []byte, n int) error {
	if n < len(frame) {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrShortBuffer, len(frame), n)
	}
	if frame[0] != cmd {
		return fmt.Errorf("%w: expected %#x, got %#x", ErrHeaderMismatch, cmd, frame[0])
	}
	last := len(frame) - 1
	if cs := checksum(frame[:last]); cs != frame[last] {
		return fmt.Errorf("%w: expected %#x, got %#x", ErrChecksumMismatch, cs, frame[last])
	}
	return nil
}

// checksum is the negated mod-256 sum of data.
func checksum(data []byte) byte {
	var cs byte
	for _, b := range data {
		cs -= b
	}
	return cs
}
