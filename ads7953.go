package ads7953

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/periph/conn/gpio"
)

var (
	// ErrReadyTimeout is returned by Step when the busy line does not report a
	// finished conversion within the configured ready timeout.
	ErrReadyTimeout = errors.New("ads7953: timed out waiting for conversion")
	// ErrNotStarted is returned by Step when StartSampling was never called.
	ErrNotStarted = errors.New("ads7953: sampling not started")
	// ErrInvalidOption is returned by New when an option is out of range.
	ErrInvalidOption = errors.New("ads7953: invalid option")
)

// Bus exchanges 16-bit frames with the converter. Each call is a single
// full-duplex transfer; the chip-select line is driven separately.
type Bus interface {
	Transfer16(cmd uint16) (uint16, error)
}

// OutputPin drives the chip-select line.
type OutputPin interface {
	Out(l gpio.Level) error
}

// InputPin reads the busy line. High means a result is ready.
type InputPin interface {
	In(pull gpio.Pull, edge gpio.Edge) error
	Read() gpio.Level
}

// State is the sampling state of a device.
type State int

const (
	// Idle is the state before the first window is started.
	Idle State = iota
	// Sampling means a window is active and Step reads channels.
	Sampling
	// WindowComplete means the window elapsed; results can be read.
	WindowComplete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sampling:
		return "sampling"
	case WindowComplete:
		return "window complete"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// Snapshot is a copy of the per-channel results of a device.
type Snapshot struct {
	// Averages holds the moving average of each channel.
	Averages []uint16
	// Samples holds the retained readings of each channel, oldest first.
	Samples [][]uint16
	// Timestamp is the time in milliseconds since the window started, taken
	// at the end of the last complete pass over all channels.
	Timestamp uint32
}

// Device samples the channels of an ADS7953 in Auto-1 order and keeps a
// moving average per channel. A Device is not safe for concurrent use.
type Device struct {
	bus  Bus
	cs   OutputPin
	busy InputPin

	channels     int
	depth        int
	window       time.Duration
	windowMs     uint32
	readyTimeout time.Duration
	readyMs      uint32
	gain2x       bool
	extRef       bool
	clock        Clock
	log          zerolog.Logger
	name         string

	history   []*History
	averages  []uint16
	labels    []string
	timestamp uint32

	state   State
	current int
	start   uint32
}

// maxMillis is the longest duration a 32-bit millisecond counter can measure.
const maxMillis = math.MaxUint32 * time.Millisecond

// New configures the converter for Auto-1 mode and returns a device ready to
// start sampling. The chip-select line is left inactive (high).
func New(bus Bus, cs OutputPin, busy InputPin, opts ...Option) (*Device, error) {
	d := &Device{
		bus:          bus,
		cs:           cs,
		busy:         busy,
		channels:     DefaultChannels,
		depth:        DefaultDepth,
		window:       60 * time.Second,
		readyTimeout: 100 * time.Millisecond,
		gain2x:       true,
		extRef:       true,
		log:          zerolog.Nop(),
		name:         defaultName,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.channels < 1 || d.channels > MaxChannels {
		return nil, fmt.Errorf("%w: channels must be between 1 and %d, got %d", ErrInvalidOption, MaxChannels, d.channels)
	}
	if d.depth < 1 {
		return nil, fmt.Errorf("%w: depth must be positive, got %d", ErrInvalidOption, d.depth)
	}
	if d.window < time.Millisecond || d.window > maxMillis {
		return nil, fmt.Errorf("%w: window must be between 1ms and %v, got %v", ErrInvalidOption, maxMillis, d.window)
	}
	if d.readyTimeout < 0 || d.readyTimeout > maxMillis {
		return nil, fmt.Errorf("%w: ready timeout out of range: %v", ErrInvalidOption, d.readyTimeout)
	}
	d.windowMs = uint32(d.window / time.Millisecond)
	d.readyMs = uint32((d.readyTimeout + time.Millisecond - 1) / time.Millisecond)
	if d.clock == nil {
		d.clock = SystemClock()
	}
	d.log = d.log.With().Str("device", d.name).Logger()

	if err := d.cs.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("ads7953: could not configure chip-select: %w", err)
	}
	if err := d.busy.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("ads7953: could not configure busy line: %w", err)
	}

	if err := d.command(d.configFrame()); err != nil {
		return nil, fmt.Errorf("ads7953: could not configure device: %w", err)
	}

	d.history = make([]*History, d.channels)
	d.averages = make([]uint16, d.channels)
	d.labels = make([]string, d.channels)
	for i := range d.history {
		d.history[i] = NewHistory(d.depth)
		d.labels[i] = strconv.Itoa(i)
	}

	d.log.Debug().
		Int("channels", d.channels).
		Int("depth", d.depth).
		Uint32("window_ms", d.windowMs).
		Msg("configured")

	return d, nil
}

func (d *Device) configFrame() uint16 {
	cfg := uint16(CmdAuto1)
	if d.extRef {
		cfg |= CmdExtRef
	}
	if d.gain2x {
		cfg |= Cmd2xGain
	}
	return cfg
}

// command sends a single frame framed by its own chip-select pulse.
func (d *Device) command(cmd uint16) error {
	if err := d.cs.Out(gpio.Low); err != nil {
		return err
	}
	if _, err := d.bus.Transfer16(cmd); err != nil {
		return errors.Join(err, d.cs.Out(gpio.High))
	}
	return d.cs.Out(gpio.High)
}

// StartSampling begins a new window at channel 0. The moving averages are
// kept from previous windows. On failure the chip-select line is released
// and the previous state is kept.
func (d *Device) StartSampling() error {
	start := d.clock.Millis()

	if err := d.cs.Out(gpio.Low); err != nil {
		return fmt.Errorf("ads7953: could not start sampling: %w", errors.Join(err, d.cs.Out(gpio.High)))
	}
	if _, err := d.bus.Transfer16(CmdAuto1); err != nil {
		return fmt.Errorf("ads7953: could not start sampling: %w", errors.Join(err, d.cs.Out(gpio.High)))
	}
	// first frame triggers the first conversion, its result is meaningless
	if _, err := d.bus.Transfer16(CmdContinue); err != nil {
		return fmt.Errorf("ads7953: could not start sampling: %w", errors.Join(err, d.cs.Out(gpio.High)))
	}

	d.state = Sampling
	d.start = start
	d.current = 0

	d.log.Debug().Uint32("start_ms", d.start).Msg("sampling started")
	return nil
}

// IsWindowComplete reports whether the current window has elapsed. The first
// time it does, the chip-select line is released. The result stays true until
// the next StartSampling.
func (d *Device) IsWindowComplete() (bool, error) {
	switch d.state {
	case Idle:
		return false, nil
	case WindowComplete:
		return true, nil
	}

	if elapsed(d.clock.Millis(), d.start) < d.windowMs {
		return false, nil
	}

	d.state = WindowComplete
	windowsCompletedTotal.WithLabelValues(d.name).Inc()
	d.log.Debug().Uint32("timestamp_ms", d.timestamp).Msg("window complete")

	if err := d.cs.Out(gpio.High); err != nil {
		return true, fmt.Errorf("ads7953: could not release chip-select: %w", err)
	}
	return true, nil
}

// Step reads the result of the current channel, updates its moving average
// and moves on to the next channel. It does nothing once the window is
// complete.
func (d *Device) Step(ctx context.Context) error {
	switch d.state {
	case Idle:
		return ErrNotStarted
	case WindowComplete:
		return nil
	}

	if err := d.waitReady(ctx); err != nil {
		return err
	}

	frame, err := d.bus.Transfer16(CmdContinue)
	if err != nil {
		return fmt.Errorf("ads7953: could not read channel %d: %w", d.current, err)
	}

	ch := d.current
	if addr := int(frame&addrMask) >> addrShift; addr != ch {
		addressMismatchTotal.WithLabelValues(d.name).Inc()
		d.log.Debug().Int("channel", ch).Int("address", addr).Msg("unexpected channel address")
	}

	h := d.history[ch]
	h.Insert(frame & dataMask)
	d.averages[ch] = h.Average()
	conversionsTotal.WithLabelValues(d.name, d.labels[ch]).Inc()
	channelAverage.WithLabelValues(d.name, d.labels[ch]).Set(float64(d.averages[ch]))

	d.current++
	d.current %= d.channels
	if d.current == 0 {
		d.timestamp = elapsed(d.clock.Millis(), d.start)
	}

	_, err = d.IsWindowComplete()
	return err
}

// waitReady polls the busy line. The ready timeout is measured on the device
// clock, so it has millisecond resolution.
func (d *Device) waitReady(ctx context.Context) error {
	begin := d.clock.Millis()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.busy.Read() == gpio.High {
			return nil
		}
		if d.readyMs > 0 && elapsed(d.clock.Millis(), begin) >= d.readyMs {
			readyTimeoutsTotal.WithLabelValues(d.name).Inc()
			return fmt.Errorf("%w on channel %d", ErrReadyTimeout, d.current)
		}
	}
}

// Results copies the results into dst if the window is complete and reports
// whether it did. Otherwise dst is left untouched.
func (d *Device) Results(dst *Snapshot) bool {
	if d.state != WindowComplete {
		return false
	}

	dst.Averages = make([]uint16, len(d.averages))
	copy(dst.Averages, d.averages)
	dst.Samples = make([][]uint16, len(d.history))
	for i, h := range d.history {
		dst.Samples[i] = h.Values()
	}
	dst.Timestamp = d.timestamp

	return true
}

// State returns the sampling state.
func (d *Device) State() State {
	return d.state
}

// Channel returns the index of the channel read by the next Step.
func (d *Device) Channel() int {
	return d.current
}

// Close releases the chip-select line. The bus and pins are not closed.
func (d *Device) Close() error {
	return d.cs.Out(gpio.High)
}
