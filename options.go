package ads7953

import (
	"time"

	"github.com/rs/zerolog"
)

// An Option configures a device. It returns an Option that restores the
// previous value.
type Option func(d *Device) Option

// Channels sets how many inputs are sampled, starting at channel 0. It must be
// between 1 and 16. By default, all 16 channels are sampled.
func Channels(n int) Option {
	return func(d *Device) Option {
		old := d.channels
		d.channels = n
		return Channels(old)
	}
}

// Depth sets how many readings per channel are averaged. By default, the last
// 4 readings are used.
func Depth(n int) Option {
	return func(d *Device) Option {
		old := d.depth
		d.depth = n
		return Depth(old)
	}
}

// Window sets the length of a sampling window. It is truncated to whole
// milliseconds and must fit a 32-bit millisecond counter. By default, a
// window lasts 60 seconds.
func Window(w time.Duration) Option {
	return func(d *Device) Option {
		old := d.window
		d.window = w
		return Window(old)
	}
}

// ReadyTimeout sets how long Step waits for the busy line to report a
// finished conversion, rounded up to whole milliseconds of the device clock.
// A value of 0 waits until the context is canceled.
// By default, Step gives up after 100ms.
func ReadyTimeout(t time.Duration) Option {
	return func(d *Device) Option {
		old := d.readyTimeout
		d.readyTimeout = t
		return ReadyTimeout(old)
	}
}

// Gain2x selects the 0 to 2xVREF input range. Enabled by default.
func Gain2x(on bool) Option {
	return func(d *Device) Option {
		old := d.gain2x
		d.gain2x = on
		return Gain2x(old)
	}
}

// ExternalRef selects the external voltage reference. Enabled by default.
func ExternalRef(on bool) Option {
	return func(d *Device) Option {
		old := d.extRef
		d.extRef = on
		return ExternalRef(old)
	}
}

// WithClock replaces the millisecond time source.
func WithClock(c Clock) Option {
	return func(d *Device) Option {
		old := d.clock
		d.clock = c
		return WithClock(old)
	}
}

// WithLogger sets the logger used by the device. By default, nothing is
// logged.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Device) Option {
		old := d.log
		d.log = log
		return WithLogger(old)
	}
}

// Name sets the name used to label logs and metrics of the device.
func Name(name string) Option {
	return func(d *Device) Option {
		old := d.name
		d.name = name
		return Name(old)
	}
}
