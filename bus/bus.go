// Package bus connects an ADS7953 to the host through periph.io. It opens the
// SPI port and looks up the GPIO lines used for chip-select and busy.
package bus

import (
	"errors"
	"fmt"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"
)

var (
	// ErrNoPin is returned when a GPIO line name cannot be resolved.
	ErrNoPin = errors.New("bus: pin not found")
)

// Config selects the port and lines used to reach the converter.
type Config struct {
	// Port is the SPI port name ("/dev/spidev0.0", "SPI0.0", "0"). An empty
	// name selects the first available port.
	Port string
	// Speed is the SPI clock. Defaults to DefaultSpeed.
	Speed physic.Frequency
	// ChipSelect is the name of the GPIO line driving CS ("GPIO8", "24").
	ChipSelect string
	// Busy is the name of the GPIO line reporting a finished conversion.
	Busy string
}

// DefaultSpeed is the SPI clock used when none is configured.
const DefaultSpeed = 1 * physic.MegaHertz

// Tx is a full-duplex exchange, as implemented by spi.Conn.
type Tx interface {
	Tx(w, r []byte) error
}

// Device is an open SPI connection plus its chip-select and busy lines.
type Device struct {
	port spi.PortCloser
	conn spi.Conn
	cs   gpio.PinIO
	busy gpio.PinIO
}

// Open initializes the host drivers and opens the SPI port and GPIO lines.
// The SPI driver is asked to leave CS alone; it is driven through the
// ChipSelect line so that it can stay low across several frames.
func Open(cfg Config) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("bus: could not initialize host: %w", err)
	}

	speed := cfg.Speed
	if speed == 0 {
		speed = DefaultSpeed
	}

	cs := gpioreg.ByName(cfg.ChipSelect)
	if cs == nil {
		return nil, fmt.Errorf("%w: chip-select %q", ErrNoPin, cfg.ChipSelect)
	}
	busy := gpioreg.ByName(cfg.Busy)
	if busy == nil {
		return nil, fmt.Errorf("%w: busy %q", ErrNoPin, cfg.Busy)
	}

	port, err := spireg.Open(cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("bus: could not open SPI port: %w", err)
	}

	conn, err := port.Connect(speed, spi.Mode0|spi.NoCS, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("bus: could not connect to SPI port %q: %w", port, err)
	}

	return &Device{
		port: port,
		conn: conn,
		cs:   cs,
		busy: busy,
	}, nil
}

// Transfer16 exchanges one 16-bit frame with the converter.
func (d *Device) Transfer16(cmd uint16) (uint16, error) {
	return Transfer16(d.conn, cmd)
}

// CS returns the chip-select line.
func (d *Device) CS() gpio.PinIO {
	return d.cs
}

// Busy returns the busy line.
func (d *Device) Busy() gpio.PinIO {
	return d.busy
}

// Close closes the SPI port.
func (d *Device) Close() error {
	return d.port.Close()
}

// Transfer16 writes cmd MSB first and returns the 16-bit word clocked in at
// the same time.
func Transfer16(c Tx, cmd uint16) (uint16, error) {
	w := []byte{byte(cmd >> 8), byte(cmd)}
	r := make([]byte, 2)
	if err := c.Tx(w, r); err != nil {
		return 0, fmt.Errorf("bus: could not transfer %#04x: %w", cmd, err)
	}

	return uint16(r[0])<<8 | uint16(r[1]), nil
}
