// Package xrperiph exposes an XR2280x device through the periph.io
// conn interfaces, so code written against i2c.Bus or gpio.PinIO can
// run on top of the USB bridge unchanged.
package xrperiph

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"github.com/tiborgats/xr2280x-hid"
)

// Bus adapts the device's I2C controller to periph's i2c.Bus.
type Bus struct {
	dev *xr2280x.Device
}

var _ i2c.Bus = (*Bus)(nil)

// NewBus wraps an open device. The device stays owned by the caller;
// closing the bus does not close it.
func NewBus(dev *xr2280x.Device) *Bus {
	return &Bus{dev: dev}
}

func (b *Bus) String() string {
	return fmt.Sprintf("xr2280x-i2c(%s)", b.dev.Info().Serial)
}

// Tx issues a write, read or write-then-read transaction.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	var a xr2280x.I2CAddr
	var err error
	if addr > 0x7F {
		a, err = xr2280x.Addr10(addr)
	} else {
		a, err = xr2280x.Addr7(byte(addr))
	}
	if err != nil {
		return err
	}
	switch {
	case len(w) > 0 && len(r) > 0:
		return b.dev.I2C.WriteRead(a, w, r)
	case len(r) > 0:
		return b.dev.I2C.Read(a, r)
	default:
		return b.dev.I2C.Write(a, w)
	}
}

// SetSpeed reprograms the bus clock.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	khz := int64(f / physic.KiloHertz)
	if khz < 1 {
		khz = 1
	}
	return b.dev.I2C.SetSpeed(uint32(khz))
}

// Halt is a no-op; the controller has no abort command.
func (b *Bus) Halt() error {
	return nil
}

// PinConfig selects optional features of an adapted pin.
type PinConfig struct {
	// PWMChannel binds the pin to one of the two PWM generators so
	// gpio.PinIO.PWM works. Leave nil for plain digital use.
	PWMChannel *xr2280x.PWMChannel
}

// Pin adapts one GPIO pin to periph's gpio.PinIO.
type Pin struct {
	dev *xr2280x.Device
	pin xr2280x.Pin
	cfg PinConfig

	isOut bool
}

var _ gpio.PinIO = (*Pin)(nil)

// NewPin wraps pin number n of an open device.
func NewPin(dev *xr2280x.Device, n uint8, cfg PinConfig) (*Pin, error) {
	p, err := dev.GPIO.Pin(n)
	if err != nil {
		return nil, err
	}
	return &Pin{dev: dev, pin: p, cfg: cfg}, nil
}

func (p *Pin) String() string { return p.Name() }

func (p *Pin) Name() string {
	return fmt.Sprintf("XR2280X_GPIO%d", p.pin.Number())
}

func (p *Pin) Number() int { return int(p.pin.Number()) }

func (p *Pin) Function() string {
	dir, err := p.dev.GPIO.Direction(p.pin)
	if err != nil {
		return "ERR"
	}
	if dir == xr2280x.Output {
		return "Out"
	}
	return "In"
}

// Halt floats the pin.
func (p *Pin) Halt() error {
	p.isOut = false
	return p.dev.GPIO.SetTriState(p.pin, true)
}

// In configures the pin as an input with the given pull, optionally
// arming edge detection for WaitForEdge.
func (p *Pin) In(pull gpio.Pull, edge gpio.Edge) error {
	var xp xr2280x.Pull
	switch pull {
	case gpio.PullUp:
		xp = xr2280x.PullUp
	case gpio.PullDown:
		xp = xr2280x.PullDown
	case gpio.Float, gpio.PullNoChange:
		xp = xr2280x.PullNone
	default:
		return fmt.Errorf("unsupported pull %s", pull)
	}
	if pull == gpio.PullNoChange {
		if err := p.dev.GPIO.SetDirection(p.pin, xr2280x.Input); err != nil {
			return err
		}
	} else {
		if err := p.dev.GPIO.SetupInput(p.pin, xp); err != nil {
			return err
		}
	}
	p.isOut = false
	pos := edge == gpio.RisingEdge || edge == gpio.BothEdges
	neg := edge == gpio.FallingEdge || edge == gpio.BothEdges
	return p.dev.Interrupt.Configure(p.pin, edge != gpio.NoEdge, pos, neg)
}

func (p *Pin) Read() gpio.Level {
	l, err := p.dev.GPIO.Read(p.pin)
	if err != nil {
		return gpio.Low
	}
	return gpio.Level(l == xr2280x.High)
}

// WaitForEdge blocks until an interrupt report arrives that names this
// pin, or the timeout expires. The report decode is best-effort; a
// report that cannot be attributed to a pin wakes this call anyway.
func (p *Pin) WaitForEdge(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		remaining := timeout
		if timeout > 0 {
			remaining = time.Until(deadline)
			if remaining <= 0 {
				return false
			}
		}
		report, err := p.dev.Interrupt.Read(remaining)
		if err != nil {
			return false
		}
		parsed, err := xr2280x.ParseInterruptReportUnverified(report)
		if err != nil {
			// Unknown layout, assume it was for us.
			return true
		}
		trigger := parsed.TriggerGroup0
		if p.pin.Group() == xr2280x.Group1 {
			trigger = parsed.TriggerGroup1
		}
		if trigger == 0 || trigger&(1<<(p.pin.Number()%16)) != 0 {
			return true
		}
	}
}

func (p *Pin) Pull() gpio.Pull {
	pull, err := p.dev.GPIO.PullState(p.pin)
	if err != nil {
		return gpio.PullNoChange
	}
	switch pull {
	case xr2280x.PullUp:
		return gpio.PullUp
	case xr2280x.PullDown:
		return gpio.PullDown
	}
	return gpio.Float
}

func (p *Pin) DefaultPull() gpio.Pull {
	return gpio.Float
}

// Out drives the pin. The first call configures it as an output.
func (p *Pin) Out(l gpio.Level) error {
	level := xr2280x.Low
	if l == gpio.High {
		level = xr2280x.High
	}
	if !p.isOut {
		if err := p.dev.GPIO.SetupOutput(p.pin, level, xr2280x.PullNone); err != nil {
			return err
		}
		p.isOut = true
		return nil
	}
	return p.dev.GPIO.Write(p.pin, level)
}

// PWM starts a waveform on the pin's bound PWM channel.
func (p *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	if p.cfg.PWMChannel == nil {
		return fmt.Errorf("%s: no PWM channel bound", p.Name())
	}
	ch := *p.cfg.PWMChannel
	hz := float64(f) / float64(physic.Hertz)
	if hz <= 0 {
		return fmt.Errorf("%s: invalid frequency %s", p.Name(), f)
	}
	periodNs := 1e9 / hz
	highNs := uint64(periodNs * float64(duty) / float64(gpio.DutyMax))
	lowNs := uint64(periodNs) - highNs

	if !p.isOut {
		if err := p.Out(gpio.Low); err != nil {
			return err
		}
	}
	if err := p.dev.PWM.SetPeriodsNs(ch, highNs, lowNs); err != nil {
		return err
	}
	if err := p.dev.PWM.SetPin(ch, p.pin); err != nil {
		return err
	}
	return p.dev.PWM.Control(ch, true, xr2280x.PWMFreeRun)
}
