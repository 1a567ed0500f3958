package xr2280x

import (
	"github.com/pkg/errors"
)

// Direction of a GPIO pin.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// Level of a GPIO pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l == High {
		return "high"
	}
	return "low"
}

// Pull selects the internal pull resistor of a pin. Up and down are
// mutually exclusive on this chip; selecting one clears the other.
type Pull int

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

func (p Pull) String() string {
	switch p {
	case PullUp:
		return "up"
	case PullDown:
		return "down"
	}
	return "none"
}

// Group identifies one 16-bit register bank. Group 0 covers pins 0-15,
// Group 1 covers pins 16-31 and exists on 32-pin parts only.
type Group int

const (
	Group0 Group = 0
	Group1 Group = 1
)

// reg returns the address of one of the group's registers given the
// Group 0 address. Group 1 mirrors the bank at a fixed stride.
func (g Group) reg(base uint16) uint16 {
	return base + uint16(g)*groupRegStride
}

// Pin is a validated GPIO pin number. Build one with (*GPIO).Pin so the
// number is checked against the opened device's capability.
type Pin struct {
	n uint8
}

// Number returns the pin number (0-31).
func (p Pin) Number() uint8 { return p.n }

// Group returns the register bank the pin lives in.
func (p Pin) Group() Group { return Group(p.n / 16) }

func (p Pin) mask() uint16 { return 1 << (p.n % 16) }

// GPIO is the EDGE controller's pin block of an open device.
type GPIO struct {
	dev *Device
}

// Pin validates a pin number against the device capability. Pins 8-31
// do not exist on XR22800/XR22801 and are rejected here, before any
// wire access.
func (g *GPIO) Pin(n uint8) (Pin, error) {
	if int(n) >= g.dev.caps.GpioCount {
		return Pin{}, maskAny(ErrUnsupported)
	}
	return Pin{n: n}, nil
}

func (g *GPIO) checkPin(p Pin) error {
	if int(p.n) >= g.dev.caps.GpioCount {
		return maskAny(ErrUnsupported)
	}
	return nil
}

func (g *GPIO) checkGroup(grp Group) error {
	if grp != Group0 && grp != Group1 {
		return maskAny(ErrArgument)
	}
	if int(grp)*16 >= g.dev.caps.GpioCount {
		return maskAny(ErrUnsupported)
	}
	return nil
}

// gpioKindFor escalates malformed responses to the hardware kind,
// keeping the access direction for ordinary transport failures.
func gpioKindFor(err error, def GpioErrorKind) GpioErrorKind {
	if IsInvalidReport(err) || errors.Is(err, ErrUnsupportedReportID) {
		return GpioHardware
	}
	return def
}

// readGroupReg and writeGroupReg wrap register access with the failed
// operation kind and register context so callers can tell reads,
// writes and chip faults apart.
func (g *GPIO) readGroupReg(grp Group, base uint16) (uint16, error) {
	v, err := g.dev.readReg(grp.reg(base))
	if err != nil {
		return 0, &GpioError{Kind: gpioKindFor(err, GpioRead), Group: grp, Reg: grp.reg(base), Err: err}
	}
	return v, nil
}

func (g *GPIO) writeGroupReg(grp Group, base uint16, value uint16) error {
	if err := g.dev.writeReg(grp.reg(base), value); err != nil {
		return &GpioError{Kind: gpioKindFor(err, GpioWrite), Group: grp, Reg: grp.reg(base), Err: err}
	}
	return nil
}

// updateGroupReg read-modify-writes one register: bits in mask take the
// corresponding bits of values, the rest keep their state. A failure of
// either half surfaces as a configuration error.
func (g *GPIO) updateGroupReg(grp Group, base uint16, mask, values uint16) error {
	cur, err := g.readGroupReg(grp, base)
	if err != nil {
		return &GpioError{Kind: GpioConfiguration, Group: grp, Reg: grp.reg(base), Err: err}
	}
	next := (cur &^ mask) | (values & mask)
	if err := g.writeGroupReg(grp, base, next); err != nil {
		return &GpioError{Kind: GpioConfiguration, Group: grp, Reg: grp.reg(base), Err: err}
	}
	return nil
}

// AssignToEdge hands the pin to the EDGE controller, detaching it from
// its alternate function (UART modem signals etc.).
func (g *GPIO) AssignToEdge(p Pin) error {
	if err := g.checkPin(p); err != nil {
		return maskAny(err)
	}
	return g.updateGroupReg(p.Group(), regFuncSel0, p.mask(), p.mask())
}

// IsAssignedToEdge reports whether the pin currently belongs to the
// EDGE controller.
func (g *GPIO) IsAssignedToEdge(p Pin) (bool, error) {
	if err := g.checkPin(p); err != nil {
		return false, maskAny(err)
	}
	v, err := g.readGroupReg(p.Group(), regFuncSel0)
	if err != nil {
		return false, maskAny(err)
	}
	return v&p.mask() != 0, nil
}

// SetDirection configures the pin as input or output.
func (g *GPIO) SetDirection(p Pin, dir Direction) error {
	if err := g.checkPin(p); err != nil {
		return maskAny(err)
	}
	var bits uint16
	if dir == Output {
		bits = p.mask()
	}
	return g.updateGroupReg(p.Group(), regDir0, p.mask(), bits)
}

// Direction returns the pin's configured direction.
func (g *GPIO) Direction(p Pin) (Direction, error) {
	if err := g.checkPin(p); err != nil {
		return Input, maskAny(err)
	}
	v, err := g.readGroupReg(p.Group(), regDir0)
	if err != nil {
		return Input, maskAny(err)
	}
	if v&p.mask() != 0 {
		return Output, nil
	}
	return Input, nil
}

// Write drives an output pin high or low. The chip exposes write-only
// SET and CLEAR registers, so this is a single write with no read.
func (g *GPIO) Write(p Pin, level Level) error {
	if err := g.checkPin(p); err != nil {
		return maskAny(err)
	}
	base := regClear0
	if level == High {
		base = regSet0
	}
	return g.writeGroupReg(p.Group(), base, p.mask())
}

// Read samples the pin's current input state.
func (g *GPIO) Read(p Pin) (Level, error) {
	if err := g.checkPin(p); err != nil {
		return Low, maskAny(err)
	}
	v, err := g.readGroupReg(p.Group(), regState0)
	if err != nil {
		return Low, maskAny(err)
	}
	return Level(v&p.mask() != 0), nil
}

// SetPull configures the pin's pull resistor. The enable bit of the
// opposite direction is cleared in the same call.
func (g *GPIO) SetPull(p Pin, pull Pull) error {
	if err := g.checkPin(p); err != nil {
		return maskAny(err)
	}
	return g.setPullMasked(p.Group(), p.mask(), pull)
}

// PullState returns the pin's configured pull resistor.
func (g *GPIO) PullState(p Pin) (Pull, error) {
	if err := g.checkPin(p); err != nil {
		return PullNone, maskAny(err)
	}
	up, err := g.readGroupReg(p.Group(), regPullUp0)
	if err != nil {
		return PullNone, maskAny(err)
	}
	if up&p.mask() != 0 {
		return PullUp, nil
	}
	down, err := g.readGroupReg(p.Group(), regPullDown0)
	if err != nil {
		return PullNone, maskAny(err)
	}
	if down&p.mask() != 0 {
		return PullDown, nil
	}
	return PullNone, nil
}

// SetOpenDrain switches the pin's output stage between open-drain and
// push-pull.
func (g *GPIO) SetOpenDrain(p Pin, enable bool) error {
	if err := g.checkPin(p); err != nil {
		return maskAny(err)
	}
	var bits uint16
	if enable {
		bits = p.mask()
	}
	return g.updateGroupReg(p.Group(), regOpenDrain0, p.mask(), bits)
}

// IsOpenDrain reports whether the pin's output stage is open-drain.
func (g *GPIO) IsOpenDrain(p Pin) (bool, error) {
	if err := g.checkPin(p); err != nil {
		return false, maskAny(err)
	}
	v, err := g.readGroupReg(p.Group(), regOpenDrain0)
	if err != nil {
		return false, maskAny(err)
	}
	return v&p.mask() != 0, nil
}

// SetTriState floats or un-floats the pin.
func (g *GPIO) SetTriState(p Pin, enable bool) error {
	if err := g.checkPin(p); err != nil {
		return maskAny(err)
	}
	var bits uint16
	if enable {
		bits = p.mask()
	}
	return g.updateGroupReg(p.Group(), regTriState0, p.mask(), bits)
}

// IsTriState reports whether the pin is floating.
func (g *GPIO) IsTriState(p Pin) (bool, error) {
	if err := g.checkPin(p); err != nil {
		return false, maskAny(err)
	}
	v, err := g.readGroupReg(p.Group(), regTriState0)
	if err != nil {
		return false, maskAny(err)
	}
	return v&p.mask() != 0, nil
}

// ReadGroup samples all 16 pins of a register bank at once.
func (g *GPIO) ReadGroup(grp Group) (uint16, error) {
	if err := g.checkGroup(grp); err != nil {
		return 0, maskAny(err)
	}
	return g.readGroupReg(grp, regState0)
}

// WriteMasked drives the masked pins of one group to the corresponding
// bits of values, using the write-only SET and CLEAR registers. At most
// two register writes, no reads.
func (g *GPIO) WriteMasked(grp Group, mask, values uint16) error {
	if err := g.checkGroup(grp); err != nil {
		return maskAny(err)
	}
	if set := mask & values; set != 0 {
		if err := g.writeGroupReg(grp, regSet0, set); err != nil {
			return maskAny(err)
		}
	}
	if clear := mask &^ values; clear != 0 {
		if err := g.writeGroupReg(grp, regClear0, clear); err != nil {
			return maskAny(err)
		}
	}
	return nil
}

// SetDirectionMasked configures all masked pins of one group to the
// same direction in one read-modify-write.
func (g *GPIO) SetDirectionMasked(grp Group, mask uint16, dir Direction) error {
	if err := g.checkGroup(grp); err != nil {
		return maskAny(err)
	}
	var bits uint16
	if dir == Output {
		bits = mask
	}
	return g.updateGroupReg(grp, regDir0, mask, bits)
}

// SetPullMasked configures the pull resistors of all masked pins of one
// group.
func (g *GPIO) SetPullMasked(grp Group, mask uint16, pull Pull) error {
	if err := g.checkGroup(grp); err != nil {
		return maskAny(err)
	}
	return g.setPullMasked(grp, mask, pull)
}

func (g *GPIO) setPullMasked(grp Group, mask uint16, pull Pull) error {
	var up, down uint16
	switch pull {
	case PullUp:
		up = mask
	case PullDown:
		down = mask
	case PullNone:
	default:
		return maskAny(ErrArgument)
	}
	if err := g.updateGroupReg(grp, regPullUp0, mask, up); err != nil {
		return maskAny(err)
	}
	return g.updateGroupReg(grp, regPullDown0, mask, down)
}

// SetOpenDrainMasked switches the output stage of all masked pins of
// one group.
func (g *GPIO) SetOpenDrainMasked(grp Group, mask uint16, enable bool) error {
	if err := g.checkGroup(grp); err != nil {
		return maskAny(err)
	}
	var bits uint16
	if enable {
		bits = mask
	}
	return g.updateGroupReg(grp, regOpenDrain0, mask, bits)
}

// SetTriStateMasked floats or un-floats all masked pins of one group.
func (g *GPIO) SetTriStateMasked(grp Group, mask uint16, enable bool) error {
	if err := g.checkGroup(grp); err != nil {
		return maskAny(err)
	}
	var bits uint16
	if enable {
		bits = mask
	}
	return g.updateGroupReg(grp, regTriState0, mask, bits)
}
