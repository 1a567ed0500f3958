package xr2280x

import (
	"math"
)

// PWMChannel identifies one of the two PWM generators.
type PWMChannel int

const (
	PWM0 PWMChannel = 0
	PWM1 PWMChannel = 1
)

// PWMCommand selects what a PWM channel does when enabled. Values map
// directly to the 3-bit command field of the control register.
type PWMCommand uint16

const (
	PWMIdle      PWMCommand = 0b000
	PWMAssertLow PWMCommand = 0b100
	PWMOneShot   PWMCommand = 0b101
	PWMFreeRun   PWMCommand = 0b110
)

// PWM is the EDGE controller's waveform block of an open device.
type PWM struct {
	dev *Device
}

func (c PWMChannel) regs() (ctrl, high, low uint16, err error) {
	switch c {
	case PWM0:
		return regPwm0Ctrl, regPwm0High, regPwm0Low, nil
	case PWM1:
		return regPwm1Ctrl, regPwm1High, regPwm1Low, nil
	}
	return 0, 0, 0, maskAny(ErrArgument)
}

// pwmParamErr tags a caller mistake with the channel it was made on.
func pwmParamErr(ch PWMChannel, err error) error {
	return &PWMError{Channel: ch, Err: err}
}

// readPwmReg and writePwmReg wrap register access so device side
// failures surface as PWM hardware errors.
func (p *PWM) readPwmReg(ch PWMChannel, reg uint16) (uint16, error) {
	v, err := p.dev.readReg(reg)
	if err != nil {
		return 0, &PWMError{Channel: ch, Hardware: true, Err: err}
	}
	return v, nil
}

func (p *PWM) writePwmReg(ch PWMChannel, reg uint16, value uint16) error {
	if err := p.dev.writeReg(reg, value); err != nil {
		return &PWMError{Channel: ch, Hardware: true, Err: err}
	}
	return nil
}

// NsToUnits converts a duration in nanoseconds to PWM period units,
// rounding to the nearest unit. Durations that round outside 1-4095
// units fail with ErrArgument.
func NsToUnits(ns uint64) (uint16, error) {
	if ns == 0 {
		return 0, maskAny(ErrArgument)
	}
	units := uint64(math.Round(float64(ns) / PwmUnitTimeNs))
	if units < pwmMinUnits || units > pwmMaxUnits {
		return 0, maskAny(ErrArgument)
	}
	return uint16(units), nil
}

// UnitsToNs converts PWM period units back to nanoseconds.
func UnitsToNs(units uint16) uint64 {
	return uint64(math.Round(float64(units) * PwmUnitTimeNs))
}

// SetPeriods programs the high and low phase lengths of a channel in
// device units. Both must be 1-4095.
func (p *PWM) SetPeriods(ch PWMChannel, highUnits, lowUnits uint16) error {
	_, regHigh, regLow, err := ch.regs()
	if err != nil {
		return pwmParamErr(ch, err)
	}
	if highUnits < pwmMinUnits || highUnits > pwmMaxUnits ||
		lowUnits < pwmMinUnits || lowUnits > pwmMaxUnits {
		return pwmParamErr(ch, maskAny(ErrArgument))
	}
	if err := p.writePwmReg(ch, regHigh, highUnits); err != nil {
		return maskAny(err)
	}
	return p.writePwmReg(ch, regLow, lowUnits)
}

// SetPeriodsNs programs the high and low phase lengths in nanoseconds.
func (p *PWM) SetPeriodsNs(ch PWMChannel, highNs, lowNs uint64) error {
	highUnits, err := NsToUnits(highNs)
	if err != nil {
		return pwmParamErr(ch, err)
	}
	lowUnits, err := NsToUnits(lowNs)
	if err != nil {
		return pwmParamErr(ch, err)
	}
	return p.SetPeriods(ch, highUnits, lowUnits)
}

// Periods returns the high and low phase lengths in device units.
func (p *PWM) Periods(ch PWMChannel) (highUnits, lowUnits uint16, err error) {
	_, regHigh, regLow, err := ch.regs()
	if err != nil {
		return 0, 0, pwmParamErr(ch, err)
	}
	if highUnits, err = p.readPwmReg(ch, regHigh); err != nil {
		return 0, 0, maskAny(err)
	}
	if lowUnits, err = p.readPwmReg(ch, regLow); err != nil {
		return 0, 0, maskAny(err)
	}
	return highUnits, lowUnits, nil
}

// PeriodsNs returns the high and low phase lengths in nanoseconds.
func (p *PWM) PeriodsNs(ch PWMChannel) (highNs, lowNs uint64, err error) {
	highUnits, lowUnits, err := p.Periods(ch)
	if err != nil {
		return 0, 0, maskAny(err)
	}
	return UnitsToNs(highUnits), UnitsToNs(lowUnits), nil
}

// SetPin routes a channel's output to a GPIO pin. The pin must already
// be configured as an output; assigning a PWM source to an input pin
// produces nothing visible and is rejected.
func (p *PWM) SetPin(ch PWMChannel, pin Pin) error {
	regCtrl, _, _, err := ch.regs()
	if err != nil {
		return pwmParamErr(ch, err)
	}
	if err := p.dev.GPIO.checkPin(pin); err != nil {
		return pwmParamErr(ch, err)
	}
	dir, err := p.dev.GPIO.Direction(pin)
	if err != nil {
		return &PWMError{Channel: ch, Hardware: true, Err: err}
	}
	if dir != Output {
		return pwmParamErr(ch, maskAny(ErrPinNotOutput))
	}
	cur, err := p.readPwmReg(ch, regCtrl)
	if err != nil {
		return maskAny(err)
	}
	next := (cur &^ pwmCtrlPinMask) | uint16(pin.Number())
	return p.writePwmReg(ch, regCtrl, next)
}

// AssignedPin returns the GPIO pin a channel currently drives.
func (p *PWM) AssignedPin(ch PWMChannel) (Pin, error) {
	regCtrl, _, _, err := ch.regs()
	if err != nil {
		return Pin{}, pwmParamErr(ch, err)
	}
	v, err := p.readPwmReg(ch, regCtrl)
	if err != nil {
		return Pin{}, maskAny(err)
	}
	return p.dev.GPIO.Pin(uint8(v & pwmCtrlPinMask))
}

// Control enables or disables a channel and selects its command mode.
func (p *PWM) Control(ch PWMChannel, enable bool, cmd PWMCommand) error {
	regCtrl, _, _, err := ch.regs()
	if err != nil {
		return pwmParamErr(ch, err)
	}
	if uint16(cmd)&^(pwmCtrlCmdMask>>pwmCtrlCmdShift) != 0 {
		return pwmParamErr(ch, maskAny(ErrArgument))
	}
	cur, err := p.readPwmReg(ch, regCtrl)
	if err != nil {
		return maskAny(err)
	}
	var enableBits uint16
	if enable {
		enableBits = pwmCtrlEnableMask
	}
	next := (cur &^ (pwmCtrlEnableMask | pwmCtrlCmdMask)) |
		enableBits | uint16(cmd)<<pwmCtrlCmdShift
	return p.writePwmReg(ch, regCtrl, next)
}

// ControlState returns a channel's enable flag and command mode. An
// unrecognized command value is returned raw.
func (p *PWM) ControlState(ch PWMChannel) (enabled bool, cmd PWMCommand, err error) {
	regCtrl, _, _, err := ch.regs()
	if err != nil {
		return false, 0, pwmParamErr(ch, err)
	}
	v, err := p.readPwmReg(ch, regCtrl)
	if err != nil {
		return false, 0, maskAny(err)
	}
	enabled = v&pwmCtrlEnableMask != 0
	cmd = PWMCommand((v & pwmCtrlCmdMask) >> pwmCtrlCmdShift)
	return enabled, cmd, nil
}
