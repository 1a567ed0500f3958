package xr2280x

import (
	"fmt"

	"github.com/pkg/errors"
)

// maskAny annotates an error with a stack trace at the point it first
// crosses a package boundary.
var maskAny = errors.WithStack

var (
	// ErrDeviceNotFound indicates that no matching device interface was
	// found during enumeration or open.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrMultipleDevices indicates that a selector matched more than
	// one device and the choice is ambiguous.
	ErrMultipleDevices = errors.New("multiple devices found")
	// ErrTransportTimeout indicates that an interrupt read on the HID
	// transport expired before any report arrived.
	ErrTransportTimeout = errors.New("transport timeout")
	// ErrUnsupportedReportID indicates that an incoming report carried
	// an ID this package does not know how to parse.
	ErrUnsupportedReportID = errors.New("unsupported report ID")
	// ErrInvalidReport indicates that an incoming report was too short
	// or otherwise malformed.
	ErrInvalidReport = errors.New("invalid report")

	// ErrI2cNack indicates that the addressed slave did not acknowledge.
	ErrI2cNack = errors.New("i2c nack")
	// ErrI2cTimeout indicates that the I2C transaction did not complete
	// in time, typically because SCL or SDA is held low.
	ErrI2cTimeout = errors.New("i2c timeout")
	// ErrI2cArbitrationLost indicates that another master won bus
	// arbitration during the transaction.
	ErrI2cArbitrationLost = errors.New("i2c arbitration lost")
	// ErrI2cRequestError indicates that the controller rejected the
	// transaction request itself.
	ErrI2cRequestError = errors.New("i2c request error")
	// ErrStuckBus indicates that a bus scan was aborted because the bus
	// appears to be held low.
	ErrStuckBus = errors.New("i2c bus stuck")

	// ErrArgument indicates an invalid parameter such as an
	// out-of-range pin number, address or PWM period.
	ErrArgument = errors.New("invalid argument")
	// ErrUnsupported indicates an operation on hardware that lacks the
	// required capability, such as pins 8-31 on an 8-pin part.
	ErrUnsupported = errors.New("unsupported by this device")
	// ErrPinNotOutput indicates that a PWM channel was assigned to a
	// pin that is not configured as an output.
	ErrPinNotOutput = errors.New("pin is not configured as output")
)

// I2CUnknownError carries an unrecognized status byte from the I2C
// controller so it can be reported for diagnostics.
type I2CUnknownError struct {
	Status byte
}

func (e *I2CUnknownError) Error() string {
	return fmt.Sprintf("i2c unknown status 0x%02X", e.Status)
}

// GpioErrorKind classifies what the driver was doing when a GPIO
// register access failed.
type GpioErrorKind int

const (
	// GpioRead is a failed register read.
	GpioRead GpioErrorKind = iota
	// GpioWrite is a failed register write.
	GpioWrite
	// GpioConfiguration is a failed read-modify-write sequence while
	// reconfiguring pins (direction, pull, function assignment).
	GpioConfiguration
	// GpioHardware is a malformed or unexpected response from the
	// chip itself.
	GpioHardware
)

func (k GpioErrorKind) String() string {
	switch k {
	case GpioRead:
		return "read"
	case GpioWrite:
		return "write"
	case GpioConfiguration:
		return "configuration"
	case GpioHardware:
		return "hardware"
	}
	return "unknown"
}

// GpioError attaches the failed operation kind and register context to
// an underlying GPIO failure.
type GpioError struct {
	Kind  GpioErrorKind
	Group Group
	Reg   uint16
	Err   error
}

func (e *GpioError) Error() string {
	return fmt.Sprintf("gpio %s group %d register 0x%04X: %v", e.Kind, e.Group, e.Reg, e.Err)
}

func (e *GpioError) Cause() error  { return e.Err }
func (e *GpioError) Unwrap() error { return e.Err }

// PWMError tags a PWM failure as either a caller mistake or a device
// side fault, with the channel attached.
type PWMError struct {
	Channel  PWMChannel
	Hardware bool
	Err      error
}

func (e *PWMError) Error() string {
	kind := "parameter"
	if e.Hardware {
		kind = "hardware"
	}
	return fmt.Sprintf("pwm channel %d %s error: %v", e.Channel, kind, e.Err)
}

func (e *PWMError) Cause() error  { return e.Err }
func (e *PWMError) Unwrap() error { return e.Err }

// gpioErrorKind returns the kind of the outermost GpioError in the
// chain, if any.
func gpioErrorKind(err error) (GpioErrorKind, bool) {
	var ge *GpioError
	if errors.As(err, &ge) {
		return ge.Kind, true
	}
	return 0, false
}

// IsGpioRead returns true when the given error carries a failed GPIO
// register read.
func IsGpioRead(err error) bool {
	k, ok := gpioErrorKind(err)
	return ok && k == GpioRead
}

// IsGpioWrite returns true when the given error carries a failed GPIO
// register write.
func IsGpioWrite(err error) bool {
	k, ok := gpioErrorKind(err)
	return ok && k == GpioWrite
}

// IsGpioConfiguration returns true when the given error carries a
// failed GPIO reconfiguration sequence.
func IsGpioConfiguration(err error) bool {
	k, ok := gpioErrorKind(err)
	return ok && k == GpioConfiguration
}

// IsGpioHardware returns true when the given error carries a malformed
// GPIO response from the chip.
func IsGpioHardware(err error) bool {
	k, ok := gpioErrorKind(err)
	return ok && k == GpioHardware
}

// IsPwmParameter returns true when the given error is a PWM failure
// caused by an invalid parameter.
func IsPwmParameter(err error) bool {
	var pe *PWMError
	return errors.As(err, &pe) && !pe.Hardware
}

// IsPwmHardware returns true when the given error is a PWM failure on
// the device side.
func IsPwmHardware(err error) bool {
	var pe *PWMError
	return errors.As(err, &pe) && pe.Hardware
}

type isErrorFunc func(error) bool

// IsDeviceNotFound returns true when the given error is (or is caused
// by) ErrDeviceNotFound.
func IsDeviceNotFound(err error) bool {
	return errors.Cause(err) == ErrDeviceNotFound
}

// IsMultipleDevices returns true when the given error is (or is caused
// by) ErrMultipleDevices.
func IsMultipleDevices(err error) bool {
	return errors.Cause(err) == ErrMultipleDevices
}

// IsTransportTimeout returns true when the given error is (or is caused
// by) ErrTransportTimeout.
func IsTransportTimeout(err error) bool {
	return errors.Cause(err) == ErrTransportTimeout
}

// IsInvalidReport returns true when the given error is (or is caused
// by) ErrInvalidReport or ErrUnsupportedReportID.
func IsInvalidReport(err error) bool {
	c := errors.Cause(err)
	return c == ErrInvalidReport || c == ErrUnsupportedReportID
}

// IsI2cNack returns true when the given error is (or is caused by)
// ErrI2cNack.
func IsI2cNack(err error) bool {
	return errors.Cause(err) == ErrI2cNack
}

// IsI2cTimeout returns true when the given error is (or is caused by)
// ErrI2cTimeout.
func IsI2cTimeout(err error) bool {
	return errors.Cause(err) == ErrI2cTimeout
}

// IsI2cRequestError returns true when the given error is (or is caused
// by) ErrI2cRequestError.
func IsI2cRequestError(err error) bool {
	return errors.Cause(err) == ErrI2cRequestError
}

// IsI2cArbitrationLost returns true when the given error is (or is
// caused by) ErrI2cArbitrationLost.
func IsI2cArbitrationLost(err error) bool {
	return errors.Cause(err) == ErrI2cArbitrationLost
}

// IsStuckBus returns true when the given error is (or is caused by)
// ErrStuckBus.
func IsStuckBus(err error) bool {
	return errors.Cause(err) == ErrStuckBus
}

// IsI2cUnknown returns true when the given error is (or is caused by)
// an I2CUnknownError.
func IsI2cUnknown(err error) bool {
	_, ok := errors.Cause(err).(*I2CUnknownError)
	return ok
}

// IsArgument returns true when the given error is (or is caused by)
// ErrArgument.
func IsArgument(err error) bool {
	return errors.Cause(err) == ErrArgument
}

// IsUnsupported returns true when the given error is (or is caused by)
// ErrUnsupported.
func IsUnsupported(err error) bool {
	return errors.Cause(err) == ErrUnsupported
}
