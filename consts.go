// Package xr2280x provides a high-level interface to the Exar/MaxLinear
// XR2280x family of USB to I2C/GPIO/PWM bridge chips (XR22800, XR22801,
// XR22802, XR22804). The chips expose their functions as separate USB
// HID-class interfaces: one for the I2C master controller and one for the
// EDGE controller (GPIO, PWM and interrupt reporting). This package
// discovers both interfaces, groups them into one handle per physical
// device and implements the chip's fixed-size HID report protocol.
//
// Datasheet: https://www.maxlinear.com/product/interface/uarts/usb-uarts/xr22804
package xr2280x

// VID is the 16-bit USB vendor ID assigned to Exar Corporation.
const VID = 0x04E2

// PIDI2C and PIDEdge are the product IDs of the two HID logical
// interfaces. They are shared across all XR2280x models.
const (
	PIDI2C  = 0x1100
	PIDEdge = 0x1200
)

// Feature report IDs used for register access on both interfaces.
const (
	reportIDWriteRegister  byte = 0x3C
	reportIDSetReadAddress byte = 0x4B
	reportIDReadRegister   byte = 0x5A
)

// I2CMaxDataSize is the largest payload a single I2C HID report can
// carry. Longer transfers must be chunked by the caller.
const I2CMaxDataSize = 32

// Sizes of the I2C OUT and IN reports exchanged on the I2C interface.
const (
	i2cOutReportSize = 36 // flags, wlen, rlen, addr, 32 data bytes
	i2cInReportSize  = 36 // flags, wlen, rlen, reserved, 32 data bytes
)

// I2C OUT report flag bits (byte 0 of the OUT report).
const (
	// I2CFlagStart generates an I2C START condition at the beginning of
	// the transaction.
	I2CFlagStart byte = 1 << 0
	// I2CFlagStop generates an I2C STOP condition at the end of the
	// transaction.
	I2CFlagStop byte = 1 << 1
	// I2CFlagAckLastRead sends ACK after the last read byte instead of
	// the default NACK.
	I2CFlagAckLastRead byte = 1 << 2
)

// I2C IN report status flag bits (byte 0 of the IN report).
const (
	i2cInFlagRequestError    byte = 1 << 0
	i2cInFlagNack            byte = 1 << 1
	i2cInFlagArbitrationLost byte = 1 << 2
	i2cInFlagTimeout         byte = 1 << 3

	i2cInFlagsMask byte = 0x0F // bits 7:4 carry a sequence number
)

// I2C controller registers, reachable through the I2C HID interface.
const (
	regI2CSCLLow  uint16 = 0x0341
	regI2CSCLHigh uint16 = 0x0342
)

// i2cRegLow/High bound the register window served by the I2C interface;
// everything else belongs to the EDGE interface.
const (
	i2cRegLow  uint16 = 0x0340
	i2cRegHigh uint16 = 0x0342
)

// EDGE controller registers for GPIO Group 0 (pins 0-15). The XR22800/1
// only implement bits 0-7 of these registers.
const (
	regFuncSel0     uint16 = 0x03C0
	regDir0         uint16 = 0x03C1
	regSet0         uint16 = 0x03C2
	regClear0       uint16 = 0x03C3
	regState0       uint16 = 0x03C4
	regTriState0    uint16 = 0x03C5
	regOpenDrain0   uint16 = 0x03C6
	regPullUp0      uint16 = 0x03C7
	regPullDown0    uint16 = 0x03C8
	regIntrMask0    uint16 = 0x03C9
	regIntrPosEdge0 uint16 = 0x03CA
	regIntrNegEdge0 uint16 = 0x03CB
)

// Group 1 (pins 16-31, XR22802/4 only) mirrors Group 0 at a fixed offset.
const (
	regFuncSel1    uint16 = 0x03CC
	groupRegStride uint16 = regFuncSel1 - regFuncSel0
)

// PWM registers.
const (
	regPwm0Ctrl uint16 = 0x03D8
	regPwm0High uint16 = 0x03D9
	regPwm0Low  uint16 = 0x03DA
	regPwm1Ctrl uint16 = 0x03DB
	regPwm1High uint16 = 0x03DC
	regPwm1Low  uint16 = 0x03DD
)

// Fields of the PWM control registers.
const (
	pwmCtrlPinMask    uint16 = 0x001F // bits 4:0, assigned GPIO pin
	pwmCtrlEnableMask uint16 = 0x0020 // bit 5
	pwmCtrlCmdMask    uint16 = 0x01C0 // bits 8:6
	pwmCtrlCmdShift          = 6
)

// PWM period timing. The PWM clock runs at 60 MHz / 16 = 3.75 MHz, so one
// period unit is 266.667 ns. Period registers accept 1-4095 units.
const (
	PwmUnitTimeNs = 1_000_000_000.0 / (60_000_000.0 / 16.0)
	pwmMinUnits   = 1
	pwmMaxUnits   = 4095
)

// 7-bit address bounds. Addresses below 0x08 and above 0x77 are reserved
// by the I2C specification and rejected by the address constructor.
const (
	I2CMinAddr7Bit = 0x08
	I2CMaxAddr7Bit = 0x77
)
