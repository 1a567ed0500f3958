package xr2280x

import (
	"time"
)

// I2CAddr is a validated I2C slave address in either 7-bit or 10-bit
// form. The zero value is not usable; construct one with Addr7 or
// Addr10.
type I2CAddr struct {
	addr   uint16
	tenBit bool
}

// Addr7 builds a 7-bit slave address. Addresses outside 0x08-0x77 are
// reserved by the I2C specification and rejected.
func Addr7(addr byte) (I2CAddr, error) {
	if addr < I2CMinAddr7Bit || addr > I2CMaxAddr7Bit {
		return I2CAddr{}, maskAny(ErrArgument)
	}
	return I2CAddr{addr: uint16(addr)}, nil
}

// Addr10 builds a 10-bit slave address (0-0x3FF).
func Addr10(addr uint16) (I2CAddr, error) {
	if addr > 0x03FF {
		return I2CAddr{}, maskAny(ErrArgument)
	}
	return I2CAddr{addr: addr, tenBit: true}, nil
}

// addr7Raw builds a 7-bit address without range validation. Only the
// bus scanner uses it, to probe reserved addresses.
func addr7Raw(addr byte) I2CAddr {
	return I2CAddr{addr: uint16(addr)}
}

// Is10Bit returns true for addresses built with Addr10.
func (a I2CAddr) Is10Bit() bool { return a.tenBit }

// Value returns the raw address bits.
func (a I2CAddr) Value() uint16 { return a.addr }

// wireHeader returns the address byte placed in the OUT report and the
// address bytes prepended to the write payload. A 7-bit address goes on
// the wire shifted left by one with the R/W bit clear. A 10-bit address
// uses the 0b1111_0xx0 pattern with bits 9:8 in positions 2:1, and its
// low byte travels as the first data byte.
func (a I2CAddr) wireHeader() (addrByte byte, prefix []byte) {
	if !a.tenBit {
		return byte(a.addr) << 1, nil
	}
	return 0xF0 | byte((a.addr>>8)&0x03)<<1, []byte{byte(a.addr)}
}

// maxData returns the largest payload one transaction can carry with
// this address: a 10-bit write spends one data byte on the low address
// byte.
func (a I2CAddr) maxData(writing bool) int {
	if a.tenBit && writing {
		return I2CMaxDataSize - 1
	}
	return I2CMaxDataSize
}

// I2C is the I2C master controller of an open device.
type I2C struct {
	dev *Device
}

// SetSpeed programs the bus clock in kHz (1-400). The controller divides
// a 60 MHz reference into SCL low and high counts; counts below the
// hardware minimum for the selected speed class get clamped up.
func (i *I2C) SetSpeed(khz uint32) error {
	if khz < 1 || khz > 400 {
		return maskAny(ErrArgument)
	}
	cycles := uint32(60000) / khz
	low := cycles / 2
	high := cycles - low

	minLow, minHigh := uint32(78), uint32(36)
	if khz <= 100 {
		minLow, minHigh = 252, 240
	}
	if low < minLow {
		low = minLow
	}
	if high < minHigh {
		high = minHigh
	}

	if err := i.dev.writeReg(regI2CSCLLow, uint16(low)); err != nil {
		return maskAny(err)
	}
	if err := i.dev.writeReg(regI2CSCLHigh, uint16(high)); err != nil {
		return maskAny(err)
	}
	i.dev.log.Debug().Uint32("khz", khz).Uint32("low", low).Uint32("high", high).Msg("i2c speed set")
	return nil
}

// Write sends data to the slave in one transaction with START and STOP.
// At most 32 bytes fit in one transaction (31 for 10-bit addresses).
func (i *I2C) Write(addr I2CAddr, data []byte) error {
	return i.WriteTimeout(addr, data, TimeoutWrite.Duration())
}

// WriteTimeout is Write with an explicit response deadline.
func (i *I2C) WriteTimeout(addr I2CAddr, data []byte, timeout time.Duration) error {
	return i.Transfer(addr, I2CFlagStart|I2CFlagStop, data, nil, timeout)
}

// WriteEeprom is Write with a deadline long enough to ride out an
// EEPROM's internal page-write cycle, during which the part holds SCL
// or NACKs until the write completes.
func (i *I2C) WriteEeprom(addr I2CAddr, data []byte) error {
	return i.WriteTimeout(addr, data, TimeoutEepromWrite.Duration())
}

// Read fills buf from the slave in one transaction with START and STOP.
func (i *I2C) Read(addr I2CAddr, buf []byte) error {
	return i.ReadTimeout(addr, buf, TimeoutRead.Duration())
}

// ReadTimeout is Read with an explicit response deadline.
func (i *I2C) ReadTimeout(addr I2CAddr, buf []byte, timeout time.Duration) error {
	return i.Transfer(addr, I2CFlagStart|I2CFlagStop, nil, buf, timeout)
}

// WriteRead writes wdata and then fills rbuf using a repeated START, the
// usual register-pointer idiom.
func (i *I2C) WriteRead(addr I2CAddr, wdata, rbuf []byte) error {
	return i.WriteReadTimeout(addr, wdata, rbuf, TimeoutWriteRead.Duration())
}

// WriteReadTimeout is WriteRead with an explicit response deadline.
func (i *I2C) WriteReadTimeout(addr I2CAddr, wdata, rbuf []byte, timeout time.Duration) error {
	return i.Transfer(addr, I2CFlagStart|I2CFlagStop, wdata, rbuf, timeout)
}

// Transfer performs one raw transaction with caller-chosen flags. Both
// wdata and rbuf may be nil; an empty transaction still addresses the
// slave, which is what the bus scanner relies on.
func (i *I2C) Transfer(addr I2CAddr, flags byte, wdata, rbuf []byte, timeout time.Duration) error {
	if len(wdata) > addr.maxData(true) || len(rbuf) > addr.maxData(false) {
		return maskAny(ErrArgument)
	}
	return i.exchange(addr, flags, wdata, rbuf, timeout)
}

func (i *I2C) exchange(addr I2CAddr, flags byte, wdata, rbuf []byte, timeout time.Duration) error {
	d := i.dev
	if d.i2cIf == nil {
		return maskAny(ErrUnsupported)
	}

	addrByte, prefix := addr.wireHeader()
	out := make([]byte, i2cOutReportSize)
	out[0] = flags
	out[1] = byte(len(prefix) + len(wdata))
	out[2] = byte(len(rbuf))
	out[3] = addrByte
	copy(out[4:], prefix)
	copy(out[4+len(prefix):], wdata)

	d.xferMu.Lock()
	defer d.xferMu.Unlock()

	if _, err := d.i2cIf.Write(out); err != nil {
		return maskAny(err)
	}

	in := make([]byte, i2cInReportSize)
	n, err := d.i2cIf.ReadTimeout(in, timeout)
	if err != nil {
		// No response at all: the controller never finished the
		// transaction, which on this chip means a held bus.
		if IsTransportTimeout(err) {
			return maskAny(ErrI2cTimeout)
		}
		return maskAny(err)
	}
	if n < 4 {
		return maskAny(ErrInvalidReport)
	}

	status := in[0]
	switch {
	case status&i2cInFlagRequestError != 0:
		return maskAny(ErrI2cRequestError)
	case status&i2cInFlagNack != 0:
		return maskAny(ErrI2cNack)
	case status&i2cInFlagArbitrationLost != 0:
		return maskAny(ErrI2cArbitrationLost)
	case status&i2cInFlagTimeout != 0:
		return maskAny(ErrI2cTimeout)
	case status&i2cInFlagsMask != 0:
		return maskAny(&I2CUnknownError{Status: status})
	}

	if len(rbuf) > 0 {
		rdSize := int(in[2])
		if rdSize != len(rbuf) {
			d.log.Debug().Int("expected", len(rbuf)).Int("got", rdSize).Msg("i2c read length mismatch")
		}
		if rdSize > len(rbuf) {
			rdSize = len(rbuf)
		}
		if rdSize > n-4 {
			rdSize = n - 4
		}
		copy(rbuf[:rdSize], in[4:4+rdSize])
	}
	return nil
}
