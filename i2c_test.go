package xr2280x

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddr7WireEncoding(t *testing.T) {
	for a := I2CMinAddr7Bit; a <= I2CMaxAddr7Bit; a++ {
		addr, err := Addr7(byte(a))
		require.NoError(t, err)
		wire, prefix := addr.wireHeader()
		assert.Equal(t, byte(a)<<1, wire)
		assert.Zero(t, wire&0x01, "R/W bit position must start clear")
		assert.Nil(t, prefix)
	}
}

func TestAddr7Validation(t *testing.T) {
	for _, a := range []byte{0x00, 0x07, 0x78, 0x7F} {
		_, err := Addr7(a)
		assert.True(t, IsArgument(err), "address 0x%02X must be rejected", a)
	}
}

func TestAddr10WireEncodingRoundTrip(t *testing.T) {
	for a := uint16(0); a <= 0x03FF; a++ {
		addr, err := Addr10(a)
		require.NoError(t, err)
		high, prefix := addr.wireHeader()
		require.Len(t, prefix, 1)

		assert.Equal(t, byte(0xF0), high&0xF8, "high byte must carry the 0b11110 pattern")
		assert.Zero(t, high&0x01)

		decoded := uint16(high>>1&0x03)<<8 | uint16(prefix[0])
		assert.Equal(t, a, decoded)
	}

	_, err := Addr10(0x0400)
	assert.True(t, IsArgument(err))
}

func TestI2CWriteReportLayout(t *testing.T) {
	dev, i2cT, _ := newTestDevice(t, 32)
	i2cT.queueResponse(i2cResponse(0, nil))

	addr, _ := Addr7(0x50)
	require.NoError(t, dev.I2C.Write(addr, []byte{0xAA, 0xBB}))

	require.Len(t, i2cT.outReports, 1)
	out := i2cT.outReports[0]
	assert.Equal(t, I2CFlagStart|I2CFlagStop, out[0])
	assert.Equal(t, byte(2), out[1])
	assert.Equal(t, byte(0), out[2])
	assert.Equal(t, byte(0x50<<1), out[3])
	assert.Equal(t, []byte{0xAA, 0xBB}, out[4:6])
}

func TestI2CWriteReportLayout10Bit(t *testing.T) {
	dev, i2cT, _ := newTestDevice(t, 32)
	i2cT.queueResponse(i2cResponse(0, nil))

	addr, _ := Addr10(0x2A5)
	require.NoError(t, dev.I2C.Write(addr, []byte{0x01}))

	out := i2cT.outReports[0]
	// The low address byte rides in the write payload, so the write
	// length covers it too.
	assert.Equal(t, byte(2), out[1])
	assert.Equal(t, byte(0xF0|0x02<<1), out[3])
	assert.Equal(t, byte(0xA5), out[4])
	assert.Equal(t, byte(0x01), out[5])
}

func TestI2CPayloadBounds(t *testing.T) {
	dev, i2cT, _ := newTestDevice(t, 32)

	addr7, _ := Addr7(0x50)
	err := dev.I2C.Write(addr7, make([]byte, I2CMaxDataSize+1))
	assert.True(t, IsArgument(err))

	addr10, _ := Addr10(0x123)
	err = dev.I2C.Write(addr10, make([]byte, I2CMaxDataSize))
	assert.True(t, IsArgument(err), "10-bit writes lose one byte to the low address byte")

	assert.Empty(t, i2cT.outReports, "rejected transfers must not reach the wire")
}

func TestI2CStatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status byte
		check  isErrorFunc
	}{
		{"nack", i2cInFlagNack, IsI2cNack},
		{"timeout", i2cInFlagTimeout, IsI2cTimeout},
		{"arbitration lost", i2cInFlagArbitrationLost, IsI2cArbitrationLost},
		{"request error", i2cInFlagRequestError, IsI2cRequestError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dev, i2cT, _ := newTestDevice(t, 32)
			i2cT.queueResponse(i2cResponse(tc.status, nil))

			addr, _ := Addr7(0x50)
			err := dev.I2C.Write(addr, []byte{0x00})
			assert.True(t, tc.check(err))
		})
	}
}

func TestI2CMissingResponseIsTimeout(t *testing.T) {
	dev, _, _ := newTestDevice(t, 32)

	// Nothing queued: the controller never answers. This must surface
	// as an I2C timeout, never as success.
	addr, _ := Addr7(0x50)
	err := dev.I2C.Write(addr, []byte{0x00})
	assert.True(t, IsI2cTimeout(err))
}

func TestI2CShortResponseIsInvalid(t *testing.T) {
	dev, i2cT, _ := newTestDevice(t, 32)
	i2cT.queueResponse([]byte{0x00, 0x00})

	addr, _ := Addr7(0x50)
	err := dev.I2C.Write(addr, []byte{0x00})
	assert.True(t, IsInvalidReport(err))
}

func TestI2CRead(t *testing.T) {
	dev, i2cT, _ := newTestDevice(t, 32)
	i2cT.queueResponse(i2cResponse(0, []byte{0x12, 0x34, 0x56}))

	addr, _ := Addr7(0x68)
	buf := make([]byte, 3)
	require.NoError(t, dev.I2C.Read(addr, buf))
	assert.Equal(t, []byte{0x12, 0x34, 0x56}, buf)

	out := i2cT.outReports[0]
	assert.Equal(t, byte(0), out[1])
	assert.Equal(t, byte(3), out[2])
}

func TestWriteEepromUsesLongDeadline(t *testing.T) {
	dev, i2cT, _ := newTestDevice(t, 32)
	i2cT.queueResponse(i2cResponse(0, nil))

	addr, _ := Addr7(0x50)
	require.NoError(t, dev.I2C.WriteEeprom(addr, []byte{0x00, 0x10, 0xAB}))

	out := i2cT.outReports[0]
	assert.Equal(t, byte(3), out[1])
	assert.Equal(t, byte(0), out[2])
	assert.Equal(t, 5*time.Second, i2cT.lastReadTimeout)
}

func TestI2CSetSpeed(t *testing.T) {
	tests := []struct {
		khz  uint32
		low  uint16
		high uint16
	}{
		// 100 kHz: 600 cycles split evenly, above the slow-mode minimums.
		{100, 300, 300},
		// 400 kHz: the low count clamps to the fast-mode minimum.
		{400, 78, 75},
		// 1 kHz: huge counts, no clamping.
		{1, 30000, 30000},
	}
	for _, tc := range tests {
		dev, i2cT, _ := newTestDevice(t, 32)
		require.NoError(t, dev.I2C.SetSpeed(tc.khz))
		assert.Equal(t, tc.low, i2cT.regs[regI2CSCLLow], "%d kHz", tc.khz)
		assert.Equal(t, tc.high, i2cT.regs[regI2CSCLHigh], "%d kHz", tc.khz)
	}

	dev, _, _ := newTestDevice(t, 32)
	assert.True(t, IsArgument(dev.I2C.SetSpeed(0)))
	assert.True(t, IsArgument(dev.I2C.SetSpeed(401)))
}

func TestI2CWithoutInterface(t *testing.T) {
	edgeT := newStubTransport()
	dev, err := newDevice(DeviceInfo{}, nil, edgeT)
	require.NoError(t, err)

	addr, _ := Addr7(0x50)
	assert.True(t, IsUnsupported(dev.I2C.Write(addr, []byte{0x00})))
	assert.True(t, IsUnsupported(dev.I2C.SetSpeed(100)))
}
