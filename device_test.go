package xr2280x

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i2cIface(path, serial string) InterfaceInfo {
	return InterfaceInfo{Path: path, VID: VID, PID: PIDI2C, Serial: serial}
}

func edgeIface(path, serial string) InterfaceInfo {
	return InterfaceInfo{Path: path, VID: VID, PID: PIDEdge, Serial: serial}
}

func TestGroupingExactSerial(t *testing.T) {
	devices := groupInterfaces([]InterfaceInfo{
		i2cIface("usb-1", "ABCD1234"),
		edgeIface("usb-2", "ABCD1234"),
	})
	require.Len(t, devices, 1)
	assert.Equal(t, "ABCD1234", devices[0].Serial)
	require.NotNil(t, devices[0].I2C)
	require.NotNil(t, devices[0].Edge)
}

func TestGroupingFuzzySerial(t *testing.T) {
	// Some firmware reports serials on the two interfaces differing in
	// one character. Both interfaces still belong to one device.
	devices := groupInterfaces([]InterfaceInfo{
		i2cIface("usb-1", "6507DA00"),
		edgeIface("usb-2", "7507DA00"),
	})
	require.Len(t, devices, 1)
	require.NotNil(t, devices[0].I2C)
	require.NotNil(t, devices[0].Edge)
}

func TestGroupingFuzzyConflict(t *testing.T) {
	// A second I2C interface fuzzy-matching the first device must not
	// displace its I2C interface; it is a different physical device.
	devices := groupInterfaces([]InterfaceInfo{
		i2cIface("usb-1", "6507DA00"),
		edgeIface("usb-2", "7507DA00"),
		i2cIface("usb-3", "6507DA01"),
	})
	require.Len(t, devices, 2)

	assert.Equal(t, "usb-1", devices[0].I2C.Path)
	assert.Equal(t, "usb-2", devices[0].Edge.Path)
	assert.Equal(t, "usb-3", devices[1].I2C.Path)
	assert.Nil(t, devices[1].Edge)
}

func TestGroupingFuzzyAmbiguityPicksEarliestDevice(t *testing.T) {
	// An EDGE serial one character away from TWO existing devices must
	// always merge into the one created first, never depend on map
	// iteration order.
	for run := 0; run < 20; run++ {
		devices := groupInterfaces([]InterfaceInfo{
			i2cIface("usb-1", "6507DA00"),
			i2cIface("usb-2", "7517DA00"),
			edgeIface("usb-3", "7507DA00"),
		})
		require.Len(t, devices, 2)
		require.NotNil(t, devices[0].Edge)
		assert.Equal(t, "6507DA00", devices[0].Serial)
		assert.Equal(t, "usb-3", devices[0].Edge.Path)
		assert.Nil(t, devices[1].Edge)
	}
}

func TestGroupingNoSerial(t *testing.T) {
	devices := groupInterfaces([]InterfaceInfo{
		i2cIface("usb-1", ""),
		edgeIface("usb-2", ""),
	})
	// Without serials the interfaces cannot be paired safely.
	require.Len(t, devices, 2)
}

func TestGroupingDeterministicOrder(t *testing.T) {
	devices := groupInterfaces([]InterfaceInfo{
		i2cIface("usb-9", ""),
		i2cIface("usb-1", "ZZZZ0000"),
		i2cIface("usb-5", "AAAA0000"),
		i2cIface("usb-3", ""),
	})
	require.Len(t, devices, 4)
	assert.Equal(t, "AAAA0000", devices[0].Serial)
	assert.Equal(t, "ZZZZ0000", devices[1].Serial)
	assert.Equal(t, "usb-3", devices[2].sortPath())
	assert.Equal(t, "usb-9", devices[3].sortPath())
}

func TestSerialsFuzzyMatch(t *testing.T) {
	assert.True(t, serialsFuzzyMatch("6507DA00", "7507DA00"))
	assert.False(t, serialsFuzzyMatch("6507DA00", "6507DA00"), "identical serials are an exact match, not fuzzy")
	assert.False(t, serialsFuzzyMatch("6507DA00", "7517DA00"), "two differing characters")
	assert.False(t, serialsFuzzyMatch("6507DA0", "7507DA0"), "too short to match safely")
	assert.False(t, serialsFuzzyMatch("6507DA00", "6507DA001"))
}

func TestCapabilityProbe(t *testing.T) {
	dev32, _, _ := newTestDevice(t, 32)
	assert.Equal(t, 32, dev32.Capabilities().GpioCount)

	dev8, _, _ := newTestDevice(t, 8)
	assert.Equal(t, 8, dev8.Capabilities().GpioCount)

	// No EDGE interface at all: no pins.
	i2cT := newStubTransport()
	dev, err := newDevice(DeviceInfo{}, i2cT, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, dev.Capabilities().GpioCount)
}

func TestRegisterRouting(t *testing.T) {
	dev, i2cT, edgeT := newTestDevice(t, 32)

	require.NoError(t, dev.writeReg(regI2CSCLLow, 300))
	require.NoError(t, dev.writeReg(regDir0, 0x00FF))

	assert.Equal(t, []regWrite{{regI2CSCLLow, 300}}, i2cT.regWrites)
	assert.Equal(t, []regWrite{{regDir0, 0x00FF}}, edgeT.regWrites)
}

func TestCloseReleasesTransports(t *testing.T) {
	dev, i2cT, edgeT := newTestDevice(t, 32)
	require.NoError(t, dev.Close())
	assert.True(t, i2cT.closed)
	assert.True(t, edgeT.closed)
}
