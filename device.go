package xr2280x

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sstallion/go-hid"
)

// InterfaceInfo describes one HID logical interface of an XR2280x chip
// as reported by the operating system.
type InterfaceInfo struct {
	Path         string
	VID          uint16
	PID          uint16
	Serial       string
	Manufacturer string
	Product      string
	Release      uint16
}

// IsI2C returns true when this interface is the I2C master controller.
func (i InterfaceInfo) IsI2C() bool {
	return i.PID == PIDI2C
}

// IsEdge returns true when this interface is the EDGE (GPIO/PWM/
// interrupt) controller.
func (i InterfaceInfo) IsEdge() bool {
	return i.PID == PIDEdge
}

// DeviceInfo describes one physical XR2280x device, holding up to one
// I2C and one EDGE interface.
type DeviceInfo struct {
	Serial       string
	Manufacturer string
	Product      string
	I2C          *InterfaceInfo
	Edge         *InterfaceInfo
}

func (d DeviceInfo) String() string {
	if d.Serial != "" {
		return fmt.Sprintf("XR2280x %s (%s)", d.Serial, d.Product)
	}
	return fmt.Sprintf("XR2280x at %s", d.sortPath())
}

func (d DeviceInfo) sortPath() string {
	if d.I2C != nil {
		return d.I2C.Path
	}
	if d.Edge != nil {
		return d.Edge.Path
	}
	return ""
}

func (d *DeviceInfo) addInterface(i InterfaceInfo) {
	c := i
	if i.IsI2C() {
		d.I2C = &c
	} else {
		d.Edge = &c
	}
	if d.Product == "" {
		d.Product = i.Product
	}
	if d.Manufacturer == "" {
		d.Manufacturer = i.Manufacturer
	}
}

func (d DeviceInfo) hasSlot(i InterfaceInfo) bool {
	if i.IsI2C() {
		return d.I2C != nil
	}
	return d.Edge != nil
}

// serialsFuzzyMatch reports whether two serial strings belong to the
// same physical device. Some firmware revisions report serials on the
// two interfaces that differ in exactly one character.
func serialsFuzzyMatch(a, b string) bool {
	if len(a) != len(b) || len(a) < 8 {
		return false
	}
	diff := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			diff++
			if diff > 1 {
				return false
			}
		}
	}
	return diff == 1
}

// groupInterfaces pairs enumerated interfaces into per-device entries.
// Interfaces are matched by exact serial first, then by fuzzy serial,
// and only merged when the candidate device does not already hold an
// interface of the same kind. Serial-less interfaces each get their own
// entry. The result is sorted so repeated enumerations index devices
// consistently: entries with serials first in ascending order, then the
// rest ordered by path.
func groupInterfaces(ifaces []InterfaceInfo) []DeviceInfo {
	var devices []DeviceInfo
	bySerial := make(map[string]int)

	for _, iface := range ifaces {
		if iface.Serial == "" {
			d := DeviceInfo{}
			d.addInterface(iface)
			devices = append(devices, d)
			continue
		}

		idx, ok := bySerial[iface.Serial]
		if !ok {
			// Walk devices in creation order rather than the serial map,
			// so the earliest fuzzy match wins and grouping stays a pure
			// function of the interface list.
			for j := range devices {
				s := devices[j].Serial
				if s == "" || !serialsFuzzyMatch(s, iface.Serial) {
					continue
				}
				if k, indexed := bySerial[s]; indexed && k == j {
					idx, ok = j, true
					break
				}
			}
		}
		if ok && !devices[idx].hasSlot(iface) {
			devices[idx].addInterface(iface)
			continue
		}

		// No match, or the matched device already carries this kind of
		// interface. The second case means two physical devices with
		// near-identical serials; keep the new entry out of the serial
		// map so it cannot swallow further interfaces.
		d := DeviceInfo{Serial: iface.Serial}
		d.addInterface(iface)
		devices = append(devices, d)
		if !ok {
			bySerial[iface.Serial] = len(devices) - 1
		}
	}

	sort.SliceStable(devices, func(a, b int) bool {
		da, db := devices[a], devices[b]
		if (da.Serial != "") != (db.Serial != "") {
			return da.Serial != ""
		}
		if da.Serial != db.Serial {
			return da.Serial < db.Serial
		}
		return da.sortPath() < db.sortPath()
	})
	return devices
}

func enumerateInterfaces() ([]InterfaceInfo, error) {
	var ifaces []InterfaceInfo
	collect := func(info *hid.DeviceInfo) error {
		ifaces = append(ifaces, InterfaceInfo{
			Path:         info.Path,
			VID:          info.VendorID,
			PID:          info.ProductID,
			Serial:       info.SerialNbr,
			Manufacturer: info.MfrStr,
			Product:      info.ProductStr,
			Release:      info.ReleaseNbr,
		})
		return nil
	}
	if err := hid.Enumerate(VID, PIDI2C, collect); err != nil {
		return nil, maskAny(err)
	}
	if err := hid.Enumerate(VID, PIDEdge, collect); err != nil {
		return nil, maskAny(err)
	}
	return ifaces, nil
}

// FindAll enumerates all connected XR2280x devices.
func FindAll() ([]DeviceInfo, error) {
	ifaces, err := enumerateInterfaces()
	if err != nil {
		return nil, maskAny(err)
	}
	return groupInterfaces(ifaces), nil
}

// FindFirst returns the first connected XR2280x device, or
// ErrDeviceNotFound when none is attached.
func FindFirst() (DeviceInfo, error) {
	devices, err := FindAll()
	if err != nil {
		return DeviceInfo{}, maskAny(err)
	}
	if len(devices) == 0 {
		return DeviceInfo{}, maskAny(ErrDeviceNotFound)
	}
	return devices[0], nil
}

// Capabilities describes what the opened hardware model supports.
type Capabilities struct {
	// GpioCount is 8 on XR22800/XR22801, 32 on XR22802/XR22804, and 0
	// when the EDGE interface is absent.
	GpioCount int
}

// Device is an open handle to one physical XR2280x. The I2C, GPIO, PWM
// and Interrupt fields expose the chip's functional blocks; each is nil
// only in the zero value, never on a successfully opened Device, but
// its operations fail with ErrUnsupported when the backing interface is
// missing.
type Device struct {
	info DeviceInfo
	caps Capabilities
	log  zerolog.Logger

	i2cMu  sync.Mutex
	i2cIf  Transport
	edgeMu sync.Mutex
	edgeIf Transport
	xferMu sync.Mutex

	I2C       *I2C
	GPIO      *GPIO
	PWM       *PWM
	Interrupt *Interrupt
}

// Option configures a Device at open time.
type Option func(*Device)

// WithLogger attaches a zerolog logger to the device. Without it the
// device stays silent.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Device) { d.log = log }
}

// Open opens both available interfaces of the given device.
func Open(info DeviceInfo, opts ...Option) (*Device, error) {
	var i2cIf, edgeIf Transport
	if info.I2C != nil {
		t, err := openHidTransport(info.I2C.Path)
		if err != nil {
			return nil, maskAny(err)
		}
		i2cIf = t
	}
	if info.Edge != nil {
		t, err := openHidTransport(info.Edge.Path)
		if err != nil {
			if i2cIf != nil {
				i2cIf.Close()
			}
			return nil, maskAny(err)
		}
		edgeIf = t
	}
	if i2cIf == nil && edgeIf == nil {
		return nil, maskAny(ErrDeviceNotFound)
	}
	return newDevice(info, i2cIf, edgeIf, opts...)
}

// OpenFirst opens the first connected device.
func OpenFirst(opts ...Option) (*Device, error) {
	info, err := FindFirst()
	if err != nil {
		return nil, maskAny(err)
	}
	return Open(info, opts...)
}

// OpenIndex opens the n-th device in FindAll order.
func OpenIndex(n int, opts ...Option) (*Device, error) {
	devices, err := FindAll()
	if err != nil {
		return nil, maskAny(err)
	}
	if n < 0 || n >= len(devices) {
		return nil, maskAny(ErrDeviceNotFound)
	}
	return Open(devices[n], opts...)
}

// OpenBySerial opens the device whose serial matches exactly. Two
// devices reporting the same serial make the selection ambiguous and
// fail with ErrMultipleDevices.
func OpenBySerial(serial string, opts ...Option) (*Device, error) {
	devices, err := FindAll()
	if err != nil {
		return nil, maskAny(err)
	}
	var match *DeviceInfo
	for i, info := range devices {
		if info.Serial != serial {
			continue
		}
		if match != nil {
			return nil, maskAny(ErrMultipleDevices)
		}
		match = &devices[i]
	}
	if match == nil {
		return nil, maskAny(ErrDeviceNotFound)
	}
	return Open(*match, opts...)
}

// OpenPaths opens a device directly from platform HID paths, bypassing
// enumeration. Either path may be empty, but not both.
func OpenPaths(i2cPath, edgePath string, opts ...Option) (*Device, error) {
	info := DeviceInfo{}
	if i2cPath != "" {
		info.I2C = &InterfaceInfo{Path: i2cPath, VID: VID, PID: PIDI2C}
	}
	if edgePath != "" {
		info.Edge = &InterfaceInfo{Path: edgePath, VID: VID, PID: PIDEdge}
	}
	return Open(info, opts...)
}

func newDevice(info DeviceInfo, i2cIf, edgeIf Transport, opts ...Option) (*Device, error) {
	d := &Device{
		info:   info,
		log:    zerolog.Nop(),
		i2cIf:  i2cIf,
		edgeIf: edgeIf,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.I2C = &I2C{dev: d}
	d.GPIO = &GPIO{dev: d}
	d.PWM = &PWM{dev: d}
	d.Interrupt = &Interrupt{dev: d}

	if edgeIf != nil {
		// Models with 32 pins implement a second register group; its
		// function select register reads back on those parts only.
		if _, err := readRegister(edgeIf, regFuncSel1); err == nil {
			d.caps.GpioCount = 32
		} else {
			d.caps.GpioCount = 8
		}
	}
	d.log.Debug().
		Str("serial", info.Serial).
		Int("gpio", d.caps.GpioCount).
		Msg("device opened")
	return d, nil
}

// Info returns the enumeration data this device was opened from.
func (d *Device) Info() DeviceInfo {
	return d.info
}

// Capabilities returns what the opened hardware supports.
func (d *Device) Capabilities() Capabilities {
	return d.caps
}

// Close releases both HID interfaces. The device must not be used
// afterwards.
func (d *Device) Close() error {
	var firstErr error
	if d.i2cIf != nil {
		if err := d.i2cIf.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.i2cIf = nil
	}
	if d.edgeIf != nil {
		if err := d.edgeIf.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.edgeIf = nil
	}
	if firstErr != nil {
		return maskAny(firstErr)
	}
	return nil
}

// transportFor routes a register address to the interface that serves
// it. The I2C controller owns a small window of the register file; the
// EDGE controller owns everything else.
func (d *Device) transportFor(addr uint16) (Transport, *sync.Mutex, error) {
	if addr >= i2cRegLow && addr <= i2cRegHigh {
		if d.i2cIf == nil {
			return nil, nil, maskAny(ErrUnsupported)
		}
		return d.i2cIf, &d.i2cMu, nil
	}
	if d.edgeIf == nil {
		return nil, nil, maskAny(ErrUnsupported)
	}
	return d.edgeIf, &d.edgeMu, nil
}

func (d *Device) readReg(addr uint16) (uint16, error) {
	t, mu, err := d.transportFor(addr)
	if err != nil {
		return 0, maskAny(err)
	}
	mu.Lock()
	defer mu.Unlock()
	v, err := readRegister(t, addr)
	if err != nil {
		return 0, maskAny(err)
	}
	d.log.Debug().Uint16("addr", addr).Uint16("value", v).Msg("register read")
	return v, nil
}

func (d *Device) writeReg(addr, value uint16) error {
	t, mu, err := d.transportFor(addr)
	if err != nil {
		return maskAny(err)
	}
	mu.Lock()
	defer mu.Unlock()
	if err := writeRegister(t, addr, value); err != nil {
		return maskAny(err)
	}
	d.log.Debug().Uint16("addr", addr).Uint16("value", value).Msg("register write")
	return nil
}
