package xr2280x

import (
	"time"
)

// defaultInterruptTimeout applies when Read is called with a
// non-positive timeout.
const defaultInterruptTimeout = time.Second

// InterruptReport is one raw interrupt IN report from the EDGE
// interface. Raw[0] is the HID report ID; the hardware payload follows.
// The payload layout is not documented by the vendor, so the raw bytes
// are the only authoritative representation.
type InterruptReport struct {
	Raw []byte
}

// Payload returns the report bytes after the HID report ID.
func (r InterruptReport) Payload() []byte {
	if len(r.Raw) == 0 {
		return nil
	}
	return r.Raw[1:]
}

// ParsedInterruptReport is a speculative decode of an interrupt report.
// The field assignments follow a plausible layout that has not been
// verified against vendor documentation; treat every value as a hint
// and cross-check against ReadGroup before acting on it.
type ParsedInterruptReport struct {
	StateGroup0   uint16
	StateGroup1   uint16
	TriggerGroup0 uint16
	TriggerGroup1 uint16
}

// ParseInterruptReportUnverified decodes a raw report assuming pin
// state words in payload bytes 0-3 and trigger masks in bytes 4-7, all
// little-endian. Reports shorter than the state words fail with
// ErrInvalidReport; missing trigger words leave the trigger masks zero.
// The Unverified suffix is the contract: the layout is guessed, not
// documented, and the decode may be wrong on real hardware.
func ParseInterruptReportUnverified(r InterruptReport) (ParsedInterruptReport, error) {
	p := r.Payload()
	if len(p) < 4 {
		return ParsedInterruptReport{}, maskAny(ErrInvalidReport)
	}
	out := ParsedInterruptReport{
		StateGroup0: uint16(p[0]) | uint16(p[1])<<8,
		StateGroup1: uint16(p[2]) | uint16(p[3])<<8,
	}
	if len(p) >= 8 {
		out.TriggerGroup0 = uint16(p[4]) | uint16(p[5])<<8
		out.TriggerGroup1 = uint16(p[6]) | uint16(p[7])<<8
	}
	return out, nil
}

// Interrupt is the EDGE controller's interrupt block of an open device.
type Interrupt struct {
	dev *Device
}

// Configure arms or disarms edge detection on one pin. Edge selection
// registers are only touched when enabling.
func (i *Interrupt) Configure(p Pin, enable, posEdge, negEdge bool) error {
	g := i.dev.GPIO
	if err := g.checkPin(p); err != nil {
		return maskAny(err)
	}
	var bits uint16
	if enable {
		bits = p.mask()
	}
	if err := g.updateGroupReg(p.Group(), regIntrMask0, p.mask(), bits); err != nil {
		return maskAny(err)
	}
	if !enable {
		return nil
	}
	bits = 0
	if posEdge {
		bits = p.mask()
	}
	if err := g.updateGroupReg(p.Group(), regIntrPosEdge0, p.mask(), bits); err != nil {
		return maskAny(err)
	}
	bits = 0
	if negEdge {
		bits = p.mask()
	}
	return g.updateGroupReg(p.Group(), regIntrNegEdge0, p.mask(), bits)
}

// Read blocks until an interrupt report arrives or the timeout expires.
// A non-positive timeout selects a one second default.
func (i *Interrupt) Read(timeout time.Duration) (InterruptReport, error) {
	d := i.dev
	if d.edgeIf == nil {
		return InterruptReport{}, maskAny(ErrUnsupported)
	}
	if timeout <= 0 {
		timeout = defaultInterruptTimeout
	}
	buf := make([]byte, 64)
	n, err := d.edgeIf.ReadTimeout(buf, timeout)
	if err != nil {
		return InterruptReport{}, maskAny(err)
	}
	d.log.Debug().Int("len", n).Msg("interrupt report received")
	return InterruptReport{Raw: buf[:n]}, nil
}
