package xr2280x

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type regWrite struct {
	addr  uint16
	value uint16
}

type stubResponse struct {
	data []byte
	err  error
}

// stubTransport implements Transport in memory. Feature reports operate
// on a fake register file; interrupt reports replay a scripted response
// queue. An empty queue behaves like a bus that never answers.
type stubTransport struct {
	regs       map[uint16]uint16
	failReads  map[uint16]bool
	failWrites map[uint16]bool
	readAddr   uint16

	regReads  int
	regWrites []regWrite

	outReports      [][]byte
	responses       []stubResponse
	lastReadTimeout time.Duration
	closed          bool
}

func newStubTransport() *stubTransport {
	return &stubTransport{
		regs:       make(map[uint16]uint16),
		failReads:  make(map[uint16]bool),
		failWrites: make(map[uint16]bool),
	}
}

// calls counts register accesses: every write is one access, every
// latch-and-fetch read pair is one access.
func (s *stubTransport) calls() int {
	return s.regReads + len(s.regWrites)
}

func (s *stubTransport) resetCounters() {
	s.regReads = 0
	s.regWrites = nil
	s.outReports = nil
}

func (s *stubTransport) queueResponse(data []byte) {
	s.responses = append(s.responses, stubResponse{data: data})
}

func (s *stubTransport) queueTimeout() {
	s.responses = append(s.responses, stubResponse{err: ErrTransportTimeout})
}

func (s *stubTransport) Write(p []byte) (int, error) {
	s.outReports = append(s.outReports, append([]byte(nil), p...))
	return len(p), nil
}

func (s *stubTransport) ReadTimeout(p []byte, timeout time.Duration) (int, error) {
	s.lastReadTimeout = timeout
	if len(s.responses) == 0 {
		return 0, maskAny(ErrTransportTimeout)
	}
	r := s.responses[0]
	s.responses = s.responses[1:]
	if r.err != nil {
		return 0, maskAny(r.err)
	}
	return copy(p, r.data), nil
}

func (s *stubTransport) SendFeatureReport(p []byte) (int, error) {
	switch p[0] {
	case reportIDWriteRegister:
		if len(p) < 5 {
			return 0, maskAny(ErrInvalidReport)
		}
		addr := uint16(p[1]) | uint16(p[2])<<8
		value := uint16(p[3]) | uint16(p[4])<<8
		if s.failWrites[addr] {
			return 0, errors.New("register write rejected")
		}
		s.regs[addr] = value
		s.regWrites = append(s.regWrites, regWrite{addr: addr, value: value})
	case reportIDSetReadAddress:
		if len(p) < 3 {
			return 0, maskAny(ErrInvalidReport)
		}
		s.readAddr = uint16(p[1]) | uint16(p[2])<<8
	default:
		return 0, maskAny(ErrUnsupportedReportID)
	}
	return len(p), nil
}

func (s *stubTransport) GetFeatureReport(p []byte) (int, error) {
	if p[0] != reportIDReadRegister {
		return 0, maskAny(ErrUnsupportedReportID)
	}
	if s.failReads[s.readAddr] {
		return 0, errors.New("register not implemented")
	}
	s.regReads++
	v := s.regs[s.readAddr]
	p[1], p[2] = byte(v), byte(v>>8)
	return 3, nil
}

func (s *stubTransport) Close() error {
	s.closed = true
	return nil
}

// newTestDevice builds a device over stub transports and clears the
// access counters left by the capability probe.
func newTestDevice(t *testing.T, gpioCount int) (*Device, *stubTransport, *stubTransport) {
	t.Helper()
	i2cT := newStubTransport()
	edgeT := newStubTransport()
	if gpioCount <= 8 {
		edgeT.failReads[regFuncSel1] = true
	}
	dev, err := newDevice(DeviceInfo{Serial: "TEST0000"}, i2cT, edgeT)
	require.NoError(t, err)
	require.Equal(t, gpioCount, dev.Capabilities().GpioCount)
	i2cT.resetCounters()
	edgeT.resetCounters()
	return dev, i2cT, edgeT
}

func causeOf(err error) error {
	return errors.Cause(err)
}

// i2cResponse builds a well-formed IN report.
func i2cResponse(status byte, data []byte) []byte {
	r := make([]byte, i2cInReportSize)
	r[0] = status
	r[2] = byte(len(data))
	copy(r[4:], data)
	return r
}
