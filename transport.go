package xr2280x

import (
	"time"

	"github.com/sstallion/go-hid"
)

// Transport is the minimal HID surface this package needs from one
// logical interface of the chip. The production implementation wraps a
// hidapi device handle; tests substitute in-memory fakes.
type Transport interface {
	// Write sends an interrupt OUT report.
	Write(p []byte) (int, error)
	// ReadTimeout reads an interrupt IN report, failing with
	// ErrTransportTimeout when no report arrives within the deadline.
	ReadTimeout(p []byte, timeout time.Duration) (int, error)
	// SendFeatureReport sends a feature report. p[0] is the report ID.
	SendFeatureReport(p []byte) (int, error)
	// GetFeatureReport reads a feature report into p. p[0] selects the
	// report ID on input and is part of the result on output.
	GetFeatureReport(p []byte) (int, error)
	Close() error
}

// hidTransport adapts a hidapi device handle to the Transport
// interface.
type hidTransport struct {
	dev *hid.Device
}

func openHidTransport(path string) (*hidTransport, error) {
	dev, err := hid.OpenPath(path)
	if err != nil {
		return nil, maskAny(err)
	}
	return &hidTransport{dev: dev}, nil
}

func (t *hidTransport) Write(p []byte) (int, error) {
	n, err := t.dev.Write(p)
	if err != nil {
		return n, maskAny(err)
	}
	return n, nil
}

func (t *hidTransport) ReadTimeout(p []byte, timeout time.Duration) (int, error) {
	n, err := t.dev.ReadWithTimeout(p, timeout)
	if err != nil {
		return n, maskAny(err)
	}
	// hidapi reports an expired deadline as a zero-length success.
	if n == 0 {
		return 0, maskAny(ErrTransportTimeout)
	}
	return n, nil
}

func (t *hidTransport) SendFeatureReport(p []byte) (int, error) {
	n, err := t.dev.SendFeatureReport(p)
	if err != nil {
		return n, maskAny(err)
	}
	return n, nil
}

func (t *hidTransport) GetFeatureReport(p []byte) (int, error) {
	n, err := t.dev.GetFeatureReport(p)
	if err != nil {
		return n, maskAny(err)
	}
	return n, nil
}

func (t *hidTransport) Close() error {
	if err := t.dev.Close(); err != nil {
		return maskAny(err)
	}
	return nil
}
