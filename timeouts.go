package xr2280x

import "time"

// TimeoutClass names a response deadline preset for I2C transactions.
// Probe and scan use short deadlines so a dead bus fails fast; EEPROM
// page writes stretch the transaction while the part is internally busy
// and need much more. Convenience methods pick the matching class;
// the *Timeout call variants accept an explicit override.
type TimeoutClass int

const (
	TimeoutProbe TimeoutClass = iota
	TimeoutScan
	TimeoutRead
	TimeoutWrite
	TimeoutWriteRead
	TimeoutEepromWrite
)

// Duration returns the deadline the class stands for.
func (c TimeoutClass) Duration() time.Duration {
	switch c {
	case TimeoutProbe:
		return 3 * time.Millisecond
	case TimeoutScan:
		return 8 * time.Millisecond
	case TimeoutRead:
		return 100 * time.Millisecond
	case TimeoutWrite:
		return 200 * time.Millisecond
	case TimeoutWriteRead:
		return 250 * time.Millisecond
	case TimeoutEepromWrite:
		return 5000 * time.Millisecond
	}
	return TimeoutWriteRead.Duration()
}

func (c TimeoutClass) String() string {
	switch c {
	case TimeoutProbe:
		return "probe"
	case TimeoutScan:
		return "scan"
	case TimeoutRead:
		return "read"
	case TimeoutWrite:
		return "write"
	case TimeoutWriteRead:
		return "write-read"
	case TimeoutEepromWrite:
		return "eeprom-write"
	}
	return "unknown"
}

// consecutiveTimeoutLimit is the number of back-to-back transaction
// timeouts after which a bus scan gives up. NACKs reset the counter;
// only timeouts count, since a NACK proves the bus still toggles.
const consecutiveTimeoutLimit = 2
