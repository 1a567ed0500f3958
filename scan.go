package xr2280x

// ScanProgressFunc is called once per probed address during a
// progressive scan. found reports whether the address acknowledged,
// index counts probed addresses from 0 and total is the number of
// addresses in the scanned range.
type ScanProgressFunc func(addr byte, found bool, index, total int)

// Scan probes every assignable 7-bit address (0x08-0x77) and returns
// the addresses that acknowledged.
func (i *I2C) Scan() ([]byte, error) {
	return i.ScanRange(I2CMinAddr7Bit, I2CMaxAddr7Bit)
}

// ScanRange probes 7-bit addresses from first to last inclusive.
//
// A scan of a held bus would otherwise cost one transaction timeout per
// address, so the scanner first probes a reserved address with a very
// short deadline. On a healthy bus that probe comes back as an
// immediate NACK; if it times out the bus is stuck and the scan aborts
// with ErrStuckBus before touching any address in range. During the
// scan itself two consecutive timeouts abort the same way, while NACKs
// are the normal empty-slot outcome and reset the timeout counter. The
// addresses found before an abort are still returned.
func (i *I2C) ScanRange(first, last byte) ([]byte, error) {
	return i.scanRange(first, last, nil)
}

// ScanRangeWithProgress is ScanRange with a per-address callback,
// useful for interactive tools that want to display scan progress. The
// callback fires after each in-range probe, including the ones that
// time out; an abort stops further probes and callbacks.
func (i *I2C) ScanRangeWithProgress(first, last byte, progress ScanProgressFunc) ([]byte, error) {
	return i.scanRange(first, last, progress)
}

func (i *I2C) scanRange(first, last byte, progress ScanProgressFunc) ([]byte, error) {
	if first < I2CMinAddr7Bit || last > I2CMaxAddr7Bit || first > last {
		return nil, maskAny(ErrArgument)
	}

	var buf [1]byte
	err := i.Transfer(addr7Raw(0x7F), I2CFlagStart|I2CFlagStop, nil, buf[:], TimeoutProbe.Duration())
	switch {
	case err == nil, IsI2cNack(err):
		// Bus responds; carry on.
	case IsI2cTimeout(err):
		i.dev.log.Debug().Msg("scan probe timed out, bus appears stuck")
		return nil, maskAny(ErrStuckBus)
	default:
		return nil, maskAny(err)
	}

	var found []byte
	total := int(last) - int(first) + 1
	timeouts := 0
	for addr := first; ; addr++ {
		err := i.Transfer(addr7Raw(addr), I2CFlagStart|I2CFlagStop, nil, buf[:], TimeoutScan.Duration())
		acked, abort := false, false
		switch {
		case err == nil:
			found = append(found, addr)
			acked = true
			timeouts = 0
		case IsI2cNack(err):
			timeouts = 0
		case IsI2cTimeout(err):
			timeouts++
			abort = timeouts >= consecutiveTimeoutLimit
		default:
			return found, maskAny(err)
		}
		if progress != nil {
			progress(addr, acked, int(addr)-int(first), total)
		}
		if abort {
			i.dev.log.Debug().Uint8("addr", addr).Msg("consecutive scan timeouts, aborting")
			return found, maskAny(ErrStuckBus)
		}
		if addr == last {
			break
		}
	}
	i.dev.log.Debug().Int("found", len(found)).Msg("i2c scan completed")
	return found, nil
}
