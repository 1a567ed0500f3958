package xr2280x

// Register access on both interfaces goes through three fixed-layout
// feature reports: one to write a register, one to latch the address to
// read from, and one to fetch the latched register's value. All fields
// are little-endian.

func writeRegisterReport(addr, value uint16) []byte {
	return []byte{
		reportIDWriteRegister,
		byte(addr), byte(addr >> 8),
		byte(value), byte(value >> 8),
	}
}

func setReadAddressReport(addr uint16) []byte {
	return []byte{
		reportIDSetReadAddress,
		byte(addr), byte(addr >> 8),
	}
}

func parseReadRegisterReport(p []byte) (uint16, error) {
	if len(p) < 3 {
		return 0, maskAny(ErrInvalidReport)
	}
	if p[0] != reportIDReadRegister {
		return 0, maskAny(ErrUnsupportedReportID)
	}
	return uint16(p[1]) | uint16(p[2])<<8, nil
}

func readRegister(t Transport, addr uint16) (uint16, error) {
	if _, err := t.SendFeatureReport(setReadAddressReport(addr)); err != nil {
		return 0, maskAny(err)
	}
	buf := make([]byte, 3)
	buf[0] = reportIDReadRegister
	if _, err := t.GetFeatureReport(buf); err != nil {
		return 0, maskAny(err)
	}
	return parseReadRegisterReport(buf)
}

func writeRegister(t Transport, addr, value uint16) error {
	if _, err := t.SendFeatureReport(writeRegisterReport(addr, value)); err != nil {
		return maskAny(err)
	}
	return nil
}
