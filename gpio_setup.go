package xr2280x

// Composite pin setup. These helpers batch pins by register group and
// touch each affected register at most once per group, so configuring
// many pins costs the same number of round trips as configuring one.
// Groups are written independently; the chip offers no way to update
// both banks atomically.

// SetupOutput configures one pin as an output driving the given initial
// level. The level is written before the direction flips so the pin
// never glitches through the wrong state.
func (g *GPIO) SetupOutput(p Pin, initial Level, pull Pull) error {
	return g.SetupOutputs([]Pin{p}, initial, pull)
}

// SetupInput configures one pin as an input with the given pull.
func (g *GPIO) SetupInput(p Pin, pull Pull) error {
	return g.SetupInputs([]Pin{p}, pull)
}

// SetupOutputs configures all given pins as outputs driving the same
// initial level. With PullNone the pull registers are left untouched;
// a driven output does not need its pulls rewritten.
func (g *GPIO) SetupOutputs(pins []Pin, initial Level, pull Pull) error {
	masks, err := g.groupMasks(pins)
	if err != nil {
		return maskAny(err)
	}
	for grp, mask := range masks {
		if mask == 0 {
			continue
		}
		var levels uint16
		if initial == High {
			levels = mask
		}
		if err := g.WriteMasked(Group(grp), mask, levels); err != nil {
			return maskAny(err)
		}
		if pull != PullNone {
			if err := g.setPullMasked(Group(grp), mask, pull); err != nil {
				return maskAny(err)
			}
		}
		if err := g.updateGroupReg(Group(grp), regDir0, mask, mask); err != nil {
			return maskAny(err)
		}
	}
	return nil
}

// SetupInputs configures all given pins as inputs with the same pull.
// PullNone disables both pull directions here, unlike SetupOutputs,
// since a floating input is a deliberate choice.
func (g *GPIO) SetupInputs(pins []Pin, pull Pull) error {
	masks, err := g.groupMasks(pins)
	if err != nil {
		return maskAny(err)
	}
	for grp, mask := range masks {
		if mask == 0 {
			continue
		}
		if err := g.updateGroupReg(Group(grp), regDir0, mask, 0); err != nil {
			return maskAny(err)
		}
		if err := g.setPullMasked(Group(grp), mask, pull); err != nil {
			return maskAny(err)
		}
	}
	return nil
}

// groupMasks validates every pin before any wire access and folds the
// set into one bitmask per register group.
func (g *GPIO) groupMasks(pins []Pin) ([2]uint16, error) {
	var masks [2]uint16
	for _, p := range pins {
		if err := g.checkPin(p); err != nil {
			return masks, maskAny(err)
		}
		masks[p.Group()] |= p.mask()
	}
	return masks, nil
}
