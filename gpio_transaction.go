package xr2280x

// Transaction accumulates pin level changes and flushes them in as few
// register writes as possible: one SET and one CLEAR write per affected
// group, independent of how many pins changed. Not safe for concurrent
// use; build, fill and commit it from one goroutine.
type Transaction struct {
	g     *GPIO
	set   [2]uint16
	clear [2]uint16
	err   error
}

// Transaction starts an empty batched level update.
func (g *GPIO) Transaction() *Transaction {
	return &Transaction{g: g}
}

// Set queues a level change for one pin. Later changes to the same pin
// within the batch override earlier ones. Validation errors stick to
// the transaction and surface at Commit.
func (t *Transaction) Set(p Pin, level Level) *Transaction {
	if t.err != nil {
		return t
	}
	if err := t.g.checkPin(p); err != nil {
		t.err = err
		return t
	}
	grp := p.Group()
	if level == High {
		t.set[grp] |= p.mask()
		t.clear[grp] &^= p.mask()
	} else {
		t.clear[grp] |= p.mask()
		t.set[grp] &^= p.mask()
	}
	return t
}

// Commit writes the queued changes and resets the transaction for
// reuse. Nothing is written when any queued pin failed validation.
func (t *Transaction) Commit() error {
	if t.err != nil {
		err := t.err
		t.err = nil
		return maskAny(err)
	}
	for grp := Group0; grp <= Group1; grp++ {
		if t.set[grp] != 0 {
			if err := t.g.writeGroupReg(grp, regSet0, t.set[grp]); err != nil {
				return maskAny(err)
			}
		}
		if t.clear[grp] != 0 {
			if err := t.g.writeGroupReg(grp, regClear0, t.clear[grp]); err != nil {
				return maskAny(err)
			}
		}
		t.set[grp], t.clear[grp] = 0, 0
	}
	return nil
}
