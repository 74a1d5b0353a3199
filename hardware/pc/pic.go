// This file is part of AmuletsArmor.
//
// AmuletsArmor is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// AmuletsArmor is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with AmuletsArmor.  If not, see <https://www.gnu.org/licenses/>.

package pc

// PIC port addresses.
const (
	PICCommand uint16 = 0x20
	PICData    uint16 = 0x21
)

// PIC command values written to PICCommand.
const (
	// OCW2 non-specific end of interrupt
	EOI uint8 = 0x20

	// OCW2 specific end of interrupt. the level is in the lower three bits
	specificEOI uint8 = 0x60

	// OCW3 read register commands
	readIRR uint8 = 0x0a
	readISR uint8 = 0x0b

	// ICW1. bit 4 set
	icw1 uint8 = 0x10
)

// VectorBase is the vector number of IRQ 0. The handler for IRQ n is installed
// at vector VectorBase+n.
const VectorBase = 8

// NumIRQ is the number of interrupt lines on the master PIC.
const NumIRQ = 8

type pic struct {
	irr uint8 // interrupt request register
	isr uint8 // in-service register
	imr uint8 // interrupt mask register

	// value returned by a read of the command port
	readISR bool
}

func newPIC() pic {
	// all lines are masked after reset
	return pic{imr: 0xff}
}

// next returns the highest priority request that can be delivered. false if
// there is no such request or if an interrupt is already in service.
func (p *pic) next() (int, bool) {
	if p.isr != 0 {
		return 0, false
	}
	req := p.irr &^ p.imr
	for i := 0; i < NumIRQ; i++ {
		if req&(1<<i) != 0 {
			return i, true
		}
	}
	return 0, false
}

// eoi clears the highest priority in-service bit.
func (p *pic) eoi() {
	for i := 0; i < NumIRQ; i++ {
		if p.isr&(1<<i) != 0 {
			p.isr &^= 1 << i
			return
		}
	}
}

func (p *pic) command(v uint8) {
	switch {
	case v == EOI:
		p.eoi()
	case v&0xf8 == specificEOI:
		p.isr &^= 1 << (v & 0x07)
	case v == readIRR:
		p.readISR = false
	case v == readISR:
		p.readISR = true
	case v&icw1 == icw1:
		// initialisation resets the state of the controller. the remaining
		// ICW bytes written to the data port are treated as mask values, which
		// is harmless because the final write of any real initialisation
		// sequence is the mask
		*p = newPIC()
	}
}

func (p *pic) status() uint8 {
	if p.readISR {
		return p.isr
	}
	return p.irr
}
