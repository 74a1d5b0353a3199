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

package ns16550

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Model of UART chip.
type Model int

// List of valid Model values.
const (
	Model8250 Model = iota
	Model16550
	Model16550A
)

func (m Model) String() string {
	switch m {
	case Model8250:
		return "8250"
	case Model16550:
		return "16550"
	case Model16550A:
		return "16550A"
	}
	return "unknown UART model"
}

// Line is the far end of the serial line. Characters leaving the chip are
// passed to Transmit().
type Line interface {
	Transmit(b byte)
}

// Control is an optional extension of the Line interface. If the line
// connected to the chip implements Control it is told about changes to the
// line settings and modem control outputs.
type Control interface {
	LineControl(divisor uint16, lcr uint8)
	ModemControl(mcr uint8)
}

// Chip is an emulated UART.
type Chip struct {
	model Model
	raise func()

	// held for the duration of a call to Line.Transmit() so that characters
	// leave the chip in order. never acquired while crit is held
	txCrit sync.Mutex

	crit sync.Mutex
	line Line

	dll uint8
	dlm uint8
	ier uint8
	lcr uint8
	mcr uint8
	scr uint8

	// modem status inputs in the upper nibble and delta bits in the lower
	msr uint8

	fifo bool
	rx   []byte
	tx   []byte

	// transmitter holding register empty interrupt is waiting to be reported
	threPending bool

	// overrun has happened since LSR was last read
	overrun bool

	// level of the interrupt output at the last update
	output bool

	overruns int
}

// New is the preferred method of initialisation for the Chip type. The raise
// function may be nil.
func New(model Model, raise func()) *Chip {
	c := &Chip{
		model: model,
		raise: raise,
		rx:    make([]byte, 0, fifoSize),
		tx:    make([]byte, 0, fifoSize),
	}
	return c
}

func (c *Chip) String() string {
	c.crit.Lock()
	defer c.crit.Unlock()
	return fmt.Sprintf("%s: IER=%02x LCR=%02x MCR=%02x rx=%d tx=%d", c.model, c.ier, c.lcr, c.mcr, len(c.rx), len(c.tx))
}

// Model returns the model of the chip.
func (c *Chip) Model() Model {
	return c.model
}

// Connect the chip to a line. A nil line disconnects the chip and characters
// transmitted are lost.
func (c *Chip) Connect(line Line) {
	c.crit.Lock()
	c.line = line
	div, lcr, mcr := c.divisor(), c.lcr, c.mcr
	c.crit.Unlock()

	if ctl, ok := line.(Control); ok {
		ctl.LineControl(div, lcr)
		ctl.ModemControl(mcr)
	}
}

func (c *Chip) divisor() uint16 {
	return uint16(c.dlm)<<8 | uint16(c.dll)
}

// Divisor returns the value of the divisor latch.
func (c *Chip) Divisor() uint16 {
	c.crit.Lock()
	defer c.crit.Unlock()
	return c.divisor()
}

// Overruns returns the number of characters lost because the receiver was
// full.
func (c *Chip) Overruns() int {
	c.crit.Lock()
	defer c.crit.Unlock()
	return c.overruns
}

func (c *Chip) depth() int {
	if c.fifo {
		return fifoSize
	}
	return 1
}

// iir returns the highest priority interrupt condition that is both pending
// and enabled.
func (c *Chip) iir() uint8 {
	switch {
	case c.overrun && c.ier&IERLineStatus != 0:
		return IIRLineStatus
	case len(c.rx) > 0 && c.ier&IERReceive != 0:
		return IIRReceive
	case c.threPending && c.ier&IERTransmit != 0:
		return IIRTransmit
	case c.msr&0x0f != 0 && c.ier&IERModemStatus != 0:
		return IIRModemStatus
	}
	return IIRNone
}

// update the interrupt output. must be called with crit held and after every
// change of state
func (c *Chip) update() {
	level := c.iir() != IIRNone && c.mcr&MCROUT2 != 0
	rising := level && !c.output
	c.output = level
	if rising && c.raise != nil {
		c.raise()
	}
}

// receive a character into the receiver. must be called with crit held.
func (c *Chip) receive(b byte) {
	if len(c.rx) < c.depth() {
		c.rx = append(c.rx, b)
	} else {
		c.overrun = true
		c.overruns++

		// without a FIFO the new character replaces the one in the holding
		// register. with a FIFO the character in the shift register is lost
		if !c.fifo {
			c.rx[0] = b
		}
	}
	c.update()
}

// Receive a character from the line.
func (c *Chip) Receive(b byte) {
	c.crit.Lock()
	defer c.crit.Unlock()

	// the receiver is disconnected from the line in loopback mode
	if c.mcr&MCRLoopback != 0 {
		return
	}
	c.receive(b)
}

// Read implements the pc.Device interface.
func (c *Chip) Read(offset uint16) uint8 {
	c.crit.Lock()
	defer c.crit.Unlock()
	defer c.update()

	switch offset {
	case RBR:
		if c.lcr&LCRDLAB != 0 {
			return c.dll
		}
		if len(c.rx) == 0 {
			return 0
		}
		v := c.rx[0]
		c.rx = append(c.rx[:0], c.rx[1:]...)
		return v

	case IER:
		if c.lcr&LCRDLAB != 0 {
			return c.dlm
		}
		return c.ier

	case IIR:
		v := c.iir()
		if v == IIRTransmit {
			c.threPending = false
		}
		if c.fifo {
			switch c.model {
			case Model16550:
				v |= iirFIFOBroken
			case Model16550A:
				v |= iirFIFO
			}
		}
		return v

	case LCR:
		return c.lcr

	case MCR:
		return c.mcr

	case LSR:
		v := LSRTHRE | LSRTEMT
		if len(c.tx) > 0 {
			v = 0
		}
		if len(c.rx) > 0 {
			v |= LSRDataReady
		}
		if c.overrun {
			v |= LSROverrun
			c.overrun = false
		}
		return v

	case MSR:
		v := c.msr
		c.msr &= 0xf0
		return v

	case SCR:
		return c.scr
	}

	return 0xff
}

// Write implements the pc.Device interface.
func (c *Chip) Write(offset uint16, v uint8) {
	var lineControl bool
	var modemControl bool

	c.crit.Lock()

	switch offset {
	case THR:
		if c.lcr&LCRDLAB != 0 {
			c.dll = v
			lineControl = true
			break // switch
		}
		if len(c.tx) < c.depth() {
			c.tx = append(c.tx, v)
		}
		c.threPending = false

	case IER:
		if c.lcr&LCRDLAB != 0 {
			c.dlm = v
			lineControl = true
			break // switch
		}

		// enabling the transmit interrupt while the holding register is
		// empty causes the interrupt immediately
		if v&IERTransmit != 0 && c.ier&IERTransmit == 0 && len(c.tx) == 0 {
			c.threPending = true
		}
		c.ier = v & 0x0f

	case FCR:
		if c.model == Model8250 {
			break // switch
		}
		enable := v&FCREnable != 0
		if enable != c.fifo {
			c.rx = c.rx[:0]
			c.tx = c.tx[:0]
		}
		c.fifo = enable
		if v&FCRClearRx != 0 {
			c.rx = c.rx[:0]
		}
		if v&FCRClearTx != 0 {
			c.tx = c.tx[:0]
		}

	case LCR:
		c.lcr = v
		lineControl = true

	case MCR:
		c.mcr = v & 0x1f
		modemControl = true
		if c.mcr&MCRLoopback != 0 {
			c.loopbackModem()
		}

	case SCR:
		c.scr = v
	}

	c.update()

	line := c.line
	div, lcr, mcr := c.divisor(), c.lcr, c.mcr
	c.crit.Unlock()

	if ctl, ok := line.(Control); ok {
		if lineControl {
			ctl.LineControl(div, lcr)
		}
		if modemControl {
			ctl.ModemControl(mcr)
		}
	}
}

// loopbackModem sets the modem status inputs from the modem control outputs,
// as they are wired in loopback mode. must be called with crit held.
func (c *Chip) loopbackModem() {
	var cts, dsr, ri, dcd bool
	cts = c.mcr&MCRRTS != 0
	dsr = c.mcr&MCRDTR != 0
	ri = c.mcr&MCROUT1 != 0
	dcd = c.mcr&MCROUT2 != 0
	c.setModemStatus(cts, dsr, ri, dcd)
}

func (c *Chip) setModemStatus(cts, dsr, ri, dcd bool) {
	var v uint8
	if cts {
		v |= MSRCTS
	}
	if dsr {
		v |= MSRDSR
	}
	if ri {
		v |= MSRRI
	}
	if dcd {
		v |= MSRDCD
	}

	old := c.msr & 0xf0
	delta := c.msr & 0x0f
	if (old^v)&MSRCTS != 0 {
		delta |= MSRDeltaCTS
	}
	if (old^v)&MSRDSR != 0 {
		delta |= MSRDeltaDSR
	}
	if old&MSRRI != 0 && v&MSRRI == 0 {
		delta |= MSRTrailRI
	}
	if (old^v)&MSRDCD != 0 {
		delta |= MSRDeltaDCD
	}
	c.msr = v | delta
}

// SetModemStatus sets the modem status inputs of the chip. Changes are
// recorded in the delta bits of the MSR.
func (c *Chip) SetModemStatus(cts, dsr, ri, dcd bool) {
	c.crit.Lock()
	defer c.crit.Unlock()

	if c.mcr&MCRLoopback != 0 {
		return
	}
	c.setModemStatus(cts, dsr, ri, dcd)
	c.update()
}

// Tick advances the transmitter by one character time. The oldest character
// in the transmit FIFO leaves the chip. Returns false if there was nothing to
// transmit.
func (c *Chip) Tick() bool {
	c.txCrit.Lock()
	defer c.txCrit.Unlock()

	c.crit.Lock()
	if len(c.tx) == 0 {
		c.crit.Unlock()
		return false
	}

	b := c.tx[0]
	c.tx = append(c.tx[:0], c.tx[1:]...)
	if len(c.tx) == 0 {
		c.threPending = true
	}

	line := c.line
	loopback := c.mcr&MCRLoopback != 0
	if loopback {
		c.receive(b)
	}
	c.update()
	c.crit.Unlock()

	if !loopback && line != nil {
		line.Transmit(b)
	}
	return true
}

// CharacterTime returns the time taken to transmit one character with the
// current settings of the divisor latch and line control register. Returns
// zero if the divisor latch has not been programmed.
func (c *Chip) CharacterTime() time.Duration {
	c.crit.Lock()
	defer c.crit.Unlock()
	return characterTime(c.divisor(), c.lcr)
}

func characterTime(divisor uint16, lcr uint8) time.Duration {
	if divisor == 0 {
		return 0
	}

	// start bit, data bits, optional parity and one or two stop bits
	bits := 1 + 5 + int(lcr&LCRWordLength) + 1
	if lcr&LCRParity != 0 {
		bits++
	}
	if lcr&LCRStopBits != 0 {
		bits++
	}

	return time.Duration(bits) * time.Second * time.Duration(divisor) / Clock
}

// Run calls Tick() at the rate set by the divisor latch and line control
// register until the context is cancelled. The settings are sampled every
// millisecond so changes in line speed take effect promptly.
func (c *Chip) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	var owed time.Duration
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			owed += now.Sub(last)
			last = now

			ct := c.CharacterTime()
			if ct == 0 {
				owed = 0
				continue // for loop
			}
			for owed >= ct {
				owed -= ct
				if !c.Tick() {
					// an idle line does not accumulate credit
					owed = 0
				}
			}
		}
	}
}
