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

package uart

import (
	"fmt"
	"sync/atomic"

	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/atexit"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/curated"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/logger"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/ring"
)

// ChipType is the type of chip detected when the driver was opened.
type ChipType int

// List of valid ChipType values.
const (
	Chip8250 ChipType = iota
	Chip16550
)

func (c ChipType) String() string {
	switch c {
	case Chip8250:
		return "8250"
	case Chip16550:
		return "16550"
	}
	return "unknown chip"
}

// Stats are running totals kept by the driver.
type Stats struct {
	Interrupts     uint64
	Received       uint64
	Transmitted    uint64
	ReceiveDropped uint64
	SendDropped    uint64
}

func (s Stats) String() string {
	return fmt.Sprintf("irq=%d rx=%d tx=%d rxdrop=%d txdrop=%d",
		s.Interrupts, s.Received, s.Transmitted, s.ReceiveDropped, s.SendDropped)
}

// Driver for a single UART.
type Driver struct {
	host  Host
	hooks *atexit.Hooks

	open atomic.Bool
	base uint16
	irq  int
	regs [numRegs]uint16
	chip ChipType

	send *ring.Buffer
	recv *ring.Buffer

	// state of the machine before the driver was opened
	prevVector func()
	prevMCR    uint8
	picMask    uint8

	// the chip will raise a transmit interrupt when it is ready for more
	// characters. only accessed with interrupts disabled or from the
	// interrupt handler
	primed bool

	hookID int

	interrupts     atomic.Uint64
	received       atomic.Uint64
	transmitted    atomic.Uint64
	receiveDropped atomic.Uint64
	sendDropped    atomic.Uint64
}

// NewDriver is the preferred method of initialisation for the Driver type.
// The hooks argument can be nil, in which case the driver cannot be closed
// automatically on exit.
func NewDriver(host Host, hooks *atexit.Hooks) *Driver {
	return &Driver{
		host:  host,
		hooks: hooks,
		send:  ring.MustBuffer(ringSize),
		recv:  ring.MustBuffer(ringSize),
	}
}

func (d *Driver) String() string {
	if !d.open.Load() {
		return "uart: closed"
	}
	return fmt.Sprintf("uart: %s at %#04x irq %d", d.chip, d.base, d.irq)
}

// IsOpen returns true if the driver is open.
func (d *Driver) IsOpen() bool {
	return d.open.Load()
}

// Chip returns the type of chip detected when the driver was opened.
func (d *Driver) Chip() ChipType {
	return d.chip
}

// Open the UART at the base port, using the IRQ line and the baud rate
// given. The only error that the caller can recover from is IrqUnavailable.
func (d *Driver) Open(base uint16, irq int, rate int) error {
	if d.open.Load() {
		return curated.Errorf(AlreadyOpen, d.base)
	}
	if irq < 1 || irq > 7 {
		return curated.Errorf(IrqUnavailable, irq)
	}
	if rate <= 0 || rate > clock {
		return curated.Errorf(BadBaud, rate)
	}

	d.base = base
	d.irq = irq
	d.picMask = 1 << irq
	for i := range d.regs {
		d.regs[i] = base + uint16(i)
	}

	d.send.Clear()
	d.recv.Clear()
	d.primed = false

	// a chip with a working FIFO reports both FIFO bits after the FIFO has
	// been enabled. anything else is treated as an 8250 and the FIFO is
	// switched off
	d.host.Out(d.regs[regFCR], fcrEnableAndClear)
	if d.host.In(d.regs[regIIR])&iirFIFOMask == iirFIFOMask {
		d.chip = Chip16550
	} else {
		d.chip = Chip8250
		d.host.Out(d.regs[regFCR], 0x00)
	}

	d.host.Disable()
	d.prevVector = d.host.Vector(vectorBase + irq)
	d.host.SetVector(vectorBase+irq, d.isr)
	d.host.Enable()

	d.setBaud(clock / rate)
	d.host.Out(d.regs[regLCR], lcr8N1)

	d.prevMCR = d.host.In(d.regs[regMCR])
	d.host.Out(d.regs[regMCR], mcrDTR|mcrRTS|mcrOUT2)

	// clear any conditions left over from before the driver was opened
	d.host.In(d.regs[regLSR])
	d.host.In(d.regs[regMSR])
	d.host.In(d.regs[regData])
	d.host.In(d.regs[regIIR])

	d.host.Disable()
	d.host.Out(picData, d.host.In(picData)&^d.picMask)
	d.host.Enable()

	d.host.Out(d.regs[regIER], ierReceive|ierTransmit)

	if d.hooks != nil {
		d.hookID = d.hooks.Register(func() {
			_ = d.Close()
		})
	}
	d.open.Store(true)

	logger.Logf(logger.Allow, "uart", "%s chip at %#04x irq %d, %d baud", d.chip, base, irq, rate)

	return nil
}

// Close the driver and restore the machine to the state it was in before
// Open().
func (d *Driver) Close() error {
	if !d.open.CompareAndSwap(true, false) {
		return nil
	}

	// the interrupt is masked first so that nothing can reach the vector
	// after it has been restored
	d.host.Disable()
	d.host.Out(picData, d.host.In(picData)|d.picMask)
	d.host.Out(d.regs[regIER], 0x00)
	d.host.Out(d.regs[regMCR], d.prevMCR)
	d.host.SetVector(vectorBase+d.irq, d.prevVector)
	d.primed = false
	d.host.Enable()

	if d.hooks != nil {
		d.hooks.Unregister(d.hookID)
	}

	logger.Logf(logger.Allow, "uart", "closed %#04x", d.base)

	return nil
}

// isr is the interrupt service routine. It is called with interrupts disabled.
func (d *Driver) isr() {
	d.interrupts.Add(1)

	for {
		iir := d.host.In(d.regs[regIIR])
		if iir&iirNone != 0 {
			break // for loop
		}

		switch (iir >> 1) & 0x03 {
		case sourceModemStatus:
			d.host.In(d.regs[regMSR])

		case sourceTransmit:
			n := 1
			if d.chip == Chip16550 {
				n = burst
			}
			for i := 0; i < n; i++ {
				b, ok := d.send.Get()
				if !ok {
					d.primed = false
					break // for loop
				}
				d.host.Out(d.regs[regData], b)
				d.transmitted.Add(1)
			}

		case sourceReceive:
			for {
				if d.recv.Put(d.host.In(d.regs[regData])) {
					d.received.Add(1)
				} else {
					d.receiveDropped.Add(1)
				}
				if d.chip != Chip16550 || d.host.In(d.regs[regLSR])&lsrDataReady == 0 {
					break // for loop
				}
			}

		case sourceLineStatus:
			d.host.In(d.regs[regLSR])
		}
	}

	d.host.Out(picCommand, picEOI)
}

// Send queues a byte for transmission. The byte is dropped if the send ring
// is full.
func (d *Driver) Send(b byte) {
	if !d.send.Put(b) {
		d.sendDropped.Add(1)
		return
	}

	d.host.Disable()
	defer d.host.Enable()

	// if the transmitter is idle no transmit interrupt will happen by itself.
	// turning the interrupt off and on again makes the chip raise it
	if !d.primed {
		ier := d.host.In(d.regs[regIER])
		d.host.Out(d.regs[regIER], ier&^ierTransmit)
		d.host.Out(d.regs[regIER], ier|ierTransmit)
		d.primed = true
	}
}

// Recv removes the oldest received byte. Returns false if nothing has been
// received.
func (d *Driver) Recv() (byte, bool) {
	return d.recv.Get()
}

// RecvLen returns the number of bytes waiting to be read.
func (d *Driver) RecvLen() int {
	return d.recv.Used()
}

// SendLen returns the number of bytes queued for transmission that have not
// yet been written to the chip.
func (d *Driver) SendLen() int {
	return d.send.Used()
}

// Drain discards everything waiting in the receive ring.
func (d *Driver) Drain() int {
	return d.recv.Drain()
}

// setBaud programs the divisor latch. the DLAB bit changes the meaning of
// the first two registers so the sequence must not be interrupted
func (d *Driver) setBaud(divisor int) {
	d.host.Disable()
	defer d.host.Enable()

	lcr := d.host.In(d.regs[regLCR])
	d.host.Out(d.regs[regLCR], lcr|lcrDLAB)
	d.host.Out(d.regs[regData], uint8(divisor))
	d.host.Out(d.regs[regIER], uint8(divisor>>8))
	d.host.Out(d.regs[regLCR], lcr&^lcrDLAB)
}

// SetBaud changes the baud rate of an open driver.
func (d *Driver) SetBaud(rate int) error {
	if !d.open.Load() {
		return curated.Errorf(NotOpen)
	}
	if rate <= 0 || rate > clock {
		return curated.Errorf(BadBaud, rate)
	}
	d.setBaud(clock / rate)
	return nil
}

// Baud returns the baud rate programmed into the chip. Returns zero if the
// driver is not open.
func (d *Driver) Baud() int {
	if !d.open.Load() {
		return 0
	}

	d.host.Disable()
	defer d.host.Enable()

	lcr := d.host.In(d.regs[regLCR])
	d.host.Out(d.regs[regLCR], lcr|lcrDLAB)
	lo := d.host.In(d.regs[regData])
	hi := d.host.In(d.regs[regIER])
	d.host.Out(d.regs[regLCR], lcr&^lcrDLAB)

	divisor := int(hi)<<8 | int(lo)
	if divisor == 0 {
		return 0
	}
	return clock / divisor
}

// Stats returns the running totals of the driver.
func (d *Driver) Stats() Stats {
	return Stats{
		Interrupts:     d.interrupts.Load(),
		Received:       d.received.Load(),
		Transmitted:    d.transmitted.Load(),
		ReceiveDropped: d.receiveDropped.Load(),
		SendDropped:    d.sendDropped.Load(),
	}
}
