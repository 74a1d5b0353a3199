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

package bios

import (
	"runtime"
	"time"

	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/hardware/ns16550"
)

// Bus is the I/O port space of the machine.
type Bus interface {
	In(port uint16) uint8
	Out(port uint16, v uint8)
}

// StandardBases are the I/O addresses of COM1 to COM4.
var StandardBases = []uint16{0x3f8, 0x2f8, 0x3e8, 0x2e8}

// DefaultTimeout is how long the machine gate waits for the UART before
// reporting a timeout.
const DefaultTimeout = 500 * time.Millisecond

// MachineGate is a polled BIOS for a machine with 8250 compatible UARTs.
type MachineGate struct {
	bus   Bus
	bases []uint16

	// Timeout can be changed before the gate is used
	Timeout time.Duration
}

// NewMachineGate is the preferred method of initialisation for the
// MachineGate type. If bases is nil then StandardBases is used.
func NewMachineGate(bus Bus, bases []uint16) *MachineGate {
	if bases == nil {
		bases = StandardBases
	}
	return &MachineGate{
		bus:     bus,
		bases:   bases,
		Timeout: DefaultTimeout,
	}
}

func (g *MachineGate) base(port int) (uint16, bool) {
	if port < 0 || port >= len(g.bases) || g.bases[port] == 0 {
		return 0, false
	}
	return g.bases[port], true
}

// status reads the line and modem status registers
func (g *MachineGate) status(base uint16) Status {
	lsr := g.bus.In(base + ns16550.LSR)
	msr := g.bus.In(base + ns16550.MSR)
	return Status(lsr)<<8 | Status(msr)
}

// wait polls the status until all bits in mask are set. Timeout is set in the
// returned status if the deadline is reached first
func (g *MachineGate) wait(base uint16, mask Status) Status {
	deadline := time.Now().Add(g.Timeout)
	for {
		st := g.status(base)
		if st&mask == mask {
			return st
		}
		if time.Now().After(deadline) {
			return st | Timeout
		}
		runtime.Gosched()
	}
}

// Init implements the Gate interface. DTR and RTS are asserted so that a
// peer waiting on handshake lines sees the port as ready.
func (g *MachineGate) Init(port int, param uint8) Status {
	base, ok := g.base(port)
	if !ok {
		return Timeout
	}

	divisor := uint16(ns16550.Clock / paramRate(param))
	lcr := param & 0x1f

	g.bus.Out(base+ns16550.LCR, ns16550.LCRDLAB)
	g.bus.Out(base+ns16550.DLL, uint8(divisor))
	g.bus.Out(base+ns16550.DLM, uint8(divisor>>8))
	g.bus.Out(base+ns16550.LCR, lcr)

	// nothing answered on the bus
	if g.bus.In(base+ns16550.LCR) != lcr {
		return Timeout
	}

	g.bus.Out(base+ns16550.IER, 0x00)
	g.bus.Out(base+ns16550.MCR, ns16550.MCRDTR|ns16550.MCRRTS)

	return g.status(base)
}

// Send implements the Gate interface.
func (g *MachineGate) Send(port int, b byte) Status {
	base, ok := g.base(port)
	if !ok {
		return Timeout
	}

	g.bus.Out(base+ns16550.MCR, ns16550.MCRDTR|ns16550.MCRRTS)

	st := g.wait(base, DSR|CTS|THRE)
	if st&Timeout == Timeout {
		return st
	}
	g.bus.Out(base+ns16550.THR, b)
	return st
}

// Receive implements the Gate interface.
func (g *MachineGate) Receive(port int) (byte, Status) {
	base, ok := g.base(port)
	if !ok {
		return 0, Timeout
	}

	st := g.wait(base, DSR|DataReady)
	if st&Timeout == Timeout {
		return 0, st
	}
	return g.bus.In(base + ns16550.RBR), st
}

// Status implements the Gate interface.
func (g *MachineGate) Status(port int) Status {
	base, ok := g.base(port)
	if !ok {
		return Timeout
	}
	return g.status(base)
}

// Close implements the Gate interface. The handshake lines are dropped.
func (g *MachineGate) Close(port int) {
	if base, ok := g.base(port); ok {
		g.bus.Out(base+ns16550.MCR, 0x00)
	}
}
