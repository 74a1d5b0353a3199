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

package ns16550_test

import (
	"testing"
	"time"

	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/hardware/ns16550"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/test"
)

// line records characters and control changes from the chip
type line struct {
	sent    []byte
	divisor uint16
	lcr     uint8
	mcr     uint8
}

func (l *line) Transmit(b byte) {
	l.sent = append(l.sent, b)
}

func (l *line) LineControl(divisor uint16, lcr uint8) {
	l.divisor = divisor
	l.lcr = lcr
}

func (l *line) ModemControl(mcr uint8) {
	l.mcr = mcr
}

func TestFIFODetection(t *testing.T) {
	for _, tc := range []struct {
		model ns16550.Model
		bits  uint8
	}{
		{model: ns16550.Model8250, bits: 0x00},
		{model: ns16550.Model16550, bits: 0x80},
		{model: ns16550.Model16550A, bits: 0xc0},
	} {
		c := ns16550.New(tc.model, nil)
		c.Write(ns16550.FCR, 0x07)
		test.ExpectEquality(t, c.Read(ns16550.IIR)&0xc0, tc.bits, tc.model)

		// disabling the FIFO clears the bits
		c.Write(ns16550.FCR, 0x00)
		test.ExpectEquality(t, c.Read(ns16550.IIR), ns16550.IIRNone, tc.model)
	}
}

func TestDivisorLatch(t *testing.T) {
	c := ns16550.New(ns16550.Model16550A, nil)
	l := &line{}
	c.Connect(l)

	c.Write(ns16550.IER, 0x05)
	c.Write(ns16550.LCR, ns16550.LCRDLAB)
	c.Write(ns16550.DLL, 12)
	c.Write(ns16550.DLM, 0)
	c.Write(ns16550.LCR, 0x03)

	test.ExpectEquality(t, c.Divisor(), 12)
	test.ExpectEquality(t, l.divisor, 12)
	test.ExpectEquality(t, l.lcr, 0x03)

	// the IER is not affected by writes while DLAB is set
	test.ExpectEquality(t, c.Read(ns16550.IER), 0x05)

	// ten bits per character at 9600 baud
	test.ExpectEquality(t, c.CharacterTime(), 10*time.Second/9600)
}

func TestTransmit(t *testing.T) {
	var raised int
	c := ns16550.New(ns16550.Model16550A, func() { raised++ })
	l := &line{}
	c.Connect(l)
	c.Write(ns16550.FCR, 0x07)
	c.Write(ns16550.MCR, ns16550.MCRDTR|ns16550.MCRRTS|ns16550.MCROUT2)
	test.ExpectEquality(t, l.mcr, 0x0b)

	// enabling the transmit interrupt with an empty holding register causes
	// an interrupt
	c.Write(ns16550.IER, ns16550.IERTransmit)
	test.ExpectEquality(t, raised, 1)
	test.ExpectEquality(t, c.Read(ns16550.IIR)&0x0f, ns16550.IIRTransmit)

	// reading the IIR cleared the condition
	test.ExpectEquality(t, c.Read(ns16550.IIR)&0x0f, ns16550.IIRNone)

	for _, b := range []byte("hello") {
		c.Write(ns16550.THR, b)
	}
	test.ExpectEquality(t, c.Read(ns16550.LSR)&ns16550.LSRTHRE, 0)

	for c.Tick() {
	}
	test.ExpectEquality(t, string(l.sent), "hello")
	test.ExpectEquality(t, c.Read(ns16550.LSR)&ns16550.LSRTHRE, ns16550.LSRTHRE)

	// transmit FIFO emptied
	test.ExpectEquality(t, raised, 2)
	test.ExpectEquality(t, c.Read(ns16550.IIR)&0x0f, ns16550.IIRTransmit)
}

func TestReceiveFIFO(t *testing.T) {
	var raised int
	c := ns16550.New(ns16550.Model16550A, func() { raised++ })
	c.Write(ns16550.FCR, 0x07)
	c.Write(ns16550.MCR, ns16550.MCROUT2)
	c.Write(ns16550.IER, ns16550.IERReceive|ns16550.IERLineStatus)

	for i := 0; i < 17; i++ {
		c.Receive(byte(i))
	}
	test.ExpectEquality(t, c.Overruns(), 1)

	// line status has priority over received data
	test.ExpectEquality(t, raised, 1)
	test.ExpectEquality(t, c.Read(ns16550.IIR)&0x0f, ns16550.IIRLineStatus)
	lsr := c.Read(ns16550.LSR)
	test.ExpectEquality(t, lsr&ns16550.LSROverrun, ns16550.LSROverrun)
	test.ExpectEquality(t, c.Read(ns16550.IIR)&0x0f, ns16550.IIRReceive)

	// the FIFO kept the first sixteen characters
	for i := 0; i < 16; i++ {
		test.ExpectEquality(t, c.Read(ns16550.LSR)&ns16550.LSRDataReady, ns16550.LSRDataReady)
		test.ExpectEquality(t, c.Read(ns16550.RBR), uint8(i))
	}
	test.ExpectEquality(t, c.Read(ns16550.LSR)&ns16550.LSRDataReady, 0)
	test.ExpectEquality(t, c.Read(ns16550.IIR)&0x0f, ns16550.IIRNone)
}

func TestReceiveHoldingRegister(t *testing.T) {
	c := ns16550.New(ns16550.Model8250, nil)

	// FIFO control is ignored by the 8250
	c.Write(ns16550.FCR, 0x07)
	c.Receive('a')
	c.Receive('b')
	test.ExpectEquality(t, c.Overruns(), 1)
	test.ExpectEquality(t, c.Read(ns16550.RBR), 'b')
	test.ExpectEquality(t, c.Read(ns16550.LSR)&ns16550.LSRDataReady, 0)
}

func TestInterruptGate(t *testing.T) {
	var raised int
	c := ns16550.New(ns16550.Model16550A, func() { raised++ })
	c.Write(ns16550.IER, ns16550.IERReceive)
	c.Receive('a')
	test.ExpectEquality(t, raised, 0)

	// condition is still pending when OUT2 is raised
	c.Write(ns16550.MCR, ns16550.MCROUT2)
	test.ExpectEquality(t, raised, 1)
}

func TestLoopback(t *testing.T) {
	c := ns16550.New(ns16550.Model16550A, nil)
	l := &line{}
	c.Connect(l)

	c.Write(ns16550.MCR, ns16550.MCRLoopback|ns16550.MCRDTR|ns16550.MCRRTS)
	msr := c.Read(ns16550.MSR)
	test.ExpectEquality(t, msr&0xf0, ns16550.MSRCTS|ns16550.MSRDSR)

	// characters from the line are ignored in loopback mode
	c.Receive('x')
	c.Write(ns16550.THR, 'A')
	test.ExpectSuccess(t, c.Tick())
	test.ExpectEquality(t, len(l.sent), 0)
	test.ExpectEquality(t, c.Read(ns16550.RBR), 'A')
	test.ExpectEquality(t, c.Read(ns16550.LSR)&ns16550.LSRDataReady, 0)
}

func TestModemStatus(t *testing.T) {
	var raised int
	c := ns16550.New(ns16550.Model16550A, func() { raised++ })
	c.Write(ns16550.MCR, ns16550.MCROUT2)
	c.Write(ns16550.IER, ns16550.IERModemStatus)

	c.SetModemStatus(true, true, false, true)
	test.ExpectEquality(t, raised, 1)
	test.ExpectEquality(t, c.Read(ns16550.IIR)&0x0f, ns16550.IIRModemStatus)

	msr := c.Read(ns16550.MSR)
	test.ExpectEquality(t, msr, ns16550.MSRCTS|ns16550.MSRDSR|ns16550.MSRDCD|
		ns16550.MSRDeltaCTS|ns16550.MSRDeltaDSR|ns16550.MSRDeltaDCD)

	// reading MSR clears the delta bits and the interrupt
	test.ExpectEquality(t, c.Read(ns16550.MSR)&0x0f, 0)
	test.ExpectEquality(t, c.Read(ns16550.IIR)&0x0f, ns16550.IIRNone)
}
