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

// Package ns16550 emulates the National Semiconductor family of UART chips
// found in PC serial ports. Three models are available:
//
//	Model8250	no FIFO. FIFO control writes are ignored
//	Model16550	FIFO with the fault that made the original part unusable. the
//			IIR reports 0x80 in the top bits when the FIFO is enabled
//	Model16550A	working 16 byte FIFO. the IIR reports 0xc0 when enabled
//
// The chip implements the pc.Device interface and is attached to the I/O bus
// of an emulated PC with eight ports. Register offsets follow the real part:
//
//	0	RBR (read), THR (write), DLL (DLAB set)
//	1	IER, DLM (DLAB set)
//	2	IIR (read), FCR (write)
//	3	LCR
//	4	MCR
//	5	LSR
//	6	MSR
//	7	SCR
//
// Characters written to the THR are queued in the transmit FIFO and leave the
// chip one at a time when Tick() is called. Each call represents one character
// time on the line. Run() calls Tick() at the rate implied by the divisor latch
// and line control register. Characters arrive from the line with Receive().
//
// The interrupt output is gated by the OUT2 bit of the MCR, as it is on a PC
// serial card. The raise function given to New() is called on every rising
// edge of the output.
package ns16550
