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

// Register offsets.
const (
	RBR = 0
	THR = 0
	DLL = 0
	IER = 1
	DLM = 1
	IIR = 2
	FCR = 2
	LCR = 3
	MCR = 4
	LSR = 5
	MSR = 6
	SCR = 7
)

// NumRegisters is the number of I/O ports occupied by the chip.
const NumRegisters = 8

// IER bits.
const (
	IERReceive     uint8 = 0x01
	IERTransmit    uint8 = 0x02
	IERLineStatus  uint8 = 0x04
	IERModemStatus uint8 = 0x08
)

// IIR values. The interrupt source is in bits 1 and 2. Bit 0 is set when no
// interrupt is pending.
const (
	IIRNone        uint8 = 0x01
	IIRModemStatus uint8 = 0x00
	IIRTransmit    uint8 = 0x02
	IIRReceive     uint8 = 0x04
	IIRLineStatus  uint8 = 0x06
	iirFIFOBroken  uint8 = 0x80
	iirFIFO        uint8 = 0xc0
)

// FCR bits.
const (
	FCREnable  uint8 = 0x01
	FCRClearRx uint8 = 0x02
	FCRClearTx uint8 = 0x04
)

// LCR bits.
const (
	LCRWordLength uint8 = 0x03
	LCRStopBits   uint8 = 0x04
	LCRParity     uint8 = 0x08
	LCRDLAB       uint8 = 0x80
)

// MCR bits.
const (
	MCRDTR      uint8 = 0x01
	MCRRTS      uint8 = 0x02
	MCROUT1     uint8 = 0x04
	MCROUT2     uint8 = 0x08
	MCRLoopback uint8 = 0x10
)

// LSR bits.
const (
	LSRDataReady uint8 = 0x01
	LSROverrun   uint8 = 0x02
	LSRTHRE      uint8 = 0x20
	LSRTEMT      uint8 = 0x40
)

// MSR bits.
const (
	MSRDeltaCTS uint8 = 0x01
	MSRDeltaDSR uint8 = 0x02
	MSRTrailRI  uint8 = 0x04
	MSRDeltaDCD uint8 = 0x08
	MSRCTS      uint8 = 0x10
	MSRDSR      uint8 = 0x20
	MSRRI       uint8 = 0x40
	MSRDCD      uint8 = 0x80
)

// Clock is the rate of the baud generator divided by 16. The divisor latch
// value for a baud rate is Clock/rate.
const Clock = 115200

// fifoSize is the depth of both FIFOs on the 16550 parts.
const fifoSize = 16
