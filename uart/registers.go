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

// register offsets from the base port
const (
	regData = iota // RBR/THR. divisor latch low with DLAB set
	regIER         // divisor latch high with DLAB set
	regIIR         // FCR on write
	regLCR
	regMCR
	regLSR
	regMSR
	numRegs
)

const (
	regFCR = regIIR
)

const (
	ierReceive  uint8 = 0x01
	ierTransmit uint8 = 0x02

	iirNone     uint8 = 0x01
	iirFIFOMask uint8 = 0xc0

	fcrEnableAndClear uint8 = 0x07

	lcrDLAB uint8 = 0x80
	lcr8N1  uint8 = 0x03

	mcrDTR  uint8 = 0x01
	mcrRTS  uint8 = 0x02
	mcrOUT2 uint8 = 0x08

	lsrDataReady uint8 = 0x01
)

// interrupt sources in bits 1 and 2 of the IIR
const (
	sourceModemStatus = iota
	sourceTransmit
	sourceReceive
	sourceLineStatus
)

// PIC ports and commands
const (
	picCommand uint16 = 0x20
	picData    uint16 = 0x21
	picEOI     uint8  = 0x20
)

// vectorBase is the vector of IRQ 0 on the master PIC.
const vectorBase = 8

// clock is the baud generator input divided by 16.
const clock = 115200

// ringSize is the storage size of the send and receive rings. One slot is
// always free so the usable capacity is one less.
const ringSize = 4096

// burst is the number of characters written to the chip for each transmit
// interrupt when the chip has a working FIFO.
const burst = 16
