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

import "fmt"

// Status is the value returned by the BIOS serial services. The line status
// is in the upper byte (register AH) and the modem status in the lower byte
// (register AL).
type Status uint16

// Line status bits of the Status type.
const (
	DataReady Status = 0x0100
	Overrun   Status = 0x0200
	THRE      Status = 0x2000
	TEMT      Status = 0x4000
	Timeout   Status = 0x8000
)

// Modem status bits of the Status type.
const (
	CTS Status = 0x0010
	DSR Status = 0x0020
	DCD Status = 0x0080
)

func (s Status) String() string {
	return fmt.Sprintf("%04x", uint16(s))
}

// LineStatus returns the line status byte.
func (s Status) LineStatus() uint8 {
	return uint8(s >> 8)
}

// ModemStatus returns the modem status byte.
func (s Status) ModemStatus() uint8 {
	return uint8(s)
}

// Gate to the BIOS serial services. Ports are numbered from zero, so COM1 is
// port 0.
type Gate interface {
	// Init is service 00h. The parameter byte holds the baud code in bits 7
	// to 5, parity in bits 4 and 3, stop bits in bit 2 and word length in bits
	// 1 and 0
	Init(port int, param uint8) Status

	// Send is service 01h. Timeout is set in the returned status if the
	// character could not be sent
	Send(port int, b byte) Status

	// Receive is service 02h. Timeout is set in the returned status if no
	// character was received
	Receive(port int) (byte, Status)

	// Status is service 03h
	Status(port int) Status

	// Close releases any resources held for the port. There is no equivalent
	// BIOS service
	Close(port int)
}

// parameter byte values for 8 data bits, no parity and one stop bit.
const param8N1 uint8 = 0x03

// baud codes in bits 7 to 5 of the parameter byte, indexed by code
var baudRates = [8]int{110, 150, 300, 600, 1200, 2400, 4800, 9600}

// baudCode returns the code for the rate. Returns false if the BIOS cannot
// program the rate.
func baudCode(rate int) (uint8, bool) {
	for i, r := range baudRates {
		if r == rate {
			return uint8(i), true
		}
	}
	return 0, false
}

// paramRate returns the baud rate encoded in the parameter byte.
func paramRate(param uint8) int {
	return baudRates[param>>5]
}
