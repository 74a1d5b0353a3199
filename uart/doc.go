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

// Package uart is an interrupt driven driver for 8250 and 16550 UART chips on
// a PC serial port.
//
// Received characters are moved by the interrupt handler from the chip into a
// receive ring and characters to be sent are moved from a send ring into the
// chip. The foreground only ever touches the rings, so reading and writing
// never block and never wait for the line.
//
// The receive ring is written only by the interrupt handler and read only by
// the foreground. The send ring is written only by the foreground and read
// only by the interrupt handler. Any multi-step access to the chip registers
// from the foreground, and any access to the primed flag, happens with
// interrupts disabled.
//
// The machine the driver runs on is supplied through the Host interface. The
// emulated PC in the hardware/pc package is one such host.
package uart
