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

// Package hardware is the base package for the emulated PC serial hardware.
// Nothing in this package itself; the sub-packages are:
//
//	pc         I/O port bus, 8259 PIC, interrupt vectors and interrupt flag
//	ns16550    8250, 16550 and 16550A UART chips
//	nullmodem  cable connecting two emulated chips
//	ttyline    emulated chip line attached to a host tty
//
// The uart driver and the BIOS gate talk to a pc.Machine exactly as they
// would talk to the real thing.
package hardware
