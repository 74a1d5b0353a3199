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

// Package ttyline connects an emulated UART chip to a serial device on the
// host. Characters transmitted by the chip are written to the device and
// characters read from the device are received by the chip.
//
// The speed of the device follows the divisor latch of the chip and the DTR
// and RTS outputs of the device follow the modem control register. Devices
// that do not support modem control lines (pseudo-terminals for example) are
// still usable. Failures are logged once and otherwise ignored.
package ttyline
