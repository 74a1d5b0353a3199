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

// Package bios is the polled serial backend. It uses the serial services of
// the PC BIOS (interrupt 14h) through the Gate interface and is used when no
// interrupt driven path is configured.
//
// Two gates are provided. The machine gate is a polled BIOS that programs the
// UART registers of an emulated PC directly, as the real BIOS does. The host
// gate passes the calls to serial devices on the host with
// github.com/jacobsa/go-serial.
//
// The BIOS can only program rates up to 9600 baud. Faster rates fall back to
// 9600 and a warning is logged.
package bios
