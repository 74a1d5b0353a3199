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

// Package config reads the serial settings from an ini file. The settings
// are in the [serial] section:
//
//	[serial]
//	comport=1
//	baud=9600
//	ioaddr=3f8
//	irq=4
//	phonenum=5551234
//	connection=directmaster
//
// The ioaddr value is always hexadecimal, with or without the 0x prefix.
//
// Two optional sections are used by the command line tool. The [devices]
// section names the host serial device for each COM port (com1 to com4) and
// the [line] section names a host tty for the emulated UART (tty) and a WAV
// file for recording the line (tap).
//
// Any value can be overridden with the prefs command line stack, using the
// key name on its own. For example:
//
//	prefs.PushCommandLineStack("baud::19200; irq::3")
package config
