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

// Package link opens the ports for a game session as described by the
// connection setting of the configuration.
//
// The two player connections (directmaster, dial, answer and directslave)
// open one modem port. The port uses the interrupt driven UART when an irq is
// configured and the BIOS otherwise. The single player connection opens both
// ends of the loopback with the server end active. An unknown connection is
// treated as single player and a warning is logged.
//
// Modem commands are never sent, so the dial connection behaves like
// directslave. The phone number is logged.
package link
