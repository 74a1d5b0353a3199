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

// Package loopback connects a server and a client in the same process as if
// they were joined by a cable. A Channel has two rings, one in each
// direction. Bytes sent by the client are received by the server and bytes
// sent by the server are received by the client.
//
// Each side of a Channel can be opened once at a time. Sending to a full ring
// drops the byte, as it does for the UART driver.
package loopback
