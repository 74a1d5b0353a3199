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

// Package comm is the serial transport layer used by the game. It keeps a
// registry of open ports and one active port, and presents the active port
// as a byte stream with a lookahead window.
//
// Ports are opened on a Manager:
//
//	mgr := comm.NewManager(comm.Options{Host: machine, Gate: gate})
//	self, err := mgr.Open(comm.Self, 1, 0, comm.Baud9600)
//	client, err := mgr.Open(comm.SelfClient, 1, 0, comm.Baud9600)
//	err = mgr.SetActivePort(self)
//
// The backend of a port is chosen by its PortType. StandardModem and
// NullModem ports are driven through the BIOS (package bios) and the address
// is the COM number. IrqModem ports use the interrupt driven driver (package
// uart) and the address is the I/O base of the UART. Self and SelfClient are
// the two ends of an in-process loopback (package loopback).
//
// Every backend satisfies the Transport interface and the active transport is
// swapped when the active port changes. When no port is active, reads return
// NoData and writes are discarded.
//
// The read functions return a uint16 so that the NoData value can be
// distinguished from a received byte. The lookahead window allows bytes to be
// inspected before they are consumed, with ScanByte() and ScanData(), and
// consumed bytes to be put back with RewindScan().
//
// Errors are curated errors. All patterns other than uart.IrqUnavailable
// indicate a programming error and should be treated as fatal by the caller.
//
// None of the functions block. The Manager functions that act on the active
// port should only be called from one goroutine.
package comm
