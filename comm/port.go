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

package comm

import (
	"fmt"
)

// NoData is returned by the read functions when there is no byte available.
const NoData uint16 = 0xffff

// Transport is a byte stream. None of the functions block.
type Transport interface {
	// Recv returns false if there is no byte waiting
	Recv() (byte, bool)

	// Send queues a byte for transmission. The byte is discarded if the
	// transport cannot accept it
	Send(b byte)

	// RecvLen is the number of bytes that can be received immediately
	RecvLen() int

	// SendLen is the number of bytes queued and not yet transmitted
	SendLen() int
}

// draining is implemented by transports that can discard received data
// without returning it.
type draining interface {
	Drain() int
}

// closing is implemented by transports that hold resources.
type closing interface {
	Close() error
}

// nullTransport is bound when no port is active.
type nullTransport struct{}

func (nullTransport) Recv() (byte, bool) { return 0, false }
func (nullTransport) Send(_ byte)        {}
func (nullTransport) RecvLen() int       { return 0 }
func (nullTransport) SendLen() int       { return 0 }

// PortType is the kind of connection a port uses.
type PortType int

// List of valid PortType values.
const (
	NullModem PortType = iota
	StandardModem
	IrqModem
	Self
	SelfClient
	numPortTypes
)

func (t PortType) String() string {
	switch t {
	case NullModem:
		return "null modem"
	case StandardModem:
		return "standard modem"
	case IrqModem:
		return "irq modem"
	case Self:
		return "self"
	case SelfClient:
		return "self client"
	}
	return fmt.Sprintf("port type %d", int(t))
}

// Baud is the line speed of a port.
type Baud int

// List of valid Baud values.
const (
	Baud2400 Baud = iota
	Baud9600
	Baud19200
	Baud57600
	numBauds
)

// table of rates indexed by Baud
var baudRates = [numBauds]uint32{2400, 9600, 19200, 57600}

func (b Baud) String() string {
	if b < 0 || b >= numBauds {
		return fmt.Sprintf("baud %d", int(b))
	}
	return fmt.Sprintf("%d", baudRates[b])
}

// ConvertBaudTo32 returns the rate in bits per second. Returns zero for an
// invalid Baud value.
func ConvertBaudTo32(b Baud) uint32 {
	if b < 0 || b >= numBauds {
		return 0
	}
	return baudRates[b]
}

// BaudFromRate returns the Baud value for the rate in bits per second.
// Returns false if the rate is not in the table.
func BaudFromRate(rate int) (Baud, bool) {
	for i, r := range baudRates {
		if int(r) == rate {
			return Baud(i), true
		}
	}
	return 0, false
}

// LinkSubType is the role a port plays in a two player link.
type LinkSubType int

// List of valid LinkSubType values.
const (
	LinkNone LinkSubType = iota
	DirectMaster
	Dial
	Answer
	DirectSlave
)

func (s LinkSubType) String() string {
	switch s {
	case LinkNone:
		return "none"
	case DirectMaster:
		return "direct master"
	case Dial:
		return "dial"
	case Answer:
		return "answer"
	case DirectSlave:
		return "direct slave"
	}
	return fmt.Sprintf("link sub-type %d", int(s))
}

// Port is an open connection. Created by Manager.Open() and valid until
// Manager.Close().
type Port struct {
	index   int
	ptype   PortType
	address int
	irq     int
	baud    Baud
	sub     LinkSubType

	transport Transport
	window    window
}

func (p *Port) String() string {
	switch p.ptype {
	case IrqModem:
		return fmt.Sprintf("#%d %s %#04x irq %d @ %s", p.index, p.ptype, p.address, p.irq, p.baud)
	case Self, SelfClient:
		return fmt.Sprintf("#%d %s", p.index, p.ptype)
	}
	return fmt.Sprintf("#%d %s COM%d @ %s", p.index, p.ptype, p.address, p.baud)
}

// Index returns the registry slot of the port.
func (p *Port) Index() int {
	return p.index
}

// Type returns the PortType of the port.
func (p *Port) Type() PortType {
	return p.ptype
}

// Baud returns the line speed of the port.
func (p *Port) Baud() Baud {
	return p.baud
}

// SetLinkSubType records the role of the port in a two player link.
func (p *Port) SetLinkSubType(s LinkSubType) {
	p.sub = s
}

// LinkSubType returns the value set by SetLinkSubType().
func (p *Port) LinkSubType() LinkSubType {
	return p.sub
}
