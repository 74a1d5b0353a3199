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
	"sync"
	"sync/atomic"

	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/atexit"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/bios"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/curated"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/logger"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/loopback"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/uart"
)

// MaxPorts is the number of ports that can be open at once.
const MaxPorts = 4

// Patterns for curated errors.
const (
	BadHandle         = "comm: bad port handle"
	BadPortType       = "comm: bad port type: %d"
	BadBaud           = "comm: bad baud: %d"
	BadAddress        = "comm: bad address: %d"
	PortAlreadyOpen   = "comm: %v port already open"
	LookaheadOverflow = "comm: lookahead of %d exceeds window of %d"
	RewindRange       = "comm: cannot rewind %d bytes (%d available)"
	RegistryFull      = "comm: all %d ports in use"
	NoBackend         = "comm: no backend for %v"
)

// Options for NewManager(). Host is required for IrqModem ports and Gate is
// required for StandardModem and NullModem ports.
type Options struct {
	Host  uart.Host
	Gate  bios.Gate
	Hooks *atexit.Hooks
}

// Manager owns the open ports and the active port.
type Manager struct {
	opts Options

	crit  sync.Mutex
	ports [MaxPorts]*Port

	// the single UART driver. only one IrqModem port can be open at a time
	uart *uart.Driver

	channel *loopback.Channel

	active atomic.Pointer[Port]
	null   Port
}

// NewManager is the preferred method of initialisation for the Manager type.
func NewManager(opts Options) *Manager {
	m := &Manager{
		opts:    opts,
		channel: loopback.NewChannel(),
	}
	m.null = Port{index: -1, transport: nullTransport{}}
	if opts.Host != nil {
		m.uart = uart.NewDriver(opts.Host, opts.Hooks)
	}
	return m
}

func (m *Manager) String() string {
	m.crit.Lock()
	defer m.crit.Unlock()

	n := 0
	for _, p := range m.ports {
		if p != nil {
			n++
		}
	}

	if p := m.active.Load(); p != nil {
		return fmt.Sprintf("%d open, active %s", n, p)
	}
	return fmt.Sprintf("%d open, none active", n)
}

// Open a port. The meaning of address depends on the port type. For
// StandardModem and NullModem it is the COM number (starting at 1); for
// IrqModem it is the I/O base of the UART. Self and SelfClient do not use the
// address but it must still be nonzero. The irq argument is only used by
// IrqModem ports.
//
// The new port is not made active.
func (m *Manager) Open(ptype PortType, address int, irq int, baud Baud) (*Port, error) {
	if ptype < 0 || ptype >= numPortTypes {
		return nil, curated.Errorf(BadPortType, int(ptype))
	}
	if baud < 0 || baud >= numBauds {
		return nil, curated.Errorf(BadBaud, int(baud))
	}
	if address <= 0 || (ptype == IrqModem && address > 0xffff) {
		return nil, curated.Errorf(BadAddress, address)
	}

	m.crit.Lock()
	defer m.crit.Unlock()

	idx := -1
	for i, p := range m.ports {
		if p == nil {
			idx = i
			break // for loop
		}
	}
	if idx == -1 {
		return nil, curated.Errorf(RegistryFull, MaxPorts)
	}

	p := &Port{
		index:   idx,
		ptype:   ptype,
		address: address,
		irq:     irq,
		baud:    baud,
	}

	rate := int(ConvertBaudTo32(baud))

	switch ptype {
	case StandardModem, NullModem:
		if m.opts.Gate == nil {
			return nil, curated.Errorf(NoBackend, ptype)
		}
		modem, err := bios.Open(m.opts.Gate, address-1, rate)
		if err != nil {
			return nil, curated.Errorf("comm: %v", err)
		}
		p.transport = modem

		// the BIOS may not be able to program the requested rate
		if b, ok := BaudFromRate(modem.Baud()); ok {
			p.baud = b
		}

	case IrqModem:
		if m.uart == nil {
			return nil, curated.Errorf(NoBackend, ptype)
		}
		if m.uart.IsOpen() {
			return nil, curated.Errorf(PortAlreadyOpen, ptype)
		}

		// IrqUnavailable is returned as it is so that the caller can recover
		err := m.uart.Open(uint16(address), irq, rate)
		if err != nil {
			return nil, err
		}
		p.transport = m.uart

	case Self, SelfClient:
		side := loopback.Server
		if ptype == SelfClient {
			side = loopback.Client
		}
		e, err := m.channel.Open(side)
		if err != nil {
			return nil, curated.Errorf(PortAlreadyOpen, ptype)
		}
		p.transport = e
	}

	m.ports[idx] = p
	logger.Logf(logger.Allow, "comm", "opened %s", p)

	return p, nil
}

// lookup returns true if the port is in the registry. must be called with
// crit held.
func (m *Manager) lookup(p *Port) bool {
	return p != nil && p.index >= 0 && p.index < MaxPorts && m.ports[p.index] == p
}

// Close a port. If the port is the active port then no port is active
// afterwards.
func (m *Manager) Close(p *Port) error {
	m.crit.Lock()
	defer m.crit.Unlock()

	if !m.lookup(p) {
		return curated.Errorf(BadHandle)
	}

	m.active.CompareAndSwap(p, nil)
	m.ports[p.index] = nil

	var err error
	if c, ok := p.transport.(closing); ok {
		err = c.Close()
	}
	p.transport = nullTransport{}
	p.window.reset()

	logger.Logf(logger.Allow, "comm", "closed %s", p)

	if err != nil {
		return curated.Errorf("comm: %v", err)
	}
	return nil
}

// CloseAll closes every open port.
func (m *Manager) CloseAll() {
	for _, p := range m.Ports() {
		_ = m.Close(p)
	}
}

// Ports returns the open ports in registry order.
func (m *Manager) Ports() []*Port {
	m.crit.Lock()
	defer m.crit.Unlock()

	var ports []*Port
	for _, p := range m.ports {
		if p != nil {
			ports = append(ports, p)
		}
	}
	return ports
}

// SetActivePort makes the port the target of the read, write and scan
// functions.
func (m *Manager) SetActivePort(p *Port) error {
	m.crit.Lock()
	defer m.crit.Unlock()

	if !m.lookup(p) {
		return curated.Errorf(BadHandle)
	}
	m.active.Store(p)
	return nil
}

// SetActivePortByIndex is like SetActivePort() but the port is selected by
// its registry index.
func (m *Manager) SetActivePortByIndex(idx int) error {
	m.crit.Lock()
	defer m.crit.Unlock()

	if idx < 0 || idx >= MaxPorts || m.ports[idx] == nil {
		return curated.Errorf(BadHandle)
	}
	m.active.Store(m.ports[idx])
	return nil
}

// ActivePort returns the active port. Returns nil if no port is active.
func (m *Manager) ActivePort() *Port {
	return m.active.Load()
}

// current returns the active port or the null port if there is none.
func (m *Manager) current() *Port {
	if p := m.active.Load(); p != nil {
		return p
	}
	return &m.null
}

// SendByte queues a byte on the active port. The byte is discarded if the
// port cannot accept it.
func (m *Manager) SendByte(b byte) {
	m.current().transport.Send(b)
}

// SendData queues up to n bytes from buf on the active port. Returns the
// number of bytes handed to the port, which is not the same as the number of
// bytes sent if the port discarded any.
func (m *Manager) SendData(buf []byte, n int) int {
	t := m.current().transport
	n = max(min(n, len(buf)), 0)
	for _, b := range buf[:n] {
		t.Send(b)
	}
	return n
}

// ReadBufferLength returns the number of bytes that can be read from the
// active port without waiting. This includes unconsumed bytes in the
// lookahead window and bytes still waiting in the transport, so after
// ScanData(buf, n) the length is n only if the transport has nothing more.
func (m *Manager) ReadBufferLength() int {
	p := m.current()
	return p.window.count + p.transport.RecvLen()
}

// SendBufferLength returns the number of bytes queued on the active port and
// not yet handed to the hardware.
func (m *Manager) SendBufferLength() int {
	return m.current().transport.SendLen()
}

// ClearPort discards all received data on the active port, including the
// lookahead window.
func (m *Manager) ClearPort() {
	p := m.active.Load()
	if p == nil {
		return
	}
	p.window.reset()
	if d, ok := p.transport.(draining); ok {
		d.Drain()
		return
	}
	for {
		if _, ok := p.transport.Recv(); !ok {
			return
		}
	}
}

// BaudRate returns the line speed of the active port. Returns Baud9600 if no
// port is active.
func (m *Manager) BaudRate() Baud {
	if p := m.active.Load(); p != nil {
		return p.baud
	}
	return Baud9600
}

// PortType returns the type of the active port. Returns false if no port is
// active.
func (m *Manager) PortType() (PortType, bool) {
	if p := m.active.Load(); p != nil {
		return p.ptype, true
	}
	return 0, false
}

// LinkSubType returns the link role of the active port.
func (m *Manager) LinkSubType() LinkSubType {
	if p := m.active.Load(); p != nil {
		return p.sub
	}
	return LinkNone
}

// CheckClientAndServerExist returns true if both ends of the loopback are
// open. The caller must then service both the server and the client.
func (m *Manager) CheckClientAndServerExist() bool {
	return m.channel.Both()
}

// IsServer returns true if the active port is the server end of a
// connection. A Self port is always the server. A modem port is the server if
// its link role is DirectMaster or Answer.
func (m *Manager) IsServer() bool {
	p := m.active.Load()
	if p == nil {
		return false
	}
	switch p.ptype {
	case Self:
		return true
	case SelfClient:
		return false
	}
	return p.sub == DirectMaster || p.sub == Answer
}

// UARTStats returns the statistics of the UART driver. Returns false if
// there is no driver.
func (m *Manager) UARTStats() (uart.Stats, bool) {
	if m.uart == nil {
		return uart.Stats{}, false
	}
	return m.uart.Stats(), true
}
