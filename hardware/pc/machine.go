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

package pc

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/assert"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/logger"
)

// Device is a peripheral attached to the I/O bus. The offset argument is
// relative to the base port the device was attached at.
type Device interface {
	Read(offset uint16) uint8
	Write(offset uint16, v uint8)
}

// Handler is an interrupt service routine. It is an alias so that drivers can
// install handlers without depending on this package.
type Handler = func()

// attachment of a device to a range of ports
type attachment struct {
	base uint16
	n    uint16
	dev  Device
}

// Machine is the emulated PC.
type Machine struct {
	// interrupt flag. held while interrupts are disabled and while a handler
	// is running
	iflag sync.Mutex

	// goroutine currently running a handler. zero if no handler is running
	isr atomic.Uint64

	// protects the PIC and the vector table. devices raise interrupts from
	// their own goroutines
	crit    sync.Mutex
	pic     pic
	vectors [256]Handler

	busCrit sync.RWMutex
	devices []attachment

	// wakes the dispatcher
	notify chan bool
	quit   chan bool
	done   chan bool

	delivered atomic.Uint64
	spurious  atomic.Uint64
}

// NewMachine is the preferred method of initialisation for the Machine type.
func NewMachine() *Machine {
	return &Machine{
		pic:    newPIC(),
		notify: make(chan bool, 1),
	}
}

func (m *Machine) String() string {
	m.crit.Lock()
	defer m.crit.Unlock()
	return fmt.Sprintf("IRR=%08b ISR=%08b IMR=%08b", m.pic.irr, m.pic.isr, m.pic.imr)
}

// Attach a device to n ports starting at base. It is an error for the range
// to overlap the PIC or any previously attached device.
func (m *Machine) Attach(base uint16, n uint16, dev Device) error {
	if n == 0 || int(base)+int(n) > 0xffff {
		return fmt.Errorf("pc: invalid port range %#04x+%d", base, n)
	}
	if base <= PICData && base+n > PICCommand {
		return fmt.Errorf("pc: port range %#04x+%d overlaps PIC", base, n)
	}

	m.busCrit.Lock()
	defer m.busCrit.Unlock()

	for _, a := range m.devices {
		if base < a.base+a.n && a.base < base+n {
			return fmt.Errorf("pc: port range %#04x+%d overlaps device at %#04x", base, n, a.base)
		}
	}
	m.devices = append(m.devices, attachment{base: base, n: n, dev: dev})
	logger.Logf(logger.Allow, "pc", "%T attached at %#04x", dev, base)

	return nil
}

// Detach the device attached at base.
func (m *Machine) Detach(base uint16) {
	m.busCrit.Lock()
	defer m.busCrit.Unlock()

	for i, a := range m.devices {
		if a.base == base {
			m.devices = append(m.devices[:i], m.devices[i+1:]...)
			return
		}
	}
}

func (m *Machine) lookup(port uint16) (Device, uint16, bool) {
	m.busCrit.RLock()
	defer m.busCrit.RUnlock()

	for _, a := range m.devices {
		if port >= a.base && port < a.base+a.n {
			return a.dev, port - a.base, true
		}
	}
	return nil, 0, false
}

// In reads from an I/O port. Reads of unattached ports return 0xff, as they
// would on a real bus.
func (m *Machine) In(port uint16) uint8 {
	switch port {
	case PICCommand:
		m.crit.Lock()
		defer m.crit.Unlock()
		return m.pic.status()
	case PICData:
		m.crit.Lock()
		defer m.crit.Unlock()
		return m.pic.imr
	}

	if dev, offset, ok := m.lookup(port); ok {
		return dev.Read(offset)
	}
	return 0xff
}

// Out writes to an I/O port. Writes to unattached ports are ignored.
func (m *Machine) Out(port uint16, v uint8) {
	switch port {
	case PICCommand:
		m.crit.Lock()
		m.pic.command(v)
		m.crit.Unlock()
		m.wake()
		return
	case PICData:
		m.crit.Lock()
		m.pic.imr = v
		m.crit.Unlock()
		m.wake()
		return
	}

	if dev, offset, ok := m.lookup(port); ok {
		dev.Write(offset, v)
	}
}

// Raise an interrupt request on the numbered line. Lines are edge triggered:
// the request is recorded once and is cleared when the interrupt is
// acknowledged.
func (m *Machine) Raise(irq int) {
	if irq < 0 || irq >= NumIRQ {
		return
	}
	m.crit.Lock()
	m.pic.irr |= 1 << irq
	m.crit.Unlock()
	m.wake()
}

// Vector returns the handler installed at vector n.
func (m *Machine) Vector(n int) Handler {
	m.crit.Lock()
	defer m.crit.Unlock()
	return m.vectors[n&0xff]
}

// SetVector installs the handler at vector n. A nil handler removes the
// current handler.
func (m *Machine) SetVector(n int, h Handler) {
	m.crit.Lock()
	defer m.crit.Unlock()
	m.vectors[n&0xff] = h
}

// Disable interrupts. Blocks while a handler is running.
//
// Calling Disable() from inside a handler is a programming error that would
// otherwise deadlock, and it panics.
func (m *Machine) Disable() {
	if m.isr.Load() == assert.GetGoRoutineID() {
		panic("pc: interrupts disabled from inside an interrupt handler")
	}
	m.iflag.Lock()
}

// Enable interrupts. Must only be called after Disable().
func (m *Machine) Enable() {
	m.iflag.Unlock()
	m.wake()
}

func (m *Machine) wake() {
	select {
	case m.notify <- true:
	default:
	}
}

// acknowledge the next pending interrupt and return the handler for it. A
// request for a vector with no handler is treated as spurious and is
// acknowledged and ended immediately.
func (m *Machine) acknowledge() (Handler, bool) {
	m.crit.Lock()
	defer m.crit.Unlock()

	for {
		irq, ok := m.pic.next()
		if !ok {
			return nil, false
		}
		m.pic.irr &^= 1 << irq
		m.pic.isr |= 1 << irq

		h := m.vectors[VectorBase+irq]
		if h != nil {
			return h, true
		}
		m.pic.isr &^= 1 << irq
		m.spurious.Add(1)
	}
}

// Service delivers pending interrupts on the calling goroutine. It returns
// once there are no more interrupts that can be delivered. Returns the number
// of handlers that were called.
//
// Service must not be called while interrupts are disabled by the same
// goroutine.
func (m *Machine) Service() int {
	n := 0
	for {
		m.iflag.Lock()
		h, ok := m.acknowledge()
		if !ok {
			m.iflag.Unlock()
			return n
		}
		m.isr.Store(assert.GetGoRoutineID())
		h()
		m.isr.Store(0)
		m.iflag.Unlock()

		m.delivered.Add(1)
		n++
	}
}

// Start the dispatcher goroutine. Interrupts are delivered as soon as they are
// raised, subject to the interrupt flag. Calling Start() on a running machine
// does nothing.
func (m *Machine) Start() {
	m.crit.Lock()
	defer m.crit.Unlock()

	if m.quit != nil {
		return
	}
	m.quit = make(chan bool)
	m.done = make(chan bool)

	go func(quit chan bool, done chan bool) {
		defer close(done)
		for {
			select {
			case <-quit:
				return
			case <-m.notify:
				m.Service()
			}
		}
	}(m.quit, m.done)
}

// Stop the dispatcher goroutine. Blocks until the dispatcher has finished.
func (m *Machine) Stop() {
	m.crit.Lock()
	quit, done := m.quit, m.done
	m.quit, m.done = nil, nil
	m.crit.Unlock()

	if quit == nil {
		return
	}
	close(quit)
	<-done
}

// Stats returns the number of handlers called and the number of spurious
// interrupts.
func (m *Machine) Stats() (delivered uint64, spurious uint64) {
	return m.delivered.Load(), m.spurious.Load()
}
