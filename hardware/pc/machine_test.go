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

package pc_test

import (
	"testing"
	"time"

	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/hardware/pc"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/test"
)

type registers struct {
	r [4]uint8
}

func (d *registers) Read(offset uint16) uint8 {
	return d.r[offset]
}

func (d *registers) Write(offset uint16, v uint8) {
	d.r[offset] = v
}

func TestBus(t *testing.T) {
	m := pc.NewMachine()

	d := &registers{}
	test.DemandSuccess(t, m.Attach(0x3f8, 4, d))
	test.ExpectFailure(t, m.Attach(0x3fa, 4, &registers{}))
	test.ExpectFailure(t, m.Attach(0x1e, 4, &registers{}))
	test.ExpectFailure(t, m.Attach(0x100, 0, &registers{}))

	m.Out(0x3f9, 0x55)
	test.ExpectEquality(t, d.r[1], 0x55)
	test.ExpectEquality(t, m.In(0x3f9), 0x55)

	// unattached ports float high
	test.ExpectEquality(t, m.In(0x2f8), 0xff)
	m.Out(0x2f8, 0x00)

	m.Detach(0x3f8)
	test.ExpectEquality(t, m.In(0x3f9), 0xff)
}

func TestMask(t *testing.T) {
	m := pc.NewMachine()

	var count int
	m.SetVector(pc.VectorBase+4, func() {
		count++
		m.Out(pc.PICCommand, pc.EOI)
	})

	// all lines are masked after reset
	test.ExpectEquality(t, m.In(pc.PICData), 0xff)
	m.Raise(4)
	test.ExpectEquality(t, m.Service(), 0)
	test.ExpectEquality(t, count, 0)

	// request is remembered until the line is unmasked
	m.Out(pc.PICData, m.In(pc.PICData)&^(1<<4))
	test.ExpectEquality(t, m.Service(), 1)
	test.ExpectEquality(t, count, 1)

	// nothing more to deliver
	test.ExpectEquality(t, m.Service(), 0)
}

func TestEndOfInterrupt(t *testing.T) {
	m := pc.NewMachine()
	m.Out(pc.PICData, 0x00)

	var order []int
	var eoi bool
	for _, irq := range []int{3, 4} {
		irq := irq
		m.SetVector(pc.VectorBase+irq, func() {
			order = append(order, irq)
			if eoi {
				m.Out(pc.PICCommand, pc.EOI)
			}
		})
	}

	// without an EOI the second interrupt is never delivered
	m.Raise(4)
	m.Raise(3)
	test.ExpectEquality(t, m.Service(), 1)
	test.DemandEquality(t, len(order), 1)
	test.ExpectEquality(t, order[0], 3)

	// in-service register can be read with OCW3
	m.Out(pc.PICCommand, 0x0b)
	test.ExpectEquality(t, m.In(pc.PICCommand), 0x08)
	m.Out(pc.PICCommand, 0x0a)
	test.ExpectEquality(t, m.In(pc.PICCommand), 0x10)

	eoi = true
	m.Out(pc.PICCommand, pc.EOI)
	test.ExpectEquality(t, m.Service(), 1)
	test.DemandEquality(t, len(order), 2)
	test.ExpectEquality(t, order[1], 4)
}

func TestSpurious(t *testing.T) {
	m := pc.NewMachine()
	m.Out(pc.PICData, 0x00)

	// no handler at the vector
	m.Raise(5)
	test.ExpectEquality(t, m.Service(), 0)
	delivered, spurious := m.Stats()
	test.ExpectEquality(t, delivered, 0)
	test.ExpectEquality(t, spurious, 1)

	// the spurious interrupt did not leave the line in service
	var count int
	m.SetVector(pc.VectorBase+2, func() {
		count++
		m.Out(pc.PICCommand, pc.EOI)
	})
	m.Raise(2)
	test.ExpectEquality(t, m.Service(), 1)
	test.ExpectEquality(t, count, 1)
}

func TestDisableFromHandler(t *testing.T) {
	m := pc.NewMachine()
	m.Out(pc.PICData, 0x00)

	var recovered bool
	m.SetVector(pc.VectorBase+4, func() {
		defer func() {
			recovered = recover() != nil
			m.Out(pc.PICCommand, pc.EOI)
		}()
		m.Disable()
	})
	m.Raise(4)
	m.Service()
	test.ExpectSuccess(t, recovered)

	// interrupts can still be disabled from the foreground
	m.Disable()
	m.Enable()
}

func TestDispatcher(t *testing.T) {
	m := pc.NewMachine()
	m.Out(pc.PICData, 0x00)

	ch := make(chan bool, 1)
	m.SetVector(pc.VectorBase+3, func() {
		m.Out(pc.PICCommand, pc.EOI)
		ch <- true
	})

	m.Start()
	defer m.Stop()

	// a request made while interrupts are disabled is delivered when they
	// are enabled
	m.Disable()
	m.Raise(3)
	select {
	case <-ch:
		t.Fatalf("interrupt delivered while interrupts are disabled")
	case <-time.After(20 * time.Millisecond):
	}
	m.Enable()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("interrupt not delivered")
	}
}
