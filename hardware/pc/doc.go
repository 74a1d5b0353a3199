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

// Package pc emulates the parts of an IBM PC that a serial driver talks to:
// the I/O port bus, the master 8259 programmable interrupt controller, the
// interrupt vector table and the CPU interrupt flag.
//
// Devices are attached to the bus at a base port and raise interrupt lines
// with Raise(). The PIC records the request and, if the line is unmasked and
// no interrupt is in service, the handler installed at vector irq+8 is called.
//
// The CPU interrupt flag is modelled by a mutex. Disable() acquires it and
// Enable() releases it. Handlers are always called with the flag held, so a
// handler never runs at the same time as a foreground critical section, or at
// the same time as another handler.
//
// Interrupts are delivered in one of two ways. Service() delivers all pending
// interrupts on the calling goroutine and is useful for deterministic tests.
// Start() launches a dispatcher goroutine that delivers interrupts as soon as
// they are raised, which is closer to the behaviour of real hardware.
//
// A handler must not call Disable(). Doing so is detected and causes a panic
// rather than a deadlock.
package pc
