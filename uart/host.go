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

package uart

// Bus gives access to the I/O ports of the machine.
type Bus interface {
	In(port uint16) uint8
	Out(port uint16, v uint8)
}

// Interrupts controls the interrupt flag and the interrupt vector table of
// the machine.
type Interrupts interface {
	// Disable and Enable bracket a critical section. The interrupt handler
	// never runs while interrupts are disabled
	Disable()
	Enable()

	Vector(n int) func()
	SetVector(n int, h func())
}

// Host is the machine the driver runs on.
type Host interface {
	Bus
	Interrupts
}

// Patterns for curated errors.
const (
	IrqUnavailable = "uart: irq unavailable: %d"
	AlreadyOpen    = "uart: already open at %#04x"
	NotOpen        = "uart: not open"
	BadBaud        = "uart: unsupported baud rate: %d"
)
