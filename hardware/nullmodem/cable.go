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

package nullmodem

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/hardware/ns16550"
)

// Monitor is called with every character that crosses the cable. The end
// argument is the index of the chip that transmitted the character: 0 for the
// first chip given to Connect() and 1 for the second.
type Monitor func(end int, b byte)

// Cable is a null-modem cable between two chips.
type Cable struct {
	chips [2]*ns16550.Chip
	ends  [2]*end

	monitor atomic.Pointer[Monitor]
}

// end of the cable attached to a chip. it receives characters and control
// changes from that chip and forwards them to the other chip
type end struct {
	cable *Cable
	idx   int
	crit  sync.Mutex
	speed uint16
}

// Connect two chips with a cable.
func Connect(a *ns16550.Chip, b *ns16550.Chip) *Cable {
	c := &Cable{
		chips: [2]*ns16550.Chip{a, b},
	}
	c.ends[0] = &end{cable: c, idx: 0}
	c.ends[1] = &end{cable: c, idx: 1}
	a.Connect(c.ends[0])
	b.Connect(c.ends[1])
	return c
}

// Disconnect the cable from both chips.
func (c *Cable) Disconnect() {
	c.chips[0].Connect(nil)
	c.chips[1].Connect(nil)
}

// SetMonitor sets the function called for every character crossing the
// cable. A nil monitor removes the current monitor.
func (c *Cable) SetMonitor(m Monitor) {
	if m == nil {
		c.monitor.Store(nil)
		return
	}
	c.monitor.Store(&m)
}

// Mismatch returns true if the two chips are programmed with different
// divisors. Characters still cross the cable when the speeds do not match,
// unlike a real line.
func (c *Cable) Mismatch() bool {
	c.ends[0].crit.Lock()
	a := c.ends[0].speed
	c.ends[0].crit.Unlock()
	c.ends[1].crit.Lock()
	b := c.ends[1].speed
	c.ends[1].crit.Unlock()
	return a != b
}

// Tick advances both transmitters by one character time. Returns true if
// either chip transmitted a character.
func (c *Cable) Tick() bool {
	a := c.chips[0].Tick()
	b := c.chips[1].Tick()
	return a || b
}

// Run both transmitters at line speed until the context is cancelled. Blocks
// until both have stopped.
func (c *Cable) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, ch := range c.chips {
		wg.Add(1)
		go func(ch *ns16550.Chip) {
			defer wg.Done()
			ch.Run(ctx)
		}(ch)
	}
	wg.Wait()
}

func (e *end) peer() *ns16550.Chip {
	return e.cable.chips[e.idx^1]
}

// Transmit implements the ns16550.Line interface.
func (e *end) Transmit(b byte) {
	if m := e.cable.monitor.Load(); m != nil {
		(*m)(e.idx, b)
	}
	e.peer().Receive(b)
}

// LineControl implements the ns16550.Control interface.
func (e *end) LineControl(divisor uint16, _ uint8) {
	e.crit.Lock()
	defer e.crit.Unlock()
	e.speed = divisor
}

// ModemControl implements the ns16550.Control interface.
func (e *end) ModemControl(mcr uint8) {
	dtr := mcr&ns16550.MCRDTR != 0
	rts := mcr&ns16550.MCRRTS != 0
	e.peer().SetModemStatus(rts, dtr, false, dtr)
}
