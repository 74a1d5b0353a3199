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

// Package atexit keeps a list of functions to be run when the process is
// terminating. Drivers that change machine state (interrupt vectors for
// example) register a hook when they open and unregister it when they close
// normally. If the process is terminated before that happens, running the
// hooks restores the machine.
package atexit

import "sync"

// Hooks is a list of functions to be run on exit. The zero value is ready to
// use.
type Hooks struct {
	crit   sync.Mutex
	nextID int
	order  []int
	hooks  map[int]func()
	ran    bool
}

// Register a function to be run on exit. Returns an identifier that can be
// used with Unregister().
func (h *Hooks) Register(f func()) int {
	h.crit.Lock()
	defer h.crit.Unlock()

	if h.hooks == nil {
		h.hooks = make(map[int]func())
	}
	h.nextID++
	h.hooks[h.nextID] = f
	h.order = append(h.order, h.nextID)
	return h.nextID
}

// Unregister the function with the identifier returned by Register().
// Unregistering an unknown identifier does nothing.
func (h *Hooks) Unregister(id int) {
	h.crit.Lock()
	defer h.crit.Unlock()

	if _, ok := h.hooks[id]; !ok {
		return
	}
	delete(h.hooks, id)
	for i, o := range h.order {
		if o == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break // for loop
		}
	}
}

// Len returns the number of registered functions.
func (h *Hooks) Len() int {
	h.crit.Lock()
	defer h.crit.Unlock()
	return len(h.order)
}

// Run the registered functions in the reverse order of registration. The
// functions are run at most once. Later calls to Run() do nothing.
//
// The functions are called without any lock held so they are free to call
// Unregister().
func (h *Hooks) Run() {
	h.crit.Lock()
	if h.ran {
		h.crit.Unlock()
		return
	}
	h.ran = true

	run := make([]func(), 0, len(h.order))
	for i := len(h.order) - 1; i >= 0; i-- {
		run = append(run, h.hooks[h.order[i]])
	}
	h.crit.Unlock()

	for _, f := range run {
		f()
	}
}
