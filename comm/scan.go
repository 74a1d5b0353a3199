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
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/curated"
)

// WindowSize is the capacity of the lookahead window of each port.
const WindowSize = 200

// window is a circular lookahead buffer. Bytes between head and tail have
// been received from the transport but not consumed. The history bytes
// before head have been consumed and can be rewound over until they are
// overwritten.
//
// count + history never exceeds WindowSize.
type window struct {
	buf     [WindowSize]byte
	head    int
	tail    int
	count   int
	history int
}

func (w *window) reset() {
	w.head = 0
	w.tail = 0
	w.count = 0
	w.history = 0
}

// push appends a byte at the tail. The oldest history byte is overwritten if
// there is no free space. Returns false if the window is full of unconsumed
// bytes.
func (w *window) push(b byte) bool {
	if w.count >= WindowSize {
		return false
	}
	if w.count+w.history >= WindowSize {
		w.history--
	}
	w.buf[w.tail] = b
	w.tail = (w.tail + 1) % WindowSize
	w.count++
	return true
}

// pop consumes the byte at the head.
func (w *window) pop() (byte, bool) {
	if w.count == 0 {
		return 0, false
	}
	b := w.buf[w.head]
	w.head = (w.head + 1) % WindowSize
	w.count--
	w.history++
	return b, true
}

// peek copies up to len(p) unconsumed bytes without consuming them.
func (w *window) peek(p []byte) int {
	n := min(len(p), w.count)
	for i := 0; i < n; i++ {
		p[i] = w.buf[(w.head+i)%WindowSize]
	}
	return n
}

// fill pulls bytes from the transport until there are n unconsumed bytes or
// the transport has nothing more.
func (w *window) fill(t Transport, n int) {
	for w.count < n {
		b, ok := t.Recv()
		if !ok {
			return
		}
		w.push(b)
	}
}

// rewind moves the head back over k consumed bytes.
func (w *window) rewind(k int) bool {
	if k < 0 || k > w.history {
		return false
	}
	w.head = (w.head - k + WindowSize) % WindowSize
	w.count += k
	w.history -= k
	return true
}

// ScanByte returns the next unconsumed byte without consuming it. If the
// lookahead window is empty a byte is taken from the transport and placed in
// the window. Repeated calls return the same byte until it is consumed with
// RecvByte() or ReadData().
func (m *Manager) ScanByte() uint16 {
	p := m.active.Load()
	if p == nil {
		return NoData
	}

	if p.window.count == 0 {
		b, ok := p.transport.Recv()
		if !ok {
			return NoData
		}
		p.window.push(b)
	}
	return uint16(p.window.buf[p.window.head])
}

// ScanData copies up to n unconsumed bytes into buf without consuming them.
// The lookahead window is filled from the transport as required. Returns the
// number of bytes copied, which is less than n if the transport ran out of
// data or if buf is shorter than n.
//
// A value of n greater than WindowSize is a LookaheadOverflow error.
func (m *Manager) ScanData(buf []byte, n int) (int, error) {
	if n > WindowSize {
		return 0, curated.Errorf(LookaheadOverflow, n, WindowSize)
	}

	p := m.active.Load()
	if p == nil || n <= 0 {
		return 0, nil
	}

	p.window.fill(p.transport, n)
	return p.window.peek(buf[:min(n, len(buf))]), nil
}

// RecvByte consumes the next byte. Bytes in the lookahead window are
// consumed before any are taken from the transport. Returns NoData if there
// is nothing to read.
//
// A byte taken from the transport passes through the window so that it can
// be rewound like any other consumed byte.
func (m *Manager) RecvByte() uint16 {
	p := m.active.Load()
	if p == nil {
		return NoData
	}
	return p.recv()
}

func (p *Port) recv() uint16 {
	if b, ok := p.window.pop(); ok {
		return uint16(b)
	}
	b, ok := p.transport.Recv()
	if !ok {
		return NoData
	}

	// the window is empty so the push cannot fail
	p.window.push(b)
	b, _ = p.window.pop()
	return uint16(b)
}

// ReadData consumes up to n bytes into buf. Stops early if there is nothing
// more to read. Returns the number of bytes read.
func (m *Manager) ReadData(buf []byte, n int) int {
	p := m.active.Load()
	if p == nil {
		return 0
	}

	n = min(n, len(buf))
	for i := 0; i < n; i++ {
		v := p.recv()
		if v == NoData {
			return i
		}
		buf[i] = byte(v)
	}
	return max(n, 0)
}

// RewindScan puts back the last k consumed bytes so they can be scanned and
// read again. At most Rewindable() bytes can be put back. Asking for more is
// a RewindRange error.
//
// Only consumed bytes count. Scanning alone never makes a byte rewindable
// because a scanned byte is still waiting to be read.
func (m *Manager) RewindScan(k int) error {
	p := m.active.Load()
	if p == nil {
		return curated.Errorf(RewindRange, k, 0)
	}
	if !p.window.rewind(k) {
		return curated.Errorf(RewindRange, k, p.window.history)
	}
	return nil
}

// Rewindable returns the number of consumed bytes in the lookahead window of
// the active port that can be put back with RewindScan().
func (m *Manager) Rewindable() int {
	p := m.active.Load()
	if p == nil {
		return 0
	}
	return p.window.history
}
