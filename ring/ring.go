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

package ring

import (
	"fmt"
	"sync/atomic"
)

// Buffer is a single-producer single-consumer circular byte buffer.
type Buffer struct {
	data []byte
	mask uint32

	// head is the index of the next slot to be written. tail is the index of
	// the next slot to be read. both are kept in the range of the storage
	head atomic.Uint32
	tail atomic.Uint32
}

// NewBuffer is the preferred method of initialisation for the Buffer type.
// The size argument must be a power of two and at least two.
func NewBuffer(size int) (*Buffer, error) {
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("ring: size must be a power of two: %d", size)
	}
	return &Buffer{
		data: make([]byte, size),
		mask: uint32(size - 1),
	}, nil
}

// MustBuffer is like NewBuffer but panics if size is not valid. Used for
// package level sizes which are known to be good.
func MustBuffer(size int) *Buffer {
	b, err := NewBuffer(size)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Buffer) String() string {
	return fmt.Sprintf("%d/%d", b.Used(), b.Capacity())
}

// Capacity returns the maximum number of bytes the buffer can hold.
func (b *Buffer) Capacity() int {
	return len(b.data) - 1
}

// Used returns the number of bytes waiting to be read.
func (b *Buffer) Used() int {
	return int((b.head.Load() - b.tail.Load()) & b.mask)
}

// Free returns the number of bytes that can be written before the buffer is
// full.
func (b *Buffer) Free() int {
	return b.Capacity() - b.Used()
}

// Put stores a byte in the buffer. Returns false and drops the byte if the
// buffer is full.
func (b *Buffer) Put(v byte) bool {
	h := b.head.Load()
	n := (h + 1) & b.mask
	if n == b.tail.Load() {
		return false
	}
	b.data[h] = v
	b.head.Store(n)
	return true
}

// Get removes and returns the oldest byte in the buffer. Returns false if the
// buffer is empty.
func (b *Buffer) Get() (byte, bool) {
	t := b.tail.Load()
	if t == b.head.Load() {
		return 0, false
	}
	v := b.data[t]
	b.tail.Store((t + 1) & b.mask)
	return v, true
}

// Front returns the oldest byte in the buffer without removing it. Returns
// false if the buffer is empty.
func (b *Buffer) Front() (byte, bool) {
	t := b.tail.Load()
	if t == b.head.Load() {
		return 0, false
	}
	return b.data[t], true
}

// Clear discards the contents of the buffer. It must not be called while
// either the producer or the consumer is active.
func (b *Buffer) Clear() {
	b.head.Store(0)
	b.tail.Store(0)
}

// Drain discards all bytes waiting to be read. Unlike Clear() it is safe to
// call from the consumer while the producer is active. Returns the number of
// bytes discarded.
func (b *Buffer) Drain() int {
	n := 0
	for {
		if _, ok := b.Get(); !ok {
			return n
		}
		n++
	}
}
