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

// Package ring implements a fixed capacity circular byte buffer. It is the
// shared primitive of every transport: the send and receive queues of the
// UART driver, both directions of the loopback channel and the host serial
// gate.
//
// A Buffer is safe for exactly one producer goroutine (calling Put) and one
// consumer goroutine (calling Get and Front) at the same time. The head index
// is only written by the producer and the tail index only by the consumer. The
// producer writes the data before publishing the new head so the consumer
// never sees a slot that has not been filled.
//
// Storage is always a power of two in length and one slot is kept free to
// distinguish a full buffer from an empty one. A buffer created with a size of
// 4096 therefore holds at most 4095 bytes.
//
// Writing to a full buffer fails and the byte is dropped. Data already in the
// buffer is never overwritten.
package ring
