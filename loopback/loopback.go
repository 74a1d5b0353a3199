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

package loopback

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/curated"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/ring"
)

// ringSize is the storage size of each direction.
const ringSize = 1024

// Side of the channel.
type Side int

// List of valid Side values.
const (
	Server Side = iota
	Client
)

func (s Side) String() string {
	switch s {
	case Server:
		return "server"
	case Client:
		return "client"
	}
	return "unknown side"
}

// Patterns for curated errors.
const (
	SideAlreadyOpen = "loopback: %s already open"
	BadSide         = "loopback: bad side: %d"
)

// Channel is a pair of rings connecting a server and a client.
type Channel struct {
	crit sync.Mutex
	open [2]*Endpoint

	toServer *ring.Buffer
	toClient *ring.Buffer
}

// NewChannel is the preferred method of initialisation for the Channel type.
func NewChannel() *Channel {
	return &Channel{
		toServer: ring.MustBuffer(ringSize),
		toClient: ring.MustBuffer(ringSize),
	}
}

// Open one side of the channel. The ring the side receives from is cleared.
func (c *Channel) Open(side Side) (*Endpoint, error) {
	if side != Server && side != Client {
		return nil, curated.Errorf(BadSide, int(side))
	}

	c.crit.Lock()
	defer c.crit.Unlock()

	if c.open[side] != nil {
		return nil, curated.Errorf(SideAlreadyOpen, side)
	}

	e := &Endpoint{channel: c, side: side}
	if side == Server {
		e.recv, e.send = c.toServer, c.toClient
	} else {
		e.recv, e.send = c.toClient, c.toServer
	}
	e.recv.Clear()
	c.open[side] = e

	return e, nil
}

// IsOpen returns true if the side is open.
func (c *Channel) IsOpen(side Side) bool {
	c.crit.Lock()
	defer c.crit.Unlock()
	return side >= Server && side <= Client && c.open[side] != nil
}

// Both returns true if both sides of the channel are open. When this is true
// the caller is responsible for servicing both the server and the client.
func (c *Channel) Both() bool {
	c.crit.Lock()
	defer c.crit.Unlock()
	return c.open[Server] != nil && c.open[Client] != nil
}

// Endpoint is one open side of a channel.
type Endpoint struct {
	channel *Channel
	side    Side
	closed  atomic.Bool

	recv *ring.Buffer
	send *ring.Buffer

	dropped atomic.Uint64
}

func (e *Endpoint) String() string {
	return fmt.Sprintf("loopback %s (rx %s tx %s)", e.side, e.recv, e.send)
}

// Side returns the side of the channel the endpoint is attached to.
func (e *Endpoint) Side() Side {
	return e.side
}

// Close the endpoint. The side can be opened again afterwards.
func (e *Endpoint) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.channel.crit.Lock()
	defer e.channel.crit.Unlock()
	if e.channel.open[e.side] == e {
		e.channel.open[e.side] = nil
	}
	return nil
}

// Send a byte to the other side. The byte is dropped if the ring is full or
// the endpoint is closed.
func (e *Endpoint) Send(b byte) {
	if e.closed.Load() || !e.send.Put(b) {
		e.dropped.Add(1)
	}
}

// Recv removes the oldest byte sent by the other side. Returns false if
// there is nothing to receive.
func (e *Endpoint) Recv() (byte, bool) {
	if e.closed.Load() {
		return 0, false
	}
	return e.recv.Get()
}

// RecvLen returns the number of bytes waiting to be received.
func (e *Endpoint) RecvLen() int {
	return e.recv.Used()
}

// SendLen returns the number of bytes sent that the other side has not yet
// received.
func (e *Endpoint) SendLen() int {
	return e.send.Used()
}

// Drain discards everything waiting to be received.
func (e *Endpoint) Drain() int {
	return e.recv.Drain()
}

// Dropped returns the number of bytes dropped by Send().
func (e *Endpoint) Dropped() uint64 {
	return e.dropped.Load()
}
