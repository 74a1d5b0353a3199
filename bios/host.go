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

package bios

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/jacobsa/go-serial/serial"

	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/logger"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/ring"
)

// size of the receive buffer for each host device
const hostBufferSize = 4096

// OpenFunc opens a serial device on the host.
type OpenFunc func(options serial.OpenOptions) (io.ReadWriteCloser, error)

// hostPort is an open device and the bytes read from it
type hostPort struct {
	dev  io.ReadWriteCloser
	rx   *ring.Buffer
	done chan bool
}

func (p *hostPort) read() {
	defer close(p.done)

	buf := make([]byte, 64)
	for {
		n, err := p.dev.Read(buf)
		for _, b := range buf[:n] {
			if !p.rx.Put(b) {
				break // for loop
			}
		}
		if err != nil {
			// the inter-character timeout is reported as end of file on some
			// platforms
			if errors.Is(err, io.EOF) {
				continue // for loop
			}
			return
		}
	}
}

// HostGate passes BIOS calls to serial devices on the host.
type HostGate struct {
	crit    sync.Mutex
	devices []string
	ports   map[int]*hostPort

	// Opener can be replaced before the gate is used
	Opener OpenFunc

	// how long Receive waits for a character
	Timeout time.Duration
}

// NewHostGate is the preferred method of initialisation for the HostGate
// type. The devices are the host device names for COM1 onwards. An empty
// name means the port is not present.
func NewHostGate(devices []string) *HostGate {
	return &HostGate{
		devices: devices,
		ports:   make(map[int]*hostPort),
		Opener:  serial.Open,
		Timeout: DefaultTimeout,
	}
}

func (g *HostGate) port(port int) (*hostPort, bool) {
	g.crit.Lock()
	defer g.crit.Unlock()
	p, ok := g.ports[port]
	return p, ok
}

// Init implements the Gate interface. The device is opened, or reopened if
// it is already open, with the settings in the parameter byte.
func (g *HostGate) Init(port int, param uint8) Status {
	if port < 0 || port >= len(g.devices) || g.devices[port] == "" {
		return Timeout
	}

	g.Close(port)

	options := serial.OpenOptions{
		PortName:              g.devices[port],
		BaudRate:              uint(paramRate(param)),
		DataBits:              uint(5 + param&0x03),
		StopBits:              1,
		MinimumReadSize:       0,
		InterCharacterTimeout: 100,
	}
	if param&0x04 != 0 {
		options.StopBits = 2
	}
	switch param & 0x18 {
	case 0x08:
		options.ParityMode = serial.PARITY_ODD
	case 0x18:
		options.ParityMode = serial.PARITY_EVEN
	default:
		options.ParityMode = serial.PARITY_NONE
	}

	dev, err := g.Opener(options)
	if err != nil {
		logger.Logf(logger.Allow, "bios", "COM%d: %v", port+1, err)
		return Timeout
	}

	p := &hostPort{
		dev:  dev,
		rx:   ring.MustBuffer(hostBufferSize),
		done: make(chan bool),
	}
	go p.read()

	g.crit.Lock()
	g.ports[port] = p
	g.crit.Unlock()

	logger.Logf(logger.Allow, "bios", "COM%d is %s", port+1, g.devices[port])

	return g.Status(port)
}

// Send implements the Gate interface.
func (g *HostGate) Send(port int, b byte) Status {
	p, ok := g.port(port)
	if !ok {
		return Timeout
	}
	if _, err := p.dev.Write([]byte{b}); err != nil {
		return g.Status(port) | Timeout
	}
	return g.Status(port)
}

// Receive implements the Gate interface.
func (g *HostGate) Receive(port int) (byte, Status) {
	p, ok := g.port(port)
	if !ok {
		return 0, Timeout
	}

	deadline := time.Now().Add(g.Timeout)
	for {
		if b, ok := p.rx.Get(); ok {
			return b, g.Status(port)
		}
		if time.Now().After(deadline) {
			return 0, g.Status(port) | Timeout
		}
		time.Sleep(time.Millisecond)
	}
}

// Status implements the Gate interface. The transmitter is always reported
// as empty and the handshake lines as asserted because the host does not
// expose them through the device.
func (g *HostGate) Status(port int) Status {
	p, ok := g.port(port)
	if !ok {
		return Timeout
	}

	st := THRE | TEMT | CTS | DSR | DCD
	if p.rx.Used() > 0 {
		st |= DataReady
	}
	return st
}

// Close implements the Gate interface.
func (g *HostGate) Close(port int) {
	g.crit.Lock()
	p, ok := g.ports[port]
	delete(g.ports, port)
	g.crit.Unlock()

	if !ok {
		return
	}
	_ = p.dev.Close()
	<-p.done
}
