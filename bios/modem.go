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
	"fmt"
	"sync/atomic"

	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/curated"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/logger"
)

// Patterns for curated errors.
const (
	BadBaud = "bios: unsupported baud rate: %d"
	NoPort  = "bios: no serial port %d"
)

// the rate used when the requested rate is too fast for the BIOS
const fallbackRate = 9600

// Modem is a serial port driven through the BIOS by polling.
type Modem struct {
	gate Gate
	port int
	rate int

	dropped atomic.Uint64
}

// Open a port through the BIOS gate at the requested baud rate. Rates faster
// than the BIOS can program fall back to 9600.
func Open(gate Gate, port int, rate int) (*Modem, error) {
	code, ok := baudCode(rate)
	if !ok {
		if rate <= fallbackRate {
			return nil, curated.Errorf(BadBaud, rate)
		}
		logger.Logf(logger.Allow, "bios", "%d baud not available. using %d", rate, fallbackRate)
		code, _ = baudCode(fallbackRate)
		rate = fallbackRate
	}

	st := gate.Init(port, code<<5|param8N1)
	if st&Timeout == Timeout {
		return nil, curated.Errorf(NoPort, port+1)
	}

	logger.Logf(logger.Allow, "bios", "COM%d at %d baud (status %s)", port+1, rate, st)

	return &Modem{
		gate: gate,
		port: port,
		rate: rate,
	}, nil
}

func (m *Modem) String() string {
	return fmt.Sprintf("bios COM%d@%d", m.port+1, m.rate)
}

// Baud returns the rate the port was programmed with.
func (m *Modem) Baud() int {
	return m.rate
}

// Close the port.
func (m *Modem) Close() error {
	m.gate.Close(m.port)
	return nil
}

// Recv returns a received byte if one is ready. The status is checked first
// so that the receive service is never called without data waiting, which
// would otherwise wait for the BIOS timeout.
func (m *Modem) Recv() (byte, bool) {
	if m.gate.Status(m.port)&DataReady == 0 {
		return 0, false
	}
	b, st := m.gate.Receive(m.port)
	if st&Timeout == Timeout {
		return 0, false
	}
	return b, true
}

// Send a byte. The byte is lost if the BIOS times out.
func (m *Modem) Send(b byte) {
	if st := m.gate.Send(m.port, b); st&Timeout == Timeout {
		m.dropped.Add(1)
	}
}

// RecvLen returns one if a byte is ready to be received and zero otherwise.
// The BIOS does not report how many bytes are waiting.
func (m *Modem) RecvLen() int {
	if m.gate.Status(m.port)&DataReady == DataReady {
		return 1
	}
	return 0
}

// SendLen is always zero. Bytes are handed to the BIOS immediately and there
// is no send queue.
func (m *Modem) SendLen() int {
	return 0
}

// Drain discards all received bytes.
func (m *Modem) Drain() int {
	n := 0
	for {
		if _, ok := m.Recv(); !ok {
			return n
		}
		n++
	}
}

// Dropped returns the number of bytes lost because the BIOS timed out.
func (m *Modem) Dropped() uint64 {
	return m.dropped.Load()
}
