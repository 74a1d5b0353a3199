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

package ttyline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/hardware/ns16550"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/logger"
	"github.com/pkg/term"
)

// how long a read of the device waits before checking for the line being
// closed
const readTimeout = 100 * time.Millisecond

// Line is the connection between a chip and a host device.
type Line struct {
	device string
	chip   *ns16550.Chip
	tty    *term.Term

	crit  sync.Mutex
	speed int
	mcr   uint8

	// modem control failures are only logged once
	noModemControl bool

	quit chan bool
	done chan bool
}

// Open the named device and connect it to the chip.
func Open(device string, chip *ns16550.Chip) (*Line, error) {
	tty, err := term.Open(device, term.Speed(9600), term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("ttyline: %w", err)
	}
	if err := tty.SetReadTimeout(readTimeout); err != nil {
		tty.Close()
		return nil, fmt.Errorf("ttyline: %w", err)
	}

	l := &Line{
		device: device,
		chip:   chip,
		tty:    tty,
		speed:  9600,
		quit:   make(chan bool),
		done:   make(chan bool),
	}

	go l.reader()
	chip.Connect(l)

	logger.Logf(logger.Allow, "ttyline", "%s connected to %s", device, chip.Model())

	return l, nil
}

func (l *Line) String() string {
	l.crit.Lock()
	defer l.crit.Unlock()
	return fmt.Sprintf("%s@%d", l.device, l.speed)
}

// Close disconnects the chip and closes the device.
func (l *Line) Close() error {
	l.chip.Connect(nil)
	close(l.quit)
	<-l.done

	err := l.tty.Restore()
	if cerr := l.tty.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("ttyline: %w", err)
	}
	return nil
}

func (l *Line) reader() {
	defer close(l.done)

	buf := make([]byte, 64)
	for {
		select {
		case <-l.quit:
			return
		default:
		}

		n, err := l.tty.Read(buf)
		for _, b := range buf[:n] {
			l.chip.Receive(b)
		}

		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrDeadlineExceeded) {
			logger.Log(logger.Allow, "ttyline", err)
			return
		}
	}
}

// Transmit implements the ns16550.Line interface.
func (l *Line) Transmit(b byte) {
	if _, err := l.tty.Write([]byte{b}); err != nil {
		logger.Log(logger.Allow, "ttyline", err)
	}
}

// LineControl implements the ns16550.Control interface.
func (l *Line) LineControl(divisor uint16, _ uint8) {
	if divisor == 0 {
		return
	}
	speed := ns16550.Clock / int(divisor)

	l.crit.Lock()
	defer l.crit.Unlock()

	if speed == l.speed {
		return
	}
	if err := l.tty.SetSpeed(speed); err != nil {
		logger.Logf(logger.Allow, "ttyline", "%s: cannot set speed %d: %v", l.device, speed, err)
		return
	}
	l.speed = speed
}

// ModemControl implements the ns16550.Control interface.
func (l *Line) ModemControl(mcr uint8) {
	l.crit.Lock()
	defer l.crit.Unlock()

	if l.noModemControl || mcr&(ns16550.MCRDTR|ns16550.MCRRTS) == l.mcr&(ns16550.MCRDTR|ns16550.MCRRTS) {
		l.mcr = mcr
		return
	}
	l.mcr = mcr

	err := l.tty.SetDTR(mcr&ns16550.MCRDTR != 0)
	if err == nil {
		err = l.tty.SetRTS(mcr&ns16550.MCRRTS != 0)
	}
	if err != nil {
		l.noModemControl = true
		logger.Logf(logger.Allow, "ttyline", "%s: no modem control: %v", l.device, err)
	}
}

// Speed returns the current speed of the host device.
func (l *Line) Speed() int {
	l.crit.Lock()
	defer l.crit.Unlock()
	return l.speed
}
