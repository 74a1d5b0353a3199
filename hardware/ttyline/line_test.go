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

//go:build linux

package ttyline_test

import (
	"testing"
	"time"

	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/hardware/ns16550"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/hardware/ttyline"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/test"
	"github.com/pkg/term/termios"
)

func TestPseudoTerminal(t *testing.T) {
	ptm, pts, err := termios.Pty()
	if err != nil {
		t.Skipf("no pseudo-terminal available: %v", err)
	}
	defer ptm.Close()
	defer pts.Close()

	chip := ns16550.New(ns16550.Model16550A, nil)
	chip.Write(ns16550.FCR, 0x07)

	line, err := ttyline.Open(pts.Name(), chip)
	test.DemandSuccess(t, err)
	defer line.Close()

	// speed follows the divisor latch
	chip.Write(ns16550.LCR, ns16550.LCRDLAB)
	chip.Write(ns16550.DLL, 6)
	chip.Write(ns16550.DLM, 0)
	chip.Write(ns16550.LCR, 0x03)
	test.ExpectEquality(t, line.Speed(), 19200)

	// host to chip
	_, err = ptm.Write([]byte("hi"))
	test.DemandSuccess(t, err)

	deadline := time.Now().Add(2 * time.Second)
	var got []byte
	for len(got) < 2 && time.Now().Before(deadline) {
		if chip.Read(ns16550.LSR)&ns16550.LSRDataReady != 0 {
			got = append(got, chip.Read(ns16550.RBR))
			continue
		}
		time.Sleep(time.Millisecond)
	}
	test.ExpectEquality(t, string(got), "hi")

	// chip to host
	chip.Write(ns16550.THR, 'Z')
	test.ExpectSuccess(t, chip.Tick())
	b := make([]byte, 1)
	_ = ptm.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := ptm.Read(b)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, 1)
	test.ExpectEquality(t, b[0], 'Z')
}
