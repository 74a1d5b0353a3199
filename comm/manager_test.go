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

package comm_test

import (
	"testing"

	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/atexit"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/bios"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/comm"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/curated"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/hardware/ns16550"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/hardware/nullmodem"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/hardware/pc"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/test"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/uart"
)

func selfPair(t *testing.T) (*comm.Manager, *comm.Port, *comm.Port) {
	t.Helper()
	mgr := comm.NewManager(comm.Options{})
	self, err := mgr.Open(comm.Self, 1, 0, comm.Baud9600)
	test.DemandSuccess(t, err)
	client, err := mgr.Open(comm.SelfClient, 1, 0, comm.Baud9600)
	test.DemandSuccess(t, err)
	return mgr, self, client
}

func TestSelfEndToEnd(t *testing.T) {
	mgr, self, client := selfPair(t)
	test.ExpectSuccess(t, mgr.CheckClientAndServerExist())

	test.DemandSuccess(t, mgr.SetActivePort(client))
	mgr.SendByte('A')
	test.ExpectEquality(t, mgr.SendBufferLength(), 1)
	test.ExpectEquality(t, mgr.RecvByte(), comm.NoData)

	test.DemandSuccess(t, mgr.SetActivePort(self))
	test.ExpectEquality(t, mgr.ReadBufferLength(), 1)
	test.ExpectEquality(t, mgr.RecvByte(), 'A')
	test.ExpectEquality(t, mgr.RecvByte(), comm.NoData)

	// and the other way
	mgr.SendByte('B')
	test.DemandSuccess(t, mgr.SetActivePortByIndex(client.Index()))
	test.ExpectEquality(t, mgr.RecvByte(), 'B')
}

func TestLoopbackOrdering(t *testing.T) {
	mgr, self, client := selfPair(t)

	toServer := []byte("from the client")
	toClient := []byte("from the server, longer")

	test.DemandSuccess(t, mgr.SetActivePort(client))
	test.ExpectEquality(t, mgr.SendData(toServer, len(toServer)), len(toServer))
	test.DemandSuccess(t, mgr.SetActivePort(self))
	test.ExpectEquality(t, mgr.SendData(toClient, 100), len(toClient))

	buf := make([]byte, 100)
	n := mgr.ReadData(buf, len(buf))
	test.ExpectEquality(t, string(buf[:n]), string(toServer))

	test.DemandSuccess(t, mgr.SetActivePort(client))
	n = mgr.ReadData(buf, len(buf))
	test.ExpectEquality(t, string(buf[:n]), string(toClient))
}

func TestSendOverflow(t *testing.T) {
	mgr, self, client := selfPair(t)

	data := make([]byte, 1100)
	for i := range data {
		data[i] = byte(i)
	}

	test.DemandSuccess(t, mgr.SetActivePort(client))
	mgr.SendData(data, len(data))
	test.ExpectEquality(t, mgr.SendBufferLength(), 1023)

	test.DemandSuccess(t, mgr.SetActivePort(self))
	buf := make([]byte, len(data))
	n := mgr.ReadData(buf, len(buf))
	test.DemandEquality(t, n, 1023)
	test.ExpectEquality(t, string(buf[:n]), string(data[:n]))
}

func TestNoActivePort(t *testing.T) {
	mgr, self, _ := selfPair(t)

	test.ExpectEquality(t, mgr.RecvByte(), comm.NoData)
	test.ExpectEquality(t, mgr.ScanByte(), comm.NoData)
	test.ExpectEquality(t, mgr.ReadBufferLength(), 0)
	test.ExpectEquality(t, mgr.SendBufferLength(), 0)
	test.ExpectFailure(t, mgr.IsServer())
	_, ok := mgr.PortType()
	test.ExpectFailure(t, ok)
	mgr.SendByte('x')

	// closing the active port leaves no port active
	test.DemandSuccess(t, mgr.SetActivePort(self))
	test.ExpectEquality(t, mgr.ActivePort(), self)
	test.DemandSuccess(t, mgr.Close(self))
	test.ExpectSuccess(t, mgr.ActivePort() == nil)
	test.ExpectEquality(t, mgr.RecvByte(), comm.NoData)
	test.ExpectFailure(t, mgr.CheckClientAndServerExist())
}

func TestOpenErrors(t *testing.T) {
	mgr, self, _ := selfPair(t)

	_, err := mgr.Open(comm.PortType(99), 1, 0, comm.Baud9600)
	test.ExpectSuccess(t, curated.Is(err, comm.BadPortType))
	_, err = mgr.Open(comm.Self, 1, 0, comm.Baud(-1))
	test.ExpectSuccess(t, curated.Is(err, comm.BadBaud))
	_, err = mgr.Open(comm.StandardModem, 0, 0, comm.Baud9600)
	test.ExpectSuccess(t, curated.Is(err, comm.BadAddress))
	_, err = mgr.Open(comm.IrqModem, 0x10000, 4, comm.Baud9600)
	test.ExpectSuccess(t, curated.Is(err, comm.BadAddress))
	_, err = mgr.Open(comm.SelfClient, 0, 0, comm.Baud9600)
	test.ExpectSuccess(t, curated.Is(err, comm.BadAddress))
	_, err = mgr.Open(comm.Self, -1, 0, comm.Baud9600)
	test.ExpectSuccess(t, curated.Is(err, comm.BadAddress))

	_, err = mgr.Open(comm.Self, 1, 0, comm.Baud9600)
	test.ExpectSuccess(t, curated.Is(err, comm.PortAlreadyOpen))

	// no hardware was supplied
	_, err = mgr.Open(comm.StandardModem, 1, 0, comm.Baud9600)
	test.ExpectSuccess(t, curated.Is(err, comm.NoBackend))
	_, err = mgr.Open(comm.IrqModem, 0x3f8, 4, comm.Baud9600)
	test.ExpectSuccess(t, curated.Is(err, comm.NoBackend))

	// handles
	test.DemandSuccess(t, mgr.Close(self))
	test.ExpectSuccess(t, curated.Is(mgr.Close(self), comm.BadHandle))
	test.ExpectSuccess(t, curated.Is(mgr.SetActivePort(self), comm.BadHandle))
	test.ExpectSuccess(t, curated.Is(mgr.SetActivePort(nil), comm.BadHandle))
	test.ExpectSuccess(t, curated.Is(mgr.SetActivePortByIndex(self.Index()), comm.BadHandle))
	test.ExpectSuccess(t, curated.Is(mgr.SetActivePortByIndex(comm.MaxPorts), comm.BadHandle))

	// a closed Self can be opened again
	self, err = mgr.Open(comm.Self, 1, 0, comm.Baud9600)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, self.Index(), 0)
}

func TestRegistryFull(t *testing.T) {
	m := pc.NewMachine()
	for i, base := range bios.StandardBases {
		chip := ns16550.New(ns16550.Model8250, nil)
		test.DemandSuccess(t, m.Attach(base, ns16550.NumRegisters, chip), i)
	}
	mgr := comm.NewManager(comm.Options{Gate: bios.NewMachineGate(m, nil)})

	for i := 1; i <= comm.MaxPorts; i++ {
		p, err := mgr.Open(comm.StandardModem, i, 0, comm.Baud2400)
		test.DemandSuccess(t, err)
		test.ExpectEquality(t, p.Index(), i-1)
	}
	test.ExpectEquality(t, len(mgr.Ports()), comm.MaxPorts)

	_, err := mgr.Open(comm.Self, 1, 0, comm.Baud9600)
	test.ExpectSuccess(t, curated.Is(err, comm.RegistryFull))

	mgr.CloseAll()
	test.ExpectEquality(t, len(mgr.Ports()), 0)
}

func TestIsServer(t *testing.T) {
	mgr, self, client := selfPair(t)

	test.DemandSuccess(t, mgr.SetActivePort(self))
	test.ExpectSuccess(t, mgr.IsServer())
	pt, ok := mgr.PortType()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, pt, comm.Self)

	test.DemandSuccess(t, mgr.SetActivePort(client))
	test.ExpectFailure(t, mgr.IsServer())

	m := pc.NewMachine()
	chip := ns16550.New(ns16550.Model16550A, nil)
	test.DemandSuccess(t, m.Attach(0x3f8, ns16550.NumRegisters, chip))
	mgr = comm.NewManager(comm.Options{Gate: bios.NewMachineGate(m, nil)})

	p, err := mgr.Open(comm.NullModem, 1, 0, comm.Baud9600)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, mgr.SetActivePort(p))

	for _, tc := range []struct {
		sub    comm.LinkSubType
		server bool
	}{
		{sub: comm.LinkNone, server: false},
		{sub: comm.DirectMaster, server: true},
		{sub: comm.Dial, server: false},
		{sub: comm.Answer, server: true},
		{sub: comm.DirectSlave, server: false},
	} {
		p.SetLinkSubType(tc.sub)
		test.ExpectEquality(t, mgr.LinkSubType(), tc.sub)
		test.ExpectEquality(t, mgr.IsServer(), tc.server, tc.sub)
	}
}

func TestClearPort(t *testing.T) {
	mgr, self, client := selfPair(t)

	test.DemandSuccess(t, mgr.SetActivePort(client))
	mgr.SendData([]byte("discard"), 7)

	test.DemandSuccess(t, mgr.SetActivePort(self))
	buf := make([]byte, 3)
	_, err := mgr.ScanData(buf, 3)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, mgr.ReadBufferLength(), 7)

	mgr.ClearPort()
	test.ExpectEquality(t, mgr.ReadBufferLength(), 0)
	test.ExpectEquality(t, mgr.RecvByte(), comm.NoData)
	test.ExpectEquality(t, mgr.Rewindable(), 0)
}

func TestBaud(t *testing.T) {
	for _, tc := range []struct {
		baud comm.Baud
		rate uint32
	}{
		{baud: comm.Baud2400, rate: 2400},
		{baud: comm.Baud9600, rate: 9600},
		{baud: comm.Baud19200, rate: 19200},
		{baud: comm.Baud57600, rate: 57600},
	} {
		test.ExpectEquality(t, comm.ConvertBaudTo32(tc.baud), tc.rate)
		b, ok := comm.BaudFromRate(int(tc.rate))
		test.ExpectSuccess(t, ok)
		test.ExpectEquality(t, b, tc.baud)
	}
	test.ExpectEquality(t, comm.ConvertBaudTo32(comm.Baud(10)), 0)
	_, ok := comm.BaudFromRate(1200)
	test.ExpectFailure(t, ok)
}

func TestBIOSBaudFallback(t *testing.T) {
	m := pc.NewMachine()
	chip := ns16550.New(ns16550.Model16550A, nil)
	test.DemandSuccess(t, m.Attach(0x3f8, ns16550.NumRegisters, chip))
	mgr := comm.NewManager(comm.Options{Gate: bios.NewMachineGate(m, nil)})

	p, err := mgr.Open(comm.StandardModem, 1, 0, comm.Baud57600)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, mgr.SetActivePort(p))
	test.ExpectEquality(t, mgr.BaudRate(), comm.Baud9600)
	test.ExpectEquality(t, p.Baud(), comm.Baud9600)
	test.ExpectEquality(t, mgr.SendBufferLength(), 0)

	_, err = mgr.Open(comm.StandardModem, 2, 0, comm.Baud9600)
	test.ExpectSuccess(t, curated.Has(err, bios.NoPort))
}

// station is a PC with a UART at COM1 and a Manager using the UART
type station struct {
	m    *pc.Machine
	chip *ns16550.Chip
	mgr  *comm.Manager
}

func newStation(t *testing.T) *station {
	t.Helper()
	st := &station{m: pc.NewMachine()}
	st.chip = ns16550.New(ns16550.Model16550A, func() { st.m.Raise(4) })
	test.DemandSuccess(t, st.m.Attach(0x3f8, ns16550.NumRegisters, st.chip))
	st.mgr = comm.NewManager(comm.Options{Host: st.m, Hooks: &atexit.Hooks{}})
	return st
}

func TestIrqModem(t *testing.T) {
	a := newStation(t)
	b := newStation(t)
	cable := nullmodem.Connect(a.chip, b.chip)

	_, err := a.mgr.Open(comm.IrqModem, 0x3f8, 9, comm.Baud57600)
	test.ExpectSuccess(t, curated.Is(err, uart.IrqUnavailable))
	test.ExpectEquality(t, len(a.mgr.Ports()), 0)

	pa, err := a.mgr.Open(comm.IrqModem, 0x3f8, 4, comm.Baud57600)
	test.DemandSuccess(t, err)
	pb, err := b.mgr.Open(comm.IrqModem, 0x3f8, 4, comm.Baud57600)
	test.DemandSuccess(t, err)
	a.m.Service()
	b.m.Service()

	_, err = a.mgr.Open(comm.IrqModem, 0x2f8, 3, comm.Baud57600)
	test.ExpectSuccess(t, curated.Is(err, comm.PortAlreadyOpen))

	test.DemandSuccess(t, a.mgr.SetActivePort(pa))
	test.DemandSuccess(t, b.mgr.SetActivePort(pb))

	msg := []byte("hello")
	a.mgr.SendData(msg, len(msg))

	for i := 0; i < 10000 && b.mgr.ReadBufferLength() < len(msg); i++ {
		a.m.Service()
		b.m.Service()
		cable.Tick()
	}

	buf := make([]byte, len(msg))
	n, err := b.mgr.ScanData(buf, len(buf))
	test.DemandSuccess(t, err)
	test.DemandEquality(t, n, len(msg))
	test.ExpectEquality(t, string(buf), string(msg))
	test.ExpectEquality(t, b.mgr.ReadData(buf, len(buf)), len(msg))
	test.ExpectEquality(t, string(buf), string(msg))

	stats, ok := b.mgr.UARTStats()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, stats.Received, uint64(len(msg)))

	test.ExpectSuccess(t, a.mgr.Close(pa))
	test.ExpectSuccess(t, b.mgr.Close(pb))
}
