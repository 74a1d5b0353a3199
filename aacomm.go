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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/bradleyjkemp/memviz"

	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/atexit"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/bios"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/comm"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/config"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/easyterm"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/hardware/ns16550"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/hardware/nullmodem"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/hardware/pc"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/hardware/ttyline"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/linetap"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/link"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/logger"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/modalflag"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/paths"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/prefs"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/statsview"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/uart"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/version"
)

func main() {
	hooks := &atexit.Hooks{}

	// #ctrlc the exit hooks are run before the process ends so that the
	// hardware is left the way it was found
	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)

	done := make(chan int)
	go func() {
		done <- launch(hooks, os.Args[1:])
	}()

	exitVal := 0
	select {
	case <-intChan:
		fmt.Println("\r")
	case exitVal = <-done:
	}

	hooks.Run()
	os.Exit(exitVal)
}

// launch selects and runs the mode. returns the exit value for the process
func launch(hooks *atexit.Hooks, args []string) int {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)
	md.NewMode()
	md.AddSubModes("LOOPBACK", "LINK", "PROBE", "TAP")
	log := md.AddBool("log", false, "echo debugging log to stdout")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run stats server (%v)", statsview.Available()))
	prefsOverride := md.AddString("prefs", "", "override configuration values (eg. \"baud::19200; irq::3\")")

	v, rev, _ := version.Version()
	md.AdditionalHelp(fmt.Sprintf("%s %s (%s)", version.ApplicationName, v, rev))

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return 0
	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		return 10
	}

	if *log {
		logger.SetEcho(os.Stdout)
	} else {
		logger.SetEcho(nil)
	}

	if *stats {
		statsview.Launch(os.Stdout)
	}

	if *prefsOverride != "" {
		prefs.PushCommandLineStack(*prefsOverride)
		defer func() {
			if unused := prefs.PopCommandLineStack(); unused != "" {
				logger.Logf(logger.Allow, "aacomm", "unused preferences: %s", unused)
			}
		}()
	}

	switch md.Mode() {
	case "LOOPBACK":
		err = loopback(md)
	case "LINK":
		err = linkMode(md, hooks)
	case "PROBE":
		err = probe(md)
	case "TAP":
		err = tap(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		return 20
	}

	return 0
}

// poll calls f every millisecond until it returns true or the timeout
// expires. returns false on timeout
func poll(timeout time.Duration, f func() bool) bool {
	deadline := time.Now().Add(timeout)
	for !f() {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
	return true
}

// loopback runs a single player session and passes a message from the client
// to the server and back again
func loopback(md *modalflag.Modes) error {
	md.NewMode()
	message := md.AddString("message", "hello", "message to send from the client")
	memvizFile := md.AddString("memviz", "", "write graph of the port manager to file (dot format)")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	mgr := comm.NewManager(comm.Options{})
	cfg := config.NewConfig()
	s, err := link.Start(mgr, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if !mgr.CheckClientAndServerExist() {
		return fmt.Errorf("loopback session has no client")
	}

	msg := []byte(*message)

	// client to server
	if err := mgr.SetActivePort(s.Client); err != nil {
		return err
	}
	mgr.SendData(msg, len(msg))

	if err := mgr.SetActivePort(s.Port); err != nil {
		return err
	}
	peek := make([]byte, len(msg))
	n, err := mgr.ScanData(peek, len(peek))
	if err != nil {
		return err
	}
	fmt.Printf("server scanned %q (%d waiting)\n", peek[:n], mgr.ReadBufferLength())

	got := make([]byte, len(msg))
	n = mgr.ReadData(got, len(got))
	fmt.Printf("server received %q\n", got[:n])

	// and back again
	reply := []byte(strings.ToUpper(string(got[:n])))
	mgr.SendData(reply, len(reply))
	if err := mgr.SetActivePort(s.Client); err != nil {
		return err
	}
	n = mgr.ReadData(got, len(got))
	fmt.Printf("client received %q\n", got[:n])

	if *memvizFile != "" {
		f, err := os.Create(*memvizFile)
		if err != nil {
			return err
		}
		defer f.Close()
		memviz.Map(f, mgr)
	}

	return nil
}

// models accepted by the -chip flag
var models = map[string]ns16550.Model{
	"8250":   ns16550.Model8250,
	"16550":  ns16550.Model16550,
	"16550A": ns16550.Model16550A,
}

func parseModel(s string) (ns16550.Model, error) {
	m, ok := models[strings.ToUpper(s)]
	if !ok {
		return 0, fmt.Errorf("unknown chip: %s", s)
	}
	return m, nil
}

// linkMode runs a two player session from the configuration file. the game
// end of the link is an emulated PC. the other end of the link is a host tty
// or, if no tty is configured, a second emulated PC that echoes everything it
// receives
func linkMode(md *modalflag.Modes, hooks *atexit.Hooks) error {
	md.NewMode()
	configFile := md.AddString("config", paths.ResourcePath(paths.ConfigFile), "path to configuration file")
	chipModel := md.AddString("chip", "16550A", "UART model: 8250, 16550, 16550A")
	tapFile := md.AddString("tap", "", "record line audio to WAV file (overrides configuration). \"auto\" generates a name")
	message := md.AddString("message", "", "send message and wait for echo instead of running interactively")
	timeout := md.AddDuration("timeout", 5*time.Second, "how long to wait for the echo of a message")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}

	model, err := parseModel(*chipModel)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	irq := cfg.IRQ.Get().(int)
	base := uint16(cfg.IOAddr.Get().(int))
	if irq == 0 {
		base = bios.StandardBases[cfg.ComPort.Get().(int)-1]
	}

	// the game machine
	machine := pc.NewMachine()
	chip := ns16550.New(model, func() {
		if irq != 0 {
			machine.Raise(irq)
		}
	})
	if err := machine.Attach(base, ns16550.NumRegisters, chip); err != nil {
		return err
	}
	machine.Start()
	defer machine.Stop()

	// the other end of the line
	var peer *uart.Driver
	if tty := cfg.TTY.String(); tty != "" {
		line, err := ttyline.Open(tty, chip)
		if err != nil {
			return err
		}
		defer line.Close()
		go chip.Run(ctx)
	} else {
		peerMachine := pc.NewMachine()
		peerChip := ns16550.New(ns16550.Model16550A, func() { peerMachine.Raise(4) })
		if err := peerMachine.Attach(0x3f8, ns16550.NumRegisters, peerChip); err != nil {
			return err
		}
		peerMachine.Start()
		defer peerMachine.Stop()

		cable := nullmodem.Connect(chip, peerChip)
		defer cable.Disconnect()

		if *tapFile == "" {
			*tapFile = cfg.Tap.String()
		}
		if *tapFile == "auto" {
			*tapFile = fmt.Sprintf("%s.wav", paths.UniqueFilename("tap", fmt.Sprintf("COM%d", cfg.ComPort.Get())))
		}
		if *tapFile != "" {
			rec := linetap.NewRecorder(*tapFile)
			cable.SetMonitor(rec.Monitor)
			defer func() {
				if err := rec.End(); err != nil {
					logger.Log(logger.Allow, "aacomm", err)
				}
			}()
		}

		go cable.Run(ctx)
		peer = uart.NewDriver(peerMachine, hooks)
	}

	// the BIOS uses host serial devices if any are configured
	var gate bios.Gate = bios.NewMachineGate(machine, nil)
	var devices []string
	for i := range cfg.Devices {
		devices = append(devices, cfg.Devices[i].String())
	}
	if strings.Join(devices, "") != "" {
		gate = bios.NewHostGate(devices)
	}

	mgr := comm.NewManager(comm.Options{Host: machine, Gate: gate, Hooks: hooks})
	s, err := link.Start(mgr, cfg)
	if err != nil {
		return err
	}
	hooks.Register(s.Close)
	defer s.Close()

	if s.Single() {
		return fmt.Errorf("%s is not a two player connection", cfg.Connection.String())
	}

	if peer != nil {
		rate := int(comm.ConvertBaudTo32(s.Port.Baud()))
		if err := peer.Open(0x3f8, 4, rate); err != nil {
			return err
		}
		defer peer.Close()
		go echo(ctx, peer)
	}

	fmt.Printf("%s (server %v)\n", s, mgr.IsServer())

	if *message != "" {
		msg := []byte(*message)
		mgr.SendData(msg, len(msg))

		got := make([]byte, 0, len(msg))
		ok := poll(*timeout, func() bool {
			for v := mgr.RecvByte(); v != comm.NoData; v = mgr.RecvByte() {
				got = append(got, byte(v))
			}
			return len(got) >= len(msg)
		})
		fmt.Printf("received %q\n", got)
		if st, ok := mgr.UARTStats(); ok {
			fmt.Println(st)
		}
		if !ok {
			return fmt.Errorf("timeout waiting for echo")
		}
		return nil
	}

	return interactive(mgr)
}

// echo sends back everything the driver receives
func echo(ctx context.Context, drv *uart.Driver) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if b, ok := drv.Recv(); ok {
			drv.Send(b)
		} else {
			time.Sleep(time.Millisecond)
		}
	}
}

// interactive sends key presses to the active port and prints what is
// received until ctrl-c is pressed
func interactive(mgr *comm.Manager) error {
	var pt easyterm.Terminal
	if err := pt.Initialise(os.Stdin, os.Stdout); err != nil {
		return err
	}
	if err := pt.RawMode(); err != nil {
		return err
	}
	defer func() {
		_ = pt.CanonicalMode()
	}()

	pt.Print("connected. ctrl-c to end\n")

	keys := make(chan byte)
	go func() {
		for {
			k, err := pt.ReadKey()
			if err != nil {
				close(keys)
				return
			}
			keys <- k
		}
	}()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case k, ok := <-keys:
			if !ok {
				return nil
			}
			switch k {
			case easyterm.KeyInterrupt:
				pt.Print("\n")
				return nil
			case easyterm.KeySuspend:
				_ = pt.CanonicalMode()
				easyterm.SuspendProcess()
				_ = pt.RawMode()
			default:
				mgr.SendByte(k)
			}

		case <-ticker.C:
			for v := mgr.RecvByte(); v != comm.NoData; v = mgr.RecvByte() {
				if v == easyterm.KeyCarriageReturn {
					pt.Print("\n")
				} else {
					pt.Print("%c", rune(v))
				}
			}
		}
	}
}

// probe opens the driver on each UART model and reports what it finds
func probe(md *modalflag.Modes) error {
	md.NewMode()
	chipModel := md.AddString("chip", "", "UART model to probe (default is all models)")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	list := []ns16550.Model{ns16550.Model8250, ns16550.Model16550, ns16550.Model16550A}
	if *chipModel != "" {
		m, err := parseModel(*chipModel)
		if err != nil {
			return err
		}
		list = []ns16550.Model{m}
	}

	for _, model := range list {
		machine := pc.NewMachine()
		chip := ns16550.New(model, func() { machine.Raise(4) })
		if err := machine.Attach(0x3f8, ns16550.NumRegisters, chip); err != nil {
			return err
		}

		drv := uart.NewDriver(machine, nil)
		if err := drv.Open(0x3f8, 4, 9600); err != nil {
			return err
		}

		var rates []string
		for _, b := range []comm.Baud{comm.Baud2400, comm.Baud9600, comm.Baud19200, comm.Baud57600} {
			rate := int(comm.ConvertBaudTo32(b))
			if err := drv.SetBaud(rate); err != nil {
				return err
			}
			if drv.Baud() == rate {
				rates = append(rates, b.String())
			}
		}

		fmt.Printf("%-7s driven as %s. rates: %s\n", model, drv.Chip(), strings.Join(rates, " "))

		if err := drv.Close(); err != nil {
			return err
		}
	}

	return nil
}

// tap demodulates a line recording and replays each end of the line into an
// emulated UART
func tap(md *modalflag.Modes) error {
	md.NewMode()

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("a single WAV or MP3 file is required for %s mode", md)
	}

	channels, err := linetap.Load(md.GetArg(0))
	if err != nil {
		return err
	}

	for end, data := range channels {
		machine := pc.NewMachine()
		chip := ns16550.New(ns16550.Model16550A, func() { machine.Raise(4) })
		if err := machine.Attach(0x3f8, ns16550.NumRegisters, chip); err != nil {
			return err
		}

		mgr := comm.NewManager(comm.Options{Host: machine})
		port, err := mgr.Open(comm.IrqModem, 0x3f8, 4, comm.Baud9600)
		if err != nil {
			return err
		}
		if err := mgr.SetActivePort(port); err != nil {
			return err
		}
		machine.Service()

		for _, b := range data {
			chip.Receive(b)
			machine.Service()
		}

		got := make([]byte, len(data))
		n := mgr.ReadData(got, len(got))
		fmt.Printf("end %d: %q\n", end, got[:n])

		mgr.CloseAll()
	}

	return nil
}
