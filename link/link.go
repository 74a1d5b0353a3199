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

package link

import (
	"fmt"
	"strings"

	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/comm"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/config"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/curated"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/logger"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/uart"
)

// Connection names.
const (
	DirectMaster = "directmaster"
	Dial         = "dial"
	Answer       = "answer"
	DirectSlave  = "directslave"
	Single       = "single"
)

// Parse the connection name. Returns comm.LinkNone for the single player
// connection. Returns false if the name is not recognised, in which case the
// single player connection should be used.
func Parse(connection string) (comm.LinkSubType, bool) {
	switch strings.ToLower(strings.TrimSpace(connection)) {
	case DirectMaster:
		return comm.DirectMaster, true
	case Dial:
		return comm.Dial, true
	case Answer:
		return comm.Answer, true
	case DirectSlave:
		return comm.DirectSlave, true
	case Single:
		return comm.LinkNone, true
	}
	return comm.LinkNone, false
}

// Session is the set of ports opened for a game.
type Session struct {
	mgr *comm.Manager

	// the link role. LinkNone for a single player session
	SubType comm.LinkSubType

	// the port the game uses. this is the active port when Start() returns
	Port *comm.Port

	// the client end of the loopback in a single player session. nil
	// otherwise
	Client *comm.Port
}

func (s *Session) String() string {
	if s.Client != nil {
		return fmt.Sprintf("single player: %s + %s", s.Port, s.Client)
	}
	return fmt.Sprintf("%s: %s", s.SubType, s.Port)
}

// Single returns true if the session is a single player session.
func (s *Session) Single() bool {
	return s.Client != nil
}

// Start a session using the settings in the configuration.
func Start(mgr *comm.Manager, cfg *config.Config) (*Session, error) {
	sub, ok := Parse(cfg.Connection.String())
	if !ok {
		logger.Logf(logger.Allow, "link", "unknown connection %q. using %s", cfg.Connection.String(), Single)
	}

	s := &Session{mgr: mgr, SubType: sub}

	var err error
	if sub == comm.LinkNone {
		err = s.startSingle()
	} else {
		err = s.startModem(cfg)
	}
	if err != nil {
		s.Close()
		return nil, err
	}

	if err := mgr.SetActivePort(s.Port); err != nil {
		s.Close()
		return nil, err
	}

	logger.Logf(logger.Allow, "link", "started %s", s)

	return s, nil
}

func (s *Session) startSingle() error {
	var err error
	s.Port, err = s.mgr.Open(comm.Self, 1, 0, comm.Baud57600)
	if err != nil {
		return err
	}
	s.Client, err = s.mgr.Open(comm.SelfClient, 1, 0, comm.Baud57600)
	return err
}

func (s *Session) startModem(cfg *config.Config) error {
	baud, ok := comm.BaudFromRate(cfg.Baud.Get().(int))
	if !ok {
		baud = comm.Baud9600
	}

	if s.SubType == comm.Dial {
		logger.Logf(logger.Allow, "link", "modem commands not supported. not dialing %s", cfg.PhoneNum.String())
	}

	irq := cfg.IRQ.Get().(int)
	comport := cfg.ComPort.Get().(int)

	var err error
	if irq != 0 {
		s.Port, err = s.mgr.Open(comm.IrqModem, cfg.IOAddr.Get().(int), irq, baud)
		if err == nil {
			s.Port.SetLinkSubType(s.SubType)
			return nil
		}

		// the BIOS can still be used if there is no interrupt driven path
		if !curated.Is(err, comm.NoBackend) && !curated.Is(err, uart.IrqUnavailable) {
			return err
		}
		logger.Logf(logger.Allow, "link", "%v. using BIOS on COM%d", err, comport)
	}

	s.Port, err = s.mgr.Open(comm.StandardModem, comport, 0, baud)
	if err != nil {
		return err
	}
	s.Port.SetLinkSubType(s.SubType)
	return nil
}

// Close all ports opened by the session.
func (s *Session) Close() {
	for _, p := range []*comm.Port{s.Port, s.Client} {
		if p != nil {
			_ = s.mgr.Close(p)
		}
	}
	s.Port = nil
	s.Client = nil
}
