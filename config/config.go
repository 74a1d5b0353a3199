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

package config

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/curated"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/logger"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/prefs"
)

// Patterns for curated errors.
const (
	Unreadable = "config: cannot read %s: %v"
	BadValue   = "config: %s: %v"
	Unwritable = "config: cannot write %s: %v"
)

// Section names.
const (
	SectionSerial  = "serial"
	SectionDevices = "devices"
	SectionLine    = "line"
)

// NumDevices is the number of COM ports that can be named in the [devices]
// section.
const NumDevices = 4

// Config is the set of serial settings.
type Config struct {
	ComPort    prefs.Int
	Baud       prefs.Int
	IOAddr     prefs.Int
	IRQ        prefs.Int
	PhoneNum   prefs.String
	Connection prefs.String

	Devices [NumDevices]prefs.String

	TTY prefs.String
	Tap prefs.String
}

type value interface {
	Set(prefs.Value) error
	String() string
}

// entry ties a key in the file to a value in the Config type
type entry struct {
	section string
	key     string
	value   value
	hex     bool
}

func (c *Config) entries() []entry {
	e := []entry{
		{section: SectionSerial, key: "comport", value: &c.ComPort},
		{section: SectionSerial, key: "baud", value: &c.Baud},
		{section: SectionSerial, key: "ioaddr", value: &c.IOAddr, hex: true},
		{section: SectionSerial, key: "irq", value: &c.IRQ},
		{section: SectionSerial, key: "phonenum", value: &c.PhoneNum},
		{section: SectionSerial, key: "connection", value: &c.Connection},
		{section: SectionLine, key: "tty", value: &c.TTY},
		{section: SectionLine, key: "tap", value: &c.Tap},
	}
	for i := range c.Devices {
		e = append(e, entry{section: SectionDevices, key: fmt.Sprintf("com%d", i+1), value: &c.Devices[i]})
	}
	return e
}

func (e entry) set(v string) error {
	v = strings.TrimSpace(v)
	if e.hex {
		v = strings.TrimPrefix(strings.ToLower(v), "0x")
		v = fmt.Sprintf("0x%s", v)
	}
	if err := e.value.Set(v); err != nil {
		return curated.Errorf(BadValue, e.key, err)
	}
	return nil
}

func (e entry) String() string {
	if p, ok := e.value.(*prefs.Int); ok && e.hex {
		return fmt.Sprintf("%x", p.Get())
	}
	return e.value.String()
}

// NewConfig returns a Config with default values: COM1 at 9600 baud, UART at
// 3f8 on IRQ 4 and a single player connection.
func NewConfig() *Config {
	c := &Config{}

	c.ComPort.SetHookPre(func(v prefs.Value) error {
		if n := v.(int); n < 1 || n > NumDevices {
			return fmt.Errorf("no such port (COM%d)", n)
		}
		return nil
	})
	c.Baud.SetHookPre(func(v prefs.Value) error {
		switch v.(int) {
		case 2400, 9600, 19200, 57600:
			return nil
		}
		return fmt.Errorf("unsupported rate (%d)", v)
	})
	c.IOAddr.SetHookPre(func(v prefs.Value) error {
		if n := v.(int); n <= 0 || n > 0xffff {
			return fmt.Errorf("address out of range (%#x)", n)
		}
		return nil
	})
	c.IRQ.SetHookPre(func(v prefs.Value) error {
		if n := v.(int); n < 0 || n > 7 {
			return fmt.Errorf("irq out of range (%d)", n)
		}
		return nil
	})
	c.Connection.SetHookPre(func(v prefs.Value) error {
		if strings.ContainsAny(v.(string), " \t") {
			return fmt.Errorf("connection cannot contain spaces")
		}
		return nil
	})

	_ = c.ComPort.Set(1)
	_ = c.Baud.Set(9600)
	_ = c.IOAddr.Set(0x3f8)
	_ = c.IRQ.Set(4)
	_ = c.Connection.Set("single")

	return c
}

// Load the file at path. Missing keys keep their default values. Values on
// the prefs command line stack take precedence over values in the file. An
// unreadable file is an error.
func Load(path string) (*Config, error) {
	f, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if err != nil {
		return nil, curated.Errorf(Unreadable, path, err)
	}

	c := NewConfig()
	for _, e := range c.entries() {
		sec, err := f.GetSection(e.section)
		if err != nil || !sec.HasKey(e.key) {
			continue // for loop
		}
		if err := e.set(sec.Key(e.key).String()); err != nil {
			return nil, err
		}
	}

	if err := c.applyCommandLine(); err != nil {
		return nil, err
	}

	logger.Logf(logger.Allow, "config", "%s: %s", path, c)

	return c, nil
}

// applyCommandLine sets any value found on the prefs command line stack
func (c *Config) applyCommandLine() error {
	for _, e := range c.entries() {
		ok, v := prefs.GetCommandLinePref(e.key)
		if !ok {
			continue // for loop
		}
		if err := e.set(fmt.Sprintf("%v", v)); err != nil {
			return err
		}
	}
	return nil
}

// Save the configuration to path. Empty values are not written.
func (c *Config) Save(path string) error {
	f := ini.Empty()
	for _, e := range c.entries() {
		v := e.String()
		if v == "" {
			continue // for loop
		}
		f.Section(e.section).Key(e.key).SetValue(v)
	}
	if err := f.SaveTo(path); err != nil {
		return curated.Errorf(Unwritable, path, err)
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf("COM%s %s baud, ioaddr %x irq %s, connection %s",
		c.ComPort.String(), c.Baud.String(), c.IOAddr.Get(), c.IRQ.String(), c.Connection.String())
}
