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

// Package modalflag wraps the flag package from the standard library and adds
// the concept of program modes. Each mode can have its own set of flags and
// its own set of sub-modes.
//
// Arguments are given to a Modes instance with NewArgs(). Flags are then added
// and Parse() is called with no arguments:
//
//	md := modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("LOOPBACK", "LINK", "PROBE", "TAP")
//	configFile := md.AddString("config", "", "path to configuration file")
//
//	p, err := md.Parse()
//	switch p {
//	case modalflag.ParseHelp:
//		return
//	case modalflag.ParseError:
//		return err
//	}
//
// After a successful Parse() the selected mode is returned by Mode(). The first
// sub-mode in the list is the default and is selected if the first non-flag
// argument does not name a sub-mode. Sub-mode comparisons are case
// insensitive and Mode() always returns the upper-case name.
//
// Further flags for the selected mode are parsed by calling NewMode() and then
// Parse() again. The Path() function returns the chain of modes selected so
// far, joined with a forward slash.
//
//	switch md.Mode() {
//	case "LINK":
//		md.NewMode()
//		ticks := md.AddInt("ticks", 0, "number of ticks to run for")
//		md.Parse()
//	}
//
// Help output (in response to the -help flag) lists the flags for the current
// mode and any available sub-modes. The Output field must be set for help
// messages to be seen.
package modalflag
