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

// Package nullmodem connects two emulated UART chips with a null-modem cable.
// The transmit line of each chip is wired to the receive line of the other.
// DTR is wired to the DSR and DCD inputs of the other chip and RTS to CTS.
//
// Characters move across the cable when a chip transmits. Use Tick() to
// advance both transmitters by one character time or Run() to move characters
// at the speed set by each chip's divisor latch.
package nullmodem
