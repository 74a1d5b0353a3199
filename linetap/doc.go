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

// Package linetap records the characters crossing a serial line as the audio
// a Bell 103 style modem would produce, and recovers the characters from such
// a recording.
//
// Each character is framed as it is on the line: a start bit, eight data bits
// with the least significant bit first and a stop bit. Bits are sent at 300
// baud with a 1270Hz tone for a one (mark) and a 1070Hz tone for a zero
// (space). The line idles at mark.
//
// A recording is a stereo WAV file with one channel for each end of the line.
// Recordings can be loaded from WAV or MP3 files.
package linetap
