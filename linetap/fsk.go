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

package linetap

import (
	"math"
)

// Line parameters.
const (
	SampleRate = 9600
	BitRate    = 300
	MarkFreq   = 1270.0
	SpaceFreq  = 1070.0
)

// amplitude of the generated tones
const amplitude = 0.5

// number of mark bits before the first character and after the last
const idleBits = 8

// bits in a frame including start and stop bits
const frameBits = 10

// Modulator generates the tones for a sequence of characters.
type Modulator struct {
	rate    int
	phase   float64
	samples []float64

	// fractional sample position. bit boundaries are not whole samples unless
	// the sample rate is a multiple of the bit rate
	position float64
}

// NewModulator is the preferred method of initialisation for the Modulator
// type.
func NewModulator(rate int) *Modulator {
	return &Modulator{rate: rate}
}

// Samples returns the samples generated so far.
func (m *Modulator) Samples() []float64 {
	return m.samples
}

// Len returns the number of samples generated so far.
func (m *Modulator) Len() int {
	return len(m.samples)
}

func (m *Modulator) bit(one bool) {
	freq := SpaceFreq
	if one {
		freq = MarkFreq
	}
	step := 2 * math.Pi * freq / float64(m.rate)

	m.position += float64(m.rate) / BitRate
	for float64(len(m.samples)) < m.position {
		m.samples = append(m.samples, amplitude*math.Sin(m.phase))

		// the phase is continuous across bits
		m.phase = math.Mod(m.phase+step, 2*math.Pi)
	}
}

// Idle adds n bits of mark tone.
func (m *Modulator) Idle(n int) {
	for i := 0; i < n; i++ {
		m.bit(true)
	}
}

// Byte adds the tones for one character.
func (m *Modulator) Byte(b byte) {
	m.bit(false)
	for i := 0; i < 8; i++ {
		m.bit(b&(1<<i) != 0)
	}
	m.bit(true)
}

// IdleUntil adds mark tone until there are at least n samples.
func (m *Modulator) IdleUntil(n int) {
	for len(m.samples) < n {
		m.bit(true)
	}
}

// goertzel returns the power of the frequency in the samples.
func goertzel(samples []float64, freq float64, rate int) float64 {
	coeff := 2 * math.Cos(2*math.Pi*freq/float64(rate))
	var s1, s2 float64
	for _, x := range samples {
		s := x + coeff*s1 - s2
		s2 = s1
		s1 = s
	}
	return s1*s1 + s2*s2 - coeff*s1*s2
}

// tone is the result of comparing the mark and space power in a window
type tone int

const (
	noTone tone = iota
	mark
	space
)

// discriminator decides which tone is present in a window of samples
type discriminator struct {
	samples []float64
	rate    int
	width   int

	// power below this is silence
	floor float64
}

func newDiscriminator(samples []float64, rate int) *discriminator {
	width := int(math.Round(float64(rate) / BitRate))

	// a tone at a tenth of the generated amplitude
	quiet := float64(width) * amplitude / 20
	return &discriminator{
		samples: samples,
		rate:    rate,
		width:   width,
		floor:   quiet * quiet,
	}
}

func (d *discriminator) power(i int) (float64, float64) {
	if i < 0 || i+d.width > len(d.samples) {
		return 0, 0
	}
	w := d.samples[i : i+d.width]
	return goertzel(w, MarkFreq, d.rate), goertzel(w, SpaceFreq, d.rate)
}

// decided returns the tone in the window starting at sample i if one tone is
// clearly stronger than the other
func (d *discriminator) decided(i int) tone {
	m, s := d.power(i)
	switch {
	case m > d.floor && m > 2*s:
		return mark
	case s > d.floor && s > 2*m:
		return space
	}
	return noTone
}

// bit returns the value of the bit in the window starting at sample i
func (d *discriminator) bit(i int) bool {
	m, s := d.power(i)
	return m >= s
}

// Demodulate recovers the characters from the samples. Characters with a
// bad stop bit are discarded.
func Demodulate(samples []float64, rate int) []byte {
	d := newDiscriminator(samples, rate)
	spb := float64(rate) / BitRate

	// the window is mostly space when space is decided, so the edge is a
	// little after the start of the window
	lag := int(math.Round(spb * 0.3))

	var out []byte

	i := 0
	idle := false
	for i+d.width <= len(samples) {
		t := d.decided(i)
		if t == mark {
			idle = true
		}
		if !idle || t != space {
			i++
			continue // for loop
		}

		start := float64(i + lag)
		at := func(n int) int {
			return int(math.Round(start + float64(n)*spb))
		}

		if at(frameBits) > len(samples) {
			break // for loop
		}

		var b byte
		for n := 0; n < 8; n++ {
			if d.bit(at(n + 1)) {
				b |= 1 << n
			}
		}

		// the next start bit can follow the stop bit immediately so the
		// search continues from the stop bit. a bad stop bit means the line
		// must be seen idle again before the next character
		i = at(frameBits - 1)
		idle = d.bit(i)
		if idle {
			out = append(out, b)
		}
	}

	return out
}
