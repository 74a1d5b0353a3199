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
	"io"
	"math"
	"os"
	"sync"

	"github.com/youpy/go-wav"

	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/curated"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/logger"
)

// Recorder generates the line audio for the characters sent from each end of
// a line. Audio is buffered in memory in its entirety and written to disk by
// End().
type Recorder struct {
	filename string

	crit       sync.Mutex
	channels   [2]*Modulator
	characters int
}

// NewRecorder is the preferred method of initialisation for the Recorder
// type.
func NewRecorder(filename string) *Recorder {
	r := &Recorder{filename: filename}
	for i := range r.channels {
		r.channels[i] = NewModulator(SampleRate)
		r.channels[i].Idle(idleBits)
	}
	return r
}

// Monitor records a character sent from one end of the line. The signature
// matches the nullmodem.Monitor type.
func (r *Recorder) Monitor(end int, b byte) {
	if end < 0 || end > 1 {
		return
	}
	r.crit.Lock()
	defer r.crit.Unlock()
	r.channels[end].Byte(b)
	r.characters++
}

// Characters returns the number of characters recorded.
func (r *Recorder) Characters() int {
	r.crit.Lock()
	defer r.crit.Unlock()
	return r.characters
}

// samples returns the recording as 16 bit stereo samples. The shorter
// channel is padded with idle tone.
func (r *Recorder) samples() []wav.Sample {
	for _, ch := range r.channels {
		ch.Idle(idleBits)
	}
	n := max(r.channels[0].Len(), r.channels[1].Len())
	for _, ch := range r.channels {
		ch.IdleUntil(n)
	}

	s := make([]wav.Sample, n)
	for c, ch := range r.channels {
		for i, v := range ch.Samples()[:n] {
			s[i].Values[c] = int(math.Round(v * math.MaxInt16))
		}
	}
	return s
}

// Write the recording as a WAV file.
func (r *Recorder) Write(w io.Writer) error {
	r.crit.Lock()
	defer r.crit.Unlock()

	s := r.samples()
	enc := wav.NewWriter(w, uint32(len(s)), 2, SampleRate, 16)
	if enc == nil {
		return curated.Errorf("linetap: %v", "bad parameters for wav encoding")
	}
	if err := enc.WriteSamples(s); err != nil {
		return curated.Errorf("linetap: %v", err)
	}
	return nil
}

// End the recording and write it to the file given to NewRecorder().
func (r *Recorder) End() (rerr error) {
	f, err := os.Create(r.filename)
	if err != nil {
		return curated.Errorf("linetap: %v", err)
	}
	defer func() {
		err := f.Close()
		if err != nil && rerr == nil {
			rerr = curated.Errorf("linetap: %v", err)
		}
	}()

	logger.Logf(logger.Allow, "linetap", "writing %d characters to %s", r.Characters(), r.filename)

	return r.Write(f)
}
