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
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"

	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/curated"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/logger"
)

// Patterns for curated errors.
const (
	UnsupportedFile = "linetap: unsupported file type: %s"
	BadRecording    = "linetap: %s: %v"
)

// PCM is decoded audio with each channel normalised to the range -1 to 1.
type PCM struct {
	SampleRate int
	Channels   [][]float64
}

// Demodulate each channel of the audio.
func (p PCM) Demodulate() [][]byte {
	out := make([][]byte, len(p.Channels))
	for i, ch := range p.Channels {
		out[i] = Demodulate(ch, p.SampleRate)
	}
	return out
}

// number of frames decoded from a WAV file at a time
const wavChunk = 4096

// DecodeWAV decodes a WAV file.
func DecodeWAV(r io.ReadSeeker) (PCM, error) {
	var p PCM

	dec := wav.NewDecoder(r)
	if dec == nil || !dec.IsValidFile() {
		return p, curated.Errorf(BadRecording, "wav", "not a valid wav file")
	}

	numChans := int(dec.NumChans)
	p.SampleRate = int(dec.SampleRate)
	p.Channels = make([][]float64, numChans)

	scale := float64(int(1) << (dec.BitDepth - 1))

	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: numChans, SampleRate: p.SampleRate},
		Data:   make([]int, wavChunk*numChans),
	}
	for {
		n, err := dec.PCMBuffer(buf)
		if err != nil {
			return p, curated.Errorf(BadRecording, "wav", err)
		}
		if n == 0 {
			break // for loop
		}
		for i := 0; i+numChans <= n; i += numChans {
			for c := 0; c < numChans; c++ {
				p.Channels[c] = append(p.Channels[c], float64(buf.Data[i+c])/scale)
			}
		}
	}

	return p, nil
}

// DecodeMP3 decodes an MP3 file. The decoder always produces two channels.
func DecodeMP3(r io.Reader) (PCM, error) {
	var p PCM

	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return p, curated.Errorf(BadRecording, "mp3", err)
	}

	p.SampleRate = dec.SampleRate()
	p.Channels = make([][]float64, 2)

	// the stream is 16bit little endian with two channels, so four bytes for
	// each sample
	chunk := make([]byte, 4096)
	for {
		n, err := io.ReadFull(dec, chunk)
		for i := 0; i+4 <= n; i += 4 {
			l := int16(uint16(chunk[i]) | uint16(chunk[i+1])<<8)
			r := int16(uint16(chunk[i+2]) | uint16(chunk[i+3])<<8)
			p.Channels[0] = append(p.Channels[0], float64(l)/32768)
			p.Channels[1] = append(p.Channels[1], float64(r)/32768)
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break // for loop
		}
		if err != nil {
			return p, curated.Errorf(BadRecording, "mp3", err)
		}
	}

	return p, nil
}

// Load a recording from a WAV or MP3 file and return the characters for each
// channel.
func Load(filename string) ([][]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, curated.Errorf("linetap: %v", err)
	}
	defer f.Close()

	var p PCM
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		logger.Logf(logger.Allow, "linetap", "loading from wav file %s", filename)
		p, err = DecodeWAV(f)
	case ".mp3":
		logger.Logf(logger.Allow, "linetap", "loading from mp3 file %s", filename)
		p, err = DecodeMP3(f)
	default:
		return nil, curated.Errorf(UnsupportedFile, filename)
	}
	if err != nil {
		return nil, err
	}

	logger.Logf(logger.Allow, "linetap", "sample rate: %dHz", p.SampleRate)

	return p.Demodulate(), nil
}
