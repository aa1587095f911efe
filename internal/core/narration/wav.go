// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package narration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth     = 16
	pcmFormatTag = 1
)

// Format describes the canonical waveform every segment is stored in.
// Samples are always signed 16-bit little endian.
type Format struct {
	SampleRate int
	Channels   int
}

// DefaultFormat is mono 24 kHz, which is what the speech services return.
var DefaultFormat = Format{SampleRate: 24000, Channels: 1}

func (f Format) String() string {
	return fmt.Sprintf("%d Hz, %d ch, %d bit", f.SampleRate, f.Channels, bitDepth)
}

// WriteWAV wraps raw 16-bit little endian PCM into a WAV file at path.
// The file is written under a temporary name and renamed into place.
func WriteWAV(path string, pcm []byte, format Format) error {
	if len(pcm) == 0 {
		return ErrEmptyAudio
	}
	frameSize := 2 * format.Channels
	if format.Channels < 1 || len(pcm)%frameSize != 0 {
		return fmt.Errorf("pcm length %d is not a multiple of the %d byte frame size", len(pcm), frameSize)
	}

	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8))
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: format.Channels, SampleRate: format.SampleRate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	return writeBuffer(path, buf)
}

func writeBuffer(path string, buf *audio.IntBuffer) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	enc := wav.NewEncoder(tmp, buf.Format.SampleRate, bitDepth, buf.Format.NumChannels, pcmFormatTag)
	if err = enc.Write(buf); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err = enc.Close(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadWAV decodes a WAV file into its samples and format.
func ReadWAV(path string) (*audio.IntBuffer, Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Format{}, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, Format{}, fmt.Errorf("%s is not a readable wav file: %w", path, err)
	}
	if dec.NumChans < 1 || dec.SampleRate == 0 {
		return nil, Format{}, fmt.Errorf("%s is not a readable wav file", path)
	}
	if dec.BitDepth != bitDepth {
		return nil, Format{}, fmt.Errorf("%s has %d bit samples, want %d", path, dec.BitDepth, bitDepth)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, Format{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return buf, Format{SampleRate: int(dec.SampleRate), Channels: int(dec.NumChans)}, nil
}

// Duration returns the playback length of a WAV file.
func Duration(path string) (time.Duration, error) {
	buf, format, err := ReadWAV(path)
	if err != nil {
		return 0, err
	}
	frames := len(buf.Data) / format.Channels
	return time.Duration(frames) * time.Second / time.Duration(format.SampleRate), nil
}

// NativeConcatenator joins WAV files without an external encoder. It cannot
// resample, so every input must already be in the target format.
type NativeConcatenator struct {
	Format Format
}

func (n *NativeConcatenator) ConcatAudio(ctx context.Context, inputs []string, dest string) error {
	if len(inputs) == 0 {
		return errors.New("no audio files to concatenate")
	}
	for _, in := range inputs {
		if _, err := os.Stat(in); err != nil {
			return fmt.Errorf("audio input unavailable: %w", err)
		}
	}

	out := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: n.Format.Channels, SampleRate: n.Format.SampleRate},
		SourceBitDepth: bitDepth,
	}
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		buf, format, err := ReadWAV(in)
		if err != nil {
			return err
		}
		if format != n.Format {
			return fmt.Errorf("%s is %s, want %s", in, format, n.Format)
		}
		out.Data = append(out.Data, buf.Data...)
	}
	if len(out.Data) == 0 {
		return ErrEmptyAudio
	}
	if err := writeBuffer(dest, out); err != nil {
		return err
	}

	for _, in := range inputs {
		if err := os.Remove(in); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove audio segment", "path", in, "error", err)
		}
	}
	return nil
}
