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

package media_test

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/media"
	"github.com/stretchr/testify/require"
)

// fakeRunner stands in for ffmpeg, ffprobe and yt-dlp. The default ffmpeg
// behaviour copies the first input to the output, or joins the files of a
// concat list, so content order can be checked on disk.
type fakeRunner struct {
	calls    [][]string
	probe    string
	failWhen func(args []string) error
	handle   func(name string, args []string) ([]byte, error)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.failWhen != nil {
		if err := f.failWhen(args); err != nil {
			return nil, err
		}
	}
	if f.handle != nil {
		return f.handle(name, args)
	}
	if name == "ffprobe" {
		return []byte(f.probe), nil
	}

	in := argAfter(args, "-i")
	out := lastPath(args)
	var data []byte
	if argAfter(args, "-f") == "concat" {
		list, err := os.Open(in)
		if err != nil {
			return nil, err
		}
		defer list.Close()
		scanner := bufio.NewScanner(list)
		for scanner.Scan() {
			p := strings.TrimSuffix(strings.TrimPrefix(scanner.Text(), "file '"), "'")
			b, err := os.ReadFile(p)
			if err != nil {
				return nil, err
			}
			data = append(data, b...)
		}
	} else if b, err := os.ReadFile(in); err == nil {
		data = b
	}
	return nil, os.WriteFile(out, data, 0o644)
}

func (f *fakeRunner) callsTo(name string) [][]string {
	var out [][]string
	for _, c := range f.calls {
		if c[0] == name {
			out = append(out, c[1:])
		}
	}
	return out
}

func argAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

// lastPath is the last argument that looks like a file path.
func lastPath(args []string) string {
	for i := len(args) - 1; i >= 0; i-- {
		if strings.Contains(args[i], string(filepath.Separator)) {
			return args[i]
		}
	}
	return ""
}

func writeFiles(t *testing.T, dir string, contents map[string]string) {
	t.Helper()
	for name, body := range contents {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
}

func newEncoder(r media.Runner) *media.Encoder {
	return media.NewEncoder(r, media.EncoderConfig{})
}
