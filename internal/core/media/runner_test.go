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
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/media"
	"github.com/stretchr/testify/assert"
)

func TestTailStartsOnRuneBoundary(t *testing.T) {
	s := "ab" + strings.Repeat("é", 5)

	got := media.Tail(s, 5)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "éé", got)

	assert.Equal(t, "éé", media.Tail(s, 4))
	assert.Equal(t, s, media.Tail(s, len(s)))
	assert.Equal(t, "abc", media.Tail("abc", 10))
}
