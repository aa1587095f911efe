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

package commands

import "strings"

// CleanJSON prepares a model response for json.Unmarshal: code fences are
// removed and raw control characters inside string literals, which models
// emit in long narrations, are replaced. Newlines and tabs become a space,
// every other control character is dropped. Text outside strings is kept.
func CleanJSON(in string) string {
	in = strings.TrimSpace(in)
	in = strings.TrimPrefix(in, "```json")
	in = strings.TrimPrefix(in, "```")
	in = strings.TrimSuffix(in, "```")
	in = strings.TrimSpace(in)

	var b strings.Builder
	b.Grow(len(in))
	inString, escaped := false, false
	for _, r := range in {
		switch {
		case !inString:
			if r == '"' {
				inString = true
			}
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inString = false
		case r == '\n' || r == '\t':
			r = ' '
		case r < 0x20:
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
