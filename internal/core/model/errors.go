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

package model

import "fmt"

// SnippetLength bounds how much of a raw model response is kept in errors.
const SnippetLength = 500

// ResponseError reports a generator response that could not be used.
type ResponseError struct {
	What    string // e.g. "script", "viral moments"
	Snippet string
	Err     error
}

// NewResponseError keeps at most SnippetLength runes of raw.
func NewResponseError(what, raw string, err error) *ResponseError {
	return &ResponseError{What: what, Snippet: Snippet(raw, SnippetLength), Err: err}
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("failed to parse %s response: %v\nresponse: %s...", e.What, e.Err, e.Snippet)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

// Snippet returns the first n runes of s.
func Snippet(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
