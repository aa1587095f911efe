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

// Package cor (Chain of Responsibility) provides the building blocks used to
// compose the studio's production and shorts pipelines out of small commands.
// A Chain runs its commands in order against a shared Context, piping the
// output of one command into the input of the next, and stops at the first
// failure unless told otherwise.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys used by BaseChain to pipe values between
// consecutive commands.
const (
	// CtxIn holds the output of the previous command.
	CtxIn = "__IN__"
	// CtxOut is where a command places its primary output.
	CtxOut = "__OUT__"
)

// Context is the shared state carried through a chain execution: named values,
// errors keyed by command name, and resources that must be released when the
// execution ends.
type Context interface {
	// SetContext sets the Go context used for cancellation and tracing.
	SetContext(context context.Context)

	// GetContext returns the current Go context.
	GetContext() context.Context

	// Add stores a value under key.
	Add(key string, value interface{}) Context

	// AddError records an error produced by the named command.
	AddError(key string, err error)

	// GetErrors returns all recorded errors keyed by command name.
	GetErrors() map[string]error

	// Err joins every recorded error into one, or returns nil.
	Err() error

	// Get returns the value stored under key, or nil.
	Get(key string) interface{}

	// Remove deletes the value stored under key.
	Remove(key string)

	// HasErrors reports whether any command recorded an error.
	HasErrors() bool

	// ErrorCount returns how many errors were recorded, counting each
	// AddError call even when it replaces an earlier error under the same key.
	ErrorCount() int

	// AddTempFile registers a file to be removed by Close.
	AddTempFile(file string)

	// GetTempFiles returns the registered temporary files.
	GetTempFiles() []string

	// Defer registers a release function run by Close in reverse order.
	Defer(release func() error)

	// Close releases deferred resources and removes temporary files. Release
	// failures are logged and never returned.
	Close()
}

// Executable is anything with execution logic driven by a Context.
type Executable interface {
	Execute(context Context)
}

// Command is one unit of work in a chain.
type Command interface {
	Executable

	// GetName returns the unique command name used for errors and telemetry.
	GetName() string

	// GetInputParam returns the context key holding this command's input.
	GetInputParam() string

	// GetOutputParam returns the context key receiving this command's output.
	GetOutputParam() string

	// IsExecutable reports whether the context satisfies the command's
	// preconditions.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain is an ordered sequence of commands. A Chain is itself a Command so
// chains can be nested.
type Chain interface {
	Command

	// ContinueOnFailure controls whether commands after a failure still run.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the chain.
	AddCommand(command Command) Chain
}
