// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"

	"google.golang.org/genai"
)

// Tool represents a named operation an agent framework can invoke.
//
// Tool results are plain values. Operations that talk to a remote service
// report remote failures inside the result mapping rather than through the
// error return; the error return is reserved for caller mistakes such as
// malformed arguments.
type Tool interface {
	// Name returns the name of the tool.
	Name() string

	// Description returns the description of the tool.
	Description() string

	// IsLongRunning reports whether the tool is a long running operation,
	// which typically returns a resource id first and finishes the operation
	// later.
	IsLongRunning() bool

	// GetDeclaration returns the function declaration advertised to the
	// model, or nil if the tool is not exposed as a callable function.
	GetDeclaration() *genai.FunctionDeclaration

	// Run runs the tool with the given arguments.
	Run(ctx context.Context, args map[string]any) (any, error)
}
