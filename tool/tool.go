// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"github.com/go-a2a/pubsub-tool/types"
)

// Tool represents a base class for all tools.
type Tool struct {
	// The name of the tool.
	name string

	// The description of the tool.
	description string

	// Whether the tool is a long running operation, which typically returns a
	// resource id first and finishes the operation later.
	isLongRunning bool
}

var _ types.Tool = (*Tool)(nil)

// NewTool returns the tool with the given name, description and isLongRunning.
func NewTool(name, description string, isLongRunning bool) *Tool {
	return &Tool{
		name:          name,
		description:   description,
		isLongRunning: isLongRunning,
	}
}

// Name implements [types.Tool].
func (t *Tool) Name() string {
	return t.name
}

// Description implements [types.Tool].
func (t *Tool) Description() string {
	return t.description
}

// IsLongRunning implements [types.Tool].
func (t *Tool) IsLongRunning() bool {
	return t.isLongRunning
}

// GetDeclaration implements [types.Tool].
func (t *Tool) GetDeclaration() *genai.FunctionDeclaration {
	return nil
}

// Run implements [types.Tool].
func (t *Tool) Run(ctx context.Context, args map[string]any) (any, error) {
	return nil, errors.New("not implemented")
}
