// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package tool provides the base type concrete tools are built on.
//
// [Tool] carries the name, description and long-running flag shared by every
// tool; concrete tools embed it and override GetDeclaration and Run:
//
//	type EchoTool struct {
//		*tool.Tool
//	}
//
//	func NewEchoTool() *EchoTool {
//		return &EchoTool{
//			Tool: tool.NewTool("echo", "Echo the given text back.", false),
//		}
//	}
//
//	func (t *EchoTool) GetDeclaration() *genai.FunctionDeclaration {
//		return &genai.FunctionDeclaration{
//			Name:        t.Name(),
//			Description: t.Description(),
//			Parameters: &genai.Schema{
//				Type: genai.TypeObject,
//				Properties: map[string]*genai.Schema{
//					"text": {Type: genai.TypeString},
//				},
//				Required: []string{"text"},
//			},
//		}
//	}
//
//	func (t *EchoTool) Run(ctx context.Context, args map[string]any) (any, error) {
//		return args["text"], nil
//	}
package tool
