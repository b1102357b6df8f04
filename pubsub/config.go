// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package pubsub

import (
	"time"

	"google.golang.org/api/option"
)

// ToolConfig carries the settings shared by every Pub/Sub tool call.
//
// A ToolConfig is a plain value; it is never mutated by the tools and the
// same value may be passed to concurrent calls.
type ToolConfig struct {
	// ProjectID is the Google Cloud project id the tools operate in.
	ProjectID string

	// Timeout bounds each remote call. Zero leaves the client library
	// default in place.
	Timeout time.Duration

	// ClientCache, when non-nil, makes the tools reuse client handles
	// instead of constructing one per call. A cache must only be shared by
	// calls using the same credential.
	ClientCache *ClientCache

	// ClientOptions are appended to every client construction after the
	// credential and user agent options, letting callers override transport
	// settings such as the endpoint for an emulator.
	ClientOptions []option.ClientOption
}
