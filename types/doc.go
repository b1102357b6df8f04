// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package types defines the contracts shared between the Pub/Sub tool
// implementations and the agent frameworks that invoke them.
//
// The central interface is [Tool]: a named operation with a
// [google.golang.org/genai] function declaration and a Run method accepting
// plain mapping arguments. Tool implementations live in
// [github.com/go-a2a/pubsub-tool/pubsub].
package types
