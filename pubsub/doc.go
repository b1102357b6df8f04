// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package pubsub provides agent tools for Google Cloud Pub/Sub: publishing,
// synchronous pull and acknowledge, and topic, subscription and schema
// metadata reads.
//
// Every operation is a single stateless request/response exchange through
// the Cloud Pub/Sub clients. Results are plain mappings: a success mapping
// with operation-specific fields, or the uniform failure mapping
//
//	{"status": "ERROR", "error_details": "...", "error_code": "NotFound"}
//
// where "error_code" carries the gRPC status code name when the failure came
// from the service. No error ever crosses the tool boundary as a Go error;
// callers detect failure by the presence of the "status" field.
//
// The package-level functions mirror the tool operations one to one and can
// be called directly. [Toolset] wraps them as [types.Tool] values, with
// function declarations, for registration with an agent framework:
//
//	creds, err := pubsub.DetectCredentials()
//	if err != nil {
//		return err
//	}
//	ts := pubsub.NewToolset(creds, &pubsub.ToolConfig{ProjectID: "my-project"})
//	tools := ts.Tools()
//
// By default every call constructs its own client and closes it before
// returning. Callers with higher call volume can opt into handle reuse with
// [ClientCache] via [ToolConfig.ClientCache] or [WithClientCache].
package pubsub
