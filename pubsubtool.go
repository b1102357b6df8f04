// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package pubsubtool provides agent tools for interacting with Google Cloud Pub/Sub.
//
// The tools are thin adapters over the Cloud Pub/Sub service clients: they
// construct an authenticated client, issue a single request, and reshape the
// response into a plain mapping an agent framework can consume. Messaging
// semantics such as delivery ordering, flow control and retries belong to the
// service and its client library, not to this module.
//
// See the [github.com/go-a2a/pubsub-tool/pubsub] package for the tool
// implementations.
package pubsubtool

// Version is the version of the Pub/Sub tool module. It is reported to the
// service as part of the client user agent.
var Version = "v0.1.0"
