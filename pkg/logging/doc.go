// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging provides context-based structured logging utilities using Go's standard slog package.
//
// Callers that want the tools to log attach a [*slog.Logger] to the context
// with [NewContext]; the tool operations retrieve it with [FromContext] and
// fall back to a discarding logger, so logging is opt-in per call:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
//		Level: slog.LevelDebug,
//	}))
//	ctx = logging.NewContext(ctx, logger)
//
//	result := pubsub.PublishMessage(ctx, topic, "hello", creds, cfg, nil, "")
package logging
