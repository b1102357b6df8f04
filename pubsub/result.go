// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package pubsub

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Values of the "status" field of a tool result.
const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
)

// errorResult converts err into the uniform failure mapping shared by every
// tool operation. No error ever crosses the tool boundary as an error value;
// remote and construction failures all flatten into this shape.
//
// When err carries a gRPC status, its code name is preserved under
// "error_code" so callers can branch on the failure category instead of
// parsing the message.
func errorResult(err error, format string, args ...any) map[string]any {
	result := map[string]any{
		"status":        StatusError,
		"error_details": fmt.Sprintf("failed to %s: %v", fmt.Sprintf(format, args...), err),
	}
	if s, ok := status.FromError(err); ok && s.Code() != codes.OK {
		result["error_code"] = s.Code().String()
	}
	return result
}

// withTimeout applies the configured per-call deadline, if any.
func withTimeout(ctx context.Context, cfg *ToolConfig) (context.Context, context.CancelFunc) {
	if cfg != nil && cfg.Timeout > 0 {
		return context.WithTimeout(ctx, cfg.Timeout)
	}
	return ctx, func() {}
}

// prototextOrNil renders a nested settings or policy message in prototext
// form. Messages with no natural flat representation are carried as text,
// the same way the service's own tooling prints them; absent messages map to
// nil.
func prototextOrNil(m proto.Message) any {
	if m == nil || !m.ProtoReflect().IsValid() {
		return nil
	}
	return strings.TrimSpace(prototext.Format(m))
}

// durationOrNil renders a duration field as its Go string form, nil when
// absent.
func durationOrNil(d *durationpb.Duration) any {
	if d == nil {
		return nil
	}
	return d.AsDuration().String()
}

// rfc3339OrEmpty renders a timestamp field as an RFC 3339 string, empty when
// absent.
func rfc3339OrEmpty(ts *timestamppb.Timestamp) string {
	if ts == nil {
		return ""
	}
	return ts.AsTime().Format(time.RFC3339Nano)
}
