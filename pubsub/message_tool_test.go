// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package pubsub_test

import (
	"bytes"
	"encoding/base64"
	"math"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/pubsub/apiv1/pubsubpb"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/go-a2a/pubsub-tool/pubsub"
)

func TestPublishMessage(t *testing.T) {
	ctx := t.Context()

	t.Run("returns the message id", func(t *testing.T) {
		srv, cfg := newTestServer(t)
		srv.Publisher.PublishResponse = &pubsubpb.PublishResponse{
			MessageIds: []string{"message_id"},
		}

		got := pubsub.PublishMessage(ctx, "projects/p/topics/t", "Hello World", nil, cfg, nil, "")

		want := map[string]any{"message_id": "message_id"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("PublishMessage() mismatch (-want +got):\n%s", diff)
		}

		reqs := srv.Publisher.Requests()
		if len(reqs) != 1 {
			t.Fatalf("got %d publish requests, want 1", len(reqs))
		}
		wantReq := &pubsubpb.PublishRequest{
			Topic: "projects/p/topics/t",
			Messages: []*pubsubpb.PubsubMessage{
				{Data: []byte("Hello World")},
			},
		}
		if diff := cmp.Diff(wantReq, reqs[0], protocmp.Transform()); diff != "" {
			t.Errorf("forwarded request mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("forwards attributes and ordering key", func(t *testing.T) {
		srv, cfg := newTestServer(t)
		srv.Publisher.PublishResponse = &pubsubpb.PublishResponse{
			MessageIds: []string{"m-42"},
		}

		attributes := map[string]string{"k1": "v1", "k2": "v2"}
		got := pubsub.PublishMessage(ctx, "projects/p/topics/t", "ordered", nil, cfg, attributes, "user-1")

		if got["message_id"] != "m-42" {
			t.Errorf("message_id = %v, want %q", got["message_id"], "m-42")
		}

		reqs := srv.Publisher.Requests()
		if len(reqs) != 1 {
			t.Fatalf("got %d publish requests, want 1", len(reqs))
		}
		wantReq := &pubsubpb.PublishRequest{
			Topic: "projects/p/topics/t",
			Messages: []*pubsubpb.PubsubMessage{
				{
					Data:        []byte("ordered"),
					Attributes:  map[string]string{"k1": "v1", "k2": "v2"},
					OrderingKey: "user-1",
				},
			},
		}
		if diff := cmp.Diff(wantReq, reqs[0], protocmp.Transform()); diff != "" {
			t.Errorf("forwarded request mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("service failure becomes the error mapping", func(t *testing.T) {
		srv, cfg := newTestServer(t)
		srv.Publisher.Err = status.Error(codes.NotFound, "topic does not exist")

		got := pubsub.PublishMessage(ctx, "projects/p/topics/missing", "hi", nil, cfg, nil, "")

		if got["status"] != pubsub.StatusError {
			t.Fatalf("status = %v, want %q", got["status"], pubsub.StatusError)
		}
		details, _ := got["error_details"].(string)
		if details == "" || !strings.Contains(details, "topic does not exist") {
			t.Errorf("error_details = %q, want it to contain the cause", details)
		}
		if got["error_code"] != codes.NotFound.String() {
			t.Errorf("error_code = %v, want %q", got["error_code"], codes.NotFound.String())
		}
	})
}

func TestPullMessages(t *testing.T) {
	ctx := t.Context()

	t.Run("empty subscription returns an empty list", func(t *testing.T) {
		_, cfg := newTestServer(t)

		got := pubsub.PullMessages(ctx, "projects/p/subscriptions/s", nil, cfg, 1, false)

		want := map[string]any{"messages": []map[string]any{}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("PullMessages() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("clamps the requested count to the wire range", func(t *testing.T) {
		tests := []struct {
			name        string
			maxMessages int
			want        int32
		}{
			{
				name:        "zero becomes one",
				maxMessages: 0,
				want:        1,
			},
			{
				name:        "negative becomes one",
				maxMessages: -3,
				want:        1,
			},
			{
				name:        "beyond int32 is capped",
				maxMessages: int(int64(math.MaxInt32) + 5),
				want:        math.MaxInt32,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				srv, cfg := newTestServer(t)

				got := pubsub.PullMessages(ctx, "projects/p/subscriptions/s", nil, cfg, tt.maxMessages, false)
				if got["status"] == pubsub.StatusError {
					t.Fatalf("PullMessages() = %v, want success", got)
				}

				reqs := srv.Subscriber.Requests()
				if len(reqs) != 1 {
					t.Fatalf("got %d requests, want 1", len(reqs))
				}
				req := reqs[0].(*pubsubpb.PullRequest)
				if req.GetMaxMessages() != tt.want {
					t.Errorf("forwarded max_messages = %d, want %d", req.GetMaxMessages(), tt.want)
				}
			})
		}
	})

	t.Run("decodes text and falls back to base64", func(t *testing.T) {
		srv, cfg := newTestServer(t)
		publishTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		raw := []byte{0xff, 0xfe, 0xfd}
		srv.Subscriber.PullResponse = &pubsubpb.PullResponse{
			ReceivedMessages: []*pubsubpb.ReceivedMessage{
				{
					AckId: "ack-1",
					Message: &pubsubpb.PubsubMessage{
						MessageId:   "m1",
						Data:        []byte("hello"),
						Attributes:  map[string]string{"origin": "test"},
						PublishTime: timestamppb.New(publishTime),
					},
				},
				{
					AckId: "ack-2",
					Message: &pubsubpb.PubsubMessage{
						MessageId:   "m2",
						Data:        raw,
						PublishTime: timestamppb.New(publishTime),
					},
				},
			},
		}

		got := pubsub.PullMessages(ctx, "projects/p/subscriptions/s", nil, cfg, 10, false)

		want := map[string]any{
			"messages": []map[string]any{
				{
					"message_id":   "m1",
					"data":         "hello",
					"attributes":   map[string]string{"origin": "test"},
					"publish_time": "2025-06-01T12:00:00Z",
					"ack_id":       "ack-1",
				},
				{
					"message_id":   "m2",
					"data":         base64.StdEncoding.EncodeToString(raw),
					"attributes":   map[string]string{},
					"publish_time": "2025-06-01T12:00:00Z",
					"ack_id":       "ack-2",
				},
			},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("PullMessages() mismatch (-want +got):\n%s", diff)
		}

		// The fallback must round-trip back to the raw payload.
		fallback := got["messages"].([]map[string]any)[1]["data"].(string)
		decoded, err := base64.StdEncoding.DecodeString(fallback)
		if err != nil {
			t.Fatalf("decode fallback payload: %v", err)
		}
		if !bytes.Equal(decoded, raw) {
			t.Errorf("round-tripped payload = %v, want %v", decoded, raw)
		}

		// No acknowledge call without auto_ack.
		for _, req := range srv.Subscriber.Requests() {
			if _, ok := req.(*pubsubpb.AcknowledgeRequest); ok {
				t.Error("acknowledge was called without auto_ack")
			}
		}
	})

	t.Run("auto ack acknowledges exactly the pulled ids", func(t *testing.T) {
		srv, cfg := newTestServer(t)
		srv.Subscriber.PullResponse = &pubsubpb.PullResponse{
			ReceivedMessages: []*pubsubpb.ReceivedMessage{
				{AckId: "ack-1", Message: &pubsubpb.PubsubMessage{MessageId: "m1", Data: []byte("a")}},
				{AckId: "ack-2", Message: &pubsubpb.PubsubMessage{MessageId: "m2", Data: []byte("b")}},
			},
		}

		got := pubsub.PullMessages(ctx, "projects/p/subscriptions/s", nil, cfg, 2, true)
		if _, ok := got["messages"]; !ok {
			t.Fatalf("PullMessages() = %v, want a messages field", got)
		}

		var ackReq *pubsubpb.AcknowledgeRequest
		for _, req := range srv.Subscriber.Requests() {
			if r, ok := req.(*pubsubpb.AcknowledgeRequest); ok {
				ackReq = r
			}
		}
		if ackReq == nil {
			t.Fatal("auto_ack did not issue an acknowledge call")
		}
		wantReq := &pubsubpb.AcknowledgeRequest{
			Subscription: "projects/p/subscriptions/s",
			AckIds:       []string{"ack-1", "ack-2"},
		}
		if diff := cmp.Diff(wantReq, ackReq, protocmp.Transform()); diff != "" {
			t.Errorf("acknowledge request mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("service failure becomes the error mapping", func(t *testing.T) {
		srv, cfg := newTestServer(t)
		srv.Subscriber.Err = status.Error(codes.PermissionDenied, "caller lacks pubsub.subscriptions.consume")

		got := pubsub.PullMessages(ctx, "projects/p/subscriptions/s", nil, cfg, 1, false)

		if got["status"] != pubsub.StatusError {
			t.Fatalf("status = %v, want %q", got["status"], pubsub.StatusError)
		}
		details, _ := got["error_details"].(string)
		if !strings.Contains(details, "pubsub.subscriptions.consume") {
			t.Errorf("error_details = %q, want it to contain the cause", details)
		}
		if got["error_code"] != codes.PermissionDenied.String() {
			t.Errorf("error_code = %v, want %q", got["error_code"], codes.PermissionDenied.String())
		}
	})
}

func TestAcknowledgeMessages(t *testing.T) {
	ctx := t.Context()

	t.Run("forwards the ids as one batch", func(t *testing.T) {
		srv, cfg := newTestServer(t)

		got := pubsub.AcknowledgeMessages(ctx, "projects/p/subscriptions/s", []string{"ack-1", "ack-2"}, nil, cfg)

		want := map[string]any{"status": pubsub.StatusSuccess}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("AcknowledgeMessages() mismatch (-want +got):\n%s", diff)
		}

		reqs := srv.Subscriber.Requests()
		if len(reqs) != 1 {
			t.Fatalf("got %d requests, want 1", len(reqs))
		}
		wantReq := &pubsubpb.AcknowledgeRequest{
			Subscription: "projects/p/subscriptions/s",
			AckIds:       []string{"ack-1", "ack-2"},
		}
		if diff := cmp.Diff(wantReq, reqs[0], protocmp.Transform()); diff != "" {
			t.Errorf("acknowledge request mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("service failure becomes the error mapping", func(t *testing.T) {
		srv, cfg := newTestServer(t)
		srv.Subscriber.Err = status.Error(codes.InvalidArgument, "ack id expired")

		got := pubsub.AcknowledgeMessages(ctx, "projects/p/subscriptions/s", []string{"stale"}, nil, cfg)

		if got["status"] != pubsub.StatusError {
			t.Fatalf("status = %v, want %q", got["status"], pubsub.StatusError)
		}
		details, _ := got["error_details"].(string)
		if !strings.Contains(details, "ack id expired") {
			t.Errorf("error_details = %q, want it to contain the cause", details)
		}
	})
}
