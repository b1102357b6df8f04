// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package pubsub_test

import (
	"testing"

	"cloud.google.com/go/pubsub/apiv1/pubsubpb"
	"github.com/google/go-cmp/cmp"

	"github.com/go-a2a/pubsub-tool/pubsub"
	"github.com/go-a2a/pubsub-tool/types"
)

func toolByName(t *testing.T, ts *pubsub.Toolset, name string) types.Tool {
	t.Helper()
	for _, tl := range ts.Tools() {
		if tl.Name() == name {
			return tl
		}
	}
	t.Fatalf("toolset has no tool %q", name)
	return nil
}

func TestToolsetTools(t *testing.T) {
	ts := pubsub.NewToolset(nil, &pubsub.ToolConfig{ProjectID: "p"})

	wantNames := []string{
		"publish_message",
		"pull_messages",
		"acknowledge_messages",
		"list_topics",
		"get_topic",
		"list_subscriptions",
		"get_subscription",
		"list_schemas",
		"get_schema",
		"list_schema_revisions",
		"get_schema_revision",
	}

	tools := ts.Tools()
	gotNames := make([]string, 0, len(tools))
	for _, tl := range tools {
		gotNames = append(gotNames, tl.Name())

		if tl.Description() == "" {
			t.Errorf("tool %q has no description", tl.Name())
		}
		if tl.IsLongRunning() {
			t.Errorf("tool %q reports long running, want short", tl.Name())
		}

		decl := tl.GetDeclaration()
		if decl == nil {
			t.Fatalf("tool %q has no declaration", tl.Name())
		}
		if decl.Name != tl.Name() {
			t.Errorf("declaration name %q != tool name %q", decl.Name, tl.Name())
		}
		if decl.Parameters == nil || len(decl.Parameters.Properties) == 0 {
			t.Errorf("tool %q declares no parameters", tl.Name())
		}
		if len(decl.Parameters.Required) == 0 {
			t.Errorf("tool %q declares no required parameters", tl.Name())
		}
	}

	if diff := cmp.Diff(wantNames, gotNames); diff != "" {
		t.Errorf("tool names mismatch (-want +got):\n%s", diff)
	}
}

func TestToolsetRunPublish(t *testing.T) {
	ctx := t.Context()
	srv, cfg := newTestServer(t)
	srv.Publisher.PublishResponse = &pubsubpb.PublishResponse{
		MessageIds: []string{"message_id"},
	}

	ts := pubsub.NewToolset(nil, cfg)
	tl := toolByName(t, ts, "publish_message")

	got, err := tl.Run(ctx, map[string]any{
		"topic_name": "projects/p/topics/t",
		"message":    "Hello World",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := map[string]any{"message_id": "message_id"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Run() mismatch (-want +got):\n%s", diff)
	}
}

func TestToolsetRunPull(t *testing.T) {
	ctx := t.Context()
	srv, cfg := newTestServer(t)
	srv.Subscriber.PullResponse = &pubsubpb.PullResponse{
		ReceivedMessages: []*pubsubpb.ReceivedMessage{
			{AckId: "ack-1", Message: &pubsubpb.PubsubMessage{MessageId: "m1", Data: []byte("hi")}},
		},
	}

	ts := pubsub.NewToolset(nil, cfg)
	tl := toolByName(t, ts, "pull_messages")

	// Argument values arrive the way a model emits them, numbers included.
	got, err := tl.Run(ctx, map[string]any{
		"subscription_name": "projects/p/subscriptions/s",
		"max_messages":      float64(1),
		"auto_ack":          true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	result := got.(map[string]any)
	messages := result["messages"].([]map[string]any)
	if len(messages) != 1 || messages[0]["message_id"] != "m1" {
		t.Errorf("messages = %v, want one entry for m1", messages)
	}

	var acked bool
	for _, req := range srv.Subscriber.Requests() {
		if _, ok := req.(*pubsubpb.AcknowledgeRequest); ok {
			acked = true
		}
	}
	if !acked {
		t.Error("auto_ack did not issue an acknowledge call")
	}
}

func TestToolsetRunMalformedArgs(t *testing.T) {
	ctx := t.Context()
	_, cfg := newTestServer(t)

	ts := pubsub.NewToolset(nil, cfg)
	tl := toolByName(t, ts, "publish_message")

	if _, err := tl.Run(ctx, map[string]any{
		"topic_name": 123,
		"message":    "hi",
	}); err == nil {
		t.Error("Run accepted a numeric topic_name, want a decode error")
	}
}

func TestToolsetWithClientCache(t *testing.T) {
	ctx := t.Context()
	srv, cfg := newTestServer(t)
	srv.Publisher.Topics = []*pubsubpb.Topic{{Name: "projects/p/topics/t"}}

	cache := pubsub.NewClientCache()
	defer cache.Close()

	ts := pubsub.NewToolset(nil, cfg, pubsub.WithClientCache(cache))
	tl := toolByName(t, ts, "list_topics")

	for range 2 {
		got, err := tl.Run(ctx, map[string]any{"project_id": "p"})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		want := map[string]any{"topics": []string{"projects/p/topics/t"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Run() mismatch (-want +got):\n%s", diff)
		}
	}

	// The option copies the config; the caller's value stays cache-free.
	if cfg.ClientCache != nil {
		t.Error("WithClientCache mutated the caller's config")
	}
}
