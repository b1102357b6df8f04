// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package pubsub

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"math"
	"unicode/utf8"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/pubsub/apiv1/pubsubpb"

	"github.com/go-a2a/pubsub-tool/pkg/logging"
)

// PublishMessage publishes a single message to a Pub/Sub topic.
//
// topicName is the fully qualified topic resource name, e.g.
// "projects/my-project/topics/my-topic". The message text is sent as UTF-8
// bytes. Attributes, when non-nil, are forwarded verbatim as message
// attributes. A non-empty orderingKey is set on the message; an empty
// orderingKey publishes an unordered message and is never forwarded as an
// empty key, since the service treats the empty ordering key specially.
//
// On success the result is {"message_id": <id>}. Any failure is returned as
// the uniform error mapping.
func PublishMessage(ctx context.Context, topicName, message string, creds *auth.Credentials, cfg *ToolConfig, attributes map[string]string, orderingKey string) map[string]any {
	logger := logging.FromContext(ctx)
	logger.DebugContext(ctx, "publishing message", slog.String("topic", topicName))

	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	publisher, release, err := publisherClient(ctx, creds, cfg, "publish_message")
	if err != nil {
		return errorResult(err, "publish message to topic %q", topicName)
	}
	defer release()

	msg := &pubsubpb.PubsubMessage{
		Data:       []byte(message),
		Attributes: attributes,
	}
	if orderingKey != "" {
		msg.OrderingKey = orderingKey
	}

	resp, err := publisher.Publish(ctx, &pubsubpb.PublishRequest{
		Topic:    topicName,
		Messages: []*pubsubpb.PubsubMessage{msg},
	})
	if err != nil {
		return errorResult(err, "publish message to topic %q", topicName)
	}
	if len(resp.GetMessageIds()) == 0 {
		return errorResult(errors.New("service returned no message id"), "publish message to topic %q", topicName)
	}

	return map[string]any{
		"message_id": resp.GetMessageIds()[0],
	}
}

// PullMessages synchronously pulls up to maxMessages messages from a Pub/Sub
// subscription.
//
// subscriptionName is the fully qualified subscription resource name, e.g.
// "projects/my-project/subscriptions/my-sub". A maxMessages smaller than one
// is treated as one. Each returned entry carries the message id, the payload
// as text (UTF-8 when the raw bytes are valid UTF-8, their base64 encoding
// otherwise), the attribute map, the publish time as an RFC 3339 string and
// the ack id needed to later acknowledge the message. Entry order is the
// delivery order reported by the service, and the list is empty, not absent,
// when no messages are available.
//
// When autoAck is true and at least one message was pulled, all pulled ack
// ids are acknowledged in one batch before the call returns.
func PullMessages(ctx context.Context, subscriptionName string, creds *auth.Credentials, cfg *ToolConfig, maxMessages int, autoAck bool) map[string]any {
	logger := logging.FromContext(ctx)
	logger.DebugContext(ctx, "pulling messages",
		slog.String("subscription", subscriptionName),
		slog.Int("max_messages", maxMessages),
		slog.Bool("auto_ack", autoAck),
	)

	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	subscriber, release, err := subscriberClient(ctx, creds, cfg, "pull_messages")
	if err != nil {
		return errorResult(err, "pull messages from subscription %q", subscriptionName)
	}
	defer release()

	// Clamp to the range of the wire field.
	if maxMessages < 1 {
		maxMessages = 1
	}
	if maxMessages > math.MaxInt32 {
		maxMessages = math.MaxInt32
	}
	resp, err := subscriber.Pull(ctx, &pubsubpb.PullRequest{
		Subscription: subscriptionName,
		MaxMessages:  int32(maxMessages),
	})
	if err != nil {
		return errorResult(err, "pull messages from subscription %q", subscriptionName)
	}

	received := resp.GetReceivedMessages()
	messages := make([]map[string]any, 0, len(received))
	ackIDs := make([]string, 0, len(received))
	for _, rm := range received {
		data := rm.GetMessage().GetData()
		text := string(data)
		if !utf8.Valid(data) {
			text = base64.StdEncoding.EncodeToString(data)
		}

		attributes := rm.GetMessage().GetAttributes()
		if attributes == nil {
			attributes = map[string]string{}
		}

		messages = append(messages, map[string]any{
			"message_id":   rm.GetMessage().GetMessageId(),
			"data":         text,
			"attributes":   attributes,
			"publish_time": rfc3339OrEmpty(rm.GetMessage().GetPublishTime()),
			"ack_id":       rm.GetAckId(),
		})
		ackIDs = append(ackIDs, rm.GetAckId())
	}

	if autoAck && len(ackIDs) > 0 {
		if err := subscriber.Acknowledge(ctx, &pubsubpb.AcknowledgeRequest{
			Subscription: subscriptionName,
			AckIds:       ackIDs,
		}); err != nil {
			return errorResult(err, "pull messages from subscription %q", subscriptionName)
		}
	}

	return map[string]any{
		"messages": messages,
	}
}

// AcknowledgeMessages acknowledges pulled messages on a Pub/Sub subscription.
//
// The ack ids are forwarded to the service unmodified as a single batch; the
// service does not report per-id outcomes, so the call either succeeds as a
// whole with {"status": "SUCCESS"} or fails as a whole with the uniform
// error mapping.
func AcknowledgeMessages(ctx context.Context, subscriptionName string, ackIDs []string, creds *auth.Credentials, cfg *ToolConfig) map[string]any {
	logger := logging.FromContext(ctx)
	logger.DebugContext(ctx, "acknowledging messages",
		slog.String("subscription", subscriptionName),
		slog.Int("count", len(ackIDs)),
	)

	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	subscriber, release, err := subscriberClient(ctx, creds, cfg, "acknowledge_messages")
	if err != nil {
		return errorResult(err, "acknowledge messages on subscription %q", subscriptionName)
	}
	defer release()

	if err := subscriber.Acknowledge(ctx, &pubsubpb.AcknowledgeRequest{
		Subscription: subscriptionName,
		AckIds:       ackIDs,
	}); err != nil {
		return errorResult(err, "acknowledge messages on subscription %q", subscriptionName)
	}

	return map[string]any{
		"status": StatusSuccess,
	}
}
