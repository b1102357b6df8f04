// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package pubsub

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/pubsub/apiv1/pubsubpb"
	"google.golang.org/api/iterator"

	"github.com/go-a2a/pubsub-tool/pkg/logging"
)

// ListTopics lists the Pub/Sub topic names in a Google Cloud project, in the
// order the service delivers them.
func ListTopics(ctx context.Context, projectID string, creds *auth.Credentials, cfg *ToolConfig) map[string]any {
	logging.FromContext(ctx).DebugContext(ctx, "listing topics", slog.String("project", projectID))

	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	publisher, release, err := publisherClient(ctx, creds, cfg, "list_topics")
	if err != nil {
		return errorResult(err, "list topics in project %q", projectID)
	}
	defer release()

	topics := []string{}
	it := publisher.ListTopics(ctx, &pubsubpb.ListTopicsRequest{
		Project: "projects/" + projectID,
	})
	for {
		topic, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return errorResult(err, "list topics in project %q", projectID)
		}
		topics = append(topics, topic.GetName())
	}

	return map[string]any{
		"topics": topics,
	}
}

// GetTopic returns the metadata of a Pub/Sub topic as a flat mapping.
// Nested schema settings and storage policy messages are carried in their
// text form, nil when absent.
func GetTopic(ctx context.Context, topicName string, creds *auth.Credentials, cfg *ToolConfig) map[string]any {
	logging.FromContext(ctx).DebugContext(ctx, "getting topic", slog.String("topic", topicName))

	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	publisher, release, err := publisherClient(ctx, creds, cfg, "get_topic")
	if err != nil {
		return errorResult(err, "get topic %q", topicName)
	}
	defer release()

	topic, err := publisher.GetTopic(ctx, &pubsubpb.GetTopicRequest{
		Topic: topicName,
	})
	if err != nil {
		return errorResult(err, "get topic %q", topicName)
	}

	labels := topic.GetLabels()
	if labels == nil {
		labels = map[string]string{}
	}

	return map[string]any{
		"name":                   topic.GetName(),
		"labels":                 labels,
		"kms_key_name":           topic.GetKmsKeyName(),
		"schema_settings":        prototextOrNil(topic.GetSchemaSettings()),
		"message_storage_policy": prototextOrNil(topic.GetMessageStoragePolicy()),
	}
}

// ListSubscriptions lists the Pub/Sub subscription names in a Google Cloud
// project, in the order the service delivers them.
func ListSubscriptions(ctx context.Context, projectID string, creds *auth.Credentials, cfg *ToolConfig) map[string]any {
	logging.FromContext(ctx).DebugContext(ctx, "listing subscriptions", slog.String("project", projectID))

	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	subscriber, release, err := subscriberClient(ctx, creds, cfg, "list_subscriptions")
	if err != nil {
		return errorResult(err, "list subscriptions in project %q", projectID)
	}
	defer release()

	subscriptions := []string{}
	it := subscriber.ListSubscriptions(ctx, &pubsubpb.ListSubscriptionsRequest{
		Project: "projects/" + projectID,
	})
	for {
		subscription, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return errorResult(err, "list subscriptions in project %q", projectID)
		}
		subscriptions = append(subscriptions, subscription.GetName())
	}

	return map[string]any{
		"subscriptions": subscriptions,
	}
}

// GetSubscription returns the metadata of a Pub/Sub subscription as a flat
// mapping. Nested policy messages are carried in their text form, nil when
// absent.
func GetSubscription(ctx context.Context, subscriptionName string, creds *auth.Credentials, cfg *ToolConfig) map[string]any {
	logging.FromContext(ctx).DebugContext(ctx, "getting subscription", slog.String("subscription", subscriptionName))

	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	subscriber, release, err := subscriberClient(ctx, creds, cfg, "get_subscription")
	if err != nil {
		return errorResult(err, "get subscription %q", subscriptionName)
	}
	defer release()

	subscription, err := subscriber.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{
		Subscription: subscriptionName,
	})
	if err != nil {
		return errorResult(err, "get subscription %q", subscriptionName)
	}

	labels := subscription.GetLabels()
	if labels == nil {
		labels = map[string]string{}
	}

	return map[string]any{
		"name":                       subscription.GetName(),
		"topic":                      subscription.GetTopic(),
		"push_config":                prototextOrNil(subscription.GetPushConfig()),
		"ack_deadline_seconds":       int(subscription.GetAckDeadlineSeconds()),
		"retain_acked_messages":      subscription.GetRetainAckedMessages(),
		"message_retention_duration": durationOrNil(subscription.GetMessageRetentionDuration()),
		"labels":                     labels,
		"enable_message_ordering":    subscription.GetEnableMessageOrdering(),
		"expiration_policy":          prototextOrNil(subscription.GetExpirationPolicy()),
		"filter":                     subscription.GetFilter(),
		"dead_letter_policy":         prototextOrNil(subscription.GetDeadLetterPolicy()),
		"retry_policy":               prototextOrNil(subscription.GetRetryPolicy()),
		"detached":                   subscription.GetDetached(),
	}
}

// ListSchemas lists the Pub/Sub schema names in a Google Cloud project, in
// the order the service delivers them.
func ListSchemas(ctx context.Context, projectID string, creds *auth.Credentials, cfg *ToolConfig) map[string]any {
	logging.FromContext(ctx).DebugContext(ctx, "listing schemas", slog.String("project", projectID))

	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	schema, release, err := schemaClient(ctx, creds, cfg, "list_schemas")
	if err != nil {
		return errorResult(err, "list schemas in project %q", projectID)
	}
	defer release()

	schemas := []string{}
	it := schema.ListSchemas(ctx, &pubsubpb.ListSchemasRequest{
		Parent: "projects/" + projectID,
	})
	for {
		s, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return errorResult(err, "list schemas in project %q", projectID)
		}
		schemas = append(schemas, s.GetName())
	}

	return map[string]any{
		"schemas": schemas,
	}
}

// GetSchema returns the metadata of a Pub/Sub schema as a flat mapping,
// including the full definition.
func GetSchema(ctx context.Context, schemaName string, creds *auth.Credentials, cfg *ToolConfig) map[string]any {
	logging.FromContext(ctx).DebugContext(ctx, "getting schema", slog.String("schema", schemaName))

	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	schema, release, err := schemaClient(ctx, creds, cfg, "get_schema")
	if err != nil {
		return errorResult(err, "get schema %q", schemaName)
	}
	defer release()

	s, err := schema.GetSchema(ctx, &pubsubpb.GetSchemaRequest{
		Name: schemaName,
		View: pubsubpb.SchemaView_FULL,
	})
	if err != nil {
		return errorResult(err, "get schema %q", schemaName)
	}

	return schemaResult(s)
}

// ListSchemaRevisions lists the revision ids of a Pub/Sub schema, in the
// order the service delivers them.
func ListSchemaRevisions(ctx context.Context, schemaName string, creds *auth.Credentials, cfg *ToolConfig) map[string]any {
	logging.FromContext(ctx).DebugContext(ctx, "listing schema revisions", slog.String("schema", schemaName))

	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	schema, release, err := schemaClient(ctx, creds, cfg, "list_schema_revisions")
	if err != nil {
		return errorResult(err, "list revisions of schema %q", schemaName)
	}
	defer release()

	revisions := []string{}
	it := schema.ListSchemaRevisions(ctx, &pubsubpb.ListSchemaRevisionsRequest{
		Name: schemaName,
	})
	for {
		s, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return errorResult(err, "list revisions of schema %q", schemaName)
		}
		revisions = append(revisions, s.GetRevisionId())
	}

	return map[string]any{
		"revision_ids": revisions,
	}
}

// GetSchemaRevision returns the metadata of one revision of a Pub/Sub
// schema. The service addresses revisions as "<schema name>@<revision id>".
func GetSchemaRevision(ctx context.Context, schemaName, revisionID string, creds *auth.Credentials, cfg *ToolConfig) map[string]any {
	logging.FromContext(ctx).DebugContext(ctx, "getting schema revision",
		slog.String("schema", schemaName),
		slog.String("revision", revisionID),
	)

	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	schema, release, err := schemaClient(ctx, creds, cfg, "get_schema_revision")
	if err != nil {
		return errorResult(err, "get revision %q of schema %q", revisionID, schemaName)
	}
	defer release()

	s, err := schema.GetSchema(ctx, &pubsubpb.GetSchemaRequest{
		Name: schemaName + "@" + revisionID,
		View: pubsubpb.SchemaView_FULL,
	})
	if err != nil {
		return errorResult(err, "get revision %q of schema %q", revisionID, schemaName)
	}

	return schemaResult(s)
}

// schemaResult maps a schema object into the flat shape shared by GetSchema
// and GetSchemaRevision.
func schemaResult(s *pubsubpb.Schema) map[string]any {
	return map[string]any{
		"name":                 s.GetName(),
		"type":                 s.GetType().String(),
		"definition":           s.GetDefinition(),
		"revision_id":          s.GetRevisionId(),
		"revision_create_time": rfc3339OrEmpty(s.GetRevisionCreateTime()),
	}
}
