// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package pubsub

import (
	"context"
	"fmt"

	"cloud.google.com/go/auth"
	"github.com/go-json-experiment/json"
	"google.golang.org/genai"

	"github.com/go-a2a/pubsub-tool/tool"
	"github.com/go-a2a/pubsub-tool/types"
)

// Toolset exposes the Pub/Sub operations as agent tools.
//
// A Toolset binds a credential and a [ToolConfig] once; every tool it
// returns shares them. The tools report operation failures inside the result
// mapping, so Run only returns an error for malformed arguments.
type Toolset struct {
	creds *auth.Credentials
	cfg   *ToolConfig
}

// ToolsetOption configures a [Toolset].
type ToolsetOption func(*Toolset)

// WithClientCache makes every tool of the set reuse client handles through
// the given cache instead of constructing one per call.
func WithClientCache(cache *ClientCache) ToolsetOption {
	return func(ts *Toolset) {
		cfg := *ts.cfg
		cfg.ClientCache = cache
		ts.cfg = &cfg
	}
}

// NewToolset returns a [Toolset] bound to the given credential and config.
func NewToolset(creds *auth.Credentials, cfg *ToolConfig, opts ...ToolsetOption) *Toolset {
	ts := &Toolset{
		creds: creds,
		cfg:   cfg,
	}
	if ts.cfg == nil {
		ts.cfg = &ToolConfig{}
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

// Tools returns one tool per Pub/Sub operation.
func (ts *Toolset) Tools() []types.Tool {
	return []types.Tool{
		ts.publishMessageTool(),
		ts.pullMessagesTool(),
		ts.acknowledgeMessagesTool(),
		ts.listTopicsTool(),
		ts.getTopicTool(),
		ts.listSubscriptionsTool(),
		ts.getSubscriptionTool(),
		ts.listSchemasTool(),
		ts.getSchemaTool(),
		ts.listSchemaRevisionsTool(),
		ts.getSchemaRevisionTool(),
	}
}

// opTool adapts one package-level operation into a [types.Tool].
type opTool struct {
	*tool.Tool

	declaration *genai.FunctionDeclaration
	run         func(ctx context.Context, args map[string]any) (any, error)
}

var _ types.Tool = (*opTool)(nil)

// GetDeclaration implements [types.Tool].
func (t *opTool) GetDeclaration() *genai.FunctionDeclaration {
	return t.declaration
}

// Run implements [types.Tool].
func (t *opTool) Run(ctx context.Context, args map[string]any) (any, error) {
	return t.run(ctx, args)
}

// decodeArgs converts the loosely typed argument mapping the framework hands
// over into the operation's typed argument struct.
func decodeArgs[T any](args map[string]any) (T, error) {
	var out T
	data, err := json.Marshal(args)
	if err != nil {
		return out, fmt.Errorf("encode tool arguments: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode tool arguments: %w", err)
	}
	return out, nil
}

// declaration builds the function declaration advertised to the model.
func declaration(name, description string, properties map[string]*genai.Schema, required ...string) *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        name,
		Description: description,
		Parameters: &genai.Schema{
			Type:       genai.TypeObject,
			Properties: properties,
			Required:   required,
		},
	}
}

type publishMessageArgs struct {
	TopicName   string            `json:"topic_name"`
	Message     string            `json:"message"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	OrderingKey string            `json:"ordering_key,omitempty"`
}

func (ts *Toolset) publishMessageTool() types.Tool {
	const description = "Publish a message to a Pub/Sub topic."
	return &opTool{
		Tool: tool.NewTool("publish_message", description, false),
		declaration: declaration("publish_message", description, map[string]*genai.Schema{
			"topic_name": {
				Type:        genai.TypeString,
				Description: "Fully qualified topic name, e.g. projects/my-project/topics/my-topic.",
			},
			"message": {
				Type:        genai.TypeString,
				Description: "The message text to publish.",
			},
			"attributes": {
				Type:        genai.TypeObject,
				Description: "Optional key-value attributes to attach to the message.",
			},
			"ordering_key": {
				Type:        genai.TypeString,
				Description: "Optional ordering key; messages sharing a key are delivered in order.",
			},
		}, "topic_name", "message"),
		run: func(ctx context.Context, args map[string]any) (any, error) {
			a, err := decodeArgs[publishMessageArgs](args)
			if err != nil {
				return nil, err
			}
			return PublishMessage(ctx, a.TopicName, a.Message, ts.creds, ts.cfg, a.Attributes, a.OrderingKey), nil
		},
	}
}

type pullMessagesArgs struct {
	SubscriptionName string `json:"subscription_name"`
	MaxMessages      int    `json:"max_messages,omitempty"`
	AutoAck          bool   `json:"auto_ack,omitempty"`
}

func (ts *Toolset) pullMessagesTool() types.Tool {
	const description = "Pull messages from a Pub/Sub subscription."
	return &opTool{
		Tool: tool.NewTool("pull_messages", description, false),
		declaration: declaration("pull_messages", description, map[string]*genai.Schema{
			"subscription_name": {
				Type:        genai.TypeString,
				Description: "Fully qualified subscription name, e.g. projects/my-project/subscriptions/my-sub.",
			},
			"max_messages": {
				Type:        genai.TypeInteger,
				Description: "Maximum number of messages to pull. Defaults to 1.",
			},
			"auto_ack": {
				Type:        genai.TypeBoolean,
				Description: "Whether to acknowledge the pulled messages before returning.",
			},
		}, "subscription_name"),
		run: func(ctx context.Context, args map[string]any) (any, error) {
			a, err := decodeArgs[pullMessagesArgs](args)
			if err != nil {
				return nil, err
			}
			return PullMessages(ctx, a.SubscriptionName, ts.creds, ts.cfg, a.MaxMessages, a.AutoAck), nil
		},
	}
}

type acknowledgeMessagesArgs struct {
	SubscriptionName string   `json:"subscription_name"`
	AckIDs           []string `json:"ack_ids"`
}

func (ts *Toolset) acknowledgeMessagesTool() types.Tool {
	const description = "Acknowledge messages pulled from a Pub/Sub subscription."
	return &opTool{
		Tool: tool.NewTool("acknowledge_messages", description, false),
		declaration: declaration("acknowledge_messages", description, map[string]*genai.Schema{
			"subscription_name": {
				Type:        genai.TypeString,
				Description: "Fully qualified subscription name.",
			},
			"ack_ids": {
				Type:        genai.TypeArray,
				Description: "Ack ids returned with the pulled messages, passed back unmodified.",
				Items: &genai.Schema{
					Type: genai.TypeString,
				},
			},
		}, "subscription_name", "ack_ids"),
		run: func(ctx context.Context, args map[string]any) (any, error) {
			a, err := decodeArgs[acknowledgeMessagesArgs](args)
			if err != nil {
				return nil, err
			}
			return AcknowledgeMessages(ctx, a.SubscriptionName, a.AckIDs, ts.creds, ts.cfg), nil
		},
	}
}

type projectArgs struct {
	ProjectID string `json:"project_id"`
}

func (ts *Toolset) listTopicsTool() types.Tool {
	const description = "List the Pub/Sub topics in a Google Cloud project."
	return &opTool{
		Tool: tool.NewTool("list_topics", description, false),
		declaration: declaration("list_topics", description, map[string]*genai.Schema{
			"project_id": {
				Type:        genai.TypeString,
				Description: "The Google Cloud project id.",
			},
		}, "project_id"),
		run: func(ctx context.Context, args map[string]any) (any, error) {
			a, err := decodeArgs[projectArgs](args)
			if err != nil {
				return nil, err
			}
			return ListTopics(ctx, a.ProjectID, ts.creds, ts.cfg), nil
		},
	}
}

type topicArgs struct {
	TopicName string `json:"topic_name"`
}

func (ts *Toolset) getTopicTool() types.Tool {
	const description = "Get metadata about a Pub/Sub topic."
	return &opTool{
		Tool: tool.NewTool("get_topic", description, false),
		declaration: declaration("get_topic", description, map[string]*genai.Schema{
			"topic_name": {
				Type:        genai.TypeString,
				Description: "Fully qualified topic name.",
			},
		}, "topic_name"),
		run: func(ctx context.Context, args map[string]any) (any, error) {
			a, err := decodeArgs[topicArgs](args)
			if err != nil {
				return nil, err
			}
			return GetTopic(ctx, a.TopicName, ts.creds, ts.cfg), nil
		},
	}
}

func (ts *Toolset) listSubscriptionsTool() types.Tool {
	const description = "List the Pub/Sub subscriptions in a Google Cloud project."
	return &opTool{
		Tool: tool.NewTool("list_subscriptions", description, false),
		declaration: declaration("list_subscriptions", description, map[string]*genai.Schema{
			"project_id": {
				Type:        genai.TypeString,
				Description: "The Google Cloud project id.",
			},
		}, "project_id"),
		run: func(ctx context.Context, args map[string]any) (any, error) {
			a, err := decodeArgs[projectArgs](args)
			if err != nil {
				return nil, err
			}
			return ListSubscriptions(ctx, a.ProjectID, ts.creds, ts.cfg), nil
		},
	}
}

type subscriptionArgs struct {
	SubscriptionName string `json:"subscription_name"`
}

func (ts *Toolset) getSubscriptionTool() types.Tool {
	const description = "Get metadata about a Pub/Sub subscription."
	return &opTool{
		Tool: tool.NewTool("get_subscription", description, false),
		declaration: declaration("get_subscription", description, map[string]*genai.Schema{
			"subscription_name": {
				Type:        genai.TypeString,
				Description: "Fully qualified subscription name.",
			},
		}, "subscription_name"),
		run: func(ctx context.Context, args map[string]any) (any, error) {
			a, err := decodeArgs[subscriptionArgs](args)
			if err != nil {
				return nil, err
			}
			return GetSubscription(ctx, a.SubscriptionName, ts.creds, ts.cfg), nil
		},
	}
}

func (ts *Toolset) listSchemasTool() types.Tool {
	const description = "List the Pub/Sub schemas in a Google Cloud project."
	return &opTool{
		Tool: tool.NewTool("list_schemas", description, false),
		declaration: declaration("list_schemas", description, map[string]*genai.Schema{
			"project_id": {
				Type:        genai.TypeString,
				Description: "The Google Cloud project id.",
			},
		}, "project_id"),
		run: func(ctx context.Context, args map[string]any) (any, error) {
			a, err := decodeArgs[projectArgs](args)
			if err != nil {
				return nil, err
			}
			return ListSchemas(ctx, a.ProjectID, ts.creds, ts.cfg), nil
		},
	}
}

type schemaArgs struct {
	SchemaName string `json:"schema_name"`
}

func (ts *Toolset) getSchemaTool() types.Tool {
	const description = "Get metadata about a Pub/Sub schema, including its definition."
	return &opTool{
		Tool: tool.NewTool("get_schema", description, false),
		declaration: declaration("get_schema", description, map[string]*genai.Schema{
			"schema_name": {
				Type:        genai.TypeString,
				Description: "Fully qualified schema name, e.g. projects/my-project/schemas/my-schema.",
			},
		}, "schema_name"),
		run: func(ctx context.Context, args map[string]any) (any, error) {
			a, err := decodeArgs[schemaArgs](args)
			if err != nil {
				return nil, err
			}
			return GetSchema(ctx, a.SchemaName, ts.creds, ts.cfg), nil
		},
	}
}

func (ts *Toolset) listSchemaRevisionsTool() types.Tool {
	const description = "List the revision ids of a Pub/Sub schema."
	return &opTool{
		Tool: tool.NewTool("list_schema_revisions", description, false),
		declaration: declaration("list_schema_revisions", description, map[string]*genai.Schema{
			"schema_name": {
				Type:        genai.TypeString,
				Description: "Fully qualified schema name.",
			},
		}, "schema_name"),
		run: func(ctx context.Context, args map[string]any) (any, error) {
			a, err := decodeArgs[schemaArgs](args)
			if err != nil {
				return nil, err
			}
			return ListSchemaRevisions(ctx, a.SchemaName, ts.creds, ts.cfg), nil
		},
	}
}

type schemaRevisionArgs struct {
	SchemaName string `json:"schema_name"`
	RevisionID string `json:"revision_id"`
}

func (ts *Toolset) getSchemaRevisionTool() types.Tool {
	const description = "Get metadata about one revision of a Pub/Sub schema."
	return &opTool{
		Tool: tool.NewTool("get_schema_revision", description, false),
		declaration: declaration("get_schema_revision", description, map[string]*genai.Schema{
			"schema_name": {
				Type:        genai.TypeString,
				Description: "Fully qualified schema name.",
			},
			"revision_id": {
				Type:        genai.TypeString,
				Description: "The revision id of the schema.",
			},
		}, "schema_name", "revision_id"),
		run: func(ctx context.Context, args map[string]any) (any, error) {
			a, err := decodeArgs[schemaRevisionArgs](args)
			if err != nil {
				return nil, err
			}
			return GetSchemaRevision(ctx, a.SchemaName, a.RevisionID, ts.creds, ts.cfg), nil
		},
	}
}
