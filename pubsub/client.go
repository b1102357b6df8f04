// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package pubsub

import (
	"context"
	"errors"
	"strings"
	"sync"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"
	vkit "cloud.google.com/go/pubsub/apiv1"
	"google.golang.org/api/option"

	pubsubtool "github.com/go-a2a/pubsub-tool"
)

// ScopePubSub is the OAuth2 scope the Pub/Sub tools request when detecting
// default credentials.
const ScopePubSub = "https://www.googleapis.com/auth/pubsub"

// userAgentPrefix identifies this library to the Pub/Sub service. It is
// always the first element of the composed user agent.
const userAgentPrefix = "adk-pubsub-tool go-adk/"

// UserAgent composes the identification string sent with every client.
//
// The fixed library identifier and version come first, followed by the given
// fragments joined with single spaces. Empty fragments are skipped.
func UserAgent(fragments ...string) string {
	parts := make([]string, 0, len(fragments)+1)
	parts = append(parts, userAgentPrefix+pubsubtool.Version)
	for _, fragment := range fragments {
		if fragment != "" {
			parts = append(parts, fragment)
		}
	}
	return strings.Join(parts, " ")
}

// DetectCredentials returns the application default credentials with the
// Pub/Sub scope.
func DetectCredentials() (*auth.Credentials, error) {
	return credentials.DetectDefault(&credentials.DetectOptions{
		Scopes: []string{ScopePubSub},
	})
}

// clientOptions builds the option list for a client: user agent first, then
// the credential, then any caller overrides from cfg.
func clientOptions(creds *auth.Credentials, cfg *ToolConfig, fragments []string) []option.ClientOption {
	opts := []option.ClientOption{
		option.WithUserAgent(UserAgent(fragments...)),
	}
	if creds != nil {
		opts = append(opts, option.WithAuthCredentials(creds))
	}
	if cfg != nil {
		opts = append(opts, cfg.ClientOptions...)
	}
	return opts
}

// NewPublisherClient returns a Pub/Sub publisher client identified by the
// composed user agent.
//
// A nil creds falls through to the client library's default credential
// detection.
func NewPublisherClient(ctx context.Context, creds *auth.Credentials, cfg *ToolConfig, fragments ...string) (*vkit.PublisherClient, error) {
	return vkit.NewPublisherClient(ctx, clientOptions(creds, cfg, fragments)...)
}

// NewSubscriberClient returns a Pub/Sub subscriber client identified by the
// composed user agent.
func NewSubscriberClient(ctx context.Context, creds *auth.Credentials, cfg *ToolConfig, fragments ...string) (*vkit.SubscriberClient, error) {
	return vkit.NewSubscriberClient(ctx, clientOptions(creds, cfg, fragments)...)
}

// NewSchemaClient returns a Pub/Sub schema client identified by the composed
// user agent.
func NewSchemaClient(ctx context.Context, creds *auth.Credentials, cfg *ToolConfig, fragments ...string) (*vkit.SchemaClient, error) {
	return vkit.NewSchemaClient(ctx, clientOptions(creds, cfg, fragments)...)
}

// ClientCache is an opt-in cache of client handles keyed by the composed
// user agent, for callers that invoke the tools at a volume where per-call
// client construction is wasteful.
//
// Handles are immutable after construction, so a cached handle is safe to
// share between concurrent callers. The cache itself must only be used with
// a single credential, since the credential is not part of the key.
type ClientCache struct {
	mu          sync.Mutex
	publishers  map[string]*vkit.PublisherClient
	subscribers map[string]*vkit.SubscriberClient
	schemas     map[string]*vkit.SchemaClient
}

// NewClientCache returns an empty [ClientCache].
func NewClientCache() *ClientCache {
	return &ClientCache{
		publishers:  make(map[string]*vkit.PublisherClient),
		subscribers: make(map[string]*vkit.SubscriberClient),
		schemas:     make(map[string]*vkit.SchemaClient),
	}
}

// Publisher returns the cached publisher client for the composed user agent,
// constructing it on first use.
func (c *ClientCache) Publisher(ctx context.Context, creds *auth.Credentials, cfg *ToolConfig, fragments ...string) (*vkit.PublisherClient, error) {
	key := UserAgent(fragments...)

	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.publishers[key]; ok {
		return client, nil
	}
	client, err := NewPublisherClient(ctx, creds, cfg, fragments...)
	if err != nil {
		return nil, err
	}
	c.publishers[key] = client
	return client, nil
}

// Subscriber returns the cached subscriber client for the composed user
// agent, constructing it on first use.
func (c *ClientCache) Subscriber(ctx context.Context, creds *auth.Credentials, cfg *ToolConfig, fragments ...string) (*vkit.SubscriberClient, error) {
	key := UserAgent(fragments...)

	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.subscribers[key]; ok {
		return client, nil
	}
	client, err := NewSubscriberClient(ctx, creds, cfg, fragments...)
	if err != nil {
		return nil, err
	}
	c.subscribers[key] = client
	return client, nil
}

// Schema returns the cached schema client for the composed user agent,
// constructing it on first use.
func (c *ClientCache) Schema(ctx context.Context, creds *auth.Credentials, cfg *ToolConfig, fragments ...string) (*vkit.SchemaClient, error) {
	key := UserAgent(fragments...)

	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.schemas[key]; ok {
		return client, nil
	}
	client, err := NewSchemaClient(ctx, creds, cfg, fragments...)
	if err != nil {
		return nil, err
	}
	c.schemas[key] = client
	return client, nil
}

// Close releases every cached handle. The cache is reusable afterwards.
func (c *ClientCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for key, client := range c.publishers {
		errs = append(errs, client.Close())
		delete(c.publishers, key)
	}
	for key, client := range c.subscribers {
		errs = append(errs, client.Close())
		delete(c.subscribers, key)
	}
	for key, client := range c.schemas {
		errs = append(errs, client.Close())
		delete(c.schemas, key)
	}
	return errors.Join(errs...)
}

// normalized treats a nil config as the zero config, so a nil *ToolConfig
// flows through the operations like any other failure instead of panicking
// past the tool boundary.
func normalized(cfg *ToolConfig) *ToolConfig {
	if cfg == nil {
		return &ToolConfig{}
	}
	return cfg
}

// publisherClient hands the publish and topic metadata operations a client,
// either from the configured cache or freshly constructed. The returned
// release func closes fresh handles and is a no-op for cached ones.
func publisherClient(ctx context.Context, creds *auth.Credentials, cfg *ToolConfig, op string) (*vkit.PublisherClient, func(), error) {
	cfg = normalized(cfg)
	fragments := []string{cfg.ProjectID, op}
	if cfg.ClientCache != nil {
		client, err := cfg.ClientCache.Publisher(ctx, creds, cfg, fragments...)
		return client, func() {}, err
	}
	client, err := NewPublisherClient(ctx, creds, cfg, fragments...)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// subscriberClient is the subscriber counterpart of publisherClient.
func subscriberClient(ctx context.Context, creds *auth.Credentials, cfg *ToolConfig, op string) (*vkit.SubscriberClient, func(), error) {
	cfg = normalized(cfg)
	fragments := []string{cfg.ProjectID, op}
	if cfg.ClientCache != nil {
		client, err := cfg.ClientCache.Subscriber(ctx, creds, cfg, fragments...)
		return client, func() {}, err
	}
	client, err := NewSubscriberClient(ctx, creds, cfg, fragments...)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// schemaClient is the schema counterpart of publisherClient.
func schemaClient(ctx context.Context, creds *auth.Credentials, cfg *ToolConfig, op string) (*vkit.SchemaClient, func(), error) {
	cfg = normalized(cfg)
	fragments := []string{cfg.ProjectID, op}
	if cfg.ClientCache != nil {
		client, err := cfg.ClientCache.Schema(ctx, creds, cfg, fragments...)
		return client, func() {}, err
	}
	client, err := NewSchemaClient(ctx, creds, cfg, fragments...)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}
