// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package pubsubtest hosts in-process Pub/Sub service fakes with scripted
// responses, for tests that need to observe the exact requests the tools
// send.
package pubsubtest

import (
	"context"
	"net"
	"sync"

	"cloud.google.com/go/pubsub/apiv1/pubsubpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Server runs the three Pub/Sub service fakes on a loopback gRPC listener.
type Server struct {
	// Addr is the listener address, e.g. "127.0.0.1:40125".
	Addr string

	Publisher  *Publisher
	Subscriber *Subscriber
	Schemas    *SchemaService

	gsrv *grpc.Server
}

// NewServer starts a fake Pub/Sub server on a random loopback port.
func NewServer() (*Server, error) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	s := &Server{
		Addr:       lis.Addr().String(),
		Publisher:  &Publisher{},
		Subscriber: &Subscriber{},
		Schemas:    &SchemaService{},
		gsrv:       grpc.NewServer(),
	}
	pubsubpb.RegisterPublisherServer(s.gsrv, s.Publisher)
	pubsubpb.RegisterSubscriberServer(s.gsrv, s.Subscriber)
	pubsubpb.RegisterSchemaServiceServer(s.gsrv, s.Schemas)
	go func() {
		_ = s.gsrv.Serve(lis)
	}()

	return s, nil
}

// Close shuts the server down.
func (s *Server) Close() {
	s.gsrv.Stop()
}

// ClientOptions returns the options that point a Pub/Sub client at this
// server.
func (s *Server) ClientOptions() []option.ClientOption {
	return []option.ClientOption{
		option.WithEndpoint(s.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	}
}

// recorder captures every request a fake receives, in arrival order.
type recorder struct {
	mu   sync.Mutex
	reqs []proto.Message
}

func (r *recorder) record(req proto.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, proto.Clone(req))
}

// Requests returns the captured requests in arrival order.
func (r *recorder) Requests() []proto.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]proto.Message(nil), r.reqs...)
}

// Publisher fakes the Pub/Sub Publisher service. A non-nil Err fails every
// call; otherwise the scripted response fields are returned.
type Publisher struct {
	pubsubpb.UnimplementedPublisherServer
	recorder

	Err             error
	PublishResponse *pubsubpb.PublishResponse
	Topic           *pubsubpb.Topic
	Topics          []*pubsubpb.Topic
}

// Publish implements [pubsubpb.PublisherServer].
func (p *Publisher) Publish(ctx context.Context, req *pubsubpb.PublishRequest) (*pubsubpb.PublishResponse, error) {
	p.record(req)
	if p.Err != nil {
		return nil, p.Err
	}
	return p.PublishResponse, nil
}

// GetTopic implements [pubsubpb.PublisherServer].
func (p *Publisher) GetTopic(ctx context.Context, req *pubsubpb.GetTopicRequest) (*pubsubpb.Topic, error) {
	p.record(req)
	if p.Err != nil {
		return nil, p.Err
	}
	if p.Topic == nil {
		return nil, status.Errorf(codes.NotFound, "topic %q not found", req.GetTopic())
	}
	return p.Topic, nil
}

// ListTopics implements [pubsubpb.PublisherServer].
func (p *Publisher) ListTopics(ctx context.Context, req *pubsubpb.ListTopicsRequest) (*pubsubpb.ListTopicsResponse, error) {
	p.record(req)
	if p.Err != nil {
		return nil, p.Err
	}
	return &pubsubpb.ListTopicsResponse{
		Topics: p.Topics,
	}, nil
}

// Subscriber fakes the Pub/Sub Subscriber service.
type Subscriber struct {
	pubsubpb.UnimplementedSubscriberServer
	recorder

	Err           error
	PullResponse  *pubsubpb.PullResponse
	Subscription  *pubsubpb.Subscription
	Subscriptions []*pubsubpb.Subscription
}

// Pull implements [pubsubpb.SubscriberServer].
func (s *Subscriber) Pull(ctx context.Context, req *pubsubpb.PullRequest) (*pubsubpb.PullResponse, error) {
	s.record(req)
	if s.Err != nil {
		return nil, s.Err
	}
	if s.PullResponse == nil {
		return &pubsubpb.PullResponse{}, nil
	}
	return s.PullResponse, nil
}

// Acknowledge implements [pubsubpb.SubscriberServer].
func (s *Subscriber) Acknowledge(ctx context.Context, req *pubsubpb.AcknowledgeRequest) (*emptypb.Empty, error) {
	s.record(req)
	if s.Err != nil {
		return nil, s.Err
	}
	return &emptypb.Empty{}, nil
}

// GetSubscription implements [pubsubpb.SubscriberServer].
func (s *Subscriber) GetSubscription(ctx context.Context, req *pubsubpb.GetSubscriptionRequest) (*pubsubpb.Subscription, error) {
	s.record(req)
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Subscription == nil {
		return nil, status.Errorf(codes.NotFound, "subscription %q not found", req.GetSubscription())
	}
	return s.Subscription, nil
}

// ListSubscriptions implements [pubsubpb.SubscriberServer].
func (s *Subscriber) ListSubscriptions(ctx context.Context, req *pubsubpb.ListSubscriptionsRequest) (*pubsubpb.ListSubscriptionsResponse, error) {
	s.record(req)
	if s.Err != nil {
		return nil, s.Err
	}
	return &pubsubpb.ListSubscriptionsResponse{
		Subscriptions: s.Subscriptions,
	}, nil
}

// SchemaService fakes the Pub/Sub schema service.
type SchemaService struct {
	pubsubpb.UnimplementedSchemaServiceServer
	recorder

	Err       error
	Schema    *pubsubpb.Schema
	Schemas   []*pubsubpb.Schema
	Revisions []*pubsubpb.Schema
}

// GetSchema implements [pubsubpb.SchemaServiceServer].
func (s *SchemaService) GetSchema(ctx context.Context, req *pubsubpb.GetSchemaRequest) (*pubsubpb.Schema, error) {
	s.record(req)
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Schema == nil {
		return nil, status.Errorf(codes.NotFound, "schema %q not found", req.GetName())
	}
	return s.Schema, nil
}

// ListSchemas implements [pubsubpb.SchemaServiceServer].
func (s *SchemaService) ListSchemas(ctx context.Context, req *pubsubpb.ListSchemasRequest) (*pubsubpb.ListSchemasResponse, error) {
	s.record(req)
	if s.Err != nil {
		return nil, s.Err
	}
	return &pubsubpb.ListSchemasResponse{
		Schemas: s.Schemas,
	}, nil
}

// ListSchemaRevisions implements [pubsubpb.SchemaServiceServer].
func (s *SchemaService) ListSchemaRevisions(ctx context.Context, req *pubsubpb.ListSchemaRevisionsRequest) (*pubsubpb.ListSchemaRevisionsResponse, error) {
	s.record(req)
	if s.Err != nil {
		return nil, s.Err
	}
	return &pubsubpb.ListSchemaRevisionsResponse{
		Schemas: s.Revisions,
	}, nil
}
