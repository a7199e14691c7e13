package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/snapnest/booking-backend/pkg/config"
	"github.com/snapnest/booking-backend/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errTopicRequired     = errors.New("pubsub topic name is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

// Client publishes booking submissions to a single topic. The confirmation
// email worker subscribes elsewhere.
type Client struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topic     string
}

// NewClient connects to Pub/Sub and fails when the booking events topic is
// missing.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}
	topic := topicResourceName(projectID, cfg.BookingEventsTopic)
	if topic == "" {
		return nil, errTopicRequired
	}

	psClient, err := pubsub.NewClient(ctx, projectID, clientOptions(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{client: psClient, topic: topic}
	if err := c.Ping(ctx); err != nil {
		_ = psClient.Close()
		return nil, err
	}

	// One submission per publish; batching would only delay confirmations.
	c.publisher = psClient.Publisher(topic)
	c.publisher.PublishSettings.CountThreshold = 1
	c.publisher.PublishSettings.DelayThreshold = time.Millisecond
	if cfg.PublishTimeout > 0 {
		c.publisher.PublishSettings.Timeout = cfg.PublishTimeout
	}

	logg.Info(logg.WithField(ctx, "topic", topic), "pubsub client initialized")
	return c, nil
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(gcp.CredentialsJSON))}
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		return []option.ClientOption{option.WithCredentialsFile(gcp.ApplicationCredentials)}
	}
	return nil
}

// Publish sends one booking event and blocks until the server assigns an id.
func (c *Client) Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error) {
	if c == nil || c.publisher == nil {
		return "", errNotInitialized
	}
	id, err := c.publisher.Publish(ctx, &pubsub.Message{Data: data, Attributes: attributes}).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publishing to %s: %w", c.topic, err)
	}
	return id, nil
}

// Ping checks that the topic still exists.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	_, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: c.topic})
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("topic %s does not exist", c.topic)
	}
	return fmt.Errorf("checking topic %s: %w", c.topic, err)
}

// Close flushes pending publishes before releasing the connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	if c.publisher != nil {
		c.publisher.Stop()
	}
	return c.client.Close()
}

// topicResourceName accepts a short topic id or a full resource name.
func topicResourceName(projectID, name string) string {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return ""
	case strings.HasPrefix(name, "projects/") && strings.Contains(name, "/topics/"):
		return name
	case strings.TrimSpace(projectID) == "":
		return ""
	}
	return "projects/" + strings.TrimSpace(projectID) + "/topics/" + name
}
