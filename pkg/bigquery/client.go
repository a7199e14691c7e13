package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/snapnest/booking-backend/pkg/config"
	"github.com/snapnest/booking-backend/pkg/logger"
)

const metadataCheckTimeout = 10 * time.Second

var (
	errProjectIDRequired    = errors.New("gcp project id is required")
	errDatasetRequired      = errors.New("bigquery dataset is required")
	errTableNameRequired    = errors.New("bigquery bookings table is required")
	errClientNotInitialized = errors.New("bigquery client not initialized")
)

// Identified rows carry a stable id used for BigQuery's best-effort insert
// deduplication.
type Identified interface {
	InsertID() string
}

// Client streams submitted bookings into the analytics table.
type Client struct {
	client   *bigquery.Client
	bookings *bigquery.Table
}

// NewClient connects to BigQuery and fails fast when the bookings table is
// not reachable.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.BigQueryConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}
	datasetID := strings.TrimSpace(cfg.Dataset)
	if datasetID == "" {
		return nil, errDatasetRequired
	}
	tableID := strings.TrimSpace(cfg.BookingsTable)
	if tableID == "" {
		return nil, errTableNameRequired
	}

	bqClient, err := bigquery.NewClient(ctx, projectID, clientOptions(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating bigquery client: %w", err)
	}

	client := &Client{
		client:   bqClient,
		bookings: bqClient.Dataset(datasetID).Table(tableID),
	}
	if err := client.Ping(ctx); err != nil {
		_ = bqClient.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"dataset": datasetID, "table": tableID}), "bigquery client initialized")
	}
	return client, nil
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

// Ping checks that the bookings table exists and is readable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.bookings == nil {
		return errClientNotInitialized
	}
	ctx, cancel := context.WithTimeout(ctx, metadataCheckTimeout)
	defer cancel()

	if _, err := c.bookings.Metadata(ctx); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("table %s.%s does not exist", c.bookings.DatasetID, c.bookings.TableID)
		}
		return fmt.Errorf("checking table %s.%s: %w", c.bookings.DatasetID, c.bookings.TableID, err)
	}
	return nil
}

// InsertBookingRows streams rows into the bookings table.
func (c *Client) InsertBookingRows(ctx context.Context, rows []any) error {
	if c == nil || c.bookings == nil {
		return errClientNotInitialized
	}
	if len(rows) == 0 {
		return nil
	}
	if err := c.bookings.Inserter().Put(ctx, withInsertIDs(rows)); err != nil {
		return fmt.Errorf("inserting %d rows into %q: %w", len(rows), c.bookings.TableID, err)
	}
	return nil
}

// withInsertIDs wraps identified rows in a StructSaver so a redelivered
// booking is not counted twice. Other rows pass through unchanged.
func withInsertIDs(rows []any) []any {
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		if ided, ok := row.(Identified); ok && ided.InsertID() != "" {
			out = append(out, &bigquery.StructSaver{Struct: row, InsertID: ided.InsertID()})
			continue
		}
		out = append(out, row)
	}
	return out
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
