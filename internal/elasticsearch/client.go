// Package elasticsearch runs transaction queries against the cluster.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	infraes "github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/elasticsearch"
	infraerrors "github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/errors"
)

// Client runs search requests. It is safe for concurrent use.
type Client struct {
	esClient *es.Client
	// serverTimeout is sent as the search "timeout" parameter when set.
	serverTimeout time.Duration
}

// NewClient wraps a connected go-elasticsearch client.
func NewClient(esClient *es.Client, serverTimeout time.Duration) *Client {
	return &Client{esClient: esClient, serverTimeout: serverTimeout}
}

// Search posts body to index's _search endpoint. On success the caller must
// close the response body. A response with an error status is closed here
// and returned as an error wrapping *infraerrors.HTTPError.
func (c *Client) Search(ctx context.Context, index string, body map[string]any) (*esapi.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	opts := []func(*esapi.SearchRequest){
		c.esClient.Search.WithContext(ctx),
		c.esClient.Search.WithIndex(index),
		c.esClient.Search.WithBody(&buf),
	}
	if c.serverTimeout > 0 {
		opts = append(opts, c.esClient.Search.WithTimeout(c.serverTimeout))
	}

	res, err := c.esClient.Search(opts...)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	if res.IsError() {
		defer func() { _ = res.Body.Close() }()
		return nil, fmt.Errorf("elasticsearch returned error [%d]: %w",
			res.StatusCode, infraerrors.ParseResponse(res.StatusCode, res.Body))
	}
	return res, nil
}

// Ping reports whether the cluster answers.
func (c *Client) Ping(ctx context.Context) error {
	return infraes.Ping(ctx, c.esClient, 0)
}
