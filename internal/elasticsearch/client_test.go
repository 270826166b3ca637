package elasticsearch_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/transactions/internal/elasticsearch"
	infraerrors "github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/errors"
)

type recordedRequest struct {
	path  string
	query string
	body  map[string]any
}

func newFakeCluster(t *testing.T, status int, response string) (*elasticsearch.Client, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &rec.body)

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	esClient, err := es.NewClient(es.Config{Addresses: []string{srv.URL}, DisableRetry: true})
	require.NoError(t, err)
	return elasticsearch.NewClient(esClient, 5*time.Second), rec
}

func TestClient_Search_SendsBodyToIndex(t *testing.T) {
	t.Parallel()

	client, rec := newFakeCluster(t, http.StatusOK, `{"hits":{"total":{"value":0},"hits":[]}}`)

	res, err := client.Search(context.Background(), "transactions", map[string]any{"size": 0})
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, "/transactions/_search", rec.path)
	assert.Contains(t, rec.query, "timeout=5000ms")
	assert.Equal(t, float64(0), rec.body["size"])
}

func TestClient_Search_ErrorStatus(t *testing.T) {
	t.Parallel()

	client, _ := newFakeCluster(t, http.StatusNotFound,
		`{"error":{"type":"index_not_found_exception","reason":"no such index [transactions]"},"status":404}`)

	res, err := client.Search(context.Background(), "transactions", map[string]any{})
	require.Error(t, err)
	assert.Nil(t, res)

	var httpErr *infraerrors.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, "index_not_found_exception", httpErr.Type)
}

func TestClient_Search_CancelledContext(t *testing.T) {
	t.Parallel()

	client, _ := newFakeCluster(t, http.StatusOK, `{}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := client.Search(ctx, "transactions", map[string]any{})
	require.Error(t, err)
	assert.Nil(t, res)
}
