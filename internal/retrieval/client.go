package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wladywlady/t3-render/internal/observability"
	"github.com/wladywlady/t3-render/internal/vehicle"
)

const (
	// DefaultBaseURL is the Nomic Atlas API root.
	DefaultBaseURL = "https://api-atlas.nomic.ai/v1"

	searchPath     = "/query/topk"
	defaultK       = 6
	defaultTimeout = 20 * time.Second
)

// itemListKeys is the priority order of top-level response keys that may hold
// the result array. The first present array wins; this extraction is the most
// likely breakage point if the backend changes shape, keep it explicit.
var itemListKeys = []string{"results", "matches", "data"}

// Config holds search client configuration.
type Config struct {
	BaseURL      string
	APIKey       string
	ProjectionID string
	K            int // desired passage count per query
	Timeout      time.Duration
}

// Client queries the vector-search backend and normalizes its results.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	projectionID string
	k            int
	logger       *observability.Logger
}

// NewClient creates a search client. The projection ID must be a valid UUID.
func NewClient(cfg Config, logger *observability.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("search API key is required")
	}
	if _, err := uuid.Parse(cfg.ProjectionID); err != nil {
		return nil, fmt.Errorf("invalid projection ID %q: %w", cfg.ProjectionID, err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.K <= 0 {
		cfg.K = defaultK
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		projectionID: cfg.ProjectionID,
		k:            cfg.K,
		logger:       logger,
	}, nil
}

// K returns the configured desired passage count.
func (c *Client) K() int {
	return c.k
}

// Search retrieves up to K passages for the query. The backend is over-fetched
// threefold so that filtering by vehicle slug still leaves enough material. A
// failed call is retried once with an identical payload; a second failure is
// returned to the caller. An empty result is a valid outcome, not an error.
func (c *Client) Search(ctx context.Context, query string, slug vehicle.Slug) ([]Passage, error) {
	desired := c.k
	initial := desired * 3
	if initial < desired {
		initial = desired
	}

	payload := map[string]interface{}{
		"projection_id": c.projectionID,
		"k":             initial,
		"query":         query,
		"fields":        []string{"text", "metadata"},
	}

	rawItems, err := c.fetchItems(ctx, payload)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Search backend call failed, retrying once")
		rawItems, err = c.fetchItems(ctx, payload)
		if err != nil {
			return nil, fmt.Errorf("search backend: %w", err)
		}
	}

	if len(rawItems) == 0 {
		return nil, nil
	}

	mapped := make([]Passage, 0, len(rawItems))
	for _, raw := range rawItems {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		passage, ok := c.mapItem(item)
		if !ok {
			continue
		}
		mapped = append(mapped, passage)
	}

	selected := mapped
	if slug != "" {
		filtered := make([]Passage, 0, len(mapped))
		for _, p := range mapped {
			if p.Meta.ModelSlug == slug.String() || p.Meta.ModelKey == slug.String() {
				filtered = append(filtered, p)
			}
		}
		// Imperfect context beats none: keep the unfiltered set when nothing
		// is tagged with the requested model.
		if len(filtered) > 0 {
			selected = filtered
		}
	}

	if len(selected) > desired {
		selected = selected[:desired]
	}
	return selected, nil
}

// fetchItems performs one search call and extracts the raw item list.
func (c *Client) fetchItems(ctx context.Context, payload map[string]interface{}) ([]interface{}, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("search API status %d: %s", resp.StatusCode, string(body))
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	for _, key := range itemListKeys {
		if items, ok := decoded[key].([]interface{}); ok {
			return items, nil
		}
	}
	return nil, nil
}

// mapItem builds a Passage from one raw search item. Items without string
// text are discarded.
func (c *Client) mapItem(item map[string]interface{}) (Passage, bool) {
	nested, _ := item["data"].(map[string]interface{})

	text, ok := item["text"].(string)
	if !ok && nested != nil {
		text, ok = nested["text"].(string)
	}
	if !ok || text == "" {
		return Passage{}, false
	}

	return Passage{
		Text:  text,
		Score: resolveScore(item),
		Meta:  c.parseMetadata(item, nested),
	}, true
}

// parseMetadata resolves raw metadata from its possible locations. A
// JSON-encoded string is parsed; a parse failure is logged and treated as no
// metadata.
func (c *Client) parseMetadata(item, nested map[string]interface{}) Meta {
	var source interface{}
	for _, candidate := range []interface{}{
		item["metadata"],
		nestedValue(nested, "metadata"),
		nestedValue(nested, "meta"),
		item["meta"],
	} {
		if candidate != nil {
			source = candidate
			break
		}
	}

	if encoded, ok := source.(string); ok {
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(encoded), &parsed); err != nil {
			c.logger.Warn().Err(err).Msg("Could not parse JSON-encoded passage metadata")
			return Meta{}
		}
		return metaFromMap(parsed)
	}

	if raw, ok := source.(map[string]interface{}); ok {
		return metaFromMap(raw)
	}
	return Meta{}
}

func nestedValue(nested map[string]interface{}, key string) interface{} {
	if nested == nil {
		return nil
	}
	return nested[key]
}
