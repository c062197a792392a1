package pollapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
	"github.com/preston-bernstein/poll-position/internal/providers"
)

// Config controls how the client reaches the poll-position API.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the poll-position HTTP API.
type Client struct {
	baseURL    string
	httpClient httpDoer
}

// NewClient constructs a client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		httpClient: resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
	}
}

// BaseURL reports the normalized base the client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchSeasons lists the seasons the API has poll data for.
// A body that carries no usable seasons field (including a non-object body)
// yields an empty, non-nil list; a null body is malformed.
func (c *Client) FetchSeasons(ctx context.Context) ([]polls.Season, error) {
	body, err := c.get(ctx, providers.EndpointSeasons, seasonsPath, nil)
	if err != nil {
		return nil, err
	}
	return decodeSeasons(body)
}

// FetchLatestPoll retrieves the latest poll rows stored for a season.
// Rows are returned as sent; filtering and season stamping belong to the caller.
func (c *Client) FetchLatestPoll(ctx context.Context, season polls.Season) (providers.LatestPoll, error) {
	query := map[string]string{"season": strconv.Itoa(int(season))}
	body, err := c.get(ctx, providers.EndpointLatestPoll, latestPollPath, query)
	if err != nil {
		return providers.LatestPoll{Shape: providers.ShapeUnknown}, err
	}
	return decodeLatestPoll(body)
}

// FetchSeasonFiles lists the stored poll files for a season.
func (c *Client) FetchSeasonFiles(ctx context.Context, season polls.Season) (polls.SeasonFilesResponse, error) {
	path := seasonPollPath + strconv.Itoa(int(season))
	body, err := c.get(ctx, providers.EndpointSeasonPoll, path, nil)
	if err != nil {
		return polls.SeasonFilesResponse{}, err
	}

	var payload polls.SeasonFilesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return polls.SeasonFilesResponse{}, &providers.MalformedResponseError{Endpoint: providers.EndpointSeasonPoll, Reason: "invalid season files body", Err: err}
	}
	if payload.Files == nil {
		payload.Files = []polls.SeasonFile{}
	}
	return payload, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, query map[string]string) ([]byte, error) {
	req, err := c.buildRequest(ctx, path, query)
	if err != nil {
		return nil, &providers.TransportError{Endpoint: endpoint, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &providers.TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, &providers.HTTPStatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &providers.TransportError{Endpoint: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

func (c *Client) buildRequest(ctx context.Context, path string, query map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		q := req.URL.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}
