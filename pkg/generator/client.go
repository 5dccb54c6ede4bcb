// Package generator talks to the external content-generation service that
// produces roadmap documents and video playlists. Payloads are opaque here;
// the service stores whatever comes back verbatim.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds a client authenticating with OAuth2 client credentials.
// An empty tokenURL yields an unauthenticated client, which the local
// development generator accepts.
func NewClient(baseURL, clientID, clientSecret, tokenURL string) *Client {
	httpClient := &http.Client{Timeout: 60 * time.Second}
	if tokenURL != "" {
		config := clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		}
		httpClient = config.Client(context.Background())
		httpClient.Timeout = 60 * time.Second
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// GenerateRoadmap asks the service for a curriculum document for one topic.
func (c *Client) GenerateRoadmap(ctx context.Context, topic, depth string) (json.RawMessage, error) {
	var response roadmapResponse
	if err := c.makeRequest(ctx, "/v1/roadmaps", RoadmapRequest{Topic: topic, Depth: depth}, &response); err != nil {
		return nil, fmt.Errorf("generate roadmap (topic: %s, depth: %s): %w", topic, depth, err)
	}

	if len(response.Roadmap) == 0 {
		return nil, fmt.Errorf("generate roadmap (topic: %s): empty document in response", topic)
	}
	return response.Roadmap, nil
}

// GenerateVideoPages asks the service for a fresh playlist, already split
// into pages. The order of the returned slice is the page order.
func (c *Client) GenerateVideoPages(ctx context.Context, req PlaylistRequest) ([]json.RawMessage, error) {
	var response playlistResponse
	if err := c.makeRequest(ctx, "/v1/playlists", req, &response); err != nil {
		return nil, fmt.Errorf("generate video pages (topic: %s, level: %s): %w", req.Topic, req.Level, err)
	}

	if len(response.Pages) == 0 {
		return nil, fmt.Errorf("generate video pages (topic: %s, level: %s): empty playlist in response", req.Topic, req.Level)
	}
	return response.Pages, nil
}

func (c *Client) makeRequest(ctx context.Context, path string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		var errResp errorResponse
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("generator responded %d: %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("generator responded %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
