package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/banibsnetworks-source/banibs-production-sub001"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/domain"
)

const defaultTimeout = 3 * time.Second

// Client is a typed HTTP client for the policy engine API. Trust graph
// reads are cached locally since edge sets only change on refresh.
type Client struct {
	client    *http.Client
	cache     *cache.Cache
	baseURL   string
	requester string
	userAgent string
}

func New(baseURL string, requester string) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		client:    &httpClient,
		cache:     cache.New(10*time.Minute, 15*time.Minute),
		baseURL:   baseURL,
		requester: requester,
		userAgent: "banibs-client",
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	if c.requester != "" {
		req.Header.Set(domain.RequesterIdHeader, c.requester)
	}
	return http.DefaultTransport.RoundTrip(req)
}

func httpRequest[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return zero, fmt.Errorf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return zero, fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&failure); err == nil && failure.Error != "" {
			return zero, fmt.Errorf("request failed: %s", failure.Error)
		}
		return zero, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload T
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return zero, fmt.Errorf("failed to decode response: %v", err)
	}

	return payload, nil
}

func (c *Client) GetEdges(ctx context.Context, owner string) ([]domain.TrustEdge, error) {
	cacheKey := "edges:" + owner
	x, found := c.cache.Get(cacheKey)
	if found {
		return x.([]domain.TrustEdge), nil
	}

	edges, err := httpRequest[[]domain.TrustEdge](ctx, c, http.MethodGet,
		"/api/v1/graph/"+url.PathEscape(owner)+"/edges", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get edges: %v", err)
	}

	c.cache.Set(cacheKey, edges, cache.DefaultExpiration)

	return edges, nil
}

func (c *Client) GetMeta(ctx context.Context, owner string) (domain.TrustGraphMeta, error) {
	cacheKey := "meta:" + owner
	x, found := c.cache.Get(cacheKey)
	if found {
		return x.(domain.TrustGraphMeta), nil
	}

	meta, err := httpRequest[domain.TrustGraphMeta](ctx, c, http.MethodGet,
		"/api/v1/graph/"+url.PathEscape(owner)+"/meta", nil)
	if err != nil {
		return domain.TrustGraphMeta{}, fmt.Errorf("failed to get meta: %v", err)
	}

	c.cache.Set(cacheKey, meta, cache.DefaultExpiration)

	return meta, nil
}

// RefreshEdges also drops the local cache for the owner.
func (c *Client) RefreshEdges(ctx context.Context, owner string) (int, error) {
	result, err := httpRequest[struct {
		Edges int `json:"edges"`
	}](ctx, c, http.MethodPost, "/api/v1/graph/"+url.PathEscape(owner)+"/refresh", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to refresh edges: %v", err)
	}

	c.cache.Delete("edges:" + owner)
	c.cache.Delete("meta:" + owner)

	return result.Edges, nil
}

func (c *Client) Traverse(ctx context.Context, origin string, depth int) ([]domain.TraversalLayer, error) {
	path := fmt.Sprintf("/api/v1/graph/%s/traverse?depth=%d", url.PathEscape(origin), depth)
	layers, err := httpRequest[[]domain.TraversalLayer](ctx, c, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to traverse: %v", err)
	}
	return layers, nil
}

type AccessDecision struct {
	Allowed            bool   `json:"allowed"`
	RequiresApproval   bool   `json:"requiresApproval"`
	ImmediatelyVisible bool   `json:"immediatelyVisible"`
	Reason             string `json:"reason"`
}

func (c *Client) CanSeeContent(ctx context.Context, author, viewer string, visibility banibs.ContentVisibility) (AccessDecision, error) {
	query := url.Values{}
	query.Set("author", author)
	query.Set("viewer", viewer)
	query.Set("visibility", visibility.String())

	decision, err := httpRequest[AccessDecision](ctx, c, http.MethodGet,
		"/api/v1/access/content?"+query.Encode(), nil)
	if err != nil {
		return AccessDecision{}, fmt.Errorf("failed to check content access: %v", err)
	}
	return decision, nil
}

func (c *Client) CanSendDM(ctx context.Context, sender, recipient string, existingThread bool) (AccessDecision, error) {
	query := url.Values{}
	query.Set("sender", sender)
	query.Set("recipient", recipient)
	if existingThread {
		query.Set("existing_thread", "true")
	}

	decision, err := httpRequest[AccessDecision](ctx, c, http.MethodGet,
		"/api/v1/access/dm?"+query.Encode(), nil)
	if err != nil {
		return AccessDecision{}, fmt.Errorf("failed to check dm access: %v", err)
	}
	return decision, nil
}

type EnqueueRequest struct {
	Recipient string `json:"recipient"`
	Actor     string `json:"actor"`
	Type      string `json:"type"`
	Payload   string `json:"payload"`
}

type EnqueueResult struct {
	Enqueued bool                         `json:"enqueued"`
	Envelope *domain.NotificationEnvelope `json:"envelope"`
}

func (c *Client) Enqueue(ctx context.Context, req EnqueueRequest) (EnqueueResult, error) {
	result, err := httpRequest[EnqueueResult](ctx, c, http.MethodPost,
		"/api/v1/notifications", req)
	if err != nil {
		return EnqueueResult{}, fmt.Errorf("failed to enqueue notification: %v", err)
	}
	return result, nil
}
