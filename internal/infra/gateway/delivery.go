package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/banibsnetworks-source/banibs-production-sub001/internal/domain"
)

const defaultTimeout = 3 * time.Second

// DeliveryGateway hands formatted artifacts to the external delivery
// service. The push/email/socket fan-out behind that service is out of
// scope here; a non-2xx response surfaces as an error so the caller
// releases the envelope claim for retry.
type DeliveryGateway struct {
	client   *http.Client
	cache    *cache.Cache
	endpoint string
}

func NewDeliveryGateway(endpoint string) *DeliveryGateway {
	return &DeliveryGateway{
		client:   &http.Client{Timeout: defaultTimeout},
		cache:    cache.New(10*time.Minute, 15*time.Minute),
		endpoint: endpoint,
	}
}

type routeResponse struct {
	URL string `json:"url"`
}

// resolveRoute looks up the recipient's delivery route, cached so a
// drain pass over a busy recipient does not hammer the route lookup.
func (g *DeliveryGateway) resolveRoute(ctx context.Context, recipient string) (string, error) {
	if cached, found := g.cache.Get(recipient); found {
		return cached.(string), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"/routes/"+recipient, nil)
	if err != nil {
		return "", err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// No dedicated route; fall back to the shared deliver
		// endpoint.
		route := g.endpoint + "/deliver"
		g.cache.Set(recipient, route, cache.DefaultExpiration)
		return route, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("route lookup for %s returned %d: %s", recipient, resp.StatusCode, string(body))
	}

	var route routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&route); err != nil {
		return "", err
	}
	g.cache.Set(recipient, route.URL, cache.DefaultExpiration)
	return route.URL, nil
}

func (g *DeliveryGateway) Deliver(ctx context.Context, item domain.DeliveryItem) error {
	route, err := g.resolveRoute(ctx, item.Recipient)
	if err != nil {
		return fmt.Errorf("failed to resolve delivery route: %w", err)
	}

	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, route, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delivery hand-off returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
