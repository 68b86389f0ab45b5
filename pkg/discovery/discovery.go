// Package discovery self-registers this service instance with a Consul-style
// HTTP service-discovery registry on startup and deregisters it on shutdown —
// a fire-and-forget PUT to the agent's register and deregister endpoints
// (spec §1).
//
// Adapted from the example corpus's pkg/registry.Registry (a name -> provider
// map protected by a mutex); here the "name" being registered is this process
// instance with an external registry, not a local in-process provider.
// Grounded on original_source/server/plugins/consul.py for the exact payload
// shape and register/deregister endpoints. HTTP transport is pkg/internal/http's
// shared Client, the same request/response wrapper pkg/assets uses for its
// HTTP fetches, rather than a second hand-rolled *http.Client.
package discovery

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	internalhttp "github.com/pbusenius/nllb-api/pkg/internal/http"
)

// Config configures registration against a Consul agent's HTTP API.
type Config struct {
	HTTPAddr       string // host:port of the Consul HTTP API
	AuthToken      string
	ServiceAddress string
	ServicePort    int
	ServiceScheme  string // "http" or "https", used to build the health-check URL
	ServerRootPath string
	AppName        string
	AppID          string
}

type healthCheck struct {
	HTTP     string `json:"HTTP"`
	Interval string `json:"Interval"`
	Timeout  string `json:"Timeout"`
}

type registerPayload struct {
	Name  string            `json:"Name"`
	ID    string            `json:"ID"`
	Tags  []string          `json:"Tags"`
	Address string          `json:"Address"`
	Port  int               `json:"Port"`
	Check healthCheck       `json:"Check"`
	Meta  map[string]string `json:"Meta"`
}

// Client registers and deregisters this service instance with Consul.
type Client struct {
	cfg  Config
	http *internalhttp.Client

	mu         sync.Mutex
	registered bool
}

// New returns a Client for cfg. Call Register on startup and Deregister on
// shutdown; both are fire-and-forget — failures are logged, not fatal,
// since service discovery is plumbing external to the translation core.
func New(cfg Config) *Client {
	client := internalhttp.NewClient(internalhttp.Config{
		BaseURL: fmt.Sprintf("https://%s/v1/agent/service", cfg.HTTPAddr),
		Timeout: 10 * time.Second,
	})
	if cfg.AuthToken != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.AuthToken)
	}
	return &Client{cfg: cfg, http: client}
}

// Register PUTs this instance's registration payload to the Consul agent.
func (c *Client) Register(ctx context.Context) error {
	payload := registerPayload{
		Name:    c.cfg.AppName,
		ID:      c.cfg.AppID,
		Tags:    []string{"prometheus"},
		Address: c.cfg.ServiceAddress,
		Port:    c.cfg.ServicePort,
		Check: healthCheck{
			HTTP:     fmt.Sprintf("%s://%s:%d%s/health", c.cfg.ServiceScheme, c.cfg.ServiceAddress, c.cfg.ServicePort, c.cfg.ServerRootPath),
			Interval: "10s",
			Timeout:  "5s",
		},
		Meta: map[string]string{
			"metrics_port": fmt.Sprintf("%d", c.cfg.ServicePort),
			"metrics_path": "/metrics",
		},
	}

	resp, err := c.http.Do(ctx, internalhttp.Request{
		Method: http.MethodPut,
		Path:   "/register?replace-existing-checks=true",
		Body:   payload,
	})
	if err != nil {
		return fmt.Errorf("discovery: register %s: %w", c.cfg.AppID, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("discovery: register %s: unexpected status %d", c.cfg.AppID, resp.StatusCode)
	}

	c.mu.Lock()
	c.registered = true
	c.mu.Unlock()
	log.Printf("discovery: registered %s as %s", c.cfg.AppName, c.cfg.AppID)
	return nil
}

// Deregister removes this instance's registration with a PUT to the agent's
// deregister endpoint. Safe to call even if
// Register never succeeded or was never called.
func (c *Client) Deregister(ctx context.Context) error {
	c.mu.Lock()
	wasRegistered := c.registered
	c.registered = false
	c.mu.Unlock()

	if !wasRegistered {
		return nil
	}

	resp, err := c.http.Do(ctx, internalhttp.Request{
		Method: http.MethodPut,
		Path:   "/deregister/" + c.cfg.AppID,
	})
	if err != nil {
		return fmt.Errorf("discovery: deregister %s: %w", c.cfg.AppID, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("discovery: deregister %s: unexpected status %d", c.cfg.AppID, resp.StatusCode)
	}
	log.Printf("discovery: deregistered %s", c.cfg.AppID)
	return nil
}
