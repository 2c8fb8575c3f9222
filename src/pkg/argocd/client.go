package argocd

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gh-nvat/gitops-argodiff/src/pkg/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

var logger = log.WithField("package", "argocd")

var (
	// ErrUnauthorized indicates the Argo CD server rejected the auth token
	ErrUnauthorized = errors.New("argocd: unauthorized")
)

const applicationsPath = "/api/v1/applications"

// ApplicationLister fetches the application inventory
type ApplicationLister interface {
	ListApplications(ctx context.Context) ([]models.Application, error)
}

// ClientOptions configures the connection to the Argo CD API server
type ClientOptions struct {
	Server    string // host[:port] or full URL
	AuthToken string
	Insecure  bool // skip TLS verification
	PlainText bool // use http instead of https
	Timeout   time.Duration
}

// Client talks to the Argo CD REST API
type Client struct {
	baseURL string
	http    *http.Client
}

var _ ApplicationLister = (*Client)(nil)

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Server == "" {
		return nil, fmt.Errorf("argocd server is required")
	}
	if opts.AuthToken == "" {
		return nil, fmt.Errorf("argocd auth token is required")
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	base := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			// #nosec G402 - opt-in via --argocd-insecure for self-signed servers
			TLSClientConfig: &tls.Config{InsecureSkipVerify: opts.Insecure},
		},
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.AuthToken})

	return &Client{
		baseURL: ServerURL(opts.Server, opts.PlainText),
		http:    oauth2.NewClient(ctx, ts),
	}, nil
}

// ServerURL turns a --server value into a base URL
func ServerURL(server string, plainText bool) string {
	server = strings.TrimRight(server, "/")
	if strings.HasPrefix(server, "http://") || strings.HasPrefix(server, "https://") {
		return server
	}
	if plainText {
		return "http://" + server
	}
	return "https://" + server
}

// ListApplications retrieves every application visible to the token
func (c *Client) ListApplications(ctx context.Context) ([]models.Application, error) {
	url := c.baseURL + applicationsPath
	logger.WithField("url", url).Info("ListApplications: starting...")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w (status %d)", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("argocd API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var list models.ApplicationList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode applications: %w", err)
	}

	logger.WithField("count", len(list.Items)).Info("ListApplications: done.")
	return list.Items, nil
}
