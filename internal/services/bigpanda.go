package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/imyashkale/bigpanda-notifier/internal/config"
	"github.com/imyashkale/bigpanda-notifier/internal/logger"
	"github.com/imyashkale/bigpanda-notifier/internal/models"
)

var (
	ErrDelivery         = errors.New("bigpanda delivery failed")
	ErrNotifierDisabled = errors.New("bigpanda notifier disabled")
)

// maxErrorBody bounds how much of a rejected response is kept
const maxErrorBody = 64 * 1024

// DeliveryError is returned when BigPanda answers with an unexpected status
type DeliveryError struct {
	StatusCode int
	Reason     string
	Body       string
}

func (e *DeliveryError) Error() string {
	return e.Reason + " - " + e.Body
}

func (e *DeliveryError) Unwrap() error {
	return ErrDelivery
}

// Destination is where and how a payload is posted
type Destination struct {
	URL           string
	Token         string // sent as a bearer token when set
	SuccessStatus int
}

// ChangeDestination targets the changes webhook
func ChangeDestination(settings config.NotifierSettings) Destination {
	return Destination{
		URL:           settings.WebhookURL,
		SuccessStatus: http.StatusOK,
	}
}

// DeploymentDestination targets the deployments API for the given state
func DeploymentDestination(settings config.NotifierSettings, state models.DeploymentState) Destination {
	return Destination{
		URL:           settings.BaseURL + "/data/events/deployments/" + state.Endpoint(),
		Token:         settings.Token,
		SuccessStatus: http.StatusCreated,
	}
}

// BigPandaClient posts payloads to BigPanda, optionally through a proxy
type BigPandaClient struct {
	proxy config.ProxySettings
}

// NewBigPandaClient creates a client. A zero ProxySettings means direct
// connections.
func NewBigPandaClient(proxy config.ProxySettings) *BigPandaClient {
	return &BigPandaClient{proxy: proxy}
}

// Deliver serializes payload and posts it once. There is no retry.
func (c *BigPandaClient) Deliver(ctx context.Context, dest Destination, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dest.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if dest.Token != "" {
		req.Header.Set("Authorization", "Bearer "+dest.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"url":   dest.URL,
			"error": err.Error(),
		}).Warn("BigPanda request failed")
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != dest.SuccessStatus {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logger.WithFields(map[string]interface{}{
			"url":         dest.URL,
			"status_code": resp.StatusCode,
		}).Warn("BigPanda rejected notification")
		return &DeliveryError{
			StatusCode: resp.StatusCode,
			Reason:     reasonPhrase(resp),
			Body:       string(raw),
		}
	}

	logger.WithFields(map[string]interface{}{
		"url":         dest.URL,
		"status_code": resp.StatusCode,
	}).Debug("BigPanda accepted notification")
	return nil
}

// httpClient builds a fresh client for a single delivery
func (c *BigPandaClient) httpClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	if proxyURL := c.proxyURL(); proxyURL != nil {
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	return &http.Client{Transport: transport}
}

// proxyURL returns the proxy to dial, with credentials for the proxy hop
func (c *BigPandaClient) proxyURL() *url.URL {
	if !c.proxy.Enabled() {
		return nil
	}
	u := &url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(strings.TrimSpace(c.proxy.Host), strconv.Itoa(c.proxy.Port)),
	}
	if c.proxy.HasCredentials() {
		u.User = url.UserPassword(c.proxy.User, c.proxy.Password)
	}
	return u
}

func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}
