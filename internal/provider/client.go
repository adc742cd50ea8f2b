// Package provider talks to the ipinfo-style geolocation API
package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/evyataryagoni/ipenrich/internal/logger"
	"github.com/evyataryagoni/ipenrich/internal/models"
)

const (
	// DefaultBaseURL is the public ipinfo endpoint
	DefaultBaseURL = "https://ipinfo.io"

	// maxBodyBytes caps how much of a response body is decoded
	maxBodyBytes = 1 << 20

	// minUsefulKeys: bodies with this many keys or fewer only echo the
	// address back ({"ip": ..., "readme": ...})
	minUsefulKeys = 2
)

// Fetcher performs one classified lookup; the orchestrator depends on this
type Fetcher interface {
	Fetch(ctx context.Context, entity models.Identifier, token string) models.Outcome
}

// Client is an immutable provider client
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

// NewClient creates a provider client
// The http.Client is expected to be fully configured (TLS, proxy, timeout)
func NewClient(baseURL string, httpClient *http.Client, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log.WithComponent("ProviderClient"),
	}
}

// URI returns the lookup URI for an address
func (c *Client) URI(address, token string) string {
	return c.baseURL + "/" + url.PathEscape(address) + "/json?token=" + url.QueryEscape(token)
}

// Fetch issues GET <base>/<address>/json?token=<token> and classifies the response
//
// Classification order:
//  1. transport failure -> OutcomeTransportError
//  2. 429 -> OutcomeRateLimited
//  3. 200 -> OutcomeEmpty for bogon / placeholder / undecodable bodies, else OutcomeSuccess
//  4. anything else -> OutcomeUnexpectedStatus
func (c *Client) Fetch(ctx context.Context, entity models.Identifier, token string) models.Outcome {
	uri := c.URI(entity.Value, token)
	c.log.Debug().Str("uri", c.URI(entity.Value, "<redacted>")).Msg("Request URI")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return models.Outcome{Kind: models.OutcomeTransportError, Identifier: entity, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Outcome{Kind: models.OutcomeTransportError, Identifier: entity, Err: err}
	}
	defer resp.Body.Close()

	body, decodeErr := decodeBody(resp.Body)

	c.log.Trace().
		Str("entity", entity.Value).
		Int("status", resp.StatusCode).
		Interface("body", body).
		Msg("Lookup Result")

	outcome := models.Outcome{
		Identifier: entity,
		StatusCode: resp.StatusCode,
		Body:       body,
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		outcome.Kind = models.OutcomeRateLimited
	case http.StatusOK:
		if decodeErr != nil {
			c.log.Warn().Err(decodeErr).Str("entity", entity.Value).Msg("Undecodable 200 body treated as empty")
		}
		if isEmptyBody(body) {
			outcome.Kind = models.OutcomeEmpty
		} else {
			outcome.Kind = models.OutcomeSuccess
		}
	default:
		outcome.Kind = models.OutcomeUnexpectedStatus
	}

	return outcome
}

// decodeBody returns the JSON object in the body, or nil when the body is
// empty or not a JSON object
func decodeBody(r io.Reader) (map[string]any, error) {
	var body map[string]any
	err := json.NewDecoder(io.LimitReader(r, maxBodyBytes)).Decode(&body)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

// isEmptyBody reports bodies without usable data: missing, bogon, or
// only echoing the address back
func isEmptyBody(body map[string]any) bool {
	if body == nil {
		return true
	}
	if bogon, ok := body["bogon"].(bool); ok && bogon {
		return true
	}
	return len(body) <= minUsefulKeys
}
