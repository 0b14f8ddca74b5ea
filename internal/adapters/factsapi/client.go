package factsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/lcalzada-xor/factmap/internal/core/ports"
	"github.com/lcalzada-xor/factmap/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// DefaultBaseURL is the public useless facts API.
	DefaultBaseURL = "https://uselessfacts.jsph.pl"
	randomPath     = "/api/v2/facts/random"
	language       = "en"

	// Responses are tiny; anything bigger than this is not a fact.
	maxBodyBytes = 64 << 10
)

var (
	errMissingField = errors.New("missing required field")
	errBadStatus    = errors.New("unexpected status")
)

// Client fetches random facts over HTTP.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient creates a client for the API rooted at baseURL.
// A zero timeout leaves the HTTP client's default in place.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid facts base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid facts base url %q: scheme must be http or https", baseURL)
	}
	u = u.JoinPath(randomPath)
	q := u.Query()
	q.Set("language", language)
	u.RawQuery = q.Encode()

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		endpoint: u.String(),
	}, nil
}

// Endpoint returns the full URL requested for each fact.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// RandomFact performs a single GET. Every failure collapses to ok=false.
func (c *Client) RandomFact(ctx context.Context) (domain.Fact, bool) {
	ctx, span := otel.Tracer("factmap/factsapi").Start(ctx, "RandomFact")
	defer span.End()

	fact, err := c.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		telemetry.FactFetches.WithLabelValues(telemetry.OutcomeFailure).Inc()
		log.Printf("facts: fetch dropped: %v", err)
		return domain.Fact{}, false
	}

	span.SetAttributes(attribute.String("fact.id", fact.ID))
	telemetry.FactFetches.WithLabelValues(telemetry.OutcomeSuccess).Inc()
	return fact, true
}

func (c *Client) fetch(ctx context.Context) (domain.Fact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return domain.Fact{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Fact{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return domain.Fact{}, fmt.Errorf("%w: %d", errBadStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.Fact{}, fmt.Errorf("read body: %w", err)
	}
	return DecodeFact(body)
}

// DecodeFact parses one API response body.
// id and text must be present as strings; source falls back to domain.UnknownSource
// when it is absent, null or not a string.
func DecodeFact(body []byte) (domain.Fact, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.Fact{}, fmt.Errorf("decode fact: %w", err)
	}

	id, err := requiredString(raw, "id")
	if err != nil {
		return domain.Fact{}, err
	}
	text, err := requiredString(raw, "text")
	if err != nil {
		return domain.Fact{}, err
	}

	source := domain.UnknownSource
	if v, ok := raw["source"]; ok {
		var s string
		if json.Unmarshal(v, &s) == nil && string(v) != "null" {
			source = s
		}
	}

	return domain.Fact{ID: id, Text: text, Source: source}, nil
}

func requiredString(raw map[string]json.RawMessage, key string) (string, error) {
	v, ok := raw[key]
	if !ok || string(v) == "null" {
		return "", fmt.Errorf("%w: %s", errMissingField, key)
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", fmt.Errorf("field %s: %w", key, err)
	}
	return s, nil
}

var _ ports.FactSource = (*Client)(nil)
