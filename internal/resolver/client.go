package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the postcodes.io single-postcode lookup endpoint
const DefaultBaseURL = "https://api.postcodes.io/postcodes"

// Client resolves postcodes against a postcodes.io compatible API.
// One Client owns one connection pool; Close releases it.
type Client struct {
	baseURL   string
	transport *http.Transport
	http      *http.Client
}

// NewClient creates a client for baseURL. A zero timeout leaves requests
// unbounded.
func NewClient(baseURL string, timeout time.Duration) *Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConnsPerHost: 1,
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: tr,
		http: &http.Client{
			Transport: tr,
			Timeout:   timeout,
		},
	}
}

// BaseURL returns the endpoint the client was created with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Resolve performs one GET for the postcode.
//
// Network failures, non-2xx statuses and bodies that are not a JSON object
// come back as *TransportError. A result without the fields needed to pick
// a key comes back as *MissingFieldError.
func (c *Client) Resolve(ctx context.Context, postcode string) (*Record, error) {
	endpoint := c.baseURL + "/" + url.PathEscape(postcode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Postcode: postcode, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Postcode: postcode, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{
			Postcode: postcode,
			Err:      &HTTPStatusError{URL: endpoint, StatusCode: resp.StatusCode},
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Postcode: postcode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	return decodeLookup(postcode, body)
}

// Close drops idle connections held by the client
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

// decodeLookup reads {"result": {"admin_county": ..., "admin_district": ...}}.
// admin_district is only consulted when admin_county is null.
func decodeLookup(postcode string, body []byte) (*Record, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &TransportError{Postcode: postcode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	var result map[string]json.RawMessage
	raw, ok := envelope["result"]
	if !ok || json.Unmarshal(raw, &result) != nil || result == nil {
		return nil, &MissingFieldError{Postcode: postcode, Field: "result"}
	}

	county, ok := stringField(result, "admin_county")
	if !ok {
		return nil, &MissingFieldError{Postcode: postcode, Field: "admin_county"}
	}
	if county != nil {
		return &Record{AdminCounty: county}, nil
	}

	district, ok := stringField(result, "admin_district")
	if !ok {
		return nil, &MissingFieldError{Postcode: postcode, Field: "admin_district"}
	}
	return &Record{AdminDistrict: district}, nil
}

// stringField returns the named field as a nullable string. ok is false when
// the field is absent or not a string/null.
func stringField(fields map[string]json.RawMessage, name string) (*string, bool) {
	raw, ok := fields[name]
	if !ok {
		return nil, false
	}
	var v *string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return v, true
}
