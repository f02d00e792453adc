package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"
)

// ErrInvalidIP means the presented value is not an IP address at all;
// no outbound request is made.
var ErrInvalidIP = errors.New("invalid ip address")

// Client calls an ipinfo-style geolocation API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type lookupResponse struct {
	IP      string `json:"ip"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
	Loc     string `json:"loc"`
	Org     string `json:"org"`
	Error   *struct {
		Title string `json:"title"`
	} `json:"error"`
}

func NewClient(baseURL, token string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse geo api url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("geo api url must be http or https")
	}

	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Lookup resolves an IP address to a geolocation record. The returned
// record has no ID or timestamp; the repository fills those on insert.
func (c *Client) Lookup(ctx context.Context, ip string) (Record, error) {
	ip = strings.TrimSpace(ip)
	if _, err := netip.ParseAddr(ip); err != nil {
		return Record{}, ErrInvalidIP
	}

	endpoint := c.baseURL + "/" + url.PathEscape(ip)
	if c.token != "" {
		endpoint += "?token=" + url.QueryEscape(c.token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Record{}, fmt.Errorf("build geo lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Record{}, fmt.Errorf("geo lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Record{}, fmt.Errorf("read geo lookup response: %w", err)
	}

	var parsed lookupResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Record{}, fmt.Errorf("decode geo lookup response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parsed.Error != nil && parsed.Error.Title != "" {
			return Record{}, fmt.Errorf("geo lookup failed: %s", parsed.Error.Title)
		}
		return Record{}, fmt.Errorf("geo lookup failed with status %d", resp.StatusCode)
	}

	return Record{
		IP:      ip,
		City:    parsed.City,
		Region:  parsed.Region,
		Country: parsed.Country,
		Loc:     parsed.Loc,
		Org:     parsed.Org,
	}, nil
}
