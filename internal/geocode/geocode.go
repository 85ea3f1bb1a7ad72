package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var ErrNotFound = errors.New("location not found")

// LatLng is a WGS84 coordinate pair. It is the delivery-location type used
// across orders and profiles.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Client talks to a MapTiler-compatible geocoding API. It is only used to
// resolve the free-text delivery address; it plays no part in order tracking.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type feature struct {
	PlaceName string    `json:"place_name"`
	Center    []float64 `json:"center"` // [lng, lat]
}

type geocodeResponse struct {
	Features []feature `json:"features"`
}

// Reverse resolves a coordinate pair into a displayable address.
func (c *Client) Reverse(ctx context.Context, loc LatLng) (string, error) {
	endpoint := fmt.Sprintf("%s/geocoding/%f,%f.json?key=%s", c.baseURL, loc.Lng, loc.Lat, url.QueryEscape(c.apiKey))
	resp, err := c.query(ctx, endpoint)
	if err != nil {
		return "", err
	}
	if len(resp.Features) == 0 {
		return "", ErrNotFound
	}
	return resp.Features[0].PlaceName, nil
}

// Forward resolves a free-text query into coordinates and a canonical address.
func (c *Client) Forward(ctx context.Context, query string) (LatLng, string, error) {
	endpoint := fmt.Sprintf("%s/geocoding/%s.json?key=%s", c.baseURL, url.PathEscape(query), url.QueryEscape(c.apiKey))
	resp, err := c.query(ctx, endpoint)
	if err != nil {
		return LatLng{}, "", err
	}
	if len(resp.Features) == 0 || len(resp.Features[0].Center) < 2 {
		return LatLng{}, "", ErrNotFound
	}
	f := resp.Features[0]
	return LatLng{Lat: f.Center[1], Lng: f.Center[0]}, f.PlaceName, nil
}

func (c *Client) query(ctx context.Context, endpoint string) (*geocodeResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding request failed with status %d", res.StatusCode)
	}

	var decoded geocodeResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	return &decoded, nil
}
