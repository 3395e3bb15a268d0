package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"
)

const (
	// DefaultIPLookupURL is an ip-api.com compatible endpoint. The client IP is appended.
	DefaultIPLookupURL = "http://ip-api.com/json/"
	userAgent          = "dinner-vibe/1.0"
)

// ipLookupResponse is the JSON response of an ip-api.com lookup.
type ipLookupResponse struct {
	Status  string  `json:"status"` // "success" or "fail"
	Message string  `json:"message,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// IPLocator resolves approximate positions from client IP addresses.
type IPLocator struct {
	httpClient *http.Client
	baseURL    string
}

// NewIPLocator creates an IP lookup client. An empty baseURL selects DefaultIPLookupURL.
func NewIPLocator(baseURL string) *IPLocator {
	if baseURL == "" {
		baseURL = DefaultIPLookupURL
	}
	return &IPLocator{
		// No client timeout: the Locator deadline bounds each lookup.
		httpClient: &http.Client{},
		baseURL:    baseURL,
	}
}

// Sensor returns a sensor that looks up the given client IP.
// Private, loopback and unparsable addresses fall back to the server's own public IP.
func (l *IPLocator) Sensor(clientIP string) Sensor {
	return ipSensor{locator: l, ip: publicIP(clientIP)}
}

type ipSensor struct {
	locator *IPLocator
	ip      string
}

func (s ipSensor) Position(ctx context.Context, _ Options) (Coordinate, error) {
	return s.locator.lookup(ctx, s.ip)
}

// lookup performs a single lookup request.
func (l *IPLocator) lookup(ctx context.Context, ip string) (Coordinate, error) {
	reqURL := l.baseURL + url.PathEscape(ip) + "?" + url.Values{"fields": {"status,message,lat,lon"}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Coordinate{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return Coordinate{}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Coordinate{}, fmt.Errorf("%w: lookup refused with status %d", ErrPermissionDenied, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return Coordinate{}, fmt.Errorf("%w: lookup status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Coordinate{}, fmt.Errorf("reading response body: %w", err)
	}

	var parsed ipLookupResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Coordinate{}, fmt.Errorf("parsing lookup response: %w", err)
	}
	if parsed.Status != "success" {
		return Coordinate{}, fmt.Errorf("%w: lookup failed: %s", ErrUnavailable, parsed.Message)
	}

	return Coordinate{Latitude: parsed.Lat, Longitude: parsed.Lon}, nil
}

// publicIP returns ip if it is a routable address, otherwise "".
func publicIP(ip string) string {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ""
	}
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsMulticast() {
		return ""
	}
	return addr.String()
}
