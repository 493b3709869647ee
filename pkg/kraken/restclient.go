package kraken

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

type RESTClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewRESTClient(baseURL string, timeout time.Duration) *RESTClient {
	if baseURL == "" {
		baseURL = DefaultRESTBaseURL
	}
	return &RESTClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *RESTClient) HTTPClient() *http.Client {
	return c.httpClient
}

// GetTicker fetches ticker info for the given REST pair names. The result
// is keyed by Kraken's canonical pair name, which may differ from the
// requested altname (e.g. "XBTUSD" comes back as "XXBTZUSD").
func (c *RESTClient) GetTicker(ctx context.Context, pairs ...string) (map[string]TickerInfo, error) {
	endpoint := c.baseURL + publicPrefix + "Ticker"
	if len(pairs) > 0 {
		endpoint += "?pair=" + url.QueryEscape(strings.Join(pairs, ","))
	}

	tickers := make(map[string]TickerInfo, len(pairs))
	if err := c.getPublic(ctx, endpoint, &tickers); err != nil {
		return nil, err
	}
	return tickers, nil
}

// GetServerTime returns Kraken's clock. It doubles as a cheap liveness probe.
func (c *RESTClient) GetServerTime(ctx context.Context) (time.Time, error) {
	var st ServerTime
	if err := c.getPublic(ctx, c.baseURL+publicPrefix+"Time", &st); err != nil {
		return time.Time{}, err
	}
	return time.Unix(st.UnixTime, 0).UTC(), nil
}

func (c *RESTClient) getPublic(ctx context.Context, endpoint string, target any) error {
	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrAPI, resp.StatusCode, body)
	}

	var rawResp KrakenResponse
	if err := json.NewDecoder(resp.Body).Decode(&rawResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(rawResp.Error) != 0 {
		return fmt.Errorf("%w: %s", ErrAPI, strings.Join(rawResp.Error, "; "))
	}

	if err := json.Unmarshal(rawResp.Result, target); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}
