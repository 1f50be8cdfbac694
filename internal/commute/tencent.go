package commute

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	commuteDomain "github.com/rent-home/service-matching/internal/domain/commute"
	"github.com/rent-home/service-matching/internal/metrics"
)

// DefaultBaseURL is the Tencent Maps WebService root.
const DefaultBaseURL = "https://apis.map.qq.com/ws"

// TencentConfig configures TencentClient.
type TencentConfig struct {
	Key     string
	BaseURL string
	Timeout time.Duration
}

// TencentClient calls the Tencent Maps WebService API. It never retries.
type TencentClient struct {
	key        string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTencentClient creates a TencentClient. An empty key is accepted and reported by Configured.
func NewTencentClient(cfg TencentConfig, logger *zap.Logger) *TencentClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TencentClient{
		key:        cfg.Key,
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Configured reports whether an API key is set.
func (c *TencentClient) Configured() bool {
	return c.key != ""
}

type tencentLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type geocodeResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Result  *struct {
		Location *tencentLocation `json:"location"`
	} `json:"result"`
}

type transitResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Result  *struct {
		Routes []TransitRoute `json:"routes"`
	} `json:"result"`
}

type suggestionResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    []struct {
		ID       string          `json:"id"`
		Title    string          `json:"title"`
		Address  string          `json:"address"`
		Province string          `json:"province"`
		City     string          `json:"city"`
		District string          `json:"district"`
		Location tencentLocation `json:"location"`
	} `json:"data"`
}

// Geocode resolves address to a coordinate.
func (c *TencentClient) Geocode(ctx context.Context, address string) (commuteDomain.Coordinate, error) {
	if !c.Configured() {
		return commuteDomain.Coordinate{}, commuteDomain.ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("key", c.key)
	params.Set("address", address)
	params.Set("output", "json")

	var resp geocodeResponse
	if err := c.get(ctx, "geocoder", "/geocoder/v1/", params, &resp); err != nil {
		return commuteDomain.Coordinate{}, err
	}
	if resp.Status != 0 {
		return commuteDomain.Coordinate{}, &commuteDomain.GeocodeError{Address: address, Message: messageOr(resp.Message)}
	}
	if resp.Result == nil || resp.Result.Location == nil {
		return commuteDomain.Coordinate{}, &commuteDomain.GeocodeError{Address: address, Message: "地址解析结果为空"}
	}
	return commuteDomain.Coordinate{Lat: resp.Result.Location.Lat, Lng: resp.Result.Location.Lng}, nil
}

// Transit requests public-transit itineraries with the provider's default policy.
func (c *TencentClient) Transit(ctx context.Context, from, to commuteDomain.Coordinate, departureUnix int64) ([]TransitRoute, error) {
	if !c.Configured() {
		return nil, commuteDomain.ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("key", c.key)
	params.Set("from", from.String())
	params.Set("to", to.String())
	params.Set("output", "json")
	params.Set("departure_time", strconv.FormatInt(departureUnix, 10))

	var resp transitResponse
	if err := c.get(ctx, "transit", "/direction/v1/transit", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != 0 {
		return nil, &commuteDomain.RouteError{Message: messageOr(resp.Message)}
	}
	if resp.Result == nil {
		return nil, nil
	}
	return resp.Result.Routes, nil
}

// Suggest returns up to ten address completions restricted to region.
func (c *TencentClient) Suggest(ctx context.Context, keyword, region string) ([]Suggestion, error) {
	if !c.Configured() {
		return nil, commuteDomain.ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("key", c.key)
	params.Set("keyword", keyword)
	params.Set("region", region)
	params.Set("region_fix", "1")
	params.Set("page_size", "10")

	var resp suggestionResponse
	if err := c.get(ctx, "suggestion", "/place/v1/suggestion", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != 0 {
		return nil, fmt.Errorf("输入提示请求失败: %s", messageOr(resp.Message))
	}

	out := make([]Suggestion, 0, len(resp.Data))
	for _, d := range resp.Data {
		out = append(out, Suggestion{
			ID:       d.ID,
			Title:    d.Title,
			Address:  d.Address,
			Province: d.Province,
			City:     d.City,
			District: d.District,
			Location: commuteDomain.Coordinate{Lat: d.Location.Lat, Lng: d.Location.Lng},
		})
	}
	return out, nil
}

func (c *TencentClient) get(ctx context.Context, endpoint, path string, params url.Values, out interface{}) error {
	start := time.Now()
	defer func() {
		metrics.ProviderLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(endpoint, "transport_error").Inc()
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequests.WithLabelValues(endpoint, "http_error").Inc()
		return fmt.Errorf("%s request returned HTTP %d", endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.ProviderRequests.WithLabelValues(endpoint, "decode_error").Inc()
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	metrics.ProviderRequests.WithLabelValues(endpoint, "ok").Inc()
	c.logger.Debug("map provider call",
		zap.String("endpoint", endpoint),
		zap.Duration("latency", time.Since(start)),
	)
	return nil
}

func messageOr(msg string) string {
	if msg == "" {
		return "未知错误"
	}
	return msg
}
