// Package commute holds the value types and errors of the commute-time lookup.
package commute

import (
	"errors"
	"fmt"
)

// Coordinate is a latitude/longitude pair in the map provider's coordinate space.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String renders the coordinate the way the transit endpoint expects it.
func (c Coordinate) String() string {
	return fmt.Sprintf("%v,%v", c.Lat, c.Lng)
}

// Result is one apartment-to-work commute. FromCoord and ToCoord may be nil on entries
// cached before coordinates were recorded; the router backfills them.
type Result struct {
	DurationMinutes  int         `json:"duration"`
	DistanceMeters   float64     `json:"distance"`
	RouteDescription string      `json:"route"`
	FromCoord        *Coordinate `json:"fromCoord,omitempty"`
	ToCoord          *Coordinate `json:"toCoord,omitempty"`
}

// HasCoordinates reports whether both endpoints are resolved.
func (r Result) HasCoordinates() bool {
	return r.FromCoord != nil && r.ToCoord != nil
}

// ErrMissingAPIKey is the configuration error raised on first use without a provider key.
// It is global: a matching run aborts on it instead of skipping the candidate.
var ErrMissingAPIKey = errors.New("腾讯地图API密钥未配置，请设置TENCENT_MAP_KEY")

// GeocodeError reports an address the provider could not resolve.
type GeocodeError struct {
	Address string
	Message string
}

func (e *GeocodeError) Error() string {
	return fmt.Sprintf("地理编码失败: %s", e.Message)
}

// RouteError reports a provider failure or an empty route list.
type RouteError struct {
	Message string
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("路线规划失败: %s", e.Message)
}

// CalculationError wraps any failure of one from->to lookup.
type CalculationError struct {
	From string
	To   string
	Err  error
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("通勤时间计算失败: %v", e.Err)
}

func (e *CalculationError) Unwrap() error {
	return e.Err
}
