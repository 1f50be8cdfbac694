package commute

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	commuteDomain "github.com/rent-home/service-matching/internal/domain/commute"
	"github.com/rent-home/service-matching/internal/metrics"
)

const (
	routeKeySeparator = "|||"
	stepSeparator     = " → "
	defaultRouteLabel = "公共交通"
)

// cityZone is the timezone of the served city.
var cityZone = time.FixedZone("CST", 8*3600)

// RouteKey is the cache key for a directional from->to lookup.
func RouteKey(from, to string) string {
	return from + routeKeySeparator + to
}

// NoonDeparture returns 12:00 of now's calendar day in UTC+8.
func NoonDeparture(now time.Time) time.Time {
	local := now.In(cityZone)
	return time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, cityZone)
}

// Router computes transit commutes between two addresses.
type Router struct {
	provider Provider
	geocoder *Geocoder
	cache    *Cache[string, commuteDomain.Result]
	now      func() time.Time
	logger   *zap.Logger
}

// RouterOption customizes a Router.
type RouterOption func(*Router)

// WithClock overrides the clock used for the departure anchor.
func WithClock(now func() time.Time) RouterOption {
	return func(r *Router) {
		r.now = now
	}
}

func NewRouter(provider Provider, geocoder *Geocoder, cache *Cache[string, commuteDomain.Result], logger *zap.Logger, opts ...RouterOption) *Router {
	if cache == nil {
		cache = NewCache[string, commuteDomain.Result]()
	}
	r := &Router{
		provider: provider,
		geocoder: geocoder,
		cache:    cache,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route returns the commute from -> to. A missing API key is returned as
// commuteDomain.ErrMissingAPIKey; every other failure is a *commuteDomain.CalculationError.
func (r *Router) Route(ctx context.Context, from, to string) (commuteDomain.Result, error) {
	if !r.provider.Configured() {
		return commuteDomain.Result{}, commuteDomain.ErrMissingAPIKey
	}

	departure := NoonDeparture(r.now())
	key := RouteKey(from, to)

	if cached, ok := r.cache.Get(key); ok {
		if cached.HasCoordinates() {
			metrics.CacheLookups.WithLabelValues("route", "hit").Inc()
			r.logger.Debug("route cache hit", zap.String("from", from), zap.String("to", to))
			return cached, nil
		}

		metrics.CacheLookups.WithLabelValues("route", "stale").Inc()
		fromCoord, toCoord, err := r.resolvePair(ctx, from, to)
		if err != nil {
			return commuteDomain.Result{}, r.wrap(from, to, err)
		}
		cached.FromCoord = &fromCoord
		cached.ToCoord = &toCoord
		r.cache.Set(key, cached)
		r.logger.Debug("backfilled route coordinates", zap.String("from", from), zap.String("to", to))
		return cached, nil
	}
	metrics.CacheLookups.WithLabelValues("route", "miss").Inc()

	fromCoord, toCoord, err := r.resolvePair(ctx, from, to)
	if err != nil {
		return commuteDomain.Result{}, r.wrap(from, to, err)
	}

	routes, err := r.provider.Transit(ctx, fromCoord, toCoord, departure.Unix())
	if err != nil {
		return commuteDomain.Result{}, r.wrap(from, to, err)
	}
	if len(routes) == 0 {
		return commuteDomain.Result{}, r.wrap(from, to, &commuteDomain.RouteError{Message: "未找到公交路线"})
	}

	best := routes[0]
	result := commuteDomain.Result{
		DurationMinutes:  int(math.Round(best.Duration)),
		DistanceMeters:   best.Distance,
		RouteDescription: DescribeRoute(best.Steps),
		FromCoord:        &fromCoord,
		ToCoord:          &toCoord,
	}

	r.cache.Set(key, result)
	metrics.CacheEntries.WithLabelValues("route").Set(float64(r.cache.Size()))
	r.logger.Debug("route computed",
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("duration_minutes", result.DurationMinutes),
		zap.Float64("distance_meters", result.DistanceMeters),
		zap.Time("departure", departure),
	)
	return result, nil
}

// CacheSize returns the number of memoized routes.
func (r *Router) CacheSize() int {
	return r.cache.Size()
}

func (r *Router) resolvePair(ctx context.Context, from, to string) (commuteDomain.Coordinate, commuteDomain.Coordinate, error) {
	fromCoord, err := r.geocoder.Resolve(ctx, from)
	if err != nil {
		return commuteDomain.Coordinate{}, commuteDomain.Coordinate{}, err
	}
	toCoord, err := r.geocoder.Resolve(ctx, to)
	if err != nil {
		return commuteDomain.Coordinate{}, commuteDomain.Coordinate{}, err
	}
	return fromCoord, toCoord, nil
}

func (r *Router) wrap(from, to string, err error) error {
	if errors.Is(err, commuteDomain.ErrMissingAPIKey) {
		return err
	}
	return &commuteDomain.CalculationError{From: from, To: to, Err: err}
}

// DescribeRoute renders transit legs as "Line 1（5站） → 步行200米".
func DescribeRoute(steps []TransitStep) string {
	parts := make([]string, 0, len(steps))
	for _, step := range steps {
		switch {
		case step.Vehicle != nil && step.Vehicle.Title != "":
			if step.Vehicle.Stations > 0 {
				parts = append(parts, fmt.Sprintf("%s（%d站）", step.Vehicle.Title, step.Vehicle.Stations))
			} else {
				parts = append(parts, step.Vehicle.Title)
			}
		case step.Instruction != "":
			parts = append(parts, step.Instruction)
		}
	}
	if len(parts) == 0 {
		return defaultRouteLabel
	}
	return strings.Join(parts, stepSeparator)
}
