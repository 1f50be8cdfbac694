package commute

import (
	"context"

	"go.uber.org/zap"

	commuteDomain "github.com/rent-home/service-matching/internal/domain/commute"
	"github.com/rent-home/service-matching/internal/metrics"
)

// Geocoder resolves addresses to coordinates, one provider call per distinct address.
type Geocoder struct {
	provider Provider
	cache    *Cache[string, commuteDomain.Coordinate]
	logger   *zap.Logger
}

func NewGeocoder(provider Provider, cache *Cache[string, commuteDomain.Coordinate], logger *zap.Logger) *Geocoder {
	if cache == nil {
		cache = NewCache[string, commuteDomain.Coordinate]()
	}
	return &Geocoder{provider: provider, cache: cache, logger: logger}
}

// Resolve returns the coordinate of address. Failures are not cached.
func (g *Geocoder) Resolve(ctx context.Context, address string) (commuteDomain.Coordinate, error) {
	if coord, ok := g.cache.Get(address); ok {
		metrics.CacheLookups.WithLabelValues("geocode", "hit").Inc()
		g.logger.Debug("geocode cache hit", zap.String("address", address))
		return coord, nil
	}
	metrics.CacheLookups.WithLabelValues("geocode", "miss").Inc()

	coord, err := g.provider.Geocode(ctx, address)
	if err != nil {
		return commuteDomain.Coordinate{}, err
	}

	g.cache.Set(address, coord)
	metrics.CacheEntries.WithLabelValues("geocode").Set(float64(g.cache.Size()))
	g.logger.Debug("geocoded address",
		zap.String("address", address),
		zap.Float64("lat", coord.Lat),
		zap.Float64("lng", coord.Lng),
	)
	return coord, nil
}

// CacheSize returns the number of memoized addresses.
func (g *Geocoder) CacheSize() int {
	return g.cache.Size()
}
