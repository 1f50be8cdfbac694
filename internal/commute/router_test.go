package commute

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	commuteDomain "github.com/rent-home/service-matching/internal/domain/commute"
)

type mockProvider struct {
	mock.Mock
	configured bool
}

func (m *mockProvider) Configured() bool {
	return m.configured
}

func (m *mockProvider) Geocode(ctx context.Context, address string) (commuteDomain.Coordinate, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(commuteDomain.Coordinate), args.Error(1)
}

func (m *mockProvider) Transit(ctx context.Context, from, to commuteDomain.Coordinate, departureUnix int64) ([]TransitRoute, error) {
	args := m.Called(ctx, from, to, departureUnix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]TransitRoute), args.Error(1)
}

func (m *mockProvider) Suggest(ctx context.Context, keyword, region string) ([]Suggestion, error) {
	args := m.Called(ctx, keyword, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Suggestion), args.Error(1)
}

var (
	coordA = commuteDomain.Coordinate{Lat: 39.9, Lng: 116.3}
	coordB = commuteDomain.Coordinate{Lat: 39.95, Lng: 116.45}
)

// 2024-03-01 02:30 UTC is 10:30 in UTC+8.
var fixedNow = time.Date(2024, 3, 1, 2, 30, 0, 0, time.UTC)

func newTestRouter(p *mockProvider) (*Router, *Cache[string, commuteDomain.Result]) {
	logger := zap.NewNop()
	routes := NewCache[string, commuteDomain.Result]()
	geocoder := NewGeocoder(p, NewCache[string, commuteDomain.Coordinate](), logger)
	return NewRouter(p, geocoder, routes, logger, WithClock(func() time.Time { return fixedNow })), routes
}

func TestNoonDeparture(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "morning in UTC+8",
			now:  time.Date(2024, 3, 1, 2, 30, 0, 0, time.UTC),
			want: time.Date(2024, 3, 1, 4, 0, 0, 0, time.UTC),
		},
		{
			name: "UTC evening is already the next day in UTC+8",
			now:  time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 2, 4, 0, 0, 0, time.UTC),
		},
		{
			name: "late night in UTC+8 keeps the same day",
			now:  time.Date(2024, 3, 1, 15, 59, 0, 0, time.UTC),
			want: time.Date(2024, 3, 1, 4, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NoonDeparture(tt.now)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got.UTC(), tt.want)
		})
	}
}

func TestRouter_Route_CachesPair(t *testing.T) {
	p := &mockProvider{configured: true}
	p.On("Geocode", mock.Anything, "A").Return(coordA, nil).Once()
	p.On("Geocode", mock.Anything, "B").Return(coordB, nil).Once()
	p.On("Transit", mock.Anything, coordA, coordB, NoonDeparture(fixedNow).Unix()).Return([]TransitRoute{
		{
			Duration: 24.6,
			Distance: 8300,
			Steps: []TransitStep{
				{Instruction: "步行300米"},
				{Vehicle: &Vehicle{Title: "地铁1号线", Stations: 5}},
			},
		},
		{Duration: 50, Distance: 9000},
	}, nil).Once()

	router, cache := newTestRouter(p)

	first, err := router.Route(context.Background(), "A", "B")
	require.NoError(t, err)
	second, err := router.Route(context.Background(), "A", "B")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 25, first.DurationMinutes)
	assert.Equal(t, 8300.0, first.DistanceMeters)
	assert.Equal(t, "步行300米 → 地铁1号线（5站）", first.RouteDescription)
	require.NotNil(t, first.FromCoord)
	require.NotNil(t, first.ToCoord)
	assert.Equal(t, coordA, *first.FromCoord)
	assert.Equal(t, coordB, *first.ToCoord)
	assert.Equal(t, 1, cache.Size())

	p.AssertNumberOfCalls(t, "Transit", 1)
	p.AssertNumberOfCalls(t, "Geocode", 2)
}

func TestRouter_Route_IsDirectional(t *testing.T) {
	p := &mockProvider{configured: true}
	p.On("Geocode", mock.Anything, "A").Return(coordA, nil)
	p.On("Geocode", mock.Anything, "B").Return(coordB, nil)
	p.On("Transit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]TransitRoute{{Duration: 30, Distance: 1000}}, nil)

	router, cache := newTestRouter(p)

	_, err := router.Route(context.Background(), "A", "B")
	require.NoError(t, err)
	_, err = router.Route(context.Background(), "B", "A")
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Size())
	p.AssertNumberOfCalls(t, "Transit", 2)
	// coordinates are shared between both directions
	p.AssertNumberOfCalls(t, "Geocode", 2)
}

func TestRouter_Route_BackfillsStaleEntry(t *testing.T) {
	p := &mockProvider{configured: true}
	p.On("Geocode", mock.Anything, "A").Return(coordA, nil).Once()
	p.On("Geocode", mock.Anything, "B").Return(coordB, nil).Once()

	router, cache := newTestRouter(p)
	cache.Set(RouteKey("A", "B"), commuteDomain.Result{DurationMinutes: 40, DistanceMeters: 12000, RouteDescription: "公交"})

	got, err := router.Route(context.Background(), "A", "B")
	require.NoError(t, err)

	assert.Equal(t, 40, got.DurationMinutes)
	assert.Equal(t, "公交", got.RouteDescription)
	require.True(t, got.HasCoordinates())
	assert.Equal(t, coordA, *got.FromCoord)

	stored, ok := cache.Get(RouteKey("A", "B"))
	require.True(t, ok)
	assert.True(t, stored.HasCoordinates())
	p.AssertNotCalled(t, "Transit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_Route_MissingKeyEvenOnCacheHit(t *testing.T) {
	p := &mockProvider{configured: false}
	router, cache := newTestRouter(p)
	cache.Set(RouteKey("A", "B"), commuteDomain.Result{DurationMinutes: 10, FromCoord: &coordA, ToCoord: &coordB})

	_, err := router.Route(context.Background(), "A", "B")
	assert.ErrorIs(t, err, commuteDomain.ErrMissingAPIKey)

	var calcErr *commuteDomain.CalculationError
	assert.False(t, errors.As(err, &calcErr))
	p.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestRouter_Route_WrapsGeocodeError(t *testing.T) {
	p := &mockProvider{configured: true}
	p.On("Geocode", mock.Anything, "nowhere").
		Return(commuteDomain.Coordinate{}, &commuteDomain.GeocodeError{Address: "nowhere", Message: "查询无结果"})

	router, cache := newTestRouter(p)

	_, err := router.Route(context.Background(), "nowhere", "B")
	require.Error(t, err)

	var calcErr *commuteDomain.CalculationError
	require.True(t, errors.As(err, &calcErr))
	assert.Equal(t, "nowhere", calcErr.From)
	assert.Equal(t, "B", calcErr.To)

	var geoErr *commuteDomain.GeocodeError
	require.True(t, errors.As(err, &geoErr))
	assert.Contains(t, err.Error(), "查询无结果")
	assert.Equal(t, 0, cache.Size())
}

func TestRouter_Route_WrapsRouteErrors(t *testing.T) {
	tests := []struct {
		name    string
		routes  []TransitRoute
		err     error
		message string
	}{
		{
			name:    "provider status",
			err:     &commuteDomain.RouteError{Message: "起终点距离过近"},
			message: "起终点距离过近",
		},
		{
			name:    "no routes",
			routes:  []TransitRoute{},
			message: "未找到公交路线",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mockProvider{configured: true}
			p.On("Geocode", mock.Anything, "A").Return(coordA, nil)
			p.On("Geocode", mock.Anything, "B").Return(coordB, nil)
			p.On("Transit", mock.Anything, coordA, coordB, mock.Anything).Return(tt.routes, tt.err)

			router, cache := newTestRouter(p)

			_, err := router.Route(context.Background(), "A", "B")
			var routeErr *commuteDomain.RouteError
			require.True(t, errors.As(err, &routeErr))
			assert.Equal(t, tt.message, routeErr.Message)
			assert.Equal(t, 0, cache.Size())
		})
	}
}

func TestDescribeRoute(t *testing.T) {
	tests := []struct {
		name  string
		steps []TransitStep
		want  string
	}{
		{name: "no steps", want: "公共交通"},
		{
			name: "vehicle without stations",
			steps: []TransitStep{
				{Vehicle: &Vehicle{Title: "机场快轨"}},
			},
			want: "机场快轨",
		},
		{
			name: "mixed",
			steps: []TransitStep{
				{Instruction: "步行200米"},
				{Vehicle: &Vehicle{Title: "公交52路", Stations: 3}, Instruction: "ignored"},
				{Instruction: ""},
				{Vehicle: &Vehicle{Title: "地铁10号线", Stations: 7}},
			},
			want: "步行200米 → 公交52路（3站） → 地铁10号线（7站）",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DescribeRoute(tt.steps))
		})
	}
}
