// Package matching ranks catalog apartments against a work address, a commute ceiling and a budget.
package matching

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/rent-home/service-matching/internal/domain/apartment"
	commuteDomain "github.com/rent-home/service-matching/internal/domain/commute"
	"github.com/rent-home/service-matching/internal/metrics"
)

// DefaultInterval is the minimum spacing between routed candidates.
const DefaultInterval = 400 * time.Millisecond

// Router computes the commute from an apartment address to the work address.
type Router interface {
	Route(ctx context.Context, from, to string) (commuteDomain.Result, error)
}

// Throttle paces provider traffic. *rate.Limiter satisfies it.
type Throttle interface {
	Wait(ctx context.Context) error
}

// Status tags the outcome of one candidate.
type Status string

const (
	StatusMatched        Status = "matched"
	StatusOverBudget     Status = "over_budget"
	StatusCommuteTooLong Status = "commute_too_long"
	StatusLookupFailed   Status = "lookup_failed"
)

// Request is one user query.
type Request struct {
	WorkAddress string
	CommuteTime int
	Budget      int
}

// Candidate is an apartment that passed both filters.
type Candidate struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	MinPrice        int               `json:"minPrice"`
	MaxPrice        int               `json:"maxPrice"`
	Address         string            `json:"address"`
	District        string            `json:"district"`
	Remarks         string            `json:"remarks"`
	Images          []apartment.Image `json:"images"`
	Videos          []apartment.Video `json:"videos"`
	CommuteTime     int               `json:"commuteTime"`
	CommuteDistance float64           `json:"commuteDistance"`
	CommuteRoute    string            `json:"commuteRoute"`
	Recommendation  string            `json:"recommendation"`
	Lat             *float64          `json:"lat"`
	Lng             *float64          `json:"lng"`
}

// Evaluation records what happened to one apartment during a run.
type Evaluation struct {
	ApartmentID string
	Status      Status
	Reason      error
	Candidate   *Candidate
}

// Outcome is the result of a matching run.
type Outcome struct {
	Results      []Candidate
	WorkLocation *commuteDomain.Coordinate
	Evaluations  []Evaluation
}

// Counts tallies evaluations by status.
func (o *Outcome) Counts() map[Status]int {
	counts := make(map[Status]int, 4)
	for _, ev := range o.Evaluations {
		counts[ev.Status]++
	}
	return counts
}

// Matcher runs the commute-matching pipeline.
type Matcher struct {
	router   Router
	throttle Throttle
	logger   *zap.Logger
}

func NewMatcher(router Router, throttle Throttle, logger *zap.Logger) *Matcher {
	return &Matcher{router: router, throttle: throttle, logger: logger}
}

// Match walks apartments in order, one routed candidate at a time. Per-candidate failures are
// recorded and skipped; a missing provider key aborts the run.
func (m *Matcher) Match(ctx context.Context, req Request, apartments []*apartment.Apartment) (*Outcome, error) {
	start := time.Now()
	defer func() {
		metrics.MatchDuration.Observe(time.Since(start).Seconds())
	}()

	outcome := &Outcome{
		Results:     []Candidate{},
		Evaluations: make([]Evaluation, 0, len(apartments)),
	}

	for _, apt := range apartments {
		if !apt.WithinBudget(req.Budget) {
			outcome.record(Evaluation{ApartmentID: apt.ID(), Status: StatusOverBudget})
			continue
		}

		if err := m.throttle.Wait(ctx); err != nil {
			return nil, err
		}

		result, err := m.router.Route(ctx, apt.Address(), req.WorkAddress)
		if err != nil {
			if errors.Is(err, commuteDomain.ErrMissingAPIKey) {
				return nil, err
			}
			m.logger.Warn("commute lookup failed, skipping apartment",
				zap.String("apartment_id", apt.ID()),
				zap.String("address", apt.Address()),
				zap.Error(err),
			)
			outcome.record(Evaluation{ApartmentID: apt.ID(), Status: StatusLookupFailed, Reason: err})
			continue
		}

		if result.DurationMinutes > req.CommuteTime {
			outcome.record(Evaluation{ApartmentID: apt.ID(), Status: StatusCommuteTooLong})
			continue
		}

		candidate := newCandidate(apt, result, req.Budget)
		outcome.Results = append(outcome.Results, candidate)
		if outcome.WorkLocation == nil && result.ToCoord != nil {
			loc := *result.ToCoord
			outcome.WorkLocation = &loc
		}
		outcome.record(Evaluation{ApartmentID: apt.ID(), Status: StatusMatched, Candidate: &candidate})
	}

	SortCandidates(outcome.Results)

	m.logger.Info("matching run completed",
		zap.String("work_address", req.WorkAddress),
		zap.Int("catalog_size", len(apartments)),
		zap.Int("matched", len(outcome.Results)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return outcome, nil
}

// SortCandidates orders by commute time, then by starting price. Equal keys keep catalog order.
func SortCandidates(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].CommuteTime != cs[j].CommuteTime {
			return cs[i].CommuteTime < cs[j].CommuteTime
		}
		return cs[i].MinPrice < cs[j].MinPrice
	})
}

func (o *Outcome) record(ev Evaluation) {
	o.Evaluations = append(o.Evaluations, ev)
	metrics.MatchCandidates.WithLabelValues(string(ev.Status)).Inc()
}

func newCandidate(apt *apartment.Apartment, result commuteDomain.Result, budget int) Candidate {
	c := Candidate{
		ID:              apt.ID(),
		Name:            apt.Name(),
		MinPrice:        apt.MinPrice(),
		MaxPrice:        apt.MaxPrice(),
		Address:         apt.Address(),
		District:        apt.District(),
		Remarks:         apt.Remarks(),
		Images:          apt.Images(),
		Videos:          apt.Videos(),
		CommuteTime:     result.DurationMinutes,
		CommuteDistance: result.DistanceMeters,
		CommuteRoute:    result.RouteDescription,
		Recommendation:  Recommend(apt, result, budget),
	}
	if result.FromCoord != nil {
		lat, lng := result.FromCoord.Lat, result.FromCoord.Lng
		c.Lat = &lat
		c.Lng = &lng
	}
	return c
}
