package application

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rent-home/service-matching/internal/contract"
	apartmentDomain "github.com/rent-home/service-matching/internal/domain/apartment"
	commuteDomain "github.com/rent-home/service-matching/internal/domain/commute"
	"github.com/rent-home/service-matching/internal/matching"
	"github.com/rent-home/service-matching/internal/platform/domain"
)

const (
	missingMatchParamsMessage = "缺少必要参数：workAddress（上班地址）、commuteTime（通勤时长，分钟）、budget（预算，元）"
	emptyCatalogMessage       = "公寓数据未加载，请先运行导入脚本导入数据"
)

// MatchRequest is the body of POST /api/match.
type MatchRequest struct {
	WorkAddress string `json:"workAddress"`
	CommuteTime int    `json:"commuteTime"`
	Budget      int    `json:"budget"`
}

// MatchResult is the ranked response of one matching run.
type MatchResult struct {
	Data         []matching.Candidate      `json:"data"`
	Total        int                       `json:"total"`
	WorkLocation *commuteDomain.Coordinate `json:"workLocation"`
}

// Matcher runs the commute-matching pipeline over a catalog snapshot.
type Matcher interface {
	Match(ctx context.Context, req matching.Request, apartments []*apartmentDomain.Apartment) (*matching.Outcome, error)
}

// MatchService validates match requests and runs them against the current catalog.
type MatchService struct {
	repo     apartmentDomain.ApartmentRepository
	matcher  Matcher
	producer EventPublisher
	logger   *zap.Logger
}

// NewMatchService creates a new MatchService.
func NewMatchService(repo apartmentDomain.ApartmentRepository, matcher Matcher, producer EventPublisher, logger *zap.Logger) *MatchService {
	return &MatchService{
		repo:     repo,
		matcher:  matcher,
		producer: producer,
		logger:   logger,
	}
}

// MissingParamsError is returned for an incomplete request body.
func MissingParamsError() error {
	return domain.NewValidationError(missingMatchParamsMessage)
}

// Match ranks the catalog for req. Once started, the run ignores cancellation of ctx.
func (s *MatchService) Match(ctx context.Context, userID string, req MatchRequest) (*MatchResult, error) {
	workAddress := strings.TrimSpace(req.WorkAddress)
	if workAddress == "" || req.CommuteTime <= 0 || req.Budget <= 0 {
		return nil, MissingParamsError()
	}

	catalog, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to load catalog", zap.Error(err))
		return nil, domain.NewUnavailableError(emptyCatalogMessage)
	}
	if len(catalog) == 0 {
		return nil, domain.NewUnavailableError(emptyCatalogMessage)
	}

	s.logger.Info("matching started",
		zap.String("work_address", workAddress),
		zap.Int("commute_time", req.CommuteTime),
		zap.Int("budget", req.Budget),
		zap.Int("catalog_size", len(catalog)),
	)

	start := time.Now()
	runCtx := context.WithoutCancel(ctx)
	outcome, err := s.matcher.Match(runCtx, matching.Request{
		WorkAddress: workAddress,
		CommuteTime: req.CommuteTime,
		Budget:      req.Budget,
	}, catalog)
	if err != nil {
		s.logger.Error("matching aborted", zap.String("work_address", workAddress), zap.Error(err))
		return nil, err
	}

	counts := outcome.Counts()
	s.logger.Info("matching finished",
		zap.Int("matched", counts[matching.StatusMatched]),
		zap.Int("over_budget", counts[matching.StatusOverBudget]),
		zap.Int("commute_too_long", counts[matching.StatusCommuteTooLong]),
		zap.Int("lookup_failed", counts[matching.StatusLookupFailed]),
	)

	evt := contract.MatchCompletedEvent{
		WorkAddress:    workAddress,
		CommuteTime:    req.CommuteTime,
		Budget:         req.Budget,
		ResultCount:    len(outcome.Results),
		CatalogSize:    len(catalog),
		LookupFailures: counts[matching.StatusLookupFailed],
		DurationMillis: time.Since(start).Milliseconds(),
		UserID:         userID,
		OccurredAt:     time.Now().UTC(),
	}
	if outcome.WorkLocation != nil {
		lat, lng := outcome.WorkLocation.Lat, outcome.WorkLocation.Lng
		evt.WorkLat, evt.WorkLng = &lat, &lng
	}
	publishEvent(runCtx, s.producer, s.logger, contract.TopicMatchEvents, contract.MatchCompleted, evt)

	return &MatchResult{
		Data:         outcome.Results,
		Total:        len(outcome.Results),
		WorkLocation: outcome.WorkLocation,
	}, nil
}
