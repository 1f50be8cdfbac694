package application

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/rent-home/service-matching/internal/commute"
)

// Suggester is the autocomplete side of the map provider.
type Suggester interface {
	Suggest(ctx context.Context, keyword, region string) ([]commute.Suggestion, error)
}

// SuggestionService serves address autocomplete.
type SuggestionService struct {
	provider      Suggester
	defaultRegion string
	logger        *zap.Logger
}

// NewSuggestionService creates a new SuggestionService.
func NewSuggestionService(provider Suggester, defaultRegion string, logger *zap.Logger) *SuggestionService {
	return &SuggestionService{provider: provider, defaultRegion: defaultRegion, logger: logger}
}

// Suggest returns completions for keyword. A blank keyword yields an empty list without a provider call.
func (s *SuggestionService) Suggest(ctx context.Context, keyword, region string) ([]commute.Suggestion, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []commute.Suggestion{}, nil
	}
	region = strings.TrimSpace(region)
	if region == "" {
		region = s.defaultRegion
	}

	results, err := s.provider.Suggest(ctx, keyword, region)
	if err != nil {
		s.logger.Warn("suggestion lookup failed", zap.String("keyword", keyword), zap.Error(err))
		return nil, err
	}
	if results == nil {
		results = []commute.Suggestion{}
	}
	return results, nil
}
