package search

import (
	"context"
	"fmt"
	"time"

	"github.com/dailyquota/dailyquota/internal/quota"
)

// Result is either a list of items with the caller's usage, or a rejection.
type Result struct {
	Items     []string
	Usage     quota.Snapshot
	Rejection *quota.Rejection
}

// Service performs metered searches. Every accepted search consumes one unit
// of the caller's daily and monthly quota.
type Service struct {
	enforcer *quota.Enforcer
	reader   *quota.Reader
	now      func() time.Time
}

func NewService(enforcer *quota.Enforcer, reader *quota.Reader) *Service {
	return &Service{
		enforcer: enforcer,
		reader:   reader,
		now:      time.Now,
	}
}

// Limits returns the configured quota policy.
func (s *Service) Limits() quota.Limits {
	return s.enforcer.Limits()
}

func (s *Service) Search(ctx context.Context, userID, term string) (Result, error) {
	outcome, err := s.enforcer.TryRecord(ctx, userID, term, s.now())
	if err != nil {
		return Result{}, fmt.Errorf("recording search: %w", err)
	}
	if !outcome.Accepted() {
		return Result{Usage: outcome.Rejection.Usage, Rejection: outcome.Rejection}, nil
	}
	return Result{
		Items: mockItems(term),
		Usage: outcome.Usage,
	}, nil
}

// Usage returns the caller's usage without consuming quota.
func (s *Service) Usage(ctx context.Context, userID string) (quota.Snapshot, error) {
	return s.reader.ReadUsage(ctx, userID, s.now())
}

func mockItems(term string) []string {
	return []string{fmt.Sprintf("Anahtar kelime '%s'", term)}
}
