package mapper

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/statement-workbench/statement-workbench/internal/backend"
)

// Submitter is the backend surface the mapper publishes confirmed data to.
type Submitter interface {
	SubmitMappedData(ctx context.Context, rows any) error
	SubmitFinancialVariables(ctx context.Context, vars []backend.FinancialVariable) error
}

// Service publishes confirmed mapping output to the backend.
type Service struct {
	logger  *slog.Logger
	backend Submitter
}

// NewService constructs the mapper service.
func NewService(logger *slog.Logger, submitter Submitter) *Service {
	return &Service{logger: logger, backend: submitter}
}

// DeriveFinancialVariables aggregates normalized rows by level 1 grouping into
// the variable batch the backend expects alongside mapped data.
func DeriveFinancialVariables(rows []MappedRow, period PeriodSpec) []backend.FinancialVariable {
	currentKey := period.CurrentKey()
	previousKey := period.PreviousKey()
	sums := make(map[string]*backend.FinancialVariable)
	for _, row := range rows {
		key := row.Level1
		if key == "" {
			continue
		}
		v, ok := sums[key]
		if !ok {
			v = &backend.FinancialVariable{Key: key}
			sums[key] = v
		}
		v.Current += row.Amounts[currentKey]
		v.Previous += row.Amounts[previousKey]
	}
	vars := make([]backend.FinancialVariable, 0, len(sums))
	for _, v := range sums {
		vars = append(vars, *v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Key < vars[j].Key })
	return vars
}

// Submit transmits the normalized batch and its derived financial variables.
// Both requests run concurrently; the first failure is returned. Callers keep
// their local mapped state regardless of the outcome.
func (s *Service) Submit(ctx context.Context, rows []MappedRow, period PeriodSpec) error {
	vars := DeriveFinancialVariables(rows, period)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.backend.SubmitMappedData(gctx, rows)
	})
	g.Go(func() error {
		return s.backend.SubmitFinancialVariables(gctx, vars)
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("submit mapped data", slog.Any("error", err))
		return err
	}
	return nil
}
