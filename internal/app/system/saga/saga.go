// Package saga runs multi-step writes that span the identity provider and
// MongoDB, where a real multi-document transaction is not available. Each
// step registers a compensation; when a later step fails, the compensations
// run in reverse order so no half-created state is left behind (for example,
// an identity account without a matching user row).
package saga

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Step is one unit of work in a saga. Compensate undoes Run and may be nil
// for steps that need no cleanup (typically the last one).
type Step struct {
	Name       string
	Run        func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga executes steps in order, compensating on failure.
type Saga struct {
	steps []Step
	log   *zap.Logger
}

// New creates an empty saga. The logger is used only to report compensation
// failures, which leave orphaned state that needs manual cleanup.
func New(log *zap.Logger) *Saga {
	return &Saga{log: log}
}

// AddStep appends a step.
func (s *Saga) AddStep(st Step) *Saga {
	s.steps = append(s.steps, st)
	return s
}

// Execute runs every step in order. On the first failure it runs the
// compensations of all previously completed steps in reverse order, then
// returns the original step error wrapped with the step name. Compensation
// errors are logged but never mask the original failure.
func (s *Saga) Execute(ctx context.Context) error {
	done := make([]Step, 0, len(s.steps))

	for _, st := range s.steps {
		if err := st.Run(ctx); err != nil {
			s.compensate(ctx, done)
			return fmt.Errorf("%s: %w", st.Name, err)
		}
		done = append(done, st)
	}
	return nil
}

func (s *Saga) compensate(ctx context.Context, done []Step) {
	for i := len(done) - 1; i >= 0; i-- {
		st := done[i]
		if st.Compensate == nil {
			continue
		}
		if err := st.Compensate(ctx); err != nil && s.log != nil {
			s.log.Error("saga compensation failed; manual cleanup may be needed",
				zap.String("step", st.Name),
				zap.Error(err))
		}
	}
}
