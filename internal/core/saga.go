package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// SagaStep is one action of a multi-system operation. Compensate undoes
// Action and may be nil when there is nothing to undo.
type SagaStep struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga runs steps in order. When a step fails, the compensations of the
// steps that already completed run in reverse order and the original error
// is returned.
type Saga struct {
	name  string
	steps []SagaStep
}

func NewSaga(name string, steps ...SagaStep) *Saga {
	return &Saga{name: name, steps: steps}
}

func (s *Saga) Run(ctx context.Context) error {
	for i, step := range s.steps {
		if err := step.Action(ctx); err != nil {
			s.unwind(ctx, i)
			return fmt.Errorf("%s: %w", step.Name, err)
		}
	}
	return nil
}

// unwind compensates steps [0, failed) in reverse order. Compensation
// failures are logged and do not stop the unwind.
func (s *Saga) unwind(ctx context.Context, failed int) {
	ctx = context.WithoutCancel(ctx)
	logger := zerolog.Ctx(ctx)
	for i := failed - 1; i >= 0; i-- {
		step := s.steps[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			logger.Error().Err(err).
				Str("saga", s.name).
				Str("step", step.Name).
				Msg("compensation failed")
			continue
		}
		logger.Warn().Str("saga", s.name).Str("step", step.Name).Msg("compensated")
	}
}
