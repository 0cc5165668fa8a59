package query

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/contentfinder/internal/domain/criteria"
	"github.com/kailas-cloud/contentfinder/internal/domain/search/result"
	"github.com/kailas-cloud/contentfinder/internal/logger"
)

// Stage is a state of the relaxation machine. The stage a query ends in is
// reported with its response.
type Stage string

// Relaxation stages, in the order they are tried.
const (
	StageStrict         Stage = "strict"
	StageRoleRelaxed    Stage = "role_relaxed"
	StageContextRelaxed Stage = "context_relaxed"
	StageEmpty          Stage = "empty"
)

// relaxation is the mutable state of one run of the machine.
type relaxation struct {
	crit  criteria.Criteria
	items []result.Record
	stage Stage
}

// stateFn runs one state and returns the next; nil ends the run.
type stateFn func(ctx context.Context, r *relaxation) (stateFn, error)

// relax runs the machine from Strict until a state yields results or Empty is reached.
func (s *Service) relax(ctx context.Context, crit criteria.Criteria) ([]result.Record, Stage, error) {
	r := &relaxation{crit: crit}
	var state stateFn = s.strict
	for state != nil {
		next, err := state(ctx, r)
		if err != nil {
			return nil, "", err
		}
		state = next
	}
	return r.items, r.stage, nil
}

// strict runs with the criteria as built.
func (s *Service) strict(ctx context.Context, r *relaxation) (stateFn, error) {
	return s.attempt(ctx, r, StageStrict)
}

// roleRelaxed drops the explicit role filter only.
func (s *Service) roleRelaxed(ctx context.Context, r *relaxation) (stateFn, error) {
	r.crit = r.crit.WithoutRole()
	return s.attempt(ctx, r, StageRoleRelaxed)
}

// contextRelaxed drops locale, country, language and page filters and the context.
func (s *Service) contextRelaxed(ctx context.Context, r *relaxation) (stateFn, error) {
	r.crit = r.crit.WithoutContext()
	return s.attempt(ctx, r, StageContextRelaxed)
}

// empty is terminal: no results is a valid outcome.
func (s *Service) empty(_ context.Context, r *relaxation) (stateFn, error) {
	r.items, r.stage = []result.Record{}, StageEmpty
	return nil, nil
}

// attempt retrieves and reconciles under stage, then picks the next state.
func (s *Service) attempt(ctx context.Context, r *relaxation, stage Stage) (stateFn, error) {
	got, err := s.retrieve(ctx, r.crit)
	if err != nil {
		return nil, err
	}
	items := s.reconcile(r.crit, got)
	if len(items) > 0 {
		r.items, r.stage = items, stage
		return nil, nil
	}

	next := s.after(stage, r.crit)
	logger.FromContext(ctx).Debug("No results, relaxing criteria",
		zap.String("from", string(stage)),
	)
	return next, nil
}

// after picks the state following an empty attempt in stage.
func (s *Service) after(stage Stage, crit criteria.Criteria) stateFn {
	switch {
	case stage == StageStrict && crit.HasRoleFilter():
		return s.roleRelaxed
	case stage != StageContextRelaxed && crit.HasContextFilter():
		return s.contextRelaxed
	default:
		return s.empty
	}
}
