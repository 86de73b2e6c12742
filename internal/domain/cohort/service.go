package cohort

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/ehr/reporting/internal/domain/clinical"
	"github.com/ehr/reporting/internal/platform/cache"
)

// Service evaluates cohort definitions, consulting a member cache keyed by
// definition content and applying the context's base cohort restriction.
type Service struct {
	registry *Registry
	cache    cache.Cache
	logger   zerolog.Logger
}

// NewService wires the built-in evaluators against the given clinical
// store. The cache may be nil, which disables member caching.
func NewService(store clinical.Store, c cache.Cache, logger zerolog.Logger) *Service {
	reg := NewRegistry()
	reg.Register(TypeCodedObs, NewCodedObsEvaluator(store))
	reg.Register(TypeEncounterWithCodedObs, NewEncounterWithCodedObsEvaluator(store))
	return &Service{registry: reg, cache: c, logger: logger}
}

// Registry exposes the dispatch table so callers can register additional
// definition types.
func (s *Service) Registry() *Registry { return s.registry }

// Evaluate runs the definition and returns its cohort. The raw evaluation
// result is cached per definition content; the base cohort restriction is
// applied after the cache, so one cached result serves every base cohort.
func (s *Service) Evaluate(ctx context.Context, def Definition, ec *EvaluationContext) (*EvaluatedCohort, error) {
	if ec == nil {
		ec = &EvaluationContext{}
	}

	members, err := s.rawMembers(ctx, def, ec)
	if err != nil {
		return nil, err
	}

	if ec.BaseCohort != nil {
		base := make(map[int]struct{}, len(ec.BaseCohort))
		for _, id := range ec.BaseCohort {
			base[id] = struct{}{}
		}
		kept := make([]int, 0, len(members))
		for _, id := range members {
			if _, ok := base[id]; ok {
				kept = append(kept, id)
			}
		}
		members = kept
	}
	return NewEvaluatedCohort(members, def, ec), nil
}

func (s *Service) rawMembers(ctx context.Context, def Definition, ec *EvaluationContext) ([]int, error) {
	key, keyed := s.cacheKey(def)
	if keyed && s.cache != nil {
		members, ok, err := s.cache.GetMembers(ctx, key)
		if err != nil {
			s.logger.Warn().Err(err).Str("definition", def.Type()).Msg("cohort cache read failed")
		} else if ok {
			return members, nil
		}
	}

	cohort, err := s.registry.Evaluate(ctx, def, ec)
	if err != nil {
		return nil, err
	}
	members := cohort.Members()

	if keyed && s.cache != nil {
		if err := s.cache.PutMembers(ctx, key, members); err != nil {
			s.logger.Warn().Err(err).Str("definition", def.Type()).Msg("cohort cache write failed")
		}
	}
	return members, nil
}

// cacheKey hashes the definition type and content. A definition that fails
// to marshal is evaluated uncached.
func (s *Service) cacheKey(def Definition) (string, bool) {
	payload, err := json.Marshal(def)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(append([]byte(def.Type()+":"), payload...))
	return "cohort:" + hex.EncodeToString(sum[:]), true
}
