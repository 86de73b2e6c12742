package cohort

import "context"

// Evaluator turns one kind of Definition into an EvaluatedCohort.
type Evaluator interface {
	Evaluate(ctx context.Context, def Definition, ec *EvaluationContext) (*EvaluatedCohort, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, def Definition, ec *EvaluationContext) (*EvaluatedCohort, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, def Definition, ec *EvaluationContext) (*EvaluatedCohort, error) {
	return f(ctx, def, ec)
}

// Registry dispatches definitions to evaluators by definition type tag.
type Registry struct {
	evaluators map[string]Evaluator
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{evaluators: make(map[string]Evaluator)}
}

// Register binds an evaluator to a definition type, replacing any previous
// binding for that type.
func (r *Registry) Register(defType string, ev Evaluator) {
	r.evaluators[defType] = ev
}

// Evaluate dispatches to the evaluator registered for the definition's
// type. An unregistered type is a ConfigurationError.
func (r *Registry) Evaluate(ctx context.Context, def Definition, ec *EvaluationContext) (*EvaluatedCohort, error) {
	ev, ok := r.evaluators[def.Type()]
	if !ok {
		return nil, NewConfigurationError("no evaluator registered for definition type %q", def.Type())
	}
	return ev.Evaluate(ctx, def, ec)
}
