package selector

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gh-nvat/gitops-argodiff/src/pkg/models"
	"github.com/open-policy-agent/opa/rego"
)

// PolicyQuery is evaluated once per application with the application as input.
// Applications for which it is true are excluded from the diff run.
const PolicyQuery = "data.argodiff.exclude"

var ErrPolicyCompile = errors.New("selector policy does not compile")

// PolicyFilter drops applications excluded by a Rego policy
type PolicyFilter struct {
	query rego.PreparedEvalQuery
}

// NewPolicyFilterFromFile loads and compiles the Rego module at path
func NewPolicyFilterFromFile(ctx context.Context, path string) (*PolicyFilter, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read selector policy: %w", err)
	}
	return NewPolicyFilter(ctx, path, string(src))
}

func NewPolicyFilter(ctx context.Context, name, module string) (*PolicyFilter, error) {
	pq, err := rego.New(
		rego.Query(PolicyQuery),
		rego.Module(name, module),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPolicyCompile, name, err)
	}
	return &PolicyFilter{query: pq}, nil
}

// Filter returns the applications the policy does not exclude
func (f *PolicyFilter) Filter(ctx context.Context, apps []models.Application) ([]models.Application, error) {
	kept := make([]models.Application, 0, len(apps))
	for _, app := range apps {
		excluded, err := f.excludes(ctx, app)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate selector policy for %s: %w", app.Name(), err)
		}
		if excluded {
			logger.WithField("app", app.Name()).Info("Application excluded by selector policy")
			continue
		}
		kept = append(kept, app)
	}
	return kept, nil
}

func (f *PolicyFilter) excludes(ctx context.Context, app models.Application) (bool, error) {
	rs, err := f.query.Eval(ctx, rego.EvalInput(app))
	if err != nil {
		return false, err
	}
	return rs.Allowed(), nil
}
