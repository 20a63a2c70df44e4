package suppress

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"beacon/internal/config"
	"beacon/pkg/models"
)

// Evaluator runs tenant-configurable CEL suppression rules against incoming
// alerts. Expressions see the alert fields by name; a rule evaluating true
// suppresses the alert before any other processing.
type Evaluator struct {
	env      *cel.Env
	compiled []compiledRule
}

type compiledRule struct {
	id      string
	name    string
	program cel.Program
}

func NewEvaluator(rules []config.SuppressionRule) (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("severity", cel.StringType),
		cel.Variable("title", cel.StringType),
		cel.Variable("message", cel.StringType),
		cel.Variable("tenant_id", cel.StringType),
		cel.Variable("correlation_id", cel.StringType),
		cel.Variable("metadata", cel.MapType(cel.StringType, cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	e := &Evaluator{env: env}
	for i, rule := range rules {
		program, err := e.compile(rule.Expression)
		if err != nil {
			return nil, fmt.Errorf("suppression rule %d (%s): %w", i, rule.ID, err)
		}
		e.compiled = append(e.compiled, compiledRule{
			id:      rule.ID,
			name:    rule.Name,
			program: program,
		})
	}

	return e, nil
}

func (e *Evaluator) compile(expression string) (cel.Program, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile CEL expression: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("suppression expression must return bool, got %v", ast.OutputType())
	}

	return e.env.Program(ast)
}

// Match returns the ID of the first rule matching the alert, or "" when no
// rule matches. Evaluation errors are returned to the caller, which applies
// the configured fallback.
func (e *Evaluator) Match(ctx context.Context, req models.AlertRequest) (string, error) {
	if len(e.compiled) == 0 {
		return "", nil
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	vars := map[string]interface{}{
		"severity":       string(req.Severity),
		"title":          req.Title,
		"message":        req.Message,
		"tenant_id":      req.TenantID,
		"correlation_id": req.CorrelationID,
		"metadata":       metadata,
	}

	for _, rule := range e.compiled {
		result, _, err := rule.program.ContextEval(ctx, vars)
		if err != nil {
			return "", fmt.Errorf("failed to evaluate suppression rule %s: %w", rule.id, err)
		}

		matched, ok := result.Value().(bool)
		if !ok {
			return "", fmt.Errorf("suppression rule %s returned non-bool value", rule.id)
		}
		if matched {
			return rule.id, nil
		}
	}

	return "", nil
}

// RuleCount reports how many rules are active.
func (e *Evaluator) RuleCount() int {
	return len(e.compiled)
}
