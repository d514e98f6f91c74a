package insight

import (
	"context"
	"fmt"

	"github.com/d5/tengo/v2"
)

// RuleResult is what a script run produced.
type RuleResult struct {
	Message  string
	Severity string
}

// CompileRule checks a script without running it.
func CompileRule(script string) error {
	if script == "" {
		return fmt.Errorf("script content is required")
	}
	s := tengo.NewScript([]byte(script))
	if err := s.Add("stats", map[string]interface{}{}); err != nil {
		return err
	}
	if err := s.Add("message", ""); err != nil {
		return err
	}
	if err := s.Add("severity", "info"); err != nil {
		return err
	}
	if _, err := s.Compile(); err != nil {
		return fmt.Errorf("failed to compile script: %w", err)
	}
	return nil
}

// EvaluateRule compiles and runs a rule script against a stats snapshot.
// The snapshot is exposed to the script as "stats"; the script reports by
// assigning "message" and optionally "severity".
func EvaluateRule(ctx context.Context, script string, snapshot map[string]interface{}) (*RuleResult, error) {
	if script == "" {
		return nil, fmt.Errorf("script content is required")
	}

	s := tengo.NewScript([]byte(script))

	if err := s.Add("stats", snapshot); err != nil {
		return nil, fmt.Errorf("failed to bind stats: %w", err)
	}
	if err := s.Add("message", ""); err != nil {
		return nil, fmt.Errorf("failed to bind message: %w", err)
	}
	if err := s.Add("severity", "info"); err != nil {
		return nil, fmt.Errorf("failed to bind severity: %w", err)
	}

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile script: %w", err)
	}

	if err := compiled.RunContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to run script: %w", err)
	}

	result := &RuleResult{
		Message:  compiled.Get("message").String(),
		Severity: compiled.Get("severity").String(),
	}
	if result.Severity == "" {
		result.Severity = "info"
	}
	return result, nil
}
