package compliance

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// obligationInputs is the variable set every compiled CEL obligation
// expression can reference. The AI Act verdict is not a simple threshold
// check over one finding count; it is a short sequence of boolean
// expressions over several scan metrics evaluated together. NIST AI RMF is
// assessed directly against the overall score and does not use CEL.
type obligationInputs struct {
	CriticalCount        int64
	PromptInjectionCount int64
	PIICount             int64
	OverallScore         float64
}

func (o obligationInputs) asActivation() map[string]interface{} {
	return map[string]interface{}{
		"critical_count":         o.CriticalCount,
		"prompt_injection_count": o.PromptInjectionCount,
		"pii_count":              o.PIICount,
		"overall_score":          o.OverallScore,
	}
}

// obligation pairs a compiled CEL program with the status and score it
// reports when the expression evaluates true.
type obligation struct {
	expr       string
	program    cel.Program
	whenStatus Status
	score      float64
	summary    string
}

func newCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("critical_count", cel.IntType),
		cel.Variable("prompt_injection_count", cel.IntType),
		cel.Variable("pii_count", cel.IntType),
		cel.Variable("overall_score", cel.DoubleType),
	)
}

// compileObligations compiles a framework's obligation expressions once.
// A compile failure is a programmer error in the obligation catalog below
// and is returned rather than panicking, since unlike the static pattern
// registries this runs lazily at first Assess call rather than at process
// startup.
func compileObligations(env *cel.Env, specs []obligationSpec) ([]obligation, error) {
	out := make([]obligation, 0, len(specs))
	for _, spec := range specs {
		ast, issues := env.Compile(spec.expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("compliance: obligation %q failed to compile: %w", spec.expr, issues.Err())
		}
		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("compliance: obligation %q failed to plan: %w", spec.expr, err)
		}
		out = append(out, obligation{expr: spec.expr, program: program, whenStatus: spec.whenStatus, score: spec.score, summary: spec.summary})
	}
	return out, nil
}

type obligationSpec struct {
	expr       string
	whenStatus Status
	score      float64
	summary    string
}

// evaluateObligations runs each compiled obligation in order and returns the
// status, score, and summary of the first one whose expression evaluates
// true, or a clean pass if none match.
func evaluateObligations(obligations []obligation, inputs obligationInputs) (Status, float64, string) {
	for _, o := range obligations {
		out, _, err := o.program.Eval(inputs.asActivation())
		if err != nil {
			continue
		}
		if matched, ok := out.Value().(bool); ok && matched {
			return o.whenStatus, o.score, o.summary
		}
	}
	return StatusPass, 100, "No high-risk AI obligations triggered by this scan."
}
