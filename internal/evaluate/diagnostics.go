// Package evaluate implements the virtual-position evaluation pipeline: a
// deterministic, side-effect-free chain that turns price and market-state
// observations about a non-executed trade idea into a bounded action intent.
//
// Every stage is a pure function over immutable inputs. Nothing here performs
// I/O, reads the clock, or mutates its arguments; abnormal inputs surface as
// Diagnostic values in the result, never as errors or panics.
package evaluate

// DiagCode identifies a class of defensive condition observed during
// evaluation. A diagnostic marks an upstream invariant violation to be logged
// by the caller, not a failure of the pipeline itself.
type DiagCode string

const (
	// DiagPOIMissing: a POI referenced by the risk contract is absent from
	// the lookup.
	DiagPOIMissing DiagCode = "POI_MISSING"
	// DiagDirectionAmbiguous: stop-loss and first-target ranges overlap or
	// coincide, so direction fell back to long.
	DiagDirectionAmbiguous DiagCode = "DIRECTION_AMBIGUOUS"
	// DiagDegenerateRange: entry reference and target boundary coincide, so
	// raw progress fell back to zero.
	DiagDegenerateRange DiagCode = "DEGENERATE_RANGE"
	// DiagNoTargets: the risk contract carries no take-profit targets.
	DiagNoTargets DiagCode = "NO_TARGETS"
)

// Diagnostic is one defensive observation made while evaluating.
type Diagnostic struct {
	Code   DiagCode
	Detail string
}

func diag(code DiagCode, detail string) Diagnostic {
	return Diagnostic{Code: code, Detail: detail}
}
