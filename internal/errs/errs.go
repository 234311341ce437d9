// Package errs defines the core error taxonomy shared across the analysis
// pipeline. Every error a component returns across a public API boundary is
// one of these, or wraps one of these, so hosts can type-switch with
// errors.As instead of parsing messages.
package errs

import "fmt"

// UnsupportedConstruct is returned by the CFG builder when it meets an AST
// node kind it has no lowering rule for. Non-fatal: the host surfaces it as
// an info diagnostic and continues with the next declaration.
type UnsupportedConstruct struct {
	Kind   string
	Offset int
}

func (e *UnsupportedConstruct) Error() string {
	return fmt.Sprintf("unsupported construct %q at offset %d", e.Kind, e.Offset)
}

// InvariantViolation is returned by the SSA builder when a post-condition
// check fails. Fatal to the current function only; the session skips to the
// next function.
type InvariantViolation struct {
	Function string
	Detail   string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("ssa invariant violation in %s: %s", e.Function, e.Detail)
}

// StratificationError is a programmer error in a Datalog rule set: a cycle
// passes through a negated edge. Fatal to the query.
type StratificationError struct {
	Predicate string
	Cycle     []string
}

func (e *StratificationError) Error() string {
	return fmt.Sprintf("stratification error: negation cycle through %s (%v)", e.Predicate, e.Cycle)
}

// UnsafeRuleError is a programmer error in a Datalog rule set: a head
// variable is absent from the positive body.
type UnsafeRuleError struct {
	Predicate string
	Variable  string
}

func (e *UnsafeRuleError) Error() string {
	return fmt.Sprintf("unsafe rule for %s: head variable %q not bound by positive body", e.Predicate, e.Variable)
}

// FixpointInconclusive signals that a worklist or Datalog fixpoint hit its
// maxIterations hard stop. Callers treat this as "unknown", never a crash.
type FixpointInconclusive struct {
	Stage      string
	Iterations int
}

func (e *FixpointInconclusive) Error() string {
	return fmt.Sprintf("%s did not converge within %d iterations", e.Stage, e.Iterations)
}

// SessionDisposedError is returned by any session method invoked after
// Shutdown.
type SessionDisposedError struct{}

func (e *SessionDisposedError) Error() string { return "analysis session has been shut down" }

// ConfigurationError wraps an invalid threshold value or malformed option.
// Fatal at session start.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Field, e.Reason)
}

// IoError records a failed source file read. Recorded as a file-level
// diagnostic; the rest of the project continues.
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }
