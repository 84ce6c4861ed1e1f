package transpiler

// Result is the outcome of one Transpile call. Code is nil when any
// front-end stage reported errors or generation failed.
type Result struct {
	Code       *string
	Valid      bool
	Errors     []string
	Warnings   []string
	TypeErrors []string
	RunID      string
}

func (r *Result) fail(msgs ...string) *Result {
	r.Valid = false
	r.Code = nil
	r.Errors = append(r.Errors, msgs...)
	return r
}
