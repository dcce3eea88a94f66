package ranking

import "fmt"

// Trace accumulates one human-readable line per pipeline stage, each
// stating the candidate count after that stage.
type Trace struct {
	steps []string
}

func (t *Trace) Addf(format string, args ...any) {
	t.steps = append(t.steps, fmt.Sprintf(format, args...))
}

func (t *Trace) Steps() []string {
	return t.steps
}
