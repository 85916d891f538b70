// Package report records the outcome of each step of an install or uninstall
// run. Runs are best-effort, so a report can hold failed steps next to
// completed ones.
package report

import (
	"errors"
	"fmt"
)

// Status is the outcome of a single step.
type Status int

const (
	Done Status = iota
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Done:
		return "done"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Step describes one unit of work, e.g. downloading a single artifact.
type Step struct {
	Name   string
	Status Status
	Detail string
	Err    error
}

func (s Step) String() string {
	if s.Err != nil {
		return fmt.Sprintf("%s: %v", s.Name, s.Err)
	}
	if s.Detail != "" {
		return fmt.Sprintf("%s: %s", s.Name, s.Detail)
	}
	return s.Name
}

// Observer is notified as steps complete.
type Observer interface {
	StepFinished(Step)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Step)

func (f ObserverFunc) StepFinished(s Step) { f(s) }

// Report is the ordered list of steps of one run.
type Report struct {
	Steps []Step

	observer Observer
}

// New returns an empty report that forwards every recorded step to o.
// o may be nil.
func New(o Observer) *Report {
	return &Report{observer: o}
}

func (r *Report) add(s Step) {
	r.Steps = append(r.Steps, s)
	if r.observer != nil {
		r.observer.StepFinished(s)
	}
}

// Done records a completed step.
func (r *Report) Done(name, detail string) {
	r.add(Step{Name: name, Status: Done, Detail: detail})
}

// Skip records a step that needed no work.
func (r *Report) Skip(name, detail string) {
	r.add(Step{Name: name, Status: Skipped, Detail: detail})
}

// Fail records a failed step.
func (r *Report) Fail(name string, err error) {
	r.add(Step{Name: name, Status: Failed, Err: err})
}

// Failed returns the failed steps in order.
func (r *Report) Failed() []Step {
	var out []Step
	for _, s := range r.Steps {
		if s.Status == Failed {
			out = append(out, s)
		}
	}
	return out
}

// Find returns the first step with the given name.
func (r *Report) Find(name string) (Step, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return Step{}, false
}

// Err joins the errors of all failed steps, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, s := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, s.Err))
	}
	return errors.Join(errs...)
}
