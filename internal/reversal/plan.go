// Package reversal derives the uninstall action sequence from an install
// sequence.
//
// The inverse of each forward action is chosen by a per-kind policy table
// (see policy.go). The central rule is that the planner never emits an
// action that deletes or truncates data it did not itself write: list
// variables are undone by removing exactly the appended fragment, keys
// are only removed when they were created by the install, and effects
// that cannot be undone are reported as warnings instead of guessed at.
package reversal

import (
	"fmt"
	"log/slog"

	"github.com/terassyi/nsid/internal/action"
)

// Warning describes a forward action the planner could not reverse.
type Warning struct {
	// Index is the position of the action in the forward sequence.
	Index  int         `json:"index" yaml:"index"`
	Kind   action.Kind `json:"kind" yaml:"kind"`
	Target string      `json:"target" yaml:"target"`
	Reason string      `json:"reason" yaml:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("actions[%d] %s %s: %s", w.Index, w.Kind, w.Target, w.Reason)
}

// Plan is the derived uninstall sequence. It is recomputed on every
// export and never persisted.
type Plan struct {
	// Actions undo the forward sequence, last-applied first.
	Actions action.Sequence
	// Origins holds, for each reverse action, the index of the forward
	// action it undoes. It is non-increasing.
	Origins []int
	// NonReversible lists forward actions left for manual handling.
	NonReversible []Warning
}

// Planner computes reversal plans.
type Planner struct {
	snapshot       Snapshot
	manifest       Manifest
	forceKeyDelete bool
}

// Option configures a Planner.
type Option func(*Planner)

// WithSnapshot supplies the pre-installation state of the target machine.
func WithSnapshot(s Snapshot) Option {
	return func(p *Planner) {
		if s != nil {
			p.snapshot = s
		}
	}
}

// WithManifest supplies file lists for recursive copies.
func WithManifest(m Manifest) Option {
	return func(p *Planner) {
		p.manifest = m
	}
}

// WithForceKeyDelete makes keys created by the install be removed with
// everything in them, instead of only when they are empty after the
// recorded values are deleted.
func WithForceKeyDelete(force bool) Option {
	return func(p *Planner) {
		p.forceKeyDelete = force
	}
}

// NewPlanner creates a Planner. Without a snapshot nothing is known about
// the target machine.
func NewPlanner(opts ...Option) *Planner {
	p := &Planner{snapshot: EmptySnapshot{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PlanReversal plans with default options.
func PlanReversal(seq action.Sequence) (*Plan, error) {
	return NewPlanner().Plan(seq)
}

// Plan computes the reverse of seq. It is a pure function of seq and the
// planner's snapshot and manifest. Any error aborts planning; no partial
// plan is returned.
func (p *Planner) Plan(seq action.Sequence) (*Plan, error) {
	r := newRun(p)
	steps := make([]step, seq.Len())

	// Walk forward so each policy sees the state left by earlier actions.
	for i, a := range seq.All() {
		rev, ok := policies[a.Kind()]
		if !ok {
			return nil, fmt.Errorf("actions[%d]: %w", i, invalidForward(a))
		}
		s, err := rev(r, a)
		if err != nil {
			return nil, fmt.Errorf("actions[%d]: %w", i, err)
		}
		steps[i] = s
	}

	plan := &Plan{}
	var reversed []action.Action
	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		a := seq.At(i)
		if s.reason != "" {
			w := Warning{Index: i, Kind: a.Kind(), Target: a.Target(), Reason: s.reason}
			slog.Warn("action is not reversible", "index", i, "kind", a.Kind(), "target", a.Target(), "reason", s.reason)
			plan.NonReversible = append(plan.NonReversible, w)
		}
		for _, ra := range s.actions {
			reversed = append(reversed, ra)
			plan.Origins = append(plan.Origins, i)
		}
		slog.Debug("planned reversal", "index", i, "kind", a.Kind(), "reverse", len(s.actions))
	}
	// Warnings are reported in forward order.
	for l, h := 0, len(plan.NonReversible)-1; l < h; l, h = l+1, h-1 {
		plan.NonReversible[l], plan.NonReversible[h] = plan.NonReversible[h], plan.NonReversible[l]
	}
	plan.Actions = action.NewSequence(reversed...)
	return plan, nil
}
