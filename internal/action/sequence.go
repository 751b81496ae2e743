package action

import (
	"encoding/json"
	"fmt"
	"iter"
	"slices"
)

// Sequence is an ordered list of actions forming one script section.
// Order is significant: a key or directory must be created before
// anything is written into it. Sequence values are immutable; every
// editing method returns a new Sequence.
type Sequence struct {
	actions []Action
}

// NewSequence creates a sequence from the given actions.
func NewSequence(actions ...Action) Sequence {
	return Sequence{actions: slices.Clone(actions)}
}

// Len returns the number of actions.
func (s Sequence) Len() int {
	return len(s.actions)
}

// At returns the i-th action.
func (s Sequence) At(i int) Action {
	return s.actions[i]
}

// All iterates over the actions in order.
func (s Sequence) All() iter.Seq2[int, Action] {
	return func(yield func(int, Action) bool) {
		for i, a := range s.actions {
			if !yield(i, a) {
				return
			}
		}
	}
}

// Actions returns a copy of the underlying actions.
func (s Sequence) Actions() []Action {
	return slices.Clone(s.actions)
}

// Append returns a new sequence with actions added at the end.
func (s Sequence) Append(actions ...Action) Sequence {
	return Sequence{actions: slices.Concat(s.actions, actions)}
}

// Concat returns a new sequence holding s followed by other.
func (s Sequence) Concat(other Sequence) Sequence {
	return Sequence{actions: slices.Concat(s.actions, other.actions)}
}

// Remove returns a new sequence without the i-th action.
func (s Sequence) Remove(i int) (Sequence, error) {
	if i < 0 || i >= len(s.actions) {
		return s, fmt.Errorf("action index %d out of range [0,%d)", i, len(s.actions))
	}
	return Sequence{actions: slices.Delete(slices.Clone(s.actions), i, i+1)}, nil
}

// Move returns a new sequence with the action at from relocated to to.
func (s Sequence) Move(from, to int) (Sequence, error) {
	n := len(s.actions)
	if from < 0 || from >= n {
		return s, fmt.Errorf("source index %d out of range [0,%d)", from, n)
	}
	if to < 0 || to >= n {
		return s, fmt.Errorf("destination index %d out of range [0,%d)", to, n)
	}
	out := slices.Clone(s.actions)
	a := out[from]
	out = slices.Delete(out, from, from+1)
	out = slices.Insert(out, to, a)
	return Sequence{actions: out}, nil
}

// Reverse returns a new sequence with the order reversed.
func (s Sequence) Reverse() Sequence {
	out := slices.Clone(s.actions)
	slices.Reverse(out)
	return Sequence{actions: out}
}

// Has reports whether any action is of the given kind.
func (s Sequence) Has(kind Kind) bool {
	return slices.ContainsFunc(s.actions, func(a Action) bool { return a.Kind() == kind })
}

// Kinds returns the kind of each action in order.
func (s Sequence) Kinds() []Kind {
	kinds := make([]Kind, len(s.actions))
	for i, a := range s.actions {
		kinds[i] = a.Kind()
	}
	return kinds
}

// Envelopes converts the sequence into its serialisable form.
func (s Sequence) Envelopes() []Envelope {
	out := make([]Envelope, len(s.actions))
	for i, a := range s.actions {
		out[i] = ToEnvelope(a)
	}
	return out
}

// FromEnvelopes decodes envelopes into a validated sequence. The index of
// a failing envelope is reported in the error.
func FromEnvelopes(envs []Envelope) (Sequence, error) {
	actions := make([]Action, 0, len(envs))
	for i, e := range envs {
		a, err := e.Decode()
		if err != nil {
			return Sequence{}, fmt.Errorf("actions[%d]: %w", i, err)
		}
		actions = append(actions, a)
	}
	return Sequence{actions: actions}, nil
}

// MarshalJSON implements json.Marshaler.
func (s Sequence) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Envelopes())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Sequence) UnmarshalJSON(data []byte) error {
	var envs []Envelope
	if err := json.Unmarshal(data, &envs); err != nil {
		return err
	}
	seq, err := FromEnvelopes(envs)
	if err != nil {
		return err
	}
	*s = seq
	return nil
}

// MarshalYAML implements the go-yaml InterfaceMarshaler.
func (s Sequence) MarshalYAML() (any, error) {
	return s.Envelopes(), nil
}

// UnmarshalYAML implements the go-yaml InterfaceUnmarshaler.
func (s *Sequence) UnmarshalYAML(unmarshal func(any) error) error {
	var envs []Envelope
	if err := unmarshal(&envs); err != nil {
		return err
	}
	seq, err := FromEnvelopes(envs)
	if err != nil {
		return err
	}
	*s = seq
	return nil
}
