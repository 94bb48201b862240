package saga

import "fmt"

// Step is one participant's position in the execution sequence together with
// the topics that address it.
type Step struct {
	Name              string
	Index             int
	ForwardTopic      string
	CompensationTopic string
}

// Definition is the static table mapping participant identity to sequence
// position and topics. It is built once at process start and is read-only
// afterwards, so concurrent lookups need no synchronization.
type Definition struct {
	name   string
	steps  []Step
	byName map[string]Step
}

// NewDefinition builds a definition from steps ordered by index. Indexes must
// be contiguous from zero and names unique.
func NewDefinition(name string, steps ...Step) (*Definition, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("saga definition %q: no steps", name)
	}

	byName := make(map[string]Step, len(steps))
	for i, step := range steps {
		if step.Index != i {
			return nil, fmt.Errorf("saga definition %q: step %q has index %d, want %d", name, step.Name, step.Index, i)
		}
		if step.Name == "" || step.ForwardTopic == "" || step.CompensationTopic == "" {
			return nil, fmt.Errorf("saga definition %q: step %d is incomplete", name, i)
		}
		if _, dup := byName[step.Name]; dup {
			return nil, fmt.Errorf("saga definition %q: duplicate step %q", name, step.Name)
		}
		byName[step.Name] = step
	}

	return &Definition{name: name, steps: steps, byName: byName}, nil
}

// Name returns the definition name.
func (d *Definition) Name() string { return d.name }

// Len returns the number of participants.
func (d *Definition) Len() int { return len(d.steps) }

// StepByName looks up a participant by its source identity.
func (d *Definition) StepByName(name string) (Step, bool) {
	s, ok := d.byName[name]
	return s, ok
}

// StepAt returns the participant at the given sequence index.
func (d *Definition) StepAt(index int) (Step, bool) {
	if index < 0 || index >= len(d.steps) {
		return Step{}, false
	}
	return d.steps[index], true
}

// First returns the entry step of the saga.
func (d *Definition) First() Step { return d.steps[0] }

// Last returns the final step of the saga.
func (d *Definition) Last() Step { return d.steps[len(d.steps)-1] }
