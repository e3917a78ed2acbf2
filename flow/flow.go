// CLAUDE:SUMMARY Flow type plus the upsert/dedup append semantics the coordinator relies on.
package flow

import "time"

// Meta carries flow timestamps in epoch milliseconds.
type Meta struct {
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// Flow is an ordered script of Steps plus variable definitions.
type Flow struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Version     int           `json:"version"`
	Steps       []Step        `json:"steps"`
	Variables   []VariableDef `json:"variables"`
	Meta        Meta          `json:"meta"`
	Description string        `json:"description,omitempty"`
}

// New creates an empty Flow with fresh timestamps.
func New(id, name, description string) *Flow {
	now := time.Now().UnixMilli()
	return &Flow{
		ID:          id,
		Name:        name,
		Version:     1,
		Steps:       []Step{},
		Variables:   []VariableDef{},
		Meta:        Meta{CreatedAt: now, UpdatedAt: now},
		Description: description,
	}
}

// UpsertSteps merges incoming steps into the flow. A step whose ID is
// already present replaces the existing step in place, preserving its
// original position; unknown IDs append. Steps without an ID are assigned
// one via mint. Order of appends is the incoming order.
func (f *Flow) UpsertSteps(incoming []Step, mint func() string) {
	if len(incoming) == 0 {
		return
	}

	index := make(map[string]int, len(f.Steps))
	for i, s := range f.Steps {
		index[s.ID] = i
	}

	for _, s := range incoming {
		if s.ID == "" {
			s.ID = mint()
		}
		if i, ok := index[s.ID]; ok {
			f.Steps[i] = s
			continue
		}
		index[s.ID] = len(f.Steps)
		f.Steps = append(f.Steps, s)
	}

	f.Meta.UpdatedAt = time.Now().UnixMilli()
}

// UpsertVariables merges incoming variable definitions, deduplicating by
// key: a later definition overwrites the earlier one in place. Entries
// with an empty key are skipped.
func (f *Flow) UpsertVariables(incoming []VariableDef) {
	if len(incoming) == 0 {
		return
	}
	if f.Variables == nil {
		f.Variables = []VariableDef{}
	}

	for _, v := range incoming {
		if v.Key == "" {
			continue
		}
		replaced := false
		for i := range f.Variables {
			if f.Variables[i].Key == v.Key {
				f.Variables[i] = v
				replaced = true
				break
			}
		}
		if !replaced {
			f.Variables = append(f.Variables, v)
		}
	}

	f.Meta.UpdatedAt = time.Now().UnixMilli()
}

// LastStep returns a pointer to the most recent step, or nil.
func (f *Flow) LastStep() *Step {
	if len(f.Steps) == 0 {
		return nil
	}
	return &f.Steps[len(f.Steps)-1]
}

// FindStep returns a pointer to the step with the given ID, or nil.
func (f *Flow) FindStep(id string) *Step {
	for i := range f.Steps {
		if f.Steps[i].ID == id {
			return &f.Steps[i]
		}
	}
	return nil
}
