package schedule

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// Plan is the set of store operations moving a logical class to its desired state.
type Plan struct {
	ToCreate []NewEntry    `json:"to_create"`
	ToUpdate []EntryUpdate `json:"to_update"`
	ToDelete []string      `json:"to_delete"`
}

func newPlan() Plan {
	return Plan{ToCreate: []NewEntry{}, ToUpdate: []EntryUpdate{}, ToDelete: []string{}}
}

// Len is the number of store operations in the plan.
func (p Plan) Len() int {
	return len(p.ToCreate) + len(p.ToUpdate) + len(p.ToDelete)
}

func (p Plan) Empty() bool { return p.Len() == 0 }

type Reconciler struct {
	validate   *validator.Validate
	translator ut.Translator
}

func NewReconciler(validate *validator.Validate, translator ut.Translator) *Reconciler {
	return &Reconciler{validate: validate, translator: translator}
}

// Reconcile computes the minimal plan turning existing (the stored entries of the class)
// into desired, gated by conflict detection against snapshot (the whole store as last fetched).
//
// The edit is validated first: a *core.ValidationError is returned before anything else is looked at.
// A *ConflictError aborts the whole plan. The result is only as fresh as snapshot:
// two plans computed from the same snapshot are not checked against each other.
func (r *Reconciler) Reconcile(desired ClassEdit, existing, snapshot []Entry) (Plan, error) {
	desired.Clean()
	if err := desired.Validate(r.validate, r.translator); err != nil {
		return Plan{}, err
	}
	return reconcile(desired, existing, snapshot)
}

type slotState struct {
	cand     Candidate
	existing int // position in existing, -1 for a new slot
}

func reconcile(desired ClassEdit, existing, snapshot []Entry) (Plan, error) {
	// the class's own entries are being replaced, they never conflict with the edit
	exclude := make(IDSet, len(existing))
	stored := make(map[SlotKey]int, len(existing))
	for i, e := range existing {
		exclude[e.ID] = struct{}{}
		if _, ok := stored[e.Key()]; !ok {
			stored[e.Key()] = i
		}
	}

	// match desired slots to stored entries; a slot listed twice is planned once
	var slots []slotState
	seen := make(map[SlotKey]struct{})
	retained := make([]bool, len(existing))
	for _, c := range desired.Candidates() {
		key := c.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		pos, ok := stored[key]
		if !ok {
			pos = -1
		} else {
			retained[pos] = true
		}
		slots = append(slots, slotState{cand: c, existing: pos})
	}

	// retained slots stay booked: new and renamed slots are checked against them too
	idx := NewConflictIndex(snapshot)
	for _, s := range slots {
		if s.existing >= 0 {
			idx.Add(s.cand.NewEntry().Entry(""))
		}
	}

	plan := newPlan()
	for _, s := range slots {
		if s.existing >= 0 {
			e := existing[s.existing]
			if e.ClassName == desired.ClassName {
				continue
			}
			if report := idx.Detect(s.cand, exclude); report != nil {
				return Plan{}, &ConflictError{Report: *report}
			}
			name := desired.ClassName
			plan.ToUpdate = append(plan.ToUpdate, EntryUpdate{ID: e.ID, Patch: EntryPatch{ClassName: &name}})
			continue
		}

		if report := idx.Detect(s.cand, exclude); report != nil {
			return Plan{}, &ConflictError{Report: *report}
		}
		// later slots of the batch must see this one
		idx.Add(s.cand.NewEntry().Entry(""))
		plan.ToCreate = append(plan.ToCreate, s.cand.NewEntry())
	}

	for i, e := range existing {
		if !retained[i] {
			plan.ToDelete = append(plan.ToDelete, e.ID)
		}
	}
	return plan, nil
}
