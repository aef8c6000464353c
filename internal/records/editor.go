package records

import (
	"context"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/dojoportal/internal/models"
	"github.com/yoockh/dojoportal/internal/realtime"
	"github.com/yoockh/dojoportal/internal/utils"
)

type EditorState[T any, D any] struct {
	Items     []T    `json:"items"`
	Draft     D      `json:"draft"`
	EditingID string `json:"editing_id,omitempty"`
	Busy      bool   `json:"busy"`
	Error     string `json:"error,omitempty"`
}

// Editor is one admin console: the mirrored collection plus a single form
// draft that either creates a record or edits EditingID.
type Editor[T models.Record[T], D any] struct {
	svc  Service[T, D]
	kind Kind[T, D]

	mu        sync.Mutex
	state     EditorState[T, D]
	listeners []func(EditorState[T, D])
}

func NewEditor[T models.Record[T], D any](svc Service[T, D], kind Kind[T, D]) *Editor[T, D] {
	return &Editor[T, D]{svc: svc, kind: kind}
}

func (e *Editor[T, D]) State() EditorState[T, D] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Editor[T, D]) OnChange(fn func(EditorState[T, D])) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Sync mirrors the collection into the editor until cancel is called.
func (e *Editor[T, D]) Sync(ctx context.Context, bus realtime.Bus, log logrus.FieldLogger) (cancel func(), err error) {
	return realtime.Watch(ctx, bus, e.svc.Topic(), e.svc.List, e.Replace, log)
}

func (e *Editor[T, D]) Replace(items []T) {
	e.mutate(func(st *EditorState[T, D]) {
		st.Items = append([]T(nil), items...)
	})
}

func (e *Editor[T, D]) SetDraft(d D) {
	e.mutate(func(st *EditorState[T, D]) { st.Draft = d })
}

// Edit loads rec into the draft and remembers its id.
func (e *Editor[T, D]) Edit(rec T) {
	e.mutate(func(st *EditorState[T, D]) {
		st.Draft = e.kind.DraftOf(rec)
		st.EditingID = rec.RecordID()
		st.Error = ""
	})
}

func (e *Editor[T, D]) Reset() {
	e.mutate(func(st *EditorState[T, D]) {
		var zero D
		st.Draft = zero
		st.EditingID = ""
		st.Error = ""
	})
}

// Submit updates the edited record, or creates one when nothing is being
// edited. The draft is cleared on success and kept on failure.
func (e *Editor[T, D]) Submit(ctx context.Context) error {
	var (
		draft     D
		editingID string
	)
	e.mutate(func(st *EditorState[T, D]) {
		draft, editingID = st.Draft, st.EditingID
		st.Busy = true
		st.Error = ""
	})

	var err error
	defer func() {
		e.mutate(func(st *EditorState[T, D]) {
			st.Busy = false
			if err != nil {
				st.Error = utils.UserMessage(err)
				return
			}
			// only clear the form that was submitted
			if st.EditingID == editingID {
				var zero D
				st.Draft = zero
				st.EditingID = ""
			}
		})
	}()

	if editingID != "" {
		err = e.svc.Update(ctx, editingID, draft)
	} else {
		_, err = e.svc.Create(ctx, draft)
	}
	return err
}

// Remove deletes rec. Records without an id are ignored. Deleting the
// record being edited clears the draft.
func (e *Editor[T, D]) Remove(ctx context.Context, rec T) error {
	id := rec.RecordID()
	if id == "" {
		return nil
	}

	e.mutate(func(st *EditorState[T, D]) {
		st.Busy = true
		st.Error = ""
	})

	var err error
	defer func() {
		e.mutate(func(st *EditorState[T, D]) {
			st.Busy = false
			if err != nil {
				st.Error = utils.UserMessage(err)
				return
			}
			if st.EditingID == id {
				var zero D
				st.Draft = zero
				st.EditingID = ""
			}
		})
	}()

	err = e.svc.Delete(ctx, id)
	return err
}

// Find returns the mirrored record with id.
func (e *Editor[T, D]) Find(id string) (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, rec := range e.state.Items {
		if rec.RecordID() == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

func (e *Editor[T, D]) mutate(fn func(*EditorState[T, D])) {
	e.mu.Lock()
	fn(&e.state)
	snap := e.snapshotLocked()
	listeners := slices.Clone(e.listeners)
	e.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (e *Editor[T, D]) snapshotLocked() EditorState[T, D] {
	s := e.state
	s.Items = append([]T(nil), e.state.Items...)
	return s
}
