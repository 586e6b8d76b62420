// Package memory provides in-process implementations of the repository
// interfaces. Records are copied on every read and write so callers never share
// state with the store. Used for tests and local runs without PostgreSQL.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"docflow/internal/model"
	"docflow/internal/repository"
)

type state struct {
	docs  map[string]model.Document
	flows map[string]model.ValidationFlow
}

func (s *state) clone() *state {
	out := &state{
		docs:  make(map[string]model.Document, len(s.docs)),
		flows: make(map[string]model.ValidationFlow, len(s.flows)),
	}
	for k, v := range s.docs {
		out.docs[k] = copyDocument(v)
	}
	for k, v := range s.flows {
		out.flows[k] = copyFlow(v)
	}
	return out
}

// Store holds documents and validation flows. All methods are safe for concurrent use.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{st: &state{
		docs:  make(map[string]model.Document),
		flows: make(map[string]model.ValidationFlow),
	}}
}

var _ repository.Transactor = (*Store)(nil)

// Documents returns a DocumentRepository over the store.
func (s *Store) Documents() repository.DocumentRepository {
	return &documents{store: s}
}

// Flows returns a ValidationFlowRepository over the store.
func (s *Store) Flows() repository.ValidationFlowRepository {
	return &flows{store: s}
}

// WithinTx serializes fn against other transactions and applies its writes
// only if it returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	repos := repository.Repositories{
		Documents: &documents{tx: work},
		Flows:     &flows{tx: work},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	s.st = work
	return nil
}

// view runs fn against the transaction state when bound, otherwise under the store lock.
func view(store *Store, tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	return fn(store.st)
}

type documents struct {
	store *Store
	tx    *state
}

func (r *documents) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	var out model.Document
	err := view(r.store, r.tx, func(st *state) error {
		if _, ok := st.docs[doc.ID]; ok {
			return repository.ErrDuplicate
		}
		for _, d := range st.docs {
			if d.StorageKey == doc.StorageKey {
				return repository.ErrDuplicate
			}
		}
		st.docs[doc.ID] = copyDocument(*doc)
		out = copyDocument(*doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *documents) FindByID(ctx context.Context, id string) (*model.Document, error) {
	var out model.Document
	err := view(r.store, r.tx, func(st *state) error {
		d, ok := st.docs[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = copyDocument(d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *documents) Update(ctx context.Context, doc *model.Document) error {
	return view(r.store, r.tx, func(st *state) error {
		cur, ok := st.docs[doc.ID]
		if !ok {
			return repository.ErrNotFound
		}
		next := copyDocument(*doc)
		next.StorageKey = cur.StorageKey
		next.CompanyID = cur.CompanyID
		next.EntityType = cur.EntityType
		next.EntityID = cur.EntityID
		next.CreatedBy = cur.CreatedBy
		next.CreatedAt = cur.CreatedAt
		st.docs[doc.ID] = next
		return nil
	})
}

func (r *documents) Touch(ctx context.Context, id string, at time.Time) error {
	return view(r.store, r.tx, func(st *state) error {
		cur, ok := st.docs[id]
		if !ok {
			return repository.ErrNotFound
		}
		cur.UpdatedAt = at
		st.docs[id] = cur
		return nil
	})
}

func (r *documents) ExistsByStorageKey(ctx context.Context, key string) (bool, error) {
	var found bool
	err := view(r.store, r.tx, func(st *state) error {
		for _, d := range st.docs {
			if d.StorageKey == key {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *documents) List(ctx context.Context, f repository.DocumentFilter, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	var matched []model.Document
	_ = view(r.store, r.tx, func(st *state) error {
		for _, d := range st.docs {
			if f.CompanyID != "" && !strings.EqualFold(d.CompanyID, f.CompanyID) {
				continue
			}
			if f.EntityType != "" && d.EntityType != f.EntityType {
				continue
			}
			if f.EntityID != "" && d.EntityID != f.EntityID {
				continue
			}
			matched = append(matched, copyDocument(d))
		}
		return nil
	})
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	items := make([]model.Document, 0)
	if pq.Offset < len(matched) {
		end := len(matched)
		if pq.Limit > 0 && pq.Offset+pq.Limit < end {
			end = pq.Offset + pq.Limit
		}
		items = append(items, matched[pq.Offset:end]...)
	}
	return &repository.PageResult[model.Document]{Items: items, Total: len(matched)}, nil
}

func (r *documents) Delete(ctx context.Context, id string) error {
	return view(r.store, r.tx, func(st *state) error {
		delete(st.docs, id)
		return nil
	})
}

type flows struct {
	store *Store
	tx    *state
}

func (r *flows) Create(ctx context.Context, flow *model.ValidationFlow) error {
	return view(r.store, r.tx, func(st *state) error {
		if _, ok := st.flows[flow.ID]; ok {
			return repository.ErrDuplicate
		}
		for _, f := range st.flows {
			if f.DocumentID == flow.DocumentID {
				return repository.ErrDuplicate
			}
		}
		if flow.Version == 0 {
			flow.Version = 1
		}
		st.flows[flow.ID] = copyFlow(*flow)
		return nil
	})
}

func (r *flows) FindByID(ctx context.Context, id string) (*model.ValidationFlow, error) {
	var out model.ValidationFlow
	err := view(r.store, r.tx, func(st *state) error {
		f, ok := st.flows[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = copyFlow(f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out.Steps, func(i, j int) bool { return out.Steps[i].Order < out.Steps[j].Order })
	return &out, nil
}

func (r *flows) Update(ctx context.Context, flow *model.ValidationFlow) error {
	return view(r.store, r.tx, func(st *state) error {
		cur, ok := st.flows[flow.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if cur.Version != flow.Version {
			return repository.ErrConflict
		}
		next := copyFlow(*flow)
		// actions are append-only: keep stored ones, add unseen ones.
		seen := make(map[string]bool, len(cur.Actions))
		next.Actions = append([]model.ValidationAction(nil), cur.Actions...)
		for _, a := range cur.Actions {
			seen[a.ID] = true
		}
		for _, a := range flow.Actions {
			if !seen[a.ID] {
				next.Actions = append(next.Actions, copyAction(a))
			}
		}
		next.Version = cur.Version + 1
		st.flows[flow.ID] = next
		flow.Version = next.Version
		return nil
	})
}

func copyDocument(d model.Document) model.Document {
	if d.Hash != nil {
		h := *d.Hash
		d.Hash = &h
	}
	if d.ValidationFlowID != nil {
		id := *d.ValidationFlowID
		d.ValidationFlowID = &id
	}
	return d
}

func copyFlow(f model.ValidationFlow) model.ValidationFlow {
	steps := make([]model.ValidationStep, len(f.Steps))
	for i, s := range f.Steps {
		if s.CompletedAt != nil {
			t := *s.CompletedAt
			s.CompletedAt = &t
		}
		steps[i] = s
	}
	actions := make([]model.ValidationAction, len(f.Actions))
	for i, a := range f.Actions {
		actions[i] = copyAction(a)
	}
	f.Steps = steps
	f.Actions = actions
	return f
}

func copyAction(a model.ValidationAction) model.ValidationAction {
	if a.StepID != nil {
		id := *a.StepID
		a.StepID = &id
	}
	if a.Reason != nil {
		r := *a.Reason
		a.Reason = &r
	}
	return a
}
