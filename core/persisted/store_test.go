package persisted

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/asaidimu/go-gqlbuilder/core/document"
	"github.com/asaidimu/go-gqlbuilder/core/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// memoryRepository is an in-process Repository used to exercise the store.
type memoryRepository struct {
	mu        sync.Mutex
	records   map[string]*Record
	schemaErr error
	insertErr error
	findErr   error
	inserts   int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: map[string]*Record{}}
}

func (m *memoryRepository) EnsureSchema(ctx context.Context) error {
	return m.schemaErr
}

func (m *memoryRepository) Insert(ctx context.Context, record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserts++
	m.records[record.Hash] = record
	return nil
}

func (m *memoryRepository) FindByHash(ctx context.Context, hash string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	if r, ok := m.records[hash]; ok {
		return r, nil
	}
	return nil, ErrNotFound
}

func (m *memoryRepository) FindByName(ctx context.Context, name string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *Record
	for _, r := range m.records {
		if r.Name == name && (latest == nil || r.CreatedAt.After(latest.CreatedAt)) {
			latest = r
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (m *memoryRepository) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Record, 0, len(m.records))
	for _, r := range m.records {
		if opts.Kind != "" && r.Kind != opts.Kind {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryRepository) Delete(ctx context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[hash]; !ok {
		return ErrNotFound
	}
	delete(m.records, hash)
	return nil
}

// racingRepository registers a competing record for the same hash right
// before rejecting the insert, as a concurrent writer would.
type racingRepository struct {
	*memoryRepository
	winner *Record
}

func (r *racingRepository) Insert(ctx context.Context, record *Record) error {
	r.winner = &Record{ID: "winner", Name: "FirstWriter", Kind: record.Kind, Hash: record.Hash, Document: record.Document, CreatedAt: record.CreatedAt}
	if err := r.memoryRepository.Insert(ctx, r.winner); err != nil {
		return err
	}
	return errors.New("UNIQUE constraint failed: persisted_operations.hash")
}

func newTestStore(t *testing.T, repo Repository) *Store {
	t.Helper()
	store, err := NewStore(repo, nil)
	require.NoError(t, err)

	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return store
}

func usersQuery() *query.QueryBuilder {
	qb := query.NewQueryBuilder("users", true, true).AddNavigation("id,name")
	qb.CreateFilter().AddCondition("age", query.MatchGreaterThan, 18)
	return qb
}

func waitForEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for store event")
		return Event{}
	}
}

func TestNewStore(t *testing.T) {
	_, err := NewStore(nil, nil)
	assert.Error(t, err)

	repo := newMemoryRepository()
	repo.schemaErr = errors.New("disk full")
	_, err = NewStore(repo, nil)
	assert.ErrorContains(t, err, "disk full")
}

func TestStore_Save(t *testing.T) {
	repo := newMemoryRepository()
	store := newTestStore(t, repo)
	ctx := context.Background()

	qb := usersQuery()
	record, err := store.Save(ctx, "ActiveUsers", query.OperationQuery, qb)
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "ActiveUsers", record.Name)
	assert.Equal(t, query.OperationQuery, record.Kind)
	assert.Equal(t, qb.String(), record.Document)
	assert.Equal(t, document.Hash(qb.String()), record.Hash)
	assert.Equal(t, time.UTC, record.CreatedAt.Location())
	assert.Equal(t, 1, repo.inserts)
}

func TestStore_SaveIsIdempotent(t *testing.T) {
	repo := newMemoryRepository()
	store := newTestStore(t, repo)
	ctx := context.Background()

	first, err := store.Save(ctx, "ActiveUsers", query.OperationQuery, usersQuery())
	require.NoError(t, err)
	second, err := store.Save(ctx, "Renamed", "", usersQuery())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "ActiveUsers", second.Name)
	assert.Equal(t, 1, repo.inserts)
}

func TestStore_SaveLosesInsertRace(t *testing.T) {
	repo := &racingRepository{memoryRepository: newMemoryRepository()}
	store := newTestStore(t, repo)

	duplicates := make(chan Event, 1)
	store.Subscribe(EventDuplicate, func(ctx context.Context, e Event) error {
		duplicates <- e
		return nil
	})

	record, err := store.Save(context.Background(), "SecondWriter", query.OperationQuery, usersQuery())
	require.NoError(t, err)
	assert.Same(t, repo.winner, record)
	assert.Equal(t, "FirstWriter", record.Name)

	event := waitForEvent(t, duplicates)
	assert.Equal(t, record.Hash, event.Hash)
}

func TestStore_SaveDefaults(t *testing.T) {
	store := newTestStore(t, newMemoryRepository())

	mutation := query.NewMutationBuilder("createUser").AddParameter("name", "ana").AddColumn("id")
	record, err := store.Save(context.Background(), "", "", mutation)
	require.NoError(t, err)

	assert.Equal(t, query.OperationMutation, record.Kind)
	assert.Equal(t, "createUser", record.Name)
}

func TestStore_SaveErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("kind mismatch", func(t *testing.T) {
		store := newTestStore(t, newMemoryRepository())
		_, err := store.Save(ctx, "x", query.OperationMutation, usersQuery())
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("unparsable document", func(t *testing.T) {
		store := newTestStore(t, newMemoryRepository())
		// an empty selection is not a valid document
		_, err := store.Save(ctx, "x", "", query.NewQueryBuilder("users", false, false))
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("nil operation", func(t *testing.T) {
		store := newTestStore(t, newMemoryRepository())
		_, err := store.Save(ctx, "x", "", nil)
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("lookup failure", func(t *testing.T) {
		repo := newMemoryRepository()
		repo.findErr = errors.New("connection reset")
		store := newTestStore(t, repo)
		_, err := store.Save(ctx, "x", "", usersQuery())
		assert.ErrorContains(t, err, "connection reset")
		assert.NotErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("insert failure", func(t *testing.T) {
		repo := newMemoryRepository()
		repo.insertErr = errors.New("constraint failed")
		store := newTestStore(t, repo)
		_, err := store.Save(ctx, "x", "", usersQuery())
		assert.ErrorContains(t, err, "constraint failed")
	})
}

func TestStore_LookupAndDelete(t *testing.T) {
	store := newTestStore(t, newMemoryRepository())
	ctx := context.Background()

	first, err := store.Save(ctx, "users", "", query.NewQueryBuilder("users", false, false).AddColumn("id"))
	require.NoError(t, err)
	second, err := store.Save(ctx, "users", "", query.NewQueryBuilder("users", false, false).AddColumn("name"))
	require.NoError(t, err)

	found, err := store.Lookup(ctx, first.Hash)
	require.NoError(t, err)
	assert.Equal(t, first, found)

	latest, err := store.LookupByName(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	all, err := store.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)

	require.NoError(t, store.Delete(ctx, first.Hash))
	_, err = store.Lookup(ctx, first.Hash)
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.Delete(ctx, first.Hash)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.LookupByName(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Events(t *testing.T) {
	store := newTestStore(t, newMemoryRepository())
	ctx := context.Background()

	saved := make(chan Event, 4)
	duplicate := make(chan Event, 4)
	deleted := make(chan Event, 4)
	failed := make(chan Event, 4)

	forward := func(ch chan<- Event) EventCallback {
		return func(ctx context.Context, e Event) error {
			ch <- e
			return nil
		}
	}
	store.Subscribe(EventSaved, forward(saved))
	store.Subscribe(EventDuplicate, forward(duplicate))
	store.Subscribe(EventDeleted, forward(deleted))
	store.Subscribe(EventFailed, forward(failed))

	record, err := store.Save(ctx, "users", "", usersQuery())
	require.NoError(t, err)
	e := waitForEvent(t, saved)
	assert.Equal(t, EventSaved, e.Type)
	assert.Equal(t, "save", e.Operation)
	assert.Equal(t, record.Hash, e.Hash)
	assert.Equal(t, record.ID, e.Record.ID)
	assert.NotNil(t, e.Duration)

	_, err = store.Save(ctx, "users", "", usersQuery())
	require.NoError(t, err)
	e = waitForEvent(t, duplicate)
	assert.Equal(t, record.ID, e.Record.ID)

	require.NoError(t, store.Delete(ctx, record.Hash))
	e = waitForEvent(t, deleted)
	assert.Equal(t, record.Hash, e.Hash)

	_, err = store.Save(ctx, "x", query.OperationSubscription, usersQuery())
	require.Error(t, err)
	e = waitForEvent(t, failed)
	require.NotNil(t, e.Error)
	assert.Contains(t, *e.Error, "invalid operation document")
}

func TestStore_Subscriptions(t *testing.T) {
	store := newTestStore(t, newMemoryRepository())
	label := "audit"

	id := store.SubscribeWithLabel(EventSaved, &label, func(ctx context.Context, e Event) error { return nil })
	other := store.Subscribe(EventDeleted, func(ctx context.Context, e Event) error { return nil })

	subs := store.Subscriptions()
	require.Len(t, subs, 2)
	ids := []string{subs[0].ID, subs[1].ID}
	assert.ElementsMatch(t, []string{id, other}, ids)

	store.Unsubscribe(id)
	store.Unsubscribe("unknown")
	subs = store.Subscriptions()
	require.Len(t, subs, 1)
	assert.Equal(t, other, subs[0].ID)
	assert.Equal(t, EventDeleted, subs[0].Event)
}

func TestStore_UnsubscribedCallbackIsNotCalled(t *testing.T) {
	store := newTestStore(t, newMemoryRepository())
	calls := make(chan Event, 4)

	id := store.Subscribe(EventSaved, func(ctx context.Context, e Event) error {
		calls <- e
		return nil
	})
	store.Unsubscribe(id)

	_, err := store.Save(context.Background(), "users", "", usersQuery())
	require.NoError(t, err)

	select {
	case <-calls:
		t.Fatal("callback ran after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStore_Logging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	store, err := NewStore(newMemoryRepository(), zap.New(core))
	require.NoError(t, err)

	record, err := store.Save(context.Background(), "users", "", usersQuery())
	require.NoError(t, err)

	entries := logs.FilterMessage("Operation registered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, record.Hash, entries[0].ContextMap()["hash"])
}

func TestRecord_String(t *testing.T) {
	var nilRecord *Record
	assert.Equal(t, "", nilRecord.String())

	r := &Record{Document: "{ users { id } }"}
	env := document.NewEnvelope(r, document.WithPersistedQuery())
	assert.Equal(t, document.Hash(r.Document), env.Extensions.PersistedQuery.SHA256Hash)
}
