package persisted

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/asaidimu/go-events"
	"github.com/asaidimu/go-gqlbuilder/core/document"
	"github.com/asaidimu/go-gqlbuilder/core/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store renders, validates and registers operations by hash, and reports
// every write on an event bus.
type Store struct {
	repo          Repository
	logger        *zap.Logger
	bus           *events.TypedEventBus[Event]
	subscriptions map[string]*SubscriptionInfo
	subMu         sync.RWMutex
	now           func() time.Time
}

// NewStore creates a store over repo and makes sure its storage exists. A
// nil logger disables logging.
func NewStore(repo Repository, logger *zap.Logger) (*Store, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bus, err := events.NewTypedEventBus[Event](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}

	if err := repo.EnsureSchema(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to prepare persisted operation storage: %w", err)
	}

	return &Store{
		repo:          repo,
		logger:        logger,
		bus:           bus,
		subscriptions: make(map[string]*SubscriptionInfo),
		now:           time.Now,
	}, nil
}

// Save renders op, checks that the text parses and registers it under its
// hash. Saving a document whose hash is already registered returns the
// existing record unchanged. An empty kind is taken from the document and an
// empty name defaults to the first root field.
func (s *Store) Save(ctx context.Context, name string, kind query.OperationKind, op query.Renderer) (*Record, error) {
	startTime := s.now()
	if op == nil {
		err := fmt.Errorf("%w: operation cannot be nil", ErrInvalidDocument)
		s.emit(createEvent(EventFailed, "save", "", nil, err, startTime))
		return nil, err
	}

	text := op.String()
	hash := document.Hash(text)

	record, err := s.save(ctx, name, kind, text, hash)
	if err != nil {
		s.logger.Warn("Failed to save operation", zap.String("hash", hash), zap.Error(err))
		s.emit(createEvent(EventFailed, "save", hash, nil, err, startTime))
		return nil, err
	}
	return record, nil
}

func (s *Store) save(ctx context.Context, name string, kind query.OperationKind, text, hash string) (*Record, error) {
	analysis, err := document.Analyze(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	docKind := query.OperationKind(analysis.OperationType)
	if kind == "" {
		kind = docKind
	}
	if kind != docKind {
		return nil, fmt.Errorf("%w: document is a %s, not a %s", ErrInvalidDocument, docKind, kind)
	}
	if name == "" && len(analysis.RootFields) > 0 {
		name = analysis.RootFields[0]
	}

	startTime := s.now()
	existing, err := s.repo.FindByHash(ctx, hash)
	switch {
	case err == nil:
		s.logger.Debug("Operation already registered", zap.String("hash", hash), zap.String("name", existing.Name))
		s.emit(createEvent(EventDuplicate, "save", hash, existing, nil, startTime))
		return existing, nil
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("failed to look up operation %s: %w", hash, err)
	}

	record := &Record{
		ID:        uuid.New().String(),
		Name:      name,
		Kind:      kind,
		Hash:      hash,
		Document:  text,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, record); err != nil {
		// a concurrent save of the same document may have won the insert
		if winner, findErr := s.repo.FindByHash(ctx, hash); findErr == nil {
			s.logger.Debug("Operation registered concurrently", zap.String("hash", hash), zap.String("name", winner.Name))
			s.emit(createEvent(EventDuplicate, "save", hash, winner, nil, startTime))
			return winner, nil
		}
		return nil, fmt.Errorf("failed to insert operation %s: %w", hash, err)
	}

	s.logger.Info("Operation registered",
		zap.String("id", record.ID),
		zap.String("name", record.Name),
		zap.String("kind", string(record.Kind)),
		zap.String("hash", hash))
	s.emit(createEvent(EventSaved, "save", hash, record, nil, startTime))
	return record, nil
}

// Lookup returns the record registered under hash.
func (s *Store) Lookup(ctx context.Context, hash string) (*Record, error) {
	record, err := s.repo.FindByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", hash, err)
	}
	return record, nil
}

// LookupByName returns the latest record saved under name.
func (s *Store) LookupByName(ctx context.Context, name string) (*Record, error) {
	record, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup by name %q: %w", name, err)
	}
	return record, nil
}

// List returns the registered records matching opts.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	records, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	return records, nil
}

// Delete removes the record registered under hash.
func (s *Store) Delete(ctx context.Context, hash string) error {
	startTime := s.now()
	if err := s.repo.Delete(ctx, hash); err != nil {
		err = fmt.Errorf("delete %s: %w", hash, err)
		s.emit(createEvent(EventFailed, "delete", hash, nil, err, startTime))
		return err
	}

	s.logger.Info("Operation deleted", zap.String("hash", hash))
	s.emit(createEvent(EventDeleted, "delete", hash, nil, nil, startTime))
	return nil
}

// Subscribe registers callback for an event type and returns the id used to
// unsubscribe it.
func (s *Store) Subscribe(event EventType, callback EventCallback) string {
	return s.SubscribeWithLabel(event, nil, callback)
}

// SubscribeWithLabel is Subscribe with a label kept in SubscriptionInfo.
func (s *Store) SubscribeWithLabel(event EventType, label *string, callback EventCallback) string {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	unsubscribe := s.bus.Subscribe(string(event), func(ctx context.Context, e Event) error {
		return callback(ctx, e)
	})
	id := uuid.New().String()

	s.subscriptions[id] = &SubscriptionInfo{
		ID:          id,
		Event:       event,
		Label:       label,
		Unsubscribe: unsubscribe,
	}
	return id
}

// Unsubscribe removes a subscription by id. Unknown ids are ignored.
func (s *Store) Unsubscribe(id string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if info, ok := s.subscriptions[id]; ok {
		info.Unsubscribe()
		delete(s.subscriptions, id)
	}
}

// Subscriptions returns the active subscriptions ordered by id.
func (s *Store) Subscriptions() []SubscriptionInfo {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	subs := make([]SubscriptionInfo, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		subs = append(subs, *sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs
}

func (s *Store) emit(event Event) {
	if s.bus != nil {
		s.bus.Emit(string(event.Type), event)
	}
}
