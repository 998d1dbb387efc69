package ledger

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
)

// BalanceAdjuster mutates the balance of a client's account. The ledger never
// reads balances back.
type BalanceAdjuster interface {
	Adjust(ctx context.Context, clientID, accountID string, amount decimal.Decimal, isCredit bool) error
}

type Notifier interface {
	NotifySuccess(ctx context.Context, message string) error
}

// SnapshotStore persists the whole ledger under a single key. Load reports
// found=false when nothing has been saved yet.
type SnapshotStore interface {
	Load(ctx context.Context) (txns []domain.Transaction, found bool, err error)
	Save(ctx context.Context, txns []domain.Transaction) error
}

type ReversalMode string

const (
	// ReversalMirror undoes the real effect of the deleted record.
	ReversalMirror ReversalMode = "mirror"
	// ReversalLegacy debits deposits and credits everything else, including
	// the incoming side of a transfer.
	ReversalLegacy ReversalMode = "legacy"
)

func ParseReversalMode(s string) (ReversalMode, error) {
	switch ReversalMode(s) {
	case ReversalMirror, ReversalLegacy:
		return ReversalMode(s), nil
	case "":
		return ReversalMirror, nil
	}
	return "", fmt.Errorf("ParseReversalMode: unknown mode %q", s)
}

type Options struct {
	ValidateAmounts bool
	AtomicTransfers bool
	Reversal        ReversalMode
	// LoadDelay simulates fetch latency before the snapshot is read.
	LoadDelay time.Duration
	// Seed is used when the store has no snapshot yet.
	Seed  []domain.Transaction
	Now   func() time.Time
	NewID func() uuid.UUID
}

type loadState int

const (
	stateLoading loadState = iota
	stateReady
	stateFailed
)

type Service struct {
	balances BalanceAdjuster
	notifier Notifier
	store    SnapshotStore
	opts     Options

	mu      sync.RWMutex
	txns    []domain.Transaction
	state   loadState
	loadErr error
	// issued holds every id the collection has ever contained, deleted ones
	// included.
	issued map[uuid.UUID]struct{}
}

func NewService(balances BalanceAdjuster, notifier Notifier, store SnapshotStore, opts Options) *Service {
	if opts.Reversal == "" {
		opts.Reversal = ReversalMirror
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewID == nil {
		opts.NewID = uuid.New
	}
	return &Service{
		balances: balances,
		notifier: notifier,
		store:    store,
		opts:     opts,
		issued:   make(map[uuid.UUID]struct{}),
	}
}

// Load reads the snapshot into memory, falling back to the seed dataset. A
// failed load leaves the service unreadable until Load succeeds.
func (s *Service) Load(ctx context.Context) error {
	log := logging.FromContext(ctx)

	if s.opts.LoadDelay > 0 {
		timer := time.NewTimer(s.opts.LoadDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return s.failLoad(fmt.Errorf("Load: %w: %w", domain.ErrLoadFailed, ctx.Err()))
		case <-timer.C:
		}
	}

	txns, found, err := s.store.Load(ctx)
	if err != nil {
		log.Error("failed to load ledger snapshot", "error", err)
		return s.failLoad(fmt.Errorf("Load: %w: %w", domain.ErrLoadFailed, err))
	}
	if !found {
		txns = slices.Clone(s.opts.Seed)
		log.Info("no ledger snapshot found, using seed data", "transactions", len(txns))
	}

	s.mu.Lock()
	s.txns = txns
	for _, t := range txns {
		s.issued[t.ID] = struct{}{}
	}
	s.state = stateReady
	s.loadErr = nil
	s.mu.Unlock()

	log.Info("ledger loaded", "transactions", len(txns), "from_snapshot", found)
	return nil
}

func (s *Service) failLoad(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateFailed
	s.loadErr = err
	return err
}

// Err returns nil once the ledger is loaded, ErrNotReady while loading, and
// the load error after a failure.
func (s *Service) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readableLocked()
}

func (s *Service) Ready() bool {
	return s.Err() == nil
}

func (s *Service) readableLocked() error {
	switch s.state {
	case stateReady:
		return nil
	case stateFailed:
		return s.loadErr
	default:
		return domain.ErrNotReady
	}
}

// GetTransaction returns nil, nil when no record has the id.
func (s *Service) GetTransaction(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.readableLocked(); err != nil {
		return nil, fmt.Errorf("GetTransaction: %w", err)
	}
	i := s.indexLocked(id)
	if i < 0 {
		return nil, nil
	}
	t := s.txns[i]
	return &t, nil
}

func (s *Service) GetClientTransactions(_ context.Context, clientID string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.readableLocked(); err != nil {
		return nil, fmt.Errorf("GetClientTransactions: %w", err)
	}
	out := make([]domain.Transaction, 0)
	for _, t := range s.txns {
		if t.ClientID == clientID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Service) Transactions(_ context.Context) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.readableLocked(); err != nil {
		return nil, fmt.Errorf("Transactions: %w", err)
	}
	return slices.Clone(s.txns), nil
}

func (s *Service) indexLocked(id uuid.UUID) int {
	return slices.IndexFunc(s.txns, func(t domain.Transaction) bool { return t.ID == id })
}

// newIDLocked draws ids until one has never been used, so ids of deleted
// records are not handed out again.
func (s *Service) newIDLocked() uuid.UUID {
	for {
		id := s.opts.NewID()
		if _, used := s.issued[id]; !used {
			return id
		}
	}
}

func (s *Service) appendLocked(txns ...domain.Transaction) {
	for _, t := range txns {
		s.issued[t.ID] = struct{}{}
	}
	s.txns = append(s.txns, txns...)
}

func (s *Service) persistLocked(ctx context.Context) {
	if err := s.store.Save(ctx, slices.Clone(s.txns)); err != nil {
		logging.FromContext(ctx).Error("failed to save ledger snapshot", "error", err, "transactions", len(s.txns))
	}
}

func (s *Service) notify(ctx context.Context, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifySuccess(ctx, message); err != nil {
		logging.FromContext(ctx).Warn("failed to send notification", "error", err)
	}
}

func (s *Service) checkAmount(amount decimal.Decimal) error {
	if s.opts.ValidateAmounts && !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	return nil
}

func formatMoney(amount decimal.Decimal, currency domain.Currency) string {
	return amount.StringFixed(2) + " " + string(currency)
}
