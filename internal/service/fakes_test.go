package service

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/donation-holds/internal/model"
	"github.com/iliyamo/donation-holds/internal/queue"
	"github.com/iliyamo/donation-holds/internal/repository"
)

// fakeHoldRepo is an in-memory HoldRepository.  Like the real table it
// refuses a second ACTIVE row for the same item.
type fakeHoldRepo struct {
	mu     sync.Mutex
	holds  map[uint64]model.Hold
	nextID uint64

	expiredCalls int
	createErr    error
}

func newFakeHoldRepo(holds ...model.Hold) *fakeHoldRepo {
	r := &fakeHoldRepo{holds: make(map[uint64]model.Hold)}
	for _, h := range holds {
		r.nextID++
		if h.ID == 0 {
			h.ID = r.nextID
		}
		r.holds[h.ID] = h
	}
	return r
}

// WithTx restores the table as it was before fn when fn fails.  The
// restore is whole-table, so callers that fail must not run alongside
// writers to other items.
func (r *fakeHoldRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	before := maps.Clone(r.holds)
	r.mu.Unlock()

	if err := fn(ctx); err != nil {
		r.mu.Lock()
		r.holds = before
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *fakeHoldRepo) Create(_ context.Context, h *model.Hold) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if h.Status == model.HoldStatusActive {
		for _, existing := range r.holds {
			if existing.ItemID == h.ItemID && existing.Status == model.HoldStatusActive {
				return repository.ErrDuplicate
			}
		}
	}
	r.nextID++
	h.ID = r.nextID
	r.holds[h.ID] = *h
	return nil
}

func (r *fakeHoldRepo) GetByID(_ context.Context, id uint64) (model.Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.holds[id]
	if !ok {
		return model.Hold{}, repository.ErrNotFound
	}
	return h, nil
}

func (r *fakeHoldRepo) ListBlockingByItem(_ context.Context, itemID string) ([]model.Hold, error) {
	return r.filter(func(h model.Hold) bool {
		return h.ItemID == itemID && (h.Status == model.HoldStatusActive || h.Status == model.HoldStatusCompleted)
	}), nil
}

func (r *fakeHoldRepo) ListActiveByUser(_ context.Context, userID uint64) ([]model.Hold, error) {
	return r.filter(func(h model.Hold) bool {
		return h.UserID == userID && h.Status == model.HoldStatusActive
	}), nil
}

func (r *fakeHoldRepo) ListByUser(_ context.Context, userID uint64) ([]model.Hold, error) {
	return r.filter(func(h model.Hold) bool { return h.UserID == userID }), nil
}

func (r *fakeHoldRepo) ListBlocking(_ context.Context) ([]model.Hold, error) {
	return r.filter(func(h model.Hold) bool {
		return h.Status == model.HoldStatusActive || h.Status == model.HoldStatusCompleted
	}), nil
}

func (r *fakeHoldRepo) MarkExpired(_ context.Context, ids []uint64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expiredCalls++
	var n int64
	for _, id := range ids {
		h, ok := r.holds[id]
		if ok && h.Status == model.HoldStatusActive {
			h.Status = model.HoldStatusExpired
			r.holds[id] = h
			n++
		}
	}
	return n, nil
}

func (r *fakeHoldRepo) Close(_ context.Context, id uint64, to model.HoldStatus, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.holds[id]
	if !ok || h.Status != model.HoldStatusActive {
		return false, nil
	}
	h.Status = to
	switch to {
	case model.HoldStatusCompleted:
		h.CompletedAt = &at
	case model.HoldStatusCancelled:
		h.CancelledAt = &at
	}
	r.holds[id] = h
	return true, nil
}

func (r *fakeHoldRepo) stored(id uint64) model.Hold {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.holds[id]
}

func (r *fakeHoldRepo) countActive(itemID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, h := range r.holds {
		if h.ItemID == itemID && h.Status == model.HoldStatusActive {
			n++
		}
	}
	return n
}

// filter returns matches newest first, mirroring the SQL ordering.
func (r *fakeHoldRepo) filter(keep func(model.Hold) bool) []model.Hold {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Hold
	for _, h := range r.holds {
		if keep(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

type fakePickupRepo struct {
	mu      sync.Mutex
	records []model.PickupRecord
	err     error
}

func (r *fakePickupRepo) Create(_ context.Context, rec *model.PickupRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	rec.ID = uint64(len(r.records) + 1)
	r.records = append(r.records, *rec)
	return nil
}

func (r *fakePickupRepo) ListByUser(_ context.Context, userID uint64) ([]model.PickupRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.PickupRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].UserID == userID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]model.User
	nextID uint64
	// raceOnCreate makes Create report a duplicate after inserting, as if
	// another request had won.
	raceOnCreate bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, email, name string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[email]; ok {
		return model.User{}, repository.ErrDuplicate
	}
	r.nextID++
	u := model.User{ID: r.nextID, Email: email, Name: name}
	r.users[email] = u
	if r.raceOnCreate {
		return model.User{}, repository.ErrDuplicate
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.PickupCompletedEvent
	err    error
}

func (p *recordingPublisher) PublishPickupCompleted(_ context.Context, ev queue.PickupCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}
