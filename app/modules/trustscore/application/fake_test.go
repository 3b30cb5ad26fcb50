package trustscoreservice

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	trustscoredomain "github.com/escrowhub/api/app/modules/trustscore/domain"
	trustscorecache "github.com/escrowhub/api/app/modules/trustscore/infrastructure/cache"
	trustscoredb "github.com/escrowhub/api/app/modules/trustscore/infrastructure/repositories"
)

// ------------------------
// Fake Trust Score Repo
// ------------------------

type FakeTrustScoreRepo struct {
	mu    sync.Mutex
	trace []string

	ReviewStatsFunc             func(ctx context.Context, db bun.IDB, userID uuid.UUID) (trustscoredomain.ReviewStats, error)
	JobStatsFunc                func(ctx context.Context, db bun.IDB, userID uuid.UUID) (trustscoredomain.JobStats, error)
	BadgeTypesFunc              func(ctx context.Context, db bun.IDB, userID uuid.UUID) ([]marketplacedomain.BadgeType, error)
	EndorsementStatsFunc        func(ctx context.Context, db bun.IDB, userID uuid.UUID) (trustscoredomain.EndorsementStats, error)
	ActivityStatsFunc           func(ctx context.Context, db bun.IDB, userID uuid.UUID, since time.Time) (trustscoredomain.ActivityStats, error)
	DisputeStatsFunc            func(ctx context.Context, db bun.IDB, userID uuid.UUID) (trustscoredomain.DisputeStats, error)
	LastActiveAtFunc            func(ctx context.Context, db bun.IDB, userID uuid.UUID) (time.Time, error)
	ListInactiveScoredUsersFunc func(ctx context.Context, db bun.IDB, cutoff time.Time, after uuid.UUID, limit int) ([]uuid.UUID, error)
}

func (f *FakeTrustScoreRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeTrustScoreRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeTrustScoreRepo) ReviewStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (trustscoredomain.ReviewStats, error) {
	f.record("ReviewStats")
	if f.ReviewStatsFunc != nil {
		return f.ReviewStatsFunc(ctx, db, userID)
	}
	return trustscoredomain.ReviewStats{}, nil
}

func (f *FakeTrustScoreRepo) JobStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (trustscoredomain.JobStats, error) {
	f.record("JobStats")
	if f.JobStatsFunc != nil {
		return f.JobStatsFunc(ctx, db, userID)
	}
	return trustscoredomain.JobStats{}, nil
}

func (f *FakeTrustScoreRepo) BadgeTypes(ctx context.Context, db bun.IDB, userID uuid.UUID) ([]marketplacedomain.BadgeType, error) {
	f.record("BadgeTypes")
	if f.BadgeTypesFunc != nil {
		return f.BadgeTypesFunc(ctx, db, userID)
	}
	return nil, nil
}

func (f *FakeTrustScoreRepo) EndorsementStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (trustscoredomain.EndorsementStats, error) {
	f.record("EndorsementStats")
	if f.EndorsementStatsFunc != nil {
		return f.EndorsementStatsFunc(ctx, db, userID)
	}
	return trustscoredomain.EndorsementStats{}, nil
}

func (f *FakeTrustScoreRepo) ActivityStats(ctx context.Context, db bun.IDB, userID uuid.UUID, since time.Time) (trustscoredomain.ActivityStats, error) {
	f.record("ActivityStats")
	if f.ActivityStatsFunc != nil {
		return f.ActivityStatsFunc(ctx, db, userID, since)
	}
	return trustscoredomain.ActivityStats{Level: 1}, nil
}

func (f *FakeTrustScoreRepo) DisputeStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (trustscoredomain.DisputeStats, error) {
	f.record("DisputeStats")
	if f.DisputeStatsFunc != nil {
		return f.DisputeStatsFunc(ctx, db, userID)
	}
	return trustscoredomain.DisputeStats{}, nil
}

func (f *FakeTrustScoreRepo) LastActiveAt(ctx context.Context, db bun.IDB, userID uuid.UUID) (time.Time, error) {
	f.record("LastActiveAt")
	if f.LastActiveAtFunc != nil {
		return f.LastActiveAtFunc(ctx, db, userID)
	}
	return fixedNow, nil
}

func (f *FakeTrustScoreRepo) ListInactiveScoredUsers(ctx context.Context, db bun.IDB, cutoff time.Time, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	f.record("ListInactiveScoredUsers")
	if f.ListInactiveScoredUsersFunc != nil {
		return f.ListInactiveScoredUsersFunc(ctx, db, cutoff, after, limit)
	}
	return nil, nil
}

var _ trustscoredb.Repository = (*FakeTrustScoreRepo)(nil)

// ------------------------
// Fake Stats Repo
// ------------------------

// FakeStatsRepo keeps one stats document per user in memory.
type FakeStatsRepo struct {
	mu    sync.Mutex
	Docs  map[uuid.UUID]marketplacedb.StatsDocument
	Saves int

	SaveStatsErr error
}

func NewFakeStatsRepo() *FakeStatsRepo {
	return &FakeStatsRepo{Docs: make(map[uuid.UUID]marketplacedb.StatsDocument)}
}

func (f *FakeStatsRepo) GetStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (marketplacedb.StatsDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.Docs[userID]; ok {
		return d, nil
	}
	return marketplacedb.StatsDocument("{}"), nil
}

func (f *FakeStatsRepo) LockStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (marketplacedb.StatsDocument, error) {
	return f.GetStats(ctx, db, userID)
}

func (f *FakeStatsRepo) SaveStats(ctx context.Context, db bun.IDB, userID uuid.UUID, doc marketplacedb.StatsDocument) error {
	if f.SaveStatsErr != nil {
		return f.SaveStatsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Docs[userID] = doc
	f.Saves++
	return nil
}

func (f *FakeStatsRepo) AddXP(ctx context.Context, db bun.IDB, userID uuid.UUID, amount int64) (int64, int, error) {
	return amount, marketplacedomain.LevelForXP(amount), nil
}

var _ marketplacedb.StatsRepository = (*FakeStatsRepo)(nil)

// ------------------------
// Fake Cache
// ------------------------

type FakeCache struct {
	mu    sync.Mutex
	items map[uuid.UUID]*trustscoredomain.Result
	Gets  int
}

func NewFakeCache() *FakeCache {
	return &FakeCache{items: make(map[uuid.UUID]*trustscoredomain.Result)}
}

func (c *FakeCache) Get(ctx context.Context, userID uuid.UUID) (*trustscoredomain.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Gets++
	return c.items[userID], nil
}

func (c *FakeCache) Set(ctx context.Context, result *trustscoredomain.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[result.UserID] = result
	return nil
}

func (c *FakeCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, userID)
	return nil
}

var _ trustscorecache.Cache = (*FakeCache)(nil)
