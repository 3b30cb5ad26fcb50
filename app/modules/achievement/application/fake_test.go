package achievementservice

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	achievementdomain "github.com/escrowhub/api/app/modules/achievement/domain"
	achievementdb "github.com/escrowhub/api/app/modules/achievement/infrastructure/repositories"
	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
)

// ------------------------
// Fake Achievement Repo
// ------------------------

type FakeAchievementRepo struct {
	mu    sync.Mutex
	trace []string
	rows  []achievementdb.UserAchievement

	StatisticsFunc        func(ctx context.Context, db bun.IDB, userID uuid.UUID) (achievementdomain.UserStatistics, error)
	InsertErrForKey       map[string]error
	ListErr               error
	UserHasAchievementErr error
}

func (f *FakeAchievementRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeAchievementRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

// Seed marks key as already unlocked for userID.
func (f *FakeAchievementRepo) Seed(row achievementdb.UserAchievement) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, row)
}

func (f *FakeAchievementRepo) UserHasAchievement(ctx context.Context, db bun.IDB, userID uuid.UUID, key string) (bool, error) {
	f.record("UserHasAchievement:" + key)
	if f.UserHasAchievementErr != nil {
		return false, f.UserHasAchievementErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.UserID == userID && r.AchievementKey == key {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeAchievementRepo) InsertAchievement(ctx context.Context, db bun.IDB, a *achievementdb.UserAchievement) (bool, error) {
	f.record("InsertAchievement:" + a.AchievementKey)
	if err := f.InsertErrForKey[a.AchievementKey]; err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.UserID == a.UserID && r.AchievementKey == a.AchievementKey {
			return false, nil
		}
	}
	f.rows = append(f.rows, *a)
	return true, nil
}

func (f *FakeAchievementRepo) ListUserAchievements(ctx context.Context, db bun.IDB, userID uuid.UUID) ([]achievementdb.UserAchievement, error) {
	f.record("ListUserAchievements")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []achievementdb.UserAchievement
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *FakeAchievementRepo) Statistics(ctx context.Context, db bun.IDB, userID uuid.UUID) (achievementdomain.UserStatistics, error) {
	f.record("Statistics")
	if f.StatisticsFunc != nil {
		return f.StatisticsFunc(ctx, db, userID)
	}
	return achievementdomain.UserStatistics{}, nil
}

var _ achievementdb.Repository = (*FakeAchievementRepo)(nil)

// ------------------------
// Fake Stats Repo
// ------------------------

type FakeStatsRepo struct {
	mu   sync.Mutex
	Docs map[uuid.UUID]marketplacedb.StatsDocument
	XP   map[uuid.UUID]int64

	GetStatsErr error
}

func NewFakeStatsRepo() *FakeStatsRepo {
	return &FakeStatsRepo{
		Docs: make(map[uuid.UUID]marketplacedb.StatsDocument),
		XP:   make(map[uuid.UUID]int64),
	}
}

func (f *FakeStatsRepo) GetStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (marketplacedb.StatsDocument, error) {
	if f.GetStatsErr != nil {
		return nil, f.GetStatsErr
	}
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
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Docs[userID] = doc
	return nil
}

func (f *FakeStatsRepo) AddXP(ctx context.Context, db bun.IDB, userID uuid.UUID, amount int64) (int64, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.XP[userID] += amount
	return f.XP[userID], marketplacedomain.LevelForXP(f.XP[userID]), nil
}

var _ marketplacedb.StatsRepository = (*FakeStatsRepo)(nil)
