package referralservice

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	referraldomain "github.com/escrowhub/api/app/modules/referral/domain"
	referraldb "github.com/escrowhub/api/app/modules/referral/infrastructure/repositories"
)

// ------------------------
// Fake Referral Repo
// ------------------------

// FakeReferralRepo is an in-memory Repository. Set the *Err fields to make
// the matching method fail.
type FakeReferralRepo struct {
	mu    sync.Mutex
	trace []string

	Users     map[uuid.UUID]string
	Codes     map[uuid.UUID]*referraldb.ReferralCode
	Clicks    []referraldb.ReferralClick
	Referrals []*referraldb.Referral

	CreateCodeErr     error
	ListSinceErr      error
	CountReferralsErr error
}

func NewFakeReferralRepo() *FakeReferralRepo {
	return &FakeReferralRepo{
		Users: make(map[uuid.UUID]string),
		Codes: make(map[uuid.UUID]*referraldb.ReferralCode),
	}
}

func (f *FakeReferralRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeReferralRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

func (f *FakeReferralRepo) Username(ctx context.Context, db bun.IDB, userID uuid.UUID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Username")
	name, ok := f.Users[userID]
	if !ok {
		return "", marketplacedb.ErrNotFound
	}
	return name, nil
}

func (f *FakeReferralRepo) GetCodeByUser(ctx context.Context, db bun.IDB, userID uuid.UUID) (*referraldb.ReferralCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetCodeByUser")
	c, ok := f.Codes[userID]
	if !ok {
		return nil, marketplacedb.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *FakeReferralRepo) GetCode(ctx context.Context, db bun.IDB, code string) (*referraldb.ReferralCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetCode")
	for _, c := range f.Codes {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, marketplacedb.ErrNotFound
}

func (f *FakeReferralRepo) CreateCode(ctx context.Context, db bun.IDB, c *referraldb.ReferralCode) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateCode")
	if f.CreateCodeErr != nil {
		return false, f.CreateCodeErr
	}
	if _, ok := f.Codes[c.UserID]; ok {
		return false, nil
	}
	for _, existing := range f.Codes {
		if existing.Code == c.Code {
			return false, nil
		}
	}
	cp := *c
	f.Codes[c.UserID] = &cp
	return true, nil
}

func (f *FakeReferralRepo) InsertClick(ctx context.Context, db bun.IDB, click *referraldb.ReferralClick) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("InsertClick")
	f.Clicks = append(f.Clicks, *click)
	return nil
}

func (f *FakeReferralRepo) CountClicks(ctx context.Context, db bun.IDB, code string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CountClicks")
	n := 0
	for _, c := range f.Clicks {
		if c.Code == code {
			n++
		}
	}
	return n, nil
}

func (f *FakeReferralRepo) CreateReferral(ctx context.Context, db bun.IDB, r *referraldb.Referral) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateReferral")
	for _, existing := range f.Referrals {
		if existing.ReferredUserID == r.ReferredUserID {
			return false, nil
		}
	}
	cp := *r
	f.Referrals = append(f.Referrals, &cp)
	return true, nil
}

func (f *FakeReferralRepo) GetReferralByReferredForUpdate(ctx context.Context, db bun.IDB, referredUserID uuid.UUID) (*referraldb.Referral, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetReferralByReferredForUpdate")
	for _, r := range f.Referrals {
		if r.ReferredUserID == referredUserID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, marketplacedb.ErrNotFound
}

func (f *FakeReferralRepo) ActivateReferral(ctx context.Context, db bun.IDB, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ActivateReferral")
	for _, r := range f.Referrals {
		if r.ID == id && r.Status == referraldomain.StatusPending {
			r.Status = referraldomain.StatusActive
			t := at
			r.ConvertedAt = &t
			return nil
		}
	}
	return marketplacedb.ErrNoRowsAffected
}

func (f *FakeReferralRepo) CountReferrals(ctx context.Context, db bun.IDB, referrerID uuid.UUID) (referraldomain.Counts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CountReferrals")
	if f.CountReferralsErr != nil {
		return referraldomain.Counts{}, f.CountReferralsErr
	}
	var c referraldomain.Counts
	for _, r := range f.Referrals {
		if r.ReferrerID != referrerID {
			continue
		}
		c.Signups++
		if r.Status == referraldomain.StatusActive {
			c.Active++
		}
	}
	return c, nil
}

func (f *FakeReferralRepo) ListReferrals(ctx context.Context, db bun.IDB, referrerID uuid.UUID, limit int) ([]referraldb.Referral, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListReferrals")
	var out []referraldb.Referral
	for i := len(f.Referrals) - 1; i >= 0 && len(out) < limit; i-- {
		r := *f.Referrals[i]
		if r.ReferrerID == referrerID {
			r.ReferredName = f.Users[r.ReferredUserID]
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *FakeReferralRepo) TopReferrers(ctx context.Context, db bun.IDB, limit int) ([]referraldomain.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("TopReferrers")
	active := map[uuid.UUID]int{}
	for _, r := range f.Referrals {
		if r.Status == referraldomain.StatusActive {
			active[r.ReferrerID]++
		}
	}
	var out []referraldomain.LeaderboardEntry
	for id, n := range active {
		out = append(out, referraldomain.LeaderboardEntry{UserID: id, Username: f.Users[id], ActiveReferrals: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ActiveReferrals != out[j].ActiveReferrals {
			return out[i].ActiveReferrals > out[j].ActiveReferrals
		}
		return out[i].Username < out[j].Username
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *FakeReferralRepo) ListReferralsSince(ctx context.Context, db bun.IDB, since time.Time) ([]referraldomain.ReportRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListReferralsSince")
	if f.ListSinceErr != nil {
		return nil, f.ListSinceErr
	}
	var out []referraldomain.ReportRow
	for _, r := range f.Referrals {
		if r.CreatedAt.Before(since) {
			continue
		}
		out = append(out, referraldomain.ReportRow{
			ReferralID:       r.ID,
			ReferrerID:       r.ReferrerID,
			ReferrerUsername: f.Users[r.ReferrerID],
			ReferredUserID:   r.ReferredUserID,
			ReferredUsername: f.Users[r.ReferredUserID],
			Code:             r.Code,
			Status:           r.Status,
			CreatedAt:        r.CreatedAt,
			ConvertedAt:      r.ConvertedAt,
		})
	}
	return out, nil
}

var _ referraldb.Repository = (*FakeReferralRepo)(nil)

// ------------------------
// Fake Stats Repo
// ------------------------

type FakeStatsRepo struct {
	mu    sync.Mutex
	Docs  map[uuid.UUID]marketplacedb.StatsDocument
	XP    map[uuid.UUID]int64
	Locks int
}

func NewFakeStatsRepo() *FakeStatsRepo {
	return &FakeStatsRepo{
		Docs: make(map[uuid.UUID]marketplacedb.StatsDocument),
		XP:   make(map[uuid.UUID]int64),
	}
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
	f.mu.Lock()
	f.Locks++
	f.mu.Unlock()
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
