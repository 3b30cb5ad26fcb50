package referralservice

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	referraldomain "github.com/escrowhub/api/app/modules/referral/domain"
	"github.com/escrowhub/api/pkg/results"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
	dashboardRecent        = 10
	dashboardTopReferrers  = 5
)

// GetStats summarizes the user's referral activity.
func (s *ReferralService) GetStats(ctx context.Context, userID uuid.UUID) (*referraldomain.Stats, error) {
	return execute(s, ctx, "GetStats", userID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*referraldomain.Stats, error], error) {
		if _, err := s.repo.Username(ctx, db, userID); err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*referraldomain.Stats](err)
			}
			return infraError[*referraldomain.Stats]("failed to get user", err)
		}

		clicks := 0
		rc, err := s.repo.GetCodeByUser(ctx, db, userID)
		switch {
		case err == nil:
			if clicks, err = s.repo.CountClicks(ctx, db, rc.Code); err != nil {
				return infraError[*referraldomain.Stats]("failed to count clicks", err)
			}
		case !errors.Is(err, marketplacedb.ErrNotFound):
			return infraError[*referraldomain.Stats]("failed to get referral code", err)
		}

		counts, err := s.repo.CountReferrals(ctx, db, userID)
		if err != nil {
			return infraError[*referraldomain.Stats]("failed to count referrals", err)
		}
		doc, err := s.stats.GetStats(ctx, db, userID)
		if err != nil {
			return infraError[*referraldomain.Stats]("failed to get stats", err)
		}

		st := referraldomain.BuildStats(s.policy, clicks, counts, s.loadRewards(ctx, userID, doc))
		return success(&st)
	})
}

// TopReferrers ranks users by active referrals. limit is clamped to
// [1, 100]; zero means 10.
func (s *ReferralService) TopReferrers(ctx context.Context, limit int) ([]referraldomain.LeaderboardEntry, error) {
	switch {
	case limit <= 0:
		limit = defaultLeaderboardSize
	case limit > maxLeaderboardSize:
		limit = maxLeaderboardSize
	}
	return execute(s, ctx, "TopReferrers", strconv.Itoa(limit), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]referraldomain.LeaderboardEntry, error], error) {
		entries, err := s.repo.TopReferrers(ctx, db, limit)
		if err != nil {
			return infraError[[]referraldomain.LeaderboardEntry]("failed to list top referrers", err)
		}
		for i := range entries {
			entries[i].Rank = i + 1
			entries[i].Tier = s.policy.Tier(entries[i].ActiveReferrals)
		}
		if entries == nil {
			entries = []referraldomain.LeaderboardEntry{}
		}
		return success(entries)
	})
}

// GetDashboard gathers everything the referral page shows. The link is
// created on first visit.
func (s *ReferralService) GetDashboard(ctx context.Context, userID uuid.UUID) (*referraldomain.Dashboard, error) {
	link, err := s.GetOrCreateLink(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	rewards, err := s.ListRewards(ctx, userID)
	if err != nil {
		return nil, err
	}
	top, err := s.TopReferrers(ctx, dashboardTopReferrers)
	if err != nil {
		return nil, err
	}

	recent, err := execute(s, ctx, "ListRecentReferrals", userID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]referraldomain.Referral, error], error) {
		rows, err := s.repo.ListReferrals(ctx, db, userID, dashboardRecent)
		if err != nil {
			return infraError[[]referraldomain.Referral]("failed to list referrals", err)
		}
		out := make([]referraldomain.Referral, 0, len(rows))
		for i := range rows {
			out = append(out, rows[i].ToDomain())
		}
		return success(out)
	})
	if err != nil {
		return nil, err
	}

	return &referraldomain.Dashboard{
		Link:            *link,
		Stats:           *stats,
		Tiers:           s.policy,
		Milestones:      referraldomain.Milestones(),
		RecentReferrals: recent,
		Rewards:         rewards,
		TopReferrers:    top,
	}, nil
}
