package achievementhandlers

import (
	"context"

	"github.com/google/uuid"

	achievementservice "github.com/escrowhub/api/app/modules/achievement/application"
	achievementdomain "github.com/escrowhub/api/app/modules/achievement/domain"
)

type awardCall struct {
	UserID  uuid.UUID
	Trigger achievementdomain.Trigger
}

type FakeService struct {
	calls []awardCall

	CheckAndAwardFunc        func(ctx context.Context, userID uuid.UUID, trigger achievementdomain.Trigger) ([]achievementdomain.Unlocked, error)
	ListUserAchievementsFunc func(ctx context.Context, userID uuid.UUID) ([]achievementdomain.AchievementView, error)
}

var _ achievementservice.Service = (*FakeService)(nil)

func (f *FakeService) CheckAndAward(ctx context.Context, userID uuid.UUID, trigger achievementdomain.Trigger) ([]achievementdomain.Unlocked, error) {
	f.calls = append(f.calls, awardCall{UserID: userID, Trigger: trigger})
	if f.CheckAndAwardFunc != nil {
		return f.CheckAndAwardFunc(ctx, userID, trigger)
	}
	return nil, nil
}

func (f *FakeService) ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]achievementdomain.AchievementView, error) {
	if f.ListUserAchievementsFunc != nil {
		return f.ListUserAchievementsFunc(ctx, userID)
	}
	return []achievementdomain.AchievementView{}, nil
}

func (f *FakeService) Catalog() []achievementdomain.AchievementView {
	return []achievementdomain.AchievementView{{Key: "first_job", Name: "First Job", XP: 50}}
}
