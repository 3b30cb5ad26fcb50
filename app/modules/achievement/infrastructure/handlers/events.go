package achievementhandlers

import (
	"context"
	"errors"

	"github.com/google/uuid"

	achievementdomain "github.com/escrowhub/api/app/modules/achievement/domain"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	marketplaceevents "github.com/escrowhub/api/pkg/events/marketplace"
	referralevents "github.com/escrowhub/api/pkg/events/referral"
	trustscoreevents "github.com/escrowhub/api/pkg/events/trustscore"
	"github.com/escrowhub/api/pkg/handlerwrapper"
	"github.com/escrowhub/api/pkg/observability/attr"
)

func (h *AchievementHandlers) evaluate(ctx context.Context, userID uuid.UUID, trigger achievementdomain.Trigger) ([]handlerwrapper.Result, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	unlocked, err := h.service.CheckAndAward(ctx, userID, trigger)
	if err != nil {
		if errors.Is(err, marketplacedb.ErrNotFound) {
			h.logger.WarnContext(ctx, "Skipping achievements for unknown user",
				attr.ExtractCorrelationID(ctx),
				attr.UserID(userID),
				attr.String("trigger", string(trigger)),
			)
			return nil, nil
		}
		return nil, err
	}
	if len(unlocked) > 0 {
		h.logger.InfoContext(ctx, "Achievements unlocked",
			attr.ExtractCorrelationID(ctx),
			attr.UserID(userID),
			attr.Int("count", len(unlocked)),
		)
	}
	return nil, nil
}

// HandleJobCompleted evaluates the freelancer, who is the one credited with
// the job.
func (h *AchievementHandlers) HandleJobCompleted(ctx context.Context, payload *marketplaceevents.JobCompletedPayloadV1) ([]handlerwrapper.Result, error) {
	return h.evaluate(ctx, payload.FreelancerID, achievementdomain.TriggerJobCompleted)
}

func (h *AchievementHandlers) HandleReviewSubmitted(ctx context.Context, payload *marketplaceevents.ReviewSubmittedPayloadV1) ([]handlerwrapper.Result, error) {
	return h.evaluate(ctx, payload.RevieweeID, achievementdomain.TriggerReviewReceived)
}

func (h *AchievementHandlers) HandleBadgeVerified(ctx context.Context, payload *marketplaceevents.BadgeVerifiedPayloadV1) ([]handlerwrapper.Result, error) {
	return h.evaluate(ctx, payload.UserID, achievementdomain.TriggerBadgeVerified)
}

func (h *AchievementHandlers) HandleUserLogin(ctx context.Context, payload *marketplaceevents.UserLoginPayloadV1) ([]handlerwrapper.Result, error) {
	return h.evaluate(ctx, payload.UserID, achievementdomain.TriggerUserLogin)
}

func (h *AchievementHandlers) HandleReferralConverted(ctx context.Context, payload *referralevents.ReferralConvertedPayloadV1) ([]handlerwrapper.Result, error) {
	return h.evaluate(ctx, payload.ReferrerID, achievementdomain.TriggerReferralConverted)
}

func (h *AchievementHandlers) HandleTrustScoreCalculated(ctx context.Context, payload *trustscoreevents.TrustScoreCalculatedPayloadV1) ([]handlerwrapper.Result, error) {
	return h.evaluate(ctx, payload.UserID, achievementdomain.TriggerTrustScoreUpdated)
}
