package trustscorehandlers

import (
	"context"
	"errors"

	"github.com/google/uuid"

	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	marketplaceevents "github.com/escrowhub/api/pkg/events/marketplace"
	trustscoreevents "github.com/escrowhub/api/pkg/events/trustscore"
	"github.com/escrowhub/api/pkg/handlerwrapper"
	"github.com/escrowhub/api/pkg/observability/attr"
)

// recalculate refreshes the score of one user. Unknown users are skipped; any
// other failure is returned so the message is redelivered.
func (h *TrustScoreHandlers) recalculate(ctx context.Context, userID uuid.UUID) ([]handlerwrapper.Result, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	if _, err := h.service.CalculateTrustScore(ctx, userID); err != nil {
		if errors.Is(err, marketplacedb.ErrNotFound) {
			h.logger.WarnContext(ctx, "Skipping trust score for unknown user",
				attr.ExtractCorrelationID(ctx),
				attr.UserID(userID),
			)
			return nil, nil
		}
		return nil, err
	}
	return nil, nil
}

// requestRecalculation fans an event touching several users out into one
// message per user.
func requestRecalculation(reason string, userIDs ...uuid.UUID) []handlerwrapper.Result {
	out := make([]handlerwrapper.Result, 0, len(userIDs))
	for _, id := range userIDs {
		if id == uuid.Nil {
			continue
		}
		out = append(out, handlerwrapper.Result{
			Topic: trustscoreevents.RecalculationRequestedV1,
			Payload: &trustscoreevents.RecalculationRequestedPayloadV1{
				UserID: id,
				Reason: reason,
			},
		})
	}
	return out
}

func (h *TrustScoreHandlers) HandleRecalculationRequested(ctx context.Context, payload *trustscoreevents.RecalculationRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	return h.recalculate(ctx, payload.UserID)
}

func (h *TrustScoreHandlers) HandleReviewSubmitted(ctx context.Context, payload *marketplaceevents.ReviewSubmittedPayloadV1) ([]handlerwrapper.Result, error) {
	return h.recalculate(ctx, payload.RevieweeID)
}

func (h *TrustScoreHandlers) HandleJobCompleted(ctx context.Context, payload *marketplaceevents.JobCompletedPayloadV1) ([]handlerwrapper.Result, error) {
	return requestRecalculation(marketplaceevents.JobCompletedV1, payload.ClientID, payload.FreelancerID), nil
}

func (h *TrustScoreHandlers) HandleJobCancelled(ctx context.Context, payload *marketplaceevents.JobCancelledPayloadV1) ([]handlerwrapper.Result, error) {
	ids := []uuid.UUID{payload.ClientID}
	if payload.FreelancerID != nil {
		ids = append(ids, *payload.FreelancerID)
	}
	return requestRecalculation(marketplaceevents.JobCancelledV1, ids...), nil
}

// HandleDisputeResolved only affects the user the dispute was raised against.
func (h *TrustScoreHandlers) HandleDisputeResolved(ctx context.Context, payload *marketplaceevents.DisputeResolvedPayloadV1) ([]handlerwrapper.Result, error) {
	if !marketplacedomain.DisputeStatus(payload.Status).IsResolution() {
		return nil, nil
	}
	return h.recalculate(ctx, payload.AgainstUserID)
}

func (h *TrustScoreHandlers) HandleBadgeVerified(ctx context.Context, payload *marketplaceevents.BadgeVerifiedPayloadV1) ([]handlerwrapper.Result, error) {
	return h.recalculate(ctx, payload.UserID)
}

func (h *TrustScoreHandlers) HandleEndorsementAdded(ctx context.Context, payload *marketplaceevents.EndorsementAddedPayloadV1) ([]handlerwrapper.Result, error) {
	return h.recalculate(ctx, payload.UserID)
}

func (h *TrustScoreHandlers) HandleUserLogin(ctx context.Context, payload *marketplaceevents.UserLoginPayloadV1) ([]handlerwrapper.Result, error) {
	return h.recalculate(ctx, payload.UserID)
}
