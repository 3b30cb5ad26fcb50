package referralhandlers

import (
	"context"
	"errors"

	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	referraldomain "github.com/escrowhub/api/app/modules/referral/domain"
	marketplaceevents "github.com/escrowhub/api/pkg/events/marketplace"
	"github.com/escrowhub/api/pkg/handlerwrapper"
	"github.com/escrowhub/api/pkg/observability/attr"
)

// signupRejections are outcomes of a bad or repeated referral code. They are
// logged and the message is acknowledged.
var signupRejections = []error{
	referraldomain.ErrInvalidCode,
	referraldomain.ErrUnknownCode,
	referraldomain.ErrSelfReferral,
	referraldomain.ErrAlreadyReferred,
	marketplacedb.ErrNotFound,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// HandleUserRegistered records the signup when the user registered with a
// referral code.
func (h *ReferralHandlers) HandleUserRegistered(ctx context.Context, payload *marketplaceevents.UserRegisteredPayloadV1) ([]handlerwrapper.Result, error) {
	if payload.ReferralCode == "" {
		return nil, nil
	}
	if _, err := h.service.RecordSignup(ctx, payload.ReferralCode, payload.UserID); err != nil {
		if isAny(err, signupRejections) {
			h.logger.WarnContext(ctx, "Referral signup rejected",
				attr.ExtractCorrelationID(ctx),
				attr.UserID(payload.UserID),
				attr.String("code", payload.ReferralCode),
				attr.Error(err),
			)
			return nil, nil
		}
		return nil, err
	}
	return nil, nil
}

// HandleJobCompleted converts the freelancer's referral on their first
// completed job. Later jobs find the referral already active and change
// nothing.
func (h *ReferralHandlers) HandleJobCompleted(ctx context.Context, payload *marketplaceevents.JobCompletedPayloadV1) ([]handlerwrapper.Result, error) {
	outcome, err := h.service.RecordConversion(ctx, payload.FreelancerID)
	if err != nil {
		if errors.Is(err, referraldomain.ErrNoReferral) {
			return nil, nil
		}
		return nil, err
	}
	if outcome.Converted {
		h.logger.InfoContext(ctx, "Referral converted",
			attr.ExtractCorrelationID(ctx),
			attr.UserID(outcome.Referral.ReferrerID),
			attr.Int("active_referrals", outcome.ActiveReferrals),
			attr.String("tier", string(outcome.Tier)),
		)
	}
	return nil, nil
}
