package referraldomain

import "errors"

var (
	ErrInvalidCode          = errors.New("invalid referral code")
	ErrUnknownCode          = errors.New("unknown referral code")
	ErrSelfReferral         = errors.New("users cannot refer themselves")
	ErrAlreadyReferred      = errors.New("user was already referred")
	ErrNoReferral           = errors.New("user was not referred")
	ErrRewardNotFound       = errors.New("reward not found")
	ErrRewardAlreadyClaimed = errors.New("reward already claimed")
	ErrUnknownTierPolicy    = errors.New("unknown referral tier policy")
)
