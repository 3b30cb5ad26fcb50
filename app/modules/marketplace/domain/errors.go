package marketplacedomain

import "errors"

var (
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidBadgeType   = errors.New("unknown verification badge type")
	ErrInvalidStatus      = errors.New("unknown job status")
	ErrInvalidTransition  = errors.New("job cannot move to the requested status")
	ErrInvalidResolution  = errors.New("dispute resolution must be upheld or dismissed")
	ErrJobNotOpen         = errors.New("job is not open for bids")
	ErrJobNotCompleted    = errors.New("job is not completed")
	ErrNotJobParty        = errors.New("user is not a party to this job")
	ErrOwnJob             = errors.New("clients cannot bid on their own job")
	ErrSelfEndorsement    = errors.New("users cannot endorse themselves")
	ErrAlreadyReviewed    = errors.New("job already reviewed by this user")
	ErrDisputeNotOpen     = errors.New("dispute is already resolved")
	ErrMilestoneReleased  = errors.New("milestone already released")
	ErrMissingField       = errors.New("required field is missing")
	ErrUserAlreadyExists  = errors.New("username or email already registered")
	ErrBidAlreadyExists   = errors.New("freelancer already bid on this job")
	ErrBidNotPending      = errors.New("bid is not pending")
	ErrNoFreelancer       = errors.New("job has no assigned freelancer")
	ErrFreelancerRequired = errors.New("only the assigned freelancer can do this")
)
