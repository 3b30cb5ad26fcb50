package marketplaceservice

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
)

type RegisterUserRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
	ReferralCode string `json:"referral_code,omitempty"`
}

type CreateJobRequest struct {
	ClientID    uuid.UUID       `json:"client_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Budget      decimal.Decimal `json:"budget"`
}

type PlaceBidRequest struct {
	JobID        uuid.UUID       `json:"job_id"`
	FreelancerID uuid.UUID       `json:"freelancer_id"`
	Amount       decimal.Decimal `json:"amount"`
	Message      string          `json:"message"`
}

type AddMilestoneRequest struct {
	ClientID uuid.UUID       `json:"client_id"`
	JobID    uuid.UUID       `json:"job_id"`
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"`
	Position int             `json:"position"`
}

type SubmitReviewRequest struct {
	JobID      uuid.UUID `json:"job_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
}

type OpenDisputeRequest struct {
	JobID    uuid.UUID `json:"job_id"`
	RaisedBy uuid.UUID `json:"raised_by"`
	Reason   string    `json:"reason"`
}

type AddEndorsementRequest struct {
	UserID     uuid.UUID `json:"user_id"`
	EndorserID uuid.UUID `json:"endorser_id"`
	Skill      string    `json:"skill"`
	Rating     int       `json:"rating"`
	Verified   bool      `json:"verified"`
}

type CreateFAQRequest struct {
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Position int    `json:"position"`
}

// JobDetails is a job with its bids and milestones.
type JobDetails struct {
	Job        *marketplacedb.Job        `json:"job"`
	Bids       []marketplacedb.Bid       `json:"bids"`
	Milestones []marketplacedb.Milestone `json:"milestones"`
}
