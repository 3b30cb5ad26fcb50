package referraldb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	referraldomain "github.com/escrowhub/api/app/modules/referral/domain"
)

// ReferralCode is the one stable code a user shares.
type ReferralCode struct {
	bun.BaseModel `bun:"table:referral_codes,alias:rc"`

	UserID    uuid.UUID `bun:"user_id,pk,type:uuid" json:"user_id"`
	Code      string    `bun:"code,notnull,unique" json:"code"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

type ReferralClick struct {
	bun.BaseModel `bun:"table:referral_clicks,alias:rcl"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Code      string    `bun:"code,notnull" json:"code"`
	IPHash    string    `bun:"ip_hash,notnull" json:"ip_hash"`
	UserAgent string    `bun:"user_agent" json:"user_agent"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

type Referral struct {
	bun.BaseModel `bun:"table:referrals,alias:rf"`

	ID             uuid.UUID             `bun:"id,pk,type:uuid" json:"id"`
	ReferrerID     uuid.UUID             `bun:"referrer_id,notnull,type:uuid" json:"referrer_id"`
	ReferredUserID uuid.UUID             `bun:"referred_user_id,notnull,unique,type:uuid" json:"referred_user_id"`
	Code           string                `bun:"code,notnull" json:"code"`
	Status         referraldomain.Status `bun:"status,notnull" json:"status"`
	CreatedAt      time.Time             `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	ConvertedAt    *time.Time            `bun:"converted_at" json:"converted_at,omitempty"`

	ReferredName string `bun:"referred_name,scanonly" json:"-"`
}

// ToDomain converts the row for callers outside the package.
func (r *Referral) ToDomain() referraldomain.Referral {
	return referraldomain.Referral{
		ID:             r.ID,
		ReferrerID:     r.ReferrerID,
		ReferredUserID: r.ReferredUserID,
		ReferredName:   r.ReferredName,
		Code:           r.Code,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt,
		ConvertedAt:    r.ConvertedAt,
	}
}

type leaderboardRow struct {
	UserID          uuid.UUID `bun:"user_id"`
	Username        string    `bun:"username"`
	ActiveReferrals int       `bun:"active_referrals"`
}

type reportRow struct {
	ReferralID       uuid.UUID             `bun:"referral_id"`
	ReferrerID       uuid.UUID             `bun:"referrer_id"`
	ReferrerUsername string                `bun:"referrer_username"`
	ReferredUserID   uuid.UUID             `bun:"referred_user_id"`
	ReferredUsername string                `bun:"referred_username"`
	Code             string                `bun:"code"`
	Status           referraldomain.Status `bun:"status"`
	CreatedAt        time.Time             `bun:"created_at"`
	ConvertedAt      *time.Time            `bun:"converted_at"`
}
