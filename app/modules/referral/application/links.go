package referralservice

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	referraldomain "github.com/escrowhub/api/app/modules/referral/domain"
	referraldb "github.com/escrowhub/api/app/modules/referral/infrastructure/repositories"
	"github.com/escrowhub/api/pkg/results"
)

const (
	maxCodeAttempts = 5
	maxUserAgentLen = 512
)

var errCodeSpaceExhausted = errors.New("could not allocate a unique referral code")

// GetOrCreateLink returns the user's code, creating it on first use. The code
// never changes afterwards.
func (s *ReferralService) GetOrCreateLink(ctx context.Context, userID uuid.UUID) (*referraldomain.Link, error) {
	return execute(s, ctx, "GetOrCreateLink", userID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*referraldomain.Link, error], error) {
		existing, err := s.repo.GetCodeByUser(ctx, db, userID)
		if err == nil {
			return success(s.linkFor(existing))
		}
		if !errors.Is(err, marketplacedb.ErrNotFound) {
			return infraError[*referraldomain.Link]("failed to get referral code", err)
		}

		username, err := s.repo.Username(ctx, db, userID)
		if err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*referraldomain.Link](err)
			}
			return infraError[*referraldomain.Link]("failed to get user", err)
		}

		for attempt := 0; attempt < maxCodeAttempts; attempt++ {
			code, err := s.generateCode(username)
			if err != nil {
				return infraError[*referraldomain.Link]("failed to generate referral code", err)
			}
			rc := &referraldb.ReferralCode{UserID: userID, Code: code, CreatedAt: s.now()}
			created, err := s.repo.CreateCode(ctx, db, rc)
			if err != nil {
				return infraError[*referraldomain.Link]("failed to create referral code", err)
			}
			if created {
				return success(s.linkFor(rc))
			}
			// Either a concurrent request created the user's code or the
			// random part collided with someone else's.
			if existing, err := s.repo.GetCodeByUser(ctx, db, userID); err == nil {
				return success(s.linkFor(existing))
			}
		}
		return infraError[*referraldomain.Link]("failed to create referral code", errCodeSpaceExhausted)
	})
}

// RecordClick stores one visit of a referral link. The IP is kept only as a
// SHA-256 digest.
func (s *ReferralService) RecordClick(ctx context.Context, code, ip, userAgent string) error {
	_, err := execute(s, ctx, "RecordClick", code, func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
		normalized, err := referraldomain.NormalizeCode(code)
		if err != nil {
			return failure[struct{}](err)
		}
		if _, err := s.repo.GetCode(ctx, db, normalized); err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[struct{}](referraldomain.ErrUnknownCode)
			}
			return infraError[struct{}]("failed to get referral code", err)
		}
		if len(userAgent) > maxUserAgentLen {
			userAgent = userAgent[:maxUserAgentLen]
		}
		click := &referraldb.ReferralClick{
			ID:        s.newID(),
			Code:      normalized,
			IPHash:    HashIP(ip),
			UserAgent: userAgent,
			CreatedAt: s.now(),
		}
		if err := s.repo.InsertClick(ctx, db, click); err != nil {
			return infraError[struct{}]("failed to record click", err)
		}
		return success(struct{}{})
	})
	return err
}

// HashIP returns the hex SHA-256 digest stored in place of a client address.
func HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

// RecordSignup links a newly registered user to the owner of code.
func (s *ReferralService) RecordSignup(ctx context.Context, code string, referredUserID uuid.UUID) (*referraldomain.Referral, error) {
	return execute(s, ctx, "RecordSignup", referredUserID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*referraldomain.Referral, error], error) {
		normalized, err := referraldomain.NormalizeCode(code)
		if err != nil {
			return failure[*referraldomain.Referral](err)
		}
		rc, err := s.repo.GetCode(ctx, db, normalized)
		if err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*referraldomain.Referral](referraldomain.ErrUnknownCode)
			}
			return infraError[*referraldomain.Referral]("failed to get referral code", err)
		}
		if rc.UserID == referredUserID {
			return failure[*referraldomain.Referral](referraldomain.ErrSelfReferral)
		}
		if _, err := s.repo.Username(ctx, db, referredUserID); err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*referraldomain.Referral](err)
			}
			return infraError[*referraldomain.Referral]("failed to get user", err)
		}

		ref := &referraldb.Referral{
			ID:             s.newID(),
			ReferrerID:     rc.UserID,
			ReferredUserID: referredUserID,
			Code:           rc.Code,
			Status:         referraldomain.StatusPending,
			CreatedAt:      s.now(),
		}
		created, err := s.repo.CreateReferral(ctx, db, ref)
		if err != nil {
			return infraError[*referraldomain.Referral]("failed to create referral", err)
		}
		if !created {
			return failure[*referraldomain.Referral](referraldomain.ErrAlreadyReferred)
		}
		out := ref.ToDomain()
		return success(&out)
	})
}
