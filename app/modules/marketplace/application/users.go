package marketplaceservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	marketplaceevents "github.com/escrowhub/api/pkg/events/marketplace"
	"github.com/escrowhub/api/pkg/results"
)

// RegisterUser creates an account and announces it, including the referral
// code the user signed up with.
func (s *MarketplaceService) RegisterUser(ctx context.Context, req RegisterUserRequest) (*marketplacedb.User, error) {
	var event *marketplaceevents.UserRegisteredPayloadV1

	user, err := execute(s, ctx, "RegisterUser", req.Username, func(ctx context.Context, db bun.IDB) (results.OperationResult[*marketplacedb.User, error], error) {
		username := strings.TrimSpace(req.Username)
		email := strings.TrimSpace(strings.ToLower(req.Email))
		if username == "" || email == "" {
			return failure[*marketplacedb.User](marketplacedomain.ErrMissingField)
		}

		now := s.now()
		user := &marketplacedb.User{
			ID:           uuid.New(),
			Username:     username,
			Email:        email,
			DisplayName:  strings.TrimSpace(req.DisplayName),
			Level:        1,
			LastActiveAt: now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repo.CreateUser(ctx, db, user); err != nil {
			if errors.Is(err, marketplacedb.ErrDuplicate) {
				return failure[*marketplacedb.User](marketplacedomain.ErrUserAlreadyExists)
			}
			return infraError[*marketplacedb.User]("failed to create user", err)
		}

		event = &marketplaceevents.UserRegisteredPayloadV1{
			UserID:       user.ID,
			Username:     user.Username,
			ReferralCode: strings.TrimSpace(req.ReferralCode),
			RegisteredAt: now,
		}
		return success(user)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, pendingEvent{topic: marketplaceevents.UserRegisteredV1, payload: event})
	return user, nil
}

func (s *MarketplaceService) GetUser(ctx context.Context, userID uuid.UUID) (*marketplacedb.User, error) {
	return execute(s, ctx, "GetUser", userID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*marketplacedb.User, error], error) {
		user, err := s.repo.GetUser(ctx, db, userID)
		if err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*marketplacedb.User](err)
			}
			return infraError[*marketplacedb.User]("failed to get user", err)
		}
		return success(user)
	})
}

// RecordLogin advances the daily login streak and marks the user active.
func (s *MarketplaceService) RecordLogin(ctx context.Context, userID uuid.UUID) (*marketplacedb.User, error) {
	user, err := execute(s, ctx, "RecordLogin", userID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*marketplacedb.User, error], error) {
		user, err := s.repo.GetUser(ctx, db, userID)
		if err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*marketplacedb.User](err)
			}
			return infraError[*marketplacedb.User]("failed to get user", err)
		}

		now := s.now()
		streak := marketplacedomain.NextLoginStreak(user.LoginStreak, user.LastLoginAt, now)
		if err := s.repo.UpdateLogin(ctx, db, userID, streak, now); err != nil {
			return infraError[*marketplacedb.User]("failed to record login", err)
		}

		user.LoginStreak = streak
		user.LastLoginAt = &now
		user.LastActiveAt = now
		return success(user)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, pendingEvent{
		topic: marketplaceevents.UserLoginV1,
		payload: &marketplaceevents.UserLoginPayloadV1{
			UserID:      user.ID,
			LoginStreak: user.LoginStreak,
			LoggedInAt:  *user.LastLoginAt,
		},
	})
	return user, nil
}

// touch marks users as active at the current time.
func (s *MarketplaceService) touch(ctx context.Context, db bun.IDB, userIDs ...uuid.UUID) error {
	now := s.now()
	for _, id := range userIDs {
		if err := s.repo.TouchActivity(ctx, db, id, now); err != nil {
			return fmt.Errorf("failed to update activity of %s: %w", id, err)
		}
	}
	return nil
}
