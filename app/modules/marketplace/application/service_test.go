package marketplaceservice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	marketplaceevents "github.com/escrowhub/api/pkg/events/marketplace"
	"github.com/escrowhub/api/pkg/observability"
)

type recordingPublisher struct {
	topics   []string
	messages []*message.Message
}

func (p *recordingPublisher) Publish(topic string, msgs ...*message.Message) error {
	for _, m := range msgs {
		p.topics = append(p.topics, topic)
		p.messages = append(p.messages, m)
	}
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(repo *FakeMarketplaceRepo, pub *recordingPublisher) *MarketplaceService {
	var publisher message.Publisher
	if pub != nil {
		publisher = pub
	}
	svc := NewMarketplaceService(repo, publisher, slog.Default(), observability.NewNoop(), nil, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestRegisterUser(t *testing.T) {
	tests := []struct {
		name        string
		req         RegisterUserRequest
		setupRepo   func(*FakeMarketplaceRepo)
		wantErr     error
		wantPublish bool
	}{
		{
			name:        "registers and announces referral code",
			req:         RegisterUserRequest{Username: " alice ", Email: "Alice@Example.com", ReferralCode: "ALIC7KQ2MP"},
			setupRepo:   func(f *FakeMarketplaceRepo) {},
			wantPublish: true,
		},
		{
			name:      "missing email",
			req:       RegisterUserRequest{Username: "alice"},
			setupRepo: func(f *FakeMarketplaceRepo) {},
			wantErr:   marketplacedomain.ErrMissingField,
		},
		{
			name: "duplicate username",
			req:  RegisterUserRequest{Username: "alice", Email: "a@example.com"},
			setupRepo: func(f *FakeMarketplaceRepo) {
				f.CreateUserFunc = func(ctx context.Context, db bun.IDB, user *marketplacedb.User) error {
					return marketplacedb.ErrDuplicate
				}
			},
			wantErr: marketplacedomain.ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeMarketplaceRepo()
			tt.setupRepo(repo)
			pub := &recordingPublisher{}
			svc := newTestService(repo, pub)

			user, err := svc.RegisterUser(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, pub.topics)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "alice", user.Username)
			assert.Equal(t, "alice@example.com", user.Email)

			require.Len(t, pub.topics, 1)
			assert.Equal(t, marketplaceevents.UserRegisteredV1, pub.topics[0])
			var payload marketplaceevents.UserRegisteredPayloadV1
			require.NoError(t, json.Unmarshal(pub.messages[0].Payload, &payload))
			assert.Equal(t, user.ID, payload.UserID)
			assert.Equal(t, "ALIC7KQ2MP", payload.ReferralCode)
		})
	}
}

func TestRecordLogin(t *testing.T) {
	yesterday := fixedNow.Add(-20 * time.Hour)
	earlierToday := fixedNow.Add(-2 * time.Hour)
	lastWeek := fixedNow.AddDate(0, 0, -7)

	tests := []struct {
		name       string
		lastLogin  *time.Time
		streak     int
		wantStreak int
	}{
		{name: "first login", lastLogin: nil, streak: 0, wantStreak: 1},
		{name: "consecutive day", lastLogin: &yesterday, streak: 4, wantStreak: 5},
		{name: "same day", lastLogin: &earlierToday, streak: 4, wantStreak: 4},
		{name: "gap resets", lastLogin: &lastWeek, streak: 9, wantStreak: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID := uuid.New()
			repo := NewFakeMarketplaceRepo()
			repo.GetUserFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.User, error) {
				return &marketplacedb.User{ID: userID, LoginStreak: tt.streak, LastLoginAt: tt.lastLogin}, nil
			}
			var savedStreak int
			repo.UpdateLoginFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID, streak int, at time.Time) error {
				savedStreak = streak
				return nil
			}
			pub := &recordingPublisher{}
			svc := newTestService(repo, pub)

			user, err := svc.RecordLogin(context.Background(), userID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStreak, user.LoginStreak)
			assert.Equal(t, tt.wantStreak, savedStreak)
			assert.Equal(t, []string{marketplaceevents.UserLoginV1}, pub.topics)
		})
	}
}

func TestPlaceBid(t *testing.T) {
	clientID := uuid.New()
	freelancerID := uuid.New()
	jobID := uuid.New()

	openJob := func(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Job, error) {
		return &marketplacedb.Job{ID: jobID, ClientID: clientID, Status: marketplacedomain.JobStatusOpen}, nil
	}

	tests := []struct {
		name      string
		req       PlaceBidRequest
		setupRepo func(*FakeMarketplaceRepo)
		wantErr   error
	}{
		{
			name: "places bid",
			req:  PlaceBidRequest{JobID: jobID, FreelancerID: freelancerID, Amount: decimal.NewFromInt(400)},
			setupRepo: func(f *FakeMarketplaceRepo) {
				f.GetJobFunc = openJob
			},
		},
		{
			name:      "non-positive amount",
			req:       PlaceBidRequest{JobID: jobID, FreelancerID: freelancerID, Amount: decimal.Zero},
			setupRepo: func(f *FakeMarketplaceRepo) { f.GetJobFunc = openJob },
			wantErr:   marketplacedomain.ErrInvalidAmount,
		},
		{
			name:      "client bids on own job",
			req:       PlaceBidRequest{JobID: jobID, FreelancerID: clientID, Amount: decimal.NewFromInt(10)},
			setupRepo: func(f *FakeMarketplaceRepo) { f.GetJobFunc = openJob },
			wantErr:   marketplacedomain.ErrOwnJob,
		},
		{
			name: "job already started",
			req:  PlaceBidRequest{JobID: jobID, FreelancerID: freelancerID, Amount: decimal.NewFromInt(10)},
			setupRepo: func(f *FakeMarketplaceRepo) {
				f.GetJobFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Job, error) {
					return &marketplacedb.Job{ID: jobID, ClientID: clientID, Status: marketplacedomain.JobStatusInProgress}, nil
				}
			},
			wantErr: marketplacedomain.ErrJobNotOpen,
		},
		{
			name: "second bid from the same freelancer",
			req:  PlaceBidRequest{JobID: jobID, FreelancerID: freelancerID, Amount: decimal.NewFromInt(10)},
			setupRepo: func(f *FakeMarketplaceRepo) {
				f.GetJobFunc = openJob
				f.CreateBidFunc = func(ctx context.Context, db bun.IDB, bid *marketplacedb.Bid) error {
					return marketplacedb.ErrDuplicate
				}
			},
			wantErr: marketplacedomain.ErrBidAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeMarketplaceRepo()
			tt.setupRepo(repo)
			svc := newTestService(repo, nil)

			bid, err := svc.PlaceBid(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, marketplacedomain.BidStatusPending, bid.Status)
			assert.Equal(t, []string{"GetJob", "CreateBid", "TouchActivity"}, repo.Trace())
		})
	}
}

func TestAcceptBid(t *testing.T) {
	clientID := uuid.New()
	freelancerID := uuid.New()
	jobID := uuid.New()
	bidID := uuid.New()

	setup := func(f *FakeMarketplaceRepo, bidStatus marketplacedomain.BidStatus) {
		f.GetJobForUpdateFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Job, error) {
			return &marketplacedb.Job{ID: jobID, ClientID: clientID, Status: marketplacedomain.JobStatusOpen}, nil
		}
		f.GetBidFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Bid, error) {
			return &marketplacedb.Bid{ID: bidID, JobID: jobID, FreelancerID: freelancerID, Status: bidStatus}, nil
		}
	}

	t.Run("starts the job", func(t *testing.T) {
		repo := NewFakeMarketplaceRepo()
		setup(repo, marketplacedomain.BidStatusPending)
		svc := newTestService(repo, nil)

		job, err := svc.AcceptBid(context.Background(), clientID, jobID, bidID)
		require.NoError(t, err)
		assert.Equal(t, marketplacedomain.JobStatusInProgress, job.Status)
		require.NotNil(t, job.FreelancerID)
		assert.Equal(t, freelancerID, *job.FreelancerID)
		assert.Equal(t, fixedNow, *job.StartedAt)

		want := []string{"GetJobForUpdate", "GetBid", "UpdateBidStatus", "RejectOtherBids", "UpdateJob"}
		if diff := cmp.Diff(want, repo.Trace()); diff != "" {
			t.Errorf("trace mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("only the client may accept", func(t *testing.T) {
		repo := NewFakeMarketplaceRepo()
		setup(repo, marketplacedomain.BidStatusPending)
		svc := newTestService(repo, nil)

		_, err := svc.AcceptBid(context.Background(), freelancerID, jobID, bidID)
		assert.ErrorIs(t, err, marketplacedomain.ErrNotJobParty)
	})

	t.Run("bid already rejected", func(t *testing.T) {
		repo := NewFakeMarketplaceRepo()
		setup(repo, marketplacedomain.BidStatusRejected)
		svc := newTestService(repo, nil)

		_, err := svc.AcceptBid(context.Background(), clientID, jobID, bidID)
		assert.ErrorIs(t, err, marketplacedomain.ErrBidNotPending)
	})

	t.Run("job lookup fails", func(t *testing.T) {
		repo := NewFakeMarketplaceRepo()
		repo.GetJobForUpdateFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Job, error) {
			return nil, errors.New("connection reset")
		}
		svc := newTestService(repo, nil)

		_, err := svc.AcceptBid(context.Background(), clientID, jobID, bidID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AcceptBid")
	})
}

func TestCompleteJob(t *testing.T) {
	clientID := uuid.New()
	freelancerID := uuid.New()
	jobID := uuid.New()

	inProgress := func(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Job, error) {
		fid := freelancerID
		return &marketplacedb.Job{
			ID:           jobID,
			ClientID:     clientID,
			FreelancerID: &fid,
			Budget:       decimal.NewFromInt(1000),
			Status:       marketplacedomain.JobStatusInProgress,
		}, nil
	}

	tests := []struct {
		name      string
		setupRepo func(*FakeMarketplaceRepo)
		wantPaid  decimal.Decimal
		wantEarns int
	}{
		{
			name: "releases remaining funded milestones",
			setupRepo: func(f *FakeMarketplaceRepo) {
				f.GetJobForUpdateFunc = inProgress
				f.ListMilestonesFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) ([]marketplacedb.Milestone, error) {
					return []marketplacedb.Milestone{
						{ID: uuid.New(), JobID: jobID, Amount: decimal.NewFromInt(300), Status: marketplacedomain.MilestoneStatusReleased},
						{ID: uuid.New(), JobID: jobID, Amount: decimal.RequireFromString("450.50"), Status: marketplacedomain.MilestoneStatusFunded},
					}, nil
				}
			},
			wantPaid:  decimal.RequireFromString("450.50"),
			wantEarns: 1,
		},
		{
			name: "pays the accepted bid without milestones",
			setupRepo: func(f *FakeMarketplaceRepo) {
				f.GetJobForUpdateFunc = inProgress
				f.ListBidsFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) ([]marketplacedb.Bid, error) {
					return []marketplacedb.Bid{
						{Amount: decimal.NewFromInt(900), Status: marketplacedomain.BidStatusRejected},
						{Amount: decimal.NewFromInt(850), Status: marketplacedomain.BidStatusAccepted},
					}, nil
				}
			},
			wantPaid:  decimal.NewFromInt(850),
			wantEarns: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeMarketplaceRepo()
			tt.setupRepo(repo)
			var earnings []*marketplacedb.Earning
			repo.CreateEarningFunc = func(ctx context.Context, db bun.IDB, e *marketplacedb.Earning) error {
				earnings = append(earnings, e)
				return nil
			}
			pub := &recordingPublisher{}
			svc := newTestService(repo, pub)

			job, err := svc.CompleteJob(context.Background(), clientID, jobID)
			require.NoError(t, err)
			assert.Equal(t, marketplacedomain.JobStatusCompleted, job.Status)
			assert.Len(t, earnings, tt.wantEarns)
			for _, e := range earnings {
				assert.Equal(t, freelancerID, e.UserID)
			}

			require.Equal(t, []string{marketplaceevents.JobCompletedV1}, pub.topics)
			var payload marketplaceevents.JobCompletedPayloadV1
			require.NoError(t, json.Unmarshal(pub.messages[0].Payload, &payload))
			assert.True(t, tt.wantPaid.Equal(payload.Paid), "paid %s, want %s", payload.Paid, tt.wantPaid)
			assert.Equal(t, freelancerID, payload.FreelancerID)
		})
	}

	t.Run("open job cannot complete", func(t *testing.T) {
		repo := NewFakeMarketplaceRepo()
		repo.GetJobForUpdateFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Job, error) {
			return &marketplacedb.Job{ID: jobID, ClientID: clientID, Status: marketplacedomain.JobStatusOpen}, nil
		}
		pub := &recordingPublisher{}
		svc := newTestService(repo, pub)

		_, err := svc.CompleteJob(context.Background(), clientID, jobID)
		assert.ErrorIs(t, err, marketplacedomain.ErrNoFreelancer)
		assert.Empty(t, pub.topics)
	})
}

func TestSubmitReview(t *testing.T) {
	clientID := uuid.New()
	freelancerID := uuid.New()
	jobID := uuid.New()

	completed := func(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Job, error) {
		fid := freelancerID
		return &marketplacedb.Job{ID: jobID, ClientID: clientID, FreelancerID: &fid, Status: marketplacedomain.JobStatusCompleted}, nil
	}

	t.Run("reviews the freelancer and extends the streak", func(t *testing.T) {
		repo := NewFakeMarketplaceRepo()
		repo.GetJobFunc = completed
		repo.Stats = marketplacedb.StatsDocument(`{"trustScore":{"score":71},"reviewStreak":{"current":2,"best":3,"lastRating":5}}`)
		pub := &recordingPublisher{}
		svc := newTestService(repo, pub)

		review, err := svc.SubmitReview(context.Background(), SubmitReviewRequest{JobID: jobID, ReviewerID: clientID, Rating: 5})
		require.NoError(t, err)
		assert.Equal(t, freelancerID, review.RevieweeID)

		assert.Equal(t, int64(3), repo.Stats.Get("reviewStreak.current").Int())
		assert.Equal(t, int64(3), repo.Stats.Get("reviewStreak.best").Int())
		assert.Equal(t, int64(71), repo.Stats.Get("trustScore.score").Int())
		assert.Equal(t, []string{marketplaceevents.ReviewSubmittedV1}, pub.topics)
	})

	tests := []struct {
		name      string
		req       SubmitReviewRequest
		setupRepo func(*FakeMarketplaceRepo)
		wantErr   error
	}{
		{
			name:      "rating out of range",
			req:       SubmitReviewRequest{JobID: jobID, ReviewerID: clientID, Rating: 6},
			setupRepo: func(f *FakeMarketplaceRepo) { f.GetJobFunc = completed },
			wantErr:   marketplacedomain.ErrInvalidRating,
		},
		{
			name: "job not completed",
			req:  SubmitReviewRequest{JobID: jobID, ReviewerID: clientID, Rating: 4},
			setupRepo: func(f *FakeMarketplaceRepo) {
				f.GetJobFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Job, error) {
					return &marketplacedb.Job{ID: jobID, ClientID: clientID, Status: marketplacedomain.JobStatusInProgress}, nil
				}
			},
			wantErr: marketplacedomain.ErrJobNotCompleted,
		},
		{
			name:      "outsider",
			req:       SubmitReviewRequest{JobID: jobID, ReviewerID: uuid.New(), Rating: 4},
			setupRepo: func(f *FakeMarketplaceRepo) { f.GetJobFunc = completed },
			wantErr:   marketplacedomain.ErrNotJobParty,
		},
		{
			name: "second review",
			req:  SubmitReviewRequest{JobID: jobID, ReviewerID: freelancerID, Rating: 4},
			setupRepo: func(f *FakeMarketplaceRepo) {
				f.GetJobFunc = completed
				f.HasReviewedFunc = func(ctx context.Context, db bun.IDB, jobID, reviewerID uuid.UUID) (bool, error) {
					return true, nil
				}
			},
			wantErr: marketplacedomain.ErrAlreadyReviewed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeMarketplaceRepo()
			tt.setupRepo(repo)
			svc := newTestService(repo, nil)

			_, err := svc.SubmitReview(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NotContains(t, repo.Trace(), "SaveStats")
		})
	}
}

func TestResolveDispute(t *testing.T) {
	jobID := uuid.New()
	disputeID := uuid.New()

	tests := []struct {
		name          string
		status        marketplacedomain.DisputeStatus
		disputeStatus marketplacedomain.DisputeStatus
		wantErr       error
		wantJob       marketplacedomain.JobStatus
	}{
		{name: "upheld cancels the job", status: marketplacedomain.DisputeStatusUpheld, disputeStatus: marketplacedomain.DisputeStatusOpen, wantJob: marketplacedomain.JobStatusCancelled},
		{name: "dismissed resumes the job", status: marketplacedomain.DisputeStatusDismissed, disputeStatus: marketplacedomain.DisputeStatusOpen, wantJob: marketplacedomain.JobStatusInProgress},
		{name: "open is not a ruling", status: marketplacedomain.DisputeStatusOpen, disputeStatus: marketplacedomain.DisputeStatusOpen, wantErr: marketplacedomain.ErrInvalidResolution},
		{name: "already resolved", status: marketplacedomain.DisputeStatusUpheld, disputeStatus: marketplacedomain.DisputeStatusDismissed, wantErr: marketplacedomain.ErrDisputeNotOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeMarketplaceRepo()
			repo.GetDisputeFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Dispute, error) {
				return &marketplacedb.Dispute{ID: disputeID, JobID: jobID, Status: tt.disputeStatus}, nil
			}
			repo.GetJobForUpdateFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Job, error) {
				return &marketplacedb.Job{ID: jobID, Status: marketplacedomain.JobStatusDisputed}, nil
			}
			var updated *marketplacedb.Job
			repo.UpdateJobFunc = func(ctx context.Context, db bun.IDB, job *marketplacedb.Job) error {
				updated = job
				return nil
			}
			pub := &recordingPublisher{}
			svc := newTestService(repo, pub)

			d, err := svc.ResolveDispute(context.Background(), disputeID, tt.status)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, pub.topics)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.status, d.Status)
			require.NotNil(t, updated)
			assert.Equal(t, tt.wantJob, updated.Status)
			assert.Equal(t, []string{marketplaceevents.DisputeResolvedV1}, pub.topics)
		})
	}
}

func TestAddEndorsementRejectsSelf(t *testing.T) {
	repo := NewFakeMarketplaceRepo()
	svc := newTestService(repo, nil)
	userID := uuid.New()

	_, err := svc.AddEndorsement(context.Background(), AddEndorsementRequest{UserID: userID, EndorserID: userID, Skill: "go", Rating: 5})
	assert.ErrorIs(t, err, marketplacedomain.ErrSelfEndorsement)
	assert.Empty(t, repo.Trace())
}

func TestVerifyBadge(t *testing.T) {
	userID := uuid.New()

	t.Run("unknown badge", func(t *testing.T) {
		svc := newTestService(NewFakeMarketplaceRepo(), nil)
		_, err := svc.VerifyBadge(context.Background(), userID, "passport")
		assert.ErrorIs(t, err, marketplacedomain.ErrInvalidBadgeType)
	})

	t.Run("records badge", func(t *testing.T) {
		repo := NewFakeMarketplaceRepo()
		repo.GetUserFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.User, error) {
			return &marketplacedb.User{ID: id}, nil
		}
		pub := &recordingPublisher{}
		svc := newTestService(repo, pub)

		b, err := svc.VerifyBadge(context.Background(), userID, marketplacedomain.BadgeKYC)
		require.NoError(t, err)
		assert.Equal(t, marketplacedomain.BadgeKYC, b.BadgeType)
		assert.Equal(t, []string{marketplaceevents.BadgeVerifiedV1}, pub.topics)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := newTestService(NewFakeMarketplaceRepo(), nil)
		_, err := svc.VerifyBadge(context.Background(), userID, marketplacedomain.BadgeEmail)
		assert.ErrorIs(t, err, marketplacedb.ErrNotFound)
	})
}

func TestListFAQsReturnsEmptySlice(t *testing.T) {
	svc := newTestService(NewFakeMarketplaceRepo(), nil)
	faqs, err := svc.ListFAQs(context.Background(), "payments")
	require.NoError(t, err)
	assert.NotNil(t, faqs)
	assert.Empty(t, faqs)
}
