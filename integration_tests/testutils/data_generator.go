package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
)

// TestDataGenerator seeds marketplace rows with fake but valid data.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	db    bun.IDB
	repo  *marketplacedb.Impl
}

// NewTestDataGenerator uses a fixed seed so failures are reproducible.
func NewTestDataGenerator(db bun.IDB, seed uint64) *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(seed),
		db:    db,
		repo:  marketplacedb.NewRepository(db),
	}
}

// User creates an account. usernames are made unique with a numeric suffix.
func (g *TestDataGenerator) User(t *testing.T, ctx context.Context) *marketplacedb.User {
	t.Helper()
	user := &marketplacedb.User{
		ID:          uuid.New(),
		Username:    fmt.Sprintf("%s%d", g.faker.Username(), g.faker.Number(1000, 999999)),
		Email:       fmt.Sprintf("%d.%s", g.faker.Number(1000, 999999), g.faker.Email()),
		DisplayName: g.faker.Name(),
		Level:       1,
	}
	if err := g.repo.CreateUser(ctx, g.db, user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CompletedJob creates a finished job paid out to the freelancer.
func (g *TestDataGenerator) CompletedJob(t *testing.T, ctx context.Context, clientID, freelancerID uuid.UUID, paid decimal.Decimal) *marketplacedb.Job {
	t.Helper()
	now := time.Now().UTC()
	started := now.Add(-72 * time.Hour)
	job := &marketplacedb.Job{
		ID:           uuid.New(),
		ClientID:     clientID,
		FreelancerID: &freelancerID,
		Title:        g.faker.JobTitle(),
		Description:  g.faker.HackerPhrase(),
		Budget:       paid,
		Status:       marketplacedomain.JobStatusCompleted,
		StartedAt:    &started,
		CompletedAt:  &now,
	}
	if err := g.repo.CreateJob(ctx, g.db, job); err != nil {
		t.Fatalf("failed to create job: %v", err)
	}
	if err := g.repo.CreateEarning(ctx, g.db, &marketplacedb.Earning{
		ID:     uuid.New(),
		UserID: freelancerID,
		JobID:  job.ID,
		Amount: paid,
	}); err != nil {
		t.Fatalf("failed to create earning: %v", err)
	}
	return job
}

// Review records a rating from reviewer on a finished job.
func (g *TestDataGenerator) Review(t *testing.T, ctx context.Context, jobID, reviewerID, revieweeID uuid.UUID, rating int) {
	t.Helper()
	if err := g.repo.CreateReview(ctx, g.db, &marketplacedb.Review{
		ID:         uuid.New(),
		JobID:      jobID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     rating,
		Comment:    g.faker.HackerPhrase(),
	}); err != nil {
		t.Fatalf("failed to create review: %v", err)
	}
}
