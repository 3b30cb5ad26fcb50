package marketplaceservice

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	"github.com/escrowhub/api/pkg/results"
)

func (s *MarketplaceService) ListFAQs(ctx context.Context, category string) ([]marketplacedb.FAQ, error) {
	return execute(s, ctx, "ListFAQs", category, func(ctx context.Context, db bun.IDB) (results.OperationResult[[]marketplacedb.FAQ, error], error) {
		faqs, err := s.repo.ListFAQs(ctx, db, strings.TrimSpace(category))
		if err != nil {
			return infraError[[]marketplacedb.FAQ]("failed to list faqs", err)
		}
		if faqs == nil {
			faqs = []marketplacedb.FAQ{}
		}
		return success(faqs)
	})
}

func (s *MarketplaceService) CreateFAQ(ctx context.Context, req CreateFAQRequest) (*marketplacedb.FAQ, error) {
	return execute(s, ctx, "CreateFAQ", req.Category, func(ctx context.Context, db bun.IDB) (results.OperationResult[*marketplacedb.FAQ, error], error) {
		faq := &marketplacedb.FAQ{
			ID:        uuid.New(),
			Category:  strings.TrimSpace(req.Category),
			Question:  strings.TrimSpace(req.Question),
			Answer:    strings.TrimSpace(req.Answer),
			Position:  req.Position,
			CreatedAt: s.now(),
		}
		if faq.Category == "" || faq.Question == "" || faq.Answer == "" {
			return failure[*marketplacedb.FAQ](marketplacedomain.ErrMissingField)
		}
		if err := s.repo.CreateFAQ(ctx, db, faq); err != nil {
			return infraError[*marketplacedb.FAQ]("failed to create faq", err)
		}
		return success(faq)
	})
}
