package marketplacedb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ListFAQs returns every FAQ, or only one category when category is set.
func (r *Impl) ListFAQs(ctx context.Context, db bun.IDB, category string) ([]FAQ, error) {
	db = r.resolveDB(db)
	var faqs []FAQ
	q := db.NewSelect().Model(&faqs).Order("f.category ASC", "f.position ASC")
	if category != "" {
		q = q.Where("f.category = ?", category)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list faqs: %w", err)
	}
	return faqs, nil
}

func (r *Impl) CreateFAQ(ctx context.Context, db bun.IDB, faq *FAQ) error {
	db = r.resolveDB(db)
	if faq.ID == uuid.Nil {
		faq.ID = uuid.New()
	}
	if _, err := db.NewInsert().Model(faq).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("failed to create faq: %w", err)
	}
	return nil
}
