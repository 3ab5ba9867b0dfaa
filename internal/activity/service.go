package activity

import (
	"context"

	"github.com/frahmantamala/hr-management/internal"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns newest entries first.
func (s *Service) List(ctx context.Context, f ListFilter) (*Page, error) {
	rows, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, internal.NewInternalError("failed to list activity", err)
	}
	page := &Page{Items: make([]*Entry, 0, len(rows)), Total: total}
	for i := range rows {
		page.Items = append(page.Items, FromDataModel(&rows[i]))
	}
	return page, nil
}
