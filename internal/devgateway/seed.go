package devgateway

import (
	"context"

	"github.com/shopspring/decimal"
)

// Seed loads a small catalog when the shoes table is empty.
func (s *Service) Seed(ctx context.Context) error {
	var count int64
	if err := s.db.DB().WithContext(ctx).Model(&Shoe{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	shoes := []Shoe{
		{Name: "Air Zoom Pegasus 41", Brand: "Nike", Price: decimal.RequireFromString("129.99"), Stock: 25},
		{Name: "Ultraboost Light", Brand: "Adidas", Price: decimal.RequireFromString("189.99"), DiscountPercent: 10, Stock: 18},
		{Name: "Gel-Kayano 31", Brand: "Asics", Price: decimal.RequireFromString("164.99"), Stock: 12},
		{Name: "Fresh Foam X 1080v13", Brand: "New Balance", Price: decimal.RequireFromString("159.99"), DiscountPercent: 15, Stock: 8},
		{Name: "Clifton 9", Brand: "Hoka", Price: decimal.RequireFromString("144.99"), Stock: 30},
		{Name: "Speedcross 6", Brand: "Salomon", Price: decimal.RequireFromString("139.99"), Stock: 5},
	}
	if err := s.db.DB().WithContext(ctx).Create(&shoes).Error; err != nil {
		return err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "shoes", len(shoes)), "catalog seeded")
	}
	return nil
}
