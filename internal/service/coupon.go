package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type CouponService struct {
	Store repo.Store
	Now   func() time.Time
}

type CouponInput struct {
	Code             string
	DiscountType     models.DiscountType
	Value            decimal.Decimal
	MinCartValue     decimal.Decimal
	MaxDiscountValue *decimal.Decimal
	StartDate        time.Time
	EndDate          time.Time
	UsageLimit       *int
	IsActive         bool
}

func (in CouponInput) apply(c *models.Coupon) error {
	c.Code = domain.NormalizeCode(in.Code)
	c.DiscountType = in.DiscountType
	c.Value = in.Value.Round(2)
	c.MinCartValue = in.MinCartValue.Round(2)
	c.MaxDiscountValue = nil
	if in.MaxDiscountValue != nil {
		m := in.MaxDiscountValue.Round(2)
		c.MaxDiscountValue = &m
	}
	c.StartDate = in.StartDate.UTC()
	c.EndDate = in.EndDate.UTC()
	c.UsageLimit = in.UsageLimit
	c.IsActive = in.IsActive
	return domain.ValidateCouponInput(c)
}

func (s *CouponService) Create(ctx context.Context, in CouponInput) (*models.Coupon, error) {
	l := logging.FromContext(ctx).With("svc", "coupon.create")
	now := clock(s.Now)
	c := &models.Coupon{ID: newID(), CreatedAt: now, UpdatedAt: now}
	if err := in.apply(c); err != nil {
		l.Warn("create_coupon_error", "status", 400, "error", err)
		return nil, err
	}
	if err := s.Store.CreateCoupon(ctx, c); err != nil {
		return nil, duplicateCode(err, c.Code)
	}
	l.Info("coupon_created", "code", c.Code)
	return c, nil
}

// Update edits a coupon definition. The redemption count is kept.
func (s *CouponService) Update(ctx context.Context, id string, in CouponInput) (*models.Coupon, error) {
	c, err := s.Store.GetCoupon(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(c); err != nil {
		return nil, err
	}
	c.UpdatedAt = clock(s.Now)
	if err := s.Store.UpdateCoupon(ctx, c); err != nil {
		return nil, duplicateCode(err, c.Code)
	}
	// re-read so used_count reflects redemptions that raced the edit
	return s.Store.GetCoupon(ctx, id)
}

func (s *CouponService) Delete(ctx context.Context, id string) error {
	return s.Store.DeleteCoupon(ctx, id)
}

func (s *CouponService) Get(ctx context.Context, id string) (*models.Coupon, error) {
	return s.Store.GetCoupon(ctx, id)
}

func (s *CouponService) List(ctx context.Context) ([]models.Coupon, error) {
	return s.Store.ListCoupons(ctx)
}

func duplicateCode(err error, code string) error {
	if errors.Is(err, domain.ErrValidation) {
		return fmt.Errorf("%w: coupon code %s already exists", domain.ErrValidation, code)
	}
	return err
}
