package gormrepo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func (r *GormRepo) CreateCoupon(ctx context.Context, c *models.Coupon) error {
	return translate(r.DB.WithContext(ctx).Create(c).Error, "coupon "+c.Code)
}

func (r *GormRepo) GetCoupon(ctx context.Context, id string) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, "coupon "+id)
	}
	return &c, nil
}

func (r *GormRepo) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.DB.WithContext(ctx).First(&c, "code = ?", code).Error; err != nil {
		return nil, translate(err, "coupon "+code)
	}
	return &c, nil
}

func (r *GormRepo) ListCoupons(ctx context.Context) ([]models.Coupon, error) {
	var out []models.Coupon
	if err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateCoupon writes the editable fields only. used_count belongs to
// RedeemCoupon.
func (r *GormRepo) UpdateCoupon(ctx context.Context, c *models.Coupon) error {
	res := r.DB.WithContext(ctx).Model(c).
		Select("*").Omit("id", "used_count", "created_at").
		Updates(c)
	if res.Error != nil {
		return translate(res.Error, "coupon "+c.Code)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: coupon %s", domain.ErrNotFound, c.ID)
	}
	return nil
}

func (r *GormRepo) DeleteCoupon(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.Coupon{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: coupon %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *GormRepo) RedeemCoupon(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", id).
		Updates(map[string]any{
			"used_count": gorm.Expr("used_count + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetCoupon(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: coupon %s", domain.ErrUsageLimit, id)
	}
	return nil
}

func (r *GormRepo) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	var c models.Cart
	q := r.DB.WithContext(ctx)
	if r.inTx {
		// locked until the transaction ends
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&c, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err, "cart")
	}
	return &c, nil
}

func (r *GormRepo) SaveCart(ctx context.Context, c *models.Cart) error {
	return translate(r.DB.WithContext(ctx).Save(c).Error, "cart")
}

func (r *GormRepo) DeleteCart(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Cart{}).Error
}

func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return translate(r.DB.WithContext(ctx).Create(o).Error, "order")
}

func (r *GormRepo) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, translate(err, "order "+id)
	}
	return &o, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, f repo.OrderFilter) ([]models.Order, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Order
	if err := paginate(q.Order("created_at DESC, id"), f.Offset, f.Limit).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *GormRepo) UpdateOrder(ctx context.Context, o *models.Order) error {
	return translate(r.DB.WithContext(ctx).Save(o).Error, "order")
}
