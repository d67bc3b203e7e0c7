package mongorepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func (m *MongoRepo) CreateCoupon(ctx context.Context, c *models.Coupon) error {
	_, err := m.coupons.InsertOne(ctx, c)
	return translate(err, "coupon "+c.Code)
}

func (m *MongoRepo) GetCoupon(ctx context.Context, id string) (*models.Coupon, error) {
	var c models.Coupon
	if err := m.coupons.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err, "coupon "+id)
	}
	return &c, nil
}

func (m *MongoRepo) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	if err := m.coupons.FindOne(ctx, bson.M{"code": code}).Decode(&c); err != nil {
		return nil, translate(err, "coupon "+code)
	}
	return &c, nil
}

func (m *MongoRepo) ListCoupons(ctx context.Context) ([]models.Coupon, error) {
	return findAll[models.Coupon](ctx, m.coupons, bson.M{}, findOptions(bson.D{{Key: "created_at", Value: -1}}, 0, 0))
}

// UpdateCoupon sets the editable fields only, leaving used_count to
// RedeemCoupon.
func (m *MongoRepo) UpdateCoupon(ctx context.Context, c *models.Coupon) error {
	update := bson.M{"$set": bson.M{
		"code":               c.Code,
		"discount_type":      c.DiscountType,
		"value":              c.Value,
		"min_cart_value":     c.MinCartValue,
		"max_discount_value": c.MaxDiscountValue,
		"start_date":         c.StartDate,
		"end_date":           c.EndDate,
		"usage_limit":        c.UsageLimit,
		"is_active":          c.IsActive,
		"updated_at":         c.UpdatedAt,
	}}
	res, err := m.coupons.UpdateOne(ctx, bson.M{"_id": c.ID}, update)
	if err != nil {
		return translate(err, "coupon "+c.Code)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: coupon %s", domain.ErrNotFound, c.ID)
	}
	return nil
}

func (m *MongoRepo) DeleteCoupon(ctx context.Context, id string) error {
	return deleteByID(ctx, m.coupons, id, "coupon")
}

func (m *MongoRepo) RedeemCoupon(ctx context.Context, id string) error {
	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"usage_limit": nil},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$used_count", "$usage_limit"}}},
		},
	}
	update := bson.M{
		"$inc": bson.M{"used_count": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	res, err := m.coupons.UpdateOne(ctx, filter, update)
	if err != nil {
		return translate(err, "coupon")
	}
	if res.MatchedCount == 0 {
		if _, err := m.GetCoupon(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: coupon %s", domain.ErrUsageLimit, id)
	}
	return nil
}

func (m *MongoRepo) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	var c models.Cart
	if err := m.carts.FindOne(ctx, bson.M{"user_id": userID}).Decode(&c); err != nil {
		return nil, translate(err, "cart")
	}
	return &c, nil
}

func (m *MongoRepo) SaveCart(ctx context.Context, c *models.Cart) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	_, err := m.carts.ReplaceOne(ctx, bson.M{"_id": c.ID}, c, options.Replace().SetUpsert(true))
	return translate(err, "cart")
}

func (m *MongoRepo) DeleteCart(ctx context.Context, userID string) error {
	_, err := m.carts.DeleteOne(ctx, bson.M{"user_id": userID})
	return translate(err, "cart")
}

func (m *MongoRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	_, err := m.orders.InsertOne(ctx, o)
	return translate(err, "order")
}

func (m *MongoRepo) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := m.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, translate(err, "order "+id)
	}
	return &o, nil
}

func (m *MongoRepo) ListOrders(ctx context.Context, f repo.OrderFilter) ([]models.Order, int64, error) {
	filter := bson.M{}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	total, err := m.orders.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
	out, err := findAll[models.Order](ctx, m.orders, filter, findOptions(sort, f.Offset, f.Limit))
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (m *MongoRepo) UpdateOrder(ctx context.Context, o *models.Order) error {
	o.UpdatedAt = time.Now().UTC()
	return replaceByID(ctx, m.orders, o.ID, o, "order")
}

func (m *MongoRepo) CreateUser(ctx context.Context, u *models.User) error {
	_, err := m.users.InsertOne(ctx, u)
	return translate(err, "user "+u.Email)
}

func (m *MongoRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := m.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, translate(err, "user "+id)
	}
	return &u, nil
}

func (m *MongoRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := m.users.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, translate(err, "user "+email)
	}
	return &u, nil
}

func (m *MongoRepo) AddWishlistItem(ctx context.Context, item *models.WishlistItem) error {
	_, err := m.wishlists.UpdateOne(ctx,
		bson.M{"user_id": item.UserID, "product_id": item.ProductID},
		bson.M{"$setOnInsert": item},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return translate(err, "wishlist item")
}

func (m *MongoRepo) RemoveWishlistItem(ctx context.Context, userID, productID string) error {
	res, err := m.wishlists.DeleteOne(ctx, bson.M{"user_id": userID, "product_id": productID})
	if err != nil {
		return translate(err, "wishlist item")
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: wishlist item %s", domain.ErrNotFound, productID)
	}
	return nil
}

func (m *MongoRepo) ListWishlist(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	return findAll[models.WishlistItem](ctx, m.wishlists, bson.M{"user_id": userID},
		findOptions(bson.D{{Key: "created_at", Value: -1}}, 0, 0))
}

func (m *MongoRepo) CreateReview(ctx context.Context, r *models.Review) error {
	_, err := m.reviews.InsertOne(ctx, r)
	return translate(err, "review for this product")
}

func (m *MongoRepo) ListReviews(ctx context.Context, productID string) ([]models.Review, error) {
	return findAll[models.Review](ctx, m.reviews, bson.M{"product_id": productID},
		findOptions(bson.D{{Key: "created_at", Value: -1}}, 0, 0))
}
