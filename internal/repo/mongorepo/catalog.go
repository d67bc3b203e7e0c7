package mongorepo

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func (m *MongoRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	_, err := m.categories.InsertOne(ctx, c)
	return translate(err, "category")
}

func (m *MongoRepo) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	if err := m.categories.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err, "category "+id)
	}
	return &c, nil
}

func (m *MongoRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	sort := bson.D{{Key: "sort_order", Value: 1}, {Key: "name", Value: 1}}
	return findAll[models.Category](ctx, m.categories, bson.M{}, findOptions(sort, 0, 0))
}

func (m *MongoRepo) UpdateCategory(ctx context.Context, c *models.Category) error {
	return replaceByID(ctx, m.categories, c.ID, c, "category")
}

func (m *MongoRepo) DeleteCategory(ctx context.Context, id string) error {
	return deleteByID(ctx, m.categories, id, "category")
}

func (m *MongoRepo) CountChildren(ctx context.Context, id string) (int64, error) {
	return m.categories.CountDocuments(ctx, bson.M{"parent_id": id})
}

func (m *MongoRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	_, err := m.products.InsertOne(ctx, p)
	return translate(err, "product")
}

func (m *MongoRepo) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := m.products.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err, "product "+id)
	}
	return &p, nil
}

var productSort = map[string]bson.D{
	repo.SortNewest:    {{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}},
	repo.SortPriceAsc:  {{Key: "price", Value: 1}, {Key: "_id", Value: 1}},
	repo.SortPriceDesc: {{Key: "price", Value: -1}, {Key: "_id", Value: 1}},
	repo.SortRating:    {{Key: "rating", Value: -1}, {Key: "num_reviews", Value: -1}, {Key: "_id", Value: 1}},
	repo.SortName:      {{Key: "name", Value: 1}, {Key: "_id", Value: 1}},
}

func productQuery(f repo.ProductFilter) bson.M {
	filter := bson.M{}
	if len(f.CategoryIDs) > 0 {
		filter["category_id"] = bson.M{"$in": f.CategoryIDs}
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
		filter["$or"] = bson.A{bson.M{"name": pattern}, bson.M{"description": pattern}}
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	if f.InStock {
		filter["stock"] = bson.M{"$gt": 0}
	}
	if f.ActiveOnly {
		filter["is_active"] = true
	}
	return filter
}

func (m *MongoRepo) ListProducts(ctx context.Context, f repo.ProductFilter) ([]models.Product, int64, error) {
	filter := productQuery(f)
	total, err := m.products.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sort, ok := productSort[f.Sort]
	if !ok {
		sort = productSort[repo.SortNewest]
	}
	out, err := findAll[models.Product](ctx, m.products, filter, findOptions(sort, f.Offset, f.Limit))
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (m *MongoRepo) UpdateProduct(ctx context.Context, p *models.Product) error {
	return replaceByID(ctx, m.products, p.ID, p, "product")
}

func (m *MongoRepo) DeleteProduct(ctx context.Context, id string) error {
	return deleteByID(ctx, m.products, id, "product")
}

func (m *MongoRepo) CountProductsByCategory(ctx context.Context, categoryID string) (int64, error) {
	return m.products.CountDocuments(ctx, bson.M{"category_id": categoryID})
}

func (m *MongoRepo) DecrementStock(ctx context.Context, id string, qty int) error {
	res, err := m.products.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"stock": -qty},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return translate(err, "product")
	}
	if res.MatchedCount == 0 {
		if _, err := m.GetProduct(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: product %s", domain.ErrOutOfStock, id)
	}
	return nil
}

func (m *MongoRepo) IncrementStock(ctx context.Context, id string, qty int) error {
	res, err := m.products.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"stock": qty},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return translate(err, "product")
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	return nil
}

func (m *MongoRepo) UpdateProductRating(ctx context.Context, id string, rating decimal.Decimal, numReviews int) error {
	res, err := m.products.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"rating": rating, "num_reviews": numReviews}},
	)
	if err != nil {
		return translate(err, "product")
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	return nil
}
