package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Ancestor struct {
	ID   string `json:"id"   bson:"id"`
	Name string `json:"name" bson:"name"`
	Slug string `json:"slug" bson:"slug"`
}

type Category struct {
	ID          string     `gorm:"primaryKey;size:36"               bson:"_id"         json:"id"`
	Name        string     `gorm:"not null"                         bson:"name"        json:"name"`
	Slug        string     `gorm:"uniqueIndex;not null"             bson:"slug"        json:"slug"`
	Description string     `                                        bson:"description" json:"description"`
	ParentID    *string    `gorm:"index;size:36"                    bson:"parent_id"   json:"parentId"`
	Ancestors   []Ancestor `gorm:"serializer:json;type:text"        bson:"ancestors"   json:"ancestors"`
	IsActive    bool       `gorm:"not null"                         bson:"is_active"   json:"isActive"`
	SortOrder   int        `gorm:"not null;default:0"               bson:"sort_order"  json:"sortOrder"`
	CreatedAt   time.Time  `                                        bson:"created_at"  json:"createdAt"`
	UpdatedAt   time.Time  `                                        bson:"updated_at"  json:"updatedAt"`
}

func (c *Category) Ref() Ancestor {
	return Ancestor{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

type Product struct {
	ID          string          `gorm:"primaryKey;size:36"              bson:"_id"         json:"id"`
	Name        string          `gorm:"not null"                        bson:"name"        json:"name"`
	Slug        string          `gorm:"uniqueIndex;not null"            bson:"slug"        json:"slug"`
	Description string          `                                       bson:"description" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"     bson:"price"       json:"price"`
	Stock       int             `gorm:"not null;default:0"              bson:"stock"       json:"stock"`
	CategoryID  string          `gorm:"index;size:36;not null"          bson:"category_id" json:"categoryId"`
	Images      []string        `gorm:"serializer:json;type:text"       bson:"images"      json:"images"`
	IsActive    bool            `gorm:"not null"                        bson:"is_active"   json:"isActive"`
	Rating      decimal.Decimal `gorm:"type:numeric(3,2);not null;default:0" bson:"rating" json:"rating"`
	NumReviews  int             `gorm:"not null;default:0"              bson:"num_reviews" json:"numReviews"`
	CreatedAt   time.Time       `                                       bson:"created_at"  json:"createdAt"`
	UpdatedAt   time.Time       `                                       bson:"updated_at"  json:"updatedAt"`
}

// Image is the picture shown in carts and snapshotted into orders.
func (p *Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

type User struct {
	ID           string    `gorm:"primaryKey;size:36"     bson:"_id"           json:"id"`
	Name         string    `gorm:"not null"               bson:"name"          json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"   bson:"email"         json:"email"`
	PasswordHash string    `gorm:"not null"               bson:"password_hash" json:"-"`
	Role         string    `gorm:"not null;default:user"  bson:"role"          json:"role"`
	CreatedAt    time.Time `                              bson:"created_at"    json:"createdAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type WishlistItem struct {
	UserID    string    `gorm:"primaryKey;size:36" bson:"user_id"    json:"userId"`
	ProductID string    `gorm:"primaryKey;size:36" bson:"product_id" json:"productId"`
	CreatedAt time.Time `                          bson:"created_at" json:"createdAt"`
}

type Review struct {
	ID        string    `gorm:"primaryKey;size:36"                          bson:"_id"        json:"id"`
	ProductID string    `gorm:"uniqueIndex:idx_review_product_user;size:36" bson:"product_id" json:"productId"`
	UserID    string    `gorm:"uniqueIndex:idx_review_product_user;size:36" bson:"user_id"    json:"userId"`
	UserName  string    `                                                   bson:"user_name"  json:"userName"`
	Rating    int       `gorm:"not null;check:rating BETWEEN 1 AND 5"       bson:"rating"     json:"rating"`
	Comment   string    `                                                   bson:"comment"    json:"comment"`
	CreatedAt time.Time `                                                   bson:"created_at" json:"createdAt"`
}
