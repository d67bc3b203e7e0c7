package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

const sideEffectTimeout = 5 * time.Second

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// ProductIndex is the full-text index kept next to the store.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

func newID() string {
	return uuid.NewString()
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}

// publish sends event in the background. Delivery is at most once and a
// failure is only logged.
func publish(ctx context.Context, events EventPublisher, topic, key string, event any) {
	if events == nil {
		return
	}
	l := logging.FromContext(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := events.PublishEvent(ctx, topic, key, event); err != nil {
			l.Warn("publish_event_failed", "topic", topic, "key", key, "error", err)
		}
	}()
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
