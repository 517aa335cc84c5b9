package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"promptmarket/internal/model"
)

type WebhookEventRepository interface {
	// MarkProcessed records the event id and reports whether this call was
	// the first to see it. Duplicate deliveries get firstSeen=false.
	MarkProcessed(ctx context.Context, eventID, eventType string) (firstSeen bool, err error)
}

type webhookEventRepoImpl struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepoImpl{
		db: db,
	}
}

func (r *webhookEventRepoImpl) MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error) {
	err := r.db.WithContext(ctx).Create(&model.WebhookEvent{
		EventID:     eventID,
		EventType:   eventType,
		ProcessedAt: time.Now(),
	}).Error

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
