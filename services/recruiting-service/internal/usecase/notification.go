package usecase

import (
	"context"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/model"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/repository"
)

type NotificationUsecase interface {
	List(ctx context.Context, recipientID string, limit int64) ([]model.Notification, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, recipientID, notificationID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

const (
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 200
)

type notificationUsecase struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationUsecase(notificationRepo repository.NotificationRepository) NotificationUsecase {
	return &notificationUsecase{notificationRepo: notificationRepo}
}

func (u *notificationUsecase) List(ctx context.Context, recipientID string, limit int64) ([]model.Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	if limit > MaxNotificationLimit {
		limit = MaxNotificationLimit
	}

	return u.notificationRepo.ListByRecipient(ctx, recipientID, limit)
}

func (u *notificationUsecase) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return u.notificationRepo.CountUnread(ctx, recipientID)
}

func (u *notificationUsecase) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	ok, err := u.notificationRepo.MarkRead(ctx, notificationID, recipientID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

func (u *notificationUsecase) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return u.notificationRepo.MarkAllRead(ctx, recipientID)
}
