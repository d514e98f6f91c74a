package notification

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationService interface {
	Notify(ctx context.Context, userID primitive.ObjectID, title, message, ntype, link string) error
	ListForUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, limit int64) ([]Notification, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type NotificationServiceImpl struct {
	repo NotificationRepository
}

func NewNotificationService(repo NotificationRepository) NotificationService {
	return &NotificationServiceImpl{repo: repo}
}

func (s *NotificationServiceImpl) Notify(ctx context.Context, userID primitive.ObjectID, title, message, ntype, link string) error {
	if title == "" {
		return errors.New("notification title is required")
	}

	kind := NotificationType(ntype)
	switch kind {
	case NotificationTypeInfo, NotificationTypeSuccess, NotificationTypeWarning, NotificationTypeError:
	default:
		kind = NotificationTypeInfo
	}

	return s.repo.Create(ctx, &Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    kind,
		Link:    link,
	})
}

func (s *NotificationServiceImpl) ListForUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, limit int64) ([]Notification, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.FindByUser(ctx, userID, unreadOnly, limit)
}

func (s *NotificationServiceImpl) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *NotificationServiceImpl) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
