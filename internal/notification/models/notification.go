package models

import (
	"time"

	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
)

// Recipient labels which audience a fan-out targeted.
type Recipient string

const (
	RecipientMakers   Recipient = "makers"
	RecipientCheckers Recipient = "checkers"
	RecipientCustomer Recipient = "customer"
)

// Notification is an inbox entry for one user. Only Read ever changes.
type Notification struct {
	ID                id.NotificationID
	UserID            id.UserID
	ApplicationNumber string
	Message           string
	Read              bool
	CreatedAt         time.Time
}

func NewNotification(notificationID id.NotificationID, userID id.UserID, applicationNumber, message string, now time.Time) *Notification {
	return &Notification{
		ID:                notificationID,
		UserID:            userID,
		ApplicationNumber: applicationNumber,
		Message:           message,
		CreatedAt:         now,
	}
}

// Response is the wire shape returned by the inbox endpoints.
type Response struct {
	ID            id.NotificationID `json:"id"`
	Message       string            `json:"message"`
	ApplicationID string            `json:"applicationId,omitempty"`
	IsRead        bool              `json:"isRead"`
	CreatedAt     time.Time         `json:"createdAt"`
}

func ToResponse(n *Notification) Response {
	return Response{
		ID:            n.ID,
		Message:       n.Message,
		ApplicationID: n.ApplicationNumber,
		IsRead:        n.Read,
		CreatedAt:     n.CreatedAt,
	}
}

// UnreadCountResponse wraps the unread count.
type UnreadCountResponse struct {
	Count int `json:"count"`
}
