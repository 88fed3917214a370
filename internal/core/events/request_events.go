package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRequestCreated  = "request.created"
	EventTypeRequestApproved = "request.approved"
	EventTypeRequestRejected = "request.rejected"
)

type RequestCreatedEvent struct {
	BaseEvent
	RequestID int64  `json:"request_id"`
	UserID    int64  `json:"user_id"`
	SectorID  int64  `json:"sector_id"`
	TypeName  string `json:"type_name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

func NewRequestCreatedEvent(requestID, userID, sectorID int64, typeName, startDate, endDate, reason string) *RequestCreatedEvent {
	return &RequestCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRequestCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id": requestID,
				"user_id":    userID,
				"sector_id":  sectorID,
				"type_name":  typeName,
				"start_date": startDate,
				"end_date":   endDate,
				"reason":     reason,
			},
		},
		RequestID: requestID,
		UserID:    userID,
		SectorID:  sectorID,
		TypeName:  typeName,
		StartDate: startDate,
		EndDate:   endDate,
		Reason:    reason,
	}
}

// RequestResolvedEvent carries both approval and rejection transitions; the
// event type distinguishes them. ResolvedByID identifies the approver so HR
// mail can name who acted.
type RequestResolvedEvent struct {
	BaseEvent
	RequestID       int64  `json:"request_id"`
	UserID          int64  `json:"user_id"`
	SectorID        int64  `json:"sector_id"`
	TypeName        string `json:"type_name"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	ResolvedByID    int64  `json:"resolved_by_id"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

func NewRequestApprovedEvent(requestID, userID, sectorID int64, typeName, startDate, endDate string, resolvedByID int64) *RequestResolvedEvent {
	return newResolvedEvent(EventTypeRequestApproved, requestID, userID, sectorID, typeName, startDate, endDate, resolvedByID, "")
}

func NewRequestRejectedEvent(requestID, userID, sectorID int64, typeName, startDate, endDate string, resolvedByID int64, rejectionReason string) *RequestResolvedEvent {
	return newResolvedEvent(EventTypeRequestRejected, requestID, userID, sectorID, typeName, startDate, endDate, resolvedByID, rejectionReason)
}

func newResolvedEvent(eventType string, requestID, userID, sectorID int64, typeName, startDate, endDate string, resolvedByID int64, rejectionReason string) *RequestResolvedEvent {
	return &RequestResolvedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":       requestID,
				"user_id":          userID,
				"sector_id":        sectorID,
				"type_name":        typeName,
				"start_date":       startDate,
				"end_date":         endDate,
				"resolved_by_id":   resolvedByID,
				"rejection_reason": rejectionReason,
			},
		},
		RequestID:       requestID,
		UserID:          userID,
		SectorID:        sectorID,
		TypeName:        typeName,
		StartDate:       startDate,
		EndDate:         endDate,
		ResolvedByID:    resolvedByID,
		RejectionReason: rejectionReason,
	}
}
