package model

import (
	"time"

	"github.com/google/uuid"
)

type AnnouncementType string

const (
	AnnouncementNewBooks    AnnouncementType = "NEW_BOOKS"
	AnnouncementEvent       AnnouncementType = "EVENT"
	AnnouncementMaintenance AnnouncementType = "MAINTENANCE"
	AnnouncementPolicy      AnnouncementType = "POLICY"
	AnnouncementGeneral     AnnouncementType = "GENERAL"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

type Audience string

const (
	AudienceAll         Audience = "ALL"
	AudienceMembersOnly Audience = "MEMBERS_ONLY"
	AudienceStaff       Audience = "STAFF"
)

type Announcement struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	Title          string           `json:"title" db:"title"`
	Content        string           `json:"content" db:"content"`
	Type           AnnouncementType `json:"type" db:"type"`
	Priority       Priority         `json:"priority" db:"priority"`
	TargetAudience Audience         `json:"targetAudience" db:"target_audience"`
	CreatedBy      string           `json:"createdBy" db:"created_by"`
	Attachments    []string         `json:"attachments" db:"attachments"`
	PublishDate    time.Time        `json:"publishDate" db:"publish_date"`
	ExpiryDate     *time.Time       `json:"expiryDate" db:"expiry_date"`
	IsActive       bool             `json:"isActive" db:"is_active"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time        `json:"updatedAt" db:"updated_at"`
}

type CreateAnnouncementRequest struct {
	Title          string           `json:"title" validate:"required,max=200"`
	Content        string           `json:"content" validate:"required,max=5000"`
	Type           AnnouncementType `json:"type" validate:"omitempty,oneof=NEW_BOOKS EVENT MAINTENANCE POLICY GENERAL"`
	Priority       Priority         `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	TargetAudience Audience         `json:"targetAudience" validate:"omitempty,oneof=ALL MEMBERS_ONLY STAFF"`
	Attachments    []string         `json:"attachments" validate:"omitempty,max=10,dive,url"`
	PublishDate    *time.Time       `json:"publishDate"`
	ExpiryDate     *time.Time       `json:"expiryDate"`
}

// Announcement fills defaults: GENERAL, MEDIUM, ALL, published now.
func (r CreateAnnouncementRequest) Announcement(createdBy string, now time.Time) Announcement {
	a := Announcement{
		Title:          r.Title,
		Content:        r.Content,
		Type:           r.Type,
		Priority:       r.Priority,
		TargetAudience: r.TargetAudience,
		CreatedBy:      createdBy,
		Attachments:    r.Attachments,
		PublishDate:    now,
		ExpiryDate:     r.ExpiryDate,
		IsActive:       true,
	}
	if a.Type == "" {
		a.Type = AnnouncementGeneral
	}
	if a.Priority == "" {
		a.Priority = PriorityMedium
	}
	if a.TargetAudience == "" {
		a.TargetAudience = AudienceAll
	}
	if a.Attachments == nil {
		a.Attachments = []string{}
	}
	if r.PublishDate != nil {
		a.PublishDate = *r.PublishDate
	}
	return a
}

type UpdateAnnouncementRequest struct {
	Title          *string           `json:"title" validate:"omitempty,min=1,max=200"`
	Content        *string           `json:"content" validate:"omitempty,min=1,max=5000"`
	Type           *AnnouncementType `json:"type" validate:"omitempty,oneof=NEW_BOOKS EVENT MAINTENANCE POLICY GENERAL"`
	Priority       *Priority         `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	TargetAudience *Audience         `json:"targetAudience" validate:"omitempty,oneof=ALL MEMBERS_ONLY STAFF"`
	Attachments    []string          `json:"attachments" validate:"omitempty,max=10,dive,url"`
	PublishDate    *time.Time        `json:"publishDate"`
	ExpiryDate     *time.Time        `json:"expiryDate"`
	IsActive       *bool             `json:"isActive"`
}

type AnnouncementFilter struct {
	Type           AnnouncementType
	Priority       Priority
	TargetAudience Audience
	Now            time.Time
	Paging
}
