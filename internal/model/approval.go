package model

import "time"

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type ApprovalRequest struct {
	ID          int64          `json:"id"`
	EntryID     int64          `json:"entryId"`
	SubmitterID int64          `json:"submitterId"`
	ReviewerID  *int64         `json:"reviewerId"`
	Status      ApprovalStatus `json:"status"`
	Comment     string         `json:"comment,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	ReviewedAt  *time.Time     `json:"reviewedAt"`
}
