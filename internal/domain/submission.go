package domain

import "time"

// SubmissionType tags an approval request with its target collection.
type SubmissionType string

const (
	SubmissionMemory    SubmissionType = "memory"
	SubmissionGuestbook SubmissionType = "guestbook"
	SubmissionMedia     SubmissionType = "media"
)

// Submission is a pending moderation-queue entry produced by the form intake.
// It is a terminal input: either promoted into a persisted collection or dropped,
// never updated in place.
type Submission struct {
	ID        string         `json:"id"`
	Number    int            `json:"number"`
	FormName  string         `json:"formName"`
	Data      map[string]any `json:"data"`
	Email     string         `json:"email"`
	CreatedAt time.Time      `json:"createdAt"`
}

// FormNames lists the fixed set of intake forms submissions are grouped by.
var FormNames = []string{"memory-wall", "guestbook", "media-booking", "media-submission", "newsletter"}
