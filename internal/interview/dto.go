package interview

import (
	"strings"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/core/common/validation"
)

type ScheduleInterviewDTO struct {
	CandidateName  string `json:"candidateName"`
	CandidateEmail string `json:"candidateEmail"`
	Position       string `json:"position"`
	InterviewerID  int64  `json:"interviewerId"`
	ScheduledAt    string `json:"scheduledAt"`
	Mode           string `json:"mode"`
	Location       string `json:"location"`
}

func (d *ScheduleInterviewDTO) Normalize() {
	d.CandidateName = strings.TrimSpace(d.CandidateName)
	d.CandidateEmail = strings.ToLower(strings.TrimSpace(d.CandidateEmail))
	d.Position = strings.TrimSpace(d.Position)
	d.Mode = strings.ToLower(strings.TrimSpace(d.Mode))
}

// Validate checks the fields and returns the parsed schedule time.
func (d ScheduleInterviewDTO) Validate() (time.Time, error) {
	v := validation.NewValidator()
	v.Field("candidateName", d.CandidateName).Required().MaxLength(200)
	v.Field("candidateEmail", d.CandidateEmail).Required().Email()
	v.Field("position", d.Position).Required().MaxLength(200)
	v.Field("interviewerId", d.InterviewerID).Required()
	v.Field("scheduledAt", d.ScheduledAt).Required()
	v.Field("mode", d.Mode).OneOf(Modes...)
	if err := v.Validate(); err != nil {
		return time.Time{}, err
	}
	at, err := time.Parse(time.RFC3339, d.ScheduledAt)
	if err != nil {
		return time.Time{}, internal.NewValidationFieldError("scheduledAt", "scheduledAt must be an RFC3339 timestamp", internal.ErrCodeInvalidDate)
	}
	return at, nil
}

type FeedbackDTO struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

func (d FeedbackDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("rating", d.Rating).Between(1, 5)
	v.Field("feedback", d.Feedback).Required().MaxLength(5000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
