package interview

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	interviewDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/interview"
)

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	ModeOnsite = "onsite"
	ModeVideo  = "video"
	ModePhone  = "phone"
)

var Modes = []string{ModeOnsite, ModeVideo, ModePhone}

type Interview struct {
	ID             int64     `json:"id"`
	CandidateName  string    `json:"candidateName"`
	CandidateEmail string    `json:"candidateEmail"`
	Position       string    `json:"position"`
	InterviewerID  int64     `json:"interviewerId"`
	ScheduledAt    time.Time `json:"scheduledAt"`
	Mode           string    `json:"mode"`
	Location       string    `json:"location,omitempty"`
	Status         string    `json:"status"`
	Rating         *int      `json:"rating,omitempty"`
	Feedback       string    `json:"feedback,omitempty"`
	CreatedBy      int64     `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

func FromDataModel(i *interviewDatamodel.Interview) *Interview {
	return &Interview{
		ID:             i.ID,
		CandidateName:  i.CandidateName,
		CandidateEmail: i.CandidateEmail,
		Position:       i.Position,
		InterviewerID:  i.InterviewerID,
		ScheduledAt:    i.ScheduledAt,
		Mode:           i.Mode,
		Location:       i.Location,
		Status:         i.Status,
		Rating:         i.Rating,
		Feedback:       i.Feedback,
		CreatedBy:      i.CreatedBy,
		CreatedAt:      i.CreatedAt,
	}
}

type ListFilter struct {
	InterviewerID int64
	Status        string
	Limit         int
	Offset        int
}

type Repository interface {
	Create(ctx context.Context, i *interviewDatamodel.Interview) error
	Get(ctx context.Context, id int64) (*interviewDatamodel.Interview, error)
	Save(ctx context.Context, i *interviewDatamodel.Interview) error
	List(ctx context.Context, f ListFilter) ([]interviewDatamodel.Interview, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
}

var ErrNotFound = errors.New("interview not found")

var (
	ErrInterviewNotFound  = internal.NewNotFoundError("Interview not found", internal.ErrCodeInterviewNotFound)
	ErrNotScheduled       = internal.NewValidationError("Only scheduled interviews can be changed", internal.ErrCodeValidationFailed)
	ErrUnknownInterviewer = internal.NewValidationFieldError("interviewerId", "interviewer does not exist", internal.ErrCodeEmployeeNotFound)
)
