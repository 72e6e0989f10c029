package usecase

import "errors"

var (
	ErrJobNotFound          = errors.New("job not found")
	ErrJobClosed            = errors.New("job is not open for applications")
	ErrInvalidJobStatus     = errors.New("invalid job status")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrAlreadyApplied       = errors.New("you have already applied to this job")
	ErrInvalidTransition    = errors.New("status transition not allowed")
	ErrStatusConflict       = errors.New("application status changed concurrently")
	ErrInterviewNotFound    = errors.New("interview not found")
	ErrSlotConflict         = errors.New("interview slot conflict")
	ErrInvalidInterview     = errors.New("invalid interview details")
	ErrInterviewNotActive   = errors.New("interview is not scheduled")
	ErrNotificationNotFound = errors.New("notification not found")
)
