package payload

import "time"

type ScheduleInterviewRequest struct {
	ScheduledAt     time.Time `json:"scheduled_at"     validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"omitempty,min=15,max=480"`
	Mode            string    `json:"mode"             validate:"required,oneof=ONLINE OFFLINE"`
	Location        string    `json:"location"         validate:"required_if=Mode OFFLINE,max=300"`
	MeetingLink     string    `json:"meeting_link"     validate:"required_if=Mode ONLINE,max=2048"`
	Interviewer     string    `json:"interviewer"      validate:"required,max=120"`
	Notes           string    `json:"notes"            validate:"max=2000"`
}
