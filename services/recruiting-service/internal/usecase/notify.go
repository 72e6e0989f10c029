package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/model"
	"github.com/wostup/pitchit-api/shared/auth"
)

func applicationReceived(application *model.Application, job *model.Job) *model.Notification {
	return &model.Notification{
		RecipientID:   application.StartupID,
		RecipientRole: string(auth.RoleStartup),
		Type:          model.NotificationApplicationReceived,
		Title:         "New application",
		Body:          fmt.Sprintf("You received a new application for %s.", job.Title),
		Data: map[string]string{
			"application_id": application.ID.Hex(),
			"job_id":         application.JobID,
		},
	}
}

func statusChanged(application *model.Application, to model.ApplicationStatus) *model.Notification {
	return &model.Notification{
		RecipientID:   application.StudentID,
		RecipientRole: string(auth.RoleStudent),
		Type:          model.NotificationStatusChanged,
		Title:         "Application update",
		Body:          fmt.Sprintf("Your application status is now %s.", humanStatus(to)),
		Data: map[string]string{
			"application_id": application.ID.Hex(),
			"job_id":         application.JobID,
			"status":         string(to),
		},
	}
}

func interviewNotice(interview *model.Interview, typ model.NotificationType) *model.Notification {
	title, body := "Interview scheduled", fmt.Sprintf("An interview has been scheduled for %s.",
		interview.ScheduledAt.UTC().Format(time.RFC1123))
	if typ == model.NotificationInterviewCancelled {
		title, body = "Interview cancelled", "Your upcoming interview has been cancelled."
	}

	return &model.Notification{
		RecipientID:   interview.StudentID,
		RecipientRole: string(auth.RoleStudent),
		Type:          typ,
		Title:         title,
		Body:          body,
		Data: map[string]string{
			"interview_id":   interview.ID.Hex(),
			"application_id": interview.ApplicationID,
		},
	}
}

func humanStatus(s model.ApplicationStatus) string {
	return strings.ToLower(strings.ReplaceAll(string(s), "_", " "))
}
