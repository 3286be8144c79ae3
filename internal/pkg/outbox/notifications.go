package outbox

import (
	"fmt"

	"lead-chat/internal/pkg/profile"
	"lead-chat/internal/pkg/reportTool"
)

const timestampLayout = "02/01/2006 15:04:05"

// NotifyRegistration records the lead email sent when a visitor registers.
func (instance *Outbox) NotifyRegistration(user profile.UserProfile) Entry {
	timestamp := instance.now().Format(timestampLayout)

	if user.IsNew() {
		subject := fmt.Sprintf("NEW LEAD (SITE): %s - %s", user.Name, user.Project)
		body := fmt.Sprintf(`NEW CLIENT ALERT
DATE: %s

LEAD PROFILE:
Name: %s
Company: %s
Project name: %s

OPPORTUNITY TECHNICAL DETAILS:
Project type: %s
Construction stage: %s

EXPECTATIONS / INITIAL DEMAND:
"%s"

Recommended action: follow the A.I. interaction in real time.`,
			timestamp, user.Name, user.Company, user.Project,
			user.ProjectType, user.ProjectStage, user.AdditionalInfo)
		return instance.Send(KindLead, subject, body)
	}

	subject := fmt.Sprintf("RETURNING CLIENT ACCESS: %s", user.Company)
	body := fmt.Sprintf(`ACCESS ALERT
DATE: %s

IDENTIFICATION:
Name: %s
Company: %s
Current project in focus: %s

Status: existing client accessing for support or new demands.`,
		timestamp, user.Name, user.Company, user.Project)
	return instance.Send(KindLead, subject, body)
}

// RecordReport records the report email requested by the model.
func (instance *Outbox) RecordReport(call reportTool.Call) Entry {
	return instance.Send(KindReport, call.Subject(), call.Body())
}
