package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TaskNotifyNewLead      = "notifications.lead_created"
	TaskNotifyCasePromoted = "notifications.case_promoted"
)

type NewLeadPayload struct {
	LeadID    string `json:"leadId"`
	ShortCode string `json:"shortCode"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Matter    string `json:"matter,omitempty"`
	Channel   string `json:"channel"`
}

type CasePromotedPayload struct {
	CaseID        string `json:"caseId"`
	CaseShortCode string `json:"caseShortCode"`
	LeadID        string `json:"leadId"`
	LeadName      string `json:"leadName"`
	Description   string `json:"description,omitempty"`
}

func NewNotifyNewLeadTask(payload NewLeadPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotifyNewLead, data), nil
}

func ParseNewLeadPayload(task *asynq.Task) (NewLeadPayload, error) {
	var payload NewLeadPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return NewLeadPayload{}, err
	}
	return payload, nil
}

func NewNotifyCasePromotedTask(payload CasePromotedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotifyCasePromoted, data), nil
}

func ParseCasePromotedPayload(task *asynq.Task) (CasePromotedPayload, error) {
	var payload CasePromotedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CasePromotedPayload{}, err
	}
	return payload, nil
}
