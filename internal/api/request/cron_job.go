package request

import "github.com/edvin/cronhook/internal/model"

// CronJob is the body of cron create and update. Field rules are enforced by
// the cron service so that the error messages stay in one place.
type CronJob struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Schedule    CronSchedule `json:"schedule"`
	Action      CronAction   `json:"action"`
}

type CronSchedule struct {
	Type       string `json:"type"`
	Expression string `json:"expression"`
}

type CronAction struct {
	Type    string            `json:"type"`
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

// Setting converts the body to a job definition. An omitted schedule type
// defaults to "cron".
func (c CronJob) Setting() model.CronSetting {
	scheduleType := c.Schedule.Type
	if scheduleType == "" {
		scheduleType = "cron"
	}
	return model.CronSetting{
		Name:        c.Name,
		Description: c.Description,
		Schedule: model.CronSchedule{
			Type:       scheduleType,
			Expression: c.Schedule.Expression,
		},
		Action: model.CronAction{
			Type:    c.Action.Type,
			URL:     c.Action.URL,
			Method:  c.Action.Method,
			Headers: c.Action.Headers,
			Body:    c.Action.Body,
		},
	}
}
