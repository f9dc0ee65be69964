package dynamo

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/edvin/cronhook/internal/model"
)

const (
	skMeta         = "meta"
	pkDailySummary = "daily-summary"
)

func cronKey(id string) string { return "cron#" + id }
func workspaceKey(id string) string { return "workspace#" + id }
func userKey(id string) string { return "user#" + id }
func sessionKey(token string) string { return "session#" + token }
func cronLogKey(jobID string) string { return "cronlog#" + jobID }
func logKey(logID string) string { return "log#" + logID }
func authKey(provider, sub string) string { return "auth#" + provider + "#" + sub }

type cronRecord struct {
	PK          string    `dynamodbav:"PK"`
	SK          string    `dynamodbav:"SK"`
	GSI1PK      string    `dynamodbav:"GSI1PK"`
	GSI1SK      string    `dynamodbav:"GSI1SK"`
	CronID      string    `dynamodbav:"CronId"`
	WorkspaceID string    `dynamodbav:"WorkspaceId"`
	Name        string    `dynamodbav:"Name"`
	Description string    `dynamodbav:"Description"`
	Setting     string    `dynamodbav:"Setting"`
	Status      string    `dynamodbav:"CronStatus"`
	FailedCount int       `dynamodbav:"FailedCount"`
	TriggerID   string    `dynamodbav:"ScheduleName"`
	CreatedBy   string    `dynamodbav:"CreatedBy"`
	CreatedAt   time.Time `dynamodbav:"CreatedAt"`
	UpdatedAt   time.Time `dynamodbav:"UpdatedAt"`
}

func newCronRecord(job *model.CronJob) (*cronRecord, error) {
	setting, err := json.Marshal(job.Setting)
	if err != nil {
		return nil, fmt.Errorf("marshal setting: %w", err)
	}
	return &cronRecord{
		PK:          cronKey(job.ID),
		SK:          cronKey(job.ID),
		GSI1PK:      workspaceKey(job.WorkspaceID),
		GSI1SK:      cronKey(job.ID),
		CronID:      job.ID,
		WorkspaceID: job.WorkspaceID,
		Name:        job.Name,
		Description: job.Description,
		Setting:     string(setting),
		Status:      job.Status,
		FailedCount: job.FailedCount,
		TriggerID:   job.TriggerID,
		CreatedBy:   job.CreatedBy,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}, nil
}

func (r *cronRecord) toModel() (*model.CronJob, error) {
	var setting model.CronSetting
	if r.Setting != "" {
		if err := json.Unmarshal([]byte(r.Setting), &setting); err != nil {
			return nil, fmt.Errorf("unmarshal setting of cron %s: %w", r.CronID, err)
		}
	}
	return &model.CronJob{
		ID:          r.CronID,
		WorkspaceID: r.WorkspaceID,
		Name:        r.Name,
		Description: r.Description,
		Setting:     setting,
		Status:      r.Status,
		FailedCount: r.FailedCount,
		TriggerID:   r.TriggerID,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

type logRecord struct {
	PK          string    `dynamodbav:"PK"`
	SK          string    `dynamodbav:"SK"`
	CronID      string    `dynamodbav:"CronId"`
	LogID       string    `dynamodbav:"LogId"`
	WorkspaceID string    `dynamodbav:"WorkspaceId"`
	StartedAt   time.Time `dynamodbav:"StartedAt"`
	Success     bool      `dynamodbav:"Success"`
	Status      string    `dynamodbav:"CronStatus"`
	DurationMs  int64     `dynamodbav:"CronDuration"`
	Content     string    `dynamodbav:"Content"`
	Action      string    `dynamodbav:"CronAction"`
	TTL         int64     `dynamodbav:"TTL"`
}

func newLogRecord(l *model.ExecutionLog) (*logRecord, error) {
	action, err := json.Marshal(l.Action)
	if err != nil {
		return nil, fmt.Errorf("marshal action: %w", err)
	}
	return &logRecord{
		PK:          cronLogKey(l.JobID),
		SK:          logKey(l.ID),
		CronID:      l.JobID,
		LogID:       l.ID,
		WorkspaceID: l.WorkspaceID,
		StartedAt:   l.StartedAt,
		Success:     l.Success,
		Status:      l.Status,
		DurationMs:  l.DurationMs,
		Content:     l.ResponseBody,
		Action:      string(action),
		TTL:         l.ExpireAt.Unix(),
	}, nil
}

func (r *logRecord) toModel() (*model.ExecutionLog, error) {
	var action model.CronAction
	if r.Action != "" {
		if err := json.Unmarshal([]byte(r.Action), &action); err != nil {
			return nil, fmt.Errorf("unmarshal action of log %s: %w", r.LogID, err)
		}
	}
	return &model.ExecutionLog{
		JobID:        r.CronID,
		ID:           r.LogID,
		WorkspaceID:  r.WorkspaceID,
		StartedAt:    r.StartedAt,
		Success:      r.Success,
		Status:       r.Status,
		DurationMs:   r.DurationMs,
		ResponseBody: r.Content,
		Action:       action,
		ExpireAt:     time.Unix(r.TTL, 0).UTC(),
	}, nil
}

type summaryRecord struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	SuccessCount int64  `dynamodbav:"SuccessCount"`
	FailedCount  int64  `dynamodbav:"FailedCount"`
}

type sessionRecord struct {
	PK         string    `dynamodbav:"PK"`
	SK         string    `dynamodbav:"SK"`
	GSI1PK     string    `dynamodbav:"GSI1PK"`
	GSI1SK     string    `dynamodbav:"GSI1SK"`
	SessionID  string    `dynamodbav:"SessionId"`
	UserID     string    `dynamodbav:"UserId"`
	CreatedAt  time.Time `dynamodbav:"CreatedAt"`
	LastUsedAt time.Time `dynamodbav:"LastUsedTimestamp"`
	IP         string    `dynamodbav:"IP"`
	UserAgent  string    `dynamodbav:"UserAgent"`
	Country    string    `dynamodbav:"Country"`
	TTL        int64     `dynamodbav:"TTL"`
}

func newSessionRecord(s *model.Session) *sessionRecord {
	return &sessionRecord{
		PK:         sessionKey(s.ID),
		SK:         sessionKey(s.ID),
		GSI1PK:     userKey(s.UserID),
		GSI1SK:     sessionKey(s.ID),
		SessionID:  s.ID,
		UserID:     s.UserID,
		CreatedAt:  s.CreatedAt,
		LastUsedAt: s.LastUsedAt,
		IP:         s.IP,
		UserAgent:  s.UserAgent,
		Country:    s.Country,
		TTL:        s.ExpireAt.Unix(),
	}
}

func (r *sessionRecord) toModel() model.Session {
	return model.Session{
		ID:         r.SessionID,
		UserID:     r.UserID,
		CreatedAt:  r.CreatedAt,
		LastUsedAt: r.LastUsedAt,
		IP:         r.IP,
		UserAgent:  r.UserAgent,
		Country:    r.Country,
		ExpireAt:   time.Unix(r.TTL, 0).UTC(),
	}
}

type userRecord struct {
	PK        string    `dynamodbav:"PK"`
	SK        string    `dynamodbav:"SK"`
	UserID    string    `dynamodbav:"UserId"`
	Name      string    `dynamodbav:"Name"`
	Picture   *string   `dynamodbav:"Picture,omitempty"`
	CreatedAt time.Time `dynamodbav:"CreatedAt"`
	UpdatedAt time.Time `dynamodbav:"UpdatedAt"`
}

func newUserRecord(u *model.User) *userRecord {
	return &userRecord{
		PK:        userKey(u.ID),
		SK:        skMeta,
		UserID:    u.ID,
		Name:      u.Name,
		Picture:   u.Picture,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (r *userRecord) toModel() *model.User {
	return &model.User{
		ID:        r.UserID,
		Name:      r.Name,
		Picture:   r.Picture,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type workspaceRecord struct {
	PK          string    `dynamodbav:"PK"`
	SK          string    `dynamodbav:"SK"`
	WorkspaceID string    `dynamodbav:"WorkspaceId"`
	Name        string    `dynamodbav:"Name"`
	CreatedAt   time.Time `dynamodbav:"CreatedAt"`
	UpdatedAt   time.Time `dynamodbav:"UpdatedAt"`
}

type membershipRecord struct {
	PK            string    `dynamodbav:"PK"`
	SK            string    `dynamodbav:"SK"`
	GSI1PK        string    `dynamodbav:"GSI1PK"`
	GSI1SK        string    `dynamodbav:"GSI1SK"`
	UserID        string    `dynamodbav:"UserId"`
	WorkspaceID   string    `dynamodbav:"WorkspaceId"`
	WorkspaceName string    `dynamodbav:"WorkspaceName"`
	Role          string    `dynamodbav:"Role"`
	CreatedAt     time.Time `dynamodbav:"CreatedAt"`
	UpdatedAt     time.Time `dynamodbav:"UpdatedAt"`
}

func newMembershipRecord(m *model.Membership) *membershipRecord {
	return &membershipRecord{
		PK:            userKey(m.UserID),
		SK:            workspaceKey(m.WorkspaceID),
		GSI1PK:        workspaceKey(m.WorkspaceID),
		GSI1SK:        userKey(m.UserID),
		UserID:        m.UserID,
		WorkspaceID:   m.WorkspaceID,
		WorkspaceName: m.WorkspaceName,
		Role:          m.Role,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func (r *membershipRecord) toModel() model.Membership {
	return model.Membership{
		UserID:        r.UserID,
		WorkspaceID:   r.WorkspaceID,
		WorkspaceName: r.WorkspaceName,
		Role:          r.Role,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type identityRecord struct {
	PK             string    `dynamodbav:"PK"`
	SK             string    `dynamodbav:"SK"`
	GSI1PK         string    `dynamodbav:"GSI1PK"`
	GSI1SK         string    `dynamodbav:"GSI1SK"`
	Provider       string    `dynamodbav:"Provider"`
	Subject        string    `dynamodbav:"Subject"`
	UserID         string    `dynamodbav:"UserId"`
	HashedPassword string    `dynamodbav:"HashedPassword,omitempty"`
	CreatedAt      time.Time `dynamodbav:"CreatedAt"`
}

func newIdentityRecord(a *model.AuthIdentity) *identityRecord {
	k := authKey(a.Provider, a.Subject)
	return &identityRecord{
		PK:             k,
		SK:             k,
		GSI1PK:         userKey(a.UserID),
		GSI1SK:         k,
		Provider:       a.Provider,
		Subject:        a.Subject,
		UserID:         a.UserID,
		HashedPassword: a.PasswordHash,
		CreatedAt:      a.CreatedAt,
	}
}

func (r *identityRecord) toModel() *model.AuthIdentity {
	return &model.AuthIdentity{
		Provider:     r.Provider,
		Subject:      r.Subject,
		UserID:       r.UserID,
		PasswordHash: r.HashedPassword,
		CreatedAt:    r.CreatedAt,
	}
}
