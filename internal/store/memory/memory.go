// Package memory is an in-process store.Store used by tests and local
// development (STORE_BACKEND=memory).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/store"
)

type Store struct {
	mu          sync.Mutex
	crons       map[string]model.CronJob
	logs        map[string]map[string]model.ExecutionLog
	summaries   map[string]model.DailySummary
	sessions    map[string]model.Session
	sessionSeq  []string
	users       map[string]model.User
	identities  map[string]model.AuthIdentity
	workspaces  map[string]model.Workspace
	memberships map[string]model.Membership
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		crons:       make(map[string]model.CronJob),
		logs:        make(map[string]map[string]model.ExecutionLog),
		summaries:   make(map[string]model.DailySummary),
		sessions:    make(map[string]model.Session),
		users:       make(map[string]model.User),
		identities:  make(map[string]model.AuthIdentity),
		workspaces:  make(map[string]model.Workspace),
		memberships: make(map[string]model.Membership),
	}
}

// ---------- Cron jobs ----------

func (s *Store) CreateCron(_ context.Context, job *model.CronJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.crons[job.ID]; ok {
		return fmt.Errorf("create cron %s: %w", job.ID, store.ErrAlreadyExists)
	}
	s.crons[job.ID] = copyJob(*job)
	return nil
}

func (s *Store) GetCron(_ context.Context, id string) (*model.CronJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.crons[id]
	if !ok {
		return nil, fmt.Errorf("get cron %s: %w", id, store.ErrNotFound)
	}
	job = copyJob(job)
	return &job, nil
}

func (s *Store) ListCronsByWorkspace(_ context.Context, workspaceID string) ([]model.CronJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var jobs []model.CronJob
	for _, job := range s.crons {
		if job.WorkspaceID == workspaceID {
			jobs = append(jobs, copyJob(job))
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs, nil
}

func (s *Store) UpdateCronDefinition(_ context.Context, id string, setting model.CronSetting, updatedAt time.Time) error {
	return s.mutateCron(id, "update cron", func(job *model.CronJob) {
		job.Setting = copySetting(setting)
		job.Name = setting.Name
		job.Description = setting.Description
		job.UpdatedAt = updatedAt
	})
}

func (s *Store) UpdateCronStatus(_ context.Context, id, status string, resetFailedCount bool) error {
	return s.mutateCron(id, "update cron status", func(job *model.CronJob) {
		job.Status = status
		if resetFailedCount {
			job.FailedCount = 0
		}
	})
}

func (s *Store) IncrementFailedCount(_ context.Context, id string) error {
	return s.mutateCron(id, "increment failed count", func(job *model.CronJob) {
		job.FailedCount++
	})
}

func (s *Store) ResetFailedCount(_ context.Context, id string) error {
	return s.mutateCron(id, "reset failed count", func(job *model.CronJob) {
		job.FailedCount = 0
	})
}

func (s *Store) DeleteCron(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.crons, id)
	return nil
}

func (s *Store) mutateCron(id, op string, fn func(job *model.CronJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.crons[id]
	if !ok {
		return fmt.Errorf("%s %s: %w", op, id, store.ErrNotFound)
	}
	fn(&job)
	s.crons[id] = job
	return nil
}

// ---------- Execution logs ----------

func (s *Store) PutExecutionLog(_ context.Context, log *model.ExecutionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byJob, ok := s.logs[log.JobID]
	if !ok {
		byJob = make(map[string]model.ExecutionLog)
		s.logs[log.JobID] = byJob
	}
	byJob[log.ID] = *log
	return nil
}

func (s *Store) IncrementDailySummary(_ context.Context, date string, success, failed int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := s.summaries[date]
	sum.Date = date
	sum.SuccessCount += success
	sum.FailedCount += failed
	s.summaries[date] = sum
	return nil
}

func (s *Store) ListExecutionLogs(_ context.Context, jobID string, limit int, cursor string) (*model.LogPage, error) {
	after, err := store.DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("list logs for cron %s: %w", jobID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.logs[jobID]))
	for id := range s.logs[jobID] {
		if after == "" || id < after {
			ids = append(ids, id)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))

	page := &model.LogPage{Logs: []model.ExecutionLogSummary{}}
	for i, id := range ids {
		if i == limit {
			page.Cursor = store.EncodeCursor(ids[i-1])
			break
		}
		l := s.logs[jobID][id]
		page.Logs = append(page.Logs, l.Summary())
	}
	return page, nil
}

func (s *Store) GetExecutionLog(_ context.Context, jobID, logID string) (*model.ExecutionLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[jobID][logID]
	if !ok {
		return nil, fmt.Errorf("get log %s/%s: %w", jobID, logID, store.ErrNotFound)
	}
	return &l, nil
}

func (s *Store) ListDailySummaries(_ context.Context, start, end string) ([]model.DailySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.DailySummary{}
	for date, sum := range s.summaries {
		if date >= start && date <= end {
			out = append(out, sum)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// ---------- Sessions ----------

func (s *Store) CreateSession(_ context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return fmt.Errorf("create session: %w", store.ErrAlreadyExists)
	}
	s.sessions[session.ID] = *session
	s.sessionSeq = append(s.sessionSeq, session.ID)
	return nil
}

func (s *Store) GetSessionContext(_ context.Context, token, userID, workspaceID string) (*store.SessionContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc := &store.SessionContext{}
	if sess, ok := s.sessions[token]; ok {
		sc.Session = &sess
	}
	if user, ok := s.users[userID]; ok {
		sc.User = &user
	}
	if workspaceID != "" {
		if m, ok := s.memberships[membershipKey(userID, workspaceID)]; ok {
			sc.Membership = &m
		}
	}
	return sc, nil
}

func (s *Store) ListSessionsByUser(_ context.Context, userID string) ([]model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Session
	for _, id := range s.sessionSeq {
		if sess, ok := s.sessions[id]; ok && sess.UserID == userID {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *Store) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		return nil
	}
	delete(s.sessions, token)
	for i, id := range s.sessionSeq {
		if id == token {
			s.sessionSeq = append(s.sessionSeq[:i], s.sessionSeq[i+1:]...)
			break
		}
	}
	return nil
}

// ---------- Identities ----------

func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("create user %s: %w", user.ID, store.ErrAlreadyExists)
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("get user %s: %w", id, store.ErrNotFound)
	}
	return &user, nil
}

func (s *Store) CreateAuthIdentity(_ context.Context, identity *model.AuthIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := identityKey(identity.Provider, identity.Subject)
	if _, ok := s.identities[key]; ok {
		return fmt.Errorf("create auth identity %s: %w", key, store.ErrAlreadyExists)
	}
	s.identities[key] = *identity
	return nil
}

func (s *Store) GetAuthIdentity(_ context.Context, provider, subject string) (*model.AuthIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := identityKey(provider, subject)
	identity, ok := s.identities[key]
	if !ok {
		return nil, fmt.Errorf("get auth identity %s: %w", key, store.ErrNotFound)
	}
	return &identity, nil
}

func (s *Store) CreateWorkspace(_ context.Context, workspace *model.Workspace, owner *model.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mk := membershipKey(owner.UserID, workspace.ID)
	if _, ok := s.workspaces[workspace.ID]; ok {
		return fmt.Errorf("create workspace %s: %w", workspace.ID, store.ErrAlreadyExists)
	}
	if _, ok := s.memberships[mk]; ok {
		return fmt.Errorf("create workspace %s: %w", workspace.ID, store.ErrAlreadyExists)
	}
	s.workspaces[workspace.ID] = *workspace
	s.memberships[mk] = *owner
	return nil
}

func (s *Store) ListMembershipsByUser(_ context.Context, userID string) ([]model.Membership, error) {
	return s.listMemberships(func(m model.Membership) bool { return m.UserID == userID }), nil
}

func (s *Store) ListMembershipsByWorkspace(_ context.Context, workspaceID string) ([]model.Membership, error) {
	return s.listMemberships(func(m model.Membership) bool { return m.WorkspaceID == workspaceID }), nil
}

func (s *Store) listMemberships(match func(model.Membership) bool) []model.Membership {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Membership
	for _, m := range s.memberships {
		if match(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return membershipKey(out[i].UserID, out[i].WorkspaceID) < membershipKey(out[j].UserID, out[j].WorkspaceID)
	})
	return out
}

func membershipKey(userID, workspaceID string) string {
	return userID + "/" + workspaceID
}

func identityKey(provider, subject string) string {
	return provider + "#" + subject
}

func copyJob(job model.CronJob) model.CronJob {
	job.Setting = copySetting(job.Setting)
	return job
}

func copySetting(s model.CronSetting) model.CronSetting {
	if s.Action.Headers != nil {
		h := make(map[string]string, len(s.Action.Headers))
		for k, v := range s.Action.Headers {
			h[k] = v
		}
		s.Action.Headers = h
	}
	return s
}
