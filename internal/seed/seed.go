// Package seed loads users, workspaces and cron jobs from a YAML file
// through the core services, for development and demo environments.
package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/edvin/cronhook/internal/core"
	"github.com/edvin/cronhook/internal/model"
)

type Config struct {
	Users []User `yaml:"users"`
}

// User is registered with an email login. Crons go into the user's default
// workspace.
type User struct {
	Name       string      `yaml:"name"`
	Email      string      `yaml:"email"`
	Password   string      `yaml:"password"`
	Crons      []Cron      `yaml:"crons"`
	Workspaces []Workspace `yaml:"workspaces"`
}

type Workspace struct {
	Name  string `yaml:"name"`
	Crons []Cron `yaml:"crons"`
}

type Cron struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Expression  string            `yaml:"expression"`
	URL         string            `yaml:"url"`
	Method      string            `yaml:"method"`
	Headers     map[string]string `yaml:"headers"`
	Body        string            `yaml:"body"`
	Disabled    bool              `yaml:"disabled"`
}

func (c Cron) setting() model.CronSetting {
	method := c.Method
	if method == "" {
		method = "GET"
	}
	return model.CronSetting{
		Name:        c.Name,
		Description: c.Description,
		Schedule:    model.CronSchedule{Type: "cron", Expression: c.Expression},
		Action: model.CronAction{
			Type:    "fetch",
			URL:     c.URL,
			Method:  method,
			Headers: c.Headers,
			Body:    c.Body,
		},
	}
}

// Result counts what a seed run created.
type Result struct {
	Users      int
	Workspaces int
	Crons      int
}

func (r Result) String() string {
	return fmt.Sprintf("%d users, %d workspaces, %d crons", r.Users, r.Workspaces, r.Crons)
}

// Load reads and parses a seed file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i, u := range cfg.Users {
		if u.Email == "" {
			return nil, fmt.Errorf("user %d: email is required", i)
		}
	}
	return &cfg, nil
}

// Apply creates everything in cfg. Users whose email is already registered
// are skipped together with their workspaces and crons, so a seed file can be
// applied more than once.
func Apply(ctx context.Context, svcs *core.Services, cfg *Config) (Result, error) {
	var res Result
	logger := zerolog.Ctx(ctx)

	for _, u := range cfg.Users {
		userID, err := svcs.Auth.Register(ctx, u.Name, u.Email, u.Password)
		if core.KindOf(err) == core.KindConflict {
			logger.Info().Str("email", u.Email).Msg("user exists, skipping")
			continue
		}
		if err != nil {
			return res, fmt.Errorf("register %s: %w", u.Email, err)
		}
		res.Users++

		memberships, err := svcs.Workspace.ListByUser(ctx, userID)
		if err != nil {
			return res, fmt.Errorf("list workspaces of %s: %w", u.Email, err)
		}
		if len(memberships) > 0 {
			n, err := createCrons(ctx, svcs, memberships[0].WorkspaceID, userID, u.Crons)
			res.Crons += n
			if err != nil {
				return res, err
			}
		}

		for _, w := range u.Workspaces {
			ws, err := svcs.Workspace.Create(ctx, userID, w.Name)
			if err != nil {
				return res, fmt.Errorf("create workspace %q: %w", w.Name, err)
			}
			res.Workspaces++

			n, err := createCrons(ctx, svcs, ws.ID, userID, w.Crons)
			res.Crons += n
			if err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

func createCrons(ctx context.Context, svcs *core.Services, workspaceID, userID string, crons []Cron) (int, error) {
	created := 0
	for _, c := range crons {
		job, err := svcs.Cron.Create(ctx, workspaceID, userID, c.setting())
		if err != nil {
			return created, fmt.Errorf("create cron %q: %w", c.Name, err)
		}
		created++

		if c.Disabled {
			if err := svcs.Cron.Disable(ctx, job, model.CronStatusDisabled); err != nil {
				return created, fmt.Errorf("disable cron %q: %w", c.Name, err)
			}
		}
	}
	return created, nil
}
