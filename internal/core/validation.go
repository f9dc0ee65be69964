package core

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/edvin/cronhook/internal/model"
)

var cronFieldPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`^\d+-\d+$`),
	regexp.MustCompile(`^\d+-\d+/\d+$`),
	regexp.MustCompile(`^\*/\d+$`),
}

var allowedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"PATCH":  true,
	"DELETE": true,
}

// ValidateCronSetting checks a job definition and returns a validation error
// describing the first violated rule.
func ValidateCronSetting(s model.CronSetting) error {
	if utf8.RuneCountInString(s.Name) < 3 {
		return ValidationError("name must be at least 3 characters")
	}

	if s.Schedule.Expression == "" {
		return ValidationError("cron expression is required")
	}
	if !ValidCronExpression(s.Schedule.Expression) {
		return ValidationError("invalid cron expression")
	}

	if s.Action.Type != "fetch" {
		return ValidationError("invalid action type")
	}

	if s.Action.URL == "" {
		return ValidationError("url is required")
	}
	u, err := url.Parse(s.Action.URL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ValidationError("invalid url")
	}

	if s.Action.Method == "" {
		return ValidationError("method is required")
	}
	if !allowedMethods[s.Action.Method] {
		return ValidationError("invalid method")
	}

	return nil
}

// ValidCronExpression reports whether expr is a six field AWS-style
// expression such as "cron(0 12 * * ? *)". Fields are split on single
// spaces, so repeated spaces produce an empty, invalid field.
func ValidCronExpression(expr string) bool {
	inner, ok := strings.CutPrefix(expr, "cron(")
	if !ok {
		return false
	}
	inner, ok = strings.CutSuffix(inner, ")")
	if !ok {
		return false
	}

	fields := strings.Split(inner, " ")
	if len(fields) != 6 {
		return false
	}
	for _, f := range fields {
		if !validCronField(f) {
			return false
		}
	}
	return true
}

func validCronField(f string) bool {
	if f == "*" || f == "?" {
		return true
	}
	for _, p := range cronFieldPatterns {
		if p.MatchString(f) {
			return true
		}
	}
	return false
}
