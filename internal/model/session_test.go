package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionUserID(t *testing.T) {
	tests := []struct {
		token  string
		userID string
		ok     bool
	}{
		{"uz_1234567890123456.abcDEF0123456789abcDEF0123456789", "1234567890123456", true},
		{"uz_42.x", "42", true},
		{"1234.abc", "", false},
		{"uz_", "", false},
		{"uz_1234", "", false},
		{"uz_.abc", "", false},
		{"uz_1234.", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			userID, ok := SessionUserID(tt.token)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.userID, userID)
		})
	}
}

func TestTriggerName(t *testing.T) {
	assert.Equal(t, "pmt-schedule-123", TriggerName("123"))
}

func TestExecutionLog_Summary(t *testing.T) {
	l := &ExecutionLog{ID: "0001", Status: "200", Success: true, DurationMs: 12, ResponseBody: "hello"}
	s := l.Summary()
	assert.Equal(t, "0001", s.ID)
	assert.Equal(t, "200", s.Status)
	assert.True(t, s.Success)
	assert.Equal(t, int64(12), s.DurationMs)
}
