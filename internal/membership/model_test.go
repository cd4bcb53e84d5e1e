package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gymdesk/internal/apperr"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusActive, StatusSuspended, true},
		{StatusSuspended, StatusActive, true},
		{StatusActive, StatusCancelled, true},
		{StatusSuspended, StatusCancelled, true},
		{StatusActive, StatusExpired, true},
		{StatusSuspended, StatusExpired, true},

		{StatusExpired, StatusActive, false},
		{StatusExpired, StatusSuspended, false},
		{StatusExpired, StatusCancelled, false},
		{StatusCancelled, StatusActive, false},
		{StatusCancelled, StatusSuspended, false},
		{StatusCancelled, StatusExpired, false},
		{StatusActive, StatusActive, false},
		{StatusSuspended, StatusSuspended, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))

			err := CheckTransition(tt.from, tt.to)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
			}
		})
	}
}

func TestMembership_ExpiresBefore(t *testing.T) {
	m := &Membership{
		EndDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	// Good through the whole end day.
	assert.False(t, m.ExpiresBefore(time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC)))
	assert.False(t, m.ExpiresBefore(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.True(t, m.ExpiresBefore(time.Date(2026, 3, 16, 0, 30, 0, 0, time.UTC)))
}
