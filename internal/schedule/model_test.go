package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassSchedule_StartOn(t *testing.T) {
	s := &ClassSchedule{DayOfWeek: 1, StartTime: "18:30"}

	got, err := s.StartOn(time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 12, 18, 30, 0, 0, time.UTC), got)
}

func TestClassSchedule_StartOn_MalformedTime(t *testing.T) {
	s := &ClassSchedule{StartTime: "6pm"}

	_, err := s.StartOn(time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC))

	assert.Error(t, err)
}

func TestClassSchedule_OccursOn(t *testing.T) {
	s := &ClassSchedule{DayOfWeek: 1} // Monday

	assert.True(t, s.OccursOn(time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)))
	assert.False(t, s.OccursOn(time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC)))
	assert.False(t, s.OccursOn(time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC)))
}
