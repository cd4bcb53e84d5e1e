package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gymdesk/internal/apperr"
	"gymdesk/internal/notify"
	"gymdesk/internal/schedule"
)

type MockRepo struct{ mock.Mock }

func (m *MockRepo) Book(ctx context.Context, rec BookRecord) (*ClassBooking, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ClassBooking), args.Error(1)
}

func (m *MockRepo) Cancel(ctx context.Context, bookingID, scheduleID int, reason string) (*ClassBooking, *ClassBooking, error) {
	args := m.Called(ctx, bookingID, scheduleID, reason)
	var cancelled, promoted *ClassBooking
	if args.Get(0) != nil {
		cancelled = args.Get(0).(*ClassBooking)
	}
	if args.Get(1) != nil {
		promoted = args.Get(1).(*ClassBooking)
	}
	return cancelled, promoted, args.Error(2)
}

func (m *MockRepo) MarkAttended(ctx context.Context, bookingID int) (*ClassBooking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ClassBooking), args.Error(1)
}

func (m *MockRepo) MarkNoShow(ctx context.Context, bookingID int) (*ClassBooking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ClassBooking), args.Error(1)
}

func (m *MockRepo) GetByID(ctx context.Context, id int) (*ClassBooking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ClassBooking), args.Error(1)
}

func (m *MockRepo) CountSeats(ctx context.Context, scheduleID int, date time.Time) (int, error) {
	args := m.Called(ctx, scheduleID, date)
	return args.Int(0), args.Error(1)
}

func (m *MockRepo) CountWaitlisted(ctx context.Context, scheduleID int, date time.Time) (int, error) {
	args := m.Called(ctx, scheduleID, date)
	return args.Int(0), args.Error(1)
}

func (m *MockRepo) ListForSlot(ctx context.Context, scheduleID int, date time.Time) ([]ClassBooking, error) {
	args := m.Called(ctx, scheduleID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ClassBooking), args.Error(1)
}

func (m *MockRepo) ListByClient(ctx context.Context, clientID int) ([]ClassBooking, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ClassBooking), args.Error(1)
}

type MockScheduleRepo struct{ mock.Mock }

func (m *MockScheduleRepo) Create(ctx context.Context, req schedule.CreateScheduleRequest) (*schedule.ClassSchedule, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.ClassSchedule), args.Error(1)
}

func (m *MockScheduleRepo) GetByID(ctx context.Context, id int) (*schedule.ClassSchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.ClassSchedule), args.Error(1)
}

func (m *MockScheduleRepo) List(ctx context.Context, activeOnly bool) ([]schedule.ClassSchedule, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schedule.ClassSchedule), args.Error(1)
}

func (m *MockScheduleRepo) Deactivate(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

type MockGate struct{ mock.Mock }

func (m *MockGate) HasActiveMembership(ctx context.Context, clientID int) (bool, error) {
	args := m.Called(ctx, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGate) CanBookClass(ctx context.Context, clientID int) (bool, error) {
	args := m.Called(ctx, clientID)
	return args.Bool(0), args.Error(1)
}

type capturedEvents struct {
	events []notify.Event
}

func (c *capturedEvents) Emit(_ context.Context, ev notify.Event) {
	c.events = append(c.events, ev)
}

type fixture struct {
	repo         *MockRepo
	scheduleRepo *MockScheduleRepo
	gate         *MockGate
	events       *capturedEvents
	svc          *service
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		repo:         new(MockRepo),
		scheduleRepo: new(MockScheduleRepo),
		gate:         new(MockGate),
		events:       &capturedEvents{},
	}
	f.svc = &service{
		repo:         f.repo,
		scheduleRepo: f.scheduleRepo,
		gate:         f.gate,
		events:       f.events,
		now:          func() time.Time { return now },
	}
	return f
}

// Monday evening yoga, capacity 10, 2 hour cancellation window.
func mondayYoga() *schedule.ClassSchedule {
	return &schedule.ClassSchedule{
		ID:                  1,
		Name:                "Yoga",
		DayOfWeek:           1,
		StartTime:           "18:00",
		EndTime:             "19:00",
		MaxCapacity:         10,
		RequiresReservation: true,
		CancelHoursBefore:   2,
		IsActive:            true,
	}
}

func TestService_Book(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC) // Saturday
	monday := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	t.Run("happy path", func(t *testing.T) {
		f := newFixture(now)
		f.scheduleRepo.On("GetByID", mock.Anything, 1).Return(mondayYoga(), nil)
		f.gate.On("HasActiveMembership", mock.Anything, 3).Return(true, nil)
		f.gate.On("CanBookClass", mock.Anything, 3).Return(true, nil)
		f.repo.On("Book", mock.Anything, BookRecord{
			ScheduleID: 1, ClientID: 3, BookingDate: monday, MaxCapacity: 10,
		}).Return(&ClassBooking{ID: 42, Status: StatusConfirmed}, nil)

		b, err := f.svc.Book(context.Background(), 1, 3, monday, "")

		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, b.Status)
		f.repo.AssertExpectations(t)
	})

	t.Run("inactive schedule", func(t *testing.T) {
		f := newFixture(now)
		s := mondayYoga()
		s.IsActive = false
		f.scheduleRepo.On("GetByID", mock.Anything, 1).Return(s, nil)

		_, err := f.svc.Book(context.Background(), 1, 3, monday, "")

		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		f.repo.AssertNotCalled(t, "Book")
	})

	t.Run("walk-in class takes no reservations", func(t *testing.T) {
		f := newFixture(now)
		s := mondayYoga()
		s.RequiresReservation = false
		f.scheduleRepo.On("GetByID", mock.Anything, 1).Return(s, nil)

		_, err := f.svc.Book(context.Background(), 1, 3, monday, "")

		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		f.repo.AssertNotCalled(t, "Book")
	})

	t.Run("wrong weekday", func(t *testing.T) {
		f := newFixture(now)
		f.scheduleRepo.On("GetByID", mock.Anything, 1).Return(mondayYoga(), nil)

		tuesday := monday.AddDate(0, 0, 1)
		_, err := f.svc.Book(context.Background(), 1, 3, tuesday, "")

		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("past instance", func(t *testing.T) {
		f := newFixture(now)
		f.scheduleRepo.On("GetByID", mock.Anything, 1).Return(mondayYoga(), nil)

		lastMonday := monday.AddDate(0, 0, -7)
		_, err := f.svc.Book(context.Background(), 1, 3, lastMonday, "")

		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("no active membership", func(t *testing.T) {
		f := newFixture(now)
		f.scheduleRepo.On("GetByID", mock.Anything, 1).Return(mondayYoga(), nil)
		f.gate.On("HasActiveMembership", mock.Anything, 3).Return(false, nil)

		_, err := f.svc.Book(context.Background(), 1, 3, monday, "")

		assert.True(t, apperr.IsKind(err, apperr.KindBusinessRule))
		f.repo.AssertNotCalled(t, "Book")
	})

	t.Run("period limit reached", func(t *testing.T) {
		f := newFixture(now)
		f.scheduleRepo.On("GetByID", mock.Anything, 1).Return(mondayYoga(), nil)
		f.gate.On("HasActiveMembership", mock.Anything, 3).Return(true, nil)
		f.gate.On("CanBookClass", mock.Anything, 3).Return(false, nil)

		_, err := f.svc.Book(context.Background(), 1, 3, monday, "")

		assert.True(t, apperr.IsKind(err, apperr.KindBusinessRule))
		f.repo.AssertNotCalled(t, "Book")
	})
}

func TestService_Cancel(t *testing.T) {
	monday := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	open := &ClassBooking{
		ID: 42, ScheduleID: 1, ClientID: 3,
		BookingDate: monday, Status: StatusConfirmed,
	}

	t.Run("inside the window cancels and promotes", func(t *testing.T) {
		// Class starts 18:00, window closes 16:00.
		f := newFixture(time.Date(2026, 1, 12, 10, 0, 0, 0, time.UTC))
		f.repo.On("GetByID", mock.Anything, 42).Return(open, nil)
		f.scheduleRepo.On("GetByID", mock.Anything, 1).Return(mondayYoga(), nil)

		promoted := &ClassBooking{ID: 43, ScheduleID: 1, ClientID: 9, BookingDate: monday, Status: StatusConfirmed}
		f.repo.On("Cancel", mock.Anything, 42, 1, "sick").
			Return(&ClassBooking{ID: 42, Status: StatusCancelled}, promoted, nil)

		err := f.svc.Cancel(context.Background(), 42, "sick")

		require.NoError(t, err)
		require.Len(t, f.events.events, 1)
		assert.Equal(t, notify.EventWaitlistPromoted, f.events.events[0].Type)
		assert.Equal(t, 9, f.events.events[0].ClientID)
	})

	t.Run("no promotion emits nothing", func(t *testing.T) {
		f := newFixture(time.Date(2026, 1, 12, 10, 0, 0, 0, time.UTC))
		f.repo.On("GetByID", mock.Anything, 42).Return(open, nil)
		f.scheduleRepo.On("GetByID", mock.Anything, 1).Return(mondayYoga(), nil)
		f.repo.On("Cancel", mock.Anything, 42, 1, "sick").
			Return(&ClassBooking{ID: 42, Status: StatusCancelled}, nil, nil)

		err := f.svc.Cancel(context.Background(), 42, "sick")

		require.NoError(t, err)
		assert.Empty(t, f.events.events)
	})

	t.Run("window passed", func(t *testing.T) {
		f := newFixture(time.Date(2026, 1, 12, 17, 0, 0, 0, time.UTC))
		f.repo.On("GetByID", mock.Anything, 42).Return(open, nil)
		f.scheduleRepo.On("GetByID", mock.Anything, 1).Return(mondayYoga(), nil)

		err := f.svc.Cancel(context.Background(), 42, "sick")

		assert.True(t, apperr.IsKind(err, apperr.KindBusinessRule))
		f.repo.AssertNotCalled(t, "Cancel")
	})
}

func TestService_Availability(t *testing.T) {
	monday := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	f := newFixture(time.Now())
	f.scheduleRepo.On("GetByID", mock.Anything, 1).Return(mondayYoga(), nil)
	f.repo.On("CountSeats", mock.Anything, 1, monday).Return(10, nil)
	f.repo.On("CountWaitlisted", mock.Anything, 1, monday).Return(2, nil)

	a, err := f.svc.Availability(context.Background(), 1, monday)

	require.NoError(t, err)
	assert.True(t, a.IsFull)
	assert.Equal(t, 0, a.Available)
	assert.Equal(t, 2, a.Waitlisted)
}
