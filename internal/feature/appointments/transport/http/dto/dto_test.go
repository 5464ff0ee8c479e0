package dto

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appt_calendar/internal/feature/appointments/domain"
	"appt_calendar/internal/feature/appointments/domain/entity"
)

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC)
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2024-05-01 14:30:00", want, false},
		{"2024-05-01T14:30", want, false},
		{"2024-05-01 14:30", want, false},
		{"2024-05-01T14:30:00", want, false},
		{"2024-05-01T16:30:00+02:00", want, false},
		{"  ", time.Time{}, false},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, true},
		{"2024-13-01 14:30", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseTimestamp(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestAppointmentForm_ToFields(t *testing.T) {
	t.Parallel()

	f, err := AppointmentForm{Title: "Dentist", Start: "2024-05-01T09:00", End: "2024-05-01T10:00", AllDay: true}.ToFields()
	require.NoError(t, err)
	assert.Equal(t, "Dentist", f.Title)
	assert.True(t, f.AllDay)
	assert.Equal(t, time.Hour, f.End.Sub(f.Start))

	_, err = AppointmentForm{Title: "x", Start: "soon", End: "later"}.ToFields()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{"start": domain.ReasonInvalid, "end": domain.ReasonInvalid}, verr.Map())
}

func TestToFields_ReportsEveryRejectedField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		conv func() (entity.Fields, error)
		want map[string]string
	}{
		{
			"json: empty title with bad start",
			AppointmentReq{Title: "", Start: "garbage"}.ToFields,
			map[string]string{"title": domain.ReasonRequired, "start": domain.ReasonInvalid},
		},
		{
			"form: long location with bad end",
			AppointmentForm{Title: "ok", Start: "2024-05-01T09:00", End: "nope", Location: strings.Repeat("x", domain.MaxLocationLength+1)}.ToFields,
			map[string]string{"end": domain.ReasonInvalid, "location": domain.ReasonTooLong},
		},
		{
			"form: blank title with bad end and no start",
			AppointmentForm{Title: "   ", End: "nope"}.ToFields,
			map[string]string{"title": domain.ReasonRequired, "start": domain.ReasonRequired, "end": domain.ReasonInvalid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.conv()
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.want, verr.Map())
		})
	}
}

func TestFormFrom(t *testing.T) {
	t.Parallel()

	form := FormFrom(entity.Fields{
		Title: "Dentist",
		Start: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, "2024-05-01T09:00", form.Start)
	assert.Empty(t, form.End)
}

func TestToAppointmentRes(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	res := ToAppointmentRes(&entity.Appointment{ID: 3, Title: "Dentist", Start: start, End: start.Add(90 * time.Minute)})

	assert.Equal(t, uint(3), res.ID)
	assert.Equal(t, int64(5400), res.DurationSeconds)
	assert.Equal(t, "1 hour, 30 minutes", res.Duration)

	assert.Empty(t, ToAppointmentList(nil))
}
