package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ty-credit-api/internal/models"
	appErrors "github.com/noah-isme/ty-credit-api/pkg/errors"
)

func TestRecordAttendanceBounds(t *testing.T) {
	env := newTestEnv()
	env.store.addStudent("stu-1", "")
	svc := env.creditRecordService()

	err := svc.RecordAttendance(context.Background(), AttendanceRequest{StudentID: "stu-1", Period: models.TermOne, Credits: 11})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	err = svc.RecordAttendance(context.Background(), AttendanceRequest{StudentID: "stu-1", Period: models.TermFullYear, Credits: 5})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	err = svc.RecordAttendance(context.Background(), AttendanceRequest{StudentID: "ghost", Period: models.TermOne, Credits: 5})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	require.NoError(t, svc.RecordAttendance(context.Background(), AttendanceRequest{StudentID: "stu-1", Period: models.TermOne, Credits: 10}))
	assert.Equal(t, 10, env.store.attendance["stu-1|Term 1"])
}

func TestWorkExperienceLifecycle(t *testing.T) {
	env := newTestEnv()
	env.store.addStudent("stu-1", "")
	svc := env.creditRecordService()
	start := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)

	_, err := svc.RecordWorkExperience(context.Background(), WorkExperienceRequest{StudentID: "stu-1", Business: "Bakery", StartDate: start, EndDate: start.AddDate(0, 0, -1), Credits: 5})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.RecordWorkExperience(context.Background(), WorkExperienceRequest{StudentID: "stu-1", Business: "Bakery", StartDate: start, EndDate: start, Credits: 21})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	row, err := svc.RecordWorkExperience(context.Background(), WorkExperienceRequest{StudentID: "stu-1", Business: "Bakery", StartDate: start, EndDate: start.AddDate(0, 0, 5), Credits: 12})
	require.NoError(t, err)

	updated, err := svc.UpdateWorkExperienceCredits(context.Background(), row.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, updated.CreditsEarned)

	_, err = svc.UpdateWorkExperienceCredits(context.Background(), row.ID, 25)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	require.NoError(t, svc.DeleteWorkExperience(context.Background(), row.ID))
	err = svc.DeleteWorkExperience(context.Background(), row.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestRecordPortfolioUpsertsByPeriod(t *testing.T) {
	env := newTestEnv()
	env.store.addYear("ay-1", true)
	env.store.addStudent("stu-1", "")
	env.store.teachers["t-1"] = &models.Teacher{ID: "t-1", Name: "Ms Kelly"}
	svc := env.creditRecordService()

	req := PortfolioRequest{StudentID: "stu-1", AcademicYearID: "ay-1", Period: models.TermOne, Credits: 30, TeacherID: strPtr("t-1")}
	first, err := svc.RecordPortfolio(context.Background(), req)
	require.NoError(t, err)

	req.Credits = 45
	second, err := svc.RecordPortfolio(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, env.store.portfolios, 1)

	req.Credits = 51
	_, err = svc.RecordPortfolio(context.Background(), req)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	req.Credits = 10
	req.TeacherID = strPtr("t-unknown")
	_, err = svc.RecordPortfolio(context.Background(), req)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestListRecords(t *testing.T) {
	env := newTestEnv()
	env.store.addStudent("stu-1", "")
	env.store.addStudent("stu-2", "")
	svc := env.creditRecordService()
	ctx := context.Background()
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	require.NoError(t, svc.RecordAttendance(ctx, AttendanceRequest{StudentID: "stu-1", Period: models.TermTwo, Credits: 7}))
	_, err := svc.RecordWorkExperience(ctx, WorkExperienceRequest{StudentID: "stu-1", Business: "Garage", StartDate: start, EndDate: start, Credits: 4})
	require.NoError(t, err)
	_, err = svc.RecordWorkExperience(ctx, WorkExperienceRequest{StudentID: "stu-2", Business: "Library", StartDate: start, EndDate: start, Credits: 9})
	require.NoError(t, err)

	records, err := svc.ListRecords(ctx, "stu-1")
	require.NoError(t, err)
	require.Len(t, records.WorkExperience, 1)
	assert.Equal(t, "Garage", records.WorkExperience[0].Business)
	require.Len(t, records.Attendance, 1)
	assert.Equal(t, 7, records.Attendance[0].CreditsEarned)
	assert.Empty(t, records.Portfolios)

	_, err = svc.ListRecords(ctx, "ghost")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
