package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ty-credit-api/internal/dto"
	"github.com/noah-isme/ty-credit-api/internal/models"
	appErrors "github.com/noah-isme/ty-credit-api/pkg/errors"
)

func seedFillStore(env *testEnv) {
	env.store.addYear("ay-1", true)
	env.store.addYear("ay-0", false)
	env.store.addGroup("cg-1", "ay-1")
	env.store.addGroup("cg-old", "ay-0")
	env.store.addStudent("stu-1", "cg-1")
	env.store.addStudent("stu-2", "cg-1")
	env.store.addStudent("stu-old", "cg-old")
	env.store.addStudent("stu-free", "")
}

func TestFillMaxAttendanceIsIdempotent(t *testing.T) {
	env := newTestEnv()
	seedFillStore(env)
	env.store.attendance["stu-1|"+models.TermOne] = 3
	svc := env.bulkFillService(true)

	req := FillMaxRequest{AcademicYearID: "ay-1", Source: dto.FillAttendance, Confirm: true}
	report, err := svc.FillMax(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Students)
	assert.Equal(t, 4, report.Updated)
	assert.Zero(t, report.Failed)

	snapshot := map[string]int{}
	for k, v := range env.store.attendance {
		snapshot[k] = v
	}
	assert.Equal(t, map[string]int{
		"stu-1|Term 1": 10, "stu-1|Term 2": 10,
		"stu-2|Term 1": 10, "stu-2|Term 2": 10,
	}, snapshot)

	_, err = svc.FillMax(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, snapshot, env.store.attendance)
}

func TestFillMaxWorkExperienceUpdatesFirstOrInsertsPlaceholder(t *testing.T) {
	env := newTestEnv()
	seedFillStore(env)
	env.store.work["we-seed"] = &models.WorkExperience{ID: "we-seed", StudentID: "stu-1", Business: "Bakery", CreditsEarned: 5}
	svc := env.bulkFillService(true)

	req := FillMaxRequest{AcademicYearID: "ay-1", Source: dto.FillWorkExperience, Confirm: true}
	for i := 0; i < 2; i++ {
		report, err := svc.FillMax(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Updated)
	}

	require.Len(t, env.store.work, 2)
	assert.Equal(t, "Bakery", env.store.work["we-seed"].Business)
	assert.Equal(t, 20, env.store.work["we-seed"].CreditsEarned)
	for id, row := range env.store.work {
		if id == "we-seed" {
			continue
		}
		assert.Equal(t, "stu-2", row.StudentID)
		assert.Equal(t, "Work Experience Placement", row.Business)
		assert.Equal(t, env.store.years["ay-1"].StartDate, row.StartDate)
		assert.Equal(t, 20, row.CreditsEarned)
	}
}

func TestFillMaxShortCourses(t *testing.T) {
	env := newTestEnv()
	seedFillStore(env)
	env.store.addSubject("short-1", "ay-1", models.SubjectTypeShort, 15)
	env.store.addSubject("short-old", "ay-0", models.SubjectTypeShort, 15)
	env.store.addSubject("core-1", "ay-1", models.SubjectTypeCore, 40)
	env.store.enroll("stu-1", "short-1", models.TermOne, 2)
	svc := env.bulkFillService(true)

	report, err := svc.FillMax(context.Background(), FillMaxRequest{AcademicYearID: "ay-1", Source: dto.FillShortCourses, Confirm: true})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Updated)
	require.Len(t, env.store.enrollments, 2)
	for _, e := range env.store.enrollments {
		assert.Equal(t, "short-1", e.SubjectID)
		assert.Equal(t, 15, e.CreditsEarned)
		assert.Equal(t, models.TermFullYear, *e.Term)
	}
}

func TestFillMaxCollectsRowFailures(t *testing.T) {
	env := newTestEnv()
	seedFillStore(env)
	env.store.failAttendanceFor["stu-2"] = true
	svc := env.bulkFillService(true)

	report, err := svc.FillMax(context.Background(), FillMaxRequest{AcademicYearID: "ay-1", Source: dto.FillAttendance, Confirm: true})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, "stu-2", report.Failures[0].StudentID)
	assert.Equal(t, models.TermOne, report.Failures[0].Target)
}

func TestFillMaxGuards(t *testing.T) {
	env := newTestEnv()
	seedFillStore(env)

	_, err := env.bulkFillService(false).FillMax(context.Background(), FillMaxRequest{AcademicYearID: "ay-1", Source: dto.FillAttendance, Confirm: true})
	assert.True(t, errors.Is(err, appErrors.ErrPreconditionFailed))

	svc := env.bulkFillService(true)
	_, err = svc.FillMax(context.Background(), FillMaxRequest{AcademicYearID: "ay-1", Source: dto.FillAttendance})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.FillMax(context.Background(), FillMaxRequest{AcademicYearID: "ay-1", Source: "portfolio", Confirm: true})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.FillMax(context.Background(), FillMaxRequest{AcademicYearID: "missing", Source: dto.FillAttendance, Confirm: true})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, env.store.attendance)
}

func TestFillMaxCancelledReturnsPartialReport(t *testing.T) {
	env := newTestEnv()
	seedFillStore(env)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := env.bulkFillService(true).FillMax(ctx, FillMaxRequest{AcademicYearID: "ay-1", Source: dto.FillAttendance, Confirm: true})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.True(t, report.Cancelled)
	assert.Zero(t, report.Updated)
}
