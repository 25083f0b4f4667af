package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/ty-credit-api/internal/dto"
	"github.com/noah-isme/ty-credit-api/internal/models"
	"github.com/noah-isme/ty-credit-api/internal/repository"
	appErrors "github.com/noah-isme/ty-credit-api/pkg/errors"
)

// memStore is an in-memory stand-in for the postgres tables used by the services.
type memStore struct {
	seq         int
	years       map[string]*models.AcademicYear
	groups      map[string]*models.ClassGroup
	students    map[string]*models.Student
	subjects    map[string]*models.Subject
	enrollments map[string]*models.Enrollment
	attendance  map[string]int // student|period
	work        map[string]*models.WorkExperience
	portfolios  map[string]*models.Portfolio // student|year|period
	teachers    map[string]*models.Teacher

	failAttendanceFor map[string]bool
	insertRace        bool
}

func newMemStore() *memStore {
	return &memStore{
		years:             map[string]*models.AcademicYear{},
		groups:            map[string]*models.ClassGroup{},
		students:          map[string]*models.Student{},
		subjects:          map[string]*models.Subject{},
		enrollments:       map[string]*models.Enrollment{},
		attendance:        map[string]int{},
		work:              map[string]*models.WorkExperience{},
		portfolios:        map[string]*models.Portfolio{},
		teachers:          map[string]*models.Teacher{},
		failAttendanceFor: map[string]bool{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) addYear(id string, current bool) *models.AcademicYear {
	y := &models.AcademicYear{
		ID:        id,
		Name:      id,
		StartDate: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		IsCurrent: current,
	}
	if current {
		now := time.Now()
		y.CurrentSince = &now
	}
	m.years[id] = y
	return y
}

func (m *memStore) addGroup(id, yearID string) {
	m.groups[id] = &models.ClassGroup{ID: id, Name: strings.ToUpper(id), AcademicYearID: yearID}
}

func (m *memStore) addStudent(id, groupID string) {
	s := &models.Student{ID: id, Name: "Student " + id}
	if groupID != "" {
		g := groupID
		s.ClassGroupID = &g
	}
	m.students[id] = s
}

func (m *memStore) addSubject(id, yearID string, kind models.SubjectType, creditValue int) {
	m.subjects[id] = &models.Subject{ID: id, Name: "Subject " + id, AcademicYearID: yearID, Type: kind, CreditValue: creditValue}
}

func (m *memStore) enroll(studentID, subjectID, term string, credits int) string {
	id := m.nextID("enr")
	e := &models.Enrollment{ID: id, StudentID: studentID, SubjectID: subjectID, CreditsEarned: credits}
	if term != "" {
		t := term
		e.Term = &t
	}
	m.enrollments[id] = e
	return id
}

func (m *memStore) findEnrollment(studentID, subjectID string) *models.Enrollment {
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.SubjectID == subjectID {
			return e
		}
	}
	return nil
}

func (m *memStore) detail(s *models.Student) models.StudentDetail {
	d := models.StudentDetail{Student: *s}
	if s.ClassGroupID != nil {
		if g, ok := m.groups[*s.ClassGroupID]; ok {
			name, year := g.Name, g.AcademicYearID
			d.ClassGroupName = &name
			d.AcademicYearID = &year
		}
	}
	return d
}

// --- academic years

type memYearRepo struct{ *memStore }

func (r memYearRepo) List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, int, error) {
	var out []models.AcademicYear
	for _, y := range r.years {
		out = append(out, *y)
	}
	return out, len(out), nil
}

func (r memYearRepo) FindByID(ctx context.Context, id string) (*models.AcademicYear, error) {
	y, ok := r.years[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *y
	return &cp, nil
}

func (r memYearRepo) ListCurrent(ctx context.Context) ([]models.AcademicYear, error) {
	var out []models.AcademicYear
	for _, y := range r.years {
		if y.IsCurrent {
			out = append(out, *y)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CurrentSince == nil || out[j].CurrentSince == nil {
			return out[j].CurrentSince == nil && out[i].CurrentSince != nil
		}
		return out[i].CurrentSince.After(*out[j].CurrentSince)
	})
	return out, nil
}

func (r memYearRepo) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	for _, y := range r.years {
		if strings.EqualFold(y.Name, name) && y.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r memYearRepo) Create(ctx context.Context, year *models.AcademicYear) error {
	year.ID = r.nextID("ay")
	year.IsCurrent = false
	cp := *year
	r.years[year.ID] = &cp
	return nil
}

func (r memYearRepo) Update(ctx context.Context, year *models.AcademicYear) error {
	cp := *year
	r.years[year.ID] = &cp
	return nil
}

func (r memYearRepo) SetCurrent(ctx context.Context, id string) error {
	if _, ok := r.years[id]; !ok {
		return sql.ErrNoRows
	}
	now := time.Now()
	for _, y := range r.years {
		y.IsCurrent = y.ID == id
		y.CurrentSince = nil
		if y.IsCurrent {
			y.CurrentSince = &now
		}
	}
	return nil
}

func (r memYearRepo) ClearCurrentExcept(ctx context.Context, id string) error {
	for _, y := range r.years {
		if y.ID != id {
			y.IsCurrent = false
			y.CurrentSince = nil
		}
	}
	return nil
}

func (r memYearRepo) Delete(ctx context.Context, id string) error {
	delete(r.years, id)
	return nil
}

func (r memYearRepo) CountClassGroups(ctx context.Context, id string) (int, error) {
	count := 0
	for _, g := range r.groups {
		if g.AcademicYearID == id {
			count++
		}
	}
	return count, nil
}

func (r memYearRepo) CountSubjects(ctx context.Context, id string) (int, error) {
	count := 0
	for _, s := range r.subjects {
		if s.AcademicYearID == id {
			count++
		}
	}
	return count, nil
}

// --- class groups

type memGroupRepo struct{ *memStore }

func (r memGroupRepo) List(ctx context.Context, academicYearID string) ([]models.ClassGroupDetail, error) {
	var out []models.ClassGroupDetail
	for _, g := range r.groups {
		if academicYearID == "" || g.AcademicYearID == academicYearID {
			out = append(out, models.ClassGroupDetail{ClassGroup: *g})
		}
	}
	return out, nil
}

func (r memGroupRepo) FindByID(ctx context.Context, id string) (*models.ClassGroup, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *g
	return &cp, nil
}

func (r memGroupRepo) Create(ctx context.Context, group *models.ClassGroup) error {
	group.ID = r.nextID("cg")
	cp := *group
	r.groups[group.ID] = &cp
	return nil
}

func (r memGroupRepo) Update(ctx context.Context, group *models.ClassGroup) error {
	cp := *group
	r.groups[group.ID] = &cp
	return nil
}

func (r memGroupRepo) Delete(ctx context.Context, id string) error {
	delete(r.groups, id)
	return nil
}

func (r memGroupRepo) CountStudents(ctx context.Context, id string) (int, error) {
	count := 0
	for _, s := range r.students {
		if s.ClassGroupID != nil && *s.ClassGroupID == id {
			count++
		}
	}
	return count, nil
}

// --- students

type memStudentRepo struct{ *memStore }

func (r memStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	var out []models.StudentDetail
	for _, s := range r.students {
		out = append(out, r.detail(s))
	}
	return out, len(out), nil
}

func (r memStudentRepo) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	d := r.detail(s)
	return &d, nil
}

func (r memStudentRepo) ListByAcademicYear(ctx context.Context, academicYearID string) ([]models.StudentDetail, error) {
	var out []models.StudentDetail
	for _, s := range r.sortedStudents() {
		d := r.detail(s)
		if d.AcademicYearID != nil && *d.AcademicYearID == academicYearID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r memStudentRepo) ListByClassGroup(ctx context.Context, classGroupID string) ([]models.StudentDetail, error) {
	var out []models.StudentDetail
	for _, s := range r.sortedStudents() {
		if s.ClassGroupID != nil && *s.ClassGroupID == classGroupID {
			out = append(out, r.detail(s))
		}
	}
	return out, nil
}

func (r memStudentRepo) sortedStudents() []*models.Student {
	out := make([]*models.Student, 0, len(r.students))
	for _, s := range r.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if student.Email != nil {
		for _, s := range r.students {
			if s.Email != nil && *s.Email == *student.Email {
				return &pq.Error{Code: "23505"}
			}
		}
	}
	student.ID = r.nextID("stu")
	cp := *student
	r.students[student.ID] = &cp
	return nil
}

func (r memStudentRepo) Update(ctx context.Context, student *models.Student) error {
	cp := *student
	r.students[student.ID] = &cp
	return nil
}

func (r memStudentRepo) Delete(ctx context.Context, id string) error {
	delete(r.students, id)
	return nil
}

// --- subjects

type memSubjectRepo struct{ *memStore }

func (r memSubjectRepo) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	var out []models.Subject
	for _, s := range r.subjects {
		if filter.AcademicYearID != "" && s.AcademicYearID != filter.AcademicYearID {
			continue
		}
		if filter.Type != "" && s.Type != filter.Type {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	s, ok := r.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (r memSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	subject.ID = r.nextID("sub")
	cp := *subject
	r.subjects[subject.ID] = &cp
	return nil
}

func (r memSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	cp := *subject
	r.subjects[subject.ID] = &cp
	return nil
}

func (r memSubjectRepo) Delete(ctx context.Context, id string) error {
	delete(r.subjects, id)
	return nil
}

func (r memSubjectRepo) CountEnrollments(ctx context.Context, id string) (int, error) {
	count := 0
	for _, e := range r.enrollments {
		if e.SubjectID == id {
			count++
		}
	}
	return count, nil
}

func (r memSubjectRepo) CountEnrollmentsAbove(ctx context.Context, id string, max int) (int, error) {
	count := 0
	for _, e := range r.enrollments {
		if e.SubjectID == id && e.CreditsEarned > max {
			count++
		}
	}
	return count, nil
}

func (r memSubjectRepo) CountOptionalTermClashes(ctx context.Context, id string) (int, error) {
	students := map[string]bool{}
	for _, e := range r.enrollments {
		if e.SubjectID != id || e.Term == nil || *e.Term == "" {
			continue
		}
		for _, o := range r.enrollments {
			if o.StudentID != e.StudentID || o.SubjectID == id || o.Term == nil || *o.Term != *e.Term {
				continue
			}
			if sub, ok := r.subjects[o.SubjectID]; ok && sub.Type == models.SubjectTypeOptional {
				students[e.StudentID] = true
			}
		}
	}
	return len(students), nil
}

// --- enrollments

type memEnrollmentRepo struct{ *memStore }

func (r memEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	e, ok := r.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (r memEnrollmentRepo) FindByStudentAndSubject(ctx context.Context, studentID, subjectID string) (*models.Enrollment, error) {
	if r.insertRace {
		return nil, sql.ErrNoRows
	}
	e := r.findEnrollment(studentID, subjectID)
	if e == nil {
		return nil, sql.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (r memEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	var out []models.EnrollmentDetail
	for _, e := range r.enrollments {
		if e.StudentID != studentID {
			continue
		}
		s := r.subjects[e.SubjectID]
		out = append(out, models.EnrollmentDetail{Enrollment: *e, SubjectName: s.Name, SubjectType: s.Type, CreditValue: s.CreditValue})
	}
	return out, nil
}

func (r memEnrollmentRepo) FindOptionalConflict(ctx context.Context, studentID, subjectID, term string) (*models.EnrollmentConflict, error) {
	var best *models.EnrollmentConflict
	for _, e := range r.enrollments {
		s := r.subjects[e.SubjectID]
		if e.StudentID != studentID || s.Type != models.SubjectTypeOptional || s.ID == subjectID || e.Term == nil || *e.Term != term {
			continue
		}
		if best == nil || s.ID < best.SubjectID {
			best = &models.EnrollmentConflict{EnrollmentID: e.ID, SubjectID: s.ID, SubjectName: s.Name}
		}
	}
	return best, nil
}

func (r memEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if r.insertRace {
		// another writer won the insert; later reads see its row
		r.insertRace = false
		r.enroll(enrollment.StudentID, enrollment.SubjectID, "", 7)
		return &pq.Error{Code: "23505"}
	}
	if r.findEnrollment(enrollment.StudentID, enrollment.SubjectID) != nil {
		return &pq.Error{Code: "23505"}
	}
	enrollment.ID = r.nextID("enr")
	cp := *enrollment
	r.enrollments[enrollment.ID] = &cp
	return nil
}

func (r memEnrollmentRepo) UpdateTerm(ctx context.Context, id string, term *string) error {
	e, ok := r.enrollments[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.Term = term
	return nil
}

func (r memEnrollmentRepo) UpdateCredits(ctx context.Context, id string, credits int) error {
	e, ok := r.enrollments[id]
	if !ok {
		return sql.ErrNoRows
	}
	if credits < 0 || credits > r.subjects[e.SubjectID].CreditValue {
		return repository.ErrCreditsOutOfRange
	}
	e.CreditsEarned = credits
	return nil
}

func (r memEnrollmentRepo) UpsertCredits(ctx context.Context, studentID, subjectID, term string, credits int) error {
	e := r.findEnrollment(studentID, subjectID)
	if e == nil {
		r.enroll(studentID, subjectID, term, credits)
		return nil
	}
	t := term
	e.Term = &t
	e.CreditsEarned = credits
	return nil
}

func (r memEnrollmentRepo) DeleteByStudentAndSubject(ctx context.Context, studentID, subjectID string) (bool, error) {
	e := r.findEnrollment(studentID, subjectID)
	if e == nil {
		return false, nil
	}
	delete(r.enrollments, e.ID)
	return true, nil
}

// --- credit rows

type memAttendanceRepo struct{ *memStore }

func (r memAttendanceRepo) UpsertCredits(ctx context.Context, studentID, period string, credits int) error {
	if r.failAttendanceFor[studentID] {
		return fmt.Errorf("attendance write rejected for %s", studentID)
	}
	r.attendance[studentID+"|"+period] = credits
	return nil
}

func (r memAttendanceRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Attendance, error) {
	var rows []models.Attendance
	for _, period := range []string{models.TermOne, models.TermTwo} {
		if credits, ok := r.attendance[studentID+"|"+period]; ok {
			rows = append(rows, models.Attendance{StudentID: studentID, Period: period, CreditsEarned: credits})
		}
	}
	return rows, nil
}

type memWorkRepo struct{ *memStore }

func (r memWorkRepo) ListByStudent(ctx context.Context, studentID string) ([]models.WorkExperience, error) {
	var rows []models.WorkExperience
	for _, w := range r.work {
		if w.StudentID == studentID {
			rows = append(rows, *w)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (r memWorkRepo) FindByID(ctx context.Context, id string) (*models.WorkExperience, error) {
	w, ok := r.work[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *w
	return &cp, nil
}

func (r memWorkRepo) FindFirstByStudent(ctx context.Context, studentID string) (*models.WorkExperience, error) {
	var first *models.WorkExperience
	for _, w := range r.work {
		if w.StudentID != studentID {
			continue
		}
		if first == nil || w.StartDate.Before(first.StartDate) || (w.StartDate.Equal(first.StartDate) && w.ID < first.ID) {
			first = w
		}
	}
	if first == nil {
		return nil, sql.ErrNoRows
	}
	cp := *first
	return &cp, nil
}

func (r memWorkRepo) Create(ctx context.Context, row *models.WorkExperience) error {
	row.ID = r.nextID("we")
	for r.work[row.ID] != nil {
		row.ID = r.nextID("we")
	}
	cp := *row
	r.work[row.ID] = &cp
	return nil
}

func (r memWorkRepo) UpdateCredits(ctx context.Context, id string, credits int) error {
	w, ok := r.work[id]
	if !ok {
		return sql.ErrNoRows
	}
	w.CreditsEarned = credits
	return nil
}

func (r memWorkRepo) Delete(ctx context.Context, id string) error {
	delete(r.work, id)
	return nil
}

type memPortfolioRepo struct{ *memStore }

func (r memPortfolioRepo) Upsert(ctx context.Context, p *models.Portfolio) error {
	key := p.StudentID + "|" + p.AcademicYearID + "|" + p.Period
	if existing, ok := r.portfolios[key]; ok {
		p.ID = existing.ID
	} else {
		p.ID = r.nextID("pf")
	}
	cp := *p
	r.portfolios[key] = &cp
	return nil
}

func (r memPortfolioRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Portfolio, error) {
	var rows []models.Portfolio
	for _, p := range r.portfolios {
		if p.StudentID == studentID {
			rows = append(rows, *p)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

type memTeacherRepo struct{ *memStore }

func (r memTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	t, ok := r.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

// memCreditSource sums credit rows of one table in the store.
type memCreditSource struct {
	store       *memStore
	source      models.CreditSource
	singleCalls int
	batchCalls  int
}

func (s *memCreditSource) Source() models.CreditSource { return s.source }

func (s *memCreditSource) CreditsForStudent(ctx context.Context, studentID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.singleCalls++
	return s.sum([]string{studentID})[studentID], nil
}

func (s *memCreditSource) CreditsForStudents(ctx context.Context, studentIDs []string) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.batchCalls++
	return s.sum(studentIDs), nil
}

func (s *memCreditSource) sum(studentIDs []string) map[string]int {
	wanted := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		wanted[id] = true
	}
	totals := map[string]int{}
	add := func(id string, credits int) {
		if wanted[id] {
			totals[id] += credits
		}
	}
	switch s.source {
	case models.CreditSourceSubjects:
		for _, e := range s.store.enrollments {
			add(e.StudentID, e.CreditsEarned)
		}
	case models.CreditSourceWorkExperience:
		for _, w := range s.store.work {
			add(w.StudentID, w.CreditsEarned)
		}
	case models.CreditSourcePortfolio:
		for _, p := range s.store.portfolios {
			add(p.StudentID, p.CreditsEarned)
		}
	case models.CreditSourceAttendance:
		for key, credits := range s.store.attendance {
			add(strings.SplitN(key, "|", 2)[0], credits)
		}
	}
	return totals
}

// memCache is a map-backed cache repository.
type memCache struct {
	items       map[string]interface{}
	invalidated int
}

func newMemCache() *memCache { return &memCache{items: map[string]interface{}{}} }

func (c *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	v, ok := c.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if summary, ok := dest.(*dto.CohortSummary); ok {
		*summary = *(v.(*dto.CohortSummary))
	}
	return nil
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.items[key] = value
	return nil
}

func (c *memCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.invalidated++
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	return nil
}

// testEnv wires every service over one memStore.
type testEnv struct {
	store   *memStore
	cache   *memCache
	sources []*memCreditSource
	caches  *CacheService
}

func newTestEnv() *testEnv {
	store := newMemStore()
	cache := newMemCache()
	env := &testEnv{store: store, cache: cache}
	for _, src := range []models.CreditSource{
		models.CreditSourceSubjects,
		models.CreditSourceWorkExperience,
		models.CreditSourcePortfolio,
		models.CreditSourceAttendance,
	} {
		env.sources = append(env.sources, &memCreditSource{store: store, source: src})
	}
	env.caches = NewCacheService(cache, nil, time.Minute, nil, true)
	return env
}

func (e *testEnv) creditSources() []repository.CreditSource {
	out := make([]repository.CreditSource, len(e.sources))
	for i, s := range e.sources {
		out[i] = s
	}
	return out
}

func (e *testEnv) enrollmentService(opts EnrollmentServiceOptions) *EnrollmentService {
	return NewEnrollmentService(memEnrollmentRepo{e.store}, memStudentRepo{e.store}, memSubjectRepo{e.store}, e.caches, nil, nil, opts)
}

func (e *testEnv) creditService() *CreditService {
	return NewCreditService(CreditServiceDeps{
		Sources:     e.creditSources(),
		Students:    memStudentRepo{e.store},
		Cohorts:     memStudentRepo{e.store},
		Years:       memYearRepo{e.store},
		ClassGroups: memGroupRepo{e.store},
		Cache:       e.caches,
		CacheTTL:    time.Minute,
	}, nil, nil)
}

func (e *testEnv) bulkFillService(enabled bool) *BulkFillService {
	return NewBulkFillService(BulkFillDeps{
		Years:          memYearRepo{e.store},
		Students:       memStudentRepo{e.store},
		Attendance:     memAttendanceRepo{e.store},
		WorkExperience: memWorkRepo{e.store},
		Subjects:       memSubjectRepo{e.store},
		Enrollments:    memEnrollmentRepo{e.store},
		Cache:          e.caches,
	}, BulkFillOptions{Enabled: enabled}, nil, nil)
}

func (e *testEnv) creditRecordService() *CreditRecordService {
	return NewCreditRecordService(CreditRecordDeps{
		Students:       memStudentRepo{e.store},
		Years:          memYearRepo{e.store},
		Teachers:       memTeacherRepo{e.store},
		Attendance:     memAttendanceRepo{e.store},
		WorkExperience: memWorkRepo{e.store},
		Portfolios:     memPortfolioRepo{e.store},
		Cache:          e.caches,
	}, nil, nil)
}
