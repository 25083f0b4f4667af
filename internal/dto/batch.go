package dto

// RowFailure describes one row a batch operation could not write.
type RowFailure struct {
	StudentID string `json:"student_id"`
	Target    string `json:"target,omitempty"`
	Message   string `json:"message"`
}

// BatchReport is the partial-success result of a multi-row operation.
type BatchReport struct {
	Updated  int          `json:"updated"`
	Failed   int          `json:"failed"`
	Failures []RowFailure `json:"failures,omitempty"`
}

// AddFailure records a failed row.
func (r *BatchReport) AddFailure(studentID, target string, err error) {
	r.Failed++
	r.Failures = append(r.Failures, RowFailure{StudentID: studentID, Target: target, Message: err.Error()})
}

// FillSource names the credit source overridden by a fill-max run.
type FillSource string

const (
	FillAttendance     FillSource = "attendance"
	FillWorkExperience FillSource = "workExperience"
	FillShortCourses   FillSource = "shortCourses"
)

// Valid reports whether the fill source is supported.
func (s FillSource) Valid() bool {
	switch s {
	case FillAttendance, FillWorkExperience, FillShortCourses:
		return true
	}
	return false
}

// FillReport summarises a fill-max run.
type FillReport struct {
	AcademicYearID string     `json:"academic_year_id"`
	Source         FillSource `json:"source"`
	Students       int        `json:"students"`
	Cancelled      bool       `json:"cancelled,omitempty"`
	BatchReport
}

// ExportFile is a rendered report ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
