package assessment

import "time"

// Assessment state is never stored. It is derived from the schedule and the
// caller's own result at read time, so the same assessment can be Open for
// one employee and Completed for another.
type State string

const (
	StateUnscheduled State = "Unscheduled"
	StateScheduled   State = "Scheduled"
	StateOpen        State = "Open"
	StateCompleted   State = "Completed"
)

// DeriveState resolves an assessment's state for one user. An assessment
// opens the moment its scheduled time is reached, boundary included.
func DeriveState(scheduledAt *time.Time, now time.Time, hasResult bool) State {
	if hasResult {
		return StateCompleted
	}
	if scheduledAt == nil {
		return StateUnscheduled
	}
	if scheduledAt.After(now) {
		return StateScheduled
	}
	return StateOpen
}

// Score grades a submission: the fraction of questions answered, as a
// percentage. An assessment without questions scores zero rather than
// dividing by zero.
func Score(answerCount, totalQuestions int) float64 {
	if totalQuestions == 0 {
		return 0
	}
	return float64(answerCount) / float64(totalQuestions) * 100
}

type Assessment struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	PolicyID    int64      `json:"policyId"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	CreatedAt   time.Time  `json:"createdAt"`

	PolicyTitle   string `json:"policyTitle,omitempty"`
	DepartmentID  int64  `json:"departmentId,omitempty"`
	QuestionCount int    `json:"questionCount"`

	// Questions ride along so an employee can start answering straight from
	// the availability listing.
	Questions []Question `json:"questions,omitempty"`
}

type Question struct {
	ID           int64  `json:"id"`
	Text         string `json:"text"`
	AssessmentID int64  `json:"assessmentId"`
}

type Result struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	AssessmentID int64     `json:"assessmentId"`
	Score        float64   `json:"score"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AvailableAssessment is an assessment an employee can take right now,
// annotated with its derived state.
type AvailableAssessment struct {
	Assessment
	State State `json:"state"`
}

type Repository interface {
	List() ([]Assessment, error)
	GetByID(assessmentID int64) (*Assessment, error)
	Create(assessment *Assessment) error
	Delete(assessmentID int64) error

	AddQuestion(question *Question) error
	Questions(assessmentID int64) ([]Question, error)

	SetSchedule(assessmentID int64, scheduledAt time.Time) error

	// AvailableForUser returns assessments whose policy belongs to the
	// department, whose schedule has been reached and for which the user
	// holds no result yet.
	AvailableForUser(userID, departmentID int64, now time.Time) ([]Assessment, error)

	// Submit re-checks availability and writes the result inside one
	// transaction; a raced duplicate fails with the availability error.
	Submit(userID, departmentID, assessmentID int64, answerCount int, now time.Time) (*Result, error)
}

// RecipientSource resolves who gets a scheduling announcement.
type RecipientSource interface {
	EmployeeEmailsByDepartment(departmentID int64) ([]string, error)
}
