package assessment

import (
	"strings"
	"time"
)

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

type CreateAssessmentDTO struct {
	Title    string `json:"title"`
	PolicyID int64  `json:"policyId"`
}

func (d CreateAssessmentDTO) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ValidationError{Msg: "title is required"}
	}
	if d.PolicyID == 0 {
		return ValidationError{Msg: "policyId is required"}
	}
	return nil
}

type AddQuestionDTO struct {
	Text string `json:"text"`
}

func (d AddQuestionDTO) Validate() error {
	if strings.TrimSpace(d.Text) == "" {
		return ValidationError{Msg: "text is required"}
	}
	return nil
}

type ScheduleDTO struct {
	ScheduledAt time.Time `json:"scheduledAt"`
}

func (d ScheduleDTO) Validate() error {
	if d.ScheduledAt.IsZero() {
		return ValidationError{Msg: "scheduledAt is required"}
	}
	return nil
}

type AnswerDTO struct {
	QuestionID int64  `json:"questionId"`
	Answer     string `json:"answer"`
}

type SubmitDTO struct {
	Answers []AnswerDTO `json:"answers"`
}

// SubmitResponse echoes the graded result.
type SubmitResponse struct {
	Result *Result `json:"result"`
	State  State   `json:"state"`
}
