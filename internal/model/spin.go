package model

import "time"

// SpinAttempt is a drawn prize waiting on its feedback survey.
type SpinAttempt struct {
	ID            string    `json:"id"`
	UserKey       string    `json:"user_key"`
	Prize         int       `json:"prize"`
	QuestionSet   int       `json:"question_set"`
	FeedbackSaved bool      `json:"feedback_saved"`
	StartedAt     time.Time `json:"started_at"`
}
