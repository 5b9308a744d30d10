package dto

type ProgressEntryDTO struct {
	CurrentIndex int               `json:"current_index"`
	Answers      map[string]string `json:"answers"`
}

type SaveProgressRequest struct {
	Difficulty   string            `json:"difficulty"`
	CurrentIndex *int              `json:"current_index"`
	Answers      map[string]string `json:"answers"`
}

type SaveProgressResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type GetProgressResponse struct {
	Progress map[string]ProgressEntryDTO `json:"progress"`
}

type ResetProgressResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UserAnswer and IsCorrect are pointers so a present-but-falsy value (empty
// answer, false flag) passes the required-field check.
type RecordAnswerRequest struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	UserAnswer    *string  `json:"user_answer"`
	IsCorrect     *bool    `json:"is_correct"`
	Difficulty    string   `json:"difficulty"`
}

type AnsweredQuestionDTO struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	UserAnswer    string   `json:"user_answer"`
	IsCorrect     bool     `json:"is_correct"`
	Difficulty    string   `json:"difficulty"`
	AnsweredAt    string   `json:"answered_at"`
}

type RecordAnswerResponse struct {
	Success bool                `json:"success"`
	Record  AnsweredQuestionDTO `json:"record"`
}

type AnswerHistoryResponse struct {
	History []AnsweredQuestionDTO `json:"history"`
}
