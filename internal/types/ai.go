package types

// GenerateRequest asks for free-text generation. Model may override the
// default model for this operation only.
type GenerateRequest struct {
	Prompt  string `json:"prompt" validate:"required"`
	Context string `json:"context,omitempty"`
	Model   string `json:"model,omitempty"`
}

// GenerateResponse carries the generated text and usage accounting.
type GenerateResponse struct {
	Content    string `json:"content"`
	TokensUsed int    `json:"tokens_used"`
	Model      string `json:"model"`
}

// ATSScoreRequest asks for a resume/job-description compatibility score.
type ATSScoreRequest struct {
	ResumeText     string `json:"resume_text" validate:"required"`
	JobDescription string `json:"job_description" validate:"required"`
}

// ATSScoreResponse is the structured compatibility score.
type ATSScoreResponse struct {
	OverallScore    int            `json:"overall_score"`
	CategoryScores  map[string]int `json:"category_scores"`
	MatchedKeywords []string       `json:"matched_keywords"`
	MissingKeywords []string       `json:"missing_keywords"`
	Suggestions     []string       `json:"suggestions"`
}

// AnalyzeJobRequest asks for a structured breakdown of a job description.
// The response is a free-form mapping passed through from the model.
type AnalyzeJobRequest struct {
	JobDescription string `json:"job_description" validate:"required"`
}

// AnalyzeResumeRequest asks for an assessment of structured resume data,
// optionally against a specific job description.
type AnalyzeResumeRequest struct {
	ResumeData     map[string]any `json:"resume_data" validate:"required"`
	JobDescription string         `json:"job_description,omitempty"`
}

// AnalyzeResumeResponse is the structured resume assessment.
type AnalyzeResumeResponse struct {
	Score           int      `json:"score"`
	Suggestions     []string `json:"suggestions"`
	MissingKeywords []string `json:"missing_keywords"`
	Strengths       []string `json:"strengths"`
	Analysis        string   `json:"analysis"`
}

// ChatMessage is one turn of conversation history.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest is a conversational assistant request.
type ChatRequest struct {
	Message string        `json:"message" validate:"required"`
	History []ChatMessage `json:"history,omitempty" validate:"omitempty,dive"`
}

// SuggestedAction is a follow-up action the client can offer the user.
type SuggestedAction struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// ChatResponse is the assistant reply with extracted follow-up actions.
type ChatResponse struct {
	Message          string            `json:"message"`
	SuggestedActions []SuggestedAction `json:"suggested_actions"`
	TokensUsed       int               `json:"tokens_used"`
}
