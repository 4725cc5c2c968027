// Package ai implements the proxy operations that forward resume and
// job-description text to the external text-generation service and reshape
// the replies into typed payloads.
package ai

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/career-copilot/internal/llm"
	"github.com/jonathan/career-copilot/internal/prompts"
	"github.com/jonathan/career-copilot/internal/schemas"
	"github.com/jonathan/career-copilot/internal/types"
)

//go:embed schemas/ats_score.schema.json
var atsScoreSchema string

//go:embed schemas/resume_analysis.schema.json
var resumeAnalysisSchema string

const (
	// defaultTokensUsed substitutes for free-text generation when the
	// provider reports no usage metadata.
	defaultTokensUsed = 150
	// defaultScore substitutes for omitted scores in structured replies.
	defaultScore = 75
	// defaultAnalysis substitutes for an omitted narrative assessment.
	defaultAnalysis = "Your resume shows solid experience. Tailor it to each job description for the best results."
)

// Service implements the five AI proxy operations over a long-lived LLM
// client. The client is nil when no API key was configured; strict controls
// whether that (and any upstream failure) is surfaced as an error or papered
// over with a canned fallback payload.
type Service struct {
	client llm.Client
	strict bool
}

// New creates a Service. client may be nil when the external API key is absent.
func New(client llm.Client, strict bool) *Service {
	return &Service{
		client: client,
		strict: strict,
	}
}

// Configured reports whether an external client is available.
func (s *Service) Configured() bool {
	return s.client != nil
}

// Generate passes a free-text prompt through to the model. The caller may
// override the model name for this operation only.
func (s *Service) Generate(ctx context.Context, req *types.GenerateRequest) (*types.GenerateResponse, error) {
	if s.client == nil {
		if s.strict {
			return nil, &NotConfiguredError{}
		}
		return fallbackGenerate(), nil
	}

	contextBlock := ""
	if req.Context != "" {
		contextBlock = fmt.Sprintf("Context:\n%s\n\n", req.Context)
	}
	prompt := prompts.Format(prompts.MustGet("generate"), map[string]string{
		"Context": contextBlock,
		"Prompt":  req.Prompt,
	})

	result, err := s.client.Chat(ctx, prompt, llm.Options{
		System: prompts.MustGet("generate-system"),
		Model:  req.Model,
		Tier:   llm.TierAdvanced,
	})
	if err != nil {
		if s.strict {
			return nil, &UpstreamError{Op: "generate", Message: "generation call failed", Cause: err}
		}
		return fallbackGenerate(), nil
	}

	tokens := result.TokensUsed
	if tokens == 0 {
		tokens = defaultTokensUsed
	}

	return &types.GenerateResponse{
		Content:    result.Content,
		TokensUsed: tokens,
		Model:      result.Model,
	}, nil
}

// ATSScore asks the model for a structured resume/job compatibility score.
func (s *Service) ATSScore(ctx context.Context, req *types.ATSScoreRequest) (*types.ATSScoreResponse, error) {
	if s.client == nil {
		if s.strict {
			return nil, &NotConfiguredError{}
		}
		return fallbackATSScore(), nil
	}

	prompt := prompts.Format(prompts.MustGet("ats-score"), map[string]string{
		"ResumeText":     req.ResumeText,
		"JobDescription": req.JobDescription,
	})

	content, err := s.structuredCall(ctx, "ats-score", prompt, prompts.MustGet("ats-score-system"), atsScoreSchema)
	if err != nil {
		if s.strict {
			return nil, err
		}
		return fallbackATSScore(), nil
	}

	var raw struct {
		OverallScore    *float64           `json:"overall_score"`
		CategoryScores  map[string]float64 `json:"category_scores"`
		MatchedKeywords []string           `json:"matched_keywords"`
		MissingKeywords []string           `json:"missing_keywords"`
		Suggestions     []string           `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		if s.strict {
			return nil, &UpstreamError{Op: "ats-score", Message: "failed to decode model reply", Cause: err}
		}
		return fallbackATSScore(), nil
	}

	resp := &types.ATSScoreResponse{
		OverallScore:    defaultScore,
		CategoryScores:  roundScores(raw.CategoryScores),
		MatchedKeywords: orEmpty(raw.MatchedKeywords),
		MissingKeywords: orEmpty(raw.MissingKeywords),
		Suggestions:     orEmpty(raw.Suggestions),
	}
	if raw.OverallScore != nil {
		resp.OverallScore = int(math.Round(*raw.OverallScore))
	}

	return resp, nil
}

// AnalyzeJob asks the model for a structured breakdown of a job description
// and returns the parsed mapping as-is.
func (s *Service) AnalyzeJob(ctx context.Context, req *types.AnalyzeJobRequest) (map[string]any, error) {
	if s.client == nil {
		if s.strict {
			return nil, &NotConfiguredError{}
		}
		return fallbackAnalyzeJob(req.JobDescription), nil
	}

	prompt := prompts.Format(prompts.MustGet("analyze-job"), map[string]string{
		"JobDescription": req.JobDescription,
	})

	result, err := s.client.Chat(ctx, prompt, llm.Options{
		System:      prompts.MustGet("analyze-job-system"),
		Tier:        llm.TierStandard,
		JSON:        true,
		Temperature: 0.2,
	})
	if err != nil {
		if s.strict {
			return nil, &UpstreamError{Op: "analyze-job", Message: "analysis call failed", Cause: err}
		}
		return fallbackAnalyzeJob(req.JobDescription), nil
	}

	var analysis map[string]any
	if err := json.Unmarshal([]byte(result.Content), &analysis); err != nil {
		if s.strict {
			return nil, &UpstreamError{Op: "analyze-job", Message: "model reply is not valid JSON", Cause: err}
		}
		return fallbackAnalyzeJob(req.JobDescription), nil
	}

	return analysis, nil
}

// AnalyzeResume asks the model to assess structured resume data, optionally
// against a job description.
func (s *Service) AnalyzeResume(ctx context.Context, req *types.AnalyzeResumeRequest) (*types.AnalyzeResumeResponse, error) {
	if s.client == nil {
		if s.strict {
			return nil, &NotConfiguredError{}
		}
		return fallbackAnalyzeResume(), nil
	}

	resumeJSON, err := json.MarshalIndent(req.ResumeData, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode resume data: %w", err)
	}

	against := ""
	jobBlock := "\n"
	if req.JobDescription != "" {
		against = " against the job description"
		jobBlock = fmt.Sprintf("\nJOB DESCRIPTION:\n%s\n\n", req.JobDescription)
	}
	prompt := prompts.Format(prompts.MustGet("analyze-resume"), map[string]string{
		"ResumeData": string(resumeJSON),
		"Against":    against,
		"JobBlock":   jobBlock,
	})

	content, err := s.structuredCall(ctx, "analyze-resume", prompt, prompts.MustGet("analyze-resume-system"), resumeAnalysisSchema)
	if err != nil {
		if s.strict {
			return nil, err
		}
		return fallbackAnalyzeResume(), nil
	}

	var raw struct {
		Score           *float64 `json:"score"`
		Suggestions     []string `json:"suggestions"`
		MissingKeywords []string `json:"missing_keywords"`
		Strengths       []string `json:"strengths"`
		Analysis        string   `json:"analysis"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		if s.strict {
			return nil, &UpstreamError{Op: "analyze-resume", Message: "failed to decode model reply", Cause: err}
		}
		return fallbackAnalyzeResume(), nil
	}

	resp := &types.AnalyzeResumeResponse{
		Score:           defaultScore,
		Suggestions:     orEmpty(raw.Suggestions),
		MissingKeywords: orEmpty(raw.MissingKeywords),
		Strengths:       orEmpty(raw.Strengths),
		Analysis:        raw.Analysis,
	}
	if raw.Score != nil {
		resp.Score = int(math.Round(*raw.Score))
	}
	if resp.Analysis == "" {
		resp.Analysis = defaultAnalysis
	}

	return resp, nil
}

// Chat handles a conversational assistant turn.
func (s *Service) Chat(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
	if s.client == nil {
		if s.strict {
			return nil, &NotConfiguredError{}
		}
		return fallbackChat(req.Message), nil
	}

	result, err := s.client.Chat(ctx, flattenConversation(req), llm.Options{
		System: prompts.MustGet("chat-system"),
		Tier:   llm.TierStandard,
	})
	if err != nil {
		if s.strict {
			return nil, &UpstreamError{Op: "chat", Message: "chat call failed", Cause: err}
		}
		return fallbackChat(req.Message), nil
	}

	return &types.ChatResponse{
		Message:          result.Content,
		SuggestedActions: extractSuggestedActions(result.Content),
		TokensUsed:       result.TokensUsed,
	}, nil
}

// structuredCall performs a JSON-mode model call and schema-checks the reply
// before the caller decodes it. Schema violations and transport failures both
// surface as *UpstreamError.
func (s *Service) structuredCall(ctx context.Context, op, prompt, system, schema string) (string, error) {
	result, err := s.client.Chat(ctx, prompt, llm.Options{
		System:      system,
		Tier:        llm.TierStandard,
		JSON:        true,
		Temperature: 0.2,
	})
	if err != nil {
		return "", &UpstreamError{Op: op, Message: "structured call failed", Cause: err}
	}

	if err := schemas.ValidateJSONString(schema, result.Content); err != nil {
		return "", &UpstreamError{Op: op, Message: "model reply failed schema validation", Cause: err}
	}

	return result.Content, nil
}

// flattenConversation renders the history and new message as a single prompt.
// The client is single-turn; roles are labeled inline.
func flattenConversation(req *types.ChatRequest) string {
	var sb strings.Builder

	// Last 10 turns only, to bound prompt size
	history := req.History
	if len(history) > 10 {
		history = history[len(history)-10:]
	}
	for _, msg := range history {
		label := "User"
		if msg.Role == "assistant" {
			label = "Assistant"
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", label, msg.Content))
	}
	sb.WriteString(fmt.Sprintf("User: %s", req.Message))

	return sb.String()
}

// extractSuggestedActions derives follow-up actions from the assistant reply.
func extractSuggestedActions(reply string) []types.SuggestedAction {
	actions := []types.SuggestedAction{}
	lower := strings.ToLower(reply)

	if strings.Contains(lower, "tailor") || strings.Contains(lower, "resume") {
		actions = append(actions, types.SuggestedAction{Label: "Generate resume", Action: "generate_resume"})
	}
	if strings.Contains(lower, "cover letter") {
		actions = append(actions, types.SuggestedAction{Label: "Generate cover letter", Action: "generate_cover_letter"})
	}
	if strings.Contains(lower, "research") || strings.Contains(lower, "company") {
		actions = append(actions, types.SuggestedAction{Label: "Research company", Action: "research_company"})
	}

	return actions
}

// roundScores converts fractional model scores to the integer response shape.
func roundScores(scores map[string]float64) map[string]int {
	rounded := make(map[string]int, len(scores))
	for category, score := range scores {
		rounded[category] = int(math.Round(score))
	}
	return rounded
}

// orEmpty replaces a nil slice with an empty one so omitted fields serialize
// as [] rather than null.
func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
