package ai

import (
	"strings"

	"github.com/jonathan/career-copilot/internal/types"
)

// Canned fallback payloads, returned in non-strict mode when the external
// client is unconfigured or an upstream call fails. Shapes match the real
// responses so clients cannot tell the difference structurally.

const fallbackContent = "I understand you'd like help with that. This is a fallback response. Configure your AI API key to enable real AI features."

func fallbackGenerate() *types.GenerateResponse {
	return &types.GenerateResponse{
		Content:    fallbackContent,
		TokensUsed: 0,
		Model:      "fallback",
	}
}

func fallbackATSScore() *types.ATSScoreResponse {
	return &types.ATSScoreResponse{
		OverallScore: defaultScore,
		CategoryScores: map[string]int{
			"skills":     defaultScore,
			"experience": defaultScore,
			"keywords":   defaultScore,
			"education":  defaultScore,
		},
		MatchedKeywords: []string{},
		MissingKeywords: []string{},
		Suggestions:     []string{"Configure your AI API key to enable real ATS scoring"},
	}
}

// fallbackAnalyzeJob does a crude keyword scan so the canned reply at least
// reflects the input.
func fallbackAnalyzeJob(jobDescription string) map[string]any {
	techWords := []string{"javascript", "react", "node", "python", "java", "go", "aws", "docker", "kubernetes", "sql", "mongodb"}

	keywords := []string{}
	lower := strings.ToLower(jobDescription)
	for _, word := range techWords {
		if strings.Contains(lower, word) {
			keywords = append(keywords, strings.ToUpper(word[:1])+word[1:])
		}
	}

	level := "Mid"
	if strings.Contains(lower, "senior") {
		level = "Senior"
	} else if strings.Contains(lower, "junior") {
		level = "Junior"
	}

	return map[string]any{
		"required_skills":    []string{"Software Development", "Problem Solving", "Communication"},
		"experience_level":   level,
		"keywords":           keywords,
		"salary_range":       nil,
		"culture_indicators": []string{},
	}
}

func fallbackAnalyzeResume() *types.AnalyzeResumeResponse {
	return &types.AnalyzeResumeResponse{
		Score:           defaultScore,
		Suggestions:     []string{},
		MissingKeywords: []string{},
		Strengths:       []string{},
		Analysis:        defaultAnalysis,
	}
}

func fallbackChat(message string) *types.ChatResponse {
	lower := strings.ToLower(message)

	var reply string
	var actions []types.SuggestedAction
	switch {
	case strings.Contains(lower, "resume"):
		reply = "I can help you tailor your resume! To get started, please provide the job description you're applying for."
		actions = []types.SuggestedAction{
			{Label: "Tailor resume", Action: "generate_resume"},
			{Label: "View resume tips", Action: "resume_tips"},
		}
	case strings.Contains(lower, "cover"):
		reply = "I'll help you write a compelling cover letter. Please share the job details."
		actions = []types.SuggestedAction{
			{Label: "Generate cover letter", Action: "generate_cover_letter"},
		}
	case strings.Contains(lower, "company"), strings.Contains(lower, "research"):
		reply = "I can research companies for you. Which company would you like to know about?"
		actions = []types.SuggestedAction{
			{Label: "Research company", Action: "research_company"},
		}
	default:
		reply = "I'm here to help with your job search! I can assist with resume tailoring, cover letters, company research, and interview prep. What would you like help with?"
		actions = []types.SuggestedAction{
			{Label: "Tailor resume", Action: "generate_resume"},
			{Label: "Research company", Action: "research_company"},
		}
	}

	return &types.ChatResponse{
		Message:          reply,
		SuggestedActions: actions,
		TokensUsed:       0,
	}
}
