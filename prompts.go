package gradequiz

import (
	"fmt"
	"strings"
)

const (
	quizSystemPrompt  = "You are an expert teacher who writes grade-appropriate multiple choice quizzes. Every question has exactly 4 options and exactly one correct answer."
	topicSystemPrompt = "You are an expert curriculum planner. Suggest specific, age-appropriate academic topics."
)

func buildTopicsPrompt(req GenerationRequest) string {
	return fmt.Sprintf("Generate a list of 10 specific academic topics for a %s-grade student in Houston ISD for the subject of '%s'.\n"+
		"Use the submit_topics tool to return the topics.", ordinal(req.Grade), req.Subject)
}

func buildQuizPrompt(req GenerationRequest) string {
	var sb strings.Builder

	topicPrompt := fmt.Sprintf("about '%s'", req.Topic)
	if req.Topic == AllTopics {
		topicPrompt = "covering a comprehensive range of topics"
	}

	sb.WriteString(fmt.Sprintf("Generate a %d-question, %s-grade level, multiple-choice quiz %s within the subject of '%s' for a student in Houston ISD.\n",
		req.NumQuestions, ordinal(req.Grade), topicPrompt, req.Subject))
	sb.WriteString(fmt.Sprintf("The difficulty level should be '%s'.\n\n", req.Difficulty))
	writeRequirements(&sb)
	sb.WriteString("- Use the submit_questions tool to return your questions\n")

	return sb.String()
}

func buildPromptQuizPrompt(req GenerationRequest) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Based on the following request from a %s-grade student, identify the core academic topic and generate a quiz.\n", ordinal(req.Grade)))
	sb.WriteString(fmt.Sprintf("Request: %q\n\n", req.Prompt))
	sb.WriteString(fmt.Sprintf("Generate a %d-question, %s-grade level, multiple-choice quiz about the identified topic.\n", req.NumQuestions, ordinal(req.Grade)))
	sb.WriteString(fmt.Sprintf("The difficulty level should be '%s'.\n\n", req.Difficulty))
	writeRequirements(&sb)
	sb.WriteString("- Use the submit_quiz tool to return the identified topic and the questions\n")

	return sb.String()
}

func writeRequirements(sb *strings.Builder) {
	sb.WriteString("Requirements:\n")
	sb.WriteString("- Ensure all questions are unique and no question is repeated within the quiz\n")
	sb.WriteString("- Each question must have exactly 4 options, and only one is correct\n")
	sb.WriteString("- The correct answer must be copied exactly from one of the options\n")
	sb.WriteString("- For every question, provide a detailed, encouraging, and educational explanation (max 2-3 sentences) of WHY the correct answer is right and why common misconceptions are wrong\n")
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
