package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"gradequiz"
)

type fixedProvider struct {
	questions gradequiz.QuizSet
}

func (p fixedProvider) FetchTopics(ctx context.Context, subject string, grade int) ([]string, error) {
	return nil, nil
}

func (p fixedProvider) FetchQuiz(ctx context.Context, subject, topic string, count, grade int, difficulty gradequiz.Difficulty) (gradequiz.QuizSet, error) {
	return p.questions, nil
}

func (p fixedProvider) FetchQuizFromPrompt(ctx context.Context, prompt string, count, grade int, difficulty gradequiz.Difficulty) (*gradequiz.PromptQuiz, error) {
	return &gradequiz.PromptQuiz{Topic: "Anything", Questions: p.questions}, nil
}

func startedQuiz(t *testing.T, mode gradequiz.Mode) *gradequiz.Orchestrator {
	t.Helper()
	q := gradequiz.Question{
		Text:          "Which planet is red?",
		Options:       []string{"Venus", "Mars", "Earth", "Jupiter"},
		CorrectAnswer: "Mars",
		Explanation:   "Iron oxide dust makes Mars look red.",
	}
	qs := gradequiz.QuizSet{q, q, q, q, q}
	orch := gradequiz.NewOrchestrator(fixedProvider{questions: qs}, nil)
	err := orch.StartQuiz(context.Background(), gradequiz.QuizConfig{
		Grade:        4,
		Subject:      "Science",
		Topic:        "Planets",
		NumQuestions: 5,
		Difficulty:   gradequiz.DifficultyEasy,
		Mode:         mode,
	})
	if err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}
	return orch
}

func TestPlayQuizPractice(t *testing.T) {
	orch := startedQuiz(t, gradequiz.ModePractice)
	in := strings.NewReader("b\nz\na\nB\nb\nb\n")
	var out bytes.Buffer

	playQuiz(orch, in, &out)

	got := out.String()
	for _, want := range []string{
		"Planets (Practice Mode)",
		"Question 1/5:",
		"✅ Correct!",
		"Please enter A, B, C, or D",
		"❌ Almost! The correct answer is Mars",
		"⭐ 4 / 5 (80.0%)",
		"Amazing Job!",
		"Your answer: Venus",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if orch.Snapshot().Screen != gradequiz.ScreenResults {
		t.Fatal("quiz not finished")
	}
}

func TestPlayQuizModeHidesFeedback(t *testing.T) {
	orch := startedQuiz(t, gradequiz.ModeQuiz)
	var out bytes.Buffer
	playQuiz(orch, strings.NewReader("b\nb\nb\nb\nb\n"), &out)

	got := out.String()
	if strings.Contains(got, "✅ Correct!") {
		t.Error("quiz mode printed feedback before the end")
	}
	if !strings.Contains(got, "⭐ 5 / 5 (100.0%)") || !strings.Contains(got, "Perfect Score") {
		t.Errorf("output = %s", got)
	}
}

func TestPlayQuizStopsOnEOF(t *testing.T) {
	orch := startedQuiz(t, gradequiz.ModeQuiz)
	var out bytes.Buffer
	playQuiz(orch, strings.NewReader("b\n"), &out)

	if strings.Contains(out.String(), "Quiz Complete!") {
		t.Fatal("quiz completed without enough answers")
	}
	if orch.Snapshot().Screen != gradequiz.ScreenQuiz {
		t.Fatal("orchestrator left the quiz screen")
	}
}
