package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"gradequiz"
)

func main() {
	cfg, err := gradequiz.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var (
		subject      = flag.String("subject", gradequiz.Subjects[0], "Subject for the quiz")
		topic        = flag.String("topic", gradequiz.AllTopics, "Topic within the subject, or All")
		prompt       = flag.String("prompt", "", "Free-text request; the model picks the topic")
		grade        = flag.Int("grade", gradequiz.Grades[0], "Grade level")
		numQuestions = flag.Int("questions", gradequiz.QuestionCounts[0], "Number of questions to generate")
		difficulty   = flag.String("difficulty", string(gradequiz.DifficultyMedium), "Difficulty level (Easy, Medium, Tough)")
		mode         = flag.String("mode", string(gradequiz.ModeQuiz), "Quiz or Practice")
		outputFile   = flag.String("output", "", "Output file for quiz JSON (default: stdout)")
		apiKey       = flag.String("api-key", cfg.APIKey, "OpenAI API key (or set OPENAI_API_KEY env var)")
		playMode     = flag.Bool("play", false, "Play the quiz interactively")
		listTopics   = flag.Bool("list-topics", false, "List suggested topics for the subject and grade")
		history      = flag.Int("history", 0, "Show the last N quiz generations and exit")
		verbose      = flag.Bool("verbose", cfg.Verbose, "Enable verbose debugging output")
	)

	flag.Parse()

	gradequiz.SetVerbose(*verbose)
	cfg.APIKey = *apiKey

	var db *gradequiz.DB
	if cfg.DBPath != "" {
		db, err = gradequiz.OpenDB(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.CloseDB()
		if err := db.CreateTables(); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
	}

	if *history > 0 {
		if db == nil {
			log.Fatal("History requires DB_PATH to be set.")
		}
		printHistory(db, *history)
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	d, err := gradequiz.ParseDifficulty(*difficulty)
	if err != nil {
		log.Fatal(err)
	}
	m, err := gradequiz.ParseMode(*mode)
	if err != nil {
		log.Fatal(err)
	}

	provider := gradequiz.NewQuestionMaker(cfg)
	var recorder gradequiz.Recorder
	if db != nil {
		recorder = db
	}
	orch := gradequiz.NewOrchestrator(provider, recorder)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if *listTopics {
		topics, err := orch.LoadTopics(ctx, *subject, *grade)
		if err != nil {
			log.Fatalf("Failed to fetch topics: %v", err)
		}
		for _, t := range topics {
			fmt.Println(t)
		}
		return
	}

	if *verbose {
		log.Printf("Target questions: %d, Difficulty: %s, Mode: %s", *numQuestions, d, m)
	}

	if *prompt != "" {
		err = orch.StartQuizFromPrompt(ctx, *prompt, *numQuestions, *grade, d, m)
	} else {
		err = orch.StartQuiz(ctx, gradequiz.QuizConfig{
			Grade:        *grade,
			Subject:      *subject,
			Topic:        *topic,
			NumQuestions: *numQuestions,
			Difficulty:   d,
			Mode:         m,
		})
	}
	if err != nil {
		log.Fatalf("Oops! %s (%v)", gradequiz.UserMessage(err), err)
	}

	if *playMode {
		playQuiz(orch, os.Stdin, os.Stdout)
		return
	}

	snap := orch.Snapshot()
	output, err := json.MarshalIndent(struct {
		Config    *gradequiz.QuizConfig `json:"config"`
		Questions gradequiz.QuizSet     `json:"questions"`
	}{snap.Config, orch.Questions()}, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal quiz: %v", err)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, output, 0644); err != nil {
			log.Fatalf("Failed to write output file: %v", err)
		}
		log.Printf("Quiz saved to: %s", *outputFile)
	} else {
		fmt.Println(string(output))
	}
}

func printHistory(db *gradequiz.DB, limit int) {
	records, err := db.RecentGenerations(limit)
	if err != nil {
		log.Fatalf("Failed to load history: %v", err)
	}
	for _, r := range records {
		topic := r.Topic
		if topic == "" {
			topic = "-"
		}
		line := fmt.Sprintf("%s  %-6s  grade %d  %-14s  %-30s  %d/%d  %s",
			r.CreatedAt.Format("2006-01-02 15:04"), r.Status, r.Grade, r.Subject, topic, r.Received, r.Requested, r.Difficulty)
		if r.Error != "" {
			line += "  (" + r.Error + ")"
		}
		fmt.Println(line)
	}
}

var letters = []string{"A", "B", "C", "D"}

func playQuiz(orch *gradequiz.Orchestrator, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	snap := orch.Snapshot()
	fmt.Fprintf(out, "🎯 %s (%s Mode)\n\n", snap.Config.Topic, snap.Config.Mode)

	for snap.Screen == gradequiz.ScreenQuiz {
		q := snap.Question
		fmt.Fprintf(out, "Question %d/%d:\n", snap.Index+1, snap.Total)
		fmt.Fprintf(out, "%s\n\n", q.Text)
		for i, option := range q.Options {
			fmt.Fprintf(out, "%s) %s\n", letters[i], option)
		}
		fmt.Fprintln(out)

		for {
			fmt.Fprint(out, "Your answer (A/B/C/D): ")
			if !scanner.Scan() {
				return
			}
			input := strings.ToUpper(strings.TrimSpace(scanner.Text()))
			choice := strings.Index("ABCD", input)
			if len(input) == 1 && choice >= 0 && choice < len(q.Options) {
				orch.SelectAnswer(q.Options[choice])
				break
			}
			fmt.Fprintln(out, "Please enter A, B, C, or D")
		}

		if fb := orch.Snapshot().Feedback; fb != nil {
			if fb.IsCorrect {
				fmt.Fprintln(out, "✅ Correct!")
			} else {
				fmt.Fprintf(out, "❌ Almost! The correct answer is %s\n", fb.CorrectAnswer)
			}
			fmt.Fprintf(out, "💡 %s\n", fb.Explanation)
		}

		orch.Advance()
		fmt.Fprintln(out)
		fmt.Fprintln(out, strings.Repeat("─", 50))
		fmt.Fprintln(out)
		snap = orch.Snapshot()
	}

	result := snap.Result
	if result == nil {
		return
	}
	fmt.Fprintln(out, "🎉 Quiz Complete!")
	fmt.Fprintf(out, "⭐ %d / %d (%.1f%%)\n", result.Score, result.Total, result.Percentage())
	fmt.Fprintln(out, result.FeedbackMessage())
	fmt.Fprintln(out, "\nLet's Review!")
	for i, r := range result.PerQuestion {
		mark := "❌"
		if r.IsCorrect {
			mark = "✅"
		}
		fmt.Fprintf(out, "%s %d. %s\n", mark, i+1, r.Question.Text)
		switch {
		case r.Unanswered():
			fmt.Fprintln(out, "   You didn't answer this one.")
		case !r.IsCorrect:
			fmt.Fprintf(out, "   Your answer: %s\n", *r.UserAnswer)
		}
		fmt.Fprintf(out, "   Correct answer: %s\n", r.Question.CorrectAnswer)
		fmt.Fprintf(out, "   Explanation: %s\n", r.Question.Explanation)
	}
}
