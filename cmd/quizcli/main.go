package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"studyquiz"

	"github.com/fatih/color"
)

func main() {
	var (
		topic         = flag.String("topic", "", "Topic name (required)")
		materialsFile = flag.String("materials", "", "File with study material (required)")
		dbPath        = flag.String("db", "./quiz.db", "Path to the quiz database")
		user          = flag.String("user", "local", "User id to own the topic")
		apiKey        = flag.String("api-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
		verbose       = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	studyquiz.SetVerbose(*verbose)

	if *topic == "" {
		log.Fatal("Topic is required. Use -topic flag.")
	}
	if *materialsFile == "" {
		log.Fatal("Study material is required. Use -materials flag.")
	}

	if *apiKey == "" {
		*apiKey = os.Getenv("OPENAI_API_KEY")
		if *apiKey == "" {
			log.Fatal("OpenAI API key is required. Use -api-key flag or set OPENAI_API_KEY environment variable.")
		}
	}

	materials, err := os.ReadFile(*materialsFile)
	if err != nil {
		log.Fatalf("Failed to read materials file: %v", err)
	}

	db, err := studyquiz.OpenDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	service := studyquiz.NewQuizService(db, studyquiz.NewQuestionMaker(*apiKey))
	service.SetLogDir("log")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	created, err := service.CreateTopic(ctx, *topic, string(materials), *user)
	if err != nil {
		log.Fatalf("Failed to create topic: %v", err)
	}

	color.Cyan("Topic: %s", created.Name)
	fmt.Println("Generating questions... (this may take a moment)")
	fmt.Println()

	session, err := service.CreateQuizSession(ctx, created.ID)
	if err != nil {
		log.Fatalf("Failed to generate quiz: %v", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		playSession(ctx, service, scanner, session)

		review, err := service.ReviewSession(ctx, session.SessionID)
		if err != nil {
			log.Fatalf("Failed to review session: %v", err)
		}

		missed := 0
		for _, q := range review.Questions {
			if q.IsCorrect == nil || !*q.IsCorrect {
				missed++
			}
		}
		if missed == 0 {
			color.Green("Perfect score, nothing left to practice.")
			return
		}

		fmt.Printf("You missed %d questions. Generate a new quiz from them? (y/N): ", missed)
		if !scanner.Scan() || strings.ToLower(strings.TrimSpace(scanner.Text())) != "y" {
			return
		}

		fmt.Println("Generating a new quiz from your missed questions...")
		fmt.Println()

		session, err = service.RegenerateSession(ctx, session.SessionID)
		if err != nil {
			log.Fatalf("Failed to regenerate quiz: %v", err)
		}
	}
}

// playSession asks every question, submits the answers, and prints the
// graded result.
func playSession(ctx context.Context, service *studyquiz.QuizService, scanner *bufio.Scanner, session *studyquiz.CreatedSession) {
	letters := []string{"A", "B", "C", "D"}
	answers := make([]studyquiz.Answer, 0, len(session.Questions))

	for i, question := range session.Questions {
		fmt.Printf("Question %d/%d:\n", i+1, session.Count)
		fmt.Printf("%s\n\n", question.QuestionText)

		for j, option := range question.Options {
			fmt.Printf("%s) %s\n", letters[j], option)
		}
		fmt.Println()

		var picked string
		for {
			fmt.Print("Your answer (A/B/C/D, Enter to skip): ")
			if !scanner.Scan() {
				break
			}
			picked = strings.ToUpper(strings.TrimSpace(scanner.Text()))
			if picked == "" || strings.Contains("ABCD", picked) && len(picked) == 1 {
				break
			}
			fmt.Println("Please enter A, B, C, or D")
		}

		if picked != "" {
			option := question.Options[strings.Index("ABCD", picked)]
			answers = append(answers, studyquiz.Answer{
				QuestionID: question.QuestionID,
				UserAnswer: &option,
			})
		}

		fmt.Println()
	}

	graded, err := service.SubmitAnswers(ctx, session.SessionID, answers)
	if err != nil {
		log.Fatalf("Failed to submit answers: %v", err)
	}

	fmt.Println(strings.Repeat("─", 50))
	for i, q := range graded.Questions {
		if q.IsCorrect != nil && *q.IsCorrect {
			color.Green("✅ %d. %s", i+1, q.QuestionText)
		} else {
			color.Red("❌ %d. %s", i+1, q.QuestionText)
			color.Yellow("   Correct answer: %s", q.CorrectAnswer)
			if q.Explanation != "" {
				fmt.Printf("   Explanation: %s\n", q.Explanation)
			}
		}
	}
	fmt.Println(strings.Repeat("─", 50))

	score := 0
	if graded.Score != nil {
		score = *graded.Score
	}
	percentage := float64(score) / float64(len(graded.Questions)) * 100
	color.Cyan("Score: %d/%d (%.1f%%)", score, len(graded.Questions), percentage)

	if percentage >= 80 {
		fmt.Println("🌟 Excellent work!")
	} else if percentage >= 60 {
		fmt.Println("👍 Good job!")
	} else {
		fmt.Println("📚 Keep studying!")
	}
	fmt.Println()
}
