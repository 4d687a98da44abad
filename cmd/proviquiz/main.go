package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ntwari02/proviQuiz/internal/examstore"
	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/pkg/client"

	"github.com/google/uuid"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	apiFlag         = kingpin.Flag("api", "API base URL").Envar("PROVIQUIZ_API_URL").Default(client.DefaultBaseURL).String()
	emailFlag       = kingpin.Flag("email", "Sign in with this email to save the result").Envar("PROVIQUIZ_EMAIL").String()
	passwordFlag    = kingpin.Flag("password", "Password for --email").Envar("PROVIQUIZ_PASSWORD").String()
	limitFlag       = kingpin.Flag("limit", "Number of questions").Default("20").Int()
	minutesFlag     = kingpin.Flag("minutes", "Time allowed").Default("20").Int()
	modeFlag        = kingpin.Flag("mode", "timed or practice").Default("timed").Enum("timed", "practice")
	rangeStartFlag  = kingpin.Flag("range-start", "Lowest question id to draw from").Int()
	rangeEndFlag    = kingpin.Flag("range-end", "Highest question id to draw from").Int()
	imageFilterFlag = kingpin.Flag("images", "all, images or text").Default("all").Enum("all", "images", "text")
)

// parseChoice maps typed input to an option id. Empty input skips the question.
func parseChoice(input string) (string, bool) {
	choice := strings.ToLower(strings.TrimSpace(input))
	if choice == "" {
		return "", true
	}
	for _, key := range models.OptionKeys {
		if choice == key {
			return key, true
		}
	}
	return "", false
}

// buildSubmission turns a finished attempt into the submit body.
func buildSubmission(store *examstore.Store, mode string) *models.SubmitExamRequest {
	state := store.State()
	req := &models.SubmitExamRequest{Mode: mode}
	if state.Result != nil {
		started := models.FlexTime{Time: state.Result.StartedAt}
		finished := models.FlexTime{Time: state.Result.FinishedAt}
		req.StartedAt = &started
		req.CompletedAt = &finished
	}
	for _, a := range store.Answers() {
		id := a.QuestionID
		req.Answers = append(req.Answers, models.SubmitAnswer{QuestionID: &id, Selected: a.Selected})
	}
	return req
}

func printQuestion(out io.Writer, n, total int, q examstore.Question, remaining int) {
	fmt.Fprintf(out, "\n[%d/%d] %s  (%d:%02d left)\n", n, total, q.Text, remaining/60, remaining%60)
	if q.ImageURL != "" {
		fmt.Fprintf(out, "  image: %s\n", q.ImageURL)
	}
	for _, o := range q.Options {
		if o.Text != "" {
			fmt.Fprintf(out, "  %s) %s\n", strings.ToUpper(o.ID), o.Text)
		}
	}
	fmt.Fprint(out, "Answer (a-d, enter to skip): ")
}

func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// run asks every question until the user finishes or the watcher submits on timeout.
func run(store *examstore.Store, lines <-chan string, timedOut <-chan struct{}, out io.Writer) {
	questions := store.State().Questions
	for i, q := range questions {
		store.GoToQuestion(i)
		for {
			printQuestion(out, i+1, len(questions), q, store.Remaining(time.Now()))
			select {
			case <-timedOut:
				fmt.Fprintln(out, "\nTime is up.")
				return
			case line, ok := <-lines:
				if !ok {
					return
				}
				choice, valid := parseChoice(line)
				if !valid {
					fmt.Fprintln(out, "Please type a, b, c or d.")
					continue
				}
				if choice != "" {
					store.SelectAnswer(q.ID, choice)
				}
			}
			break
		}
	}
}

func main() {
	kingpin.CommandLine.Help = "Take a PROVIQUIZ practice exam in the terminal"
	kingpin.Parse()
	log.SetFlags(0)

	api := client.New(*apiFlag)
	signedIn := false
	if *emailFlag != "" {
		res, err := api.Login(*emailFlag, *passwordFlag)
		if err != nil {
			log.Fatalf("Login failed: %s", client.ErrorMessage(err))
		}
		signedIn = true
		fmt.Printf("Signed in as %s\n", res.User.Email)
	}

	started, err := api.StartExam(client.StartExamParams{
		Limit:       *limitFlag,
		RangeStart:  *rangeStartFlag,
		RangeEnd:    *rangeEndFlag,
		ImageFilter: models.ImageFilter(*imageFilterFlag),
	})
	if err != nil {
		log.Fatalf("Could not start exam: %s", client.ErrorMessage(err))
	}
	questions := examstore.FromAPI(started.Questions)
	if len(questions) == 0 {
		log.Fatal("No questions available for this selection.")
	}
	fmt.Printf("%d questions, %d minutes. Good luck!\n", len(questions), *minutesFlag)

	store := examstore.New()
	store.StartExam(questions, *minutesFlag*60)

	ctx, cancel := context.WithCancel(context.Background())
	timedOut := make(chan struct{})
	go func() {
		if store.Watch(ctx, time.Second, nil) {
			close(timedOut)
		}
	}()

	run(store, readLines(os.Stdin), timedOut, os.Stdout)
	cancel()

	local := store.SubmitExam()
	if local == nil {
		local = store.State().Result
	}
	if local != nil {
		fmt.Printf("\nLocal result: %d/%d correct (%.0f%%)\n", local.CorrectCount, local.TotalQuestions, local.ScorePercent)
	}

	if !signedIn {
		fmt.Println("Not signed in, result not saved.")
		return
	}
	submitted, err := api.SubmitExam(buildSubmission(store, *modeFlag), uuid.NewString())
	if err != nil {
		log.Fatalf("Could not save result: %s", client.ErrorMessage(err))
	}
	verdict := "not passed"
	if submitted.Passed {
		verdict = "passed"
	}
	fmt.Printf("Saved exam %s: %d/%d, %s\n", submitted.ExamID, submitted.Score, submitted.TotalQuestions, verdict)
}
