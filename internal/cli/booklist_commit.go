package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Sa-tya/shelf-manager/internal/client"
	"github.com/Sa-tya/shelf-manager/internal/config"
	"github.com/Sa-tya/shelf-manager/internal/entities"
	"github.com/Sa-tya/shelf-manager/internal/workflow"
)

// PlanEntry stages one title for a set of classes.
type PlanEntry struct {
	BookID  uint     `json:"book_id"`
	Classes []string `json:"classes"`
}

// Plan is the JSON document read by booklist-commit.
type Plan struct {
	School  string      `json:"school"`
	Session int         `json:"session"`
	Entries []PlanEntry `json:"entries"`
}

// LoadPlan reads and validates a plan file.
func LoadPlan(r io.Reader) (*Plan, error) {
	var plan Plan
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	if len(plan.Entries) == 0 {
		return nil, errors.New("plan has no entries")
	}
	for i, e := range plan.Entries {
		if e.BookID == 0 {
			return nil, fmt.Errorf("entry %d: book_id is required", i+1)
		}
		if len(e.Classes) == 0 {
			return nil, fmt.Errorf("entry %d: at least one class is required", i+1)
		}
		for _, class := range e.Classes {
			if !entities.IsValidClass(class) {
				return nil, fmt.Errorf("entry %d: invalid class %q", i+1, class)
			}
		}
	}
	return &plan, nil
}

// BooklistCommitCommand stages a plan through the booklist workflow against a
// running server and commits it.
type BooklistCommitCommand struct {
	ServerURL   string
	School      string
	PlanPath    string
	Session     int
	Atomic      bool
	DryRun      bool
	Concurrency int
	Timeout     time.Duration

	Out io.Writer
}

// NewBooklistCommitCommand seeds the -server and -timeout defaults from api.
func NewBooklistCommitCommand(api config.API) *BooklistCommitCommand {
	cmd := &BooklistCommitCommand{
		ServerURL: api.BaseURL,
		Timeout:   api.Timeout,
		Out:       os.Stdout,
	}
	if cmd.ServerURL == "" {
		cmd.ServerURL = config.DefaultAPIBaseURL
	}
	if cmd.Timeout <= 0 {
		cmd.Timeout = 30 * time.Second
	}
	return cmd
}

func (cmd *BooklistCommitCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("booklist-commit", flag.ExitOnError)

	fs.StringVar(&cmd.ServerURL, "server", cmd.ServerURL, "Base URL of the shelf-manager server")
	fs.StringVar(&cmd.School, "school", "", "School code (overrides the plan's school)")
	fs.StringVar(&cmd.PlanPath, "plan", "", "Path to the JSON plan file (required)")
	fs.IntVar(&cmd.Session, "session", 0, "Session year to load and commit (0 = current year)")
	fs.BoolVar(&cmd.Atomic, "atomic", false, "Commit through the transactional endpoint instead of one request per row")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Print the preview without saving")
	fs.IntVar(&cmd.Concurrency, "concurrency", workflow.DefaultCommitConcurrency, "Parallel requests per phase for the non-atomic commit")
	fs.DurationVar(&cmd.Timeout, "timeout", cmd.Timeout, "Overall timeout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s booklist-commit -plan <file> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Stage books for a school's classes and save them as booklists.\n\n")
		fmt.Fprintf(os.Stderr, "Plan file format:\n")
		fmt.Fprintf(os.Stderr, "  {\"school\": \"SCH1\", \"entries\": [{\"book_id\": 4, \"classes\": [\"3\", \"5\"]}]}\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Preview a plan:\n")
		fmt.Fprintf(os.Stderr, "  %s booklist-commit -plan plan.json -dry-run\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Save it in one transaction:\n")
		fmt.Fprintf(os.Stderr, "  %s booklist-commit -plan plan.json -atomic\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.PlanPath == "" {
		return fmt.Errorf("required flag -plan not provided")
	}
	if cmd.Session < 0 {
		return fmt.Errorf("-session must not be negative")
	}

	return nil
}

func (cmd *BooklistCommitCommand) Run() error {
	if cmd.Out == nil {
		cmd.Out = os.Stdout
	}
	fmt.Fprintln(cmd.Out, "Booklist Commit")
	fmt.Fprintln(cmd.Out, "===============")

	if cmd.DryRun {
		fmt.Fprintln(cmd.Out, "DRY RUN MODE - No changes will be made")
		fmt.Fprintln(cmd.Out)
	}

	f, err := os.Open(cmd.PlanPath)
	if err != nil {
		return fmt.Errorf("failed to open plan: %w", err)
	}
	defer f.Close()

	plan, err := LoadPlan(f)
	if err != nil {
		return err
	}

	school := cmd.School
	if school == "" {
		school = plan.School
	}
	if school == "" {
		return fmt.Errorf("school code is required (use -school or set \"school\" in the plan)")
	}
	session := cmd.Session
	if session == 0 {
		session = plan.Session
	}
	if session == 0 {
		session = time.Now().Year()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	api := client.NewClient(cmd.ServerURL, cmd.Timeout)

	var committer workflow.Committer = workflow.NewFanOutCommitter(api, cmd.Concurrency)
	mode := "fan-out"
	if cmd.Atomic {
		committer = api
		mode = "atomic"
	}

	ctrl := workflow.NewController(school, api, committer)
	if err := ctrl.Load(ctx, session); err != nil {
		return err
	}

	for _, entry := range plan.Entries {
		ctrl.SelectBook(entry.BookID)
		ctrl.SelectClasses(entry.Classes)
		if err := ctrl.Simulate(ctx); err != nil {
			return fmt.Errorf("book %d: %w", entry.BookID, err)
		}
	}

	state := ctrl.State()
	fmt.Fprintf(cmd.Out, "School: %s\n", school)
	fmt.Fprintf(cmd.Out, "Preview (%d books):\n", workflow.StagedCount(state))
	for _, group := range state.Simulated {
		fmt.Fprintf(cmd.Out, "  %s\n", group.Name)
		for _, b := range group.Books {
			fmt.Fprintf(cmd.Out, "    - %s (%s)\n", b.Book.Name, b.DisplayPrice())
		}
	}
	fmt.Fprintln(cmd.Out)

	if cmd.DryRun {
		fmt.Fprintln(cmd.Out, "Dry run complete. Nothing saved.")
		return nil
	}

	result, err := ctrl.Save(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.Out, "Saved (%s): %d booklists, %d items\n", mode, len(result.Booklists), len(result.Items))
	return nil
}
