// cmd/treestage/main.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"treestage/internal/blobcache"
	"treestage/internal/changelog"
	"treestage/internal/config"
	"treestage/internal/logging"
	"treestage/internal/objstore"
	"treestage/internal/snapshot"
	"treestage/internal/stage"

	"github.com/dgraph-io/badger/v4"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "treestage",
	Short: "Treestage commits staged file edits to a remote tree",
	Long: `Treestage accumulates file edits (add, modify, delete, move) against a
remote content-addressed tree and materializes them as a single atomic
commit, without a local checkout.`,
}

// planEdit is one line of a JSON edit plan.
type planEdit struct {
	Op      string `json:"op"` // add, modify, delete, move
	Path    string `json:"path"`
	To      string `json:"to,omitempty"`
	Content string `json:"content,omitempty"`
	Mode    string `json:"mode,omitempty"`
}

func init() {
	var (
		planPath string
		branch   string
		dryRun   bool
	)

	var commitCmd = &cobra.Command{
		Use:   "commit [message]",
		Short: "Apply an edit plan and commit it in one shot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.DefaultPath())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if branch != "" {
				cfg.Branch = branch
			}

			logger, err := logging.NewLogger(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			defer logger.Sync()

			edits, err := loadPlan(planPath)
			if err != nil {
				return fmt.Errorf("loading plan: %w", err)
			}

			store, cleanup, err := buildStore(cfg)
			if err != nil {
				return fmt.Errorf("initializing store: %w", err)
			}
			defer cleanup()

			session := stage.New(store, stage.Config{
				Repo:       cfg.Remote.Repo,
				Branch:     cfg.Branch,
				BaseBranch: cfg.BaseBranch,
			}, logger.WithRepo(cfg.Remote.Repo))
			session.DryRun(dryRun)

			if err := stagePlan(session, edits); err != nil {
				return err
			}

			outcome, err := session.Commit(args[0])
			if err != nil {
				return fmt.Errorf("committing: %w", err)
			}

			printColoredChangelog(changelog.New(3).Format(outcome.Records))

			switch {
			case outcome.Ref != nil:
				fmt.Printf("Committed %s to %s\n", outcome.Ref.CommitHash, outcome.Branch)
			case outcome.DryRun && len(outcome.Records) > 0:
				fmt.Printf("Dry run: %d change(s) would be committed to %s\n", len(outcome.Records), outcome.Branch)
			default:
				fmt.Println("No changes to commit")
			}
			return nil
		},
	}

	commitCmd.Flags().StringVarP(&planPath, "plan", "p", "plan.json", "Path to the JSON edit plan")
	commitCmd.Flags().StringVarP(&branch, "branch", "b", "", "Target branch (overrides config)")
	commitCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the diff without writing anything remotely")

	rootCmd.AddCommand(commitCmd)
}

func loadPlan(path string) ([]planEdit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var edits []planEdit
	if err := json.Unmarshal(data, &edits); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return edits, nil
}

func stagePlan(session *stage.Session, edits []planEdit) error {
	for _, e := range edits {
		switch e.Op {
		case "add":
			mode := snapshot.ModeFile
			if e.Mode != "" {
				mode = snapshot.Mode(e.Mode)
			}
			session.AddFile(e.Path, []byte(e.Content), mode)
		case "modify":
			replacement := []byte(e.Content)
			session.ModifyFile(stage.Path(e.Path), func(_ []byte, mode snapshot.Mode) ([]byte, snapshot.Mode, error) {
				if e.Mode != "" {
					mode = snapshot.Mode(e.Mode)
				}
				return replacement, mode, nil
			})
		case "delete":
			session.DeleteFile(e.Path)
		case "move":
			if e.To == "" {
				return fmt.Errorf("move of %s is missing a destination", e.Path)
			}
			session.MoveFile(e.Path, e.To)
		default:
			return fmt.Errorf("unknown plan operation: %q", e.Op)
		}
	}
	return nil
}

// buildStore assembles the remote client, wrapped in the local blob
// cache when one is configured.
func buildStore(cfg *config.Config) (objstore.Store, func(), error) {
	client := objstore.NewClient(cfg.Remote.BaseURL, cfg.Remote.Repo, cfg.Remote.Token)
	if cfg.Cache.Path == "" {
		return client, func() {}, nil
	}

	opts := badger.DefaultOptions(cfg.Cache.Path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache database: %w", err)
	}

	store, err := blobcache.WrapStore(client, db, blobcache.DefaultOptions())
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, func() { db.Close() }, nil
}

func printColoredChangelog(text string) {
	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	header := color.New(color.FgCyan)

	for _, line := range strings.Split(text, "\n") {
		if len(line) == 0 {
			fmt.Println()
			continue
		}

		switch {
		case strings.HasPrefix(line, "@@"):
			header.Println(line)
		case strings.HasPrefix(line, "+"):
			added.Println(line)
		case strings.HasPrefix(line, "-"):
			removed.Println(line)
		default:
			fmt.Println(line)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
