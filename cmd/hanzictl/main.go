// Package main provides the CLI entry point for hanzictl.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hanzihome/portal/internal/config"
	"github.com/hanzihome/portal/internal/portal"
	"github.com/hanzihome/portal/internal/session"
	"github.com/hanzihome/portal/internal/storage"
)

// Output format constants.
const (
	outputJSON = "json"
	outputYAML = "yaml"
	outputText = "text"
)

var (
	// Global flags
	flagConfigPath string
	flagOutput     string

	// Read flags
	flagRefresh bool
	flagStudent string
	flagRange   string
	flagMonth   string

	// Login flags
	loginPIN string

	// Assignment flags
	hwTitle string
	hwChars string
	hwDate  string

	// Shop flags
	itemName  string
	itemCost  int
	itemEmoji string

	// Points flags
	pointsReason string

	// Goal flags
	goalTitle  string
	goalTarget int
	goalReward string

	// Reset flags
	resetYes bool

	// Global config (loaded once, used by all commands)
	cfg *config.Config

	// Active session (lazy initialized)
	sess *session.Session
)

// Exit codes. Commands use these semantically:
//   - exitValidation: invalid input, missing required arguments
//   - exitRemote: the backend rejected the operation, or it is unreachable
//     and the operation is not queueable
//   - exitWrite: local state write failure
const (
	exitValidation = 1
	exitRemote     = 2
	exitWrite      = 3
)

// ExitError is an error that carries a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func exitErr(code int, msg string) error {
	return &ExitError{Code: code, Message: msg}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitError *ExitError
		if errors.As(err, &exitError) {
			fmt.Fprintln(os.Stderr, exitError.Message)
			os.Exit(exitError.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hanzictl",
	Short: "Hanzi Home CLI - homework, practice, and rewards from the terminal",
	Long: `hanzictl talks to a Hanzi Home backend deployment. Reads are cached
locally; writes made while offline are queued and replayed on the next
successful connection.

Run 'hanzictl config set-url <deployment-url>' once to point at your
backend, or 'hanzictl demo on' to explore with generated data.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// initSession loads config and opens the persistent state store. Called
// via PreRunE on every command that touches data.
func initSession() error {
	if sess != nil {
		return nil
	}

	var err error
	cfg, err = config.Load(config.LoadOptions{ExplicitPath: flagConfigPath})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	stateDir, err := cfg.ResolveStateDir()
	if err != nil {
		return fmt.Errorf("resolve state dir: %w", err)
	}
	store, err := storage.OpenFile(stateDir)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}

	logger := log.New(os.Stderr, "", 0)
	sess, err = session.New(cfg, store, logger)
	return err
}

func preRun(_ *cobra.Command, _ []string) error {
	return initSession()
}

// opCtx returns a context bounded generously above the per-attempt
// transport timeout so retries have room to run.
func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 4*cfg.TimeoutDuration())
}

// printOut renders v in the requested output format.
func printOut(v any) error {
	switch flagOutput {
	case outputJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(v)
	case outputText, "":
		return nil // caller prints text itself
	default:
		return exitErr(exitValidation, fmt.Sprintf("unknown output format %q", flagOutput))
	}
}

func textOutput() bool {
	return flagOutput == outputText || flagOutput == ""
}

// renderResult turns a write Result into CLI output and exit status.
func renderResult(res portal.Result, successMsg string) error {
	if !res.Success {
		return exitErr(exitRemote, res.Message)
	}
	if res.Offline {
		fmt.Println("offline: " + res.Message)
		return nil
	}
	if successMsg != "" {
		fmt.Println(successMsg)
	} else if res.Message != "" {
		fmt.Println(res.Message)
	}
	return nil
}

// ---- config ----

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and modify client configuration",
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Short:   "Show the active configuration and state",
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, _ []string) error {
		info := map[string]any{
			"backend_url":  sess.BackendURL(),
			"demo_mode":    sess.DemoMode(),
			"pending_ops":  sess.Pending(),
			"timeout":      cfg.Timeout,
			"max_attempts": cfg.MaxAttempts,
		}
		if !textOutput() {
			return printOut(info)
		}
		url := sess.BackendURL()
		if url == "" {
			url = "(not configured)"
		}
		fmt.Printf("backend URL:  %s\n", url)
		fmt.Printf("demo mode:    %v\n", sess.DemoMode())
		fmt.Printf("pending ops:  %d\n", sess.Pending())
		fmt.Printf("timeout:      %s\n", cfg.Timeout)
		fmt.Printf("max attempts: %d\n", cfg.MaxAttempts)
		return nil
	},
}

var configSetURLCmd = &cobra.Command{
	Use:     "set-url <deployment-url>",
	Short:   "Set the backend deployment URL",
	Args:    cobra.ExactArgs(1),
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, args []string) error {
		normalized, err := sess.SetBackendURL(args[0])
		if err != nil {
			return exitErr(exitWrite, fmt.Sprintf("save backend URL: %v", err))
		}
		fmt.Printf("backend URL set to %s\n", normalized)
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:     "reset",
	Short:   "Wipe all local state: backend URL, demo mode, cache, and pending writes",
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, _ []string) error {
		if pending := sess.Pending(); pending > 0 && !resetYes {
			return exitErr(exitValidation,
				fmt.Sprintf("%d pending offline write(s) would be dropped; re-run with --yes to confirm", pending))
		}
		if err := sess.Reset(); err != nil {
			return exitErr(exitWrite, fmt.Sprintf("reset state: %v", err))
		}
		fmt.Println("local state cleared")
		return nil
	},
}

// ---- login / ping ----

var loginCmd = &cobra.Command{
	Use:     "login <name>",
	Short:   "Log in to the portal",
	Args:    cobra.ExactArgs(1),
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, cancel := opCtx()
		defer cancel()

		student, res := sess.Source().Login(ctx, args[0], loginPIN)
		if !res.Success {
			return exitErr(exitRemote, res.Message)
		}
		if !textOutput() {
			return printOut(student)
		}
		if student.Offline {
			fmt.Printf("logged in offline as %s (%s)\n", student.Name, student.ID)
			fmt.Println(res.Message)
			return nil
		}
		fmt.Printf("logged in as %s (%s, %d points)\n", student.Name, student.Role, student.Points)
		return nil
	},
}

var pingCmd = &cobra.Command{
	Use:     "ping",
	Short:   "Check backend connectivity and replay queued writes",
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := opCtx()
		defer cancel()

		start := time.Now()
		if err := sess.CheckConnection(ctx); err != nil {
			return exitErr(exitRemote, fmt.Sprintf("backend unreachable: %v", err))
		}
		fmt.Printf("backend reachable (%s)\n", time.Since(start).Round(time.Millisecond))
		if n := sess.Pending(); n > 0 {
			fmt.Printf("%d write(s) still pending\n", n)
		}
		return nil
	},
}

// ---- assignments ----

var assignmentsCmd = &cobra.Command{
	Use:     "assignments",
	Aliases: []string{"hw"},
	Short:   "Manage homework assignments",
}

var assignmentsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List assignments for a student",
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := opCtx()
		defer cancel()

		list := sess.Source().Assignments(ctx, flagStudent, flagRefresh)
		if !textOutput() {
			return printOut(list)
		}
		if len(list) == 0 {
			fmt.Println("no assignments")
			return nil
		}
		for _, a := range list {
			fmt.Printf("%-12s %-8s %-10s %s\n", a.ID, a.Status, a.LessonDate, a.Title)
		}
		return nil
	},
}

var assignmentsCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Create an assignment",
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, _ []string) error {
		if hwTitle == "" {
			return exitErr(exitValidation, "--title is required")
		}
		ctx, cancel := opCtx()
		defer cancel()

		a := portal.Assignment{
			Title:      hwTitle,
			LessonDate: hwDate,
			Status:     "assigned",
		}
		if hwChars != "" {
			a.Characters = strings.Split(hwChars, ",")
		}
		return renderResult(sess.Source().CreateAssignment(ctx, a), "assignment created")
	},
}

var assignmentsDoneCmd = &cobra.Command{
	Use:     "done <assignment-id>",
	Short:   "Mark an assignment as done",
	Args:    cobra.ExactArgs(1),
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, args []string) error {
		if flagStudent == "" {
			return exitErr(exitValidation, "--student is required")
		}
		ctx, cancel := opCtx()
		defer cancel()
		res := sess.Source().UpdateAssignmentStatus(ctx, args[0], flagStudent, "done")
		return renderResult(res, "marked done")
	},
}

var assignmentsDeleteCmd = &cobra.Command{
	Use:     "delete <assignment-id>",
	Short:   "Delete an assignment",
	Args:    cobra.ExactArgs(1),
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, cancel := opCtx()
		defer cancel()
		return renderResult(sess.Source().DeleteAssignment(ctx, args[0]), "assignment deleted")
	},
}

// ---- practice / history / progress ----

var practiceCmd = &cobra.Command{
	Use:     "practice <student>",
	Short:   "Record a completed practice session",
	Args:    cobra.ExactArgs(1),
	PreRunE: preRun,
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := cmd.Flags().GetInt("score")
		if err != nil {
			return err
		}
		ctx, cancel := opCtx()
		defer cancel()

		rec := portal.PracticeRecord{
			Student:     args[0],
			Score:       score,
			PracticedAt: time.Now().Format(time.RFC3339),
		}
		if hwChars != "" {
			rec.Characters = strings.Split(hwChars, ",")
		}
		return renderResult(sess.Source().SavePracticeRecord(ctx, rec), "practice recorded")
	},
}

var historyCmd = &cobra.Command{
	Use:     "history <student>",
	Short:   "Show a student's activity history",
	Args:    cobra.ExactArgs(1),
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, cancel := opCtx()
		defer cancel()

		list := sess.Source().History(ctx, args[0], flagRefresh)
		if !textOutput() {
			return printOut(list)
		}
		if len(list) == 0 {
			fmt.Println("no history")
			return nil
		}
		for _, h := range list {
			fmt.Printf("%-12s %-10s %+4d  %s\n", h.Date, h.Activity, h.Points, strings.Join(h.Characters, " "))
		}
		return nil
	},
}

var progressCmd = &cobra.Command{
	Use:     "progress <student>",
	Short:   "Show a student's practice progress",
	Args:    cobra.ExactArgs(1),
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, cancel := opCtx()
		defer cancel()

		sum := sess.Source().ProgressSummary(ctx, args[0], flagRange, flagRefresh)
		if !textOutput() {
			return printOut(sum)
		}
		fmt.Printf("sessions:  %d\n", sum.Practiced)
		fmt.Printf("accuracy:  %.0f%%\n", sum.Accuracy*100)
		fmt.Printf("streak:    %d day(s)\n", sum.StreakDays)
		fmt.Printf("points:    %d\n", sum.PointsEarned)
		return nil
	},
}

// ---- calendar ----

var calendarCmd = &cobra.Command{
	Use:     "calendar",
	Short:   "Show the lesson calendar",
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := opCtx()
		defer cancel()

		month := flagMonth
		if month == "" {
			month = time.Now().Format("2006-01")
		}
		list := sess.Source().Calendar(ctx, month, flagRefresh)
		if !textOutput() {
			return printOut(list)
		}
		if len(list) == 0 {
			fmt.Printf("no events in %s\n", month)
			return nil
		}
		for _, ev := range list {
			fmt.Printf("%-12s %-10s %s\n", ev.Date, ev.Kind, ev.Title)
		}
		return nil
	},
}

// ---- dictionary ----

var dictionaryCmd = &cobra.Command{
	Use:     "dictionary",
	Aliases: []string{"dict"},
	Short:   "Show the lesson character dictionary",
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := opCtx()
		defer cancel()

		list := sess.Source().Dictionary(ctx, flagRefresh)
		if !textOutput() {
			return printOut(list)
		}
		for _, d := range list {
			fmt.Printf("%s  %-10s %s\n", d.Character, d.Pinyin, d.Meaning)
		}
		return nil
	},
}

// ---- shop / points ----

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Browse and manage the reward shop",
}

var shopListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List shop items",
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := opCtx()
		defer cancel()

		list := sess.Source().StoreItems(ctx, flagRefresh)
		if !textOutput() {
			return printOut(list)
		}
		for _, it := range list {
			fmt.Printf("%-14s %3d pts  %s %s\n", it.ID, it.Cost, it.Emoji, it.Name)
		}
		return nil
	},
}

var shopBuyCmd = &cobra.Command{
	Use:     "buy <item-id>",
	Short:   "Spend points on a shop item",
	Args:    cobra.ExactArgs(1),
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, args []string) error {
		if flagStudent == "" {
			return exitErr(exitValidation, "--student is required")
		}
		ctx, cancel := opCtx()
		defer cancel()
		return renderResult(sess.Source().PurchaseSticker(ctx, flagStudent, args[0]), "purchased")
	},
}

var shopAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Add a shop item",
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, _ []string) error {
		if itemName == "" {
			return exitErr(exitValidation, "--name is required")
		}
		ctx, cancel := opCtx()
		defer cancel()
		item := portal.StoreItem{Name: itemName, Cost: itemCost, Emoji: itemEmoji}
		return renderResult(sess.Source().AddStoreItem(ctx, item), "item added")
	},
}

var shopRemoveCmd = &cobra.Command{
	Use:     "remove <item-id>",
	Short:   "Remove a shop item",
	Args:    cobra.ExactArgs(1),
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, cancel := opCtx()
		defer cancel()
		return renderResult(sess.Source().DeleteStoreItem(ctx, args[0]), "item removed")
	},
}

var rulesCmd = &cobra.Command{
	Use:     "rules",
	Short:   "Show the reward rules",
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := opCtx()
		defer cancel()

		list := sess.Source().RewardRules(ctx, flagRefresh)
		if !textOutput() {
			return printOut(list)
		}
		for _, r := range list {
			fmt.Printf("%-12s %+4d  %s\n", r.Action, r.Points, r.Description)
		}
		return nil
	},
}

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Adjust student points",
}

var pointsAddCmd = &cobra.Command{
	Use:     "add <student> <delta>",
	Short:   "Adjust a student's points by a delta",
	Args:    cobra.ExactArgs(2),
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, args []string) error {
		delta, err := parseInt(args[1])
		if err != nil {
			return exitErr(exitValidation, fmt.Sprintf("invalid delta %q", args[1]))
		}
		ctx, cancel := opCtx()
		defer cancel()
		return renderResult(sess.Source().UpdatePoints(ctx, args[0], delta, pointsReason), "points updated")
	},
}

var pointsGiveCmd = &cobra.Command{
	Use:     "give <student> <points>",
	Short:   "Award points to a student",
	Args:    cobra.ExactArgs(2),
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, args []string) error {
		points, err := parseInt(args[1])
		if err != nil || points <= 0 {
			return exitErr(exitValidation, fmt.Sprintf("invalid points %q", args[1]))
		}
		ctx, cancel := opCtx()
		defer cancel()
		return renderResult(sess.Source().GivePoints(ctx, args[0], points), "points awarded")
	},
}

// ---- class goal ----

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Show and manage the class goal",
}

var goalShowCmd = &cobra.Command{
	Use:     "show",
	Short:   "Show the class goal",
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := opCtx()
		defer cancel()

		goal := sess.Source().ClassGoal(ctx, flagRefresh)
		if !textOutput() {
			return printOut(goal)
		}
		if goal.Title == "" {
			fmt.Println("no class goal set")
			return nil
		}
		fmt.Printf("%s: %d/%d (%s)\n", goal.Title, goal.Current, goal.Target, goal.Reward)
		return nil
	},
}

var goalSetCmd = &cobra.Command{
	Use:     "set",
	Short:   "Set the class goal",
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, _ []string) error {
		if goalTitle == "" || goalTarget <= 0 {
			return exitErr(exitValidation, "--title and a positive --target are required")
		}
		ctx, cancel := opCtx()
		defer cancel()
		goal := portal.ClassGoal{Title: goalTitle, Target: goalTarget, Reward: goalReward}
		return renderResult(sess.Source().SaveClassGoal(ctx, goal), "class goal saved")
	},
}

var goalContributeCmd = &cobra.Command{
	Use:     "contribute <student> <points>",
	Short:   "Contribute a student's points toward the class goal",
	Args:    cobra.ExactArgs(2),
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, args []string) error {
		points, err := parseInt(args[1])
		if err != nil || points <= 0 {
			return exitErr(exitValidation, fmt.Sprintf("invalid points %q", args[1]))
		}
		ctx, cancel := opCtx()
		defer cancel()
		return renderResult(sess.Source().ContributeClassGoal(ctx, args[0], points), "contributed")
	},
}

// ---- feedback / logs ----

var feedbackCmd = &cobra.Command{
	Use:     "feedback <student> <message>",
	Short:   "Send feedback to the teacher",
	Args:    cobra.MinimumNArgs(2),
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, cancel := opCtx()
		defer cancel()
		msg := strings.Join(args[1:], " ")
		return renderResult(sess.Source().SubmitFeedback(ctx, args[0], msg), "feedback sent")
	},
}

var logsCmd = &cobra.Command{
	Use:     "logs",
	Short:   "Show recent logins",
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := opCtx()
		defer cancel()

		list := sess.Source().LoginLogs(ctx, flagRefresh)
		if !textOutput() {
			return printOut(list)
		}
		for _, l := range list {
			fmt.Printf("%-25s %s\n", l.At, l.Student)
		}
		return nil
	},
}

// ---- queue ----

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and replay queued offline writes",
}

var queueStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show queued offline writes",
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, _ []string) error {
		n := sess.Pending()
		if n == 0 {
			fmt.Println("queue empty")
			return nil
		}
		fmt.Printf("%d pending write(s)\n", n)
		return nil
	},
}

var queueDrainCmd = &cobra.Command{
	Use:     "drain",
	Short:   "Replay queued offline writes now",
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := opCtx()
		defer cancel()

		sent := sess.Drain(ctx)
		fmt.Printf("replayed %d write(s), %d remaining\n", sent, sess.Pending())
		if sess.Pending() > 0 {
			return exitErr(exitRemote, "some writes could not be replayed")
		}
		return nil
	},
}

// ---- demo ----

var demoCmd = &cobra.Command{
	Use:   "demo on|off",
	Short: "Toggle demo mode (generated data, no backend)",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := initSession(); err != nil {
			return err
		}
		switch args[0] {
		case "on":
			if err := sess.SetDemoMode(true); err != nil {
				return exitErr(exitWrite, fmt.Sprintf("enable demo mode: %v", err))
			}
			fmt.Println("demo mode on")
		case "off":
			if err := sess.SetDemoMode(false); err != nil {
				return exitErr(exitWrite, fmt.Sprintf("disable demo mode: %v", err))
			}
			fmt.Println("demo mode off")
		default:
			return exitErr(exitValidation, "expected 'on' or 'off'")
		}
		return nil
	},
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", outputText, "output format: text, json, or yaml")
	rootCmd.PersistentFlags().BoolVar(&flagRefresh, "refresh", false, "bypass the local cache")

	loginCmd.Flags().StringVar(&loginPIN, "pin", "", "login PIN")

	assignmentsListCmd.Flags().StringVar(&flagStudent, "student", "", "student name")
	assignmentsDoneCmd.Flags().StringVar(&flagStudent, "student", "", "student name")
	assignmentsCreateCmd.Flags().StringVar(&hwTitle, "title", "", "assignment title")
	assignmentsCreateCmd.Flags().StringVar(&hwChars, "chars", "", "comma-separated characters")
	assignmentsCreateCmd.Flags().StringVar(&hwDate, "date", "", "lesson date (YYYY-MM-DD)")

	practiceCmd.Flags().Int("score", 0, "practice score (0-100)")
	practiceCmd.Flags().StringVar(&hwChars, "chars", "", "comma-separated characters practiced")

	progressCmd.Flags().StringVar(&flagRange, "range", "week", "date range: week, month, or all")
	calendarCmd.Flags().StringVar(&flagMonth, "month", "", "month (YYYY-MM), defaults to current")

	shopBuyCmd.Flags().StringVar(&flagStudent, "student", "", "student name")
	shopAddCmd.Flags().StringVar(&itemName, "name", "", "item name")
	shopAddCmd.Flags().IntVar(&itemCost, "cost", 0, "item cost in points")
	shopAddCmd.Flags().StringVar(&itemEmoji, "emoji", "", "item emoji")

	pointsAddCmd.Flags().StringVar(&pointsReason, "reason", "", "reason for the adjustment")

	goalSetCmd.Flags().StringVar(&goalTitle, "title", "", "goal title")
	goalSetCmd.Flags().IntVar(&goalTarget, "target", 0, "goal target points")
	goalSetCmd.Flags().StringVar(&goalReward, "reward", "", "goal reward")

	configResetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm dropping pending writes")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetURLCmd)
	configCmd.AddCommand(configResetCmd)
	assignmentsCmd.AddCommand(assignmentsListCmd)
	assignmentsCmd.AddCommand(assignmentsCreateCmd)
	assignmentsCmd.AddCommand(assignmentsDoneCmd)
	assignmentsCmd.AddCommand(assignmentsDeleteCmd)
	shopCmd.AddCommand(shopListCmd)
	shopCmd.AddCommand(shopBuyCmd)
	shopCmd.AddCommand(shopAddCmd)
	shopCmd.AddCommand(shopRemoveCmd)
	pointsCmd.AddCommand(pointsAddCmd)
	pointsCmd.AddCommand(pointsGiveCmd)
	goalCmd.AddCommand(goalShowCmd)
	goalCmd.AddCommand(goalSetCmd)
	goalCmd.AddCommand(goalContributeCmd)
	queueCmd.AddCommand(queueStatusCmd)
	queueCmd.AddCommand(queueDrainCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(assignmentsCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(dictionaryCmd)
	rootCmd.AddCommand(shopCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(pointsCmd)
	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(demoCmd)
}
