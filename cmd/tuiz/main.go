// Package main provides the CLI entrypoint for tuiz.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuiz/internal/bank"
	"github.com/verte-zerg/tuiz/internal/config"
	"github.com/verte-zerg/tuiz/internal/game"
	"github.com/verte-zerg/tuiz/internal/logging"
	"github.com/verte-zerg/tuiz/internal/model"
	"github.com/verte-zerg/tuiz/internal/profile"
	"github.com/verte-zerg/tuiz/internal/sound"
	"github.com/verte-zerg/tuiz/internal/stats"
	"github.com/verte-zerg/tuiz/internal/statsui"
	"github.com/verte-zerg/tuiz/internal/store"
	"github.com/verte-zerg/tuiz/internal/tui"
)

const (
	defaultTimeLimit   = 20
	defaultWarnAt      = 5
	defaultCriticalAt  = 3
	defaultCurveWindow = 5
	defaultFetchAmount = 50
	maxFetchAmount     = 50
)

const dotenvPath = ".env"

var (
	bankPath string

	playDifficulty string
	playCategory   string
	playTimeLimit  int
	playWarnAt     int
	playCriticalAt int
	playSound      bool

	statsPlain       bool
	statsSince       string
	statsLast        int
	statsCurveWindow int

	fetchAmount     int
	fetchDifficulty string
	fetchOut        string
	fetchForce      bool

	resetYes bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuiz",
		Short:         "Timed terminal trivia",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.PersistentFlags().StringVar(&bankPath, "bank", "", "question bank YAML file (default: builtin)")
	rootCmd.Flags().StringVar(&playDifficulty, "difficulty", model.All, "Easy, Medium, Hard or All")
	rootCmd.Flags().StringVar(&playCategory, "category", model.All, "category name or All")
	rootCmd.Flags().IntVar(&playTimeLimit, "time-limit", defaultTimeLimit, "seconds per question")
	rootCmd.Flags().IntVar(&playWarnAt, "warn-at", defaultWarnAt, "seconds left when the warning fires")
	rootCmd.Flags().IntVar(&playCriticalAt, "critical-at", defaultCriticalAt, "seconds left when the timer turns red")
	rootCmd.Flags().BoolVar(&playSound, "sound", false, "ring the terminal bell on game events")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCategoriesCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newBankCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

// env holds the configuration shared by every command.
type env struct {
	file config.FileConfig
	vars config.EnvConfig
	log  zerolog.Logger

	logCloser io.Closer
	store     store.Backend
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	vars, err := config.LoadEnv(dotenvPath)
	if err != nil {
		return nil, err
	}
	applyStringConfig(cmd, "bank", &bankPath, fileCfg.Game.Bank)
	applyEnvString(cmd, "bank", &bankPath, vars.Bank)
	return &env{file: fileCfg, vars: vars, log: zerolog.Nop(), logCloser: nopCloser{}}, nil
}

func (e *env) openLogger() error {
	lc := config.ResolveLog(e.file.Log, e.vars)
	log, closer, err := logging.New(logging.Options{Level: lc.Level, Path: lc.Path})
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	e.log = log
	e.logCloser = closer
	return nil
}

func (e *env) openStore(ctx context.Context) error {
	sc := config.ResolveStore(e.file.Store, e.vars)
	st, err := store.Open(ctx, store.Options{
		Backend:       sc.Backend,
		Path:          sc.Path,
		RedisAddr:     sc.RedisAddr,
		RedisPassword: sc.RedisPassword,
		RedisDB:       sc.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	e.store = st
	e.log.Debug().Str("backend", sc.Backend).Msg("store opened")
	return nil
}

func (e *env) Close() {
	if e.store != nil {
		if cerr := e.store.Close(); cerr != nil {
			logErrf("failed to close store: %v\n", cerr)
		}
	}
	if cerr := e.logCloser.Close(); cerr != nil {
		logErrf("failed to close log: %v\n", cerr)
	}
}

func setup(cmd *cobra.Command) (*env, context.Context, error) {
	e, err := loadEnv(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := e.openLogger(); err != nil {
		return nil, nil, err
	}
	ctx := logging.IntoContext(cmd.Context(), e.log)
	if err := e.openStore(ctx); err != nil {
		e.Close()
		return nil, nil, err
	}
	return e, ctx, nil
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	e, ctx, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	gc := e.file.Game
	applyStringConfig(cmd, "difficulty", &playDifficulty, gc.Difficulty)
	applyStringConfig(cmd, "category", &playCategory, gc.Category)
	applyIntConfig(cmd, "time-limit", &playTimeLimit, gc.TimeLimit)
	applyIntConfig(cmd, "warn-at", &playWarnAt, gc.WarnAt)
	applyIntConfig(cmd, "critical-at", &playCriticalAt, gc.CriticalAt)
	applyBoolConfig(cmd, "sound", &playSound, gc.Sound)

	timer := game.TimerConfig{Limit: playTimeLimit, WarnAt: playWarnAt, CriticalAt: playCriticalAt}
	if err := validateTimer(timer); err != nil {
		return err
	}
	b, err := loadBank(bankPath)
	if err != nil {
		return err
	}
	settings, err := resolveSettings(b, playDifficulty, playCategory)
	if err != nil {
		return err
	}

	profiles := profile.New(e.store, profile.WithLogger(e.log))
	g := game.New(ctx, b, profiles,
		game.WithHistory(e.store),
		game.WithLogger(e.log),
		game.WithTimer(timer),
		game.WithSettings(settings),
	)
	bell := sound.NewBell(os.Stderr, !playSound)
	g.Subscribe(bell.Listen)

	m := tui.NewModel(ctx, g, bell, e.store)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List question categories",
		Args:  cobra.NoArgs,
		RunE:  runCategoriesCmd,
	}
}

func runCategoriesCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadEnv(cmd); err != nil {
		return err
	}
	b, err := loadBank(bankPath)
	if err != nil {
		return err
	}
	for _, c := range b.Categories() {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), c); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the browser")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N games")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be > 0")
	}
	cfg := model.StatsConfig{
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	e, ctx, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()
	profiles := profile.New(e.store, profile.WithLogger(e.log))

	if statsPlain {
		p, err := profiles.Load(ctx)
		if err != nil {
			logErrf("warning: %v\n", err)
		}
		report, err := stats.BuildReport(ctx, p, e.store, cfg)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		return report.Render(cmd.OutOrStdout(), cfg.CurveWindow, stats.TerminalWidth())
	}

	m := statsui.NewModel(profiles, e.store, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newBankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Manage question banks",
	}
	fetch := &cobra.Command{
		Use:   "fetch",
		Short: "Download questions from the Open Trivia DB",
		Args:  cobra.NoArgs,
		RunE:  runBankFetchCmd,
	}
	fetch.Flags().IntVar(&fetchAmount, "amount", defaultFetchAmount, "number of questions to request (1-50)")
	fetch.Flags().StringVar(&fetchDifficulty, "difficulty", "", "easy, medium or hard (default: any)")
	fetch.Flags().StringVar(&fetchOut, "out", "", "output file (default: data dir)")
	fetch.Flags().BoolVar(&fetchForce, "force", false, "overwrite existing file")
	cmd.AddCommand(fetch)
	return cmd
}

func runBankFetchCmd(cmd *cobra.Command, _ []string) error {
	if fetchAmount <= 0 || fetchAmount > maxFetchAmount {
		return fmt.Errorf("--amount must be between 1 and %d", maxFetchAmount)
	}
	if fetchDifficulty != "" {
		if _, ok := bank.ParseDifficulty(fetchDifficulty); !ok {
			return fmt.Errorf("--difficulty must be easy, medium or hard")
		}
	}
	out := fetchOut
	if out == "" {
		out = filepath.Join(config.DefaultBankDir(), "opentdb.yaml")
	}
	if !fetchForce {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("bank already exists: %s (use --force to overwrite)", out)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat bank: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	logErrln("Fetching questions from the Open Trivia DB...")
	results, err := bank.NewOpenTDBClient("", nil).Fetch(ctx, fetchAmount, fetchDifficulty)
	if err != nil {
		return fmt.Errorf("failed to fetch questions: %w", err)
	}
	entries := bank.EntriesFromOpenTDB(results, 1)
	if len(entries) == 0 {
		return fmt.Errorf("no free-text questions in response")
	}
	if err := bank.WriteFile(out, entries); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	logErrf("Wrote %d questions to %s\n", len(entries), out)
	logErrf("Play with: tuiz --bank %s\n", out)
	return nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear high score, streak, statistics and history",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetYes, "yes", false, "do not ask for confirmation")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), "Clear all trivia progress? [y/N] ")
		if err != nil {
			return err
		}
		if !ok {
			logErrln("Aborted.")
			return nil
		}
	}
	e, ctx, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := profile.New(e.store, profile.WithLogger(e.log)).Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear profile: %w", err)
	}
	if err := e.store.ClearGames(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	e.log.Info().Msg("game data cleared")
	logErrln("Progress cleared.")
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func loadBank(path string) (*bank.Bank, error) {
	b, err := bank.Load(path)
	if err != nil {
		if path == "" {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load bank %s: %w", path, err)
	}
	return b, nil
}

// resolveSettings matches difficulty and category case-insensitively
// against the bank.
func resolveSettings(b *bank.Bank, difficulty, category string) (model.Settings, error) {
	settings := model.DefaultSettings()
	difficulty = strings.TrimSpace(difficulty)
	if difficulty != "" && !strings.EqualFold(difficulty, model.All) {
		d, ok := bank.ParseDifficulty(difficulty)
		if !ok {
			return settings, fmt.Errorf("--difficulty must be Easy, Medium, Hard or All")
		}
		settings.Difficulty = string(d)
	}
	category = strings.TrimSpace(category)
	if category != "" && !strings.EqualFold(category, model.All) {
		found := false
		for _, c := range b.Categories() {
			if strings.EqualFold(c, category) {
				settings.Category = c
				found = true
				break
			}
		}
		if !found {
			return settings, fmt.Errorf("unknown category %q (run: tuiz categories)", category)
		}
	}
	return settings, nil
}

func validateTimer(t game.TimerConfig) error {
	if t.Limit <= 0 {
		return fmt.Errorf("--time-limit must be > 0")
	}
	if t.WarnAt < 0 || t.WarnAt >= t.Limit {
		return fmt.Errorf("--warn-at must be between 0 and --time-limit")
	}
	if t.CriticalAt < 0 || t.CriticalAt >= t.Limit {
		return fmt.Errorf("--critical-at must be between 0 and --time-limit")
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyEnvString(cmd *cobra.Command, name string, target *string, value string) {
	if value == "" || cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuiz configuration
# Uncomment a value to enable it. CLI flags and TUIZ_* variables override config values.

[game]
# difficulty = %q         # Easy, Medium, Hard or All
# category = %q           # Category name or All (see: tuiz categories)
# time-limit = %d           # Seconds per question
# warn-at = %d               # Seconds left when the warning bell rings
# critical-at = %d           # Seconds left when the timer turns red
# sound = false             # Ring the terminal bell on game events
# bank = ""                 # Question bank YAML file (default: builtin)

[store]
# backend = %q         # sqlite or redis
# path = %q
# redis-addr = %q
# redis-password = ""
# redis-db = 0

[log]
# level = %q             # debug, info, warn, error
# path = %q
`,
		model.All,
		model.All,
		defaultTimeLimit,
		defaultWarnAt,
		defaultCriticalAt,
		config.DefaultBackend,
		config.DefaultDBPath(),
		config.DefaultRedisAddr,
		config.DefaultLogLevel,
		config.DefaultLogPath(),
	)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
