// Package cli implements the stayledger command line: exchange rates,
// revenue reports, the commission lifecycle, payouts and schema migrations.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/turtacn/StayLedger/internal/application/commission"
	"github.com/turtacn/StayLedger/internal/application/payout"
	"github.com/turtacn/StayLedger/internal/application/revenue"
	"github.com/turtacn/StayLedger/internal/config"
	domainCommission "github.com/turtacn/StayLedger/internal/domain/commission"
	"github.com/turtacn/StayLedger/internal/domain/currency"
	domainPayout "github.com/turtacn/StayLedger/internal/domain/payout"
	domainRevenue "github.com/turtacn/StayLedger/internal/domain/revenue"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type cliContextKey struct{}

// RateReader returns exchange rate snapshots.
type RateReader interface {
	Rates(ctx context.Context, base string) (*currency.Snapshot, error)
}

// AmountConverter converts between two currencies.
type AmountConverter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) currency.Conversion
}

// RevenueService builds revenue reports.
type RevenueService interface {
	Summary(ctx context.Context, in *revenue.SummaryInput) (*domainRevenue.Report, error)
}

// CommissionService runs the commission lifecycle.
type CommissionService interface {
	Calculate(ctx context.Context, in *commission.CalculateInput) (*domainCommission.Record, error)
	Approve(ctx context.Context, in *commission.TransitionInput) (*domainCommission.Record, error)
	Finalize(ctx context.Context, in *commission.TransitionInput) (*commission.FinalizeResult, error)
	ManagerPeriod(ctx context.Context, in *commission.PeriodInput) (*domainCommission.PeriodSummary, error)
}

// PayoutService runs the payout lifecycle.
type PayoutService interface {
	Balance(ctx context.Context, managerID string) (*domainPayout.Balance, error)
	List(ctx context.Context, managerID, status string) ([]*domainPayout.Request, error)
	Request(ctx context.Context, in *payout.RequestInput) (*domainPayout.Request, error)
	Approve(ctx context.Context, in *payout.TransitionInput) (*domainPayout.Request, error)
	Reject(ctx context.Context, in *payout.RejectInput) (*domainPayout.Request, error)
	Pay(ctx context.Context, in *payout.PayInput) (*payout.PayResult, error)
}

// Migrator applies schema migrations.
type Migrator interface {
	Up() error
	Down(steps int) error
	Status() (version uint, dirty bool, err error)
	Force(version int) error
}

// Services is the set of application services commands run against.
type Services struct {
	Rates       RateReader
	Converter   AmountConverter
	Revenue     RevenueService
	Commissions CommissionService
	Payouts     PayoutService
	// Close releases the backends. May be nil.
	Close func()
}

// Dependencies tells the command tree how to reach its backends. Services
// and Migrator are called lazily, once, by the commands that need them.
type Dependencies struct {
	LoadConfig func(path string) (*config.Config, error)
	Services   func(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Services, error)
	Migrator   func(cfg *config.Config) Migrator
}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration
	Actor        string
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration
	Actor        string

	deps *Dependencies
	sess *session
}

// session owns the lazily built services so Execute can close them.
type session struct {
	once     sync.Once
	services *Services
	err      error
}

func (s *session) close() {
	if s.services != nil && s.services.Close != nil {
		s.services.Close()
	}
}

// Services builds the application services on first use.
func (c *CLIContext) Services(ctx context.Context) (*Services, error) {
	c.sess.once.Do(func() {
		if c.deps.Services == nil {
			c.sess.err = errors.New(errors.ErrCodeServiceUnavailable, "services are not configured")
			return
		}
		c.sess.services, c.sess.err = c.deps.Services(ctx, c.Config, c.Logger)
	})
	return c.sess.services, c.sess.err
}

// Migrator returns the schema migrator for the loaded configuration.
func (c *CLIContext) Migrator() (Migrator, error) {
	if c.deps.Migrator == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "migrations are not configured")
	}
	return c.deps.Migrator(c.Config), nil
}

// NewRootCommand creates the root command with all global flags and
// subcommands.
func NewRootCommand(deps Dependencies) *cobra.Command {
	cmd, _ := newRootCommand(deps)
	return cmd
}

func newRootCommand(deps Dependencies) (*cobra.Command, *session) {
	opts := &RootOptions{}
	sess := &session{}
	if deps.LoadConfig == nil {
		deps.LoadConfig = config.Load
	}

	cmd := &cobra.Command{
		Use:   "stayledger",
		Short: "StayLedger CLI for revenue reconciliation, commissions and payouts",
		Long: "StayLedger reconciles booking revenue across channels and currencies,\n" +
			"computes management commissions and tracks manager payout balances.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts, &deps, sess)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./stayledger.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, table)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "global operation timeout")
	pf.StringVar(&opts.Actor, "as", os.Getenv("USER"), "operator recorded on lifecycle transitions")

	cmd.AddCommand(
		newRatesCmd(),
		newRevenueCmd(),
		newCommissionCmd(),
		newPayoutCmd(),
		newMigrateCmd(),
	)
	return cmd, sess
}

// persistentPreRun loads config and logger, then stores the CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions, deps *Dependencies, sess *session) error {
	switch strings.ToLower(opts.OutputFormat) {
	case "text", "json", "table":
	default:
		return errors.InvalidParam("unknown output format").WithDetail(opts.OutputFormat)
	}

	cfg, err := initConfig(opts, deps.LoadConfig)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger, err := initLogger(opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		OutputFormat: strings.ToLower(opts.OutputFormat),
		Verbose:      opts.Verbose,
		Timeout:      opts.Timeout,
		Actor:        opts.Actor,
		deps:         deps,
		sess:         sess,
	}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

// initConfig loads the file named by --config, else the first one found on
// the search path, else environment variables only.
func initConfig(opts *RootOptions, load func(string) (*config.Config, error)) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return load(opts.ConfigPath)
	}

	searchPaths := []string{"./stayledger.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".stayledger", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/stayledger/config.yaml")

	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			return load(p)
		}
	}
	return config.LoadFromEnv()
}

// initLogger creates a console logger on stderr so stdout stays parseable.
func initLogger(opts *RootOptions) (logging.Logger, error) {
	level := strings.ToLower(opts.LogLevel)
	switch level {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		level = logging.LevelWarn
	}
	if opts.Verbose {
		level = logging.LevelDebug
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// runContext returns the CLI context, its services and a context bounded by
// --timeout.
func runContext(cmd *cobra.Command) (*CLIContext, *Services, context.Context, context.CancelFunc, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	svc, err := cliCtx.Services(ctx)
	if err != nil {
		cancel()
		return nil, nil, nil, nil, err
	}
	return cliCtx, svc, ctx, cancel, nil
}

// requireActor returns the operator for a state transition.
func requireActor(cliCtx *CLIContext) (string, error) {
	if cliCtx.Actor == "" {
		return "", errors.InvalidParam("operator is required; pass --as")
	}
	return cliCtx.Actor, nil
}

// Execute runs the CLI and releases whatever backends the command opened.
func Execute(ctx context.Context, deps Dependencies) error {
	root, sess := newRootCommand(deps)
	defer sess.close()

	if err := root.ExecuteContext(ctx); err != nil {
		PrintError(root, err)
		return err
	}
	return nil
}

// tableProvider is implemented by results that render as a table.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult outputs data in the format specified by CLIContext.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return printJSON(cmd, data)
	}

	switch cliCtx.OutputFormat {
	case "json":
		return printJSON(cmd, data)
	case "table":
		return printTable(cmd, data)
	default:
		return printText(cmd, data)
	}
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	if v, ok := data.(interface{ JSONValue() interface{} }); ok {
		data = v.JSONValue()
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(cmd *cobra.Command, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprintln(cmd.OutOrStdout(), v.String())
	case tableProvider:
		fmt.Fprint(cmd.OutOrStdout(), FormatTable(v.TableHeaders(), v.TableRows()))
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}

// printTable renders a tableProvider, falling back to text.
func printTable(cmd *cobra.Command, data interface{}) error {
	if tp, ok := data.(tableProvider); ok {
		fmt.Fprint(cmd.OutOrStdout(), FormatTable(tp.TableHeaders(), tp.TableRows()))
		return nil
	}
	return printText(cmd, data)
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// PrintSuccess writes a formatted success message to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", msg)
}

// FormatTable renders headers and rows as an aligned ASCII table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if len(row[i]) > colWidths[i] {
				colWidths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			if i == len(headers)-1 {
				sb.WriteString(val)
			} else {
				sb.WriteString(padRight(val, colWidths[i]))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sep := make([]string, len(colWidths))
	for i, w := range colWidths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

// padRight pads s with spaces to the given width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

//Personal.AI order the ending
