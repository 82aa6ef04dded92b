package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/reelscout/config"
	"github.com/s0up4200/reelscout/filter"
	"github.com/s0up4200/reelscout/omdb"
	"github.com/s0up4200/reelscout/render"
	"github.com/s0up4200/reelscout/search"
	"github.com/s0up4200/reelscout/session"
)

var (
	cfgFile    string
	cfg        *config.Config
	logger     zerolog.Logger
	omdbClient *omdb.Client
	formatter  *render.ConsoleFormatter
	filters    *filter.Manager

	// Command flags
	mediaType  string
	year       string
	page       int
	filterExpr string
	preset     string
	noColor    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "reelscout",
	Short: "Search movies and series on OMDb from the terminal",
	Long: `reelscout is a CLI tool for searching the OMDb catalogue.

Run a one-shot search, look up titles by IMDb id, or start an interactive
browse session with paging, result filters and a detail view.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(detailsCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(testCmd)
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	omdbClient = omdb.NewClient(cfg.OMDb.APIKey, logger,
		omdb.WithBaseURL(cfg.OMDb.URL),
		omdb.WithTimeout(cfg.OMDb.Timeout),
		omdb.WithUserAgent(cfg.OMDb.UserAgent),
	)
	if !omdbClient.HasCredential() {
		logger.Warn().Msg("No OMDb API key configured, requests will fail until OMDB_API_KEY or omdb.api_key is set")
	}

	formatter = render.NewConsoleFormatter(render.FormatOptions{
		Color:       useColor(),
		ShowDetails: cfg.Display.ShowDetails,
	})
	filters = filter.NewManager(filter.WithPresets(cfg.Filter.Presets))

	return nil
}

// useColor enables emphasis only for terminals
func useColor() bool {
	if noColor || !cfg.Display.Color {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search titles and print one page of results",
	Long: `Search OMDb for titles matching the query and print one page of results.

The page can be refined locally with --where or a configured --preset, e.g.
  reelscout search batman --type movie --where 'StartYear >= 2000'`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: initializeApp,
	RunE:    runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&mediaType, "type", "t", "", "restrict to movie, series or episode")
	searchCmd.Flags().StringVarP(&year, "year", "y", "", "restrict to a release year")
	searchCmd.Flags().IntVar(&page, "page", 1, "result page to show")
	searchCmd.Flags().StringVarP(&filterExpr, "where", "w", "", "filter expression applied to the page")
	searchCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
}

func runSearch(cmd *cobra.Command, args []string) error {
	kind, ok := omdb.ParseMediaType(mediaType)
	if !ok {
		return fmt.Errorf("invalid type: %s (must be movie, series, episode or any)", mediaType)
	}

	refine, err := filters.Resolve(filterExpr, preset)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	query := strings.Join(args, " ")
	logger.Debug().Str("query", query).Str("type", string(kind)).Str("year", year).Int("page", page).Msg("Searching titles")

	controller := search.NewController(omdbClient, logger)
	state := controller.UpdateFilters(cmd.Context(),
		search.WithQuery(query),
		search.WithType(kind),
		search.WithYear(year),
		search.WithPage(page),
	)

	if refine == nil || state.Status != search.StatusSuccess {
		fmt.Print(formatter.FormatResults(state))
	} else {
		items, err := refine.Apply(state.Items)
		if err != nil {
			return fmt.Errorf("failed to apply filter: %w", err)
		}
		fmt.Print(formatter.FormatRefined(state, items, refine.String()))
	}

	if state.Failed() && !state.ErrorKind.Logical() {
		return fmt.Errorf("search failed: %s", state.Error)
	}
	return nil
}

// detailsCmd represents the details command
var detailsCmd = &cobra.Command{
	Use:     "details <imdbID>...",
	Aliases: []string{"info"},
	Short:   "Show the full record of one or more titles",
	Long:    `Look up titles by IMDb id. Several ids are fetched concurrently.`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: initializeApp,
	RunE:    runDetails,
}

func runDetails(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if len(args) == 1 {
		detail := search.NewDetailController(omdbClient, logger)
		state := detail.Open(ctx, args[0])
		if state.Status == search.DetailFailed {
			fmt.Println(formatter.FormatError(state.Error, state.ErrorKind))
			if !state.ErrorKind.Logical() {
				return fmt.Errorf("lookup failed: %s", state.Error)
			}
			return nil
		}
		fmt.Print(formatter.FormatDetailState(state))
		return nil
	}

	result := omdbClient.GetDetailsBatch(ctx, args)
	fmt.Print(formatter.FormatBatch(result))

	logger.Debug().
		Int("requested", result.Requested).
		Int("successful", len(result.Successful)).
		Int("failed", len(result.Failed)).
		Msg("Batch lookup completed")

	if len(result.Successful) == 0 && len(result.Failed) > 0 {
		return fmt.Errorf("all %d lookups failed", len(result.Failed))
	}
	return nil
}

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse [query]",
	Short: "Start an interactive search session",
	Long: `Start an interactive session. Type "help" at the prompt for the list of
commands; results can be paged, refined and opened in a detail view.`,
	PreRunE: initializeApp,
	RunE:    runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	s := session.New(omdbClient, logger,
		session.WithInput(cmd.InOrStdin()),
		session.WithOutput(cmd.OutOrStdout()),
		session.WithFormatter(formatter),
		session.WithFilterManager(filters),
	)

	err := s.Run(cmd.Context(), strings.Join(args, " "))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:     "test",
	Short:   "Test connection to OMDb",
	Long:    `Check that OMDb is reachable and the configured API key is accepted.`,
	PreRunE: initializeApp,
	RunE:    runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	fmt.Printf("Testing connection to OMDb at %s...\n", cfg.OMDb.URL)

	if err := omdbClient.TestConnection(cmd.Context()); err != nil {
		fmt.Printf("✗ %s\n", omdb.MessageOf(err, err.Error()))
		return fmt.Errorf("connection test failed: %w", err)
	}

	fmt.Println("✓ Connection successful!")
	fmt.Printf("- Timeout: %s\n", cfg.OMDb.Timeout)
	fmt.Printf("- Colored output: %s\n", boolToStatus(useColor()))

	presets := filters.Presets()
	if len(presets) > 0 {
		fmt.Printf("\nAvailable presets:\n")
		for _, name := range presets {
			expression, _ := filters.Preset(name)
			fmt.Printf("  • %s: %s\n", name, expression)
		}
	}

	return nil
}

func boolToStatus(b bool) string {
	if b {
		return "Enabled"
	}
	return "Disabled"
}
