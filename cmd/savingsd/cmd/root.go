package cmd

import (
	"cosmossdk.io/log"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/openalpha/savings-ledger/app"
	"github.com/openalpha/savings-ledger/metrics"
	savingscli "github.com/openalpha/savings-ledger/x/savings/client/cli"
)

const (
	flagHome      = "home"
	flagLogLevel  = "log_level"
	flagDBBackend = "db_backend"

	Version = "v0.1.0"
)

// daemon holds the configuration resolved by the root command
type daemon struct {
	cfg    app.Config
	logger log.Logger
}

// NewRootCmd creates a new root command for savingsd
func NewRootCmd() *cobra.Command {
	return newRootCmd(&daemon{})
}

func newRootCmd(d *daemon) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   app.Name,
		Short: "savingsd - locked savings ledger",
		Long: `savingsd keeps time-locked savings pools on a local ledger.
Pools are FLEXIBLE, LOCK (early exit pays a 3% fee) or STRICTLOCK.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Set the default command outputs
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
			return d.load(cmd)
		},
	}

	rootCmd.PersistentFlags().String(flagHome, app.DefaultNodeHome, "Directory for config and data")
	rootCmd.PersistentFlags().String(flagLogLevel, "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String(flagDBBackend, "", "Database backend (goleveldb, memdb)")

	initRootCmd(rootCmd, d)
	return rootCmd
}

func initRootCmd(rootCmd *cobra.Command, d *daemon) {
	rootCmd.AddCommand(
		InitCmd(d),
		genesisCommand(d),
		txCommand(d),
		queryCommand(d),
		ConfigCmd(d),
		MetricsCmd(d),
		VersionCmd(),
	)
}

// load resolves the configuration from flags, SAVINGSD_* env and savingsd.yaml
func (d *daemon) load(cmd *cobra.Command) error {
	home, _ := cmd.Flags().GetString(flagHome)
	v := app.NewViper(home)
	for _, name := range []string{flagLogLevel, flagDBBackend} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			v.Set(name, f.Value.String())
		}
	}

	cfg, err := app.LoadConfig(v)
	if err != nil {
		return err
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	d.cfg = cfg
	d.logger = log.NewLogger(cmd.ErrOrStderr(), log.LevelOption(level))
	return nil
}

// openApp opens the ledger described by the resolved configuration. Keeper
// flow counters go to the process collector when metrics are enabled; they
// are only scraped when the ledger is embedded in a long-lived process.
func (d *daemon) openApp() (*app.App, error) {
	var collector *metrics.Collector
	if d.cfg.Metrics.Enabled {
		collector = metrics.GetCollector()
	}
	return d.openLedger(collector)
}

func (d *daemon) openLedger(collector *metrics.Collector) (*app.App, error) {
	db, err := app.OpenDB(d.cfg)
	if err != nil {
		return nil, err
	}
	ledger, err := app.NewApp(d.logger, db, d.cfg, collector)
	if err != nil {
		db.Close()
		return nil, err
	}
	return ledger, nil
}

// savingsClient adapts openApp to the savings commands
func (d *daemon) savingsClient(*cobra.Command) (*savingscli.Client, error) {
	ledger, err := d.openApp()
	if err != nil {
		return nil, err
	}
	return &savingscli.Client{
		Ledger: ledger,
		Keeper: ledger.SavingsKeeper,
		Codec:  ledger.LegacyAmino(),
		Close:  ledger.Close,
	}, nil
}

func txCommand(d *daemon) *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "tx",
		Short:                      "Transactions subcommands",
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		savingscli.GetTxCmd(d.savingsClient),
		custodyTxCmd(d),
	)
	return cmd
}

func queryCommand(d *daemon) *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "query",
		Aliases:                    []string{"q"},
		Short:                      "Querying subcommands",
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		savingscli.GetQueryCmd(d.savingsClient),
		custodyQueryCmd(d),
	)
	return cmd
}

// ConfigCmd returns a command to print the resolved configuration
func ConfigCmd(d *daemon) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print or write the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			write, _ := cmd.Flags().GetBool("write")
			if write {
				path, err := app.WriteConfig(d.cfg)
				if err != nil {
					return err
				}
				d.logger.Info("Configuration written", "path", path)
			}
			cmd.Print(d.cfg.String())
			return nil
		},
	}

	cmd.Flags().Bool("write", false, "Write the configuration to savingsd.yaml in the home directory")
	return cmd
}

// VersionCmd returns a command to print the version
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("savingsd " + Version)
		},
	}
}
