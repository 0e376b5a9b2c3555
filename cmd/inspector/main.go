package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kelsos/ssv-cluster-debugger/internal/calc"
	"github.com/kelsos/ssv-cluster-debugger/internal/client"
	"github.com/kelsos/ssv-cluster-debugger/internal/config"
	"github.com/kelsos/ssv-cluster-debugger/internal/contract"
	"github.com/kelsos/ssv-cluster-debugger/internal/logger"
	"github.com/kelsos/ssv-cluster-debugger/internal/models"
	"github.com/kelsos/ssv-cluster-debugger/internal/services"
	"github.com/kelsos/ssv-cluster-debugger/internal/storage"
	"github.com/kelsos/ssv-cluster-debugger/internal/subgraph"
	"github.com/kelsos/ssv-cluster-debugger/internal/tui"
	"github.com/kelsos/ssv-cluster-debugger/internal/utils"
)

type globalFlags struct {
	owner       string
	operators   string
	rpcURL      string
	subgraphURL string
	contract    string
	timeout     int
}

// applyTo overrides environment settings with the flags that were set
func (f globalFlags) applyTo(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("rpc-url") {
		cfg.RPCURL = f.rpcURL
	}
	if flags.Changed("subgraph-url") {
		cfg.SubgraphURL = f.subgraphURL
	}
	if flags.Changed("contract") {
		cfg.ViewsContract = f.contract
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = time.Duration(f.timeout) * time.Second
	}
}

// resolveQuery builds the cluster query from flags, falling back to the last
// stored query and then to the configured default owner
func resolveQuery(owner, operators string, cfg *config.Config) (models.ClusterQuery, error) {
	if owner == "" && operators == "" {
		last, ok, err := storage.GetLastQuery()
		if err != nil {
			logger.Warn("Could not read last query: %v", err)
		}
		if ok {
			logger.Info("Using last query %s", last.ID())
			return last, nil
		}
	}

	if owner == "" {
		owner = cfg.DefaultOwner
	}
	if owner == "" {
		return models.ClusterQuery{}, fmt.Errorf("an owner address is required (--owner or SSV_DEFAULT_OWNER)")
	}

	ids, err := models.ParseOperatorIDs(operators)
	if err != nil {
		return models.ClusterQuery{}, err
	}
	return models.NewClusterQuery(owner, ids), nil
}

func loadConfig(cmd *cobra.Command, flags globalFlags) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.LoadFromEnvironment()
	flags.applyTo(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newInspector dials the RPC node and wires the subgraph provider and the
// contract reader into the inspector service
func newInspector(ctx context.Context, cfg *config.Config) (*services.InspectorService, func(), error) {
	eth, err := contract.Dial(ctx, cfg.RPCURL)
	if err != nil {
		return nil, nil, err
	}

	reader, err := contract.NewReader(eth, cfg.ViewsContract)
	if err != nil {
		eth.Close()
		return nil, nil, err
	}

	provider := subgraph.NewProvider(client.NewAPIClient(cfg.SubgraphURL, cfg.RequestTimeout))
	return services.NewInspectorService(provider, reader), eth.Close, nil
}

func saveLastQuery(q models.ClusterQuery, _ *calc.Dashboard) {
	if err := storage.SaveLastQuery(q); err != nil {
		logger.Warn("Failed to save last query: %v", err)
	}
}

// inspectOnce runs one dashboard fetch bounded by the request timeout
func inspectOnce(cmd *cobra.Command, flags globalFlags) (*calc.Dashboard, models.ClusterQuery, error) {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return nil, models.ClusterQuery{}, err
	}

	q, err := resolveQuery(flags.owner, flags.operators, cfg)
	if err != nil {
		return nil, q, err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()

	svc, closeFn, err := newInspector(ctx, cfg)
	if err != nil {
		return nil, q, err
	}
	defer closeFn()

	d, err := svc.Inspect(ctx, q)
	if err != nil {
		return nil, q, err
	}
	saveLastQuery(q, d)
	return d, q, nil
}

func runDashboard(cmd *cobra.Command, flags globalFlags) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	logPath, err := logger.InitFileOnly(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to set up file logging: %w", err)
	}
	defer logger.Close()
	logger.Info("Logging to %s", logPath)

	q, err := resolveQuery(flags.owner, flags.operators, cfg)
	if err != nil {
		return err
	}

	svc, closeFn, err := newInspector(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	monitor := tui.NewDashboardMonitor(svc, q, cfg.RequestTimeout)
	monitor.OnLoaded(saveLastQuery)
	if err := monitor.Start(); err != nil {
		return err
	}
	return monitor.Run()
}

func main() {
	utils.LoadEnvironment()
	logger.Init()

	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "ssv-cluster-debugger",
		Short: "Inspect an SSV network cluster",
		Long: `ssv-cluster-debugger reads an SSV cluster from the subgraph and the SSV Network Views
contract and shows its burn rate, liquidation collateral, runway and what-if calculators.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, flags)
		},
	}

	// Add an inspect command
	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the cluster dashboard once",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, q, err := inspectOnce(cmd, flags)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderHeader(q))
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderDashboard(d, time.Now()))
			return nil
		},
	}

	// Add a simulate command
	var sim simulation
	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Print what-if results for the cluster",
		Long:  `Run the what-if calculators against the live cluster without touching it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sim.empty() {
				return fmt.Errorf("nothing to simulate, pass at least one of --delta, --runway-days, --eb, --target-block or --blocks-from-now")
			}
			d, q, err := inspectOnce(cmd, flags)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderHeader(q))
			fmt.Fprintln(cmd.OutOrStdout(), sim.render(d))
			return nil
		},
	}
	simulateCmd.Flags().StringVarP(&sim.delta, "delta", "", "", "Deposit (positive) or withdrawal (negative) amount, e.g. 1.5 or -0.25")
	simulateCmd.Flags().StringVarP(&sim.runwayDays, "runway-days", "", "", "Target runway in days")
	simulateCmd.Flags().StringVarP(&sim.effectiveBalance, "eb", "", "", "New effective balance in ETH, or validator count for SSV clusters")
	simulateCmd.Flags().StringVarP(&sim.targetBlock, "target-block", "", "", "Block number the cluster should last until")
	simulateCmd.Flags().StringVarP(&sim.blocksFromNow, "blocks-from-now", "", "", "Number of blocks the cluster should last")

	// Add flags
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.owner, "owner", "o", "", "Cluster owner address")
	pf.StringVarP(&flags.operators, "operators", "", "", "Comma separated operator IDs, e.g. 5,6,7,523")
	pf.StringVarP(&flags.rpcURL, "rpc-url", "", config.DefaultRPCURL, "Execution-layer JSON-RPC URL")
	pf.StringVarP(&flags.subgraphURL, "subgraph-url", "", config.DefaultSubgraphURL, "SSV subgraph GraphQL URL")
	pf.StringVarP(&flags.contract, "contract", "", config.DefaultViewsContract, "SSV Network Views contract address")
	pf.IntVarP(&flags.timeout, "timeout", "t", 30, "Request timeout in seconds")

	// Add subcommands
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(simulateCmd)

	// Execute the root command
	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command failed: %v", err)
		os.Exit(1)
	}
}
