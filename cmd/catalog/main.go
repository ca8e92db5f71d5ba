// Command catalog browses and edits the product catalog from a terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/celerix-dev/celerix-catalog/internal/admin"
	"github.com/celerix-dev/celerix-catalog/internal/config"
	"github.com/celerix-dev/celerix-catalog/internal/logging"
	"github.com/celerix-dev/celerix-catalog/pkg/schema"
	"github.com/celerix-dev/celerix-catalog/pkg/sdk"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	flagConfigDir string

	cfg      *config.Config
	log      *zap.Logger
	closeLog func() error
	backend  sdk.Backend
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "catalog",
		Short: "Browse and edit the product catalog",
		Long: `catalog lists, filters, sorts and edits the products, categories,
suppliers and customers of the catalog.

With --api-url (or CATALOG_API_URL) it talks to a catalog REST API.
Without it the catalog is kept in --data-dir.`,
		Version:            version,
		SilenceUsage:       true,
		PersistentPreRunE:  setup,
		PersistentPostRunE: teardown,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagConfigDir, "config-dir", ".", "directory holding config.yaml")
	pf.String("api-url", "", "catalog REST API base URL (empty uses the local data dir)")
	pf.String("data-dir", "", "local data directory")
	pf.Int("page-size", 0, "rows per page")
	pf.String("log-file", "", "rotated log file")
	pf.String("env", "", "production or development")

	root.AddCommand(
		newBrowseCmd(),
		newListCmd(),
		newCreateCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newMirrorCmd(),
		newVersionCmd(),
	)
	return root
}

func setup(cmd *cobra.Command, args []string) error {
	backend, closeLog = nil, nil
	if cmd.Name() == "version" {
		return nil
	}

	var err error
	cfg, err = config.Load(flagConfigDir, cmd.Flags())
	if err != nil {
		return err
	}

	log, closeLog = logging.New(logging.Options{Development: cfg.Development(), File: cfg.LogFile})

	// mirror opens its own stores
	if cmd.Name() == "mirror" {
		return nil
	}
	backend, err = sdk.New(cfg.APIURL, cfg.DataDir, log)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	var err error
	if backend != nil {
		err = backend.Close()
	}
	if closeLog != nil {
		closeLog()
	}
	return err
}

// openPage opens and mounts the list page for name.
func openPage(cmd *cobra.Command, name string) (*admin.Page, error) {
	page, err := admin.Open(name, backend, cfg.PageSize, log)
	if err != nil {
		return nil, err
	}
	if err := page.Mount(cmd.Context()); err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return page, nil
}

func entityArg(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing entity (valid: %v)", schema.Names())
	}
	if _, ok := schema.Lookup(args[0]); !ok {
		return fmt.Errorf("%w: %q (valid: %v)", admin.ErrUnknownEntity, args[0], schema.Names())
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the catalog version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "catalog", version)
		},
	}
}
