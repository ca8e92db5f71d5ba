package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/celerix-dev/celerix-catalog/internal/console"
	"github.com/celerix-dev/celerix-catalog/internal/engine"
	"github.com/celerix-dev/celerix-catalog/pkg/listview"
	"github.com/celerix-dev/celerix-catalog/pkg/schema"
	"github.com/celerix-dev/celerix-catalog/pkg/sdk"
)

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <entity>",
		Short: "Open an interactive list page",
		Long: `Browse opens the list page of an entity and reads commands from stdin.
Type HELP at the prompt for the command list.`,
		Args: cobra.MatchAll(cobra.ExactArgs(1), entityArg),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := openPage(cmd, args[0])
			if err != nil {
				return err
			}
			s := &console.Session{Page: page, Prompt: "> "}
			return s.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func newListCmd() *cobra.Command {
	var (
		filters []string
		sortBy  string
		desc    bool
		pageNum int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "Print one page of an entity",
		Example: `  catalog list products --filter ProductName=chai
  catalog list suppliers --filter Country=uk --sort City --desc
  catalog list customers --page 2 --json`,
		Args: cobra.MatchAll(cobra.ExactArgs(1), entityArg),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := openPage(cmd, args[0])
			if err != nil {
				return err
			}
			view := page.View

			for _, f := range filters {
				field, query, ok := strings.Cut(f, "=")
				if !ok {
					return fmt.Errorf("invalid filter %q (expected field=query)", f)
				}
				if err := view.SetFilter(field, query); err != nil {
					return err
				}
			}
			if sortBy != "" {
				if err := view.SetSort(sortBy); err != nil {
					return err
				}
				if desc {
					if err := view.SetSort(sortBy); err != nil {
						return err
					}
				}
			}
			for i := 1; i < pageNum; i++ {
				view.NextPage()
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view.VisibleRows())
			}
			console.Render(cmd.OutOrStdout(), page)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&filters, "filter", nil, "field=query filter, repeatable")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort column")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().IntVar(&pageNum, "page", 1, "page number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the page as JSON")
	return cmd
}

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "create <entity> field=value...",
		Short:   "Create a record",
		Example: `  catalog create categories CategoryName=Tea Description="Leaves and blends"`,
		Args:    cobra.MatchAll(cobra.MinimumNArgs(2), entityArg),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			page, err := openPage(cmd, args[0])
			if err != nil {
				return err
			}

			page.View.BeginEdit(listview.NewRow)
			for field, value := range fields {
				if err := page.View.SetField(listview.NewRow, field, value); err != nil {
					return err
				}
			}
			created, err := page.Create(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, created)
		},
	}
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "update <entity> <id> field=value...",
		Short:   "Change fields of a record",
		Example: `  catalog update products 4 Price=21.35`,
		Args:    cobra.MatchAll(cobra.MinimumNArgs(3), entityArg),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseAssignments(args[2:])
			if err != nil {
				return err
			}
			page, err := openPage(cmd, args[0])
			if err != nil {
				return err
			}

			id := listview.Key(args[1])
			page.View.BeginEdit(id)
			for field, value := range fields {
				if err := page.View.SetField(id, field, value); err != nil {
					return err
				}
			}
			if err := page.Save(cmd.Context(), id); err != nil {
				return err
			}
			rec, _ := page.View.Lookup(id)
			return printJSON(cmd, rec)
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entity> <id>",
		Short: "Delete a record",
		Args:  cobra.MatchAll(cobra.ExactArgs(2), entityArg),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := openPage(cmd, args[0])
			if err != nil {
				return err
			}
			if err := page.Delete(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
}

func newMirrorCmd() *cobra.Command {
	var collections []string

	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Copy the remote catalog into the local data dir",
		Long: `Mirror fetches whole collections from --api-url and replaces the
matching collections in --data-dir. Browsing without --api-url then
works on the copy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.APIURL == "" {
				return fmt.Errorf("mirror needs --api-url or CATALOG_API_URL")
			}
			src, err := sdk.Connect(cfg.APIURL, sdk.WithLogger(log))
			if err != nil {
				return err
			}
			defer src.Close()

			persister, err := engine.NewPersistence(cfg.DataDir, log)
			if err != nil {
				return err
			}
			dst := engine.NewMemStore(nil, persister)
			defer dst.Wait()

			if err := engine.Migrate(cmd.Context(), src, dst, collections); err != nil {
				return err
			}
			for _, name := range collections {
				records, err := dst.List(name)
				if err != nil {
					return fmt.Errorf("list mirrored %s: %w", name, err)
				}
				log.Info("collection mirrored", zap.String("collection", name), zap.Int("records", len(records)))
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %d records\n", name, len(records))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&collections, "collections", schema.Names(), "collections to copy")
	return cmd
}

// parseAssignments parses field=value arguments. Values are decoded as JSON
// when possible so numbers stay numbers, otherwise kept as text.
func parseAssignments(args []string) (listview.Record, error) {
	fields := make(listview.Record, len(args))
	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid assignment %q (expected field=value)", arg)
		}
		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			parsed = value
		}
		fields[field] = parsed
	}
	return fields, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
