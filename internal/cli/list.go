package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sdejongh/aisync/pkg/catalog"
)

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the file mappings",
		Long: `List every mapping of the catalog in the order tasks are planned.
The yaml output can be edited and passed back with --catalog.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return &UsageError{Err: fmt.Errorf("failed to load config: %w", err)}
			}
			if path, _ := cmd.Flags().GetString(flagCatalog); path != "" {
				cfg.Catalog = path
			}

			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}

			switch format {
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(cat); err != nil {
					return err
				}
				return enc.Close()
			case "human":
				return writeCatalogTable(cmd.OutOrStdout(), cat)
			default:
				return &UsageError{Err: fmt.Errorf("invalid output format: %s (valid: human, yaml)", format)}
			}
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "human", "output format: human, yaml")
	cmd.Flags().String(flagCatalog, "", "YAML mapping file replacing the built-in catalog")
	addSelectionFlags(cmd)
	return cmd
}

func writeCatalogTable(w io.Writer, cat *catalog.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tWINDOWS PATH\tKEEP\tDESCRIPTION")
	for _, m := range cat.Mappings() {
		windows := "-"
		if m.WindowsRelativePath != "" {
			windows = m.WindowsRelativePath
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.RelativePath, windows, m.KeepMode, m.Description)
	}
	return tw.Flush()
}
