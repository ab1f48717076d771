package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rebeliceyang/lazyfacet/internal/models"
	"github.com/rebeliceyang/lazyfacet/internal/presets"
)

var (
	presetDescription string
	presetWhere       []string
	presetAny         bool
	presetSort        []string
	presetGroup       string
	presetSearch      string
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Manage saved filter presets",
	Long: `Saved presets bundle filters, sort and grouping under a name.

Available subcommands:
  list   - List presets, optionally matching a search term
  show   - Print a preset as YAML
  save   - Save a preset built from flags
  delete - Delete a user preset
  export - Write user presets to a YAML file
  import - Read presets from a YAML file`,
}

var presetsListCmd = &cobra.Command{
	Use:   "list [search]",
	Short: "List presets",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		var term string
		if len(args) == 1 {
			term = args[0]
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCONDITIONS\tSYSTEM\tUPDATED")
		for _, p := range store.Search(term) {
			fmt.Fprintf(w, "%s\t%s\t%d\t%t\t%s\n",
				p.ID, p.Name, len(p.Filters.Conditions), p.IsSystem, p.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var presetsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a preset as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		p, ok := store.Get(args[0])
		if !ok {
			return fmt.Errorf("preset %q not found", args[0])
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return err
		}
		return enc.Close()
	},
}

var presetsSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save a preset built from --where, --sort and --group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseWhere(presetWhere, presetAny, nil)
		if err != nil {
			return err
		}
		sortCfg, err := parseSort(presetSort)
		if err != nil {
			return err
		}
		groupCfg, err := parseGroup(presetGroup)
		if err != nil {
			return err
		}

		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		p := presets.NewPreset(args[0], filters, sortCfg, groupCfg)
		p.Description = presetDescription
		saved, err := store.Save(p)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved preset %s (%s)\n", saved.Name, saved.ID)
		return nil
	},
}

var presetsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		p, ok := store.Get(args[0])
		if !ok {
			return fmt.Errorf("preset %q not found", args[0])
		}
		deleted, err := store.Delete(p.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("preset %q is a system preset and cannot be deleted", p.Name)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted preset %s\n", p.Name)
		return nil
	},
}

var presetsExportCmd = &cobra.Command{
	Use:   "export <file.yaml>",
	Short: "Write user presets to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		var user []models.FilterPreset
		for _, p := range store.List() {
			if !p.IsSystem {
				user = append(user, p)
			}
		}

		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", args[0], err)
		}
		defer func() { _ = f.Close() }()

		if err := presets.WriteYAML(f, user); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d presets to %s\n", len(user), args[0])
		return f.Close()
	},
}

var presetsImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Read presets from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		list, err := presets.ReadYAML(f)
		if err != nil {
			return err
		}

		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		n, err := store.Import(list)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d presets from %s\n", n, args[0])
		return nil
	},
}

func init() {
	f := presetsSaveCmd.Flags()
	f.StringVarP(&presetDescription, "description", "d", "", "Preset description")
	f.StringArrayVarP(&presetWhere, "where", "w", nil, "Filter condition field:operator[:value] (repeatable)")
	f.BoolVar(&presetAny, "any", false, "Match any condition instead of all")
	f.StringArrayVarP(&presetSort, "sort", "s", nil, "Sort key field[:asc|desc] (repeatable)")
	f.StringVarP(&presetGroup, "group", "g", "", "Group by field[:asc|desc]")

	presetsCmd.AddCommand(presetsListCmd)
	presetsCmd.AddCommand(presetsShowCmd)
	presetsCmd.AddCommand(presetsSaveCmd)
	presetsCmd.AddCommand(presetsDeleteCmd)
	presetsCmd.AddCommand(presetsExportCmd)
	presetsCmd.AddCommand(presetsImportCmd)
}
