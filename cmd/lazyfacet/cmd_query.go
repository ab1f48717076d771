package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rebeliceyang/lazyfacet/internal/export"
	"github.com/rebeliceyang/lazyfacet/internal/history"
	"github.com/rebeliceyang/lazyfacet/internal/models"
	"github.com/rebeliceyang/lazyfacet/internal/query"
	"github.com/rebeliceyang/lazyfacet/internal/source"
)

var (
	queryWhere        []string
	queryAny          bool
	querySort         []string
	queryGroup        string
	querySearch       string
	querySearchFields []string
	queryExact        bool
	queryCaseSens     bool
	queryPreset       string
	queryFormat       string
	queryOutput       string
	queryColumns      []string
	queryReplay       int64
)

// queryCmd runs one query and prints or exports the result
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Filter, search, sort and group records",
	Long: `Runs the filter, search, sort and group pipeline over the loaded records
and writes the result to stdout or to --output.

Filters use field:operator[:value], for example:
  lazyfacet query -r 'data/*.json' --where status:equals:active --where score:greaterThan:5
  lazyfacet query -r tasks.csv --where tags:in:ui,docs --any --sort score:desc --group status`,
	RunE: runQuery,
}

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the fields found in the loaded records",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadRecords(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, f := range source.DescribeFields(records) {
			line := fmt.Sprintf("%-30s %-12s %s", f.ID, f.Type, f.Label)
			if len(f.Options) > 0 {
				values := make([]string, len(f.Options))
				for i, o := range f.Options {
					values[i] = o.Value
				}
				line += "  [" + strings.Join(values, ", ") + "]"
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	f := queryCmd.Flags()
	f.StringArrayVarP(&queryWhere, "where", "w", nil, "Filter condition field:operator[:value] (repeatable)")
	f.BoolVar(&queryAny, "any", false, "Match records satisfying any condition instead of all")
	f.StringArrayVarP(&querySort, "sort", "s", nil, "Sort key field[:asc|desc] (repeatable, first wins)")
	f.StringVarP(&queryGroup, "group", "g", "", "Group by field[:asc|desc]")
	f.StringVarP(&querySearch, "search", "q", "", "Free-text search query")
	f.StringSliceVar(&querySearchFields, "search-field", nil, "Fields searched (default: general.search_fields)")
	f.BoolVar(&queryExact, "exact", false, "Search values must equal the query")
	f.BoolVar(&queryCaseSens, "case-sensitive", false, "Case-sensitive search")
	f.StringVarP(&queryPreset, "preset", "p", "", "Start from a saved preset")
	f.StringVarP(&queryFormat, "format", "f", string(export.FormatJSON), "Output format: json, csv or xlsx")
	f.StringVarP(&queryOutput, "output", "o", "", "Write to file, format taken from its extension")
	f.StringSliceVar(&queryColumns, "columns", nil, "Columns of csv and xlsx output (default: general.export_columns)")
	f.Int64Var(&queryReplay, "replay", 0, "Start from a query recorded in history")
}

func runQuery(cmd *cobra.Command, args []string) error {
	records, err := loadRecords(cmd.Context())
	if err != nil {
		return err
	}

	types := source.FieldTypes(source.DescribeFields(records))
	filters, err := parseWhere(queryWhere, queryAny, types)
	if err != nil {
		return err
	}
	sortCfg, err := parseSort(querySort)
	if err != nil {
		return err
	}
	groupCfg, err := parseGroup(queryGroup)
	if err != nil {
		return err
	}

	if queryReplay != 0 {
		entry, err := replayEntry(queryReplay)
		if err != nil {
			return err
		}
		filters.Conditions = append(append([]models.FilterCondition(nil), entry.Spec.Filters.Conditions...), filters.Conditions...)
		if !queryAny {
			filters.Logic = entry.Spec.Filters.Logic
		}
		if sortCfg == nil {
			sortCfg = entry.Spec.Sort
		}
		if groupCfg == nil {
			groupCfg = entry.Spec.Group
		}
		if querySearch == "" && entry.Spec.Search != nil {
			querySearch = entry.Spec.Search.Query
			if len(querySearchFields) == 0 {
				querySearchFields = entry.Spec.Search.Fields
			}
			queryExact = queryExact || entry.Spec.Search.ExactMatch
			queryCaseSens = queryCaseSens || entry.Spec.Search.CaseSensitive
		}
	}

	if queryPreset != "" {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		preset, ok := store.Get(queryPreset)
		if !ok {
			return fmt.Errorf("preset %q not found", queryPreset)
		}
		// flags refine the preset
		filters.Conditions = append(append([]models.FilterCondition(nil), preset.Filters.Conditions...), filters.Conditions...)
		if !queryAny {
			filters.Logic = preset.Filters.Logic
		}
		if sortCfg == nil {
			sortCfg = preset.Sort
		}
		if groupCfg == nil {
			groupCfg = preset.Group
		}
	}

	var search *models.SearchConfig
	if querySearch != "" {
		fields := querySearchFields
		if len(fields) == 0 {
			fields = cfg.General.SearchFields
		}
		if len(fields) == 0 {
			return fmt.Errorf("--search needs --search-field or general.search_fields")
		}
		search = &models.SearchConfig{
			Query:         querySearch,
			Fields:        fields,
			CaseSensitive: queryCaseSens,
			ExactMatch:    queryExact,
		}
	}

	start := time.Now()
	result := query.Run(newEngine(), records, filters, sortCfg, groupCfg, search)
	logger.Debug("query executed",
		zap.Int("total", result.TotalCount),
		zap.Int("matched", result.FilteredCount))

	recordHistory(history.Entry{
		Source:   recordsSource(),
		Spec:     history.Spec{Filters: filters, Sort: sortCfg, Group: groupCfg, Search: search},
		Duration: time.Since(start),
		Total:    result.TotalCount,
		Matched:  result.FilteredCount,
	})

	columns := queryColumns
	if len(columns) == 0 {
		columns = cfg.General.ExportColumns
	}

	if queryOutput != "" {
		if err := export.ToFile(queryOutput, result, columns); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported %d of %d records to %s\n", result.FilteredCount, result.TotalCount, queryOutput)
		return nil
	}
	return export.Write(cmd.OutOrStdout(), export.Format(queryFormat), result, columns)
}
