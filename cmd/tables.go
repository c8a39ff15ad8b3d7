package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/taxcalc/internal/cli"
	"github.com/theirongolddev/taxcalc/internal/store"
	"github.com/theirongolddev/taxcalc/internal/taxtable"
)

var (
	flagExportFormat string
	flagExportOut    string
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Manage the tax table library",
	Long: `Tax tables are versioned per year. Built-in years ship with taxcalc;
imported years live in a SQLite library and override the built-ins.`,
}

var tablesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in and imported years",
	Args:  cobra.NoArgs,
	RunE:  runTablesList,
}

var tablesImportCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Validate table files and store their years in the library",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTablesImport,
}

var tablesExportCmd = &cobra.Command{
	Use:   "export <year>...",
	Short: "Write years as a table file, e.g. as a template for a new year",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTablesExport,
}

var tablesValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check table files without importing them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTablesValidate,
}

var tablesRemoveCmd = &cobra.Command{
	Use:   "remove <year>...",
	Short: "Delete imported years from the library",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTablesRemove,
}

func init() {
	tablesExportCmd.Flags().StringVar(&flagExportFormat, "format", "toml", "Output format: toml, yaml or json")
	tablesExportCmd.Flags().StringVarP(&flagExportOut, "output", "o", "", "Write to a file instead of stdout (format taken from extension)")

	tablesCmd.AddCommand(tablesListCmd, tablesImportCmd, tablesExportCmd, tablesValidateCmd, tablesRemoveCmd)
	rootCmd.AddCommand(tablesCmd)
}

type tableRow struct {
	Year       int        `json:"year"`
	Source     string     `json:"source"`
	ImportedAt *time.Time `json:"imported_at,omitempty"`
}

func runTablesList(_ *cobra.Command, _ []string) error {
	rows := map[int]tableRow{}
	imported := 0
	for _, y := range taxtable.DefaultYears {
		rows[y.Year] = tableRow{Year: y.Year, Source: "built-in"}
	}

	if _, err := os.Stat(libraryPath()); err == nil {
		lib, err := store.Open(libraryPath())
		if err != nil {
			return err
		}
		defer lib.Close()

		infos, err := lib.ListYears()
		if err != nil {
			return err
		}
		for _, info := range infos {
			at := info.ImportedAt
			rows[info.Year] = tableRow{Year: info.Year, Source: info.Source, ImportedAt: &at}
		}
		if imported, err = lib.YearCount(); err != nil {
			return err
		}
	}

	years := make([]int, 0, len(rows))
	for y := range rows {
		years = append(years, y)
	}
	sort.Ints(years)

	list := make([]tableRow, len(years))
	for i, y := range years {
		list[i] = rows[y]
	}
	if flagJSON {
		return printJSON(list)
	}

	tableRows := make([][]string, len(list))
	for i, r := range list {
		at := ""
		if r.ImportedAt != nil {
			at = r.ImportedAt.Local().Format("2006-01-02 15:04")
		}
		tableRows[i] = []string{strconv.Itoa(r.Year), r.Source, at}
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Tax years",
		Headers: []string{"Year", "Source", "Imported"},
		Rows:    tableRows,
	}))
	fmt.Println()
	note("Library: %s (%d imported)", libraryPath(), imported)
	return nil
}

func runTablesImport(_ *cobra.Command, args []string) error {
	lib, err := store.Open(libraryPath())
	if err != nil {
		return err
	}
	defer lib.Close()

	for _, path := range args {
		years, err := taxtable.LoadFile(path)
		if err != nil {
			return err
		}
		for _, y := range years {
			if err := lib.SaveYear(y, filepath.Base(path)); err != nil {
				return fmt.Errorf("importing %d from %s: %w", y.Year, path, err)
			}
			logger.Info("imported tax year", zap.Int("year", y.Year), zap.String("source", path))
			fmt.Printf("  Imported %d from %s\n", y.Year, path)
		}
	}
	return nil
}

func runTablesExport(_ *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}

	years := make([]taxtable.Year, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("year %q: %w", arg, err)
		}
		y, err := engine.Tables().Year(n)
		if err != nil {
			return err
		}
		years = append(years, y)
	}

	format := taxtable.Format(flagExportFormat)
	if flagExportOut != "" {
		format = taxtable.FormatFromPath(flagExportOut)
	}
	switch format {
	case taxtable.FormatTOML, taxtable.FormatYAML, taxtable.FormatJSON:
	default:
		return fmt.Errorf("unknown format %q: want toml, yaml or json", flagExportFormat)
	}

	var w io.Writer = os.Stdout
	if flagExportOut != "" {
		f, err := os.Create(flagExportOut) //nolint:gosec // path is supplied by the local user
		if err != nil {
			return fmt.Errorf("creating %s: %w", flagExportOut, err)
		}
		defer f.Close()
		w = f
	}
	return taxtable.Encode(w, format, years...)
}

func runTablesValidate(_ *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		years, err := taxtable.LoadFile(path)
		if err != nil {
			failed++
			fmt.Printf("  FAIL %s\n       %v\n", path, err)
			continue
		}
		for _, y := range years {
			fmt.Printf("  ok   %s: %d\n", path, y.Year)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files invalid", failed, len(args))
	}
	return nil
}

func runTablesRemove(_ *cobra.Command, args []string) error {
	lib, err := store.Open(libraryPath())
	if err != nil {
		return err
	}
	defer lib.Close()

	for _, arg := range args {
		year, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("year %q: %w", arg, err)
		}
		if err := lib.DeleteYear(year); err != nil {
			return err
		}
		fmt.Printf("  Removed %d from the library\n", year)
	}
	return nil
}
