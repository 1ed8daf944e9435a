package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"sharpq/adapters/excel"
	"sharpq/adapters/memledger"
	"sharpq/app"
	"sharpq/domain/stats"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional for the CLI.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "sharpq-cli",
		Short: "sharpq CLI for computing sharpened FDR q-values",
	}

	rootCmd.AddCommand(
		newSharpenCmd(),
		newSweepCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSharpenCmd() *cobra.Command {
	var step float64
	var method string
	var file string
	var sheet string
	var column string
	var labelColumn string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sharpen [p-values...]",
		Short: "Compute sharpened q-values for one family of p-values",
		Long: `Compute BKY (2006) sharpened two-stage FDR q-values.

P-values come either inline as arguments or from a column of an Excel/CSV file.

Examples:
  sharpq-cli sharpen 0.02 0.01 0.03 0.08
  sharpq-cli sharpen --file results.xlsx --column p_value --label-column outcome
  sharpq-cli sharpen --file results.csv --column p --step 0.01 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pvals, labels, err := collectInputs(args, file, sheet, column, labelColumn)
			if err != nil {
				return err
			}
			return runFamilies(cmd.Context(), []stats.FamilyInput{{
				FamilyKey: "cli/sharpen",
				PValues:   pvals,
				Labels:    labels,
			}}, step, method, asJSON)
		},
	}

	cmd.Flags().Float64Var(&step, "step", stats.DefaultStep, "Grid resolution for candidate FDR levels")
	cmd.Flags().StringVar(&method, "method", string(stats.MethodBKY), "Correction method: BKY or BH")
	cmd.Flags().StringVar(&file, "file", "", "Excel (.xlsx) or CSV file with a p-value column")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to read from Excel files (default Sheet1)")
	cmd.Flags().StringVar(&column, "column", "p_value", "Header of the p-value column")
	cmd.Flags().StringVar(&labelColumn, "label-column", "", "Header of an optional label column")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")

	return cmd
}

func newSweepCmd() *cobra.Command {
	var step float64
	var method string
	var file string
	var sheet string
	var columns []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Correct several independent families from one file",
		Long: `Run a multi-family q-value sweep. Each named column is treated as an
independent FDR family and corrected on its own.

Example: sharpq-cli sweep --file results.xlsx --column pearson_p --column spearman_p`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" || len(columns) == 0 {
				return fmt.Errorf("--file and at least one --column are required")
			}

			table, err := excel.NewDataReader(file).WithSheet(sheet).ReadTable()
			if err != nil {
				return err
			}

			families := make([]stats.FamilyInput, 0, len(columns))
			for _, col := range columns {
				pvals, err := table.PValueColumn(col)
				if err != nil {
					return err
				}
				families = append(families, stats.FamilyInput{FamilyKey: col, PValues: pvals})
			}
			return runFamilies(cmd.Context(), families, step, method, asJSON)
		},
	}

	cmd.Flags().Float64Var(&step, "step", stats.DefaultStep, "Grid resolution for candidate FDR levels")
	cmd.Flags().StringVar(&method, "method", string(stats.MethodBKY), "Correction method: BKY or BH")
	cmd.Flags().StringVar(&file, "file", "", "Excel (.xlsx) or CSV file with p-value columns")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to read from Excel files (default Sheet1)")
	cmd.Flags().StringArrayVar(&columns, "column", nil, "Header of a p-value column (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")

	return cmd
}

// collectInputs resolves the p-value source: inline arguments or a file column
func collectInputs(args []string, file, sheet, column, labelColumn string) ([]float64, []string, error) {
	if len(args) > 0 && file != "" {
		return nil, nil, fmt.Errorf("pass p-values inline or via --file, not both")
	}

	if len(args) > 0 {
		pvals := make([]float64, len(args))
		for i, arg := range args {
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid p-value %q: %w", arg, err)
			}
			pvals[i] = v
		}
		return pvals, nil, nil
	}

	if file == "" {
		return nil, nil, fmt.Errorf("no p-values given: pass them inline or use --file")
	}

	table, err := excel.NewDataReader(file).WithSheet(sheet).ReadTable()
	if err != nil {
		return nil, nil, err
	}
	pvals, err := table.PValueColumn(column)
	if err != nil {
		return nil, nil, err
	}

	var labels []string
	if labelColumn != "" {
		labels, err = table.LabelColumn(labelColumn, column)
		if err != nil {
			return nil, nil, err
		}
	}
	return pvals, labels, nil
}

// runFamilies executes the sweep and prints the result
func runFamilies(ctx context.Context, families []stats.FamilyInput, step float64, method string, asJSON bool) error {
	service := app.NewSharpenService(memledger.New())
	result, err := service.RunSweep(ctx, app.SweepRequest{
		Families: families,
		Step:     step,
		Method:   stats.FDRMethod(method),
	})
	if err != nil {
		return err
	}

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	// Result families keep the request order, so indexes line up.
	for fi, family := range result.Families {
		fmt.Printf("Family %s (%s, step=%g, %d tests)\n",
			family.FamilyKey, family.Method, family.Step, family.NumTests)
		fmt.Printf("%-24s %12s %12s\n", "LABEL", "P-VALUE", "Q-VALUE")
		for i, q := range family.QValues {
			label := fmt.Sprintf("#%d", i+1)
			if i < len(family.Labels) && family.Labels[i] != "" {
				label = family.Labels[i]
			}
			fmt.Printf("%-24s %12.6g %12.6g\n", label, families[fi].PValues[i], q)
		}
		fmt.Printf("Discoveries at q<=0.05: %d, q<=0.10: %d\n\n",
			family.DiscoveriesAt(0.05), family.DiscoveriesAt(0.10))
	}
	fmt.Printf("Sweep %s fingerprint %s (%d ms)\n",
		result.SweepID, result.Manifest.Fingerprint, result.RuntimeMs)
	return nil
}
