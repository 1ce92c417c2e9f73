package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/smallbiznis/stockroom/internal/material"
	materialdomain "github.com/smallbiznis/stockroom/internal/material/domain"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import catalog items from a .csv or .xlsx file",
	Long: `Import catalog items from a spreadsheet. The first row must carry a code
column (Item#, Oracle#, ...) and a description column. Rows whose code
already exists are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		var svc materialdomain.Service
		stop, err := runApp(cmd.Context(), []fx.Option{material.Module}, &svc)
		if err != nil {
			return err
		}
		defer stop()

		res, err := svc.Import(cmd.Context(), materialdomain.ImportRequest{
			Filename: f.Name(),
			Content:  f,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %d, skipped %d\n", res.Added, res.Skipped)
		return nil
	},
}

var materialsQuery string

var materialsCmd = &cobra.Command{
	Use:   "materials",
	Short: "List active catalog items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var svc materialdomain.Service
		stop, err := runApp(cmd.Context(), []fx.Option{material.Module}, &svc)
		if err != nil {
			return err
		}
		defer stop()

		items, err := svc.List(cmd.Context(), materialdomain.ListMaterialsRequest{Query: materialsQuery})
		if err != nil {
			return err
		}
		return renderMaterials(cmd.OutOrStdout(), items)
	},
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func renderMaterials(w io.Writer, items []materialdomain.Material) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "no catalog items")
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "CODE", "DESCRIPTION").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, m := range items {
		t.Row(strconv.FormatInt(m.ID, 10), m.Code, m.Description)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func init() {
	materialsCmd.Flags().StringVarP(&materialsQuery, "query", "q", "", "filter by description or code")
}
