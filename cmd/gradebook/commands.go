package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/grading"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/repository"
)

type gradebookSource interface {
	Report(ctx context.Context, query, title string) (grading.Report, error)
	Students(ctx context.Context, query string) ([]models.Student, error)
	Table(ctx context.Context, query string) (grading.Evaluation, bool, error)
}

type reportRenderer interface {
	RenderGrades(report grading.Report, format models.ExportFormat) ([]byte, error)
	RenderStudents(students []models.Student, title string, format models.ExportFormat) ([]byte, error)
}

type reportOptions struct {
	Type   string
	Format string
	Search string
	Title  string
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the gradebook tables if they are missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := repository.Migrate(cmd.Context(), rt.db); err != nil {
				return err
			}
			rt.logger.Info("schema applied", zap.String("database", rt.cfg.Database.Name))
			return nil
		},
	}
	addConnectionFlags(cmd.Flags())
	return cmd
}

func reportCmd() *cobra.Command {
	var opts reportOptions
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a grades or students report",
		Example: `  gradebook report --format pdf -o grades.pdf
  gradebook report --type students --format csv --search bscs`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, _ := cmd.Flags().GetString("output")
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := saveReport(cmd.Context(), rt.gradebook, rt.exporter, opts, cmd.OutOrStdout(), output); err != nil {
				return err
			}
			rt.logger.Info("report written", zap.String("type", opts.Type), zap.String("format", opts.Format), zap.String("output", output))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.Type, "type", "t", "grades", "Report type (grades, students)")
	f.StringVarP(&opts.Format, "format", "f", "pdf", "Output format (pdf, csv, json)")
	f.StringVarP(&opts.Search, "search", "s", "", "Only include rows matching this text")
	f.StringVar(&opts.Title, "title", "", "Report title")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addConnectionFlags(f)
	return cmd
}

func tableCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the grades table with final grades and cohort statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			return writeTable(cmd.Context(), rt.gradebook, search, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only include rows matching this text")
	addConnectionFlags(cmd.Flags())
	return cmd
}

// saveReport renders the report fully before touching path, so a failed
// render leaves no partial file behind. An empty path or "-" writes to stdout.
func saveReport(ctx context.Context, src gradebookSource, renderer reportRenderer, opts reportOptions, stdout io.Writer, path string) error {
	var buf bytes.Buffer
	if err := writeReport(ctx, src, renderer, opts, &buf); err != nil {
		return err
	}
	if path == "" || path == "-" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// writeReport renders the requested report into w.
func writeReport(ctx context.Context, src gradebookSource, renderer reportRenderer, opts reportOptions, w io.Writer) error {
	format := strings.ToLower(opts.Format)
	var (
		payload []byte
		err     error
	)
	switch strings.ToLower(opts.Type) {
	case string(models.ExportTypeGrades):
		report, rerr := src.Report(ctx, opts.Search, opts.Title)
		if rerr != nil {
			return rerr
		}
		if format == "json" {
			return encodeJSON(w, report)
		}
		payload, err = renderer.RenderGrades(report, models.ExportFormat(format))
	case string(models.ExportTypeStudents):
		students, serr := src.Students(ctx, opts.Search)
		if serr != nil {
			return serr
		}
		if format == "json" {
			return encodeJSON(w, students)
		}
		title := opts.Title
		if title == "" {
			title = "Students Report"
		}
		payload, err = renderer.RenderStudents(students, title, models.ExportFormat(format))
	default:
		return fmt.Errorf("unknown report type %q (want grades or students)", opts.Type)
	}
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	_, err = w.Write(payload)
	return err
}

// writeTable prints the live table followed by the cohort summary.
func writeTable(ctx context.Context, src gradebookSource, search string, w io.Writer) error {
	evaluation, _, err := src.Table(ctx, search)
	if err != nil {
		return err
	}
	table := grading.Detail(evaluation.Rows)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		fmt.Fprintln(tw, strings.Join(row.Cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	stats := evaluation.Stats
	_, err = fmt.Fprintf(w, "\nTotal: %d  Passed: %d  Failed: %d  Average: %s  Pass rate: %s%%\n",
		stats.TotalCount, stats.PassedCount, stats.FailedCount, stats.AverageScore, stats.PassRate)
	return err
}

func encodeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
