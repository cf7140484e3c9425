package main

import (
	"fmt"
	"os"

	"github.com/localnerve/gigcrew/internal/config"
	"github.com/localnerve/gigcrew/internal/database"
	"github.com/localnerve/gigcrew/internal/services"
	"github.com/spf13/cobra"
)

var exportPlugUpCmd = &cobra.Command{
	Use:   "export-plugup",
	Short: "Render a job's plug-up sheet to a PDF file",
	Long:  "Render a job's plug-up sheet to a PDF file.\nThis is an operator tool: no caller permissions are checked and no audit event is written.",
	RunE: func(cmd *cobra.Command, args []string) error {
		jobID, _ := cmd.Flags().GetString("job")
		out, _ := cmd.Flags().GetString("out")

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		db, err := database.Connect(cfg)
		if err != nil {
			return err
		}
		defer database.Close(db)

		job, pdf, rows, err := services.RenderPlugUpPDF(cmd.Context(), db, jobID)
		if err != nil {
			return err
		}

		if out == "" {
			out = services.PlugUpFileName(job.Reference)
		}
		if err := os.WriteFile(out, pdf, 0o644); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d rows, %d bytes)\n", out, rows, len(pdf))
		return nil
	},
}

func init() {
	exportPlugUpCmd.Flags().String("job", "", "job id")
	exportPlugUpCmd.Flags().String("out", "", "output file (default plugup-<reference>.pdf)")
	_ = exportPlugUpCmd.MarkFlagRequired("job")
}
