// Command gigctl is the operator tool for the gigcrew job service.
package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/localnerve/gigcrew/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "gigctl",
	Short:         "Operate a gigcrew database",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file loaded, using the environment")
		}
		level, _ := cmd.Flags().GetString("log-level")
		_, err := logging.Init(level, "console")
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(migrateCmd, exportPlugUpCmd, tokenCmd, schemaCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalln(err.Error())
	}
}
