package main

import (
	"fmt"

	"github.com/localnerve/gigcrew/internal/config"
	"github.com/localnerve/gigcrew/internal/database"
	"github.com/spf13/cobra"
	gormlogger "gorm.io/gorm/logger"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the tables AutoMigrate creates, using an in-memory sqlite database",
	RunE: func(cmd *cobra.Command, args []string) error {
		driver, _ := cmd.Flags().GetString("driver")

		dialector, err := database.Dialector(&config.Config{DBType: driver, DBDatabase: ":memory:"})
		if err != nil {
			return err
		}
		db, err := database.Open(dialector, gormlogger.Silent)
		if err != nil {
			return err
		}
		defer database.Close(db)

		// One connection, or each query would see its own empty database.
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		sqlDB.SetMaxOpenConns(1)

		// Auto-migrate to see what GORM creates
		if err := database.AutoMigrate(db); err != nil {
			return err
		}

		var tables []string
		if err := db.Raw("SELECT name FROM sqlite_master WHERE type='table' ORDER BY name").Scan(&tables).Error; err != nil {
			return err
		}

		for _, table := range tables {
			var ddl string
			if err := db.Raw("SELECT sql FROM sqlite_master WHERE name = ?", table).Scan(&ddl).Error; err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n=== Table: %s ===\n%s\n", table, ddl)
		}
		return nil
	},
}

func init() {
	schemaCmd.Flags().String("driver", "sqlite", "sqlite (pure Go) or sqlite3 (cgo)")
}
