package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pageza/fittrack/backend/internal/mcp"
	"github.com/pageza/fittrack/backend/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server on stdin/stdout.

AVAILABLE TOOLS:

  diet_day       Calories and macros for one day
  diet_week      Calories and macros for a Monday-start week
  workout_day    Merged workouts for one day
  workout_week   Calories burned and muscle intensity for a week

Every tool takes a user_id and an optional date (YYYY-MM-DD).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)
		// stdout carries the protocol
		db = db.Session(&gorm.Session{Logger: gormlogger.Discard})

		diet := service.NewDietService(db, nil, nil, nil, nil)
		workouts := service.NewWorkoutService(db, nil, nil, nil)
		server := mcp.NewServer(diet, workouts)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		logger.Debug("serving MCP over stdio")
		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
