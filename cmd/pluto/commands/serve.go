package commands

import (
	"os"
	"os/signal"
	"syscall"

	"plutoTodo/internal/app"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP сервер команд",
	Long: `Поднимает хранилище и обслуживает POST /invoke/{command} и GET /health
до получения SIGINT или SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Server.Port = port
		}

		a := app.New(cfg)
		defer a.Shutdown()
		if err := a.Init(ctx); err != nil {
			return err
		}
		return a.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Порт сервера, перекрывает server.port")
	rootCmd.AddCommand(serveCmd)
}
