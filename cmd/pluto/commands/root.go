package commands

import (
	"context"
	"fmt"
	"os"

	"plutoTodo/cmd/pluto/output"
	"plutoTodo/internal/app"
	"plutoTodo/internal/config"

	"github.com/spf13/cobra"
)

var (
	cfg       *config.Config
	formatter *output.Formatter
)

var rootCmd = &cobra.Command{
	Use:   "pluto",
	Short: "Персональный менеджер задач",
	Long: `pluto хранит иерархические задачи с категориями, тегами и приоритетами.

Examples:
  # Запустить HTTP сервер для интерфейса
  pluto serve

  # Накатить схему и категории по умолчанию
  pluto migrate

  # Список невыполненных задач в JSON
  pluto task list --status open --output json`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		format, _ := cmd.Flags().GetString("output")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		formatter = output.NewFormatter(f, cmd.OutOrStdout())
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Путь к config.yml (по умолчанию ./config.yml)")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "Формат вывода (text, json, yaml)")
}

// openApp поднимает хранилище и сервисы без HTTP сервера
func openApp(ctx context.Context) (*app.App, error) {
	a := app.New(cfg)
	if err := a.InitServices(ctx); err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("инициализация: %w", err)
	}
	return a, nil
}
