package commands

import (
	"plutoTodo/internal/app"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Накатить схему и категории по умолчанию",
	Long: `Применяет миграции выбранного драйвера (sqlite или postgres) и заполняет
категории по умолчанию. Повторный запуск ничего не меняет.

Examples:
  pluto migrate
  pluto migrate --down`,
	RunE: func(cmd *cobra.Command, args []string) error {
		down, _ := cmd.Flags().GetBool("down")
		if err := app.Migrate(cmd.Context(), cfg, down); err != nil {
			return err
		}
		if down {
			return formatter.Print("Схема удалена")
		}
		return formatter.Print("Схема актуальна")
	},
}

func init() {
	migrateCmd.Flags().Bool("down", false, "Откатить все миграции")
	rootCmd.AddCommand(migrateCmd)
}
