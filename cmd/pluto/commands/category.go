package commands

import (
	"plutoTodo/cmd/pluto/output"

	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Работа с категориями",
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список категорий по имени",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Shutdown()

		categories, err := a.CategoryService().ListCategories(cmd.Context())
		if err != nil {
			return err
		}
		if formatter.Format() == output.FormatText {
			return formatter.Print(output.CategoryList(categories))
		}
		return formatter.Print(categories)
	},
}

func init() {
	categoryCmd.AddCommand(categoryListCmd)
	rootCmd.AddCommand(categoryCmd)
}
