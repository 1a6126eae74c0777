package commands

import (
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/plateful/plateful/internal/models"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "analyze <image-file>",
		Short: "Estimate calories for a food photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, store, err := newClient()
			if err != nil {
				return err
			}
			if err := requireSession(store); err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			analysis, err := c.AnalyzeImage(cmd.Context(), base64.StdEncoding.EncodeToString(data))
			if err != nil {
				return err
			}

			fmt.Printf("%s: %.0f kcal\n", analysis.Name, analysis.Calories)
			for _, ing := range analysis.Ingredients {
				fmt.Printf("  %-20s %6.0f kcal  %3.0f%%\n", ing.Name, ing.Calories, ing.Percentage)
			}

			if save {
				entry := &models.FoodEntry{
					Name:        analysis.Name,
					Calories:    analysis.Calories,
					Ingredients: analysis.Ingredients,
				}
				saved, err := c.SaveEntry(cmd.Context(), entry)
				if err != nil {
					return err
				}
				fmt.Printf("Saved entry %s\n", saved.ID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Save the analysis to your log")
	return cmd
}

// NewLogCmd creates the log command for manual entries.
func NewLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log <name> <calories>",
		Short: "Log a meal without a photo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var calories float64
			if _, err := fmt.Sscanf(args[1], "%f", &calories); err != nil || calories < 0 {
				return fmt.Errorf("calories must be a non-negative number, got %q", args[1])
			}

			c, store, err := newClient()
			if err != nil {
				return err
			}
			if err := requireSession(store); err != nil {
				return err
			}

			saved, err := c.SaveEntry(cmd.Context(), &models.FoodEntry{
				Name:     args[0],
				Calories: calories,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Saved entry %s\n", saved.ID)
			return nil
		},
	}
}

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List logged meals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, store, err := newClient()
			if err != nil {
				return err
			}
			if err := requireSession(store); err != nil {
				return err
			}

			var entries []*models.FoodEntry
			if date != "" {
				if _, err := time.Parse("2006-01-02", date); err != nil {
					return fmt.Errorf("date must be YYYY-MM-DD, got %q", date)
				}
				entries, err = c.EntriesByDate(cmd.Context(), date)
			} else {
				entries, err = c.ListEntries(cmd.Context())
			}
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No entries")
				return nil
			}

			var total float64
			for _, entry := range entries {
				fmt.Printf("%s  %-30s %6.0f kcal\n", entry.CreatedAt.Local().Format("2006-01-02 15:04"), entry.Name, entry.Calories)
				total += entry.Calories
			}
			fmt.Printf("%39s %6.0f kcal\n", "total:", total)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Limit to one day (YYYY-MM-DD)")
	return cmd
}
