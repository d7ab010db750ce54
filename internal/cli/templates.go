package cli

import (
	"fmt"
	"os"

	"github.com/danielpatrickdp/whatif-engine/internal/logging"
	"github.com/danielpatrickdp/whatif-engine/internal/templates"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// #region templates

func templatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect and maintain the template registry",
	}
	cmd.AddCommand(
		templatesListCmd(a),
		templatesStatsCmd(a),
		templatesRecommendCmd(a),
		templatesFeedbackCmd(a),
		templatesHistoryCmd(a),
		templatesPruneCmd(a),
		templatesAddCmd(a),
	)
	return cmd
}

// #endregion templates

// #region list

func templatesListCmd(a *app) *cobra.Command {
	var (
		f          templates.Filter
		activeOnly bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates, best first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if activeOnly {
				on := true
				f.Active = &on
			}
			return printJSON(cmd.OutOrStdout(), a.eng.Registry().Find(f))
		},
	}
	cmd.Flags().StringVar(&f.Category, "category", "", "only this category")
	cmd.Flags().StringVar(&f.Genre, "genre", "", "only templates allowed for this genre")
	cmd.Flags().StringVar(&f.Tone, "tone", "", "only templates allowed for this tone")
	cmd.Flags().BoolVar(&activeOnly, "active-only", false, "hide deactivated templates")
	return cmd
}

// #endregion list

// #region stats

func templatesStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), a.eng.Registry().Stats())
		},
	}
}

func templatesRecommendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "List maintenance recommendations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recs := a.eng.Registry().Recommendations()
			if recs == nil {
				recs = []templates.Recommendation{}
			}
			return printJSON(cmd.OutOrStdout(), recs)
		},
	}
}

// #endregion stats

// #region feedback

func templatesFeedbackCmd(a *app) *cobra.Command {
	var fb templates.Feedback
	cmd := &cobra.Command{
		Use:   "feedback <template-id>",
		Short: "Record a user reaction to a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fb.Rating < 0 || fb.Rating > 5 {
				return fmt.Errorf("rating must be 1-5 (or 0 for none), got %d", fb.Rating)
			}
			if err := a.eng.Feedback(args[0], fb); err != nil {
				return err
			}
			t, _ := a.eng.Registry().Get(args[0])
			return printJSON(cmd.OutOrStdout(), t)
		},
	}
	cmd.Flags().BoolVar(&fb.Accepted, "accepted", false, "the candidate was accepted")
	cmd.Flags().BoolVar(&fb.Edited, "edited", false, "the candidate was edited before use")
	cmd.Flags().IntVar(&fb.Rating, "rating", 0, "rating 1-5")
	return cmd
}

func templatesHistoryCmd(a *app) *cobra.Command {
	var last int
	cmd := &cobra.Command{
		Use:   "history <template-id>",
		Short: "Show logged feedback for a template, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := a.eng.FeedbackHistory(args[0], last)
			if err != nil {
				return err
			}
			if rows == nil {
				rows = []logging.FeedbackEntry{}
			}
			return printJSON(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().IntVar(&last, "last", 20, "number of rows (0 = all)")
	return cmd
}

// #endregion feedback

// #region prune

func templatesPruneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Deactivate low-performing templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := a.eng.Prune()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]int{"deactivated": n})
		},
	}
}

// #endregion prune

// #region add

func templatesAddCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a template from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read template: %w", err)
			}
			var nt templates.NewTemplate
			if err := yaml.Unmarshal(data, &nt); err != nil {
				return fmt.Errorf("parse template %s: %w", file, err)
			}
			t, err := a.eng.Registry().Add(nt)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), t)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML template definition")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// #endregion add
