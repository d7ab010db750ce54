package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/whatif-engine/internal/params"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// #region param-flags

// paramFlags builds SimulatorParameters from an optional YAML file with
// individual flags layered on top.
type paramFlags struct {
	file        string
	character   string
	traits      []string
	place       string
	era         string
	mood        string
	event       string
	genre       string
	tone        string
	mode        string
	density     string
	perspective string
	audience    string
	themes      []string
	banned      []string
}

func (f *paramFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.file, "params", "", "YAML file with simulator parameters")
	fs.StringVar(&f.character, "character", "", "protagonist name")
	fs.StringSliceVar(&f.traits, "traits", nil, "protagonist traits (up to 3)")
	fs.StringVar(&f.place, "place", "", "setting place")
	fs.StringVar(&f.era, "era", "", "setting era")
	fs.StringVar(&f.mood, "mood", "", "setting mood")
	fs.StringVar(&f.event, "event", "", "inciting event")
	fs.StringVar(&f.genre, "genre", "", "genre")
	fs.StringVar(&f.tone, "tone", "", "tone")
	fs.StringVar(&f.mode, "mode", "", "generation mode (logical, creative, balanced)")
	fs.StringVar(&f.density, "density", "", "branch density (low, medium, high)")
	fs.StringVar(&f.perspective, "perspective", "", "narrative perspective")
	fs.StringVar(&f.audience, "audience", "", "audience age")
	fs.StringSliceVar(&f.themes, "themes", nil, "theme keywords")
	fs.StringSliceVar(&f.banned, "banned", nil, "banned content terms")
}

func (f *paramFlags) build() (params.SimulatorParameters, error) {
	var p params.SimulatorParameters
	if f.file != "" {
		data, err := os.ReadFile(f.file)
		if err != nil {
			return p, fmt.Errorf("read params: %w", err)
		}
		if err := yaml.Unmarshal(data, &p); err != nil {
			return p, fmt.Errorf("parse params %s: %w", f.file, err)
		}
	}

	if f.character != "" || len(f.traits) > 0 {
		if p.Character == nil {
			p.Character = &params.Character{}
		}
		setIf(&p.Character.Name, f.character)
		if len(f.traits) > 0 {
			p.Character.Traits = f.traits
		}
	}
	if f.place != "" || f.era != "" || f.mood != "" {
		if p.Setting == nil {
			p.Setting = &params.Setting{}
		}
		setIf(&p.Setting.Place, f.place)
		setIf(&p.Setting.Era, f.era)
		setIf(&p.Setting.Mood, f.mood)
	}
	if len(f.banned) > 0 {
		if p.Constraints == nil {
			p.Constraints = &params.Constraints{}
		}
		p.Constraints.BannedContent = f.banned
	}
	setIf(&p.Event, f.event)
	setIf(&p.Genre, f.genre)
	setIf(&p.Tone, f.tone)
	setIf(&p.Perspective, f.perspective)
	setIf(&p.AudienceAge, f.audience)
	if f.mode != "" {
		p.Mode = params.Mode(f.mode)
	}
	if f.density != "" {
		p.BranchDensity = params.Density(f.density)
	}
	if len(f.themes) > 0 {
		p.ThemeKeywords = f.themes
	}
	return p, nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// #endregion param-flags

// #region prompts

func promptsCmd(a *app) *cobra.Command {
	var (
		pf    paramFlags
		count int
	)
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Generate ranked \"what if\" prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := pf.build()
			if err != nil {
				return err
			}
			res, err := a.eng.GeneratePrompts(cmd.Context(), p, count)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	pf.register(cmd)
	cmd.Flags().IntVar(&count, "count", 0, "number of prompts (0 = configured maximum)")
	return cmd
}

// #endregion prompts

// #region branches

func branchesCmd(a *app) *cobra.Command {
	var (
		pf          paramFlags
		content     string
		contentFile string
	)
	cmd := &cobra.Command{
		Use:   "branches",
		Short: "Suggest branches for an existing story node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if contentFile != "" {
				data, err := os.ReadFile(contentFile)
				if err != nil {
					return fmt.Errorf("read content: %w", err)
				}
				content = string(data)
			}
			p, err := pf.build()
			if err != nil {
				return err
			}
			res, err := a.eng.GenerateBranches(cmd.Context(), strings.TrimSpace(content), p)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVar(&content, "content", "", "story node text")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "file holding the story node text")
	return cmd
}

// #endregion branches

// #region health

func healthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Print generator and backend health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), a.eng.Health())
		},
	}
}

// #endregion health
