package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chartprep-cli/internal/output"
	"github.com/KaramelBytes/chartprep-cli/internal/recipe"
	"github.com/KaramelBytes/chartprep-cli/internal/render"
	"github.com/KaramelBytes/chartprep-cli/internal/utils"
)

var (
	recipeInitSource   string
	recipeInitDesc     string
	recipeInitSteps    []string
	recipeInitFile     string
	recipeInitForce    bool
	recipeInitCategory string
	recipeInitValue    string
	recipeInitKind     string

	recipeRunChart string
)

var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Create, inspect and run saved reduction recipes",
	Long: `A recipe is a YAML file naming a source, how to read it, a list of steps
and an optional chart. Steps are one-line commands:

  ` + strings.Join(stepUsages(), "\n  "),
}

var recipeInitCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Write a new recipe skeleton",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		path := recipeInitFile
		if path == "" {
			dir, err := recipesDir()
			if err != nil {
				return err
			}
			path = filepath.Join(dir, name+".yaml")
		} else {
			p, err := utils.ExpandHome(path)
			if err != nil {
				return err
			}
			path = p
		}
		// Refuse to overwrite an existing recipe.
		if _, err := os.Stat(path); err == nil && !recipeInitForce {
			return fmt.Errorf("recipe already exists at %s (use --force to overwrite)", path)
		} else if err != nil && !utils.IsNotExist(err) {
			return fmt.Errorf("stat recipe: %w", err)
		}

		r := recipe.New(name, recipeInitSource)
		if r.Source == "" {
			r.Source = "data.csv"
		}
		r.Description = recipeInitDesc
		r.Steps = append(r.Steps, recipeInitSteps...)
		spec, err := input.spec()
		if err != nil {
			return err
		}
		r.Read = spec
		if recipeInitCategory != "" || recipeInitValue != "" {
			kind, err := render.ParseKind(recipeInitKind)
			if err != nil {
				return err
			}
			r.Chart = &render.Chart{Kind: kind, Category: recipeInitCategory, Value: recipeInitValue}
		}
		if err := r.Validate(); err != nil {
			return err
		}
		if err := r.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Recipe initialized: %s\n", path)
		return nil
	},
}

var recipeRunCmd = &cobra.Command{
	Use:   "run <name|file>",
	Short: "Load a recipe's source, apply its steps and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := loadRecipe(args[0])
		if err != nil {
			return err
		}
		rn := &recipe.Runner{
			Loader:     newLoader(),
			OtherLabel: otherLabel(""),
			Log:        logger,
		}
		if cfg != nil {
			rn.Width, rn.Height = cfg.ChartWidth, cfg.ChartHeight
		}
		rn.Loader.Stdin = cmd.InOrStdin()
		t, err := rn.Run(cmd.Context(), r)
		if err != nil {
			return err
		}
		if recipeRunChart != "" {
			if r.Chart == nil {
				return fmt.Errorf("recipe %s has no chart", r.Name)
			}
			return writeChart(cmd, recipeRunChart, func(w *bytes.Buffer) error { return rn.Chart(w, t, r) })
		}
		return printer(cmd).PrintTable(cmd.Context(), t)
	},
}

var recipeShowCmd = &cobra.Command{
	Use:   "show <name|file>",
	Short: "Print a recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := loadRecipe(args[0])
		if err != nil {
			return err
		}
		p := printer(cmd)
		if !output.IsStructured(p.Format()) && output.QueryFromContext(cmd.Context()) == "" {
			b, err := r.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		}
		return p.Print(cmd.Context(), r)
	},
}

var recipeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipes in the recipes directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := recipesDir()
		if err != nil {
			return err
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		var names []string
		for _, e := range entries {
			ext := filepath.Ext(e.Name())
			if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
				continue
			}
			r, err := recipe.Load(filepath.Join(dir, e.Name()))
			if err != nil {
				fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
				continue
			}
			line := "- " + strings.TrimSuffix(e.Name(), ext)
			if r.Description != "" {
				line += ": " + r.Description
			}
			names = append(names, line)
		}
		if len(names) == 0 {
			names = []string{"(no recipes)"}
		}
		return printer(cmd).Print(cmd.Context(), names)
	},
}

// recipesDir returns the configured recipes directory, creating it.
func recipesDir() (string, error) {
	dir := ""
	if cfg != nil {
		dir = cfg.RecipesDir
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".chartprep", "recipes")
	}
	dir, err := utils.ExpandHome(dir)
	if err != nil {
		return "", err
	}
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// loadRecipe accepts a file path or a recipe name in the recipes directory.
func loadRecipe(ref string) (*recipe.Recipe, error) {
	if ref == "" {
		return nil, errors.New("recipe name is required")
	}
	ref, err := utils.ExpandHome(ref)
	if err != nil {
		return nil, err
	}
	dir, err := recipesDir()
	if err != nil {
		return nil, err
	}
	path, err := utils.ResolveFile(ref, dir)
	if err != nil {
		return nil, fmt.Errorf("recipe not found: %w", err)
	}
	return recipe.Load(path)
}

func stepUsages() []string {
	var out []string
	for _, op := range recipe.Ops() {
		out = append(out, recipe.Usage(op))
	}
	return out
}

func init() {
	rootCmd.AddCommand(recipeCmd)
	recipeCmd.AddCommand(recipeInitCmd, recipeRunCmd, recipeShowCmd, recipeListCmd)

	addInputFlags(recipeInitCmd)
	recipeInitCmd.Flags().StringVar(&recipeInitSource, "source", "", "table source: file path or http(s) URL")
	recipeInitCmd.Flags().StringVarP(&recipeInitDesc, "desc", "d", "", "recipe description")
	recipeInitCmd.Flags().StringArrayVar(&recipeInitSteps, "step", nil, "reduction step, repeatable, e.g. --step 'top religion adherents -n 5'")
	recipeInitCmd.Flags().StringVar(&recipeInitFile, "file", "", "write the recipe here instead of the recipes directory")
	recipeInitCmd.Flags().BoolVar(&recipeInitForce, "force", false, "overwrite an existing recipe")
	recipeInitCmd.Flags().StringVar(&recipeInitCategory, "chart-category", "", "chart category column")
	recipeInitCmd.Flags().StringVar(&recipeInitValue, "chart-value", "", "chart value column")
	recipeInitCmd.Flags().StringVar(&recipeInitKind, "chart-kind", "bar", "chart kind: bar|line|points|area")

	recipeRunCmd.Flags().StringVar(&recipeRunChart, "chart", "", "render the recipe's chart to this SVG file ('-' for stdout) instead of printing the table")
}
