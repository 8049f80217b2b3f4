package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	tmpl "github.com/fiji-flo/gotemplate"
	"github.com/fiji-flo/gotemplate/value"
)

func newRenderCmd() *cobra.Command {
	var (
		contextPath  string
		name         string
		maxDepth     int
		strict       bool
		allowDynName bool
		diagnoseFlag bool
	)

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a template file against a JSON context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			left, _ := cmd.Flags().GetString("left-delim")
			right, _ := cmd.Flags().GetString("right-delim")

			ctx, err := loadContext(contextPath)
			if err != nil {
				return fmt.Errorf("gotemplate: loading context: %w", err)
			}

			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			set := new(tmpl.Set).
				Delims(left, right).
				MaxDepth(maxDepth).
				StrictMapKeys(strict).
				AllowDynamicTemplateName(allowDynName)

			start := time.Now()
			if _, err := set.Parse(string(src)); err != nil {
				if diagnoseFlag {
					diagnose(err)
					os.Exit(1)
				}
				return err
			}

			renderName := "source"
			if name != "" {
				renderName = name
			}
			out, err := set.RenderNamed(renderName, ctx)
			if verbose {
				log.WithField("elapsed", time.Since(start)).WithField("template", renderName).Info("render complete")
			}
			if err != nil {
				if diagnoseFlag {
					diagnose(err)
					os.Exit(1)
				}
				return err
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&contextPath, "context", "", "path to a JSON file providing the render context (defaults to an empty object)")
	cmd.Flags().StringVar(&name, "name", "", `template to render (default "source", the template parsed directly)`)
	cmd.Flags().IntVar(&maxDepth, "max-depth", 100000, "maximum {{template}}/{{block}} call depth")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on a .Key field access to a missing map/object key instead of evaluating to nil (the index builtin is unaffected)")
	cmd.Flags().BoolVar(&allowDynName, "allow-dynamic-name", false, `allow {{template (pipeline) .}}`)
	cmd.Flags().BoolVar(&diagnoseFlag, "diagnose", false, "colorize parse/render errors instead of returning a plain error")
	return cmd
}

func loadContext(path string) (value.Value, error) {
	if path == "" {
		return value.NewMap(map[string]value.Value{}), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return value.Nil, err
	}
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return value.Nil, err
	}
	return value.FromAny(raw), nil
}
