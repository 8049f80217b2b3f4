package main

import (
	"fmt"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	tmpl "github.com/fiji-flo/gotemplate"
)

func newCheckCmd() *cobra.Command {
	var diagnoseFlag bool

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Parse one or more templates without rendering them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			left, _ := cmd.Flags().GetString("left-delim")
			right, _ := cmd.Flags().GetString("right-delim")

			start := time.Now()
			set, err := new(tmpl.Set).Delims(left, right).ParseFiles(args...)
			if verbose {
				log.WithField("elapsed", time.Since(start)).WithField("files", len(args)).Info("parse complete")
			}
			if err != nil {
				if diagnoseFlag {
					diagnose(err)
					os.Exit(1)
				}
				return err
			}
			names := set.TemplateNames()
			if len(names) == 0 && diagnoseFlag {
				diagnoseWarning("no templates were defined in the parsed file(s)")
			}
			fmt.Printf("ok: %d template(s) parsed\n", len(names))
			return nil
		},
	}
	cmd.Flags().BoolVar(&diagnoseFlag, "diagnose", false, "colorize parse errors instead of returning a plain error")
	return cmd
}
