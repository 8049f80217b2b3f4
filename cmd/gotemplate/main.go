// Command gotemplate parses and renders gotemplate sources from the
// command line: "render" executes a template against a JSON context,
// "check" parses a template and reports errors without executing it.
package main

import (
	"os"

	"github.com/apex/log"
	logcli "github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	log.SetHandler(logcli.Default)

	root := &cobra.Command{
		Use:           "gotemplate",
		Short:         "Parse and render gotemplate-dialect templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	bindPersistentFlags(root.PersistentFlags())

	root.AddCommand(newRenderCmd())
	root.AddCommand(newCheckCmd())

	if err := root.Execute(); err != nil {
		log.WithError(err).Error("gotemplate failed")
		os.Exit(1)
	}
}

// bindPersistentFlags registers the flags every subcommand inherits,
// against the concrete *pflag.FlagSet cobra exposes rather than cobra's
// convenience wrapper.
func bindPersistentFlags(fs *pflag.FlagSet) {
	fs.Bool("verbose", false, "log parse/render timing and template-name resolution")
	fs.String("left-delim", "{{", "left action delimiter")
	fs.String("right-delim", "}}", "right action delimiter")
}
