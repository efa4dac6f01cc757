package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/patzerhq/patzer/pkg/manager"
)

// patzer install
func Install() *cobra.Command {
	return &cobra.Command{
		Use:   "install { engine owner/engine git-url }",
		Short: "Install the given analysis engine",
		Args:  cobra.ExactArgs(1),
		Long: heredoc.Doc(`install fetches, builds and registers the given analysis
			engine so that synthetic opponents can be built on it by
			name, without sourcing the engine every time it is used.

			The formats supported for the engine name are <name>,
			<owner>/<name> (for engines on github), or a full <url> to
			a git repository. The <name> format is only supported for
			the engines patzer is configured by default for.

			A particular version can be requested by suffixing any of
			the formats with @<version>, where the version is a git tag
			name, stable, or latest.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flag("trace").Changed {
				logrus.SetLevel(logrus.TraceLevel)
			}

			return manager.Install(args[0])
		},
	}
}
