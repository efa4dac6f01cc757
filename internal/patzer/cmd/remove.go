package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patzerhq/patzer/pkg/manager"
)

// patzer remove
func Remove() *cobra.Command {
	return &cobra.Command{
		Use:   "remove engine[@version]",
		Short: "Uninstall the given engine",
		Args:  cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			source, tag, hasTag := strings.Cut(args[0], "@")

			engine, _, err := manager.NewEngine(source)
			if err != nil {
				return err
			}

			// Removal works off the registry and the disk, so the
			// version has to be an exact installed version name.
			if hasTag {
				version := manager.Version{Name: tag}
				if !engine.Downloaded(version) {
					fmt.Printf("\nEngine \x1b[32m%s %s\x1b[0m is not installed.\n", engine.Name, tag)
					return nil
				}

				fmt.Printf("\x1b[32mUninstalling Engine:\x1b[0m %s %s\n\n", engine.Name, tag)
				manager.Engines.RemoveVersion(engine, tag)
				os.Remove(engine.VersionBinary(version))
				return nil
			}

			fmt.Printf("\x1b[32mUninstalling Engine:\x1b[0m %s\n\n", engine.Name)
			os.Remove(engine.Binary())
			for _, version := range manager.Engines[strings.ToLower(engine.Name)].Versions {
				os.Remove(engine.Binary() + "-" + version)
			}
			manager.Engines.RemoveEngine(engine)

			return nil
		},
	}
}
