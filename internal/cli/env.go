package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/taskrabbit/internal/config"
)

// skipSetupAnnotation marks commands that run without opening storage.
const skipSetupAnnotation = "taskrabbit/skip-setup"

func newEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "env",
		Short:       "Describe the environment variables taskrabbit reads",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetupAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			usage, err := config.Usage()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), usage)
			return err
		},
	}
}
