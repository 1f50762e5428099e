package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dori/kanbo/internal/board"
)

func newExportCmd(rt *runtime) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board to stdout",
		Args:  cobra.NoArgs,
		RunE: rt.withBoard(func(cmd *cobra.Command, args []string, s *board.Session) error {
			tasks := s.Tasks()
			out := cmd.OutOrStdout()

			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tasks)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(tasks); err != nil {
					return fmt.Errorf("failed to encode yaml: %w", err)
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}
		}),
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "json or yaml")
	return cmd
}
