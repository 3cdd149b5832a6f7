package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yangcore/yangcore/schema"
)

// newInfoCmd builds "yangcore info": prints the ietf-yang-library-shaped
// module-set summary for every module loaded into a
// freshly constructed context (which always includes the four preloaded
// built-ins).
func newInfoCmd(searchPaths *[]string, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use: "info",
		Short: "print the loaded module set (ietf-yang-library modules-state summary)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, dg := schema.NewContext(schema.Options{SearchDirs: *searchPaths, LogLevel: parseLogLevel(*logLevel)})
			if dg != nil {
				return dg
			}
			info := ctx.Info()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "module-set-id: %s\n", info.ModuleSetID)
			for _, m := range info.Modules {
				fmt.Fprintf(out, "%s@%s\t%s\t%s\n", m.Name, m.Revision, m.ConformanceType, m.Namespace)
				for _, f := range m.Features {
					fmt.Fprintf(out, " feature: %s\n", f)
				}
				for _, d := range m.Deviations {
					fmt.Fprintf(out, " deviation: %s\n", d)
				}
				for _, s := range m.Submodules {
					fmt.Fprintf(out, " submodule: %s\n", s)
				}
			}
			return nil
		},
	}
}
