package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yangcore/yangcore/schema"
)

// newNodeCmd builds "yangcore node NODEID": a thin wrapper over
// ctx_get_node , printing the resolved node's kind and status if
// found.
func newNodeCmd(searchPaths *[]string, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use: "node NODEID",
		Short: "resolve a JSON-schema-nodeid against the loaded module set",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, dg := schema.NewContext(schema.Options{SearchDirs: *searchPaths, LogLevel: parseLogLevel(*logLevel)})
			if dg != nil {
				return dg
			}
			node, dg := ctx.GetNode(nil, args[0])
			if dg != nil {
				return dg
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s status=%s config=%s\n", node.Kind, node.Name, node.Status, node.Config)
			return nil
		},
	}
}
