package main

import (
	"github.com/google/autoparse/internal/cli"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <schema>",
	Short: "Show the properties of a schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.cleanup()

		uri, err := cli.ResolveSchemaURI(env.cfg, args[0])
		if err != nil {
			return err
		}
		plain, _ := cmd.Flags().GetBool("plain")
		return cli.Describe(cmd.Context(), env.engine, uri, cmd.OutOrStdout(), plain)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Load every schema in the source and print their URIs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.cleanup()
		return cli.List(cmd.Context(), env.engine, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(listCmd)
	describeCmd.Flags().Bool("plain", false, "Print raw markdown instead of rendering it")
}

var graphCmd = &cobra.Command{
	Use:   "graph [schema]",
	Short: "Print a Mermaid diagram of schema references",
	Long:  `Without arguments every schema in the source is drawn. With a schema, only it and what it references are drawn, the schema itself highlighted.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.cleanup()

		var uri string
		if len(args) == 1 {
			if uri, err = cli.ResolveSchemaURI(env.cfg, args[0]); err != nil {
				return err
			}
		}
		return cli.Graph(cmd.Context(), env.engine, uri, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
