package main

import (
	"os"

	"github.com/google/autoparse/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <schema> <data.json|->",
	Short: "Validate a JSON document against a schema",
	Long: `Loads the schema and everything it references, then checks the data.
Schema names without a scheme resolve against --base. Use "-" to read the data from Stdin.
Exits with status 1 when the data is invalid.`,
	Args: cobra.ExactArgs(2),
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
		data, err := cli.ReadData(args[1], cmd.InOrStdin())
		if err != nil {
			return err
		}

		report, err := cli.Validate(cmd.Context(), env.engine, uri, data)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		if err := cli.PrintReport(cmd.OutOrStdout(), report, asJSON); err != nil {
			return err
		}
		if !report.Valid {
			env.cleanup()
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("json", false, "Print the result as JSON")
}
