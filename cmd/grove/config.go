package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/grovekit/grove/config"
)

var configGlobal bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change configuration",
	Long: `Configuration layers, lowest precedence first: built-in defaults,
~/.config/grove/config.yaml, .grove.yaml in the repository root, and
GROVE_* environment variables.`,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every setting and where it came from",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist a setting",
	Long: `Write a setting to the repository's .grove.yaml, or to the global
config file with --global. Outside a repository --global is implied.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a setting from the global config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.DeleteGlobal(args[0])
	},
}

func init() {
	configSetCmd.Flags().BoolVarP(&configGlobal, "global", "g", false, "Write to the global config file")
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd, configUnsetCmd)
	rootCmd.AddCommand(configCmd)
}

func resolveConfig() *config.Resolved {
	return config.NewResolver(gitRootOrEmpty()).Resolve()
}

func runConfigList(cmd *cobra.Command, args []string) error {
	resolved := resolveConfig()

	if jsonOutput {
		out := make(map[string]string, len(resolved.Keys()))
		for _, key := range resolved.Keys() {
			out[key] = resolved.Get(key)
		}
		return printJSON(out)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, header("key", "value", "source"))
	for _, key := range resolved.Keys() {
		value, source := resolved.GetWithSource(key)
		if value == "" {
			value = dimStyle.Render("(unset)")
		}
		rendered := string(source)
		if source == config.SourceDefault {
			rendered = dimStyle.Render(rendered)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", key, value, rendered)
	}
	return w.Flush()
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value, source := resolveConfig().GetWithSource(key)
	if source == "" {
		return fmt.Errorf("unknown configuration key %q", key)
	}
	if jsonOutput {
		return printJSON(map[string]string{"key": key, "value": value, "source": string(source)})
	}
	fmt.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	gitRoot := gitRootOrEmpty()
	if configGlobal || gitRoot == "" {
		if err := config.SaveGlobal(key, value); err != nil {
			return err
		}
		fmt.Printf("%s %s = %s %s\n", successStyle.Render("✓"), key, value, dimStyle.Render("(global)"))
		return nil
	}
	if err := config.SaveLocal(gitRoot, key, value); err != nil {
		return err
	}
	fmt.Printf("%s %s = %s %s\n", successStyle.Render("✓"), key, value, dimStyle.Render("(local)"))
	return nil
}
