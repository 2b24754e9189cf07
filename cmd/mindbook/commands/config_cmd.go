package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindbook/mindbook/cmd/mindbook/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		fmt.Printf("config:   %s\n", cfg.Dir())
		fmt.Printf("provider: %s\n", cfg.Provider)
		fmt.Printf("user:     %s\n", cfg.User)
		fmt.Printf("data:     %s\n", cfg.ResolveDataDir())
		if err := cfg.Validate(); err != nil {
			fmt.Printf("status:   %v\n", err)
		} else {
			fmt.Println("status:   ok")
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("wrote %s/config.yaml\n", cfg.Dir())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
