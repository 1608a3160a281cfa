package main

import (
	"encoding/json"
	"fmt"
	"os"

	blink "github.com/blinkmojo/blink/pkg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	// Load config
	config, err := blink.DefaultConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config defaults:", err)
		os.Exit(1)
	}
	LoadConfig(&config)

	var remote SubCommandArgs

	// define root command
	rootCmd := &cobra.Command{
		Use:          "blink",
		Short:        "Build privacy-preserving mix settlements as signed spend bundles",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
			os.Exit(0)
		},
	}

	// Add flags for each configuration option
	rootCmd.PersistentFlags().StringVar(&config.Blink.Network, "network", config.Blink.Network, "Network to sign for (mainnet, testnet10)")
	rootCmd.PersistentFlags().Uint64Var(&config.Blink.MaxCost, "max-cost", config.Blink.MaxCost, "Cost ceiling for puzzle runs")
	rootCmd.PersistentFlags().StringVar(&config.WebAPI.Port, "webapi-port", config.WebAPI.Port, "Web API port")
	rootCmd.PersistentFlags().StringVar(&config.WebAPI.Bind, "webapi-bind", config.WebAPI.Bind, "Web API bind")
	rootCmd.PersistentFlags().StringVar(&config.Store.DBFile, "store-db-file", config.Store.DBFile, "Store DB file")
	// Bind flags to config fields
	viper.BindPFlags(rootCmd.PersistentFlags())

	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Start the Blink server",
		Run: func(cmd *cobra.Command, args []string) {
			Server(config)
		},
	}

	configCmd := &cobra.Command{
		Use:   "showconf",
		Short: "Print the config state and exit",
		Run: func(cmd *cobra.Command, args []string) {
			o, _ := json.MarshalIndent(config, ">", " ")
			fmt.Println(string(o))
			os.Exit(0)
		},
	}

	puzzlesCmd := &cobra.Command{
		Use:   "puzzles",
		Short: "Load the embedded puzzle templates and print their hashes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ListPuzzles(cmd.OutOrStdout())
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate <mix.json>",
		Short: "Check a mix plan against the privacy rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ValidateMix(cmd.OutOrStdout(), args[0], config)
		},
	}

	var outFile string
	settleCmd := &cobra.Command{
		Use:   "settle <request.json>",
		Short: "Build and sign the spend bundle for a mix plan and its four signers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Settle(cmd.OutOrStdout(), args[0], outFile, config)
		},
	}
	settleCmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the serialized bundle to this file")

	var program, arg string
	runCmd := &cobra.Command{
		Use:   "run <puzzle>",
		Short: "Run a puzzle template against a sample argument and print its conditions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunPuzzle(cmd.OutOrStdout(), args[0], program, arg, config)
		},
	}
	runCmd.Flags().StringVar(&program, "program", "", "Serialized program (hex) to run instead of the template")
	runCmd.Flags().StringVar(&arg, "arg", "", "Serialized argument (hex); defaults to the template's sample")

	addressCmd := &cobra.Command{
		Use:   "address <puzzle-hash | address>",
		Short: "Convert between a puzzle hash and its address on the configured network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Address(cmd.OutOrStdout(), args[0], config)
		},
	}

	bundleCmd := &cobra.Command{
		Use:   "bundle <name>",
		Short: "Fetch a stored spend bundle from a running Blink server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return FetchBundle(cmd.OutOrStdout(), args[0], config, remote)
		},
	}
	bundleCmd.Flags().StringVar(&remote.RemoteServer, "remote", "", "Base URL of the Blink server (default from config)")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(puzzlesCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(settleCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(addressCmd)
	rootCmd.AddCommand(bundleCmd)

	// Execute the Cobra command
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// LoadConfig overlays an optional blink.toml (or $BLINK_ENV.toml) onto config.
func LoadConfig(config *blink.Config) {
	configFileName, set := os.LookupEnv("BLINK_ENV")
	if set {
		viper.SetConfigName(configFileName)
	} else {
		viper.SetConfigName("blink")
	}

	// Set config file name and search paths
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/blink/")
	viper.AddConfigPath("$HOME/.blink")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && !set {
			// defaults only
			return
		}
		fmt.Println("failed to read config file: ", err)
		os.Exit(1)
	}

	if err := viper.Unmarshal(config); err != nil {
		panic(fmt.Errorf("failed to unmarshal config: %s", err))
	}
}
