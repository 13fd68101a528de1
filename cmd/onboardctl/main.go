// Command onboardctl is a CLI client for the onboarding server.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/onboarding/internal/client"
)

var (
	serverURL  string
	token      string
	natsURL    string
	jsonOutput bool

	apiClient *client.HTTPClient
)

func defaultServer() string {
	if s := os.Getenv("ONBOARDCTL_SERVER"); s != "" {
		return s
	}
	if p := activeProfile(); p.URL != "" {
		return p.URL
	}
	return "http://127.0.0.1:8080"
}

func defaultToken() string {
	if s := os.Getenv("ONBOARDCTL_TOKEN"); s != "" {
		return s
	}
	return activeProfile().Token
}

func defaultNATSURL() string {
	if s := os.Getenv("ONBOARDCTL_NATS_URL"); s != "" {
		return s
	}
	return activeProfile().NATSURL
}

var rootCmd = &cobra.Command{
	Use:          "onboardctl <command>",
	Short:        "CLI client for the onboarding server",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		apiClient = client.NewHTTPClient(serverURL, token)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "onboarding server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", defaultToken(), "admin bearer token")
	rootCmd.PersistentFlags().StringVar(&natsURL, "nats-url", defaultNATSURL(), "NATS server URL for event streaming")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "onboarding", Title: "Onboarding:"},
		&cobra.Group{ID: "credentials", Title: "Credentials:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false

	// Onboarding
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(entriesCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(stepCmd)

	// Credentials
	rootCmd.AddCommand(testConnectionCmd)
	rootCmd.AddCommand(credentialsCmd)

	// System
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(profileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
