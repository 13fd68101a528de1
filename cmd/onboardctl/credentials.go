package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ericfisherdev/onboarding/internal/client"
)

var testConnectionCmd = &cobra.Command{
	Use:     "test-connection",
	Short:   "Post an empty authenticated request to a callback endpoint",
	GroupID: "credentials",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint, _ := cmd.Flags().GetString("url")
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		if password == "-" {
			p, err := promptSecret(cmd, "Password: ")
			if err != nil {
				return err
			}
			password = p
		}

		res, err := apiClient.TestConnection(cmd.Context(), endpoint, username, password)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), res)
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		return nil
	},
}

var credentialsCmd = &cobra.Command{
	Use:     "credentials",
	Short:   "Manage stored credentials",
	GroupID: "credentials",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := apiClient.ListCredentials(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), creds)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tUSERNAME\tDESCRIPTION")
		for _, c := range creds {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Kind, c.Username, c.Description)
		}
		return w.Flush()
	},
}

var credentialsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Store a credential",
	Long:  "Store a credential. The secret is read from stdin so it never appears in shell history.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := promptSecret(cmd, "Secret: ")
		if err != nil {
			return err
		}
		req := &client.CreateCredentialRequest{Secret: secret}
		req.ID, _ = cmd.Flags().GetString("id")
		req.Kind, _ = cmd.Flags().GetString("kind")
		req.Description, _ = cmd.Flags().GetString("description")
		req.Username, _ = cmd.Flags().GetString("username")

		cred, err := apiClient.CreateCredential(cmd.Context(), req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), cred)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored credential %s\n", cred.ID)
		return nil
	},
}

var credentialsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient.DeleteCredential(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted credential %s\n", args[0])
		return nil
	},
}

var credentialsSubmitCmd = &cobra.Command{
	Use:   "submit <id>",
	Short: "Forward a stored credential to the configured endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := apiClient.SubmitCredential(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), res)
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		return nil
	},
}

// promptSecret reads a secret without echo when stdin is a terminal and
// falls back to reading a line otherwise.
func promptSecret(cmd *cobra.Command, prompt string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return string(b), nil
	}
	return readSecret(cmd.InOrStdin())
}

// readSecret reads the first line of r with the trailing newline removed.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	testConnectionCmd.Flags().String("url", "", "callback endpoint URL")
	testConnectionCmd.Flags().String("username", "", "Basic Auth username")
	testConnectionCmd.Flags().String("password", "", `Basic Auth password ("-" reads it from stdin)`)

	credentialsAddCmd.Flags().String("id", "", "credential id (generated when empty)")
	credentialsAddCmd.Flags().String("kind", "string", "credential kind (string or username_password)")
	credentialsAddCmd.Flags().String("description", "", "free-form description")
	credentialsAddCmd.Flags().String("username", "", "username for username_password credentials")

	credentialsCmd.AddCommand(credentialsAddCmd)
	credentialsCmd.AddCommand(credentialsDeleteCmd)
	credentialsCmd.AddCommand(credentialsSubmitCmd)
}
