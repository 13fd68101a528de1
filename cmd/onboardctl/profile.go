package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// Profile holds the connection defaults onboardctl falls back to when no
// flag or environment variable is given.
type Profile struct {
	URL     string `toml:"url"`
	Token   string `toml:"token,omitempty"`
	NATSURL string `toml:"nats_url,omitempty"`
}

func profilePath() (string, error) {
	if p := os.Getenv("ONBOARDCTL_PROFILE"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "onboarding", "profile.toml"), nil
}

// loadProfile reads the profile at path. A missing file yields an empty profile.
func loadProfile(path string) (Profile, error) {
	var p Profile
	if _, err := toml.DecodeFile(path, &p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Profile{}, nil
		}
		return Profile{}, fmt.Errorf("read profile %s: %w", path, err)
	}
	return p, nil
}

// saveProfile writes p to path with owner-only permissions since it may hold
// the admin token.
func saveProfile(path string, p Profile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open profile %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(p); err != nil {
		return fmt.Errorf("write profile %s: %w", path, err)
	}
	return nil
}

var (
	profileOnce   sync.Once
	cachedProfile Profile
)

// activeProfile loads the profile once per process. Errors are ignored so a
// broken profile never prevents flag-driven use.
func activeProfile() Profile {
	profileOnce.Do(func() {
		path, err := profilePath()
		if err != nil {
			return
		}
		cachedProfile, _ = loadProfile(path)
	})
	return cachedProfile
}

var profileCmd = &cobra.Command{
	Use:     "profile",
	Short:   "Manage the saved connection profile",
	GroupID: "system",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := profilePath()
		if err != nil {
			return err
		}
		p, err := loadProfile(path)
		if err != nil {
			return err
		}
		if p.Token != "" {
			p.Token = "********"
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), p)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Path:     %s\n", path)
		fmt.Fprintf(out, "URL:      %s\n", p.URL)
		fmt.Fprintf(out, "Token:    %s\n", p.Token)
		fmt.Fprintf(out, "NATS URL: %s\n", p.NATSURL)
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the saved profile",
	Long:  "Update the saved profile. Only the flags given are changed.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := profilePath()
		if err != nil {
			return err
		}
		p, err := loadProfile(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("url") {
			p.URL, _ = cmd.Flags().GetString("url")
		}
		if cmd.Flags().Changed("admin-token") {
			p.Token, _ = cmd.Flags().GetString("admin-token")
		}
		if cmd.Flags().Changed("events-url") {
			p.NATSURL, _ = cmd.Flags().GetString("events-url")
		}
		if err := saveProfile(path, p); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved profile to %s\n", path)
		return nil
	},
}

func init() {
	profileSetCmd.Flags().String("url", "", "onboarding server URL")
	profileSetCmd.Flags().String("admin-token", "", "admin bearer token")
	profileSetCmd.Flags().String("events-url", "", "NATS server URL")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
}
