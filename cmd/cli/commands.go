package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(checkinCmd)
	rootCmd.AddCommand(addPlayerCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(membersCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health", nil)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate [count]",
	Short: "Generate new pending matches",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		if len(args) == 1 {
			params.Set("count", args[0])
		}
		return performGetRequest("/generate", params)
	},
}

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Promote pending matches onto free courts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/assign", nil)
	},
}

var startCmd = &cobra.Command{
	Use:   "start <matchID>",
	Short: "Mark a scheduled match as in progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("matchID", args[0])
		return performGetRequest("/start", params)
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score <matchID> <team1> <team2>",
	Short: "Record a match result",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("matchID", args[0])
		params.Set("team1", args[1])
		params.Set("team2", args[2])
		return performGetRequest("/score", params)
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <matchID>",
	Short: "Cancel a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("matchID", args[0])
		return performGetRequest("/cancel", params)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <name> <Active|Inactive>",
	Short: "Set a player's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("name", args[0])
		params.Set("status", args[1])
		return performGetRequest("/player-status", params)
	},
}

var checkinCmd = &cobra.Command{
	Use:   "checkin <name>",
	Short: "Check a player in for the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("name", args[0])
		return performGetRequest("/check-in", params)
	},
}

var addPlayerCmd = &cobra.Command{
	Use:   "add-player <name> <M|F>",
	Short: "Add a player to the roster",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("name", args[0])
		params.Set("gender", args[1])
		return performGetRequest("/add-player", params)
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the standings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard", nil)
	},
}

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "List the players on the roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/members", nil)
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List all matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics", nil)
	},
}

func performGetRequest(endpoint string, params url.Values) error {
	if params == nil {
		params = url.Values{}
	}
	if dryRun {
		params.Set("dry_run", "true")
	}
	target := host + endpoint
	if encoded := params.Encode(); encoded != "" {
		target += "?" + encoded
	}
	fmt.Printf("Making request to %s\n", target)

	resp, err := http.Get(target)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
