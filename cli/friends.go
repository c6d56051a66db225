package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

type friendSummary struct {
	Friends []struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"friends"`
	IncomingRequests []struct {
		RequestID    int64  `json:"request_id"`
		FromUsername string `json:"from_username"`
	} `json:"incoming_requests"`
	OutgoingRequests []struct {
		RequestID  int64  `json:"request_id"`
		ToUsername string `json:"to_username"`
		Status     string `json:"status"`
	} `json:"outgoing_requests"`
}

type friendRequest struct {
	ID           int64  `json:"id"`
	FromUsername string `json:"from_username"`
	ToUsername   string `json:"to_username"`
	Status       string `json:"status"`
}

var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "List friends and pending requests",
	Run: func(cmd *cobra.Command, args []string) {
		requireToken()
		var s friendSummary
		if err := newAPI().getJSON("/friends", nil, &s); err != nil {
			fatal("listing friends failed", err)
		}

		fmt.Println("Friends:")
		for _, f := range s.Friends {
			fmt.Printf("  %s\n", f.Username)
		}
		fmt.Println("Incoming requests:")
		for _, r := range s.IncomingRequests {
			fmt.Printf("  #%d from %s\n", r.RequestID, r.FromUsername)
		}
		fmt.Println("Outgoing requests:")
		for _, r := range s.OutgoingRequests {
			fmt.Printf("  #%d to %s (%s)\n", r.RequestID, r.ToUsername, r.Status)
		}
	},
}

var addCmd = &cobra.Command{
	Use:   "add [username]",
	Short: "Send a friend request",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireToken()
		var fr friendRequest
		if err := newAPI().postJSON("/friends/request", map[string]string{"to_username": args[0]}, &fr); err != nil {
			fatal("friend request failed", err)
		}
		fmt.Printf("Request #%d sent to %s\n", fr.ID, fr.ToUsername)
	},
}

var respondCmd = &cobra.Command{
	Use:   "respond [request-id] [accept|reject]",
	Short: "Accept or reject an incoming friend request",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		requireToken()
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fatal("invalid request id", err)
		}
		var accept bool
		switch strings.ToLower(args[1]) {
		case "accept", "yes", "y":
			accept = true
		case "reject", "no", "n":
		default:
			fatal("invalid answer", fmt.Errorf("expected accept or reject, got %q", args[1]))
		}

		var fr friendRequest
		body := map[string]any{"request_id": id, "accept": accept}
		if err := newAPI().postJSON("/friends/respond", body, &fr); err != nil {
			fatal("respond failed", err)
		}
		fmt.Printf("Request #%d from %s is now %s\n", fr.ID, fr.FromUsername, fr.Status)
	},
}

func init() {
	rootCmd.AddCommand(friendsCmd, addCmd, respondCmd)
}
