package main

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

type historyItem struct {
	FromUsername string    `json:"from_username"`
	ToUsername   string    `json:"to_username"`
	Kind         string    `json:"kind"`
	Text         string    `json:"text"`
	URL          string    `json:"url"`
	CreatedAt    time.Time `json:"created_at"`
}

var historyCmd = &cobra.Command{
	Use:   "history [friend]",
	Short: "Show the conversation with a friend",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireToken()
		query := url.Values{"friend_username": {args[0]}}
		if historyLimit > 0 {
			query.Set("limit", strconv.Itoa(historyLimit))
		}

		var items []historyItem
		if err := newAPI().getJSON("/history", query, &items); err != nil {
			fatal("history failed", err)
		}
		for _, it := range items {
			ts := it.CreatedAt.Local().Format("2006-01-02 15:04")
			if it.Kind == "file" {
				fmt.Printf("[%s] %s sent file %s (%s)\n", ts, it.FromUsername, it.Text, it.URL)
				continue
			}
			fmt.Printf("[%s] %s: %s\n", ts, it.FromUsername, it.Text)
		}
	},
}

var sendFileCmd = &cobra.Command{
	Use:   "send-file [friend] [path]",
	Short: "Upload a file and share it with a friend",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		requireToken()
		var frame struct {
			Filename string `json:"filename"`
			URL      string `json:"url"`
		}
		if err := newAPI().upload(args[0], args[1], &frame); err != nil {
			fatal("upload failed", err)
		}
		fmt.Printf("Shared %s: %s%s\n", frame.Filename, serverURL, frame.URL)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "maximum number of messages (server default when 0)")
	rootCmd.AddCommand(historyCmd, sendFileCmd)
}
