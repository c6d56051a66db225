package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register [username] [password]",
	Short: "Create an account",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		var me struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		}
		err := newAPI().postJSON("/register", map[string]string{"username": args[0], "password": args[1]}, &me)
		if err != nil {
			fatal("register failed", err)
		}
		fmt.Printf("Registered %s (id %d)\n", me.Username, me.ID)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login [username] [password]",
	Short: "Log in and print a session token",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		var resp struct {
			Token    string `json:"token"`
			Username string `json:"username"`
		}
		err := newAPI().postJSON("/login", map[string]string{"username": args[0], "password": args[1]}, &resp)
		if err != nil {
			fatal("login failed", err)
		}
		fmt.Printf("Logged in as %s\n", resp.Username)
		fmt.Printf("export PINGPONG_TOKEN=%s\n", resp.Token)
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the logged-in user",
	Run: func(cmd *cobra.Command, args []string) {
		requireToken()
		var me struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		}
		if err := newAPI().getJSON("/me", nil, &me); err != nil {
			fatal("me failed", err)
		}
		fmt.Printf("%s (id %d)\n", me.Username, me.ID)
	},
}

func init() {
	rootCmd.AddCommand(registerCmd, loginCmd, meCmd)
}
