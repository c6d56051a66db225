package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/xiaot623/pingpong/internal/protocol"
)

// frame is any server frame; unused fields stay empty.
type frame struct {
	Type     string `json:"type"`
	From     string `json:"from,omitempty"`
	Text     string `json:"text,omitempty"`
	Message  string `json:"message,omitempty"`
	Filename string `json:"filename,omitempty"`
	URL      string `json:"url,omitempty"`
}

// chatClient is a live WebSocket session.
type chatClient struct {
	conn *websocket.Conn
	done chan struct{}
}

func dialChat(addr string) (*chatClient, error) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return &chatClient{conn: conn, done: make(chan struct{})}, nil
}

func (c *chatClient) Close() error {
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

func (c *chatClient) Send(to, text string) error {
	return c.conn.WriteJSON(protocol.InboundFrame{Type: protocol.TypeChat, To: to, Text: text})
}

// ReadFrames prints server frames until the connection closes.
func (c *chatClient) ReadFrames() {
	defer close(c.done)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if !errors.As(err, &ce) {
				slog.Warn("read error", "error", err)
				return
			}
			switch ce.Code {
			case protocol.CloseUnauthorized:
				fmt.Println("\nServer rejected the token; log in again.")
			case protocol.CloseSuperseded:
				fmt.Println("\nThis session was replaced by a newer connection.")
			case websocket.CloseNormalClosure, websocket.CloseGoingAway:
			default:
				slog.Warn("connection closed", "code", ce.Code, "reason", ce.Text)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			slog.Warn("unmarshal error", "error", err)
			continue
		}
		switch f.Type {
		case protocol.TypeChat:
			fmt.Printf("\r%s: %s\n> ", f.From, f.Text)
		case protocol.TypeFile:
			fmt.Printf("\r%s shared %s: %s%s\n> ", f.From, f.Filename, serverURL, f.URL)
		case protocol.TypeSystem:
			fmt.Printf("\r* %s\n> ", f.Message)
		default:
			fmt.Printf("\r? %s\n> ", string(data))
		}
	}
}

var chatCmd = &cobra.Command{
	Use:   "chat [friend]",
	Short: "Open a live chat session",
	Long: `Open a live chat session. Lines are sent to the current recipient.
Commands: /to <user> switches recipient, /quit exits.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireToken()
		addr, err := newAPI().wsURL()
		if err != nil {
			fatal("invalid server URL", err)
		}

		client, err := dialChat(addr)
		if err != nil {
			fatal("failed to connect", err)
		}
		defer client.Close()
		go client.ReadFrames()

		to := ""
		if len(args) == 1 {
			to = args[0]
		}

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		lines := make(chan string)
		go func() {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				lines <- scanner.Text()
			}
			close(lines)
		}()

		fmt.Print("> ")
		for {
			select {
			case <-interrupt:
				fmt.Println("\nInterrupted")
				return
			case <-client.done:
				return
			case line, ok := <-lines:
				if !ok {
					return
				}
				input := strings.TrimSpace(line)
				switch {
				case input == "":
				case input == "/quit":
					fmt.Println("Bye!")
					return
				case strings.HasPrefix(input, "/to "):
					to = strings.TrimSpace(strings.TrimPrefix(input, "/to "))
					fmt.Printf("* now talking to %s\n", to)
				case to == "":
					fmt.Println("* pick a recipient with /to <user>")
				default:
					if err := client.Send(to, input); err != nil {
						slog.Warn("send error", "error", err)
					}
				}
				fmt.Print("> ")
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
