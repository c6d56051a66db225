// Package protocol defines the real-time frames exchanged over /ws/chat.
package protocol

import "fmt"

// Frame types from client to server
const (
	TypeChat = "chat"
)

// Frame types from server to client
const (
	TypeSystem = "system"
	TypeFile   = "file"
)

// Application close codes (4000-4999 range of RFC 6455).
const (
	CloseUnauthorized = 4401
	CloseSuperseded   = 4409
)

// InboundFrame is a client frame. Only "chat" is accepted.
type InboundFrame struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Text string `json:"text"`
}

// ChatFrame carries a text message to the recipient and back to the sender.
type ChatFrame struct {
	Type string `json:"type"`
	From string `json:"from"`
	Text string `json:"text"`
}

// SystemFrame is a notice addressed to one connection only.
type SystemFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// FileFrame announces a shared file.
type FileFrame struct {
	Type     string `json:"type"`
	From     string `json:"from"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// NewChat builds a chat frame.
func NewChat(from, text string) ChatFrame {
	return ChatFrame{Type: TypeChat, From: from, Text: text}
}

// NewSystem builds a system notice.
func NewSystem(format string, args ...any) SystemFrame {
	return SystemFrame{Type: TypeSystem, Message: fmt.Sprintf(format, args...)}
}

// NewFile builds a file frame.
func NewFile(from, filename, url string) FileFrame {
	return FileFrame{Type: TypeFile, From: from, Filename: filename, URL: url}
}

// Notice texts sent as system frames.
const (
	NoticeConnected       = "Connected as %s"
	NoticeInvalidFormat   = "Invalid message format."
	NoticeUnsupportedType = "Unsupported message type."
	NoticeMissingFields   = "Both 'to' and 'text' fields are required."
	NoticeUnknownUser     = "User '%s' does not exist."
	NoticeNotFriends      = "You are not friends with '%s'."
	NoticeTooLong         = "Message is too long (max %d characters)."
	NoticeNotSaved        = "Message could not be saved. Please try again."
	NoticeOffline         = "User '%s' is currently offline."
)
