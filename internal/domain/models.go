package domain

import "time"

// User is a registered identity. Immutable once created.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"-"`
}

// Credentials is a user row together with its password hash. It never leaves
// the service layer.
type Credentials struct {
	User
	PasswordHash string
}

// FriendRequest is a directed proposal from one user to another.
// At most one exists per unordered pair of users.
type FriendRequest struct {
	ID           int64         `json:"id"`
	FromUserID   int64         `json:"from_user_id"`
	ToUserID     int64         `json:"to_user_id"`
	FromUsername string        `json:"from_username"`
	ToUsername   string        `json:"to_username"`
	Status       RequestStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	RespondedAt  *time.Time    `json:"responded_at,omitempty"`
}

// Message is one persisted unit of communication between two users.
type Message struct {
	ID           int64       `json:"id"`
	FromUserID   int64       `json:"-"`
	ToUserID     int64       `json:"-"`
	FromUsername string      `json:"from_username"`
	ToUsername   string      `json:"to_username"`
	Kind         MessageKind `json:"kind"`
	Text         string      `json:"text"`
	URL          string      `json:"url,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// FriendItem is one accepted friend.
type FriendItem struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// IncomingRequestItem is a pending request addressed to the user.
type IncomingRequestItem struct {
	RequestID    int64  `json:"request_id"`
	FromUsername string `json:"from_username"`
}

// OutgoingRequestItem is a pending request sent by the user.
type OutgoingRequestItem struct {
	RequestID  int64         `json:"request_id"`
	ToUsername string        `json:"to_username"`
	Status     RequestStatus `json:"status"`
}

// FriendSummary groups a user's friends and pending requests.
type FriendSummary struct {
	Friends          []FriendItem          `json:"friends"`
	IncomingRequests []IncomingRequestItem `json:"incoming_requests"`
	OutgoingRequests []OutgoingRequestItem `json:"outgoing_requests"`
}
