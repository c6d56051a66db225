package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/xiaot623/pingpong/internal/domain"
	"github.com/xiaot623/pingpong/internal/policy"
	"github.com/xiaot623/pingpong/internal/protocol"
	"github.com/xiaot623/pingpong/internal/storage"
)

// ShareFile stores the file, records it as a file message and announces it
// to both parties if they are online. The frame is returned whether or not
// anyone was online to receive it.
func (s *Service) ShareFile(ctx context.Context, sender *domain.User, targetName, filename string, r io.Reader) (*protocol.FileFrame, error) {
	target, err := s.ResolveName(ctx, strings.TrimSpace(targetName))
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.NewError(domain.KindNotFound, "Target user does not exist")
	}

	decision, err := s.Authorize(ctx, sender, target, domain.MessageKindFile, filename)
	if err != nil {
		return nil, domain.Persistence(err, "failed to authorize file share")
	}
	if decision != policy.DecisionAllow {
		return nil, domain.NewError(domain.KindForbidden, "You are not friends with this user")
	}

	name := storage.SafeBasename(filename)
	url, stored, err := s.files.Save(name, r)
	if err != nil {
		return nil, domain.Persistence(err, "failed to save file")
	}

	if _, err := s.AppendMessage(ctx, sender, target, domain.MessageKindFile, name, url); err != nil {
		if rerr := s.files.Remove(stored); rerr != nil {
			slog.Warn("failed to remove orphaned upload", "file", stored, "error", rerr)
		}
		return nil, err
	}

	frame := protocol.NewFile(sender.Username, name, url)
	s.deliver(frame, target.Username, sender.Username)
	return &frame, nil
}

// deliver queues v to each named user that is online. Failures are logged
// and otherwise ignored.
func (s *Service) deliver(v any, usernames ...string) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode frame", "error", err)
		return
	}
	for _, name := range usernames {
		online, err := s.hub.SendTo(name, data)
		if !online {
			continue
		}
		s.metrics.Delivery(err)
		if err != nil {
			slog.Warn("dropped frame", "user", name, "error", err)
		}
	}
}
