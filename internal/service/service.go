// Package service implements identity, relationship, messaging and file
// sharing on top of the store, the hub and the message policy.
package service

import (
	"context"
	"io"

	"github.com/xiaot623/pingpong/internal/config"
	"github.com/xiaot623/pingpong/internal/hub"
	"github.com/xiaot623/pingpong/internal/metrics"
	"github.com/xiaot623/pingpong/internal/policy"
	"github.com/xiaot623/pingpong/internal/repository"
)

// FileStore persists shared file bytes.
type FileStore interface {
	Save(filename string, r io.Reader) (url string, stored string, err error)
	Remove(stored string) error
}

type Service struct {
	store        store.Store
	hub          *hub.Hub
	policyEngine *policy.Engine
	files        FileStore
	config       *config.Config
	metrics      *metrics.Metrics
}

func New(store store.Store, h *hub.Hub, policyEngine *policy.Engine, files FileStore, cfg *config.Config, m *metrics.Metrics) *Service {
	return &Service{
		store:        store,
		hub:          h,
		policyEngine: policyEngine,
		files:        files,
		config:       cfg,
		metrics:      m,
	}
}

// Hub returns the connection registry the service delivers through.
func (s *Service) Hub() *hub.Hub {
	return s.hub
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
