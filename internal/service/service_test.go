package service

import (
	"context"
	"testing"

	"github.com/xiaot623/pingpong/internal/config"
	"github.com/xiaot623/pingpong/internal/domain"
	"github.com/xiaot623/pingpong/internal/hub"
	"github.com/xiaot623/pingpong/internal/metrics"
	"github.com/xiaot623/pingpong/internal/policy"
	"github.com/xiaot623/pingpong/internal/repository"
	"github.com/xiaot623/pingpong/internal/storage"
	"github.com/xiaot623/pingpong/tests/helpers"
)

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	cfg := config.Default()
	cfg.BcryptCost = 4
	cfg.UploadDir = t.TempDir()

	db := helpers.NewTestSQLiteStore(t)
	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	files, err := storage.NewDisk(cfg.UploadDir)
	if err != nil {
		t.Fatalf("NewDisk failed: %v", err)
	}
	return New(db, hub.NewHub(), policyEngine, files, cfg, metrics.New()), db
}

func assertKind(t *testing.T, err error, kind domain.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := domain.KindOf(err); got != kind {
		t.Fatalf("expected %s, got %s (%v)", kind, got, err)
	}
}
