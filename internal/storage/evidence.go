package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aquabill/aquabill/internal/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EvidenceStore keeps reading photo evidence. The billing engine stores the
// returned reference opaquely and never interprets the content.
type EvidenceStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

type localStore struct {
	baseDir string
	log     *zap.Logger
}

func NewLocalStore(cfg config.Config, log *zap.Logger) (EvidenceStore, error) {
	if err := os.MkdirAll(cfg.EvidenceDir, 0o755); err != nil {
		return nil, fmt.Errorf("create evidence dir: %w", err)
	}
	return &localStore{
		baseDir: cfg.EvidenceDir,
		log:     log.Named("storage.evidence"),
	}, nil
}

func (s *localStore) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	ext := filepath.Ext(filename)
	ref := uuid.NewString() + strings.ToLower(ext)

	path := filepath.Join(s.baseDir, ref)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create evidence file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write evidence file: %w", err)
	}

	s.log.Debug("evidence stored", zap.String("ref", ref))
	return ref, nil
}
