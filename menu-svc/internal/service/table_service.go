package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"qrmenu/menu-svc/internal/domain"
)

type TableService struct {
	repo  TableRepository
	cache MenuCache
	qr    QRGenerator
}

func NewTableService(repo TableRepository, cache MenuCache, qr QRGenerator) *TableService {
	return &TableService{repo: repo, cache: cache, qr: qr}
}

// newToken issues a random v4 uuid: 122 bits from crypto/rand.
func newToken() string {
	return uuid.NewString()
}

// Generate appends n tables after the owner's highest table number. The
// numbering is computed inside the insert transaction, not from a value the
// client read earlier.
func (s *TableService) Generate(ctx context.Context, ownerID string, n int) ([]domain.Table, error) {
	if err := validate(domain.GenerateTablesInput{Count: n}); err != nil {
		return nil, err
	}

	tables, err := s.repo.GenerateTables(ctx, ownerID, n, newToken)
	if err != nil {
		return nil, err
	}

	zap.L().Info("tables generated",
		zap.String("owner_id", ownerID),
		zap.Int("count", len(tables)),
	)
	return tables, nil
}

func (s *TableService) List(ctx context.Context, ownerID string) ([]domain.Table, error) {
	return s.repo.ListTables(ctx, ownerID)
}

// Delete detaches the table from its orders before removing it, so order
// history stays readable by table number.
func (s *TableService) Delete(ctx context.Context, ownerID, id string) error {
	table, err := s.repo.DeleteTable(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateToken(ctx, ownerID, table.QRToken); err != nil {
			zap.L().Warn("menu cache invalidation failed", zap.String("table_id", id), zap.Error(err))
		}
	}
	return nil
}

func (s *TableService) QRCode(ctx context.Context, ownerID, id string) ([]byte, error) {
	table, err := s.repo.GetTable(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	png, err := s.qr.Generate(table.QRToken)
	if err != nil {
		return nil, fmt.Errorf("generate qr code: %w", err)
	}
	return png, nil
}
