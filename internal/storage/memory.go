package storage

import (
	"context"
	"sync"

	"github.com/guttosm/voicetrade/internal/domain/models"
)

// MemoryRepository keeps the encoded record in process memory.
// It goes through the same codec as the SQL repository, so corrupt
// records can be simulated with SetRaw.
type MemoryRepository struct {
	mu  sync.Mutex
	raw []byte
	set bool
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) LoadTrades(_ context.Context) ([]models.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, nil
	}
	return DecodeTrades(m.raw)
}

func (m *MemoryRepository) SaveTrades(_ context.Context, trades []models.Trade) error {
	b, err := EncodeTrades(trades)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.raw, m.set = b, true
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) DeleteTrades(_ context.Context) error {
	m.mu.Lock()
	m.raw, m.set = nil, false
	m.mu.Unlock()
	return nil
}

// Raw returns the stored record and whether one exists.
func (m *MemoryRepository) Raw() ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.raw...), m.set
}

// SetRaw replaces the stored record verbatim.
func (m *MemoryRepository) SetRaw(b []byte) {
	m.mu.Lock()
	m.raw, m.set = append([]byte(nil), b...), true
	m.mu.Unlock()
}
