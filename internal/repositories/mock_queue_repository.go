package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gympulse/gym-notify/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockQueueRepository is an in-memory QueueRepository for tests. It mirrors
// the contract of the Mongo implementation: write-once terminal marking and
// a capped, terminal-only retention delete.
type MockQueueRepository struct {
	mu      sync.Mutex
	records map[string]*models.NotificationRecord

	// MarkErr, when set, makes MarkProcessed fail (write-back failure path).
	MarkErr error
	// MarkCalls counts MarkProcessed invocations, including failed ones.
	MarkCalls int
}

// NewMockQueueRepository creates an empty MockQueueRepository
func NewMockQueueRepository() *MockQueueRepository {
	return &MockQueueRepository{records: make(map[string]*models.NotificationRecord)}
}

// Seed stores a record directly, assigning an id and timestamp when absent,
// and returns the record id.
func (m *MockQueueRepository) Seed(record *models.NotificationRecord) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	clone := *record
	m.records[record.ID.Hex()] = &clone
	return record.ID.Hex()
}

func (m *MockQueueRepository) Insert(_ context.Context, record *models.NotificationRecord) (string, error) {
	record.ID = primitive.NewObjectID()
	record.CreatedAt = time.Now()
	record.Processed = false
	record.ProcessedAt = nil
	record.Success = false
	record.Result = ""

	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *record
	m.records[record.ID.Hex()] = &clone
	return record.ID.Hex(), nil
}

func (m *MockQueueRepository) GetByID(_ context.Context, id string) (*models.NotificationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	clone := *record
	return &clone, nil
}

func (m *MockQueueRepository) FetchUnprocessed(_ context.Context, limit int64) ([]models.NotificationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.NotificationRecord
	for _, record := range m.sortedLocked() {
		if record.Processed {
			continue
		}
		out = append(out, *record)
		if int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockQueueRepository) MarkProcessed(_ context.Context, id string, success bool, result string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.MarkCalls++
	if m.MarkErr != nil {
		return m.MarkErr
	}

	record, ok := m.records[id]
	if !ok {
		return ErrRecordNotFound
	}
	if record.Processed {
		return ErrAlreadyProcessed
	}

	now := time.Now()
	record.Processed = true
	record.ProcessedAt = &now
	record.Success = success
	record.Result = result
	return nil
}

func (m *MockQueueRepository) DeleteProcessedBefore(_ context.Context, cutoff time.Time, limit int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for _, record := range m.sortedLocked() {
		if deleted >= limit {
			break
		}
		if !record.Processed || !record.CreatedAt.Before(cutoff) {
			continue
		}
		delete(m.records, record.ID.Hex())
		deleted++
	}
	return deleted, nil
}

// All returns a snapshot of every stored record, oldest first.
func (m *MockQueueRepository) All() []models.NotificationRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.NotificationRecord
	for _, record := range m.sortedLocked() {
		out = append(out, *record)
	}
	return out
}

func (m *MockQueueRepository) sortedLocked() []*models.NotificationRecord {
	records := make([]*models.NotificationRecord, 0, len(m.records))
	for _, record := range m.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records
}
