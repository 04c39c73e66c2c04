package iocache

import (
	"github.com/huangsam/starsview/internal/contract"
	"github.com/huangsam/starsview/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetSnapshotStore implements the StoreManager interface.
func (m *MockStoreManager) GetSnapshotStore() contract.SnapshotStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.SnapshotStore)
	return store
}

// MockSnapshotStore is a mock implementation of SnapshotStore for testing.
type MockSnapshotStore struct {
	mock.Mock
}

var _ contract.SnapshotStore = &MockSnapshotStore{} // Compile-time check

// SaveSnapshot implements the SnapshotStore interface.
func (m *MockSnapshotStore) SaveSnapshot(meta schema.SnapshotRecord, aggregates []schema.ParentAggregate, totals []schema.ParentYearTotal) (int64, error) {
	args := m.Called(meta, aggregates, totals)
	return args.Get(0).(int64), args.Error(1)
}

// ListSnapshots implements the SnapshotStore interface.
func (m *MockSnapshotStore) ListSnapshots() ([]schema.SnapshotRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.SnapshotRecord)
	return records, args.Error(1)
}

// GetParentAggregates implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetParentAggregates(snapshotID int64) ([]schema.ParentAggregate, error) {
	args := m.Called(snapshotID)
	records, _ := args.Get(0).([]schema.ParentAggregate)
	return records, args.Error(1)
}

// GetParentYearTotals implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetParentYearTotals(snapshotID int64) ([]schema.ParentYearTotal, error) {
	args := m.Called(snapshotID)
	records, _ := args.Get(0).([]schema.ParentYearTotal)
	return records, args.Error(1)
}

// GetStatus implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetStatus() (schema.SnapshotStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.SnapshotStatus), args.Error(1)
}

// Clear implements the SnapshotStore interface.
func (m *MockSnapshotStore) Clear() error {
	args := m.Called()
	return args.Error(0)
}

// Close implements the SnapshotStore interface.
func (m *MockSnapshotStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
