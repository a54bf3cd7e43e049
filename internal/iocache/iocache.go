// Package iocache persists search responses and report run history.
package iocache

import (
	"sync"

	"github.com/jirametrics/jirametrics/internal/contract"
)

// StoreManager holds the search cache and run history stores.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	search       contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &StoreManager{} // Compile-time check

// GetSearchStore returns the search CacheStore, or nil when caching is not initialized.
func (mgr *StoreManager) GetSearchStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.search
}

// GetHistoryStore returns the HistoryStore, or nil when tracking is not initialized.
func (mgr *StoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
