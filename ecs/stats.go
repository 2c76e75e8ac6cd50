package ecs

import (
	"reflect"
	"sort"
)

// StorageStats is a point-in-time summary of a Storage.
type StorageStats struct {
	TotalEntityCount   int
	ComponentTypeCount int
	ComponentBreakdown []ComponentStats
	EntitySetCount     int
	SingletonCount     int
	SingletonTypes     []string
	Version            uint64
}

// ComponentStats counts the entities carrying one component type.
type ComponentStats struct {
	Type        reflect.Type
	EntityCount int
}

// CollectStats gathers statistics about the storage contents.
func (s *Storage) CollectStats() StorageStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := StorageStats{
		TotalEntityCount: s.count,
		EntitySetCount:   len(s.sets),
		SingletonCount:   len(s.singletons),
		Version:          s.version,
	}

	for t, storage := range s.storages {
		if storage.Len() == 0 {
			continue
		}
		stats.ComponentBreakdown = append(stats.ComponentBreakdown, ComponentStats{
			Type:        t,
			EntityCount: storage.Len(),
		})
	}
	sort.Slice(stats.ComponentBreakdown, func(i, j int) bool {
		return stats.ComponentBreakdown[i].Type.String() < stats.ComponentBreakdown[j].Type.String()
	})
	stats.ComponentTypeCount = len(stats.ComponentBreakdown)

	for t := range s.singletons {
		stats.SingletonTypes = append(stats.SingletonTypes, t.String())
	}
	sort.Strings(stats.SingletonTypes)

	return stats
}
