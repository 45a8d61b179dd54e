package services

import (
	"context"

	"nestwatch/filter"
	"nestwatch/models"
	"nestwatch/storage"
)

// SearchService serves the interactive search path. It runs the same
// predicate the alert sweep uses, so a property that matches live will
// also alert when it is created, and vice versa.
type SearchService struct {
	store storage.Store
}

func NewSearchService(store storage.Store) *SearchService {
	return &SearchService{store: store}
}

// Search returns all properties matching the criteria, newest first.
// No matches is a valid empty result, never an error.
func (s *SearchService) Search(ctx context.Context, criteria *models.FilterCriteria) ([]models.Property, error) {
	properties, err := s.store.ListProperties(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]models.Property, 0, len(properties))
	for i := range properties {
		if filter.Matches(&properties[i], criteria) {
			matched = append(matched, properties[i])
		}
	}
	return matched, nil
}
