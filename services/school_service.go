// services/school_service.go
package services

import (
	"context"
	"fmt"

	"github.com/gewnthar/wiscflow/logger"
	"github.com/gewnthar/wiscflow/models"
)

// DefaultSchools is the institution's school and college list.
var DefaultSchools = []string{
	"Agricultural & Life Sciences, College of",
	"Arts, Division of the",
	"Business, School of",
	"Computer Data & Information Sciences, School of",
	"Continuing Studies, Division of",
	"Education, School of",
	"Engineering, College of",
	"Environmental Studies, Nelson Institute for",
	"Graduate School",
	"Human Ecology, School of",
	"Information School",
	"International Division",
	"Journalism and Mass Communication, School of",
	"Language Institute",
	"Law School",
	"Letters & Science, College of",
	"Medicine and Public Health, School of",
	"Music, School of",
	"Nursing, School of",
	"Pharmacy, School of",
	"Public Affairs, School of",
	"Social Work, School of",
	"Veterinary Medicine, School of",
}

type SchoolStore interface {
	UpsertSchool(ctx context.Context, name string) (string, error)
	CountSchools(ctx context.Context) (int, error)
}

type SchoolService struct {
	store SchoolStore
	names []string
	log   *logger.Logger
}

// NewSchoolService seeds names, or DefaultSchools when names is empty.
func NewSchoolService(store SchoolStore, names []string, log *logger.Logger) *SchoolService {
	if log == nil {
		log = logger.Nop()
	}
	if len(names) == 0 {
		names = DefaultSchools
	}
	return &SchoolService{store: store, names: names, log: log}
}

// SeedSchools upserts every school by name. Safe to re-run.
func (s *SchoolService) SeedSchools(ctx context.Context) (models.SeedReport, error) {
	s.log.Info("seeding schools", "count", len(s.names))
	for _, name := range s.names {
		if _, err := s.store.UpsertSchool(ctx, name); err != nil {
			return models.SeedReport{}, fmt.Errorf("failed to seed school %q: %w", name, err)
		}
	}
	total, err := s.store.CountSchools(ctx)
	if err != nil {
		return models.SeedReport{}, err
	}
	s.log.Info("schools seeded", "total", total, "defined", len(s.names))
	return models.SeedReport{Defined: len(s.names), Total: total}, nil
}
