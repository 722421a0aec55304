package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"banklink/internal/audit"
	"banklink/internal/audit/store/memory"
)

type StoreSuite struct {
	suite.Suite
	store *memory.Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.store = memory.NewStore()
}

func (s *StoreSuite) entry(module, action string, at time.Time) audit.Entry {
	return audit.Entry{
		ID:        uuid.New(),
		Action:    action,
		Module:    module,
		CreatedAt: at,
	}
}

// ==== Append / List ====

func (s *StoreSuite) TestListFilters() {
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.Append(ctx, s.entry(audit.ModuleGateway, "api_request", base)))
	s.Require().NoError(s.store.Append(ctx, s.entry(audit.ModuleAccounts, "account_verified", base.Add(time.Hour))))
	s.Require().NoError(s.store.Append(ctx, s.entry(audit.ModuleAccounts, "account_linked", base.Add(2*time.Hour))))

	s.Run("no filters returns all, newest first", func() {
		entries, err := s.store.List(ctx, audit.Filters{}, 50, 0)
		s.Require().NoError(err)
		s.Require().Len(entries, 3)
		s.Equal("account_linked", entries[0].Action)
		s.Equal("api_request", entries[2].Action)
	})

	s.Run("module filter", func() {
		entries, err := s.store.List(ctx, audit.Filters{Module: audit.ModuleAccounts}, 50, 0)
		s.Require().NoError(err)
		s.Len(entries, 2)
	})

	s.Run("date range is inclusive on both ends", func() {
		from := base
		to := base.Add(time.Hour)
		entries, err := s.store.List(ctx, audit.Filters{DateFrom: &from, DateTo: &to}, 50, 0)
		s.Require().NoError(err)
		s.Require().Len(entries, 2)
		s.Equal("account_verified", entries[0].Action)
		s.Equal("api_request", entries[1].Action)
	})

	s.Run("limit and offset page through results", func() {
		entries, err := s.store.List(ctx, audit.Filters{}, 1, 1)
		s.Require().NoError(err)
		s.Require().Len(entries, 1)
		s.Equal("account_verified", entries[0].Action)
	})

	s.Run("offset past the end returns nothing", func() {
		entries, err := s.store.List(ctx, audit.Filters{}, 50, 10)
		s.Require().NoError(err)
		s.Empty(entries)
	})
}
