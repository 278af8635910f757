package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"rateio/internal/core"
	"rateio/internal/log"
	"rateio/internal/storage"
)

// Defaults seeds new people and accounts with configured shares.
type Defaults struct {
	PersonShare    decimal.Decimal
	SplitPrimary   decimal.Decimal
	SplitSecondary decimal.Decimal
}

// DirectoryService manages people and accounts.
type DirectoryService struct {
	repo      storage.Repository
	defaults  Defaults
	dashboard Invalidator
	logger    *log.Logger
}

func NewDirectoryService(repo storage.Repository, defaults Defaults, dashboard Invalidator, logger *log.Logger) *DirectoryService {
	return &DirectoryService{
		repo:      repo,
		defaults:  defaults,
		dashboard: dashboard,
		logger:    logger.WithComponent(log.ComponentStorage),
	}
}

func (s *DirectoryService) invalidate() {
	if s.dashboard != nil {
		s.dashboard.Invalidate()
	}
}

func normalizePerson(p *core.Person) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
}

func (s *DirectoryService) ListPeople(ctx context.Context) ([]core.Person, error) {
	return s.repo.ListPeople(ctx)
}

func (s *DirectoryService) GetPerson(ctx context.Context, id int64) (core.Person, error) {
	return s.repo.GetPerson(ctx, id)
}

func (s *DirectoryService) CreatePerson(ctx context.Context, patch core.PersonPatch) (core.Person, error) {
	p := core.Person{DefaultShare: s.defaults.PersonShare, Active: true}
	patch.Apply(&p)
	normalizePerson(&p)
	if err := p.Validate(); err != nil {
		return core.Person{}, err
	}
	if err := s.repo.CreatePerson(ctx, &p); err != nil {
		return core.Person{}, err
	}
	s.logger.InfoContext(ctx, "Person created", "person_id", p.ID)
	return p, nil
}

func (s *DirectoryService) UpdatePerson(ctx context.Context, id int64, patch core.PersonPatch) (core.Person, error) {
	var updated core.Person
	err := s.repo.InTx(ctx, func(l storage.Ledger) error {
		p, err := l.GetPerson(ctx, id)
		if err != nil {
			return err
		}
		patch.Apply(&p)
		normalizePerson(&p)
		if err := p.Validate(); err != nil {
			return err
		}
		if err := l.UpdatePerson(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return core.Person{}, fmt.Errorf("update person %d: %w", id, err)
	}
	s.invalidate()
	return updated, nil
}

func (s *DirectoryService) DeletePerson(ctx context.Context, id int64) error {
	if err := s.repo.DeletePerson(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *DirectoryService) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return s.repo.ListAccounts(ctx)
}

func (s *DirectoryService) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	return s.repo.GetAccount(ctx, id)
}

func (s *DirectoryService) CreateAccount(ctx context.Context, patch core.AccountPatch) (core.Account, error) {
	a := core.Account{
		DefaultSplitPrimary:   s.defaults.SplitPrimary,
		DefaultSplitSecondary: s.defaults.SplitSecondary,
	}
	patch.Apply(&a)
	a.Name = strings.TrimSpace(a.Name)
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := s.repo.CreateAccount(ctx, &a); err != nil {
		return core.Account{}, err
	}
	s.logger.InfoContext(ctx, "Account created", log.FieldAccountID, a.ID)
	return a, nil
}

func (s *DirectoryService) UpdateAccount(ctx context.Context, id int64, patch core.AccountPatch) (core.Account, error) {
	var updated core.Account
	err := s.repo.InTx(ctx, func(l storage.Ledger) error {
		a, err := l.GetAccount(ctx, id)
		if err != nil {
			return err
		}
		patch.Apply(&a)
		a.Name = strings.TrimSpace(a.Name)
		if err := a.Validate(); err != nil {
			return err
		}
		if err := l.UpdateAccount(ctx, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return core.Account{}, fmt.Errorf("update account %d: %w", id, err)
	}
	s.invalidate()
	return updated, nil
}

func (s *DirectoryService) DeleteAccount(ctx context.Context, id int64) error {
	if err := s.repo.DeleteAccount(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}
