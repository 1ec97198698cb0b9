package service

import (
	"context"

	"github.com/dukerupert/julg/internal/domain"
	"github.com/dukerupert/julg/internal/validate"
)

// MemberService manages the member ledger built up by checkout.
type MemberService interface {
	ListMembers(ctx context.Context) ([]domain.Member, error)
	UpdateMemberStatus(ctx context.Context, email string, status domain.MemberStatus) (*domain.Member, error)
}

type memberService struct {
	repo     *Repository
	sessions SessionService
}

// NewMemberService creates a MemberService.
func NewMemberService(repo *Repository, sessions SessionService) MemberService {
	return &memberService{repo: repo, sessions: sessions}
}

func (s *memberService) ListMembers(ctx context.Context) ([]domain.Member, error) {
	if _, err := s.sessions.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.members(ctx, "MemberService.ListMembers")
}

func (s *memberService) UpdateMemberStatus(ctx context.Context, email string, status domain.MemberStatus) (*domain.Member, error) {
	const op = "MemberService.UpdateMemberStatus"

	if _, err := s.sessions.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := validate.Var(op, "status", string(status), "required,oneof=active inactive"); err != nil {
		return nil, err
	}

	defer s.repo.lock()()

	members, err := s.repo.members(ctx, op)
	if err != nil {
		return nil, err
	}

	for i := range members {
		if members[i].Email != email {
			continue
		}
		members[i].Status = status
		if err := s.repo.save(ctx, op, keyMembers, members); err != nil {
			return nil, err
		}
		member := members[i]
		return &member, nil
	}
	return nil, domain.ErrMemberNotFound
}
