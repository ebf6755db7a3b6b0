package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/LouieCads/proofwork/internal/core/domain"
)

type stubRoleRepo struct {
	grants map[string]map[string]bool
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{grants: make(map[string]map[string]bool)}
}

func (r *stubRoleRepo) Grant(_ context.Context, identity, role string) error {
	if r.grants[identity] == nil {
		r.grants[identity] = make(map[string]bool)
	}
	r.grants[identity][role] = true
	return nil
}

func (r *stubRoleRepo) Has(_ context.Context, identity, role string) (bool, error) {
	return r.grants[identity][role], nil
}

func TestAccessService_SelfGrant(t *testing.T) {
	svc := NewAccessService(newStubRoleRepo(), zerolog.Nop())
	ctx := context.Background()

	for _, role := range []string{domain.RoleClient, domain.RoleFreelancer} {
		if err := svc.GrantSelfRole(ctx, "alice", role); err != nil {
			t.Fatalf("GrantSelfRole(%s) returned error: %v", role, err)
		}
		ok, err := svc.HasRole(ctx, "alice", role)
		if err != nil || !ok {
			t.Fatalf("expected alice to hold %s, ok=%v err=%v", role, ok, err)
		}
	}

	// An identity may hold both marketplace roles at once.
	if ok, _ := svc.HasRole(ctx, "alice", domain.RoleClient); !ok {
		t.Fatalf("client role lost after freelancer grant")
	}
}

func TestAccessService_SelfGrantIsIdempotent(t *testing.T) {
	svc := NewAccessService(newStubRoleRepo(), zerolog.Nop())
	ctx := context.Background()

	if err := svc.GrantSelfRole(ctx, "bob", domain.RoleFreelancer); err != nil {
		t.Fatalf("first grant failed: %v", err)
	}
	if err := svc.GrantSelfRole(ctx, "bob", domain.RoleFreelancer); err != nil {
		t.Fatalf("repeated grant must be a no-op, got %v", err)
	}
}

func TestAccessService_AdminNotSelfGrantable(t *testing.T) {
	svc := NewAccessService(newStubRoleRepo(), zerolog.Nop())

	err := svc.GrantSelfRole(context.Background(), "mallory", domain.RoleAdmin)
	if !errors.Is(err, domain.ErrRoleNotSelfGrantable) {
		t.Fatalf("expected ErrRoleNotSelfGrantable, got %v", err)
	}
	if ok, _ := svc.HasRole(context.Background(), "mallory", domain.RoleAdmin); ok {
		t.Fatalf("admin role must not be granted")
	}
}

func TestAccessService_EmptyIdentity(t *testing.T) {
	svc := NewAccessService(newStubRoleRepo(), zerolog.Nop())

	if err := svc.GrantSelfRole(context.Background(), "", domain.RoleClient); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty identity, got %v", err)
	}
}

func TestAccessService_Bootstrap(t *testing.T) {
	svc := NewAccessService(newStubRoleRepo(), zerolog.Nop())
	ctx := context.Background()

	if err := svc.Bootstrap(ctx, "root"); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if ok, _ := svc.HasRole(ctx, "root", domain.RoleAdmin); !ok {
		t.Fatalf("expected root to hold admin after bootstrap")
	}

	if err := svc.Bootstrap(ctx, ""); !errors.Is(err, domain.ErrEmptyField) {
		t.Fatalf("expected ErrEmptyField for empty bootstrap identity, got %v", err)
	}
}
