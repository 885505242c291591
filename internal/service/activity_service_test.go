package service

import (
	"context"
	"errors"
	"testing"

	"github.com/yourorg/tenantcrm/internal/domain"
)

func TestActivityCreateStampsScope(t *testing.T) {
	repo := newMemActivities()
	s := NewActivityService(repo, nil, nil)
	grant := domain.Grant{TenantID: "tenant-1", UserID: "u-support", Role: domain.RoleSupport}

	a, err := s.Create(context.Background(), grant, ActivityInput{
		CustomerID: "c-1",
		Type:       "call",
		Subject:    "follow-up",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if a.TenantID != "tenant-1" || a.UserID != "u-support" {
		t.Fatalf("scope must come from the grant, got tenant=%q user=%q", a.TenantID, a.UserID)
	}
}

func TestActivityCreateValidation(t *testing.T) {
	repo := newMemActivities()
	s := NewActivityService(repo, nil, nil)
	grant := domain.Grant{TenantID: "tenant-1", UserID: "u-1", Role: domain.RoleSales}
	ctx := context.Background()

	cases := []ActivityInput{
		{Type: "call", Subject: "no customer"},
		{CustomerID: "c-1", Subject: "no type"},
		{CustomerID: "c-1", Type: "call"},
	}
	for i, in := range cases {
		if _, err := s.Create(ctx, grant, in); !errors.Is(err, domain.ErrBadRequest) {
			t.Errorf("case %d: expected ErrBadRequest, got %v", i, err)
		}
	}
	if len(repo.rows) != 0 {
		t.Fatalf("invalid input must not create rows")
	}
}

func TestActivityListFiltersByCustomer(t *testing.T) {
	repo := newMemActivities()
	s := NewActivityService(repo, nil, nil)
	grant := domain.Grant{TenantID: "tenant-1", UserID: "u-1", Role: domain.RoleAdmin}
	ctx := context.Background()

	if _, err := s.Create(ctx, grant, ActivityInput{CustomerID: "c-1", Type: "call", Subject: "a"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := s.Create(ctx, grant, ActivityInput{CustomerID: "c-2", Type: "email", Subject: "b"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	all, err := s.List(ctx, grant, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(all))
	}

	one, err := s.List(ctx, grant, "c-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(one) != 1 || one[0].CustomerID != "c-1" {
		t.Fatalf("expected only c-1's activity, got %d rows", len(one))
	}
}
