package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rgsq/rgsq-go/internal/model"
)

func TestRegister_DefaultsToMember(t *testing.T) {
	db := testDB(t)
	s := NewIdentityService(db)
	ctx := context.Background()

	user, err := s.Register(ctx, RegisterParams{
		Email:      "User@Example.com",
		FullName:   "Test User",
		Membership: "ordinary",
		Password:   "secret123",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.Email != "user@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if user.Role != model.RoleMember {
		t.Errorf("role = %q, want member", user.Role)
	}
	if !user.IsActive {
		t.Error("new account should be active")
	}
	if user.PasswordHash == "secret123" || user.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
}

func TestRegister_DuplicateEmailCaseInsensitive(t *testing.T) {
	db := testDB(t)
	s := NewIdentityService(db)
	ctx := context.Background()

	if _, err := s.Register(ctx, RegisterParams{Email: "dup@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("first Register error: %v", err)
	}

	_, err := s.Register(ctx, RegisterParams{Email: "DUP@Example.COM", Password: "other456"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestAuthenticate_Success(t *testing.T) {
	db := testDB(t)
	s := NewIdentityService(db)
	ctx := context.Background()

	if _, err := s.Register(ctx, RegisterParams{Email: "user@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	user, err := s.Authenticate(ctx, "USER@example.com", "secret123")
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if user.Email != "user@example.com" {
		t.Errorf("authenticated wrong user: %q", user.Email)
	}
}

func TestAuthenticate_WrongPasswordAndMissingUserIndistinguishable(t *testing.T) {
	db := testDB(t)
	s := NewIdentityService(db)
	ctx := context.Background()

	if _, err := s.Register(ctx, RegisterParams{Email: "user@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, errWrongPass := s.Authenticate(ctx, "user@example.com", "nope")
	_, errNoUser := s.Authenticate(ctx, "ghost@example.com", "secret123")

	if !errors.Is(errWrongPass, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", errWrongPass)
	}
	if !errors.Is(errNoUser, ErrInvalidCredentials) {
		t.Errorf("missing user err = %v, want ErrInvalidCredentials", errNoUser)
	}
	if errWrongPass.Error() != errNoUser.Error() {
		t.Error("wrong-password and no-such-user must be indistinguishable")
	}
}

func TestAuthenticate_DisabledAccount(t *testing.T) {
	db := testDB(t)
	s := NewIdentityService(db)
	ctx := context.Background()

	user, err := s.Register(ctx, RegisterParams{Email: "user@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if _, err := db.Exec(`UPDATE users SET is_active = 0 WHERE id = ?`, user.ID); err != nil {
		t.Fatalf("disabling account: %v", err)
	}

	if _, err := s.Authenticate(ctx, "user@example.com", "secret123"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("err = %v, want ErrAccountDisabled", err)
	}
}

func TestFindByID(t *testing.T) {
	db := testDB(t)
	s := NewIdentityService(db)
	ctx := context.Background()

	user, err := s.Register(ctx, RegisterParams{Email: "user@example.com", Password: "secret123", Role: model.RoleStaff})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	found, err := s.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if found.Role != model.RoleStaff {
		t.Errorf("role = %q, want staff", found.Role)
	}

	if _, err := s.FindByID(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
