package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tanushree1025/DESIGN-THEETA/internal/core/domain"
)

func TestVerifyClassifiesFailures(t *testing.T) {
	alice := testUser("alice", domain.RoleClient)
	ghost := testUser("ghost", domain.RoleClient)
	tokens := NewTokenService("test-secret", time.Hour, time.Minute)
	dir := newStubUserDirectory(alice)
	v := NewCredentialVerifier(testLogger(), tokens, dir, time.Second)

	ghostToken, err := tokens.IssueToken(ghost)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	cases := []struct {
		name       string
		credential string
		want       error
	}{
		{"empty credential", "", domain.ErrTokenMissing},
		{"malformed credential", "xxx.yyy.zzz", domain.ErrTokenInvalid},
		{"token for unknown user", ghostToken, domain.ErrUnknownUser},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := v.Verify(context.Background(), tc.credential); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestVerifyResolvesStoredIdentity(t *testing.T) {
	alice := testUser("alice", domain.RoleDesigner)
	tokens := NewTokenService("test-secret", time.Hour, time.Minute)
	dir := newStubUserDirectory(alice)
	v := NewCredentialVerifier(testLogger(), tokens, dir, time.Second)

	token, err := tokens.IssueToken(alice)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	user, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if user.ID != alice.ID || user.Role != domain.RoleDesigner {
		t.Fatalf("resolved wrong identity: %+v", user)
	}
}

func TestVerifyDirectoryOutageIsUnknownUser(t *testing.T) {
	alice := testUser("alice", domain.RoleClient)
	tokens := NewTokenService("test-secret", time.Hour, time.Minute)
	dir := newStubUserDirectory(alice)
	dir.err = errors.New("connection refused")
	v := NewCredentialVerifier(testLogger(), tokens, dir, time.Second)

	token, err := tokens.IssueToken(alice)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := v.Verify(context.Background(), token); !errors.Is(err, domain.ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser on directory outage, got %v", err)
	}
}
