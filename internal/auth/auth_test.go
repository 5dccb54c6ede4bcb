package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("password stored in the clear")
	}

	if !CheckPassword(hash, "correct horse battery staple") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tokens, err := NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	accountID := uuid.New()
	token, err := tokens.Issue(accountID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parsed, err := tokens.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed != accountID {
		t.Fatalf("subject mismatch: %s != %s", parsed, accountID)
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewTokenManager("secret-a", time.Hour)
	verifier, _ := NewTokenManager("secret-b", time.Hour)

	token, err := issuer.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := verifier.Parse(token); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
}

func TestTokenRejectsExpired(t *testing.T) {
	tokens, _ := NewTokenManager("test-secret", time.Hour)

	// Issue with a negative TTL manager sharing the secret.
	expired := &TokenManager{secret: []byte("test-secret"), ttl: -time.Hour}
	token, err := expired.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := tokens.Parse(token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour); err == nil {
		t.Fatal("empty secret accepted")
	}
}
