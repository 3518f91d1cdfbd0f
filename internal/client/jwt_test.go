package client

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func createTestToken(claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	// ParseUnverified doesn't check signatures
	tokenString, _ := token.SigningString()
	return tokenString + ".fake_signature"
}

func tokenExpiringAt(exp time.Time) string {
	return createTestToken(jwt.MapClaims{
		"user_id": 1,
		"exp":     float64(exp.Unix()),
	})
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Unix(1_900_000_000, 0)

	got, ok, err := TokenExpiry(tokenExpiringAt(exp))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ok {
		t.Fatal("expected exp claim to be found")
	}
	if !got.Equal(exp) {
		t.Errorf("expected %v, got %v", exp, got)
	}
}

func TestTokenExpiry_NoExpClaim(t *testing.T) {
	_, ok, err := TokenExpiry(createTestToken(jwt.MapClaims{"user_id": 1}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok {
		t.Error("expected no exp claim")
	}
}

func TestExpiresWithin(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)

	tests := []struct {
		name     string
		token    string
		expected bool
	}{
		{
			name:     "expires in an hour",
			token:    tokenExpiringAt(now.Add(time.Hour)),
			expected: false,
		},
		{
			name:     "expires just outside the window",
			token:    tokenExpiringAt(now.Add(RefreshWindow + time.Second)),
			expected: false,
		},
		{
			name:     "expires exactly at the window edge",
			token:    tokenExpiringAt(now.Add(RefreshWindow)),
			expected: false,
		},
		{
			name:     "expires in 60 seconds",
			token:    tokenExpiringAt(now.Add(60 * time.Second)),
			expected: true,
		},
		{
			name:     "already expired",
			token:    tokenExpiringAt(now.Add(-time.Hour)),
			expected: true,
		},
		{
			name:     "malformed token",
			token:    "not-a-jwt",
			expected: true,
		},
		{
			name:     "garbage payload segment",
			token:    "aaa.!!!.bbb",
			expected: true,
		},
		{
			name:     "empty token",
			token:    "",
			expected: true,
		},
		{
			name:     "no exp claim",
			token:    createTestToken(jwt.MapClaims{"user_id": 1}),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExpiresWithin(tt.token, now, RefreshWindow)
			if result != tt.expected {
				t.Errorf("ExpiresWithin() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)

	if IsExpired(tokenExpiringAt(now.Add(time.Minute)), now) {
		t.Error("expected token expiring in a minute to not be expired")
	}
	if !IsExpired(tokenExpiringAt(now.Add(-time.Second)), now) {
		t.Error("expected token to be expired")
	}
	if !IsExpired(tokenExpiringAt(now), now) {
		t.Error("expected token expiring now to be expired")
	}
	if !IsExpired("garbage", now) {
		t.Error("expected malformed token to be treated as expired")
	}
}
