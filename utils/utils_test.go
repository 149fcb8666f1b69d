package utils

import (
	"errors"
	"testing"
	"time"

	"vidbatch/models"
)

var testSecret = []byte("test-secret-key-for-jwt-signing-at-least-32-bytes-long")

func TestTokenRoundTrip(t *testing.T) {
	claims := &models.APIClaims{
		Issuer:    "vidbatch-ops",
		Subject:   "operator",
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
	token, err := CreateAPIToken(claims, testSecret)
	if err != nil {
		t.Fatalf("Failed to create token: %v", err)
	}

	parsed, err := VerifyAPIToken(token, VerifyConfig{SecretKey: testSecret, ExpectedIssuer: "vidbatch-ops"})
	if err != nil {
		t.Fatalf("Failed to verify token: %v", err)
	}
	if parsed.Subject != "operator" {
		t.Errorf("Expected subject operator, got %s", parsed.Subject)
	}
}

func TestTokenRejections(t *testing.T) {
	expired, _ := CreateAPIToken(&models.APIClaims{ExpiresAt: time.Now().Add(-time.Hour).Unix()}, testSecret)
	if _, err := VerifyAPIToken(expired, VerifyConfig{SecretKey: testSecret}); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}

	future, _ := CreateAPIToken(&models.APIClaims{IssuedAt: time.Now().Add(time.Hour).Unix()}, testSecret)
	if _, err := VerifyAPIToken(future, VerifyConfig{SecretKey: testSecret}); !errors.Is(err, ErrTokenNotYetValid) {
		t.Errorf("Expected ErrTokenNotYetValid, got %v", err)
	}

	other, _ := CreateAPIToken(&models.APIClaims{Subject: "x"}, []byte("another-secret-that-is-also-32-bytes-long!"))
	if _, err := VerifyAPIToken(other, VerifyConfig{SecretKey: testSecret}); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Expected ErrInvalidSignature, got %v", err)
	}

	issued, _ := CreateAPIToken(&models.APIClaims{Issuer: "someone"}, testSecret)
	if _, err := VerifyAPIToken(issued, VerifyConfig{SecretKey: testSecret, ExpectedIssuer: "vidbatch-ops"}); !errors.Is(err, ErrInvalidIssuer) {
		t.Errorf("Expected ErrInvalidIssuer, got %v", err)
	}

	if _, err := VerifyAPIToken("not-a-token", VerifyConfig{SecretKey: testSecret}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateDestination(t *testing.T) {
	valid := []models.Destination{
		{Type: "local", Settings: map[string]string{"baseDir": "/srv"}},
		{Type: "s3", Settings: map[string]string{"accessKey": "a", "secretKey": "s", "region": "eu-west-1", "bucket": "b"}},
		{Type: "gcs", Settings: map[string]string{"credentialsJSON": "e30=", "bucket": "b"}},
		{Type: "sftp", Settings: map[string]string{"host": "h", "user": "u", "remoteDir": "/up", "password": "p"}},
	}
	for _, d := range valid {
		if err := ValidateDestination(d); err != nil {
			t.Errorf("%s should be valid: %v", d.Type, err)
		}
	}

	invalid := []models.Destination{
		{Type: "ftp"},
		{Type: "local"},
		{Type: "sftp", Settings: map[string]string{"host": "h", "user": "u", "remoteDir": "/up"}},
	}
	for _, d := range invalid {
		if err := ValidateDestination(d); err == nil {
			t.Errorf("%s %v should be rejected", d.Type, d.Settings)
		}
	}
}

func TestIDs(t *testing.T) {
	a, b := NewBatchID(), NewBatchID()
	if a == b {
		t.Error("Batch ids should be unique")
	}
	if len(a) != 36 {
		t.Errorf("Expected uuid string, got %q", a)
	}
	hex, err := GenerateRandomHex(8)
	if err != nil || len(hex) != 16 {
		t.Errorf("Expected 16 hex chars, got %q (%v)", hex, err)
	}
}
