package utils

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTokenRoundTrip(t *testing.T) {
	SetSecret("test-secret")

	userID := primitive.NewObjectID()
	token, err := GenerateToken(userID, "staff")
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() failed: %v", err)
	}
	if claims.UserID != userID.Hex() {
		t.Errorf("claims.UserID = %s, want %s", claims.UserID, userID.Hex())
	}
	if claims.Role != "staff" {
		t.Errorf("claims.Role = %s, want staff", claims.Role)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	SetSecret("secret-a")
	token, err := GenerateToken(primitive.NewObjectID(), "member")
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	SetSecret("secret-b")
	if _, err := ValidateToken(token); err == nil {
		t.Error("token signed with a different secret should not validate")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	SetSecret("test-secret")
	if _, err := ValidateToken("not.a.token"); err == nil {
		t.Error("garbage token should not validate")
	}
}
