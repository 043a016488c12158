package tools

import (
	"context"
	"testing"
)

func TestSignAndParseToken(t *testing.T) {
	token, err := SignToken("segredo", "uid-1", "tec1@oficina.com", 1)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	uid, email, err := ParseToken("segredo", token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if uid != "uid-1" || email != "tec1@oficina.com" {
		t.Fatalf("claims = (%q, %q)", uid, email)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := SignToken("segredo", "uid-1", "tec1@oficina.com", 1)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, _, err := ParseToken("outro-segredo", token); err == nil {
		t.Fatal("token assinado com outro segredo deveria falhar")
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, err := SignToken("segredo", "uid-1", "tec1@oficina.com", -1)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, _, err := ParseToken("segredo", token); err == nil {
		t.Fatal("token expirado deveria falhar")
	}
}

func TestLocalIdentityRoundTrip(t *testing.T) {
	id := LocalIdentity{Secret: "segredo"}

	token, err := SignToken("segredo", "uid-1", "tec1@oficina.com", 1)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	uid, email, err := id.VerifyToken(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if uid != "uid-1" || email != "tec1@oficina.com" {
		t.Fatalf("claims = (%q, %q)", uid, email)
	}

	newUID, err := id.CreateAccount(context.Background(), "x@y.com", "secret123")
	if err != nil || newUID == "" {
		t.Fatalf("create account: uid=%q err=%v", newUID, err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPasswordHash("secret123", hash) {
		t.Fatal("senha correta deveria bater")
	}
	if CheckPasswordHash("errada", hash) {
		t.Fatal("senha errada não deveria bater")
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.com", "tec.nico+1@oficina.com.br"}
	invalid := []string{"", "semarroba", "a@b", "@b.com"}

	for _, e := range valid {
		if !ValidateEmail(e) {
			t.Errorf("ValidateEmail(%q) = false, esperado true", e)
		}
	}
	for _, e := range invalid {
		if ValidateEmail(e) {
			t.Errorf("ValidateEmail(%q) = true, esperado false", e)
		}
	}
}
