package tools

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go"
	fbauth "firebase.google.com/go/auth"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// Identity abstrai o provedor de identidade. A implementação padrão fala com
// o Firebase Auth; a local serve para dev e testes (tokens HS256 + bcrypt).
type Identity interface {
	// VerifyToken valida um bearer token e devolve (uid, email).
	VerifyToken(ctx context.Context, token string) (string, string, error)
	// CreateAccount registra a conta no provedor e devolve o uid.
	CreateAccount(ctx context.Context, email, password string) (string, error)
	// DeleteAccount remove a conta do provedor.
	DeleteAccount(ctx context.Context, uid string) error
	// SetRole grava o papel como claim customizada no provedor.
	SetRole(ctx context.Context, uid, role string) error
}

// FirebaseIdentity implementa Identity sobre o Firebase Admin SDK.
type FirebaseIdentity struct {
	client *fbauth.Client
}

func NewFirebaseIdentity(ctx context.Context, projectID, credentialsPath string) (*FirebaseIdentity, error) {
	conf := &firebase.Config{ProjectID: projectID}
	app, err := firebase.NewApp(ctx, conf, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}
	log.Printf("Firebase Auth conectado (projeto %s)", projectID)
	return &FirebaseIdentity{client: client}, nil
}

func (f *FirebaseIdentity) VerifyToken(ctx context.Context, token string) (string, string, error) {
	t, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", "", err
	}
	email, _ := t.Claims["email"].(string)
	return t.UID, email, nil
}

func (f *FirebaseIdentity) CreateAccount(ctx context.Context, email, password string) (string, error) {
	params := (&fbauth.UserToCreate{}).Email(email).Password(password)
	u, err := f.client.CreateUser(ctx, params)
	if err != nil {
		return "", err
	}
	return u.UID, nil
}

func (f *FirebaseIdentity) DeleteAccount(ctx context.Context, uid string) error {
	return f.client.DeleteUser(ctx, uid)
}

func (f *FirebaseIdentity) SetRole(ctx context.Context, uid, role string) error {
	return f.client.SetCustomUserClaims(ctx, uid, map[string]interface{}{"role": role})
}

// LocalIdentity é o provedor de dev/testes: uids aleatórios e tokens HS256
// emitidos pelo /login local. Senhas ficam (com bcrypt) na tabela de usuários,
// então Delete/SetRole não têm efeito colateral aqui.
type LocalIdentity struct {
	Secret string
}

func (l LocalIdentity) VerifyToken(_ context.Context, token string) (string, string, error) {
	return ParseToken(l.Secret, token)
}

func (l LocalIdentity) CreateAccount(_ context.Context, _, _ string) (string, error) {
	return uuid.NewString(), nil
}

func (l LocalIdentity) DeleteAccount(_ context.Context, _ string) error { return nil }

func (l LocalIdentity) SetRole(_ context.Context, _, _ string) error { return nil }
