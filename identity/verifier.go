// Package identity verifies externally-issued phone identity tokens. The
// verifier is constructed once in main and injected; a nil verifier is the
// documented disabled state and every caller fails closed on it.
package identity

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// ErrUnavailable is returned when verification is attempted without a
// configured verifier.
var ErrUnavailable = errors.New("identity verification service is not available")

// Claims is the resolved identity of a verified token.
type Claims struct {
	UID         string
	PhoneNumber string
}

type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Claims, error)
}

// FirebaseVerifier validates Firebase ID tokens issued by phone auth.
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier initializes the Firebase Admin SDK from a service
// account JSON blob (the FIREBASE_SERVICE_ACCOUNT env value).
func NewFirebaseVerifier(ctx context.Context, serviceAccountJSON []byte) (*FirebaseVerifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(serviceAccountJSON))
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Claims, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("verifying id token: %w", err)
	}

	phone, _ := token.Claims["phone_number"].(string)
	if phone == "" {
		return nil, errors.New("id token carries no phone number")
	}
	return &Claims{UID: token.UID, PhoneNumber: phone}, nil
}
