package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanchitpandey/visitpass-api/handlers"
	"github.com/sanchitpandey/visitpass-api/identity"
	"github.com/sanchitpandey/visitpass-api/models"
	"github.com/sanchitpandey/visitpass-api/storage"
	"github.com/sanchitpandey/visitpass-api/store"
	"github.com/sanchitpandey/visitpass-api/utils"
)

type stubVerifier struct {
	claims *identity.Claims
	err    error
}

func (s stubVerifier) Verify(_ context.Context, _ string) (*identity.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

type testEnv struct {
	t      *testing.T
	store  *store.MemoryStore
	router *gin.Engine
	secret []byte
}

// newTestEnv wires the full route table against the in-memory store. A nil
// verifier matches the unconfigured external-identity state.
func newTestEnv(t *testing.T, verifier identity.Verifier) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	secret := []byte("test-secret")
	dir := t.TempDir()
	photos, err := storage.NewLocalStore(dir)
	require.NoError(t, err)

	router := gin.New()
	Setup(router, Deps{
		Secret:    secret,
		Store:     st,
		Auth:      handlers.NewAuthHandler(st, secret, time.Hour, verifier),
		Visitors:  handlers.NewVisitorHandler(st, secret, time.Hour, verifier, utils.AadhaarVerifier{}, utils.IdentityQRGenerator{}, photos),
		Access:    handlers.NewAccessHandler(st),
		Reports:   handlers.NewReportHandler(st),
		UploadDir: dir,
	})
	return &testEnv{t: t, store: st, router: router, secret: secret}
}

func (e *testEnv) addAccount(role, password string, active bool) (*models.Account, string) {
	e.t.Helper()
	account := &models.Account{
		ID:        uuid.New(),
		Name:      "Test " + role,
		Email:     uuid.NewString() + "@example.com",
		Role:      role,
		IsActive:  active,
		CreatedAt: time.Now(),
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		require.NoError(e.t, err)
		account.PasswordHash = string(hash)
	}
	require.NoError(e.t, e.store.CreateAccount(context.Background(), account))

	token, err := utils.GenerateToken(e.secret, account.ID, role, time.Hour)
	require.NoError(e.t, err)
	return account, token
}

func (e *testEnv) seedVisitor(phone, aadhaar, qr string) *models.Visitor {
	e.t.Helper()
	now := time.Now()
	visitor := &models.Visitor{
		ID:            uuid.New(),
		Name:          "Seed Visitor",
		PhoneNumber:   phone,
		Email:         aadhaar + "@example.com",
		AadhaarNumber: aadhaar,
		Age:           40,
		Sex:           "M",
		Address:       "1 Seed Street",
		SelfieURL:     "/uploads/seed.jpg",
		QRCodeData:    qr,
		Status:        models.StatusOutside,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	account := &models.Account{
		ID:          uuid.New(),
		Name:        visitor.Name,
		Email:       visitor.Email,
		PhoneNumber: phone,
		Role:        models.RoleVisitor,
		VisitorID:   &visitor.ID,
		IsActive:    true,
		CreatedAt:   now,
	}
	require.NoError(e.t, e.store.CreateVisitorWithAccount(context.Background(), visitor, account))
	return visitor
}

func (e *testEnv) doJSON(method, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(e.t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) parse(w *httptest.ResponseRecorder) map[string]interface{} {
	e.t.Helper()
	var out map[string]interface{}
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// registrationForm builds the multipart body for /api/visitors/register.
func registrationForm(t *testing.T, fields map[string]string, withSelfie bool) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if withSelfie {
		part, err := writer.CreateFormFile("selfie", "selfie.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("fake-jpeg-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func (e *testEnv) register(fields map[string]string, withSelfie bool, authHeader string) *httptest.ResponseRecorder {
	e.t.Helper()
	body, contentType := registrationForm(e.t, fields, withSelfie)
	req := httptest.NewRequest(http.MethodPost, "/api/visitors/register", body)
	req.Header.Set("Content-Type", contentType)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func validRegistration(phone string) map[string]string {
	return map[string]string{
		"name":           "Asha Rao",
		"email":          "asha@example.com",
		"aadhaarNumber":  "123456789012",
		"age":            "34",
		"sex":            "F",
		"address":        "14 Hospital Road",
		"officialToMeet": "Dr. Mehta",
		"referredBy":     "Reception",
		"diseases":       "",
		"phone_number":   phone,
	}
}
