package routes

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanchitpandey/visitpass-api/identity"
	"github.com/sanchitpandey/visitpass-api/models"
)

func TestRegisterVisitor(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.register(validRegistration("+911234567890"), true, "")
	require.Equal(t, http.StatusCreated, w.Code)

	body := env.parse(w)
	require.Equal(t, true, body["success"])
	require.NotEmpty(t, body["token"])

	visitor := body["visitor"].(map[string]interface{})
	require.Equal(t, models.StatusOutside, visitor["status"])
	require.NotEmpty(t, visitor["qrCode"])

	user := body["user"].(map[string]interface{})
	require.Equal(t, models.RoleVisitor, user["role"])

	// The issued token immediately works on the visitor's own route.
	token := body["token"].(string)
	w = env.doJSON(http.MethodGet, "/api/visitors/my-info", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	info := env.parse(w)["data"].(map[string]interface{})
	require.Equal(t, "123456789012", info["aadhaarNumber"])
	require.NotEmpty(t, info["selfieUrl"])
}

func TestRegisterVisitorValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	t.Run("missing required field", func(t *testing.T) {
		fields := validRegistration("+911234567890")
		delete(fields, "officialToMeet")
		w := env.register(fields, true, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "required fields")
	})

	t.Run("missing selfie", func(t *testing.T) {
		w := env.register(validRegistration("+911234567890"), false, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "Selfie image is required")
	})

	t.Run("malformed aadhaar", func(t *testing.T) {
		fields := validRegistration("+911234567890")
		fields["aadhaarNumber"] = "12345"
		w := env.register(fields, true, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "Invalid Aadhaar number format")
	})

	t.Run("no mutation on failure", func(t *testing.T) {
		exists, err := env.store.VisitorExistsByAadhaar(context.Background(), "12345")
		require.NoError(t, err)
		require.False(t, exists)
	})
}

func TestRegisterVisitorConflicts(t *testing.T) {
	env := newTestEnv(t, nil)
	w := env.register(validRegistration("+911234567890"), true, "")
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("duplicate aadhaar", func(t *testing.T) {
		fields := validRegistration("+919999900000")
		fields["email"] = "other@example.com"
		w := env.register(fields, true, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "Aadhaar number is already registered")
	})

	t.Run("duplicate phone", func(t *testing.T) {
		fields := validRegistration("+911234567890")
		fields["aadhaarNumber"] = "999900001111"
		w := env.register(fields, true, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "phone number is already registered")
	})
}

func TestRegisterVisitorWithVerifier(t *testing.T) {
	verifier := stubVerifier{claims: &identity.Claims{UID: "fb-reg", PhoneNumber: "+917777777777"}}
	env := newTestEnv(t, verifier)

	t.Run("missing identity token", func(t *testing.T) {
		w := env.register(validRegistration(""), true, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("phone taken from verified token", func(t *testing.T) {
		w := env.register(validRegistration(""), true, "Bearer firebase-token")
		require.Equal(t, http.StatusCreated, w.Code)

		account, err := env.store.AccountByPhoneAndRole(context.Background(), "+917777777777", models.RoleVisitor)
		require.NoError(t, err)
		require.NotNil(t, account.FirebaseUID)
		require.Equal(t, "fb-reg", *account.FirebaseUID)
	})
}

func TestListVisitors(t *testing.T) {
	env := newTestEnv(t, nil)
	_, securityToken := env.addAccount(models.RoleSecurity, "guard-pass", true)
	_, visitorToken := env.addAccount(models.RoleVisitor, "", true)

	for i := 0; i < 12; i++ {
		env.seedVisitor(fmt.Sprintf("+9100000000%02d", i), fmt.Sprintf("1111222233%02d", i), fmt.Sprintf("QR-%02d", i))
	}

	t.Run("default pagination", func(t *testing.T) {
		w := env.doJSON(http.MethodGet, "/api/visitors", nil, securityToken)
		require.Equal(t, http.StatusOK, w.Code)
		body := env.parse(w)
		require.Equal(t, float64(10), body["count"])
		require.Equal(t, float64(2), body["totalPages"])
		require.Equal(t, float64(1), body["currentPage"])
	})

	t.Run("second page", func(t *testing.T) {
		w := env.doJSON(http.MethodGet, "/api/visitors?page=2&limit=10", nil, securityToken)
		require.Equal(t, http.StatusOK, w.Code)
		body := env.parse(w)
		require.Equal(t, float64(2), body["count"])
	})

	t.Run("status filter", func(t *testing.T) {
		w := env.doJSON(http.MethodGet, "/api/visitors?status=inside", nil, securityToken)
		require.Equal(t, http.StatusOK, w.Code)
		body := env.parse(w)
		require.Equal(t, float64(0), body["count"])
	})

	t.Run("bad date filter", func(t *testing.T) {
		w := env.doJSON(http.MethodGet, "/api/visitors?date=15-01-2026", nil, securityToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("visitor role forbidden", func(t *testing.T) {
		w := env.doJSON(http.MethodGet, "/api/visitors", nil, visitorToken)
		require.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestGetVisitorByID(t *testing.T) {
	env := newTestEnv(t, nil)
	_, securityToken := env.addAccount(models.RoleSecurity, "guard-pass", true)
	visitor := env.seedVisitor("+911234500002", "123456789012", "QR-GET")

	t.Run("found with history", func(t *testing.T) {
		w := env.doJSON(http.MethodPost, "/api/access/entry",
			map[string]string{"qrCodeData": "QR-GET"}, securityToken)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.doJSON(http.MethodGet, "/api/visitors/"+visitor.ID.String(), nil, securityToken)
		require.Equal(t, http.StatusOK, w.Code)
		data := env.parse(w)["data"].(map[string]interface{})
		history := data["visitHistory"].([]interface{})
		require.Len(t, history, 1)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := env.doJSON(http.MethodGet, "/api/visitors/not-a-uuid", nil, securityToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := env.doJSON(http.MethodGet, "/api/visitors/00000000-0000-0000-0000-000000000001", nil, securityToken)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

// Mirrors the registration-through-exit walkthrough the frontend performs.
func TestRegisterEntryExitFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	_, securityToken := env.addAccount(models.RoleSecurity, "guard-pass", true)

	w := env.register(validRegistration("+911234567890"), true, "")
	require.Equal(t, http.StatusCreated, w.Code)
	qr := env.parse(w)["visitor"].(map[string]interface{})["qrCode"].(string)

	w = env.doJSON(http.MethodPost, "/api/access/entry", map[string]string{"qrCodeData": qr}, securityToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.doJSON(http.MethodPost, "/api/access/entry", map[string]string{"qrCodeData": qr}, securityToken)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.doJSON(http.MethodPost, "/api/access/exit", map[string]string{"qrCodeData": qr}, securityToken)
	require.Equal(t, http.StatusOK, w.Code)

	data := env.parse(w)["data"].(map[string]interface{})
	visitor := data["visitor"].(map[string]interface{})
	require.Equal(t, models.StatusOutside, visitor["status"])
	visitLog := data["visitLog"].(map[string]interface{})
	require.NotNil(t, visitLog["exitTime"])
}
