package routes

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanchitpandey/visitpass-api/models"
)

func TestEntryAndExit(t *testing.T) {
	env := newTestEnv(t, nil)
	_, securityToken := env.addAccount(models.RoleSecurity, "guard-pass", true)
	visitor := env.seedVisitor("+911234500000", "123456789012", "QR-ACCESS")

	t.Run("entry", func(t *testing.T) {
		w := env.doJSON(http.MethodPost, "/api/access/entry",
			map[string]string{"qrCodeData": "QR-ACCESS", "purpose": "Consultation"}, securityToken)
		require.Equal(t, http.StatusOK, w.Code)

		got, err := env.store.VisitorByID(context.Background(), visitor.ID)
		require.NoError(t, err)
		require.Equal(t, models.StatusInside, got.Status)

		history, err := env.store.VisitHistory(context.Background(), visitor.ID, 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
		require.Equal(t, "Consultation", history[0].Purpose)
		require.Nil(t, history[0].ExitTime)
	})

	t.Run("entry while inside conflicts", func(t *testing.T) {
		w := env.doJSON(http.MethodPost, "/api/access/entry",
			map[string]string{"qrCodeData": "QR-ACCESS"}, securityToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "already inside")

		history, err := env.store.VisitHistory(context.Background(), visitor.ID, 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
	})

	t.Run("exit", func(t *testing.T) {
		w := env.doJSON(http.MethodPost, "/api/access/exit",
			map[string]string{"qrCodeData": "QR-ACCESS"}, securityToken)
		require.Equal(t, http.StatusOK, w.Code)

		got, err := env.store.VisitorByID(context.Background(), visitor.ID)
		require.NoError(t, err)
		require.Equal(t, models.StatusOutside, got.Status)

		history, err := env.store.VisitHistory(context.Background(), visitor.ID, 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
		require.NotNil(t, history[0].ExitTime)
		require.True(t, history[0].ExitTime.After(*history[0].EntryTime))
	})

	t.Run("exit while outside conflicts", func(t *testing.T) {
		w := env.doJSON(http.MethodPost, "/api/access/exit",
			map[string]string{"qrCodeData": "QR-ACCESS"}, securityToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "not inside")
	})
}

func TestEntryDefaultsPurpose(t *testing.T) {
	env := newTestEnv(t, nil)
	_, securityToken := env.addAccount(models.RoleSecurity, "guard-pass", true)
	visitor := env.seedVisitor("+911234500001", "222256789012", "QR-PURPOSE")

	w := env.doJSON(http.MethodPost, "/api/access/entry",
		map[string]string{"qrCodeData": "QR-PURPOSE"}, securityToken)
	require.Equal(t, http.StatusOK, w.Code)

	history, err := env.store.VisitHistory(context.Background(), visitor.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "General visit", history[0].Purpose)
}

func TestAccessErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	_, securityToken := env.addAccount(models.RoleSecurity, "guard-pass", true)
	_, visitorToken := env.addAccount(models.RoleVisitor, "", true)

	t.Run("unknown QR token", func(t *testing.T) {
		w := env.doJSON(http.MethodPost, "/api/access/entry",
			map[string]string{"qrCodeData": "QR-MISSING"}, securityToken)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing QR token", func(t *testing.T) {
		w := env.doJSON(http.MethodPost, "/api/access/entry", map[string]string{}, securityToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("visitor role forbidden", func(t *testing.T) {
		w := env.doJSON(http.MethodPost, "/api/access/entry",
			map[string]string{"qrCodeData": "QR-X"}, visitorToken)
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := env.doJSON(http.MethodPost, "/api/access/entry",
			map[string]string{"qrCodeData": "QR-X"}, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
