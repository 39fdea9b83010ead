package handler

import (
	"net/http"
	"testing"

	customerapp "github.com/storefront/backend/internal/application/customer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerHandler_Me(t *testing.T) {
	f := newStorefrontFixture(t)
	f.as(f.user(t, "alice", "alice@example.com"))

	w := f.do(t, http.MethodGet, "/store/customers/me", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	me := decodeData[customerapp.CustomerResponse](t, w)
	assert.Equal(t, "alice@example.com", me.Email)
	assert.Equal(t, "B", me.Membership)

	w = f.do(t, http.MethodPatch, "/store/customers/me", map[string]any{
		"first_name": "Alice", "membership": "G",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	me = decodeData[customerapp.CustomerResponse](t, w)
	assert.Equal(t, "Alice", me.FirstName)
	assert.Equal(t, "B", me.Membership, "membership is staff only")
}

func TestCustomerHandler_UpdateMeEmailOfAnotherAccount(t *testing.T) {
	f := newStorefrontFixture(t)
	alice := f.user(t, "alice", "alice@example.com")
	bob := f.user(t, "bob", "bob@example.com")

	f.as(alice)
	w := f.do(t, http.MethodPatch, "/store/customers/me", map[string]any{"email": "BOB@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_EXISTS", errorCode(t, w))

	// bob can still get a profile and check out
	f.as(bob)
	w = f.do(t, http.MethodGet, "/store/customers/me", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "bob@example.com", decodeData[customerapp.CustomerResponse](t, w).Email)

	f.as(alice)
	w = f.do(t, http.MethodGet, "/store/customers/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice@example.com", decodeData[customerapp.CustomerResponse](t, w).Email)
}

func TestCustomerHandler_MeRequiresAuthentication(t *testing.T) {
	f := newStorefrontFixture(t)

	w := f.do(t, http.MethodGet, "/store/customers/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
