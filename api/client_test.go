package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/lightingmap/go-client/api"
	clienterrors "github.com/lightingmap/go-client/internal/errors"
	"github.com/lightingmap/go-client/internal/utils"
	"github.com/lightingmap/go-client/session"
	"github.com/lightingmap/go-client/session/storagefakes"
	"github.com/lightingmap/go-client/token/refresh"
	"github.com/lightingmap/go-client/users"
)

const (
	testUserEmail = "mario.rossi@example.com"
	testPassword  = "password123"
)

func makeToken(t *testing.T, exp time.Time) string {
	t.Helper()
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestAuthClientLoginSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		require.Equal(t, testUserEmail, creds["email"])
		require.Equal(t, testPassword, creds["password"])

		writeJSON(t, w, http.StatusOK, map[string]any{
			"user":  &users.User{ID: "user-1", Name: "Mario", Surname: "Rossi", Email: testUserEmail},
			"token": "aaa.bbb.ccc",
		})
	}))
	defer server.Close()

	client := api.NewAuthClient(server.URL)
	user, accessToken, err := client.Login(context.Background(), testUserEmail, testPassword)
	require.NoError(t, err)
	require.Equal(t, "user-1", user.ID)
	require.Equal(t, "aaa.bbb.ccc", accessToken)
}

func TestAuthClientLoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"message": "wrong email or password"})
	}))
	defer server.Close()

	client := api.NewAuthClient(server.URL)
	_, _, err := client.Login(context.Background(), testUserEmail, "wrong")
	require.ErrorIs(t, err, clienterrors.ErrInvalidCredentials)
	require.Contains(t, err.Error(), "wrong email or password")
}

func TestAuthClientLoginMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"unexpected": "shape"})
	}))
	defer server.Close()

	client := api.NewAuthClient(server.URL)
	_, _, err := client.Login(context.Background(), testUserEmail, testPassword)
	require.ErrorIs(t, err, clienterrors.ErrMalformedResponse)
}

func TestAuthClientRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/users/refresh-token", r.URL.Path)
		require.Equal(t, "Bearer current.access.token", r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, map[string]string{"token": "new.access.token"})
	}))
	defer server.Close()

	client := api.NewAuthClient(server.URL)
	newToken, err := client.RefreshToken(context.Background(), "current.access.token")
	require.NoError(t, err)
	require.Equal(t, "new.access.token", newToken)
}

func TestAuthClientRefreshTokenMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"unexpected": "shape"})
	}))
	defer server.Close()

	client := api.NewAuthClient(server.URL)
	_, err := client.RefreshToken(context.Background(), "current.access.token")
	require.ErrorIs(t, err, clienterrors.ErrMalformedResponse)
}

// integrationFixture wires the real session store, refresh coordinator,
// and authenticated client against one test server.
type integrationFixture struct {
	storage *storagefakes.FakeStorage
	store   *session.Store
	client  *api.Client
}

func setupIntegrationFixture(t *testing.T, serverURL string) *integrationFixture {
	t.Helper()

	f := &integrationFixture{storage: storagefakes.NewFakeStorage()}

	authClient := api.NewAuthClient(serverURL)
	store, err := session.NewStore(f.storage, authClient)
	require.NoError(t, err)
	f.store = store

	coordinator, err := refresh.NewCoordinator(store, authClient)
	require.NoError(t, err)

	client, err := api.NewClient(serverURL, store, coordinator)
	require.NoError(t, err)
	f.client = client

	return f
}

func TestExpiredTokenIsRefreshedAndCallRetried(t *testing.T) {
	staleToken := makeToken(t, time.Now().Add(-time.Minute))
	freshToken := makeToken(t, time.Now().Add(time.Hour))

	var refreshCalls, comuniCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		require.Equal(t, "Bearer "+staleToken, r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, map[string]string{"token": freshToken})
	})
	mux.HandleFunc("GET /comuni", func(w http.ResponseWriter, r *http.Request) {
		comuniCalls++
		if r.Header.Get("Authorization") != "Bearer "+freshToken {
			writeJSON(t, w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
			return
		}
		writeJSON(t, w, http.StatusOK, []api.Comune{{ID: "comune-1", Name: "Milano", LampCount: 12000}})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := setupIntegrationFixture(t, server.URL)
	require.NoError(t, f.store.UpdateToken(staleToken))

	comuni, err := f.client.ListComuni(context.Background())
	require.NoError(t, err)
	require.Len(t, comuni, 1)
	require.Equal(t, "Milano", comuni[0].Name)

	require.Equal(t, 1, refreshCalls)
	require.Equal(t, 2, comuniCalls)
	require.Equal(t, freshToken, f.store.AccessToken())
}

func TestRefreshFailureLogsOutAndSurfacesOriginalError(t *testing.T) {
	staleToken := makeToken(t, time.Now().Add(-time.Minute))

	var refreshCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"message": "refresh token expired"})
	})
	mux.HandleFunc("GET /comuni", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := setupIntegrationFixture(t, server.URL)
	require.NoError(t, f.store.UpdateToken(staleToken))

	_, err := f.client.ListComuni(context.Background())
	require.ErrorIs(t, err, clienterrors.ErrUnauthenticated)

	require.Equal(t, 1, refreshCalls)
	require.False(t, f.store.Authenticated())
	require.Equal(t, 0, f.storage.Len())
}

func TestClientCRUD(t *testing.T) {
	accessToken := makeToken(t, time.Now().Add(time.Hour))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /comuni", func(w http.ResponseWriter, r *http.Request) {
		var in api.Comune
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		in.ID = "comune-9"
		writeJSON(t, w, http.StatusCreated, in)
	})
	mux.HandleFunc("PUT /comuni/comune-9", func(w http.ResponseWriter, r *http.Request) {
		var in api.ComuneUpdate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeJSON(t, w, http.StatusOK, api.Comune{ID: "comune-9", Name: utils.Value(in.Name)})
	})
	mux.HandleFunc("DELETE /comuni/comune-9", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /comuni/comune-9/lamps/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("id,lat,lng\nlamp-1,45.46,9.19\n"))
	})
	mux.HandleFunc("GET /organizations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []api.Organization{{ID: "org-1", Name: "Enel X"}})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := setupIntegrationFixture(t, server.URL)
	require.NoError(t, f.store.UpdateToken(accessToken))
	ctx := context.Background()

	created, err := f.client.CreateComune(ctx, api.Comune{Name: "Bergamo", Province: "BG"})
	require.NoError(t, err)
	require.Equal(t, "comune-9", created.ID)

	updated, err := f.client.UpdateComune(ctx, "comune-9", api.ComuneUpdate{Name: utils.Ptr("Bergamo Alta")})
	require.NoError(t, err)
	require.Equal(t, "Bergamo Alta", updated.Name)

	require.NoError(t, f.client.DeleteComune(ctx, "comune-9"))

	csv, err := f.client.ExportLamps(ctx, "comune-9")
	require.NoError(t, err)
	require.Contains(t, string(csv), "lamp-1")

	orgs, err := f.client.ListOrganizations(ctx)
	require.NoError(t, err)
	require.Len(t, orgs, 1)
}

func TestAPIErrorMapsNotFound(t *testing.T) {
	accessToken := makeToken(t, time.Now().Add(time.Hour))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /comuni/missing", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]string{"message": "comune not found"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := setupIntegrationFixture(t, server.URL)
	require.NoError(t, f.store.UpdateToken(accessToken))

	_, err := f.client.GetComune(context.Background(), "missing")
	require.ErrorIs(t, err, clienterrors.ErrNotFound)

	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.Equal(t, "comune not found", apiErr.Message)
}
