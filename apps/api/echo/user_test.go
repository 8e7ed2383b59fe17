package echoapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matludke/tempocerto/core/user"
	emailsvc "github.com/matludke/tempocerto/services/email"
)

func Test_userApi_create(t *testing.T) {
	app := setup(t)

	existing := createUser(t, app.usrRepo, "Awe", "awe@test.cd", "LordOfTheRings", true)

	tests := []httpTest{
		{
			name: "empty body", method: http.MethodPost, path: "/v1/users/register", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name":             "this field is required",
				"email":            "this field is required",
				"password":         "this field is required",
				"password_confirm": "this field is required",
			}),
		},
		{
			name: "password mismatch", method: http.MethodPost, path: "/v1/users/register",
			body: marchallObj(t, map[string]string{
				"name": "Hero", "email": "hero@test.cd",
				"password": "LordOfTheRings", "password_confirm": "LordOfTheRingz",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password_confirm": "password_confirm must be equal to Password"}),
		},
		{
			name: "duplicate email", method: http.MethodPost, path: "/v1/users/register",
			body: marchallObj(t, map[string]string{
				"name": "Hero", "email": existing.Email,
				"password": "LordOfTheRings", "password_confirm": "LordOfTheRings",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": user.ErrEmailExists.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("create ok", func(t *testing.T) {
		emailsvc.ClearSentMessages()

		body := marchallObj(t, map[string]string{
			"name": "Hero", "email": "Hero@Test.cd",
			"password": "LordOfTheRings", "password_confirm": "LordOfTheRings",
		})
		req, rec := newRequest(http.MethodPost, "/v1/users/register", body)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		var usr user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
		assert.NotEmpty(t, usr.ID)
		assert.Equal(t, "Hero", usr.Name)
		assert.Equal(t, "hero@test.cd", usr.Email)

		saved, err := app.usrRepo.GetUserByEmail("hero@test.cd")
		require.NoError(t, err)
		assert.True(t, saved.HasUsablePassword())
		assert.Len(t, emailsvc.SentMessages, 1) // welcome mail
	})
}

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	usr := createUser(t, app.usrRepo, "Awe", "awe@test.cd", "LordOfTheRings", true)
	codeOnly := createUser(t, app.usrRepo, "", "codeonly@test.cd", "", true)
	inactive := createUser(t, app.usrRepo, "Naughty", "ndog@test.cd", "LordOfTheRings", false)

	loginBody := func(email, pwd string) []byte {
		return marchallObj(t, map[string]string{"email": email, "password": pwd})
	}
	authFailed := marchallObj(t, httpErr{Error: "authentication failed"})

	tests := []httpTest{
		{
			name: "unknown email", method: http.MethodPost, path: "/v1/users/login",
			body: loginBody("who@test.cd", "LordOfTheRings"), wantCode: http.StatusBadRequest, wantData: authFailed,
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/users/login",
			body: loginBody(usr.Email, "L0rdOfTheRings"), wantCode: http.StatusBadRequest, wantData: authFailed,
		},
		{
			name: "no usable password", method: http.MethodPost, path: "/v1/users/login",
			body: loginBody(codeOnly.Email, "anything"), wantCode: http.StatusBadRequest, wantData: authFailed,
		},
		{
			name: "account deactivated", method: http.MethodPost, path: "/v1/users/login",
			body: loginBody(inactive.Email, "LordOfTheRings"), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("login ok", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login", loginBody("AWE@test.cd", "LordOfTheRings"))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)

		saved, err := app.usrRepo.GetUserByID(usr.ID)
		require.NoError(t, err)
		assert.False(t, saved.LastLogin.IsZero())
	})
}

func Test_userApi_loginCodeFlow(t *testing.T) {
	app := setup(t)

	emailBody := func(email string) []byte {
		return marchallObj(t, map[string]string{"email": email})
	}
	confirmBody := func(email, code string) []byte {
		return marchallObj(t, map[string]string{"email": email, "code": code})
	}
	invalidCode := marchallObj(t, map[string]string{"code": "invalid or expired code"})

	t.Run("request code", func(t *testing.T) {
		emailsvc.ClearSentMessages()

		req, rec := newRequest(http.MethodPost, "/v1/users/login-code", emailBody("New@Test.cd"))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		lc, err := app.codeRepo.GetLoginCode("new@test.cd")
		require.NoError(t, err)
		assert.Len(t, lc.Code, 6)
		assert.Len(t, emailsvc.SentMessages, 1)
	})

	t.Run("confirm wrong code keeps entry", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login-code", emailBody("wrong@test.cd"))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		lc, err := app.codeRepo.GetLoginCode("wrong@test.cd")
		require.NoError(t, err)
		bad := "000000"
		if lc.Code == bad {
			bad = "000001"
		}

		req, rec = newRequest(http.MethodPost, "/v1/users/login-code-confirm", confirmBody("wrong@test.cd", bad))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: invalidCode}, rec)

		// entry is still there; the right code still works
		_, err = app.codeRepo.GetLoginCode("wrong@test.cd")
		require.NoError(t, err)
	})

	t.Run("confirm without request", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login-code-confirm", confirmBody("ghost@test.cd", "123456"))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: invalidCode}, rec)
	})

	t.Run("confirm ok creates account and logs in", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login-code", emailBody("fresh@test.cd"))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		lc, err := app.codeRepo.GetLoginCode("fresh@test.cd")
		require.NoError(t, err)

		req, rec = newRequest(http.MethodPost, "/v1/users/login-code-confirm", confirmBody("fresh@test.cd", lc.Code))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)

		// password-less account was created on the fly
		usr, err := app.usrRepo.GetUserByEmail("fresh@test.cd")
		require.NoError(t, err)
		assert.False(t, usr.HasUsablePassword())
		assert.False(t, usr.LastLogin.IsZero())

		// code is single-use
		_, err = app.codeRepo.GetLoginCode("fresh@test.cd")
		assert.Equal(t, user.ErrCodeNotFound, err)

		req, rec = newRequest(http.MethodPost, "/v1/users/login-code-confirm", confirmBody("fresh@test.cd", lc.Code))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: invalidCode}, rec)
	})
}

func Test_userApi_me(t *testing.T) {
	app := setup(t)

	usr := createUser(t, app.usrRepo, "Awe", "awe@test.cd", "LordOfTheRings", true)
	token := getToken(t, usr)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/users/me")
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", token)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, usr)}, rec)
	})

	t.Run("update", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"name": "Lady Awe"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/me", token, body)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var updated user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "Lady Awe", updated.Name)
		assert.Equal(t, usr.Email, updated.Email)
	})

	t.Run("destroy needs re-auth", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/me", token, marchallObj(t, map[string]string{"password": "nope"}))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"})}, rec)

		_, err := app.usrRepo.GetUserByID(usr.ID)
		require.NoError(t, err)
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/me", token, marchallObj(t, map[string]string{"password": "LordOfTheRings"}))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		_, err := app.usrRepo.GetUserByID(usr.ID)
		assert.Equal(t, user.ErrNotFound, err)
	})
}

func Test_userApi_tokenRefresh(t *testing.T) {
	app := setup(t)

	usr := createUser(t, app.usrRepo, "Awe", "awe@test.cd", "LordOfTheRings", true)
	token := getToken(t, usr)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", token)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, 2, strings.Count(resp.Token, "."))
}
