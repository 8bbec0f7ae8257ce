package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanyardhq/lanyard/internal/config"
	"github.com/lanyardhq/lanyard/internal/sec"
	"github.com/lanyardhq/lanyard/internal/storage"
	"github.com/lanyardhq/lanyard/internal/storage/db"
)

const testSecret = "test-secret"

// fakeStore implements the methods a test configures through function
// fields; anything else panics through the embedded nil interface.
type fakeStore struct {
	storage.Store

	getUserByName      func(ctx context.Context, username string) (db.User, error)
	listDelegates      func(ctx context.Context) ([]db.Delegate, error)
	createDelegate     func(ctx context.Context, params db.CreateDelegateParams) (db.Delegate, error)
	createRec          func(ctx context.Context, delegateID, startupID int64) (db.Recommendation, error)
	listRecsByDelegate func(ctx context.Context, delegateID int64) ([]db.DelegateRecommendation, error)
	getDelegate        func(ctx context.Context, id int64) (db.Delegate, error)
	getStartup         func(ctx context.Context, id int64) (db.Startup, error)
	counts             map[string]int64
	listStaffUsers     func(ctx context.Context) ([]db.User, error)
}

func (f *fakeStore) GetUserByName(ctx context.Context, username string) (db.User, error) {
	return f.getUserByName(ctx, username)
}

func (f *fakeStore) ListDelegates(ctx context.Context) ([]db.Delegate, error) {
	return f.listDelegates(ctx)
}

func (f *fakeStore) CreateDelegate(ctx context.Context, params db.CreateDelegateParams) (db.Delegate, error) {
	return f.createDelegate(ctx, params)
}

func (f *fakeStore) GetDelegate(ctx context.Context, id int64) (db.Delegate, error) {
	return f.getDelegate(ctx, id)
}

func (f *fakeStore) GetStartup(ctx context.Context, id int64) (db.Startup, error) {
	return f.getStartup(ctx, id)
}

func (f *fakeStore) CreateRecommendation(ctx context.Context, delegateID, startupID int64) (db.Recommendation, error) {
	return f.createRec(ctx, delegateID, startupID)
}

func (f *fakeStore) ListRecommendationsByDelegate(ctx context.Context, delegateID int64) ([]db.DelegateRecommendation, error) {
	return f.listRecsByDelegate(ctx, delegateID)
}

func (f *fakeStore) ListStaffUsers(ctx context.Context) ([]db.User, error) {
	return f.listStaffUsers(ctx)
}

func (f *fakeStore) CountDelegates(context.Context) (int64, error)       { return f.counts["delegates"], nil }
func (f *fakeStore) CountStartups(context.Context) (int64, error)        { return f.counts["startups"], nil }
func (f *fakeStore) CountRecommendations(context.Context) (int64, error) { return f.counts["recs"], nil }
func (f *fakeStore) CountVisitedRecommendations(context.Context) (int64, error) {
	return f.counts["visited"], nil
}
func (f *fakeStore) CountScans(context.Context) (int64, error)      { return f.counts["scans"], nil }
func (f *fakeStore) CountStaffUsers(context.Context) (int64, error) { return f.counts["staff"], nil }

func newTestApp(t *testing.T, store storage.Store) *echo.Echo {
	t.Helper()
	cfg := &config.Config{Port: "0", JWTSecret: testSecret, DevMode: true}
	return New(cfg, slog.New(slog.DiscardHandler), store)
}

func sessionCookie(t *testing.T, identity sec.Identity) *http.Cookie {
	t.Helper()
	token, err := sec.SignToken(identity, testSecret, time.Minute)
	require.NoError(t, err)
	return &http.Cookie{Name: sec.CookieName, Value: token}
}

func adminCookie(t *testing.T) *http.Cookie {
	return sessionCookie(t, sec.Identity{ID: 1, Username: "boss", Role: db.RoleAdmin})
}

func staffCookie(t *testing.T) *http.Cookie {
	return sessionCookie(t, sec.Identity{ID: 2, Username: "scanner", Role: db.RoleStaff})
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSignIn(t *testing.T) {
	t.Parallel()

	hash, err := sec.HashPassword("hunter22")
	require.NoError(t, err)
	store := &fakeStore{
		getUserByName: func(_ context.Context, username string) (db.User, error) {
			if username != "boss" {
				return db.User{}, storage.ErrNotFound
			}
			return db.User{ID: 1, Username: "boss", PasswordHash: hash, Role: db.RoleAdmin}, nil
		},
	}
	srv := newTestApp(t, store)

	post := func(username, password string) *httptest.ResponseRecorder {
		form := url.Values{"username": {username}, "password": {password}}
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		return rec
	}

	t.Run("Success", func(t *testing.T) {
		rec := post("boss", "hunter22")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, sec.CookieName, cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)

		identity, err := sec.ParseToken(cookies[0].Value, testSecret)
		require.NoError(t, err)
		assert.Equal(t, "boss", identity.Username)
		assert.True(t, identity.IsAdmin())
	})

	t.Run("WrongPassword", func(t *testing.T) {
		rec := post("boss", "wrong-password")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid credentials")
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("UnknownUserSameMessage", func(t *testing.T) {
		rec := post("nobody", "hunter22")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid credentials")
	})

	t.Run("ShortPasswordRejectedBeforeLookup", func(t *testing.T) {
		rec := post("boss", "abc")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid credentials")
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()
	srv := newTestApp(t, &fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	req.AddCookie(adminCookie(t))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, sec.SignInPath, rec.Header().Get(echo.HeaderLocation))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestDelegateRoutes(t *testing.T) {
	t.Parallel()

	t.Run("List", func(t *testing.T) {
		store := &fakeStore{
			listDelegates: func(context.Context) ([]db.Delegate, error) {
				return []db.Delegate{{ID: 7, BadgeID: "BADGE-0007", Name: "Ada Lovelace"}}, nil
			},
		}
		srv := newTestApp(t, store)

		req := httptest.NewRequest(http.MethodGet, "/api/delegates", nil)
		req.AddCookie(staffCookie(t))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeEnvelope(t, rec)
		assert.Equal(t, true, body["success"])
		data, ok := body["data"].([]any)
		require.True(t, ok)
		require.Len(t, data, 1)
	})

	t.Run("Create", func(t *testing.T) {
		store := &fakeStore{
			createDelegate: func(_ context.Context, params db.CreateDelegateParams) (db.Delegate, error) {
				return db.Delegate{ID: 1, BadgeID: params.BadgeID, Name: params.Name}, nil
			},
		}
		srv := newTestApp(t, store)

		req := httptest.NewRequest(http.MethodPost, "/api/delegates",
			strings.NewReader(`{"badge_id":"BADGE-0001","name":"Ada Lovelace"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.AddCookie(adminCookie(t))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeEnvelope(t, rec)
		assert.Equal(t, "Delegate created successfully", body["message"])
	})

	t.Run("DuplicateBadge", func(t *testing.T) {
		store := &fakeStore{
			createDelegate: func(context.Context, db.CreateDelegateParams) (db.Delegate, error) {
				return db.Delegate{}, storage.ErrAlreadyExists
			},
		}
		srv := newTestApp(t, store)

		req := httptest.NewRequest(http.MethodPost, "/api/delegates",
			strings.NewReader(`{"badge_id":"BADGE-0001","name":"Ada Lovelace"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.AddCookie(adminCookie(t))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeEnvelope(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Badge ID already exists", body["message"])
	})

	t.Run("NotFound", func(t *testing.T) {
		store := &fakeStore{
			getDelegate: func(context.Context, int64) (db.Delegate, error) {
				return db.Delegate{}, storage.ErrNotFound
			},
		}
		srv := newTestApp(t, store)

		req := httptest.NewRequest(http.MethodGet, "/api/delegates/42", nil)
		req.AddCookie(staffCookie(t))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Delegate not found", decodeEnvelope(t, rec)["message"])
	})

	t.Run("InvalidID", func(t *testing.T) {
		srv := newTestApp(t, &fakeStore{})

		req := httptest.NewRequest(http.MethodGet, "/api/delegates/abc", nil)
		req.AddCookie(staffCookie(t))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid id parameter", decodeEnvelope(t, rec)["message"])
	})
}

func TestRouteGates(t *testing.T) {
	t.Parallel()

	// The fake's createDelegate is nil, so reaching the handler would panic:
	// the gate has to reject the request first.
	srv := newTestApp(t, &fakeStore{})

	t.Run("StaffCannotCreateDelegates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/delegates",
			strings.NewReader(`{"badge_id":"BADGE-0001","name":"Ada Lovelace"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.AddCookie(staffCookie(t))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		body := decodeEnvelope(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, sec.MsgAdminOnly, body["message"])
	})

	t.Run("StaffCannotReadGlobalListings", func(t *testing.T) {
		// These reads expose event-wide data and are admin-only; the
		// nil fake methods would panic if a gate let the request through.
		paths := []string{
			"/api/recommendations",
			"/api/scan-log",
			"/api/scan-log/staff/1",
			"/api/scan-log/delegate/1",
			"/api/analytics/stats",
			"/api/analytics/delegate/1",
			"/api/analytics/top-startups",
		}
		for _, path := range paths {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			req.AddCookie(staffCookie(t))
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			require.Equal(t, http.StatusForbidden, rec.Code, path)
			assert.Equal(t, sec.MsgAdminOnly, decodeEnvelope(t, rec)["message"], path)
		}
	})

	t.Run("StaffCanReadOwnDelegateRecommendations", func(t *testing.T) {
		store := &fakeStore{
			listRecsByDelegate: func(context.Context, int64) ([]db.DelegateRecommendation, error) {
				return []db.DelegateRecommendation{}, nil
			},
		}
		srv := newTestApp(t, store)

		req := httptest.NewRequest(http.MethodGet, "/api/recommendations/delegate/1", nil)
		req.AddCookie(staffCookie(t))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decodeEnvelope(t, rec)["success"])
	})

	t.Run("AnonymousRedirectedToSignIn", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/delegates", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, sec.SignInPath, rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("ExpiredSessionRedirected", func(t *testing.T) {
		token, err := sec.SignToken(sec.Identity{ID: 1, Username: "boss", Role: db.RoleAdmin}, testSecret, -time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/delegates", nil)
		req.AddCookie(&http.Cookie{Name: sec.CookieName, Value: token})
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, sec.SignInPath, rec.Header().Get(echo.HeaderLocation))
	})
}

func TestCreateRecommendationChecksBothSides(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		getDelegate: func(_ context.Context, id int64) (db.Delegate, error) {
			if id != 1 {
				return db.Delegate{}, storage.ErrNotFound
			}
			return db.Delegate{ID: 1}, nil
		},
		getStartup: func(_ context.Context, id int64) (db.Startup, error) {
			if id != 2 {
				return db.Startup{}, storage.ErrNotFound
			}
			return db.Startup{ID: 2}, nil
		},
		createRec: func(context.Context, int64, int64) (db.Recommendation, error) {
			return db.Recommendation{}, storage.ErrAlreadyExists
		},
	}
	srv := newTestApp(t, store)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/recommendations", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.AddCookie(adminCookie(t))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		return rec
	}

	t.Run("MissingDelegate", func(t *testing.T) {
		rec := post(`{"delegate_id":99,"startup_id":2}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Delegate not found", decodeEnvelope(t, rec)["message"])
	})

	t.Run("MissingStartup", func(t *testing.T) {
		rec := post(`{"delegate_id":1,"startup_id":99}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Startup not found", decodeEnvelope(t, rec)["message"])
	})

	t.Run("DuplicatePair", func(t *testing.T) {
		rec := post(`{"delegate_id":1,"startup_id":2}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Recommendation already exists for this delegate-startup pair",
			decodeEnvelope(t, rec)["message"])
	})
}

func TestDashboardStats(t *testing.T) {
	t.Parallel()

	store := &fakeStore{counts: map[string]int64{
		"delegates": 10,
		"startups":  4,
		"recs":      3,
		"visited":   2,
		"scans":     17,
		"staff":     5,
	}}
	srv := newTestApp(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/stats", nil)
	req.AddCookie(adminCookie(t))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(10), data["totalDelegates"])
	assert.Equal(t, float64(4), data["totalStartups"])
	assert.Equal(t, float64(3), data["totalRecommendations"])
	assert.Equal(t, float64(2), data["visitedRecommendations"])
	assert.Equal(t, "66.67", data["visitationRate"])
	assert.Equal(t, float64(17), data["totalScans"])
	assert.Equal(t, float64(5), data["totalStaffMembers"])
}

func TestVisitationRate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", visitationRate(0, 0))
	assert.Equal(t, "0", visitationRate(5, 0))
	assert.Equal(t, "33.33", visitationRate(1, 3))
	assert.Equal(t, "100.00", visitationRate(4, 4))
}

func TestUserManagement(t *testing.T) {
	t.Parallel()

	t.Run("ListUsesUserKeylessEnvelope", func(t *testing.T) {
		store := &fakeStore{
			listStaffUsers: func(context.Context) ([]db.User, error) {
				return []db.User{{ID: 2, Username: "scanner", Role: db.RoleStaff}}, nil
			},
		}
		srv := newTestApp(t, store)

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.AddCookie(adminCookie(t))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeEnvelope(t, rec)
		data, ok := body["data"].([]any)
		require.True(t, ok)
		require.Len(t, data, 1)
		user, ok := data[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "scanner", user["username"])
		assert.NotContains(t, user, "password_hash")
	})

	t.Run("StaffForbidden", func(t *testing.T) {
		srv := newTestApp(t, &fakeStore{})

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.AddCookie(staffCookie(t))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, sec.MsgAdminOnly, decodeEnvelope(t, rec)["message"])
	})
}

func TestErrorPageForBrowserRoutes(t *testing.T) {
	t.Parallel()
	srv := newTestApp(t, &fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/no-such-page", nil)
	req.AddCookie(staffCookie(t))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	srv := newTestApp(t, &fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
