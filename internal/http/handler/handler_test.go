package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docshare/internal/auth"
	"docshare/internal/http/middleware"
	"docshare/internal/model"
	"docshare/internal/ratelimit"
	"docshare/internal/service"
	serviceMocks "docshare/internal/service/mocks"
)

// stubLimiter returns a fixed rate-limit decision.
type stubLimiter struct {
	res ratelimit.Result
}

func (s stubLimiter) Check(string) ratelimit.Result { return s.res }

func allowAll() ratelimit.Store {
	return stubLimiter{res: ratelimit.Result{Allowed: true, Remaining: 1}}
}

func denyAll(retryAfter time.Duration) ratelimit.Store {
	return stubLimiter{res: ratelimit.Result{Allowed: false, RetryAfter: retryAfter}}
}

// withSession pre-authenticates every request on the test app.
func withSession(app *fiber.App, claims *auth.SessionClaims) {
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.SessionLocalKey, claims)
		return c.Next()
	})
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var res errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegister(t *testing.T) {
	mockSvc := new(serviceMocks.MockAccountService)
	app := fiber.New()
	app.Post("/register", Register(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Register", mock.Anything, "new@example.com", "Sup3r$ecret").
			Return(&model.User{ID: "u-1", Email: "new@example.com", Role: model.RolePlatformUser}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/register",
			strings.NewReader(`{"email":"new@example.com","password":"Sup3r$ecret"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var user model.User
		json.NewDecoder(resp.Body).Decode(&user)
		assert.Equal(t, "u-1", user.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("duplicate email maps to validation error", func(t *testing.T) {
		mockSvc.On("Register", mock.Anything, "taken@example.com", "Sup3r$ecret").
			Return(nil, fmt.Errorf("%w: email is already registered", service.ErrValidation)).Once()

		req := httptest.NewRequest(http.MethodPost, "/register",
			strings.NewReader(`{"email":"taken@example.com","password":"Sup3r$ecret"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, resp).Error.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	mockSvc := new(serviceMocks.MockAccountService)
	app := fiber.New()
	app.Post("/login", Login(mockSvc))

	t.Run("success returns token", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, "u1@example.com", "Sup3r$ecret").
			Return("signed-token", &model.User{ID: "u-1"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/login",
			strings.NewReader(`{"email":"u1@example.com","password":"Sup3r$ecret"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body loginResponse
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "signed-token", body.Token)
		mockSvc.AssertExpectations(t)
	})

	t.Run("bad credentials", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, "u1@example.com", "nope").
			Return("", nil, service.ErrUnauthorized).Once()

		req := httptest.NewRequest(http.MethodPost, "/login",
			strings.NewReader(`{"email":"u1@example.com","password":"nope"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	})
}

func TestRequestPasswordReset(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAccountService)
		mockSvc.On("RequestPasswordReset", mock.Anything, "u1@example.com").Return(nil).Once()

		app := fiber.New()
		app.Post("/request-reset", RequestPasswordReset(mockSvc, allowAll()))

		req := httptest.NewRequest(http.MethodPost, "/request-reset",
			strings.NewReader(`{"email":"u1@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("rate limited", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAccountService)
		app := fiber.New()
		app.Post("/request-reset", RequestPasswordReset(mockSvc, denyAll(90*time.Second)))

		req := httptest.NewRequest(http.MethodPost, "/request-reset",
			strings.NewReader(`{"email":"u1@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "RATE_LIMITED", body.Error.Code)
		require.NotNil(t, body.RetryAfter)
		assert.Equal(t, 90, *body.RetryAfter)
		mockSvc.AssertNotCalled(t, "RequestPasswordReset", mock.Anything, mock.Anything)
	})
}

func TestResetPassword(t *testing.T) {
	t.Run("invalid token", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAccountService)
		mockSvc.On("ResetPassword", mock.Anything, "spent", "Sup3r$ecret").Return(service.ErrTokenInvalid).Once()

		app := fiber.New()
		app.Post("/reset-password", ResetPassword(mockSvc, allowAll()))

		req := httptest.NewRequest(http.MethodPost, "/reset-password",
			strings.NewReader(`{"token":"spent","password":"Sup3r$ecret"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "TOKEN_INVALID", decodeError(t, resp).Error.Code)
	})

	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAccountService)
		mockSvc.On("ResetPassword", mock.Anything, "tok", "Sup3r$ecret").Return(nil).Once()

		app := fiber.New()
		app.Post("/reset-password", ResetPassword(mockSvc, allowAll()))

		req := httptest.NewRequest(http.MethodPost, "/reset-password",
			strings.NewReader(`{"token":"tok","password":"Sup3r$ecret"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestViewShare(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour, time.Hour)
	claims := &auth.SessionClaims{UserID: "u-1", Email: "viewer@example.com"}

	newApp := func(mockSvc *serviceMocks.MockShareLinkService) *fiber.App {
		app := fiber.New()
		withSession(app, claims)
		app.Get("/api/share/:shareKey", ViewShare(mockSvc, tokens))
		return app
	}

	t.Run("granted", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockShareLinkService)
		mockSvc.On("View", mock.Anything, claims, "k123", false, mock.Anything).
			Return(&service.ShareViewResult{
				Document:    &model.Document{ID: "doc-1", Title: "Quarterly report", Filename: "q.pdf"},
				SignedURL:   "https://signed.example/q",
				CanDownload: true,
				ViewCount:   3,
			}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/share/k123", nil)
		resp, _ := newApp(mockSvc).Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "https://signed.example/q", body["signed_url"])
		assert.Equal(t, float64(3), body["view_count"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("policy denial carries the reason code", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockShareLinkService)
		mockSvc.On("View", mock.Anything, claims, "k123", false, mock.Anything).
			Return(nil, &service.ShareDenialError{Reason: service.DenyViewLimitExceeded}).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/share/k123", nil)
		resp, _ := newApp(mockSvc).Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "VIEW_LIMIT_EXCEEDED", decodeError(t, resp).Error.Code)
	})

	t.Run("password prompt", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockShareLinkService)
		mockSvc.On("View", mock.Anything, claims, "k123", false, mock.Anything).
			Return(nil, service.ErrPasswordRequired).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/share/k123", nil)
		resp, _ := newApp(mockSvc).Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "PASSWORD_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("valid capability cookie is passed through", func(t *testing.T) {
		capability, _, err := tokens.IssueCapability("k123")
		require.NoError(t, err)

		mockSvc := new(serviceMocks.MockShareLinkService)
		mockSvc.On("View", mock.Anything, claims, "k123", true, mock.Anything).
			Return(&service.ShareViewResult{
				Document:  &model.Document{ID: "doc-1"},
				SignedURL: "https://signed.example/q",
			}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/share/k123", nil)
		req.AddCookie(&http.Cookie{Name: auth.CapabilityCookieName("k123"), Value: capability})
		resp, _ := newApp(mockSvc).Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("capability for another share does not count", func(t *testing.T) {
		capability, _, err := tokens.IssueCapability("other-key")
		require.NoError(t, err)

		mockSvc := new(serviceMocks.MockShareLinkService)
		mockSvc.On("View", mock.Anything, claims, "k123", false, mock.Anything).
			Return(nil, service.ErrPasswordRequired).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/share/k123", nil)
		req.AddCookie(&http.Cookie{Name: auth.CapabilityCookieName("k123"), Value: capability})
		resp, _ := newApp(mockSvc).Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestVerifySharePassword(t *testing.T) {
	t.Run("success sets the capability cookie", func(t *testing.T) {
		expiry := time.Now().Add(time.Hour).UTC()
		mockSvc := new(serviceMocks.MockShareLinkService)
		mockSvc.On("VerifyPassword", mock.Anything, "k123", "Sup3r$ecret").
			Return("capability-token", expiry, nil).Once()

		app := fiber.New()
		app.Post("/api/share/:shareKey/verify-password", VerifySharePassword(mockSvc, allowAll(), true))

		req := httptest.NewRequest(http.MethodPost, "/api/share/k123/verify-password",
			strings.NewReader(`{"password":"Sup3r$ecret"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		cookie := resp.Header.Get("Set-Cookie")
		assert.Contains(t, cookie, auth.CapabilityCookieName("k123")+"=capability-token")
		assert.Contains(t, cookie, "HttpOnly")
		assert.Contains(t, cookie, "Secure")
		assert.Contains(t, cookie, "SameSite=Lax")
		mockSvc.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockShareLinkService)
		mockSvc.On("VerifyPassword", mock.Anything, "k123", "nope").
			Return("", time.Time{}, service.ErrWrongPassword).Once()

		app := fiber.New()
		app.Post("/api/share/:shareKey/verify-password", VerifySharePassword(mockSvc, allowAll(), true))

		req := httptest.NewRequest(http.MethodPost, "/api/share/k123/verify-password",
			strings.NewReader(`{"password":"nope"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "INVALID_PASSWORD", decodeError(t, resp).Error.Code)
		assert.Empty(t, resp.Header.Get("Set-Cookie"))
	})

	t.Run("link without password", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockShareLinkService)
		mockSvc.On("VerifyPassword", mock.Anything, "open", "x").
			Return("", time.Time{}, service.ErrNoPasswordSet).Once()

		app := fiber.New()
		app.Post("/api/share/:shareKey/verify-password", VerifySharePassword(mockSvc, allowAll(), true))

		req := httptest.NewRequest(http.MethodPost, "/api/share/open/verify-password",
			strings.NewReader(`{"password":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rate limited before the bcrypt compare", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockShareLinkService)

		app := fiber.New()
		app.Post("/api/share/:shareKey/verify-password", VerifySharePassword(mockSvc, denyAll(30*time.Second), true))

		req := httptest.NewRequest(http.MethodPost, "/api/share/k123/verify-password",
			strings.NewReader(`{"password":"Sup3r$ecret"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		mockSvc.AssertNotCalled(t, "VerifyPassword", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTrackShareView(t *testing.T) {
	t.Run("records duration", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockShareLinkService)
		mockSvc.On("Track", mock.Anything, "k123", mock.Anything, "", mock.MatchedBy(func(d *int) bool {
			return d != nil && *d == 42
		})).Return(nil).Once()

		app := fiber.New()
		app.Post("/api/share/:shareKey/track", TrackShareView(mockSvc))

		req := httptest.NewRequest(http.MethodPost, "/api/share/k123/track",
			strings.NewReader(`{"duration_seconds":42}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("still 201 when the service fails", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockShareLinkService)
		mockSvc.On("Track", mock.Anything, "k123", mock.Anything, "", mock.Anything).
			Return(errors.New("analytics down")).Once()

		app := fiber.New()
		app.Post("/api/share/:shareKey/track", TrackShareView(mockSvc))

		req := httptest.NewRequest(http.MethodPost, "/api/share/k123/track", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})
}

func TestCreateEmailShare(t *testing.T) {
	claims := &auth.SessionClaims{UserID: "u-1", Email: "sharer@example.com"}
	docID := uuid.New().String()

	t.Run("created", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockEmailShareService)
		mockSvc.On("Create", mock.Anything, claims, mock.MatchedBy(func(in service.CreateEmailShareInput) bool {
			return in.DocumentID == docID && in.RecipientEmail == "rcpt@example.com"
		})).Return(&model.DocumentShare{ID: "share-1"}, nil).Once()

		app := fiber.New()
		withSession(app, claims)
		app.Post("/api/share/email", CreateEmailShare(mockSvc))

		req := httptest.NewRequest(http.MethodPost, "/api/share/email",
			strings.NewReader(`{"document_id":"`+docID+`","recipient_email":"rcpt@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid document id", func(t *testing.T) {
		app := fiber.New()
		withSession(app, claims)
		app.Post("/api/share/email", CreateEmailShare(new(serviceMocks.MockEmailShareService)))

		req := httptest.NewRequest(http.MethodPost, "/api/share/email",
			strings.NewReader(`{"document_id":"not-a-uuid","recipient_email":"rcpt@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestInbox(t *testing.T) {
	claims := &auth.SessionClaims{UserID: "u-2", Email: "rcpt@example.com"}

	mockSvc := new(serviceMocks.MockEmailShareService)
	mockSvc.On("Inbox", mock.Anything, claims, 2, 10).
		Return(&service.InboxPage{
			Items:   []model.InboxItem{{Share: model.DocumentShare{ID: "share-1"}}},
			Total:   11,
			Page:    2,
			Limit:   10,
			HasMore: false,
		}, nil).Once()

	app := fiber.New()
	withSession(app, claims)
	app.Get("/api/inbox", Inbox(mockSvc))

	req := httptest.NewRequest(http.MethodGet, "/api/inbox?page=2&limit=10", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var page service.InboxPage
	json.NewDecoder(resp.Body).Decode(&page)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 11, page.Total)
	mockSvc.AssertExpectations(t)
}

func TestUnrecognizedErrorsStayGeneric(t *testing.T) {
	claims := &auth.SessionClaims{UserID: "u-2", Email: "rcpt@example.com"}

	// A raw driver error carrying connection details must be swallowed into
	// the generic envelope.
	driverErr := errors.New(`pq: connection to "postgres://app:password=hunter2@db:5432/app" refused
	at inbox.go:42`)
	mockSvc := new(serviceMocks.MockEmailShareService)
	mockSvc.On("Inbox", mock.Anything, claims, 1, 0).Return(nil, driverErr).Once()

	app := fiber.New()
	withSession(app, claims)
	app.Get("/api/inbox", Inbox(mockSvc))

	req := httptest.NewRequest(http.MethodGet, "/api/inbox", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	body := buf.String()

	var payload errorPayload
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.Equal(t, "INTERNAL_ERROR", payload.Error.Code)
	assert.Equal(t, "internal server error", payload.Error.Message)

	assert.NotContains(t, body, "postgres://")
	assert.NotContains(t, body, "password=")
	assert.NotContains(t, body, ".go:")
	assert.NotContains(t, body, "pq:")
}

func TestGetDocument(t *testing.T) {
	claims := &auth.SessionClaims{UserID: "u-1", Email: "u1@example.com"}
	docID := uuid.New().String()

	newApp := func(mockAccess *serviceMocks.MockAccessService) *fiber.App {
		app := fiber.New()
		withSession(app, claims)
		app.Get("/api/documents/:id", GetDocument(mockAccess))
		return app
	}

	t.Run("allowed", func(t *testing.T) {
		mockAccess := new(serviceMocks.MockAccessService)
		mockAccess.On("CanViewDocument", mock.Anything, claims, docID).
			Return(&service.ViewDecision{Allowed: true, Document: &model.Document{ID: docID, Title: "t"}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/documents/"+docID, nil)
		resp, _ := newApp(mockAccess).Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("not found reason maps to 404", func(t *testing.T) {
		mockAccess := new(serviceMocks.MockAccessService)
		mockAccess.On("CanViewDocument", mock.Anything, claims, docID).
			Return(&service.ViewDecision{Reason: service.ReasonDocumentNotFound}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/documents/"+docID, nil)
		resp, _ := newApp(mockAccess).Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("denied reason maps to 403", func(t *testing.T) {
		mockAccess := new(serviceMocks.MockAccessService)
		mockAccess.On("CanViewDocument", mock.Anything, claims, docID).
			Return(&service.ViewDecision{Reason: service.ReasonAccessDenied}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/documents/"+docID, nil)
		resp, _ := newApp(mockAccess).Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "ACCESS_DENIED", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/documents/invalid-uuid", nil)
		resp, _ := newApp(new(serviceMocks.MockAccessService)).Test(req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDocumentURL(t *testing.T) {
	claims := &auth.SessionClaims{UserID: "u-1", Email: "u1@example.com"}
	itemID := uuid.New().String()
	docID := uuid.New().String()
	doc := &model.Document{ID: docID, StoragePath: "documents/x.pdf"}

	mockAccess := new(serviceMocks.MockAccessService)
	mockDocs := new(serviceMocks.MockDocumentService)
	mockAccess.On("ResolveViewerID", mock.Anything, itemID).Return(docID, service.ResolvedFromStudyRoomItem, nil).Once()
	mockAccess.On("CanViewDocument", mock.Anything, claims, docID).
		Return(&service.ViewDecision{Allowed: true, Document: doc}, nil).Once()
	mockDocs.On("DashboardURL", mock.Anything, doc).Return("https://signed.example/x", nil).Once()

	app := fiber.New()
	withSession(app, claims)
	app.Get("/api/documents/:id/url", DocumentURL(mockAccess, mockDocs))

	req := httptest.NewRequest(http.MethodGet, "/api/documents/"+itemID+"/url", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "https://signed.example/x", body["url"])
	mockAccess.AssertExpectations(t)
	mockDocs.AssertExpectations(t)
}

func TestUploadDocument(t *testing.T) {
	claims := &auth.SessionClaims{UserID: "u-1", Email: "u1@example.com"}

	newApp := func(mockSvc *serviceMocks.MockDocumentService) *fiber.App {
		app := fiber.New()
		withSession(app, claims)
		app.Post("/api/documents", UploadDocument(mockSvc))
		return app
	}

	t.Run("success", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		writer.WriteField("title", "Quarterly report")
		part, _ := writer.CreateFormFile("file", "test.pdf")
		part.Write([]byte("%PDF-"))
		writer.Close()

		mockSvc := new(serviceMocks.MockDocumentService)
		expectedDoc := &model.Document{ID: uuid.New().String(), Filename: "test.pdf"}
		mockSvc.On("Upload", mock.Anything, "u-1", "Quarterly report", mock.Anything, "test.pdf", mock.Anything, mock.Anything).
			Return(expectedDoc, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, _ := newApp(mockSvc).Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/documents", nil)
		resp, _ := newApp(new(serviceMocks.MockDocumentService)).Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})
}

func TestDeleteDocument(t *testing.T) {
	claims := &auth.SessionClaims{UserID: "u-1", Email: "u1@example.com"}
	docID := uuid.New().String()

	newApp := func(mockSvc *serviceMocks.MockDocumentService) *fiber.App {
		app := fiber.New()
		withSession(app, claims)
		app.Delete("/api/documents/:id", DeleteDocument(mockSvc))
		return app
	}

	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		mockSvc.On("Delete", mock.Anything, "u-1", docID).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/documents/"+docID, nil)
		resp, _ := newApp(mockSvc).Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not owner", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		mockSvc.On("Delete", mock.Anything, "u-1", docID).Return(service.ErrForbidden).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/documents/"+docID, nil)
		resp, _ := newApp(mockSvc).Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestRouting(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	tokens := auth.NewTokenManager("test-secret", time.Hour, time.Hour)
	RegisterRoutes(app, Deps{
		DB:            db,
		Accounts:      new(serviceMocks.MockAccountService),
		Documents:     new(serviceMocks.MockDocumentService),
		Access:        new(serviceMocks.MockAccessService),
		ShareLinks:    new(serviceMocks.MockShareLinkService),
		EmailShares:   new(serviceMocks.MockEmailShareService),
		Tokens:        tokens,
		Limiter:       allowAll(),
		SecureCookies: true,
	})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("protected route without token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/inbox", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	})

	t.Run("track is reachable without a session", func(t *testing.T) {
		mockLinks := new(serviceMocks.MockShareLinkService)
		// Fresh app so the route uses the tracking mock
		trackApp := fiber.New()
		trackApp.Post("/api/share/:shareKey/track", TrackShareView(mockLinks))
		mockLinks.On("Track", mock.Anything, "k123", mock.Anything, "", mock.Anything).Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/share/k123/track", nil)
		resp, _ := trackApp.Test(req)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})
}
