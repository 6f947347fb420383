package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sanadchat/sanad/internal/api/dto"
	"github.com/sanadchat/sanad/internal/api/handlers"
	"github.com/sanadchat/sanad/internal/api/middleware"
	"github.com/sanadchat/sanad/internal/database/models"
	"github.com/sanadchat/sanad/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupConversationTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)

	handler := handlers.NewConversationHandler(tc.DB)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tc.JWTService))
		r.Post("/api/conversations", handler.Create)
		r.Get("/api/conversations/user/{userID}", handler.ListByUser)
		r.Delete("/api/conversations/{id}", handler.Delete)
	})

	return r, tc
}

func TestConversationHandler_Create(t *testing.T) {
	router, tc := setupConversationTestRouter(t)
	defer tc.Cleanup()

	user := testutil.CreateTestUser(t, tc.DB, models.RoleUser)
	token := testutil.GenerateTestToken(t, tc.JWTService, user)

	t.Run("successful create", func(t *testing.T) {
		body := map[string]string{"title": "Trip planning"}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/conversations", body, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp dto.ConversationResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Trip planning", resp.Title)
		assert.Equal(t, user.ID.String(), resp.UserID)
		assert.NotEmpty(t, resp.ID)
	})

	t.Run("missing title", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/conversations", map[string]string{}, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		body := map[string]string{"title": "Nope"}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/conversations", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestConversationHandler_ListByUser(t *testing.T) {
	router, tc := setupConversationTestRouter(t)
	defer tc.Cleanup()

	owner := testutil.CreateTestUser(t, tc.DB, models.RoleUser)
	ownerToken := testutil.GenerateTestToken(t, tc.JWTService, owner)

	first := testutil.CreateTestConversation(t, tc.DB, owner.ID, "First")
	testutil.CreateTestMessage(t, tc.DB, first.ID, "user", "hello")
	testutil.CreateTestMessage(t, tc.DB, first.ID, "assistant", "hi there")
	testutil.CreateTestConversation(t, tc.DB, owner.ID, "Second")

	t.Run("owner sees own conversations with messages", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/conversations/user/"+owner.ID.String(), nil, ownerToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp []dto.ConversationResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp, 2)

		for _, c := range resp {
			if c.ID == first.ID.String() {
				require.Len(t, c.Messages, 2)
				assert.Equal(t, "hello", c.Messages[0].Content)
				assert.Equal(t, "hi there", c.Messages[1].Content)
			}
		}
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		other := testutil.CreateTestUser(t, tc.DB, models.RoleUser)
		otherToken := testutil.GenerateTestToken(t, tc.JWTService, other)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/conversations/user/"+owner.ID.String(), nil, otherToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin can list any user", func(t *testing.T) {
		admin := testutil.CreateTestUser(t, tc.DB, models.RoleAdmin)
		adminToken := testutil.GenerateTestToken(t, tc.JWTService, admin)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/conversations/user/"+owner.ID.String(), nil, adminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("no conversations yields empty list", func(t *testing.T) {
		lonely := testutil.CreateTestUser(t, tc.DB, models.RoleUser)
		lonelyToken := testutil.GenerateTestToken(t, tc.JWTService, lonely)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/conversations/user/"+lonely.ID.String(), nil, lonelyToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, "[]", rr.Body.String())
	})

	t.Run("invalid user id", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/conversations/user/not-a-uuid", nil, ownerToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestConversationHandler_Delete(t *testing.T) {
	router, tc := setupConversationTestRouter(t)
	defer tc.Cleanup()

	owner := testutil.CreateTestUser(t, tc.DB, models.RoleUser)
	ownerToken := testutil.GenerateTestToken(t, tc.JWTService, owner)

	t.Run("owner deletes conversation and its messages", func(t *testing.T) {
		conversation := testutil.CreateTestConversation(t, tc.DB, owner.ID, "Doomed")
		testutil.CreateTestMessage(t, tc.DB, conversation.ID, "user", "bye")

		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/conversations/"+conversation.ID.String(), nil, ownerToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)

		var count int64
		tc.DB.Model(&models.Conversation{}).Where("id = ?", conversation.ID).Count(&count)
		assert.Zero(t, count)

		tc.DB.Model(&models.Message{}).Where("conversation_id = ?", conversation.ID).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		conversation := testutil.CreateTestConversation(t, tc.DB, owner.ID, "Protected")

		other := testutil.CreateTestUser(t, tc.DB, models.RoleUser)
		otherToken := testutil.GenerateTestToken(t, tc.JWTService, other)

		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/conversations/"+conversation.ID.String(), nil, otherToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)

		var count int64
		tc.DB.Model(&models.Conversation{}).Where("id = ?", conversation.ID).Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("admin deletes any conversation", func(t *testing.T) {
		conversation := testutil.CreateTestConversation(t, tc.DB, owner.ID, "Admin target")

		admin := testutil.CreateTestUser(t, tc.DB, models.RoleAdmin)
		adminToken := testutil.GenerateTestToken(t, tc.JWTService, admin)

		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/conversations/"+conversation.ID.String(), nil, adminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("not found", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/conversations/00000000-0000-0000-0000-000000000001", nil, ownerToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
