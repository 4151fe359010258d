package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tradejournal/internal/access"
	"tradejournal/internal/auth"
	"tradejournal/internal/models"
	gormrepository "tradejournal/internal/repository/gorm"
	"tradejournal/internal/service"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	err = db.AutoMigrate(
		&models.User{},
		&models.AuthToken{},
		&models.Account{},
		&models.SetupStrategy{},
		&models.EntryType{},
		&models.Trade{},
		&models.DocumentationWidget{},
		&models.DocumentationItem{},
		&models.AuditLog{},
	)
	assert.NoError(t, err)

	store := gormrepository.New(db)
	resolver := &access.Resolver{Repo: store}
	authSvc := &auth.Service{Repo: store}
	ledgerSvc := &service.LedgerService{Repo: store, Logger: zap.NewNop()}
	metricsSvc := &service.MetricsService{Repo: store}
	docsSvc := &service.DocumentationService{Repo: store, Access: resolver}

	engine := gin.New()
	engine.Use(auth.Middleware(authSvc, false))

	(&AuthHandler{Auth: authSvc}).Register(engine)
	(&AccountHandler{Ledger: ledgerSvc}).Register(engine)
	(&TradeHandler{Ledger: ledgerSvc}).Register(engine)
	(&CatalogHandler{Catalog: &service.CatalogService{Repo: store}}).Register(engine)
	(&DashboardHandler{Metrics: metricsSvc}).Register(engine)
	(&DocumentationHandler{Docs: docsSvc}).Register(engine)
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, engine *gin.Engine, username string) string {
	t.Helper()
	creds := map[string]string{"username": username, "password": "correct-horse"}
	w := doJSON(t, engine, http.MethodPost, "/api/auth/register", "", creds)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func TestAuthRequired(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(t, engine, http.MethodGet, "/api/accounts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/accounts", "tj_bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAccountAndTradeFlow(t *testing.T) {
	engine := newTestEngine(t)
	token := registerAndLogin(t, engine, "alice")

	w := doJSON(t, engine, http.MethodPost, "/api/accounts", token, map[string]any{
		"name": "main", "initial_balance": "1000",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var accountResp struct {
		Data struct {
			ID uint64 `json:"id"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &accountResp))

	w = doJSON(t, engine, http.MethodPost, "/api/trades", token, map[string]any{
		"account_id":  accountResp.Data.ID,
		"symbol":      "EURUSD",
		"entry_date":  "2025-03-04T10:00:00Z",
		"entry_price": "1.1",
		"size":        "1",
		"side":        "buy",
		"returns":     "50",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tradeResp struct {
		Data struct {
			ID     uint64 `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &tradeResp))
	assert.Equal(t, "WIN", tradeResp.Data.Status)

	w = doJSON(t, engine, http.MethodGet,
		fmt.Sprintf("/api/accounts/%d", accountResp.Data.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "1050")

	w = doJSON(t, engine, http.MethodGet, "/api/dashboard/metrics", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_trades":1`)

	// Another user cannot see the trade.
	other := registerAndLogin(t, engine, "bob")
	w = doJSON(t, engine, http.MethodGet,
		fmt.Sprintf("/api/trades/%d", tradeResp.Data.ID), other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTradeValidationStatus(t *testing.T) {
	engine := newTestEngine(t)
	token := registerAndLogin(t, engine, "alice")

	w := doJSON(t, engine, http.MethodPost, "/api/trades", token, map[string]any{
		"account_id": 999, "symbol": "EURUSD", "entry_date": "2025-03-04T10:00:00Z",
		"entry_price": "1.1", "size": "1", "side": "BUY",
	})
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodGet, "/api/calendar/monthly?year=2025", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentationEndpoints(t *testing.T) {
	engine := newTestEngine(t)
	token := registerAndLogin(t, engine, "alice")

	w := doJSON(t, engine, http.MethodPost, "/api/accounts", token, map[string]any{
		"name": "main", "initial_balance": "500",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	var accountResp struct {
		Data struct {
			ID uint64 `json:"id"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &accountResp))

	w = doJSON(t, engine, http.MethodPost, "/api/documentation-items", token, map[string]any{
		"parent_type":  "account",
		"parent_id":    accountResp.Data.ID,
		"item_type":    "TEXT",
		"text_content": "journal note",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodGet,
		fmt.Sprintf("/api/documentation-items?parent_type=account&parent_id=%d", accountResp.Data.ID),
		token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "journal note")

	w = doJSON(t, engine, http.MethodGet, "/api/documentation-items?parent_type=garbage&parent_id=1", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
