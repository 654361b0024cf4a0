package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritasos/ordem-backend/internal/auth"
	"github.com/veritasos/ordem-backend/internal/campaign"
	"github.com/veritasos/ordem-backend/internal/db/dbtest"
	"github.com/veritasos/ordem-backend/internal/generator"
	"github.com/veritasos/ordem-backend/internal/server"
)

const generatedNPC = `{"name":"Padre Tomás","origin":"Religioso","nex":20,"agi":1,"for":1,"int":2,"pre":3,"vig":1,"highlight_skill":"Religião","dark_secret":"Ouve vozes no confessionário."}`

// fakeGemini answers 404 for the first two models and a fenced NPC for the rest.
func fakeGemini(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if strings.Contains(r.URL.Path, "gemini-2.0-flash") || strings.Contains(r.URL.Path, "gemini-1.5-flash") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"model not found","status":"NOT_FOUND"}}`))
			return
		}
		text, _ := json.Marshal("```json\n" + generatedNPC + "\n```")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":` + string(text) + `}]}}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newServer(t *testing.T, apiKey, baseURL string) http.Handler {
	t.Helper()
	dbtest.Setup(t, append(auth.Models(), campaign.Models()...)...)

	gen := generator.NewService(
		generator.NewClient(apiKey, baseURL),
		campaign.ContextLoader{},
		generator.Options{APIKey: apiKey, Models: generator.DefaultModels, Timeout: 5 * time.Second},
	)
	return server.NewRouter(server.Deps{
		AllowedOrigins: []string{"http://localhost:3000"},
		SessionTTL:     time.Hour,
		Generator:      gen,
	})
}

func call(t *testing.T, h http.Handler, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func TestRoot(t *testing.T) {
	h := newServer(t, "", "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Server is up!\n", rec.Body.String())
}

func TestCampaignFlow(t *testing.T) {
	h := newServer(t, "", "")

	code, body := call(t, h, http.MethodPost, "/users", map[string]any{"username": "mestre", "password": "mestre123", "is_master": true})
	require.Equal(t, http.StatusCreated, code)
	masterID := body["user"].(map[string]any)["id"]

	code, body = call(t, h, http.MethodPost, "/users", map[string]any{"username": "jogadora", "password": "segredo"})
	require.Equal(t, http.StatusCreated, code)
	playerID := body["user"].(map[string]any)["id"]

	code, body = call(t, h, http.MethodPost, "/tables", map[string]any{"name": "Ordem de Campinas", "master_user_id": masterID})
	require.Equal(t, http.StatusCreated, code)
	table := body["table"].(map[string]any)
	tableToken := table["table_token"].(string)
	formatted := table["table_token_formatted"].(string)

	code, body = call(t, h, http.MethodPost, "/characters", map[string]any{
		"table_token": formatted,
		"user_id":     playerID,
		"name":        "Liz",
		"agi":         2,
	})
	require.Equal(t, http.StatusCreated, code, body)
	charToken := body["character"].(map[string]any)["token"].(string)

	code, body = call(t, h, http.MethodPost, "/auth/login", map[string]any{"username": "jogadora", "password": "segredo"})
	require.Equal(t, http.StatusOK, code)
	tables := body["tables"].([]any)
	require.Len(t, tables, 1)
	assert.Equal(t, tableToken, tables[0].(map[string]any)["table_token"])
	assert.Equal(t, charToken, tables[0].(map[string]any)["character_token"])

	code, _ = call(t, h, http.MethodGet, "/characters?character_token="+charToken+"&table_token="+strings.ToUpper(tableToken), nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = call(t, h, http.MethodGet, "/characters?character_token="+charToken+"&table_token=ffffffffffffffffffffffffffffffff", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = call(t, h, http.MethodGet, "/dice/roll?score=3", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["rolls"], 3)
}

func TestGenerateNPCFallsBackAcrossModels(t *testing.T) {
	var calls atomic.Int32
	gemini := fakeGemini(t, &calls)
	h := newServer(t, "test-key", gemini.URL)

	code, body := call(t, h, http.MethodPost, "/tables", map[string]any{"name": "Ordem", "description": "Uma cidade tomada pela Calamidade."})
	require.Equal(t, http.StatusCreated, code)
	tableToken := body["table"].(map[string]any)["table_token"].(string)

	code, _ = call(t, h, http.MethodPost, "/notes", map[string]any{
		"table_token": tableToken, "type": "shared", "title": "Sessão 1", "content": "O grupo encontrou o símbolo.",
	})
	require.Equal(t, http.StatusCreated, code)

	code, body = call(t, h, http.MethodPost, "/generate-npc", map[string]any{"theme": "padre assombrado", "table_token": tableToken})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "gemini-1.5-pro", body["model"])
	npc := body["npc"].(map[string]any)
	assert.Equal(t, "Padre Tomás", npc["name"])
	assert.EqualValues(t, 20, npc["nex"])
	assert.EqualValues(t, 3, calls.Load())

	code, body = call(t, h, http.MethodGet, "/npcs?table_token="+tableToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["count"])
}

func TestGenerateNPCEmptyThemeMakesNoCalls(t *testing.T) {
	var calls atomic.Int32
	gemini := fakeGemini(t, &calls)
	h := newServer(t, "test-key", gemini.URL)

	code, body := call(t, h, http.MethodPost, "/generate-npc", map[string]any{"theme": " ", "table_token": "a1b2c3d4e5f60718a1b2c3d4e5f60718"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body["error"])
	assert.Zero(t, calls.Load())
}

func TestGenerateNPCWithoutKey(t *testing.T) {
	var calls atomic.Int32
	gemini := fakeGemini(t, &calls)
	h := newServer(t, "", gemini.URL)

	code, body := call(t, h, http.MethodPost, "/tables", map[string]any{"name": "Ordem"})
	require.Equal(t, http.StatusCreated, code)
	tableToken := body["table"].(map[string]any)["table_token"].(string)

	code, _ = call(t, h, http.MethodPost, "/generate-npc", map[string]any{"theme": "padre", "table_token": tableToken})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Zero(t, calls.Load())
}

func TestGenerateNPCUnknownTable(t *testing.T) {
	var calls atomic.Int32
	gemini := fakeGemini(t, &calls)
	h := newServer(t, "test-key", gemini.URL)

	code, _ := call(t, h, http.MethodPost, "/generate-npc", map[string]any{"theme": "padre", "table_token": "a1b2c3d4e5f60718a1b2c3d4e5f60718"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Zero(t, calls.Load())
}
