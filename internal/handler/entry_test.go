package handler_test

// Handler tests run against the flat-file store in a temp directory, so
// they exercise the real decode → service → repository → envelope path
// end to end without a database.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayakodama/wishboard/internal/handler"
	"github.com/ayakodama/wishboard/internal/repository/jsonfile"
	"github.com/ayakodama/wishboard/internal/service"
)

type testAPI struct {
	entries   *handler.EntryHandler
	reactions *handler.ReactionHandler
	comments  *handler.CommentHandler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := jsonfile.New(filepath.Join(t.TempDir(), "board.json"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &testAPI{
		entries:   handler.NewEntryHandler(service.NewEntryService(store, store, logger), logger),
		reactions: handler.NewReactionHandler(service.NewReactionService(store, store, logger), logger),
		comments:  handler.NewCommentHandler(service.NewCommentService(store, store, logger), logger),
	}
}

// env mirrors the response envelope with data left as raw JSON so each
// test can decode it into the shape it expects.
type env struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, body io.Reader) env {
	t.Helper()
	var e env
	require.NoError(t, json.NewDecoder(body).Decode(&e))
	return e
}

func postJSON(t *testing.T, h http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

type entryPayload struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Content string `json:"content"`
	Year    int    `json:"year"`
	Locked  bool   `json:"locked"`
	User    struct {
		Name string `json:"name"`
	} `json:"user"`
	ImageURL  *string `json:"imageUrl"`
	Reactions []struct {
		Emoji string `json:"emoji"`
	} `json:"reactions"`
	Comments []struct {
		ID      string `json:"id"`
		Content string `json:"content"`
	} `json:"comments"`
}

func createEntry(t *testing.T, api *testAPI, userName, typ, content string, year int) entryPayload {
	t.Helper()
	body := fmt.Sprintf(`{"userName":%q,"type":%q,"content":%q,"year":%d}`, userName, typ, content, year)
	rr := postJSON(t, api.entries.HandleCreate, "/api/entries", body)
	require.Equal(t, http.StatusCreated, rr.Code, "body: %s", rr.Body.String())
	var entry entryPayload
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr.Body).Data, &entry))
	return entry
}

func TestEntryHandler_Create(t *testing.T) {
	t.Run("valid entry", func(t *testing.T) {
		api := newTestAPI(t)

		rr := postJSON(t, api.entries.HandleCreate, "/api/entries",
			`{"userName":"Alex","type":"WISH","content":"Learn Rust","year":2026}`)

		assert.Equal(t, http.StatusCreated, rr.Code)
		e := decodeEnvelope(t, rr.Body)
		assert.True(t, e.Success)
		var entry entryPayload
		require.NoError(t, json.Unmarshal(e.Data, &entry))
		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, "WISH", entry.Type)
		assert.Equal(t, "Alex", entry.User.Name)
	})

	t.Run("invalid JSON body", func(t *testing.T) {
		api := newTestAPI(t)

		rr := postJSON(t, api.entries.HandleCreate, "/api/entries", `{"userName":`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		e := decodeEnvelope(t, rr.Body)
		assert.False(t, e.Success)
		assert.NotEmpty(t, e.Error)
	})

	t.Run("unknown type", func(t *testing.T) {
		api := newTestAPI(t)

		rr := postJSON(t, api.entries.HandleCreate, "/api/entries",
			`{"userName":"Alex","type":"DREAM","content":"x","year":2026}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("malformed lockedUntil", func(t *testing.T) {
		api := newTestAPI(t)

		rr := postJSON(t, api.entries.HandleCreate, "/api/entries",
			`{"userName":"Alex","type":"WISH","content":"x","year":2026,"lockedUntil":"tomorrow"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestEntryHandler_ListAndGet(t *testing.T) {
	api := newTestAPI(t)
	created := createEntry(t, api, "Alex", "MEMORY", "that summer", 2024)
	createEntry(t, api, "Mira", "WISH", "see auroras", 2027)

	t.Run("list all", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/entries", nil)
		rr := httptest.NewRecorder()
		api.entries.HandleList(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var entries []entryPayload
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr.Body).Data, &entries))
		assert.Len(t, entries, 2)
	})

	t.Run("list filtered by user and type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/entries?user=Mira&type=WISH", nil)
		rr := httptest.NewRecorder()
		api.entries.HandleList(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var entries []entryPayload
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr.Body).Data, &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "Mira", entries[0].User.Name)
	})

	t.Run("list with bad type filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/entries?type=DREAM", nil)
		rr := httptest.NewRecorder()
		api.entries.HandleList(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("get by id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/entries/"+created.ID, nil)
		req.SetPathValue("id", created.ID)
		rr := httptest.NewRecorder()
		api.entries.HandleGetByID(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var entry entryPayload
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr.Body).Data, &entry))
		assert.Equal(t, created.ID, entry.ID)
		assert.Equal(t, "that summer", entry.Content)
	})

	t.Run("get unknown id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/entries/nope", nil)
		req.SetPathValue("id", "nope")
		rr := httptest.NewRecorder()
		api.entries.HandleGetByID(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		e := decodeEnvelope(t, rr.Body)
		assert.False(t, e.Success)
	})
}

func TestEntryHandler_Update(t *testing.T) {
	t.Run("owner edits content", func(t *testing.T) {
		api := newTestAPI(t)
		created := createEntry(t, api, "Alex", "WISH", "old text", 2026)

		req := httptest.NewRequest(http.MethodPut, "/api/entries/"+created.ID,
			bytes.NewBufferString(`{"userName":"Alex","content":"new text"}`))
		req.SetPathValue("id", created.ID)
		rr := httptest.NewRecorder()
		api.entries.HandleUpdate(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var entry entryPayload
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr.Body).Data, &entry))
		assert.Equal(t, "new text", entry.Content)
	})

	t.Run("null clears the image", func(t *testing.T) {
		api := newTestAPI(t)
		created := createEntry(t, api, "Alex", "WISH", "text", 2026)

		req := httptest.NewRequest(http.MethodPut, "/api/entries/"+created.ID,
			bytes.NewBufferString(`{"userName":"Alex","imageUrl":"https://img.example/a.jpg"}`))
		req.SetPathValue("id", created.ID)
		rr := httptest.NewRecorder()
		api.entries.HandleUpdate(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		req = httptest.NewRequest(http.MethodPut, "/api/entries/"+created.ID,
			bytes.NewBufferString(`{"userName":"Alex","imageUrl":null}`))
		req.SetPathValue("id", created.ID)
		rr = httptest.NewRecorder()
		api.entries.HandleUpdate(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var entry entryPayload
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr.Body).Data, &entry))
		assert.Nil(t, entry.ImageURL)
		assert.Equal(t, "text", entry.Content, "absent fields stay untouched")
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		api := newTestAPI(t)
		created := createEntry(t, api, "Alex", "WISH", "mine", 2026)

		req := httptest.NewRequest(http.MethodPut, "/api/entries/"+created.ID,
			bytes.NewBufferString(`{"userName":"Mira","content":"hers now"}`))
		req.SetPathValue("id", created.ID)
		rr := httptest.NewRecorder()
		api.entries.HandleUpdate(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("bad timestamp in patch", func(t *testing.T) {
		api := newTestAPI(t)
		created := createEntry(t, api, "Alex", "WISH", "x", 2026)

		req := httptest.NewRequest(http.MethodPut, "/api/entries/"+created.ID,
			bytes.NewBufferString(`{"userName":"Alex","lockedUntil":"next week"}`))
		req.SetPathValue("id", created.ID)
		rr := httptest.NewRecorder()
		api.entries.HandleUpdate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestEntryHandler_Delete(t *testing.T) {
	api := newTestAPI(t)
	created := createEntry(t, api, "Alex", "MEMORY", "fading", 2020)

	t.Run("non-owner is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/entries/"+created.ID+"?userName=Mira", nil)
		req.SetPathValue("id", created.ID)
		rr := httptest.NewRecorder()
		api.entries.HandleDelete(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("owner deletes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/entries/"+created.ID+"?userName=Alex", nil)
		req.SetPathValue("id", created.ID)
		rr := httptest.NewRecorder()
		api.entries.HandleDelete(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, decodeEnvelope(t, rr.Body).Success)

		req = httptest.NewRequest(http.MethodGet, "/api/entries/"+created.ID, nil)
		req.SetPathValue("id", created.ID)
		rr = httptest.NewRecorder()
		api.entries.HandleGetByID(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestEntryHandler_TimeLockRedaction(t *testing.T) {
	api := newTestAPI(t)

	rr := postJSON(t, api.entries.HandleCreate, "/api/entries",
		`{"userName":"Alex","type":"WISH","content":"secret until 2100","year":2026,"lockedUntil":"2100-01-01T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created entryPayload
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr.Body).Data, &created))

	// Every read path hides the content while the lock holds.
	assert.True(t, created.Locked)
	assert.Empty(t, created.Content)

	req := httptest.NewRequest(http.MethodGet, "/api/entries/"+created.ID, nil)
	req.SetPathValue("id", created.ID)
	rec := httptest.NewRecorder()
	api.entries.HandleGetByID(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var entry entryPayload
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec.Body).Data, &entry))
	assert.True(t, entry.Locked)
	assert.Empty(t, entry.Content)

	// Same redaction on the list.
	req = httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	rec = httptest.NewRecorder()
	api.entries.HandleList(rec, req)
	var entries []entryPayload
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec.Body).Data, &entries))
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Locked)
	assert.Empty(t, entries[0].Content)
}
