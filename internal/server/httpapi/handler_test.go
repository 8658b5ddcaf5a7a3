package httpapi

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickpad-app/quickpad/internal/logging"
	"github.com/quickpad-app/quickpad/internal/server/config"
	"github.com/quickpad-app/quickpad/internal/server/models"
	"github.com/quickpad-app/quickpad/internal/server/repositories/attachments"
	"github.com/quickpad-app/quickpad/internal/server/repositories/credentials"
	"github.com/quickpad-app/quickpad/internal/server/repositories/notes"
	"github.com/quickpad-app/quickpad/internal/server/services"
)

// newTestServer wires real services over repositories in a temp directory
// and returns the router ready for httptest.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		DataDir:                 t.TempDir(),
		SecretKey:               "test-secret",
		SessionValidityDuration: time.Hour,
		MaxUploadBytes:          1 << 20,
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	credRepo := credentials.NewFileRepository(cfg.UsersFile())
	noteRepo := notes.NewFileRepository(cfg.NotesDir())
	attRepo := attachments.NewDiskRepository(cfg.UploadsDir())

	userSvc := services.NewUserService(credRepo, cfg, logger)
	noteSvc := services.NewNoteService(noteRepo, attRepo, logger)
	exportSvc := services.NewExportService(logger)

	srv := NewServer(cfg.EndpointAddr, logger, userSvc, noteSvc, exportSvc, attRepo,
		cfg.SecretKey, cfg.SessionValidityDuration, cfg.MaxUploadBytes)

	return srv.Routes()
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler, username, password string) string {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, "login failed: %s", rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/login", "", map[string]string{
		"username": "alice",
		"password": "pw",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "quickpad_session", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLogin_AutoRegistersThenRejectsWrongPassword(t *testing.T) {
	h := newTestServer(t)

	// first login registers the account
	login(t, h, "alice", "pw")

	// wrong password on the now-existing account
	rec := doJSON(t, h, http.MethodPost, "/api/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_RejectsPathTraversalUsername(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/login", "", map[string]string{
		"username": "../victim",
		"password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_MissingFields(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/login", "", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotes_RequireSession(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/notes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/notes", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotes_AddAndList(t *testing.T) {
	h := newTestServer(t)
	token := login(t, h, "alice", "pw")

	rec := doJSON(t, h, http.MethodPost, "/api/notes", token, map[string]any{"note": "buy milk"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/notes", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []models.Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "buy milk", list[0].Text)
	assert.True(t, strings.HasSuffix(list[0].Timestamp, "Z"))
	assert.Nil(t, list[0].Attachment)
}

func TestNotes_EmptyRejected(t *testing.T) {
	h := newTestServer(t)
	token := login(t, h, "alice", "pw")

	rec := doJSON(t, h, http.MethodPost, "/api/notes", token, map[string]any{"note": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotes_EditUnknownTimestamp(t *testing.T) {
	h := newTestServer(t)
	token := login(t, h, "alice", "pw")

	rec := doJSON(t, h, http.MethodPost, "/api/notes/edit", token, map[string]string{
		"timestamp": "2000-01-01T00:00:00.000000Z",
		"new_text":  "x",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotes_DeleteFlow(t *testing.T) {
	h := newTestServer(t)
	token := login(t, h, "alice", "pw")

	doJSON(t, h, http.MethodPost, "/api/notes", token, map[string]any{"note": "to delete"})

	rec := doJSON(t, h, http.MethodGet, "/api/notes", token, nil)
	var list []models.Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = doJSON(t, h, http.MethodPost, "/api/notes/delete", token, map[string]string{
		"timestamp": list[0].Timestamp,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// second delete of the same timestamp
	rec = doJSON(t, h, http.MethodPost, "/api/notes/delete", token, map[string]string{
		"timestamp": list[0].Timestamp,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotes_ClearRequiresPassword(t *testing.T) {
	h := newTestServer(t)
	token := login(t, h, "alice", "pw")

	doJSON(t, h, http.MethodPost, "/api/notes", token, map[string]any{"note": "x"})

	rec := doJSON(t, h, http.MethodPost, "/api/notes/clear", token, map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/notes/clear", token, map[string]string{"password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/notes", token, nil)
	var list []models.Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list)
}

func uploadFile(t *testing.T, h http.Handler, token, filename, content string) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.Copy(fw, strings.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, "upload failed: %s", rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestUploadAndDownload(t *testing.T) {
	h := newTestServer(t)
	token := login(t, h, "alice", "pw")

	resp := uploadFile(t, h, token, "Report Final.PDF", "pdf bytes")

	assert.Equal(t, "Report Final.PDF", resp["original_name"])
	stored := resp["stored_name"].(string)
	assert.True(t, strings.HasSuffix(stored, ".PDF"))
	assert.NotEqual(t, "Report Final.PDF", stored)
	assert.Equal(t, float64(len("pdf bytes")), resp["size"])

	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/files/alice/%s", stored), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pdf bytes", rec.Body.String())
}

func TestDownload_OtherUsersFileForbidden(t *testing.T) {
	h := newTestServer(t)
	aliceToken := login(t, h, "alice", "pw")
	bobToken := login(t, h, "bob", "pw")

	resp := uploadFile(t, h, aliceToken, "secret.txt", "private")
	stored := resp["stored_name"].(string)

	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/files/alice/%s", stored), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExport_CSV(t *testing.T) {
	h := newTestServer(t)
	token := login(t, h, "alice", "pw")

	for _, text := range []string{"one", "two", "three"} {
		rec := doJSON(t, h, http.MethodPost, "/api/notes", token, map[string]any{"note": text})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, h, http.MethodGet, "/export/csv", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "alice_notes.csv")

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus three data rows")
	assert.Equal(t, []string{"Note"}, rows[0])
}

func TestExport_InvalidFormat(t *testing.T) {
	h := newTestServer(t)
	token := login(t, h, "alice", "pw")

	rec := doJSON(t, h, http.MethodGet, "/export/pdf", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogout_ExpiresCookie(t *testing.T) {
	h := newTestServer(t)
	token := login(t, h, "alice", "pw")

	rec := doJSON(t, h, http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "quickpad_session", cookies[0].Name)
	assert.True(t, cookies[0].MaxAge < 0)
}
