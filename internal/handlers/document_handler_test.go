package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Vampire-js/DAAVAT/internal/auth"
	"github.com/Vampire-js/DAAVAT/internal/handlers"
	"github.com/Vampire-js/DAAVAT/internal/models"
	"github.com/Vampire-js/DAAVAT/internal/router"
	"github.com/Vampire-js/DAAVAT/internal/store"
)

const testCookie = "access_token"

type testEnv struct {
	engine   *gin.Engine
	verifier *auth.Verifier
}

func newTestEnv(t *testing.T, secret string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Document{}))

	verifier := auth.NewVerifier(secret)
	handler := handlers.NewDocumentHandler(store.New(db), nil, nil)

	engine := gin.New()
	router.Setup(engine, verifier, testCookie, handler)

	return &testEnv{engine: engine, verifier: verifier}
}

func (e *testEnv) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := e.verifier.Issue(userID, "user@example.com", time.Hour)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decodeDoc(t *testing.T, body []byte) models.Document {
	t.Helper()
	var doc models.Document
	require.NoError(t, json.Unmarshal(body, &doc))
	return doc
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	env := newTestEnv(t, "test-secret")
	userID := uuid.New()
	token := env.token(t, userID)

	w := env.do("GET", "/api/fileTree/documents", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do("POST", "/api/fileTree/addFolder", `{"name":"sneaky"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do("POST", "/api/fileTree/addFolder", `{"name":"sneaky"}`, "bogus-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// None of the rejected requests mutated the store.
	w = env.do("GET", "/api/fileTree/documents", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	var docs []models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	assert.Empty(t, docs)
}

func TestMissingSecretFailsClosed(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do("GET", "/api/fileTree/documents", "", "some-cookie-value")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Server configuration error")
}

func TestAddFolder(t *testing.T) {
	env := newTestEnv(t, "test-secret")
	token := env.token(t, uuid.New())

	w := env.do("POST", "/api/fileTree/addFolder", `{"name":"Biology"}`, token)
	require.Equal(t, http.StatusCreated, w.Code)

	folder := decodeDoc(t, w.Body.Bytes())
	assert.Equal(t, "Biology", folder.Name)
	assert.Equal(t, models.KindFolder, folder.Kind)
	assert.Nil(t, folder.ParentID)
	assert.Greater(t, folder.Order, int64(0))

	w = env.do("POST", "/api/fileTree/addFolder", `{}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code, "name is required")
}

func TestBoardContentTypeGuard(t *testing.T) {
	env := newTestEnv(t, "test-secret")
	token := env.token(t, uuid.New())

	w := env.do("POST", "/api/fileTree/addBoard", `{"name":"canvas","content":123}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Board content must be a string")

	w = env.do("POST", "/api/fileTree/addBoard", `{"name":"canvas","content":"{\"shapes\":[]}"}`, token)
	require.Equal(t, http.StatusCreated, w.Code)
	board := decodeDoc(t, w.Body.Bytes())
	assert.Equal(t, models.KindBoard, board.Kind)
	assert.Equal(t, `{"shapes":[]}`, board.Content)

	// Creation tolerates an absent snapshot; it defaults to empty.
	w = env.do("POST", "/api/fileTree/addBoard", `{"name":"blank"}`, token)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "", decodeDoc(t, w.Body.Bytes()).Content)

	// Updates are stricter: boardID and a string content are mandatory.
	w = env.do("POST", "/api/fileTree/updateBoard", fmt.Sprintf(`{"boardID":%q,"content":42}`, board.ID), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Board content must be a string")

	w = env.do("POST", "/api/fileTree/updateBoard", `{"content":"{}"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "boardID is required")

	w = env.do("POST", "/api/fileTree/updateBoard", fmt.Sprintf(`{"boardID":%q}`, board.ID), token)
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing content is not a string")
}

func TestGetNoteByIDShapeAndKindScoping(t *testing.T) {
	env := newTestEnv(t, "test-secret")
	token := env.token(t, uuid.New())

	w := env.do("POST", "/api/fileTree/addNote", `{"name":"Cells","content":"hello"}`, token)
	require.Equal(t, http.StatusCreated, w.Code)
	note := decodeDoc(t, w.Body.Bytes())

	w = env.do("POST", "/api/fileTree/getNoteById", fmt.Sprintf(`{"noteID":%q}`, note.ID), token)
	require.Equal(t, http.StatusOK, w.Code)

	var wrapped []models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wrapped))
	require.Len(t, wrapped, 1, "historical single-element array shape")
	assert.Equal(t, note.ID, wrapped[0].ID)
	assert.Equal(t, "hello", wrapped[0].Content)

	// A note id is not a board.
	w = env.do("POST", "/api/fileTree/getBoardById", fmt.Sprintf(`{"boardID":%q}`, note.ID), token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do("POST", "/api/fileTree/getNoteById", fmt.Sprintf(`{"noteID":%q}`, uuid.New()), token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do("POST", "/api/fileTree/getNoteById", `{"noteID":"not-a-uuid"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOwnershipIsolationOverHTTP(t *testing.T) {
	env := newTestEnv(t, "test-secret")
	ownerToken := env.token(t, uuid.New())
	intruderToken := env.token(t, uuid.New())

	w := env.do("POST", "/api/fileTree/addNote", `{"name":"secret"}`, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code)
	note := decodeDoc(t, w.Body.Bytes())

	w = env.do("POST", "/api/fileTree/getNoteById", fmt.Sprintf(`{"noteID":%q}`, note.ID), intruderToken)
	assert.Equal(t, http.StatusNotFound, w.Code, "foreign documents read as not found")

	w = env.do("POST", "/api/fileTree/renameItem", fmt.Sprintf(`{"id":%q,"newName":"mine now"}`, note.ID), intruderToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do("POST", "/api/fileTree/delete", fmt.Sprintf(`{"id":%q}`, note.ID), intruderToken)
	assert.Equal(t, http.StatusOK, w.Code, "delete is silent even without a match")

	w = env.do("POST", "/api/fileTree/getNoteById", fmt.Sprintf(`{"noteID":%q}`, note.ID), ownerToken)
	assert.Equal(t, http.StatusOK, w.Code, "owner's document survived the foreign delete")
}

func TestDeleteIsIdempotent(t *testing.T) {
	env := newTestEnv(t, "test-secret")
	token := env.token(t, uuid.New())

	w := env.do("POST", "/api/fileTree/addFolder", `{"name":"doomed"}`, token)
	require.Equal(t, http.StatusCreated, w.Code)
	folder := decodeDoc(t, w.Body.Bytes())

	body := fmt.Sprintf(`{"id":%q}`, folder.ID)
	w = env.do("POST", "/api/fileTree/delete", body, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Deleted successfully")

	w = env.do("POST", "/api/fileTree/delete", body, token)
	assert.Equal(t, http.StatusOK, w.Code, "second delete does not error")
}

func TestEndToEndScenario(t *testing.T) {
	env := newTestEnv(t, "test-secret")
	token := env.token(t, uuid.New())

	// (a) create folder "Biology"
	w := env.do("POST", "/api/fileTree/addFolder", `{"name":"Biology"}`, token)
	require.Equal(t, http.StatusCreated, w.Code)
	folder := decodeDoc(t, w.Body.Bytes())

	// (b) create note "Cells" inside it
	w = env.do("POST", "/api/fileTree/addNote",
		fmt.Sprintf(`{"name":"Cells","parentId":%q,"content":""}`, folder.ID), token)
	require.Equal(t, http.StatusCreated, w.Code)
	note := decodeDoc(t, w.Body.Bytes())
	require.NotNil(t, note.ParentID)
	assert.Equal(t, folder.ID, *note.ParentID)

	// (c) update content and attach a reference
	w = env.do("POST", "/api/fileTree/updateNote", fmt.Sprintf(
		`{"noteID":%q,"content":"{\"text\":\"membranes\"}","references":[{"id":"r1","source":"PDF","title":"Ch1","content":"summary"}]}`,
		note.ID), token)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeDoc(t, w.Body.Bytes())
	require.Len(t, updated.Refs, 1)
	assert.Equal(t, models.SourcePDF, updated.Refs[0].Source)

	// (d) the reference round-trips through the store
	w = env.do("POST", "/api/fileTree/getNoteById", fmt.Sprintf(`{"noteID":%q}`, note.ID), token)
	require.Equal(t, http.StatusOK, w.Code)
	var wrapped []models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wrapped))
	require.Len(t, wrapped, 1)
	require.Len(t, wrapped[0].Refs, 1)
	assert.Equal(t, "r1", wrapped[0].Refs[0].ID)
	assert.Equal(t, `{"text":"membranes"}`, wrapped[0].Content)

	// (e) rename the folder; the note keeps pointing at it
	w = env.do("POST", "/api/fileTree/renameItem",
		fmt.Sprintf(`{"id":%q,"newName":"Biology 101"}`, folder.ID), token)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do("GET", "/api/fileTree/documents", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	var docs []models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	require.Len(t, docs, 2)

	byID := map[uuid.UUID]models.Document{}
	for _, d := range docs {
		byID[d.ID] = d
	}
	assert.Equal(t, "Biology 101", byID[folder.ID].Name)
	require.NotNil(t, byID[note.ID].ParentID)
	assert.Equal(t, folder.ID, *byID[note.ID].ParentID)
}

func TestDocumentTreeEndpoint(t *testing.T) {
	env := newTestEnv(t, "test-secret")
	token := env.token(t, uuid.New())

	w := env.do("POST", "/api/fileTree/addFolder", `{"name":"root","order":1}`, token)
	require.Equal(t, http.StatusCreated, w.Code)
	folder := decodeDoc(t, w.Body.Bytes())

	w = env.do("POST", "/api/fileTree/addNote",
		fmt.Sprintf(`{"name":"child","parentId":%q,"order":2}`, folder.ID), token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do("GET", "/api/fileTree/documents/tree", "", token)
	require.Equal(t, http.StatusOK, w.Code)

	var roots []struct {
		models.Document
		Children []struct {
			models.Document
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roots))
	require.Len(t, roots, 1)
	assert.Equal(t, "root", roots[0].Name)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "child", roots[0].Children[0].Name)
}
