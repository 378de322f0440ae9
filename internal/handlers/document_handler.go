package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Vampire-js/DAAVAT/internal/events"
	"github.com/Vampire-js/DAAVAT/internal/kafka"
	"github.com/Vampire-js/DAAVAT/internal/middleware"
	"github.com/Vampire-js/DAAVAT/internal/models"
	rediscache "github.com/Vampire-js/DAAVAT/internal/redis"
	"github.com/Vampire-js/DAAVAT/internal/store"
	"github.com/Vampire-js/DAAVAT/internal/tree"
	"github.com/Vampire-js/DAAVAT/pkg/responses"
)

type DocumentHandler struct {
	store         *store.Store
	redisService  *rediscache.Service
	kafkaProducer *kafka.Producer
}

// NewDocumentHandler wires the handler. redisService and kafkaProducer may
// be nil; caching and event publishing are then skipped.
func NewDocumentHandler(s *store.Store, redisService *rediscache.Service, kafkaProducer *kafka.Producer) *DocumentHandler {
	return &DocumentHandler{
		store:         s,
		redisService:  redisService,
		kafkaProducer: kafkaProducer,
	}
}

// ListDocuments returns every document owned by the caller, sorted by sort
// key. The body is a bare array; existing clients rebuild the tree locally.
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	currentUserID, exists := middleware.CurrentUserID(c)
	if !exists {
		log.Println("Unauthorized attempt to list documents: missing user_id")
		responses.Message(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	docs, err := h.store.List(c.Request.Context(), currentUserID)
	if err != nil {
		log.Printf("Failed to list documents: %v", err)
		responses.Message(c, http.StatusInternalServerError, "Error fetching documents")
		return
	}

	c.JSON(http.StatusOK, docs)
}

// GetDocumentTree returns the caller's documents assembled into a hierarchy.
func (h *DocumentHandler) GetDocumentTree(c *gin.Context) {
	currentUserID, exists := middleware.CurrentUserID(c)
	if !exists {
		log.Println("Unauthorized attempt to fetch tree: missing user_id")
		responses.Message(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	docs, err := h.store.List(c.Request.Context(), currentUserID)
	if err != nil {
		log.Printf("Failed to list documents: %v", err)
		responses.Message(c, http.StatusInternalServerError, "Error fetching documents")
		return
	}

	c.JSON(http.StatusOK, tree.Build(docs))
}

// AddFolder creates a folder for the authenticated user.
func (h *DocumentHandler) AddFolder(c *gin.Context) {
	currentUserID, exists := middleware.CurrentUserID(c)
	if !exists {
		log.Println("Unauthorized attempt to create folder: missing user_id")
		responses.Message(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		Name     string     `json:"name" binding:"required"`
		ParentID *uuid.UUID `json:"parentId"`
		Order    int64      `json:"order"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid request body: %v", err)
		responses.Message(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	folder, err := h.store.CreateFolder(c.Request.Context(), currentUserID, req.Name, req.ParentID, req.Order)
	if err != nil {
		log.Printf("Failed to create folder: %v", err)
		responses.Message(c, http.StatusInternalServerError, "Error creating folder")
		return
	}

	h.publish(c.Request.Context(), events.DocumentCreated, folder, currentUserID)

	c.JSON(http.StatusCreated, folder)
}

// AddNote creates a note, optionally seeded with content and references.
func (h *DocumentHandler) AddNote(c *gin.Context) {
	currentUserID, exists := middleware.CurrentUserID(c)
	if !exists {
		log.Println("Unauthorized attempt to create note: missing user_id")
		responses.Message(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		Name       string               `json:"name" binding:"required"`
		ParentID   *uuid.UUID           `json:"parentId"`
		Content    string               `json:"content"`
		Order      int64                `json:"order"`
		References models.ReferenceList `json:"references"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid request body: %v", err)
		responses.Message(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	note, err := h.store.CreateNote(c.Request.Context(), currentUserID, req.Name, req.ParentID, req.Content, req.Order, req.References)
	if err != nil {
		log.Printf("Failed to create note: %v", err)
		responses.Message(c, http.StatusInternalServerError, "Error creating note")
		return
	}

	h.publish(c.Request.Context(), events.DocumentCreated, note, currentUserID)

	c.JSON(http.StatusCreated, note)
}

// AddBoard creates a board. The snapshot is opaque but must arrive as a
// JSON string; anything else is rejected before touching the store.
func (h *DocumentHandler) AddBoard(c *gin.Context) {
	currentUserID, exists := middleware.CurrentUserID(c)
	if !exists {
		log.Println("Unauthorized attempt to create board: missing user_id")
		responses.Message(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		Name     string          `json:"name" binding:"required"`
		ParentID *uuid.UUID      `json:"parentId"`
		Content  json.RawMessage `json:"content"`
		Order    int64           `json:"order"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid request body: %v", err)
		responses.Message(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	content, ok := decodeStringContent(req.Content, true)
	if !ok {
		responses.Message(c, http.StatusBadRequest, "Board content must be a string")
		return
	}

	board, err := h.store.CreateBoard(c.Request.Context(), currentUserID, req.Name, req.ParentID, content, req.Order)
	if err != nil {
		log.Printf("Failed to create board: %v", err)
		responses.Message(c, http.StatusInternalServerError, "Error creating board")
		return
	}

	h.publish(c.Request.Context(), events.DocumentCreated, board, currentUserID)

	c.JSON(http.StatusCreated, board)
}

// GetNoteByID fetches a single owned note. The body is a single-element
// array; existing clients index into it, so the shape is kept.
func (h *DocumentHandler) GetNoteByID(c *gin.Context) {
	h.getByID(c, models.KindNote, "noteID", "Note not found", "Error fetching note")
}

// GetBoardByID fetches a single owned board, wrapped like GetNoteByID.
func (h *DocumentHandler) GetBoardByID(c *gin.Context) {
	h.getByID(c, models.KindBoard, "boardID", "Board not found", "Error fetching board")
}

func (h *DocumentHandler) getByID(c *gin.Context, kind models.Kind, idField, notFoundMsg, failMsg string) {
	currentUserID, exists := middleware.CurrentUserID(c)
	if !exists {
		log.Printf("Unauthorized attempt to fetch %s: missing user_id", kind)
		responses.Message(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid request body: %v", err)
		responses.Message(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	id, err := uuid.Parse(req[idField])
	if err != nil {
		log.Printf("Invalid %s format: %s", idField, req[idField])
		responses.Message(c, http.StatusBadRequest, "Invalid document ID format")
		return
	}

	// Cache hits still re-check ownership and kind; a foreign document must
	// read as not found.
	if h.redisService != nil {
		cached, err := h.redisService.GetDocument(c.Request.Context(), id)
		if err == nil && cached != nil && cached.UserID == currentUserID && cached.Kind == kind {
			c.JSON(http.StatusOK, []models.Document{*cached})
			return
		}
	}

	doc, err := h.store.GetByID(c.Request.Context(), currentUserID, id, kind)
	if err != nil {
		if err == store.ErrNotFound {
			responses.Message(c, http.StatusNotFound, notFoundMsg)
			return
		}
		log.Printf("Failed to fetch %s %s: %v", kind, id, err)
		responses.Message(c, http.StatusInternalServerError, failMsg)
		return
	}

	if h.redisService != nil {
		if err := h.redisService.SetDocument(c.Request.Context(), &doc); err != nil {
			log.Printf("Failed to cache document %s: %v", doc.ID, err)
		}
	}

	c.JSON(http.StatusOK, []models.Document{doc})
}

// UpdateNote overwrites a note's content, and its references when the field
// is present. Omitted references are left untouched.
func (h *DocumentHandler) UpdateNote(c *gin.Context) {
	currentUserID, exists := middleware.CurrentUserID(c)
	if !exists {
		log.Println("Unauthorized attempt to update note: missing user_id")
		responses.Message(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		NoteID     uuid.UUID            `json:"noteID" binding:"required"`
		Content    string               `json:"content"`
		References models.ReferenceList `json:"references"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid request body: %v", err)
		responses.Message(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	note, err := h.store.UpdateNote(c.Request.Context(), currentUserID, req.NoteID, req.Content, req.References)
	if err != nil {
		if err == store.ErrNotFound {
			responses.Message(c, http.StatusNotFound, "Note not found")
			return
		}
		log.Printf("Failed to update note %s: %v", req.NoteID, err)
		responses.Message(c, http.StatusInternalServerError, "Error updating note")
		return
	}

	h.afterMutation(c.Request.Context(), events.DocumentUpdated, note, currentUserID)

	c.JSON(http.StatusOK, note)
}

// UpdateBoard overwrites a board's snapshot. boardID and a string content
// are both mandatory here, unlike creation.
func (h *DocumentHandler) UpdateBoard(c *gin.Context) {
	currentUserID, exists := middleware.CurrentUserID(c)
	if !exists {
		log.Println("Unauthorized attempt to update board: missing user_id")
		responses.Message(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		BoardID *uuid.UUID      `json:"boardID"`
		Content json.RawMessage `json:"content"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid request body: %v", err)
		responses.Message(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if req.BoardID == nil {
		responses.Message(c, http.StatusBadRequest, "boardID is required")
		return
	}

	content, ok := decodeStringContent(req.Content, false)
	if !ok {
		responses.Message(c, http.StatusBadRequest, "Board content must be a string")
		return
	}

	board, err := h.store.UpdateBoard(c.Request.Context(), currentUserID, *req.BoardID, content)
	if err != nil {
		if err == store.ErrNotFound {
			responses.Message(c, http.StatusNotFound, "Board not found")
			return
		}
		log.Printf("Failed to update board %s: %v", req.BoardID, err)
		responses.Message(c, http.StatusInternalServerError, "Error updating board")
		return
	}

	h.afterMutation(c.Request.Context(), events.DocumentUpdated, board, currentUserID)

	c.JSON(http.StatusOK, board)
}

// RenameItem renames any owned document regardless of kind.
func (h *DocumentHandler) RenameItem(c *gin.Context) {
	currentUserID, exists := middleware.CurrentUserID(c)
	if !exists {
		log.Println("Unauthorized attempt to rename document: missing user_id")
		responses.Message(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		ID      uuid.UUID `json:"id" binding:"required"`
		NewName string    `json:"newName" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid request body: %v", err)
		responses.Message(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	doc, err := h.store.Rename(c.Request.Context(), currentUserID, req.ID, req.NewName)
	if err != nil {
		if err == store.ErrNotFound {
			responses.Message(c, http.StatusNotFound, "Item not found or unauthorized")
			return
		}
		log.Printf("Failed to rename document %s: %v", req.ID, err)
		responses.Message(c, http.StatusInternalServerError, "Failed to rename item")
		return
	}

	h.afterMutation(c.Request.Context(), events.DocumentRenamed, doc, currentUserID)

	c.JSON(http.StatusOK, doc)
}

// DeleteDocument removes an owned document. Deleting something that is
// already gone still succeeds, and children are never cascaded.
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	currentUserID, exists := middleware.CurrentUserID(c)
	if !exists {
		log.Println("Unauthorized attempt to delete document: missing user_id")
		responses.Message(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		ID uuid.UUID `json:"id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid request body: %v", err)
		responses.Message(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.store.Delete(c.Request.Context(), currentUserID, req.ID); err != nil {
		log.Printf("Failed to delete document %s: %v", req.ID, err)
		responses.Message(c, http.StatusInternalServerError, "Error deleting document")
		return
	}

	if h.kafkaProducer != nil {
		event := events.DocumentEvent{
			EventID:    uuid.New(),
			Type:       events.DocumentDeleted,
			DocumentID: req.ID,
			OwnerID:    currentUserID,
			ActorID:    currentUserID,
			Timestamp:  time.Now().UTC(),
		}
		if err := h.kafkaProducer.PublishDocumentEvent(c.Request.Context(), event); err != nil {
			log.Printf("Failed to publish delete event: %v", err)
		}
	}
	if h.redisService != nil {
		if err := h.redisService.InvalidateDocument(c.Request.Context(), req.ID); err != nil {
			log.Printf("Failed to invalidate document cache: %v", err)
		}
	}

	responses.Message(c, http.StatusOK, "Deleted successfully")
}

// publish emits a lifecycle event when a producer is configured. Failures
// are logged and never fail the request.
func (h *DocumentHandler) publish(ctx context.Context, t events.Type, doc models.Document, actorID uuid.UUID) {
	if h.kafkaProducer == nil {
		return
	}
	if err := h.kafkaProducer.PublishDocumentEvent(ctx, events.NewDocumentEvent(t, doc, actorID)); err != nil {
		log.Printf("Failed to publish %s event: %v", t, err)
	}
}

// afterMutation refreshes the cache and publishes the event for an updated
// document.
func (h *DocumentHandler) afterMutation(ctx context.Context, t events.Type, doc models.Document, actorID uuid.UUID) {
	h.publish(ctx, t, doc, actorID)

	if h.redisService != nil {
		if err := h.redisService.SetDocument(ctx, &doc); err != nil {
			log.Printf("Failed to refresh document cache: %v", err)
		}
	}
}

// decodeStringContent accepts an absent/null payload when allowEmpty is set
// and otherwise requires a JSON string, mirroring the upstream typeof check.
func decodeStringContent(raw json.RawMessage, allowEmpty bool) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", allowEmpty
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false
	}
	return s, true
}
