package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Vampire-js/DAAVAT/internal/models"
)

// ErrNotFound is returned when no document matches id + owner (+ kind).
// A row owned by someone else is indistinguishable from a missing one.
var ErrNotFound = errors.New("document not found")

// Store performs owner-scoped operations on the documents table. Every
// query filters by user_id up front; nothing is loaded and then checked.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// List returns all documents owned by the user, sorted by sort key.
func (s *Store) List(ctx context.Context, userID uuid.UUID) ([]models.Document, error) {
	docs := []models.Document{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sort_order asc").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// CreateFolder inserts a folder. A zero order falls back to the creation
// timestamp in milliseconds, so siblings sort roughly chronologically.
func (s *Store) CreateFolder(ctx context.Context, userID uuid.UUID, name string, parentID *uuid.UUID, order int64) (models.Document, error) {
	doc := models.Document{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     name,
		Kind:     models.KindFolder,
		ParentID: parentID,
		Order:    defaultOrder(order),
		Refs:     models.ReferenceList{},
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return models.Document{}, fmt.Errorf("create folder: %w", err)
	}
	return doc, nil
}

// CreateNote inserts a note with its content and references.
func (s *Store) CreateNote(ctx context.Context, userID uuid.UUID, name string, parentID *uuid.UUID, content string, order int64, refs models.ReferenceList) (models.Document, error) {
	if refs == nil {
		refs = models.ReferenceList{}
	}
	doc := models.Document{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     name,
		Kind:     models.KindNote,
		ParentID: parentID,
		Content:  content,
		Order:    defaultOrder(order),
		Refs:     refs,
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return models.Document{}, fmt.Errorf("create note: %w", err)
	}
	return doc, nil
}

// CreateBoard inserts a board holding a serialized canvas snapshot.
func (s *Store) CreateBoard(ctx context.Context, userID uuid.UUID, name string, parentID *uuid.UUID, content string, order int64) (models.Document, error) {
	doc := models.Document{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     name,
		Kind:     models.KindBoard,
		ParentID: parentID,
		Content:  content,
		Order:    defaultOrder(order),
		Refs:     models.ReferenceList{},
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return models.Document{}, fmt.Errorf("create board: %w", err)
	}
	return doc, nil
}

// GetByID fetches a single owned document. A non-empty kind narrows the
// match, so a board id passed to a note lookup reads as not found.
func (s *Store) GetByID(ctx context.Context, userID, id uuid.UUID, kind models.Kind) (models.Document, error) {
	q := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID)
	if kind != "" {
		q = q.Where("type = ?", kind)
	}

	var doc models.Document
	if err := q.First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Document{}, ErrNotFound
		}
		return models.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// UpdateNote overwrites a note's content, and its references when provided.
func (s *Store) UpdateNote(ctx context.Context, userID, id uuid.UUID, content string, refs models.ReferenceList) (models.Document, error) {
	changes := map[string]interface{}{"content": content}
	if refs != nil {
		changes["refs"] = refs
	}
	return s.update(ctx, userID, id, models.KindNote, changes)
}

// UpdateBoard overwrites a board's canvas snapshot.
func (s *Store) UpdateBoard(ctx context.Context, userID, id uuid.UUID, content string) (models.Document, error) {
	return s.update(ctx, userID, id, models.KindBoard, map[string]interface{}{"content": content})
}

// Rename overwrites the display name of any owned document.
func (s *Store) Rename(ctx context.Context, userID, id uuid.UUID, newName string) (models.Document, error) {
	return s.update(ctx, userID, id, "", map[string]interface{}{"name": newName})
}

// update applies the changes in one owner-filtered statement. The column
// set never includes type or user_id, so kind and ownership are immutable.
func (s *Store) update(ctx context.Context, userID, id uuid.UUID, kind models.Kind, changes map[string]interface{}) (models.Document, error) {
	q := s.db.WithContext(ctx).Model(&models.Document{}).
		Where("id = ? AND user_id = ?", id, userID)
	if kind != "" {
		q = q.Where("type = ?", kind)
	}

	res := q.Updates(changes)
	if res.Error != nil {
		return models.Document{}, fmt.Errorf("update document: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.Document{}, ErrNotFound
	}

	return s.GetByID(ctx, userID, id, kind)
}

// Delete removes the matching owned document. Deleting an id that does not
// exist (or is not yours) is not an error; nothing cascades to children.
func (s *Store) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Document{}).Error
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func defaultOrder(order int64) int64 {
	if order == 0 {
		return time.Now().UnixMilli()
	}
	return order
}
