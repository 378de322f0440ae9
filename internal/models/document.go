package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the three node types stored in the documents table.
type Kind string

const (
	KindFolder Kind = "folder"
	KindNote   Kind = "note"
	KindBoard  Kind = "board"
)

// ReferenceSource identifies where a note citation was summarized from.
type ReferenceSource string

const (
	SourceYouTube ReferenceSource = "YouTube"
	SourcePDF     ReferenceSource = "PDF"
	SourceAudio   ReferenceSource = "Audio"
)

// Reference is a citation attached to a note, pointing at an externally
// summarized source. The content is stored verbatim.
type Reference struct {
	ID      string          `json:"id"`
	Source  ReferenceSource `json:"source"`
	Title   string          `json:"title"`
	Content string          `json:"content"`
}

// ReferenceList is stored as a single JSON column.
type ReferenceList []Reference

func (r ReferenceList) Value() (driver.Value, error) {
	if r == nil {
		r = ReferenceList{}
	}
	return json.Marshal(r)
}

func (r *ReferenceList) Scan(value interface{}) error {
	if value == nil {
		*r = ReferenceList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return errors.New("unsupported type for ReferenceList")
	}
}

// Document is the single polymorphic row type: a folder, note or board.
// The hierarchy is an adjacency list: ParentID points at another document
// owned by the same user, nil meaning root level. Nothing enforces that the
// parent exists or that the graph is acyclic; clients keep that promise.
type Document struct {
	ID        uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"userId"`
	Name      string        `gorm:"size:255;not null" json:"name"`
	Kind      Kind          `gorm:"size:16;not null;column:type" json:"type"`
	ParentID  *uuid.UUID    `gorm:"type:uuid" json:"parentId"`
	Content   string        `gorm:"type:text" json:"content"`
	Order     int64         `gorm:"not null;column:sort_order" json:"order"`
	Refs      ReferenceList `gorm:"type:jsonb;column:refs" json:"references"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// TableName overrides the table name used by Document to `documents`
func (Document) TableName() string {
	return "documents"
}
