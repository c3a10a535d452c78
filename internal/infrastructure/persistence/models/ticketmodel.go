package models

import (
	"gorm.io/datatypes"
)

// TicketModel stores one ticket aggregate per row. Entries and their
// attachments are a single JSON document so a ticket is always read and
// written as a whole.
type TicketModel struct {
	ID              string                              `gorm:"primaryKey;size:32"`
	Title           string                              `gorm:"size:200;not null"`
	Entries         datatypes.JSONType[[]EntryDocument] `gorm:"not null"`
	SearchText      string                              `gorm:"type:text;not null"`
	EntryCount      int                                 `gorm:"not null;default:0"`
	AttachmentCount int                                 `gorm:"not null;default:0"`
	Version         int                                 `gorm:"not null;default:1"`
	CreatedAt       int64                               `gorm:"autoCreateTime:false;not null;index"`
	UpdatedAt       int64                               `gorm:"autoUpdateTime:false;not null"`
}

func (TicketModel) TableName() string {
	return "tickets"
}

// EntryDocument is the JSON shape of one entry inside TicketModel.Entries.
type EntryDocument struct {
	ID   string `json:"id"`
	Step string `json:"step"`
	// Problem is the pre-rename name of Step. It is read, never written.
	Problem     string               `json:"problem,omitempty"`
	Solution    string               `json:"solution"`
	Attachments []AttachmentDocument `json:"attachments"`
	AddedAt     int64                `json:"added_at"`
}

type AttachmentDocument struct {
	ID           string `json:"id"`
	OriginalName string `json:"original_name"`
	StorageName  string `json:"storage_name"`
	ContentType  string `json:"content_type,omitempty"`
	Checksum     string `json:"checksum,omitempty"`
	SizeBytes    int64  `json:"size_bytes"`
	UploadedAt   int64  `json:"uploaded_at"`
}
