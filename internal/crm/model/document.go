package model

import (
	"fmt"
	"strings"
)

// DocumentStatus is the review state of a shipping document.
type DocumentStatus string

const (
	DocumentMissing  DocumentStatus = "Missing"
	DocumentPending  DocumentStatus = "Pending"
	DocumentVerified DocumentStatus = "Verified"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentMissing, DocumentPending, DocumentVerified:
		return true
	}
	return false
}

// Next returns the successor in the toggle rotation Missing, Pending, Verified.
func (s DocumentStatus) Next() DocumentStatus {
	switch s {
	case DocumentMissing:
		return DocumentPending
	case DocumentPending:
		return DocumentVerified
	default:
		return DocumentMissing
	}
}

// NoUploadDate marks a document that has never been uploaded.
const NoUploadDate = "-"

// CoreDocumentType is the category of the default checklist documents.
const CoreDocumentType = "Core"

// Attachment describes an uploaded file backing a document.
type Attachment struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	Name     string `json:"name,omitempty"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// Document is one entry of a shipment's document checklist.
type Document struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	Status        DocumentStatus `json:"status"`
	UploadDate    string         `json:"uploadDate"`
	Attachment    *Attachment    `json:"attachment,omitempty"`
	ReviewerNotes string         `json:"reviewerNotes,omitempty"`
}

func (d Document) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: document id is required", ErrValidation)
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: document name is required", ErrValidation)
	}
	if !d.Status.Valid() {
		return fmt.Errorf("%w: document status %q", ErrInvalidStatus, d.Status)
	}
	return nil
}

func (d Document) Clone() Document {
	if d.Attachment != nil {
		attachment := *d.Attachment
		d.Attachment = &attachment
	}
	return d
}

var coreDocumentNames = []string{"Bill of Lading", "Commercial Invoice", "Packing List", "Certificate of Origin"}

// DefaultDocuments returns the four core checklist documents, all Missing.
func DefaultDocuments() []Document {
	docs := make([]Document, len(coreDocumentNames))
	for i, name := range coreDocumentNames {
		docs[i] = Document{
			ID:         fmt.Sprint(i + 1),
			Name:       name,
			Type:       CoreDocumentType,
			Status:     DocumentMissing,
			UploadDate: NoUploadDate,
		}
	}
	return docs
}

// SeededDocuments returns the core checklist as the demo data seeds it: the
// first verified documents Verified, the two leading documents otherwise
// Pending, and the rest Missing.
func SeededDocuments(verified int, today string) []Document {
	docs := DefaultDocuments()
	for i := range docs {
		switch {
		case i < verified:
			docs[i].Status = DocumentVerified
			docs[i].UploadDate = today
		case i < 2:
			docs[i].Status = DocumentPending
			docs[i].UploadDate = today
		}
	}
	return docs
}
