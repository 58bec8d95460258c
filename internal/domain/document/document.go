package document

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/shared"
)

// DocumentType classifies a rendered business document
type DocumentType string

const (
	DocumentTypeInvoice DocumentType = "INVOICE"
	DocumentTypeReceipt DocumentType = "RECEIPT"
)

// IsValid checks if the document type is known
func (t DocumentType) IsValid() bool {
	return t == DocumentTypeInvoice || t == DocumentTypeReceipt
}

// SourceType names the order kind a document was rendered from
type SourceType string

const (
	SourceTypeSalesOrder    SourceType = "SALES_ORDER"
	SourceTypePurchaseOrder SourceType = "PURCHASE_ORDER"
)

// Document is a rendered HTML business document kept alongside its metadata.
// Re-rendering the same source replaces the stored content; the document
// always reflects the latest state of its order.
type Document struct {
	shared.OrgAggregateRoot
	Type         DocumentType `gorm:"type:varchar(20);not null;index:idx_documents_org_type_source,unique,priority:2"`
	SourceType   SourceType   `gorm:"type:varchar(20);not null"`
	SourceID     uuid.UUID    `gorm:"type:uuid;not null;index:idx_documents_org_type_source,unique,priority:3"`
	SourceNumber string       `gorm:"type:varchar(50);not null"`
	ContentType  string       `gorm:"type:varchar(100);not null"`
	Content      string       `gorm:"type:text;not null"`
	SizeBytes    int64        `gorm:"not null"`
	RenderedAt   time.Time    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Document) TableName() string {
	return "documents"
}

// NewDocument creates a rendered document record
func NewDocument(orgID uuid.UUID, docType DocumentType, sourceType SourceType, sourceID uuid.UUID, sourceNumber, contentType, content string) (*Document, error) {
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_TYPE", "Unknown document type")
	}
	if sourceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Source document ID cannot be empty")
	}
	if content == "" {
		return nil, shared.NewDomainError("INVALID_CONTENT", "Document content cannot be empty")
	}

	return &Document{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Type:             docType,
		SourceType:       sourceType,
		SourceID:         sourceID,
		SourceNumber:     sourceNumber,
		ContentType:      contentType,
		Content:          content,
		SizeBytes:        int64(len(content)),
		RenderedAt:       time.Now(),
	}, nil
}

// Replace swaps in freshly rendered content, keeping the same identity
func (d *Document) Replace(content string) {
	d.Content = content
	d.SizeBytes = int64(len(content))
	d.RenderedAt = time.Now()
	d.UpdatedAt = d.RenderedAt
	d.IncrementVersion()
}

// DocumentRepository persists rendered documents
type DocumentRepository interface {
	shared.OrgRepository[Document]
	// FindBySource returns the stored document of a type for a source order
	FindBySource(ctx context.Context, orgID uuid.UUID, docType DocumentType, sourceID uuid.UUID) (*Document, error)
}
