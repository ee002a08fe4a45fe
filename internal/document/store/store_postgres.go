package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rakesh-tirumalaparapu/zipp/internal/document/models"
	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/postgres"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/sentinel"
	txcontext "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/tx"
)

type PostgresDocumentStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresDocumentStore {
	return &PostgresDocumentStore{db: db}
}

func (s *PostgresDocumentStore) Create(ctx context.Context, doc *models.Document) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO documents (id, application_id, document_type, name, content_type, data, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, doc.ID.String(), doc.ApplicationID, string(doc.Type), doc.Name, doc.ContentType, doc.Data, doc.UploadedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *PostgresDocumentStore) DeleteByApplicationAndType(ctx context.Context, applicationID int64, docType models.DocumentType) (int, error) {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM documents WHERE application_id = $1 AND document_type = $2`, applicationID, string(docType))
	if err != nil {
		return 0, fmt.Errorf("delete documents: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete documents: %w", err)
	}
	return int(n), nil
}

func (s *PostgresDocumentStore) FindByID(ctx context.Context, documentID id.DocumentID) (*models.Document, error) {
	var (
		doc     models.Document
		docType string
	)
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT application_id, document_type, name, content_type, data, uploaded_at
		FROM documents WHERE id = $1
	`, documentID.String()).Scan(&doc.ApplicationID, &docType, &doc.Name, &doc.ContentType, &doc.Data, &doc.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	doc.ID = documentID
	doc.Type = models.DocumentType(docType)
	return &doc, nil
}

// ListByApplication skips the data column.
func (s *PostgresDocumentStore) ListByApplication(ctx context.Context, applicationID int64) ([]*models.Document, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT id, document_type, name, content_type, uploaded_at
		FROM documents WHERE application_id = $1
		ORDER BY uploaded_at ASC, id ASC
	`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Document, 0)
	for rows.Next() {
		var (
			doc            models.Document
			rawID, docType string
		)
		if err := rows.Scan(&rawID, &docType, &doc.Name, &doc.ContentType, &doc.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if doc.ID, err = id.ParseDocumentID(rawID); err != nil {
			return nil, fmt.Errorf("scan document id: %w", err)
		}
		doc.ApplicationID = applicationID
		doc.Type = models.DocumentType(docType)
		out = append(out, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}
