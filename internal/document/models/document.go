package models

import (
	"strings"
	"time"

	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
)

// DocumentType is the closed set of documents an application can carry.
// At most one document of each type exists per application.
type DocumentType string

const (
	TypePhotograph                 DocumentType = "PHOTOGRAPH"
	TypeIdentityProof              DocumentType = "IDENTITY_PROOF"
	TypeAddressProof               DocumentType = "ADDRESS_PROOF"
	TypeSalarySlips                DocumentType = "SALARY_SLIPS"
	TypeITRSalaried                DocumentType = "ITR_SALARIED"
	TypeBankStatementsSalaried     DocumentType = "BANK_STATEMENTS_SALARIED"
	TypeEmploymentProof            DocumentType = "EMPLOYMENT_PROOF"
	TypeBusinessProofGST           DocumentType = "BUSINESS_PROOF_GST"
	TypeITRSelfEmployed            DocumentType = "ITR_SELF_EMPLOYED"
	TypeBankStatementsSelfEmployed DocumentType = "BANK_STATEMENTS_SELF_EMPLOYED"
	TypeSaleAgreement              DocumentType = "SALE_AGREEMENT"
	TypeECCertificate              DocumentType = "EC_CERTIFICATE"
	TypeInvoiceFromDealer          DocumentType = "INVOICE_FROM_DEALER"
	TypeQuotation                  DocumentType = "QUOTATION"
	TypeIncomeProof                DocumentType = "INCOME_PROOF"
	TypeCIBILReport                DocumentType = "CIBIL_REPORT"
)

var documentTypes = map[DocumentType]struct{}{
	TypePhotograph:                 {},
	TypeIdentityProof:              {},
	TypeAddressProof:               {},
	TypeSalarySlips:                {},
	TypeITRSalaried:                {},
	TypeBankStatementsSalaried:     {},
	TypeEmploymentProof:            {},
	TypeBusinessProofGST:           {},
	TypeITRSelfEmployed:            {},
	TypeBankStatementsSelfEmployed: {},
	TypeSaleAgreement:              {},
	TypeECCertificate:              {},
	TypeInvoiceFromDealer:          {},
	TypeQuotation:                  {},
	TypeIncomeProof:                {},
	TypeCIBILReport:                {},
}

// ParseDocumentType accepts any case.
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeBadRequest, "Invalid document type: "+s)
	}
	return t, nil
}

func (t DocumentType) IsValid() bool {
	_, ok := documentTypes[t]
	return ok
}

const defaultContentType = "application/octet-stream"

// Document is a stored upload. Listings leave Data nil.
type Document struct {
	ID            id.DocumentID
	ApplicationID int64
	Type          DocumentType
	Name          string
	ContentType   string
	Data          []byte
	UploadedAt    time.Time
}

// UploadRequest is one upload as received from the transport.
type UploadRequest struct {
	ApplicationNumber string
	Type              DocumentType
	Name              string
	ContentType       string
	Data              []byte
}

// Validate checks the request shape. Application existence is checked by the service.
func (r *UploadRequest) Validate() error {
	if strings.TrimSpace(r.ApplicationNumber) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "Application id is required")
	}
	if !r.Type.IsValid() {
		return dErrors.New(dErrors.CodeBadRequest, "Invalid document type: "+string(r.Type))
	}
	if len(r.Data) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "Document file is required")
	}
	r.ApplicationNumber = strings.TrimSpace(r.ApplicationNumber)
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		r.Name = strings.ToLower(string(r.Type))
	}
	if strings.TrimSpace(r.ContentType) == "" {
		r.ContentType = defaultContentType
	}
	return nil
}

// IDResponse pairs a document id with its type.
type IDResponse struct {
	ID           id.DocumentID `json:"id"`
	DocumentType DocumentType  `json:"documentType"`
}

// UploadResponse acknowledges an upload.
type UploadResponse struct {
	ID           id.DocumentID `json:"id"`
	DocumentType DocumentType  `json:"documentType"`
	Message      string        `json:"message"`
}
