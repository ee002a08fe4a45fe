package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
)

func TestParseDocumentType(t *testing.T) {
	dt, err := ParseDocumentType(" salary_slips ")
	require.NoError(t, err)
	assert.Equal(t, TypeSalarySlips, dt)

	_, err = ParseDocumentType("SELFIE")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	assert.Len(t, documentTypes, 16)
}

func TestUploadRequestValidate(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		req := &UploadRequest{ApplicationNumber: " LA202600001 ", Type: TypePhotograph, Data: []byte{0xff}}
		require.NoError(t, req.Validate())
		assert.Equal(t, "LA202600001", req.ApplicationNumber)
		assert.Equal(t, "photograph", req.Name)
		assert.Equal(t, "application/octet-stream", req.ContentType)
	})

	t.Run("empty payload", func(t *testing.T) {
		req := &UploadRequest{ApplicationNumber: "LA202600001", Type: TypePhotograph}
		err := req.Validate()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		assert.Contains(t, err.Error(), "Document file is required")
	})

	t.Run("unknown type", func(t *testing.T) {
		req := &UploadRequest{ApplicationNumber: "LA202600001", Type: "SELFIE", Data: []byte("x")}
		assert.True(t, dErrors.HasCode(req.Validate(), dErrors.CodeBadRequest))
	})

	t.Run("missing application", func(t *testing.T) {
		req := &UploadRequest{Type: TypePhotograph, Data: []byte("x")}
		assert.True(t, dErrors.HasCode(req.Validate(), dErrors.CodeBadRequest))
	})
}
