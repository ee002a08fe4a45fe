package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditEventCategory(t *testing.T) {
	assert.Equal(t, CategoryCompliance, EventCheckerApproved.Category())
	assert.Equal(t, CategoryCompliance, EventApplicationResubmitted.Category())
	assert.Equal(t, CategorySecurity, EventLoginFailed.Category())
	assert.Equal(t, CategoryOperations, EventDocumentUploaded.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("something_new").Category())
}
