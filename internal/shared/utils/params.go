package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/ticketdesk/internal/shared/errors"
	"github.com/orris-inc/ticketdesk/internal/shared/id"
)

// ParseSIDParam reads a prefixed ID from a URL path parameter.
// paramName is the Gin route parameter name (e.g., "id", "entryId").
// prefix is the expected ID prefix (e.g., id.PrefixEntry).
// entityName is used in error messages (e.g., "entry").
func ParseSIDParam(c *gin.Context, paramName, prefix, entityName string) (string, error) {
	sid := c.Param(paramName)
	if sid == "" {
		return "", errors.NewValidationError(entityName+" ID is required", "field="+paramName)
	}

	if !id.HasPrefix(sid, prefix) {
		return "", errors.NewValidationError(
			fmt.Sprintf("invalid %s ID format, expected %s_xxxxx", entityName, prefix),
			"field="+paramName,
		)
	}

	return sid, nil
}
