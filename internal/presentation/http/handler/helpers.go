package handler

import (
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/schoolfee-receipts/internal/presentation/http/dto/response"
	"github.com/sangkips/schoolfee-receipts/pkg/apperror"
)

// receiptID parses the :id path parameter. A malformed id cannot match any
// receipt, so it is answered with 404 like any other unknown id.
func receiptID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.NewNotFoundError("Receipt"))
		return uuid.Nil, false
	}
	return id, true
}

// invalidBody wraps a binding failure; the detail is logged, not returned
func invalidBody(err error) error {
	appErr := apperror.NewBadRequestError("Invalid request body")
	appErr.Err = errors.Wrap(err, "bind request body")
	return appErr
}
