package apis

import (
	"github.com/go-playground/validator/v10"

	"github.com/gridbase/sheetsrv/internal/common/httpx"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs the request struct through the shared validator
// and renders the first violation as a 400.
func validateStruct(req any) error {
	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			return httpx.ErrInvalidRequest("invalid value for " + ve[0].Field())
		}
		return httpx.ErrInvalidRequest()
	}
	return nil
}
