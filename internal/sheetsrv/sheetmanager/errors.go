package sheetmanager

import (
	"net/http"

	"github.com/gridbase/sheetsrv/internal/common/apperrors"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/dberror"
)

var (
	ErrSheetError apperrors.Error = apperrors.New("sheet error").SetStatusCode(http.StatusInternalServerError)

	ErrNotFound         apperrors.Error = ErrSheetError.New("object not found").SetStatusCode(http.StatusNotFound)
	ErrConflict         apperrors.Error = ErrSheetError.New("object already exists").SetStatusCode(http.StatusConflict)
	ErrInvalidType      apperrors.Error = ErrSheetError.New("unsupported field type").SetStatusCode(http.StatusBadRequest)
	ErrValidationFailed apperrors.Error = ErrSheetError.New("value failed validation").SetStatusCode(http.StatusBadRequest)
	ErrInvalidRequest   apperrors.Error = ErrSheetError.New("invalid request").SetStatusCode(http.StatusBadRequest)
	ErrInfrastructure   apperrors.Error = ErrSheetError.New("store failure").SetStatusCode(http.StatusInternalServerError)
)

// storeError translates store-level errors into the engine's taxonomy.
// Infrastructure faults stay 500; everything else maps to a caller
// error with the store's message preserved.
func storeError(err apperrors.Error) apperrors.Error {
	if err == nil {
		return nil
	}
	switch {
	case err.Is(dberror.ErrAlreadyExists):
		return ErrConflict.Msg(err.Error())
	case err.Is(dberror.ErrNotFound):
		return ErrNotFound.Msg(err.Error())
	case err.Is(dberror.ErrInvalidInput):
		return ErrInvalidRequest.Msg(err.Error())
	default:
		return ErrInfrastructure.Err(err)
	}
}
