package apis

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gridbase/sheetsrv/internal/common/httpx"
)

var sheetHandlers = []httpx.ResponseHandlerParam{
	{
		Method:  http.MethodPost,
		Path:    "/schemas",
		Handler: createSchema,
	},
	{
		Method:  http.MethodGet,
		Path:    "/schemas",
		Handler: listSchemas,
	},
	{
		Method:  http.MethodGet,
		Path:    "/schemas/{schemaID}",
		Handler: getSchema,
	},
	{
		Method:  http.MethodPost,
		Path:    "/schemas/{schemaID}/tables",
		Handler: createTable,
	},
	{
		Method:  http.MethodGet,
		Path:    "/schemas/{schemaID}/tables",
		Handler: listTables,
	},
	{
		Method:  http.MethodGet,
		Path:    "/tables/{tableID}",
		Handler: getTable,
	},
	{
		Method:  http.MethodPost,
		Path:    "/tables/{tableID}/fields",
		Handler: createField,
	},
	{
		Method:  http.MethodGet,
		Path:    "/tables/{tableID}/fields",
		Handler: listFields,
	},
	{
		Method:  http.MethodPatch,
		Path:    "/tables/{tableID}/fields/{fieldID}",
		Handler: updateField,
	},
	{
		Method:  http.MethodDelete,
		Path:    "/tables/{tableID}/fields/{fieldID}",
		Handler: deleteField,
	},
	{
		Method:  http.MethodPost,
		Path:    "/tables/{tableID}/records",
		Handler: createRecord,
	},
	{
		Method:  http.MethodGet,
		Path:    "/tables/{tableID}/records",
		Handler: listRecords,
	},
	{
		Method:  http.MethodPatch,
		Path:    "/records/{recordID}",
		Handler: patchRecordTitle,
	},
	{
		Method:  http.MethodPut,
		Path:    "/records/{recordID}/cells/{fieldID}",
		Handler: upsertCell,
	},
	{
		Method:  http.MethodPost,
		Path:    "/records/cells",
		Handler: batchUpdateCells,
	},
	{
		Method:  http.MethodPost,
		Path:    "/tables/{tableID}/views",
		Handler: createView,
	},
	{
		Method:  http.MethodGet,
		Path:    "/tables/{tableID}/views",
		Handler: listViews,
	},
	{
		Method:  http.MethodGet,
		Path:    "/views/{viewID}",
		Handler: getView,
	},
	{
		Method:  http.MethodDelete,
		Path:    "/views/{viewID}",
		Handler: deleteView,
	},
}

func Router(r chi.Router) {
	for _, handler := range sheetHandlers {
		r.Method(handler.Method, handler.Path, httpx.WrapHttpRsp(handler.Handler))
	}
}

// uuidParam parses a uuid path parameter. Malformed ids are a 400, not
// a 404, so callers can tell a bad request from a missing object.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, httpx.ErrInvalidRequest("invalid " + name)
	}
	return id, nil
}
