package apis

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gridbase/sheetsrv/internal/common/httpx"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/models"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetmanager"
)

type schemaRsp struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toSchemaRsp(schema *models.Schema) *schemaRsp {
	return &schemaRsp{
		ID:          schema.ID,
		Name:        schema.Name,
		Description: schema.Description,
		CreatedAt:   schema.CreatedAt,
	}
}

func createSchema(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &sheetmanager.SchemaRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	schema, err := sheetmanager.CreateSchema(ctx, req)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/schemas/" + schema.ID.String(),
		Response:   toSchemaRsp(schema),
	}, nil
}

func getSchema(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	schemaID, err := uuidParam(r, "schemaID")
	if err != nil {
		return nil, err
	}
	schema, apperr := sheetmanager.GetSchema(ctx, schemaID)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   toSchemaRsp(schema),
	}, nil
}

func listSchemas(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	schemas, err := sheetmanager.ListSchemas(ctx)
	if err != nil {
		return nil, err
	}
	rsp := make([]*schemaRsp, 0, len(schemas))
	for _, schema := range schemas {
		rsp = append(rsp, toSchemaRsp(schema))
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   rsp,
	}, nil
}
