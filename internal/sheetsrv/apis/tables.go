package apis

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gridbase/sheetsrv/internal/common/httpx"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/models"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetmanager"
)

type tableRsp struct {
	ID          uuid.UUID `json:"id"`
	SchemaID    uuid.UUID `json:"schema_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toTableRsp(table *models.Table) *tableRsp {
	return &tableRsp{
		ID:          table.ID,
		SchemaID:    table.SchemaID,
		Name:        table.Name,
		Slug:        table.Slug,
		Description: table.Description,
		CreatedAt:   table.CreatedAt,
	}
}

func createTable(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	schemaID, err := uuidParam(r, "schemaID")
	if err != nil {
		return nil, err
	}
	req := &sheetmanager.TableRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	table, apperr := sheetmanager.CreateTable(ctx, schemaID, req)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/tables/" + table.ID.String(),
		Response:   toTableRsp(table),
	}, nil
}

func getTable(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	tableID, err := uuidParam(r, "tableID")
	if err != nil {
		return nil, err
	}
	table, apperr := sheetmanager.GetTable(ctx, tableID)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   toTableRsp(table),
	}, nil
}

func listTables(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	schemaID, err := uuidParam(r, "schemaID")
	if err != nil {
		return nil, err
	}
	tables, apperr := sheetmanager.ListTables(ctx, schemaID)
	if apperr != nil {
		return nil, apperr
	}
	rsp := make([]*tableRsp, 0, len(tables))
	for _, table := range tables {
		rsp = append(rsp, toTableRsp(table))
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   rsp,
	}, nil
}
