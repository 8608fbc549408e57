package apis

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/gridbase/sheetsrv/internal/common/httpx"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/models"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetmanager"
)

type recordRsp struct {
	ID        uuid.UUID `json:"id"`
	SchemaID  uuid.UUID `json:"schema_id"`
	TableID   uuid.UUID `json:"table_id"`
	Title     *string   `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toRecordRsp(record *models.Record) *recordRsp {
	return &recordRsp{
		ID:        record.ID,
		SchemaID:  record.SchemaID,
		TableID:   record.TableID,
		Title:     record.Title,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func createRecord(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	tableID, err := uuidParam(r, "tableID")
	if err != nil {
		return nil, err
	}
	req := &sheetmanager.RecordRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	record, apperr := sheetmanager.CreateRecord(ctx, tableID, req)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/records/" + record.ID.String(),
		Response:   toRecordRsp(record),
	}, nil
}

// listRecords serves the projected wide rows with offset pagination.
// page defaults to 1 and pageSize to the engine default; both are
// clamped rather than rejected.
func listRecords(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	tableID, err := uuidParam(r, "tableID")
	if err != nil {
		return nil, err
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", sheetmanager.DefaultPageSize)

	recordPage, apperr := sheetmanager.ListRecords(ctx, tableID, page, pageSize)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   recordPage,
	}, nil
}

func patchRecordTitle(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	recordID, err := uuidParam(r, "recordID")
	if err != nil {
		return nil, err
	}
	req := &sheetmanager.RecordRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	record, apperr := sheetmanager.PatchRecordTitle(ctx, recordID, req.Title)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   toRecordRsp(record),
	}, nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
