package apis

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gridbase/sheetsrv/internal/common/httpx"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetmanager"
)

type upsertCellReq struct {
	Value any `json:"value"`
}

type upsertCellRsp struct {
	RecordID  uuid.UUID `json:"record_id"`
	FieldID   uuid.UUID `json:"field_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

func upsertCell(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	recordID, err := uuidParam(r, "recordID")
	if err != nil {
		return nil, err
	}
	fieldID, err := uuidParam(r, "fieldID")
	if err != nil {
		return nil, err
	}
	req := &upsertCellReq{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}

	cell, apperr := sheetmanager.UpsertCell(ctx, recordID, fieldID, req.Value)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response: &upsertCellRsp{
			RecordID:  cell.RecordID,
			FieldID:   cell.FieldID,
			UpdatedAt: cell.UpdatedAt,
		},
	}, nil
}

type batchUpdateReq struct {
	Updates []sheetmanager.CellUpdate `json:"updates" validate:"required"`
}

type batchUpdateRsp struct {
	Results []sheetmanager.CellUpdateResult `json:"results"`
}

// batchUpdateCells reports per-item outcomes; callers must inspect
// every entry in results, not just the HTTP status.
func batchUpdateCells(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &batchUpdateReq{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}

	results, apperr := sheetmanager.BatchUpdateCells(ctx, req.Updates)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   &batchUpdateRsp{Results: results},
	}, nil
}
