package apis

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/gridbase/sheetsrv/internal/common/httpx"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/models"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetmanager"
)

type viewRsp struct {
	ID        uuid.UUID           `json:"id"`
	TableID   uuid.UUID           `json:"table_id"`
	Name      string              `json:"name"`
	Config    jsoniter.RawMessage `json:"config"`
	CreatedAt time.Time           `json:"created_at"`
}

func toViewRsp(view *models.View) *viewRsp {
	return &viewRsp{
		ID:        view.ID,
		TableID:   view.TableID,
		Name:      view.Name,
		Config:    jsonbRaw(view.Config),
		CreatedAt: view.CreatedAt,
	}
}

func createView(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	tableID, err := uuidParam(r, "tableID")
	if err != nil {
		return nil, err
	}
	req := &sheetmanager.ViewRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	view, apperr := sheetmanager.CreateView(ctx, tableID, req)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/views/" + view.ID.String(),
		Response:   toViewRsp(view),
	}, nil
}

func getView(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	viewID, err := uuidParam(r, "viewID")
	if err != nil {
		return nil, err
	}
	view, apperr := sheetmanager.GetView(ctx, viewID)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   toViewRsp(view),
	}, nil
}

func listViews(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	tableID, err := uuidParam(r, "tableID")
	if err != nil {
		return nil, err
	}
	views, apperr := sheetmanager.ListViews(ctx, tableID)
	if apperr != nil {
		return nil, apperr
	}
	rsp := make([]*viewRsp, 0, len(views))
	for _, view := range views {
		rsp = append(rsp, toViewRsp(view))
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   rsp,
	}, nil
}

func deleteView(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	viewID, err := uuidParam(r, "viewID")
	if err != nil {
		return nil, err
	}
	if apperr := sheetmanager.DeleteView(ctx, viewID); apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusNoContent,
	}, nil
}
