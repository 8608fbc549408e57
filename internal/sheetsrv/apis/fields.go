package apis

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	jsoniter "github.com/json-iterator/go"

	"github.com/gridbase/sheetsrv/internal/common/httpx"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/models"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetmanager"
)

type fieldRsp struct {
	ID        uuid.UUID           `json:"id"`
	SchemaID  uuid.UUID           `json:"schema_id"`
	TableID   uuid.UUID           `json:"table_id"`
	Name      string              `json:"name"`
	Slug      string              `json:"slug"`
	Type      models.FieldType    `json:"type"`
	Required  bool                `json:"required"`
	Config    jsoniter.RawMessage `json:"config"`
	Order     int                 `json:"order"`
	CreatedAt time.Time           `json:"created_at"`
}

func toFieldRsp(field *models.Field) *fieldRsp {
	return &fieldRsp{
		ID:        field.ID,
		SchemaID:  field.SchemaID,
		TableID:   field.TableID,
		Name:      field.Name,
		Slug:      field.Slug,
		Type:      field.Type,
		Required:  field.Required,
		Config:    jsonbRaw(field.Config),
		Order:     field.Order,
		CreatedAt: field.CreatedAt,
	}
}

func jsonbRaw(config pgtype.JSONB) jsoniter.RawMessage {
	if config.Status != pgtype.Present || len(config.Bytes) == 0 {
		return jsoniter.RawMessage("{}")
	}
	return jsoniter.RawMessage(config.Bytes)
}

func createField(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	tableID, err := uuidParam(r, "tableID")
	if err != nil {
		return nil, err
	}
	req := &sheetmanager.FieldRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	field, apperr := sheetmanager.CreateField(ctx, tableID, req)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/tables/" + tableID.String() + "/fields/" + field.ID.String(),
		Response:   toFieldRsp(field),
	}, nil
}

func listFields(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	tableID, err := uuidParam(r, "tableID")
	if err != nil {
		return nil, err
	}
	fields, apperr := sheetmanager.ListFields(ctx, tableID)
	if apperr != nil {
		return nil, apperr
	}
	rsp := make([]*fieldRsp, 0, len(fields))
	for _, field := range fields {
		rsp = append(rsp, toFieldRsp(field))
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   rsp,
	}, nil
}

func updateField(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	tableID, err := uuidParam(r, "tableID")
	if err != nil {
		return nil, err
	}
	fieldID, err := uuidParam(r, "fieldID")
	if err != nil {
		return nil, err
	}
	req := &sheetmanager.FieldRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	field, apperr := sheetmanager.UpdateField(ctx, tableID, fieldID, req)
	if apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   toFieldRsp(field),
	}, nil
}

func deleteField(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	tableID, err := uuidParam(r, "tableID")
	if err != nil {
		return nil, err
	}
	fieldID, err := uuidParam(r, "fieldID")
	if err != nil {
		return nil, err
	}
	if apperr := sheetmanager.DeleteField(ctx, tableID, fieldID); apperr != nil {
		return nil, apperr
	}
	return &httpx.Response{
		StatusCode: http.StatusNoContent,
	}, nil
}
