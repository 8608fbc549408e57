package sheetmanager

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/gridbase/sheetsrv/internal/common/apperrors"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/models"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/slug"
)

// fieldConfigSchema bounds the shape of a field's config blob. The
// engine never evaluates option membership on writes; the config only
// has to be an object, with options as a string array when present.
var fieldConfigSchema = jsonschema.MustCompileString("fieldconfig.json", `{
	"type": "object",
	"properties": {
		"options": {
			"type": "array",
			"items": { "type": "string" }
		}
	}
}`)

type SchemaRequest struct {
	Name        string `json:"name" validate:"required,max=128"`
	Description string `json:"description,omitempty"`
}

type TableRequest struct {
	Name        string `json:"name" validate:"required,max=128"`
	Slug        string `json:"slug,omitempty" validate:"omitempty,max=64"`
	Description string `json:"description,omitempty"`
}

type FieldRequest struct {
	Name     string `json:"name" validate:"required,max=128"`
	Slug     string `json:"slug,omitempty" validate:"omitempty,max=64"`
	Type     string `json:"type" validate:"required"`
	Required bool   `json:"required,omitempty"`
	Config   any    `json:"config,omitempty"`
	Order    int    `json:"order,omitempty"`
}

type ViewRequest struct {
	Name   string `json:"name" validate:"required,max=128"`
	Config any    `json:"config,omitempty"`
}

// CreateSchema registers a new schema for the tenant in the context.
func CreateSchema(ctx context.Context, req *SchemaRequest) (*models.Schema, apperrors.Error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidRequest.Msg("schema name is required")
	}

	schema := &models.Schema{
		Name:        name,
		Description: req.Description,
	}
	if err := db.DB(ctx).CreateSchema(ctx, schema); err != nil {
		return nil, storeError(err)
	}
	return schema, nil
}

func GetSchema(ctx context.Context, schemaID uuid.UUID) (*models.Schema, apperrors.Error) {
	schema, err := db.DB(ctx).GetSchema(ctx, schemaID)
	if err != nil {
		return nil, storeError(err)
	}
	return schema, nil
}

func ListSchemas(ctx context.Context) ([]*models.Schema, apperrors.Error) {
	schemas, err := db.DB(ctx).ListSchemas(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return schemas, nil
}

// CreateTable registers a table under the schema. The slug defaults to
// the slugified name; a caller-supplied slug is normalized the same way
// so stored slugs are always canonical.
func CreateTable(ctx context.Context, schemaID uuid.UUID, req *TableRequest) (*models.Table, apperrors.Error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidRequest.Msg("table name is required")
	}
	tableSlug := slug.Make(name)
	if req.Slug != "" {
		tableSlug = slug.Make(req.Slug)
	}

	table := &models.Table{
		SchemaID:    schemaID,
		Name:        name,
		Slug:        tableSlug,
		Description: req.Description,
	}
	if err := db.DB(ctx).CreateTable(ctx, table); err != nil {
		return nil, storeError(err)
	}
	return table, nil
}

func GetTable(ctx context.Context, tableID uuid.UUID) (*models.Table, apperrors.Error) {
	table, err := db.DB(ctx).GetTable(ctx, tableID)
	if err != nil {
		return nil, storeError(err)
	}
	return table, nil
}

func ListTables(ctx context.Context, schemaID uuid.UUID) ([]*models.Table, apperrors.Error) {
	tables, err := db.DB(ctx).ListTables(ctx, schemaID)
	if err != nil {
		return nil, storeError(err)
	}
	return tables, nil
}

// CreateField registers a typed column on the table. The store resolves
// schema_id from the owning table inside the insert transaction.
func CreateField(ctx context.Context, tableID uuid.UUID, req *FieldRequest) (*models.Field, apperrors.Error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidRequest.Msg("field name is required")
	}
	fieldType := models.FieldType(req.Type)
	if !fieldType.IsValid() {
		return nil, ErrInvalidType.Msg("unsupported field type: " + req.Type)
	}
	fieldSlug := slug.Make(name)
	if req.Slug != "" {
		fieldSlug = slug.Make(req.Slug)
	}
	config, err := normalizeFieldConfig(req.Config)
	if err != nil {
		return nil, err
	}

	field := &models.Field{
		TableID:  tableID,
		Name:     name,
		Slug:     fieldSlug,
		Type:     fieldType,
		Required: req.Required,
		Config:   config,
		Order:    req.Order,
	}
	if dberr := db.DB(ctx).CreateField(ctx, field); dberr != nil {
		return nil, storeError(dberr)
	}
	return field, nil
}

func ListFields(ctx context.Context, tableID uuid.UUID) ([]*models.Field, apperrors.Error) {
	fields, err := db.DB(ctx).ListFields(ctx, tableID)
	if err != nil {
		return nil, storeError(err)
	}
	return fields, nil
}

// UpdateField rewrites the field's mutable attributes. The declared
// type may change; existing cells keep their old slots and are
// reinterpreted on projection.
func UpdateField(ctx context.Context, tableID, fieldID uuid.UUID, req *FieldRequest) (*models.Field, apperrors.Error) {
	field, dberr := db.DB(ctx).GetField(ctx, fieldID)
	if dberr != nil {
		return nil, storeError(dberr)
	}
	if field.TableID != tableID {
		return nil, ErrNotFound.Msg("field not found")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidRequest.Msg("field name is required")
	}
	fieldType := models.FieldType(req.Type)
	if !fieldType.IsValid() {
		return nil, ErrInvalidType.Msg("unsupported field type: " + req.Type)
	}
	fieldSlug := slug.Make(name)
	if req.Slug != "" {
		fieldSlug = slug.Make(req.Slug)
	}
	config, err := normalizeFieldConfig(req.Config)
	if err != nil {
		return nil, err
	}

	field.Name = name
	field.Slug = fieldSlug
	field.Type = fieldType
	field.Required = req.Required
	field.Config = config
	field.Order = req.Order
	if dberr := db.DB(ctx).UpdateField(ctx, field); dberr != nil {
		return nil, storeError(dberr)
	}
	return field, nil
}

func DeleteField(ctx context.Context, tableID, fieldID uuid.UUID) apperrors.Error {
	if err := db.DB(ctx).DeleteField(ctx, tableID, fieldID); err != nil {
		return storeError(err)
	}
	return nil
}

// CreateView saves a presentation config for the table. The config is
// stored opaque; nothing in it is evaluated server side.
func CreateView(ctx context.Context, tableID uuid.UUID, req *ViewRequest) (*models.View, apperrors.Error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidRequest.Msg("view name is required")
	}
	config, err := jsonbFromValue(req.Config)
	if err != nil {
		return nil, err
	}

	view := &models.View{
		TableID: tableID,
		Name:    name,
		Config:  config,
	}
	if dberr := db.DB(ctx).CreateView(ctx, view); dberr != nil {
		return nil, storeError(dberr)
	}
	return view, nil
}

func GetView(ctx context.Context, viewID uuid.UUID) (*models.View, apperrors.Error) {
	view, err := db.DB(ctx).GetView(ctx, viewID)
	if err != nil {
		return nil, storeError(err)
	}
	return view, nil
}

func ListViews(ctx context.Context, tableID uuid.UUID) ([]*models.View, apperrors.Error) {
	views, err := db.DB(ctx).ListViews(ctx, tableID)
	if err != nil {
		return nil, storeError(err)
	}
	return views, nil
}

func DeleteView(ctx context.Context, viewID uuid.UUID) apperrors.Error {
	if err := db.DB(ctx).DeleteView(ctx, viewID); err != nil {
		return storeError(err)
	}
	return nil
}

// normalizeFieldConfig validates the config blob's shape and renders it
// as JSONB. A nil config stores the empty object.
func normalizeFieldConfig(config any) (pgtype.JSONB, apperrors.Error) {
	if config == nil {
		config = map[string]any{}
	}
	if err := fieldConfigSchema.Validate(config); err != nil {
		return pgtype.JSONB{}, ErrInvalidRequest.Msg("invalid field config: " + err.Error())
	}
	return jsonbFromValue(config)
}

func jsonbFromValue(value any) (pgtype.JSONB, apperrors.Error) {
	if value == nil {
		value = map[string]any{}
	}
	serialized, err := json.Marshal(value)
	if err != nil {
		return pgtype.JSONB{}, ErrInvalidRequest.Msg("config cannot be serialized")
	}
	var jsonb pgtype.JSONB
	if err := jsonb.Set(serialized); err != nil {
		return pgtype.JSONB{}, ErrInvalidRequest.Msg("config cannot be serialized")
	}
	return jsonb, nil
}
