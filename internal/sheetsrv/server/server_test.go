package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	srvconfig "github.com/gridbase/sheetsrv/internal/sheetsrv/config"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetcommon"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func TestMain(m *testing.M) {
	if err := srvconfig.LoadConfig(""); err != nil {
		os.Exit(1)
	}
	if err := db.Init(context.Background()); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func newServer(t *testing.T) *SheetServer {
	t.Helper()
	s, err := CreateNewServer()
	require.NoError(t, err)
	s.MountHandlers()
	return s
}

// newServerTenant provisions a tenant for a server test and returns its
// id plus a cleanup func.
func newServerTenant(t *testing.T) (sheetcommon.TenantId, func()) {
	t.Helper()
	ctx, err := db.ConnCtx(context.Background())
	require.NoError(t, err)
	tenantID := sheetcommon.NewTenantId()
	require.NotEmpty(t, tenantID)
	require.NoError(t, db.DB(ctx).CreateTenant(ctx, tenantID))
	return tenantID, func() {
		db.DB(ctx).DeleteTenant(ctx, tenantID)
		db.DB(ctx).Close(ctx)
	}
}

func executeTestRequest(t *testing.T, s *SheetServer, method, path string, tenantID sheetcommon.TenantId, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Buffer = bytes.NewBuffer(nil)
	if body != nil {
		serialized, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(serialized)
	}
	req, err := http.NewRequest(method, path, reqBody)
	require.NoError(t, err)
	if tenantID != "" {
		req.Header.Set("X-Tenant-ID", string(tenantID))
	}
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func TestGetVersion(t *testing.T) {
	s := newServer(t)
	response := executeTestRequest(t, s, http.MethodGet, "/version", "", nil)
	assert.Equal(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Body.String(), "serverVersion")
}

func TestMissingTenantHeaderIsRejected(t *testing.T) {
	s := newServer(t)
	response := executeTestRequest(t, s, http.MethodGet, "/schemas", "", nil)
	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func TestSheetLifecycleOverHTTP(t *testing.T) {
	s := newServer(t)
	tenantID, cleanup := newServerTenant(t)
	defer cleanup()

	// schema
	response := executeTestRequest(t, s, http.MethodPost, "/schemas", tenantID,
		map[string]any{"name": "CRM"})
	require.Equal(t, http.StatusCreated, response.Code, response.Body.String())
	var schema struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &schema))

	// duplicate name conflicts
	response = executeTestRequest(t, s, http.MethodPost, "/schemas", tenantID,
		map[string]any{"name": "crm"})
	assert.Equal(t, http.StatusConflict, response.Code)

	// table
	response = executeTestRequest(t, s, http.MethodPost, "/schemas/"+schema.ID+"/tables", tenantID,
		map[string]any{"name": "Contacts"})
	require.Equal(t, http.StatusCreated, response.Code, response.Body.String())
	var table struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &table))
	assert.Equal(t, "contacts", table.Slug)

	// field
	response = executeTestRequest(t, s, http.MethodPost, "/tables/"+table.ID+"/fields", tenantID,
		map[string]any{"name": "Full Name", "type": "text"})
	require.Equal(t, http.StatusCreated, response.Code, response.Body.String())
	var field struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &field))
	assert.Equal(t, "full_name", field.Slug)

	// invalid field type
	response = executeTestRequest(t, s, http.MethodPost, "/tables/"+table.ID+"/fields", tenantID,
		map[string]any{"name": "Broken", "type": "decimal"})
	assert.Equal(t, http.StatusBadRequest, response.Code)

	// record
	response = executeTestRequest(t, s, http.MethodPost, "/tables/"+table.ID+"/records", tenantID,
		map[string]any{"title": "Ada"})
	require.Equal(t, http.StatusCreated, response.Code, response.Body.String())
	var record struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &record))

	// batch cell update
	response = executeTestRequest(t, s, http.MethodPost, "/records/cells", tenantID,
		map[string]any{"updates": []map[string]any{
			{"record_id": record.ID, "field_id": field.ID, "value": "Ada Lovelace"},
		}})
	require.Equal(t, http.StatusOK, response.Code, response.Body.String())
	var batch struct {
		Results []struct {
			Ok bool `json:"ok"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &batch))
	require.Len(t, batch.Results, 1)
	assert.True(t, batch.Results[0].Ok)

	// projection
	response = executeTestRequest(t, s, http.MethodGet, "/tables/"+table.ID+"/records?page=1&pageSize=10", tenantID, nil)
	require.Equal(t, http.StatusOK, response.Code, response.Body.String())
	var page struct {
		Total int `json:"total"`
		Rows  []struct {
			Cells map[string]any `json:"cells"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "Ada Lovelace", page.Rows[0].Cells["full_name"])

	// another tenant cannot see any of it
	otherTenant, otherCleanup := newServerTenant(t)
	defer otherCleanup()
	response = executeTestRequest(t, s, http.MethodGet, "/tables/"+table.ID+"/records", otherTenant, nil)
	assert.Equal(t, http.StatusNotFound, response.Code)
}
