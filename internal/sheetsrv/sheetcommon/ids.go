package sheetcommon

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const tenantIdAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const tenantIdLen = 6

// NewTenantId generates a short alphanumeric tenant identifier with a
// "T" prefix. Not guaranteed unique; the tenants table is the backstop
// and callers retry on conflict.
func NewTenantId() TenantId {
	c, err := gonanoid.Generate(tenantIdAlphabet, tenantIdLen)
	if err != nil {
		return ""
	}
	return TenantId("T" + c)
}
