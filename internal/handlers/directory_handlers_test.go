package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empdir/emp-api/internal/models"
)

func TestDepartments_CRUD(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.seedUser(t, "admin@emp.com", "Admin@123", models.RoleAdmin, true)
	ts.seedUser(t, "staff@emp.com", "Staff@123", models.RoleStaff, true)
	adminToken := ts.login(t, "admin@emp.com", "Admin@123")
	staffToken := ts.login(t, "staff@emp.com", "Staff@123")

	// Directory writes are admin-only; reads are open to any authenticated role.
	rec := ts.request(http.MethodPost, "/api/v1/departments", staffToken, map[string]string{"name": "Engineering"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.request(http.MethodPost, "/api/v1/departments", adminToken, map[string]string{"name": "Engineering"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var dep models.Department
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dep))
	require.NotZero(t, dep.ID)

	rec = ts.request(http.MethodGet, "/api/v1/departments", staffToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Engineering")

	rec = ts.request(http.MethodPut, fmt.Sprintf("/api/v1/departments/%d", dep.ID), adminToken, map[string]string{"name": "Platform Engineering"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(http.MethodDelete, fmt.Sprintf("/api/v1/departments/%d", dep.ID), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.request(http.MethodGet, fmt.Sprintf("/api/v1/departments/%d", dep.ID), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmployees_CRUDAndDepartmentGuard(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.seedUser(t, "admin@emp.com", "Admin@123", models.RoleAdmin, true)
	adminToken := ts.login(t, "admin@emp.com", "Admin@123")

	rec := ts.request(http.MethodPost, "/api/v1/departments", adminToken, map[string]string{"name": "Engineering"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var dep models.Department
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dep))

	rec = ts.request(http.MethodPost, "/api/v1/employees", adminToken, map[string]any{
		"first_name":    "John",
		"last_name":     "Doe",
		"email":         "john.doe@example.com",
		"department_id": dep.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var emp models.Employee
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &emp))
	require.NotZero(t, emp.ID)

	// Unknown department is rejected up front.
	rec = ts.request(http.MethodPost, "/api/v1/employees", adminToken, map[string]any{
		"first_name":    "Jane",
		"last_name":     "Smith",
		"email":         "jane.smith@example.com",
		"department_id": 9999,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// A department with employees cannot be deleted.
	rec = ts.request(http.MethodDelete, fmt.Sprintf("/api/v1/departments/%d", dep.ID), adminToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.request(http.MethodPut, fmt.Sprintf("/api/v1/employees/%d", emp.ID), adminToken, map[string]any{
		"first_name": "Jonathan",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jonathan")

	rec = ts.request(http.MethodGet, "/api/v1/employees?page=1&size=10", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "john.doe@example.com")

	rec = ts.request(http.MethodDelete, fmt.Sprintf("/api/v1/employees/%d", emp.ID), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.request(http.MethodDelete, fmt.Sprintf("/api/v1/departments/%d", dep.ID), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
