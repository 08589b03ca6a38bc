package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/empdir/emp-api/internal/models"
	"github.com/empdir/emp-api/internal/mykafka"
	"github.com/empdir/emp-api/internal/repo"
	"github.com/empdir/emp-api/internal/service/search"
	"github.com/empdir/emp-api/internal/util"
)

type EmployeeHandler struct {
	Repo     *repo.GormRepo
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Index    string
}

func (h *EmployeeHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "employee_events", key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *EmployeeHandler) index(c echo.Context, emp *models.Employee) {
	if h.ES == nil {
		return
	}
	if err := search.IndexEmployee(c.Request().Context(), h.ES, h.Index, emp); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

func (h *EmployeeHandler) List(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, employees, err := h.Repo.ListEmployees(c.Request().Context(), offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": employees,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *EmployeeHandler) Get(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	emp, err := h.Repo.FindEmployeeByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "employee not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, emp)
}

func (h *EmployeeHandler) Create(c echo.Context) error {
	var req struct {
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		Email        string `json:"email"`
		DepartmentID uint   `json:"department_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.DepartmentID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required fields")
	}

	if _, err := h.Repo.FindDepartmentByID(c.Request().Context(), req.DepartmentID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown department")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	emp := models.Employee{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		DepartmentID: req.DepartmentID,
	}
	if err := h.Repo.CreateEmployee(c.Request().Context(), &emp); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return echo.NewHTTPError(http.StatusConflict, "employee email already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, fmt.Sprint(emp.ID), map[string]any{
		"type":        "employee_created",
		"employee_id": emp.ID,
		"email":       emp.Email,
	})
	h.index(c, &emp)

	return c.JSON(http.StatusCreated, emp)
}

func (h *EmployeeHandler) Update(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		Email        string `json:"email"`
		DepartmentID uint   `json:"department_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	emp, err := h.Repo.FindEmployeeByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "employee not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if req.DepartmentID != 0 && req.DepartmentID != emp.DepartmentID {
		if _, err := h.Repo.FindDepartmentByID(c.Request().Context(), req.DepartmentID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return echo.NewHTTPError(http.StatusBadRequest, "unknown department")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		emp.DepartmentID = req.DepartmentID
	}

	if req.FirstName != "" {
		emp.FirstName = req.FirstName
	}
	if req.LastName != "" {
		emp.LastName = req.LastName
	}
	if req.Email != "" {
		emp.Email = req.Email
	}
	emp.Department = nil

	if _, err := h.Repo.UpdateEmployee(c.Request().Context(), emp); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return echo.NewHTTPError(http.StatusConflict, "employee email already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, fmt.Sprint(emp.ID), map[string]any{
		"type":        "employee_updated",
		"employee_id": emp.ID,
	})
	h.index(c, emp)

	return c.JSON(http.StatusOK, emp)
}

func (h *EmployeeHandler) Delete(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.Repo.DeleteEmployee(c.Request().Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "employee not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, fmt.Sprint(id), map[string]any{
		"type":        "employee_deleted",
		"employee_id": id,
	})
	if h.ES != nil {
		if err := search.DeleteEmployee(c.Request().Context(), h.ES, h.Index, id); err != nil {
			c.Logger().Errorf("ES delete error: %v", err)
		}
	}

	return c.NoContent(http.StatusNoContent)
}
