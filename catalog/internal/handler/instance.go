package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"locallibrary/catalog/internal/errs"
	"locallibrary/catalog/internal/model"
	"locallibrary/pkg/auth"
)

const allBorrowedPath = "/catalog/borrowed/"

func (h *Handler) GetInstance(c echo.Context) error {
	instanceUid := c.Param("instanceUid")
	inst, err := h.catalogSvc.GetInstance(c.Request().Context(), instanceUid)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, inst)
}

func (h *Handler) CreateInstance(c echo.Context) error {
	var req model.CreateInstanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	inst, err := h.catalogSvc.CreateInstance(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown book")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.Response().Header().Set(echo.HeaderLocation, "/catalog/bookinstances/"+inst.InstanceUid)
	return c.JSON(http.StatusCreated, inst)
}

// MyBooks lists the copies currently on loan to the authenticated user.
func (h *Handler) MyBooks(c echo.Context) error {
	user, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	page, err := pageParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	borrowed, err := h.catalogSvc.ListBorrowed(c.Request().Context(), user.Username, page, pageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, borrowed)
}

func (h *Handler) AllBorrowed(c echo.Context) error {
	page, err := pageParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	borrowed, err := h.catalogSvc.ListBorrowed(c.Request().Context(), "", page, pageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, borrowed)
}

func (h *Handler) BorrowInstance(c echo.Context) error {
	user, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	instanceUid := c.Param("instanceUid")
	inst, err := h.catalogSvc.BorrowInstance(c.Request().Context(), instanceUid, user.Username)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, errs.ErrNotAvailable):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, inst)
}

// RenewForm returns the renewal form state pre-filled with today + 3 weeks.
func (h *Handler) RenewForm(c echo.Context) error {
	instanceUid := c.Param("instanceUid")
	form, err := h.catalogSvc.RenewalForm(c.Request().Context(), instanceUid)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, form)
}

func (h *Handler) RenewInstance(c echo.Context) error {
	instanceUid := c.Param("instanceUid")

	var req model.RenewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.catalogSvc.RenewInstance(c.Request().Context(), instanceUid, req.RenewalDate); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, errs.ErrRenewalInPast), errors.Is(err, errs.ErrRenewalTooFarAhead):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.Redirect(http.StatusSeeOther, allBorrowedPath)
}

func (h *Handler) ReturnInstance(c echo.Context) error {
	instanceUid := c.Param("instanceUid")
	if err := h.catalogSvc.ReturnInstance(c.Request().Context(), instanceUid); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

func (h *Handler) LoanEvents(c echo.Context) error {
	limit := 50
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		var err error
		if limit, err = strconv.Atoi(limitParam); err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, errors.New("limit is invalid"))
		}
	}

	events, err := h.catalogSvc.ListLoanEvents(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, events)
}
