package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"locallibrary/catalog/internal/errs"
	"locallibrary/catalog/internal/model"
)

func (h *Handler) ListAuthors(c echo.Context) error {
	page, err := pageParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	authors, err := h.catalogSvc.ListAuthors(c.Request().Context(), page, pageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, authors)
}

func (h *Handler) GetAuthor(c echo.Context) error {
	authorID, err := strconv.Atoi(c.Param("authorID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.New("authorID is invalid"))
	}

	author, err := h.catalogSvc.GetAuthor(c.Request().Context(), authorID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, author)
}

func (h *Handler) AuthorCreateForm(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalogSvc.AuthorForm())
}

func (h *Handler) CreateAuthor(c echo.Context) error {
	var req model.CreateAuthorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	author, err := h.catalogSvc.CreateAuthor(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/catalog/authors/%d", author.ID))
	return c.JSON(http.StatusCreated, author)
}

func (h *Handler) UpdateAuthor(c echo.Context) error {
	authorID, err := strconv.Atoi(c.Param("authorID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.New("authorID is invalid"))
	}

	var req model.CreateAuthorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	author, err := h.catalogSvc.UpdateAuthor(c.Request().Context(), authorID, req)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, author)
}

func (h *Handler) DeleteAuthor(c echo.Context) error {
	authorID, err := strconv.Atoi(c.Param("authorID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.New("authorID is invalid"))
	}

	if err := h.catalogSvc.DeleteAuthor(c.Request().Context(), authorID); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, errs.ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, "author still has books")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
