package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	md "locallibrary/pkg/middleware"
	"locallibrary/pkg/validate"
)

// pageSize is the fixed page size of catalog listings.
const pageSize = 10

type Handler struct {
	catalogSvc CatalogService
	authSvc    AuthService
	log        *zap.Logger
}

func New(catalogSvc CatalogService, authSvc AuthService, log *zap.Logger) *Handler {
	return &Handler{
		catalogSvc: catalogSvc,
		authSvc:    authSvc,
		log:        log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.GET("/catalog/", h.Index)

	api.GET("/catalog/authors/", h.ListAuthors)
	api.GET("/catalog/authors/create/", h.AuthorCreateForm, md.SessionAuth, md.RequireLibrarian)
	api.GET("/catalog/authors/:authorID", h.GetAuthor)
	api.POST("/catalog/authors/", h.CreateAuthor, md.SessionAuth, md.RequireLibrarian)
	api.PUT("/catalog/authors/:authorID", h.UpdateAuthor, md.SessionAuth, md.RequireLibrarian)
	api.DELETE("/catalog/authors/:authorID", h.DeleteAuthor, md.SessionAuth, md.RequireLibrarian)

	api.GET("/catalog/books/", h.ListBooks)
	api.GET("/catalog/books/:bookUid", h.GetBook)
	api.POST("/catalog/books/", h.CreateBook, md.SessionAuth, md.RequireLibrarian)

	api.GET("/catalog/bookinstances/:instanceUid", h.GetInstance)
	api.POST("/catalog/bookinstances/", h.CreateInstance, md.SessionAuth, md.RequireLibrarian)
	api.POST("/catalog/bookinstances/:instanceUid/borrow", h.BorrowInstance, md.SessionAuth)
	api.GET("/catalog/bookinstances/:instanceUid/renew", h.RenewForm, md.SessionAuth, md.RequireLibrarian)
	api.POST("/catalog/bookinstances/:instanceUid/renew", h.RenewInstance, md.SessionAuth, md.RequireLibrarian)
	api.POST("/catalog/bookinstances/:instanceUid/return", h.ReturnInstance, md.SessionAuth, md.RequireLibrarian)

	api.GET("/catalog/mybooks/", h.MyBooks, md.SessionAuth)
	api.GET("/catalog/borrowed/", h.AllBorrowed, md.SessionAuth, md.RequireLibrarian)
	api.GET("/catalog/events/", h.LoanEvents, md.SessionAuth, md.RequireLibrarian)

	api.GET("/accounts/login/", h.LoginForm)
	api.POST("/accounts/login", h.Login)
	api.POST("/accounts/register", h.Register)
	api.POST("/accounts/logout", h.Logout, md.SessionAuth)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) Index(c echo.Context) error {
	counts, err := h.catalogSvc.Index(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, counts)
}

// pageParam parses the page query parameter, defaulting to the first page.
func pageParam(c echo.Context) (int, error) {
	pageStr := c.QueryParam("page")
	if pageStr == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		return 0, errors.New("page is invalid")
	}
	return page, nil
}
