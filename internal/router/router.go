// Package router wires the users page handlers into a chi router.
package router

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/usersweb/internal/gzippedhttp"
	"github.com/patric-chuzhbe/usersweb/internal/logger"
	"github.com/patric-chuzhbe/usersweb/internal/models"
	"github.com/patric-chuzhbe/usersweb/internal/user"
	"github.com/patric-chuzhbe/usersweb/internal/views"
)

type userService interface {
	ListUsers(ctx context.Context) ([]user.User, error)

	CreateUser(ctx context.Context, form models.UserForm) (string, []models.ValidationError, error)

	GetUser(ctx context.Context, userID string) (*user.User, error)

	UpdateUser(ctx context.Context, userID string, update models.UserUpdate) error

	DeleteUser(ctx context.Context, userID string) error

	Ping(ctx context.Context) error
}

type renderer interface {
	Render(w http.ResponseWriter, status int, name string, data interface{}) error
}

// Router serves the users page.
type Router struct {
	service  userService
	views    renderer
	basePath string
}

type handlerFunc func(res http.ResponseWriter, req *http.Request) error

// fields the update form may change
var editableUserFields = []string{"name", "email", "password"}

type initOptions struct {
	allowGetDelete     bool
	corsAllowedOrigins []string
}

// InitOption configures optional routes and middlewares.
type InitOption func(*initOptions)

// WithGetDelete keeps GET /delete/{id} registered next to POST /delete/{id}.
func WithGetDelete(value bool) InitOption {
	return func(options *initOptions) {
		options.allowGetDelete = value
	}
}

// WithCORSAllowedOrigins enables CORS for the given origins.
func WithCORSAllowedOrigins(origins []string) InitOption {
	return func(options *initOptions) {
		options.corsAllowedOrigins = origins
	}
}

// handle adapts an error-returning handler. Any error is logged and answered
// with a generic 500 that carries no detail.
func (router *Router) handle(fn handlerFunc) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		if err := fn(res, req); err != nil {
			logger.Log.Errorw(
				"request failed",
				"uri", req.RequestURI,
				"method", req.Method,
				"error", err,
			)
			http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

func (router *Router) redirectToList(res http.ResponseWriter, req *http.Request) {
	http.Redirect(res, req, router.basePath, http.StatusFound)
}

// GetUsers renders the list view.
func (router *Router) GetUsers(res http.ResponseWriter, req *http.Request) error {
	users, err := router.service.ListUsers(req.Context())
	if err != nil {
		return err
	}

	return router.views.Render(res, http.StatusOK, views.ListView, models.ListPage{
		BasePath: router.basePath,
		Users:    users,
		Errors:   nil,
	})
}

// PostUsers creates a user from the submitted form, or re-renders the list
// with status 400 and the failed rule messages.
func (router *Router) PostUsers(res http.ResponseWriter, req *http.Request) error {
	if err := req.ParseForm(); err != nil {
		http.Error(res, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return nil
	}

	_, validationErrors, err := router.service.CreateUser(req.Context(), models.UserForm{
		Name:     req.PostForm.Get("name"),
		Email:    req.PostForm.Get("email"),
		Password: req.PostForm.Get("password"),
	})
	if err != nil {
		return err
	}

	if len(validationErrors) > 0 {
		users, err := router.service.ListUsers(req.Context())
		if err != nil {
			return err
		}

		return router.views.Render(res, http.StatusBadRequest, views.ListView, models.ListPage{
			BasePath: router.basePath,
			Users:    users,
			Errors:   validationErrors,
		})
	}

	router.redirectToList(res, req)

	return nil
}

// GetEdit renders the edit partial. A missing user is rendered as such, not as an error.
func (router *Router) GetEdit(res http.ResponseWriter, req *http.Request) error {
	usr, err := router.service.GetUser(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}

	return router.views.Render(res, http.StatusOK, views.EditView, models.EditPage{
		BasePath: router.basePath,
		User:     usr,
	})
}

// PostUpdate applies the editable fields present in the form.
func (router *Router) PostUpdate(res http.ResponseWriter, req *http.Request) error {
	if err := req.ParseForm(); err != nil {
		http.Error(res, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return nil
	}

	err := router.service.UpdateUser(req.Context(), chi.URLParam(req, "id"), userUpdateFromForm(req.PostForm))
	if err != nil {
		return err
	}

	router.redirectToList(res, req)

	return nil
}

// Delete removes the user if present.
func (router *Router) Delete(res http.ResponseWriter, req *http.Request) error {
	if err := router.service.DeleteUser(req.Context(), chi.URLParam(req, "id")); err != nil {
		return err
	}

	router.redirectToList(res, req)

	return nil
}

// GetPing reports storage health.
func (router *Router) GetPing(res http.ResponseWriter, req *http.Request) error {
	if err := router.service.Ping(req.Context()); err != nil {
		return err
	}
	res.WriteHeader(http.StatusOK)

	return nil
}

// userUpdateFromForm keeps only the editable fields that were actually submitted.
func userUpdateFromForm(form url.Values) models.UserUpdate {
	var update models.UserUpdate
	submitted := funk.Keys(map[string][]string(form)).([]string)
	for _, field := range funk.IntersectString(editableUserFields, submitted) {
		value := form.Get(field)
		switch field {
		case "name":
			update.Name = &value
		case "email":
			update.Email = &value
		case "password":
			update.Password = &value
		}
	}

	return update
}

// New builds the chi router with the users page mounted on basePath.
func New(
	service userService,
	pageRenderer renderer,
	basePath string,
	optionsProto ...InitOption,
) *chi.Mux {
	options := &initOptions{
		allowGetDelete: true,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	myRouter := &Router{
		service:  service,
		views:    pageRenderer,
		basePath: basePath,
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		logger.WithRecoverMiddleware,
		gzippedhttp.UngzipRequest,
	)
	if len(options.corsAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Options{
			AllowedOrigins: options.corsAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		}).Handler)
	}

	router.Get(`/ping`, myRouter.handle(myRouter.GetPing))

	usersRoutes := func(r chi.Router) {
		r.Use(gzippedhttp.GzipResponse)
		r.Get(`/`, myRouter.handle(myRouter.GetUsers))
		r.Post(`/`, myRouter.handle(myRouter.PostUsers))
		r.Get(`/edit/{id}`, myRouter.handle(myRouter.GetEdit))
		r.Post(`/update/{id}`, myRouter.handle(myRouter.PostUpdate))
		r.Post(`/delete/{id}`, myRouter.handle(myRouter.Delete))
		if options.allowGetDelete {
			r.Get(`/delete/{id}`, myRouter.handle(myRouter.Delete))
		}
	}

	if basePath == "/" {
		router.Group(usersRoutes)
	} else {
		router.Route(basePath, usersRoutes)
		router.Get(`/`, func(res http.ResponseWriter, req *http.Request) {
			myRouter.redirectToList(res, req)
		})
	}

	return router
}
