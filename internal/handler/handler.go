// Package handler is the first entry point for business logic after
// the router.
//
// It parses requests, handles input validation using the validation
// package, and calls the appropriate service layer. It acts as the
// interface between the HTTP request and the core business logic.
package handler

import (
	"time"

	"github.com/fstr-project/pereval-api/internal/middleware"
	"github.com/fstr-project/pereval-api/internal/server"
	"github.com/fstr-project/pereval-api/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler is the base type that holds shared application
// dependencies. Concrete handlers embed it to reach config, logger,
// and the database through *server.Server.
type Handler struct {
	server *server.Server
}

// NewHandler constructs a base Handler. Returned by value: the struct
// only holds a pointer, so copies are cheap and share the Server.
func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint function: it receives a bound and
// validated request payload and returns a response or an error.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// statusable lets a response payload choose its own HTTP status code.
// The legacy submitData envelopes carry their status in the body and
// the wire status mirrors it.
type statusable interface {
	HTTPStatus() int
}

// ResponseHandler defines how a successful handler result is written
// to the HTTP response and which observability attributes it carries.
type ResponseHandler interface {
	Handle(c echo.Context, result interface{}) error

	// GetOperation returns an operation name used for structured
	// logging.
	GetOperation() string

	// AddAttributes attaches New Relic attributes derived from the
	// response.
	AddAttributes(txn *newrelic.Transaction, result interface{})
}

// JSONResponseHandler writes JSON responses. The configured status is
// the default; results implementing statusable override it.
type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	status := h.status
	if s, ok := result.(statusable); ok {
		status = s.HTTPStatus()
	}
	return c.JSON(status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	// http.status_code is already set by the tracing middleware.
}

// handleRequest is the shared execution pipeline for all handlers. It
// centralizes request binding + validation, structured logging, New
// Relic attributes and error reporting, timing, and response writing.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (interface{}, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	method := c.Request().Method
	path := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", path)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("method", method).
		Str("path", path).
		Logger()

	logger.Info().Msg("handling request")

	validationStart := time.Now()

	if err := validation.BindAndValidate(c, req); err != nil {
		validationDuration := time.Since(validationStart)

		logger.Error().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}

		// The global error handler formats the 400 response.
		return err
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		totalDuration := time.Since(start)

		logger.Error().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", totalDuration).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
			txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		}
		return err
	}

	totalDuration := time.Since(start)

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		responseHandler.AddAttributes(txn, result)
	}

	logger.Info().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed")

	return responseHandler.Handle(c, result)
}

// request constrains PReq to be *Req implementing
// validation.Validatable, so Handle can allocate a fresh payload per
// request instead of sharing one across goroutines.
type request[T any] interface {
	*T
	validation.Validatable
}

// Handle wraps a typed handler with binding, validation, error
// handling, logging, and tracing, returning an echo.HandlerFunc ready
// for route registration:
//
//	r.POST("/submitData", handler.Handle(h.Handler, h.SubmitData, http.StatusOK))
func Handle[Req any, PReq request[Req], Res any](
	h Handler,
	handler HandlerFunc[PReq, Res],
	status int,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := PReq(new(Req))
		return handleRequest(c, req, func(c echo.Context, req PReq) (interface{}, error) {
			return handler(c, req)
		}, JSONResponseHandler{status: status})
	}
}
