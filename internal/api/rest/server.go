// Package rest HTTP-интерфейс классификатора.
package rest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"vision-classifier/internal/domain/entity"
	"vision-classifier/internal/logger"
)

// HeaderRequestID заголовок с идентификатором запроса
const HeaderRequestID = "X-Request-ID"

// errMalformedForm тело запроса не разбирается как multipart/form-data
var errMalformedForm = errors.New("malformed multipart form")

// Classifier то, что сервер умеет вызывать
type Classifier interface {
	Classify(ctx context.Context, data []byte) (*entity.ClassificationResult, error)
}

// Options параметры сервера
type Options struct {
	ModelName string // показывается в /health
	Labels    int    // число загруженных меток
	MaxUpload int64  // предел размера тела запроса, байт
}

type Server struct {
	classifier Classifier
	log        logger.Logger
	opts       Options
}

// NewServer создаёт HTTP-сервер поверх классификатора.
func NewServer(classifier Classifier, log logger.Logger, opts Options) *Server {
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = 10 << 20
	}
	return &Server{classifier: classifier, log: log, opts: opts}
}

// NewEcho собирает echo с middleware и маршрутами.
func NewEcho(s *Server) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Recover())
	s.Register(e)
	return e
}

// Register подключает middleware и маршруты
func (s *Server) Register(e *echo.Echo) {
	e.Use(s.requestContext)
	e.Use(cors)
	e.Use(notFoundJSON)

	e.GET("/health", s.handleHealth)
	e.POST("/predict", s.handlePredict)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Model:  s.opts.ModelName,
		Labels: s.opts.Labels,
	})
}

func (s *Server) handlePredict(c *echo.Context) error {
	data, err := s.readUpload(c)
	if err != nil {
		return s.fail(c, err)
	}

	res, err := s.classifier.Classify(c.Request().Context(), data)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, newPredictResponse(res))
}

// readUpload читает файл из multipart-поля file
func (s *Server) readUpload(c *echo.Context) ([]byte, error) {
	r := c.Request()
	r.Body = http.MaxBytesReader(c.Response(), r.Body, s.opts.MaxUpload)

	if err := r.ParseMultipartForm(s.opts.MaxUpload); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, entity.ErrNoFile
		}
		return nil, fmt.Errorf("%w: %w", errMalformedForm, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, entity.ErrNoFile
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	logger.FromContext(r.Context()).Debug("received file", "filename", header.Filename, "size", buf.Len())
	return buf.Bytes(), nil
}

func (s *Server) fail(c *echo.Context, err error) error {
	status := statusFor(err)
	log := logger.FromContext(c.Request().Context())
	if status >= http.StatusInternalServerError {
		log.Error("prediction error", "error", err)
	} else {
		log.Warn("rejected request", "status", status, "error", err)
	}
	return c.JSON(status, ErrorResponse{Error: err.Error()})
}

// statusFor переводит ошибки конвейера в HTTP-статусы
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, entity.ErrNoFile):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge), errors.Is(err, multipart.ErrMessageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errMalformedForm):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrBusy):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// requestContext выдаёт запросу идентификатор и кладёт логгер с ним в контекст
func (s *Server) requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		r := c.Request()
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Response().Header().Set(HeaderRequestID, id)

		log := s.log.With("request_id", id, "method", r.Method, "path", r.URL.Path)
		c.SetRequest(r.WithContext(logger.WithContext(r.Context(), log)))
		return next(c)
	}
}

// cors разрешает запросы с любых источников, preflight отвечает 204
func cors(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		h := c.Response().Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusNoContent)
		}
		return next(c)
	}
}

// notFoundJSON отдаёт 404 в том же формате, что и остальные ошибки
func notFoundJSON(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		err := next(c)
		var coder interface{ StatusCode() int }
		if errors.As(err, &coder) && coder.StatusCode() == http.StatusNotFound {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Endpoint not found"})
		}
		return err
	}
}
