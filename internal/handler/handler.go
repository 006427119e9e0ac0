package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/httpmiddleware"
)

// PhotoUploader stores student photos and returns their public URL.
type PhotoUploader interface {
	UploadStudentPhoto(ctx context.Context, studentID int64, data string) (string, error)
	UploadStudentFile(ctx context.Context, studentID int64, data []byte, filename string) (string, error)
}

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) bool

// Options configures the optional collaborators of a Handler.
type Options struct {
	Issuer       auth.Issuer
	AuthRequired bool
	// Photos is nil when no image storage is configured.
	Photos PhotoUploader
	// Checks are reported by /healthz under their names.
	Checks map[string]Check
	Log    *zap.Logger
}

// Handler serves the attendance HTTP API.
type Handler struct {
	svc  *attendance.Service
	opts Options
	log  *zap.Logger
}

// New creates a handler over svc.
func New(svc *attendance.Service, opts Options) *Handler {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, opts: opts, log: log}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", h.health)
	r.POST("/auth/login", h.login)
	r.POST("/auth/refresh", h.refresh)

	api := r.Group("/")
	if h.opts.AuthRequired {
		api.Use(auth.UserAuth(h.opts.Issuer))
	}

	api.POST("/users", h.createUser)
	api.GET("/users/:id", h.getUser)
	api.PUT("/users/:id", h.updateUser)
	api.DELETE("/users/:id", h.deleteUser)

	api.POST("/students", h.createStudent)
	api.GET("/students/:id", h.getStudent)
	api.PUT("/students/:id", h.updateStudent)
	api.POST("/students/:id/photo", h.uploadStudentPhoto)

	api.POST("/classes", h.createClass)
	api.GET("/classes/:id", h.getClass)
	api.PUT("/classes/:id", h.updateClass)
	api.GET("/classes/:id/roster", h.roster)

	api.POST("/attendance", h.recordAttendance)
	api.GET("/attendance", h.listAttendance)

	api.POST("/rfid/scan", h.scanRFID)
	api.POST("/face/verify", h.verifyFace)
}

func init() {
	// Report json/form names in validation messages instead of Go field names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	}
}

// fail writes err as {"error": msg} with the status of its kind.
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		httpmiddleware.Logger(c, h.log).Error("request failed",
			zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": attendance.Message(err)})
}

func statusOf(err error) int {
	switch attendance.KindOf(err) {
	case attendance.KindValidation, attendance.KindConflict:
		return http.StatusBadRequest
	case attendance.KindNotFound:
		return http.StatusNotFound
	case attendance.KindUnauthorized:
		return http.StatusUnauthorized
	case attendance.KindUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// bindJSON decodes the body into dst. Missing required fields, including an
// empty body, are reported with missing.
func bindJSON(c *gin.Context, dst any, missing string) error {
	return bindError(c.ShouldBindJSON(dst), missing)
}

// bindQuery is bindJSON for query parameters.
func bindQuery(c *gin.Context, dst any, missing string) error {
	return bindError(c.ShouldBindQuery(dst), missing)
}

func bindError(err error, missing string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		return attendance.Validation(missing)
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return attendance.Validation("Invalid request body")
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return attendance.Validation(missing)
		}
	}
	return attendance.Validationf("Invalid %s", verrs[0].Field())
}

// bindPatch decodes an update body. An empty body is an empty patch.
func bindPatch(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return attendance.Validation("Invalid request body")
	}
	return nil
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, attendance.Validation("Invalid id")
	}
	return id, nil
}
