package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"pof-predictor/internal/logger"
	"pof-predictor/internal/poferrors"
)

type ErrorResponse struct {
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"errors,omitempty"`
}

// Error writes the single response for a request whose handler recorded an error.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		ginErr := c.Errors.Last()
		if ginErr == nil || c.Writer.Written() {
			return
		}

		if ginErr.Type == gin.ErrorTypeBind {
			if kind, ok := bindKind(ginErr.Err); ok {
				c.JSON(http.StatusBadRequest, ErrorResponse{
					Message: userMessage(kind),
					Code:    kind.String(),
					Error:   ginErr.Error(),
				})
				return
			}
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Message: http.StatusText(http.StatusUnprocessableEntity),
				Error:   ginErr.Error(),
			})
			return
		}

		var err *poferrors.Error
		if errors.As(ginErr.Err, &err) && err.Kind.UserFacing() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: userMessage(err.Kind),
				Code:    err.Kind.String(),
				Error:   err.Error(),
			})
			return
		}

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "An unexpected error occurred on the server.",
		})
	}
}

// bindKind maps request validation failures on the image and site id fields
// to their typed kinds. The image is checked first, as in the pipeline.
func bindKind(err error) (poferrors.Kind, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return poferrors.KindUnknown, false
	}

	fields := map[string]bool{}
	for _, fe := range verrs {
		fields[fe.StructField()] = true
	}
	switch {
	case fields["ImageBase64"]:
		return poferrors.KindInvalidImage, true
	case fields["SiteID"]:
		return poferrors.KindNoSiteID, true
	default:
		return poferrors.KindUnknown, false
	}
}

func userMessage(kind poferrors.Kind) string {
	switch kind {
	case poferrors.KindInvalidImage:
		return "Invalid image provided"
	case poferrors.KindNoSiteID:
		return "No site ID provided"
	case poferrors.KindSiteIDNotFound:
		return "Site ID not found in image"
	default:
		return http.StatusText(http.StatusBadRequest)
	}
}

// Logger writes one access log entry per request to the gin logger.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := logger.GinLogger.With(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Warn(c.Errors.String())
			return
		}
		log.Info("request")
	}
}
