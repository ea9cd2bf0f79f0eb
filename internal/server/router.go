package server

import (
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/mcuadros/go-gin-prometheus"

	"pof-predictor/internal/pof"
)

const PrometheusSubsystemName = "pof_api"

// Init builds the API engine.
func Init(verbose, enableMetrics bool, service pof.Service) (*gin.Engine, error) {
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := registerValidations(); err != nil {
		return nil, err
	}

	r := gin.New()
	h := NewHandlers(service)

	if enableMetrics {
		p := ginprometheus.NewPrometheus(PrometheusSubsystemName)
		// Keep the url label bounded.
		p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
			return c.FullPath()
		}
		p.Use(r)
	}

	r.Use(gin.Recovery())
	r.Use(Logger())
	r.Use(Error())

	r.POST("/pof", h.Predict)
	r.GET("/health", h.GetHealth)

	return r, nil
}
