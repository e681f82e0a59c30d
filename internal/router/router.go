package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/returns-service/api"
	"github.com/psds-microservice/returns-service/internal/handler"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	PathHealth  = "/health"
	PathReady   = "/ready"
	PathSwagger = "/swagger"
)

func New(returns *handler.ReturnHandler, ready handler.Pinger, log *slog.Logger) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(log))
	r.GET(PathHealth, handler.Health)
	r.GET(PathReady, handler.Ready(ready))
	r.GET(PathSwagger, func(c *gin.Context) { c.Redirect(http.StatusFound, PathSwagger+"/") })
	r.GET(PathSwagger+"/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = PathSwagger + "/index.html"
			c.Request.RequestURI = PathSwagger + "/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(PathSwagger+"/openapi.json"))(c)
	})

	v := r.Group("/api")
	{
		v.GET("/returns", returns.List)
		v.PATCH("/returns", returns.Update)
		v.GET("/filters", returns.Filters)
	}

	return r
}
