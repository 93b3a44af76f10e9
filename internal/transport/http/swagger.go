package http

import (
	"net/http"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/njprem/recipe_browser/docs"
	"github.com/njprem/recipe_browser/internal/util"
)

// RegisterSwagger serves the embedded API description and the Swagger UI under /swagger.
func RegisterSwagger(e *echo.Echo) {
	jsonSpec, convErr := yaml.YAMLToJSON(docs.SwaggerYAML)
	e.GET("/swagger/doc.json", func(c echo.Context) error {
		if convErr != nil {
			c.Logger().Errorf("convert swagger spec: %v", convErr)
			return c.JSON(http.StatusInternalServerError, util.Error("unable to parse swagger spec"))
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, jsonSpec)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
