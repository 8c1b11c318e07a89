package v1

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// queryParamID parses a required positive int32 query parameter.
func queryParamID(c echo.Context, name string) (int32, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, errors.Errorf("%s is required", name)
	}
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid %s", name)
	}
	return int32(id), nil
}

// pathParamID parses a required positive int32 path parameter.
func pathParamID(c echo.Context, name string) (int32, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid %s", name)
	}
	return int32(id), nil
}
