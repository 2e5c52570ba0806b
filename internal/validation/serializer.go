package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// StrictJSONSerializer is Echo's default JSON serializer, except that request
// bodies carrying keys the target struct does not declare are rejected.
type StrictJSONSerializer struct {
	echo.DefaultJSONSerializer
}

// Deserialize decodes the request body into i, rejecting unknown fields and
// anything after the first JSON value.
func (StrictJSONSerializer) Deserialize(c echo.Context, i interface{}) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(i)
	if err == nil {
		var extra json.RawMessage
		if trailingErr := dec.Decode(&extra); !errors.Is(trailingErr, io.EOF) {
			return echo.NewHTTPError(http.StatusBadRequest,
				"Syntax error: unexpected data after top-level JSON value",
			).SetInternal(trailingErr)
		}
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Unmarshal type error: expected=%v, got=%v, field=%v", typeErr.Type, typeErr.Value, typeErr.Field),
		).SetInternal(err)
	case errors.As(err, &syntaxErr):
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Syntax error: offset=%v, error=%v", syntaxErr.Offset, syntaxErr.Error()),
		).SetInternal(err)
	default:
		// Unknown keys come back as a plain error: `json: unknown field "x"`.
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
}
