package gql

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

type Handler struct {
	schema graphql.Schema
}

func NewHandler(schema graphql.Schema) *Handler {
	return &Handler{schema: schema}
}

// RegisterRoutes mounts the endpoint on GET and POST.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.Serve)
	g.POST("", h.Serve)
}

// Serve executes one GraphQL request. Execution errors are reported in the
// response body with status 200; only unusable requests get a 4xx.
func (h *Handler) Serve(c echo.Context) error {
	req, err := decodeRequest(c)
	if err != nil {
		return err
	}

	// Mutations over GET would be triggerable by cross-site links.
	if c.Request().Method == http.MethodGet && isMutation(req.Query, req.OperationName) {
		return echo.NewHTTPError(http.StatusMethodNotAllowed, "mutations must use POST")
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        c.Request().Context(),
	})

	if result.HasErrors() {
		msgs := make([]string, len(result.Errors))
		for i, e := range result.Errors {
			msgs[i] = e.Message
		}
		zerolog.Ctx(c.Request().Context()).Warn().
			Str("operation", req.OperationName).
			Strs("errors", msgs).
			Msg("graphql error response")
	}

	return c.JSON(http.StatusOK, result)
}

func decodeRequest(c echo.Context) (*request, error) {
	var req request
	if c.Request().Method == http.MethodGet {
		req.Query = c.QueryParam("query")
		req.OperationName = c.QueryParam("operationName")
		if v := c.QueryParam("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				return nil, echo.NewHTTPError(http.StatusBadRequest, "variables must be a JSON object")
			}
		}
	} else if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return nil, he
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "malformed GraphQL request body")
	}

	if strings.TrimSpace(req.Query) == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	return &req, nil
}

// isMutation reports whether the operation that would run is a mutation.
// Unparseable documents are left to graphql.Do to report.
func isMutation(query, operationName string) bool {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return false
	}
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName != "" && (op.Name == nil || op.Name.Value != operationName) {
			continue
		}
		if op.Operation == ast.OperationTypeMutation {
			return true
		}
	}
	return false
}
