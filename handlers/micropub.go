package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkpub/micropub/internal/mf2"
	"github.com/inkpub/micropub/internal/micropub"
	"github.com/inkpub/micropub/internal/publication"
	"github.com/inkpub/micropub/pkg/logger"
	"github.com/inkpub/micropub/pkg/metrics"
	"github.com/inkpub/micropub/pkg/middleware"
)

const maxFormMemory = 32 << 20

// MicropubHandler serves the Micropub endpoint: POST for actions, GET for
// queries. Routes are expected behind middleware.AuthMiddleware.
type MicropubHandler struct {
	Service  *micropub.Service
	Config   *publication.Config
	AppURL   string
	Resolver mf2.Resolver
}

// RegisterMicropubRoutes mounts the endpoint at the root of rg.
func RegisterMicropubRoutes(rg gin.IRoutes, h *MicropubHandler) {
	rg.GET("", h.Query)
	rg.POST("", h.Post)
}

// request is a JSON Micropub body: an mf2 item for create, or an action.
type request struct {
	Type       []string       `json:"type"`
	Properties mf2.Properties `json:"properties"`
	micropub.Instruction
}

var actionScopes = map[string]string{
	"create":   "create",
	"update":   "update",
	"delete":   "delete",
	"undelete": "delete",
}

func (h *MicropubHandler) Post(c *gin.Context) {
	var req request
	var err error
	if isJSON(c.GetHeader("Content-Type")) {
		err = json.NewDecoder(c.Request.Body).Decode(&req)
	} else {
		err = decodeForm(c, &req)
	}
	if err != nil {
		writeError(c, micropub.InvalidRequest("could not parse request body: %v", err))
		return
	}

	action := strings.ToLower(req.Action)
	if action == "" {
		action = "create"
	}
	scope, ok := actionScopes[action]
	if !ok {
		writeError(c, micropub.InvalidRequest("unsupported action %q", req.Action))
		return
	}
	if !middleware.HasScope(c, scope) {
		writeError(c, micropub.InsufficientScope(scope))
		return
	}

	ctx := c.Request.Context()
	var doc *mf2.Document
	switch action {
	case "create":
		doc, err = h.Service.Create(ctx, &mf2.Item{Type: req.Type, Properties: req.Properties})
	case "update":
		req.Instruction.Action = action
		doc, err = h.Service.Update(ctx, &req.Instruction)
	case "delete":
		doc, err = h.Service.Delete(ctx, req.URL)
	case "undelete":
		doc, err = h.Service.Undelete(ctx, req.URL)
	}
	metrics.Actions.WithLabelValues(action, metrics.Outcome(err)).Inc()
	if err != nil {
		writeError(c, err)
		return
	}

	switch action {
	case "create":
		c.Header("Location", doc.URL)
		c.JSON(http.StatusAccepted, gin.H{"success": "create", "success_description": "Post will be created at " + doc.URL})
	case "undelete":
		c.Header("Location", doc.URL)
		c.JSON(http.StatusOK, gin.H{"success": "undelete", "success_description": "Post restored at " + doc.URL})
	default:
		c.JSON(http.StatusOK, gin.H{"success": action, "success_description": "Post " + action + "d at " + doc.URL})
	}
}

func (h *MicropubHandler) Query(c *gin.Context) {
	q := micropub.Query{
		Q:          c.Query("q"),
		URL:        c.Query("url"),
		Properties: append(c.QueryArray("properties[]"), c.QueryArray("properties")...),
	}
	label := q.Q
	switch label {
	case micropub.QueryConfig, micropub.QuerySource, micropub.QuerySyndicateTo:
	default:
		label = "unsupported"
	}
	metrics.Queries.WithLabelValues(label).Inc()

	resp, err := micropub.AnswerQuery(c.Request.Context(), q, h.Config, h.AppURL, h.Resolver)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(resp.Status, resp.Body)
}

func isJSON(contentType string) bool {
	mt, _, _ := mime.ParseMediaType(contentType)
	return mt == "application/json"
}

// decodeForm reads a form-encoded or multipart body. h=entry becomes
// type h-entry, and every other field (with or without a trailing [])
// becomes a property.
func decodeForm(c *gin.Context, req *request) error {
	if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	req.Properties = mf2.Properties{}
	for key, values := range c.Request.PostForm {
		name := strings.TrimSuffix(key, "[]")
		switch name {
		case "access_token":
		case "h":
			if len(values) > 0 && values[0] != "" {
				req.Type = []string{"h-" + values[0]}
			}
		case "action":
			req.Action = first(values)
		case "url":
			req.URL = first(values)
		default:
			for _, v := range values {
				req.Properties.Append(name, v)
			}
		}
	}
	if req.Action == "update" {
		return errors.New("updates must be sent as JSON")
	}
	return nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// writeError renders err as a Micropub error body. Errors that are not
// protocol errors become 500 server_error with their message intact.
func writeError(c *gin.Context, err error) {
	var mpErr *micropub.Error
	switch {
	case errors.As(err, &mpErr):
		c.AbortWithStatusJSON(mpErr.Status(), mpErr.Body())
	case errors.Is(err, mf2.ErrNoSource):
		c.AbortWithStatusJSON(http.StatusNotFound, micropub.ErrorBody{Error: "not_found", ErrorDescription: err.Error()})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, micropub.ErrorBody{Error: "server_error", ErrorDescription: err.Error()})
	}
}
