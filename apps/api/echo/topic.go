package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/neolearn/neolearn/core"
	"github.com/neolearn/neolearn/core/progress"
	"github.com/neolearn/neolearn/core/topic"
)

type topicApi struct {
	svc         topic.ServiceInterface
	progressSvc progress.ServiceInterface
	validate    *validator.Validate
}

func registerTopicAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := topicApi{
		svc:         deps.TopicSvc,
		progressSvc: deps.ProgressSvc,
		validate:    deps.Validate,
	}

	tg := g.Group("/topics", jwt)
	tg.GET("", api.query)
	tg.POST("", api.create, adminMiddleware())
	tg.DELETE("/:title", api.destroy, adminMiddleware())
}

// Handlers

// query lists the catalog; each topic is annotated with the caller's passed
// status. Prompts stay server-side.
func (api *topicApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	reqCtx := ctx.Request().Context()
	topics, err := api.svc.List(reqCtx)
	if err != nil {
		return errors.Wrap(err, "querying topics")
	}

	res := make([]TopicResponse, 0, len(topics))
	for _, t := range topics {
		passed, err := api.progressSvc.HasPassed(reqCtx, claims.Username, t.Title)
		if err != nil {
			return errors.Wrap(err, "checking passed status")
		}
		res = append(res, TopicResponse{Title: t.Title, Passed: passed})
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *topicApi) create(ctx echo.Context) error {
	var data topic.NewTopic
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTopic")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	t, err := api.svc.Add(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == topic.ErrTitleExists {
			return core.NewValidationError(err, core.FieldError{Field: "title", Error: err.Error()})
		}
		return errors.Wrap(err, "creating topic")
	}

	return ctx.JSON(http.StatusCreated, t)
}

// destroy removes a topic; deleting an unknown title still returns 204.
func (api *topicApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("title")); err != nil {
		return errors.Wrap(err, "deleting topic")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type TopicResponse struct {
	Title  string `json:"title"`
	Passed bool   `json:"passed"`
}
