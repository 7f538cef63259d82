package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/neolearn/neolearn/core"
	"github.com/neolearn/neolearn/core/session"
	"github.com/neolearn/neolearn/core/topic"
)

type chatApi struct {
	chat     *session.Controller
	validate *validator.Validate
}

func registerChatAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := chatApi{
		chat:     deps.Chat,
		validate: deps.Validate,
	}

	cg := g.Group("/chat", jwt)
	cg.POST("/open", api.open)
	cg.GET("", api.current)
	cg.POST("/messages", api.send)
	cg.POST("/reset", api.reset)
}

// Handlers

func (api *chatApi) open(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data OpenChatRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to OpenChatRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	snap, err := api.chat.Open(ctx.Request().Context(), claims.Username, data.Topic)
	if err != nil {
		if errors.Cause(err) == topic.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "opening conversation")
	}
	return ctx.JSON(http.StatusOK, snap)
}

// current returns the conversation render state; a pending celebration is
// consumed by this read.
func (api *chatApi) current(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	snap, err := api.chat.Current(claims.Username)
	if err != nil {
		if errors.Cause(err) == session.ErrNoConversation {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting conversation")
	}
	return ctx.JSON(http.StatusOK, snap)
}

func (api *chatApi) send(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data SendMessageRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SendMessageRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	reply, err := api.chat.Send(ctx.Request().Context(), claims.Username, data.Message)
	if err != nil {
		if errors.Cause(err) == session.ErrNoConversation {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, reply)
}

func (api *chatApi) reset(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.chat.Reset(claims.Username); err != nil {
		if errors.Cause(err) == session.ErrNoConversation {
			return errHttpNotFound
		}
		return errors.Wrap(err, "resetting conversation")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	OpenChatRequest struct {
		Topic string `json:"topic" validate:"required"`
	}

	SendMessageRequest struct {
		Message string `json:"message" validate:"required"`
	}
)

func (r *OpenChatRequest) Validate(validate *validator.Validate) error {
	r.Topic = core.CleanString(r.Topic)
	return validate.Struct(r)
}

func (r *SendMessageRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}
