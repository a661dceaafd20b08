package apiv1

import (
	"bytes"
	"docflow-backend/config"
	"docflow-backend/controllers"
	pdfexport "docflow-backend/lib/export/pdf"
	xlsexport "docflow-backend/lib/export/xls"
	votinghandler "docflow-backend/lib/voting"
	"docflow-backend/middleware"
	apimodels "docflow-backend/models/api"
	votingapimodels "docflow-backend/models/api/voting"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type votingApiController struct {
	controllers.BaseAPIController
}

func InitVotingApiRouters(app *fiber.App) {
	controller := votingApiController{}
	app.Route("voting", func(router fiber.Router) {
		router.Post("", controller.start)
		router.Post("list", controller.list)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Put("vote", controller.vote)
			idRoute.Put("complete", middleware.AdminRequired(), controller.complete) // досрочное завершение
			idRoute.Get("export", controller.export)
			idRoute.Get("protocol", controller.protocol)
		})
	})
}

// @Summary Запуск голосования
// @Tags Голосование
// @Description Создает запросы участникам и планирует завершение по сроку
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 votingapimodels.StartVotingData	true	"request body"
// @Success 200 {object} apimodels.Response{data=votingapimodels.VotingView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @Failure 503 {object} apimodels.Response
// @router /api/v1/voting [post]
func (c *votingApiController) start(ctx *fiber.Ctx) error {
	var payload votingapimodels.StartVotingData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	userID := middleware.GetUserID(ctx)
	view, err := votinghandler.Instance.StartVoting(ctx.UserContext(), userID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка запуска голосования")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Список голосований по статусу
// @Tags Голосование
// @Description Список голосований по статусу
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 votingapimodels.VotingFilter	true	"request body"
// @Success 200 {object} apimodels.Response{data=[]votingapimodels.VotingView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/voting/list [post]
func (c *votingApiController) list(ctx *fiber.Ctx) error {
	var payload votingapimodels.VotingFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	list, err := votinghandler.Instance.ListVotingsByStatus(payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка голосований")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Голосование
// @Tags Голосование
// @Description Голосование с запросами участников
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "voting ID"
// @Success 200 {object} apimodels.Response{data=votingapimodels.VotingView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/voting/{id} [get]
func (c *votingApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := votinghandler.Instance.GetVoting(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения голосования")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Голос участника
// @Tags Голосование
// @Description Голос текущего пользователя: FOR/AGAINST
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "voting ID"
// @Param	body body	 votingapimodels.CastVoteData	true	"request body"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/voting/{id}/vote [put]
func (c *votingApiController) vote(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload votingapimodels.CastVoteData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = votinghandler.Instance.CastVote(id, middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка голосования")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Досрочное завершение
// @Tags Голосование
// @Description Завершение голосования администратором, повторный вызов ничего не меняет
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "voting ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/voting/{id}/complete [put]
func (c *votingApiController) complete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = votinghandler.Instance.CompleteVoting(ctx.UserContext(), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка завершения голосования")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Выгрузка результатов в Excel
// @Tags Голосование
// @Description Выгрузка результатов в Excel
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "voting ID"
// @Success 200
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/voting/{id}/export [get]
func (c *votingApiController) export(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := votinghandler.Instance.GetVoting(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения голосования")
	}
	data, err := xlsexport.Instance.ExportVoting(view)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка выгрузки голосования в Excel")
	}
	fileName := fmt.Sprintf("voting-%v.xlsx", id)
	ctx.Set("Content-Type", "application/vnd.ms-excel")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.SendStream(data)
}

// @Summary Протокол голосования
// @Tags Голосование
// @Description Протокол голосования в pdf
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "voting ID"
// @Success 200
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/voting/{id}/protocol [get]
func (c *votingApiController) protocol(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := votinghandler.Instance.GetVoting(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения голосования")
	}
	body, err := pdfexport.GenerateVotingProtocol(config.Conf.Export.FontDir, view)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка формирования протокола голосования")
	}
	fileName := fmt.Sprintf("voting-%v.pdf", id)
	ctx.Set("Content-Type", "application/pdf")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.SendStream(bytes.NewReader(body))
}
