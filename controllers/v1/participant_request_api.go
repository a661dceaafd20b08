package apiv1

import (
	"docflow-backend/controllers"
	xlsexport "docflow-backend/lib/export/xls"
	participantrequesthandler "docflow-backend/lib/participant-request"
	"docflow-backend/middleware"
	apimodels "docflow-backend/models/api"
	votingapimodels "docflow-backend/models/api/voting"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

type participantRequestApiController struct {
	controllers.BaseAPIController
}

func InitParticipantRequestApiRouters(app *fiber.App) {
	controller := participantRequestApiController{}
	app.Route("participant_request", func(router fiber.Router) {
		router.Post("sign_request", controller.signRequest)
		router.Post("list", controller.list)
		router.Get("export", controller.export)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Put("sign", controller.sign)
			idRoute.Put("reject", controller.reject)
			idRoute.Get("history", controller.history)
		})
	})
}

// @Summary Запрос подписи
// @Tags Запросы участников
// @Description Разовый запрос подписи версии документа вне голосования
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 votingapimodels.SignRequestData	true	"request body"
// @Success 200 {object} apimodels.Response{data=votingapimodels.ParticipantRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/participant_request/sign_request [post]
func (c *participantRequestApiController) signRequest(ctx *fiber.Ctx) error {
	var payload votingapimodels.SignRequestData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := participantrequesthandler.Instance.RequestSignature(payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка создания запроса подписи")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Мои запросы
// @Tags Запросы участников
// @Description Запросы текущего пользователя, фильтр по статусам необязателен
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 votingapimodels.RequestFilter	true	"request body"
// @Success 200 {object} apimodels.Response{data=[]votingapimodels.ParticipantRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/participant_request/list [post]
func (c *participantRequestApiController) list(ctx *fiber.Ctx) error {
	var payload votingapimodels.RequestFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	list, err := participantrequesthandler.Instance.ListByUser(middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка запросов")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Выгрузка запросов в Excel
// @Tags Запросы участников
// @Description Все запросы текущего пользователя
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/participant_request/export [get]
func (c *participantRequestApiController) export(ctx *fiber.Ctx) error {
	list, err := participantrequesthandler.Instance.ListByUser(middleware.GetUserID(ctx), votingapimodels.RequestFilter{})
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка запросов")
	}
	data, err := xlsexport.Instance.ExportRequests(list)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка выгрузки запросов в Excel")
	}
	fileName := fmt.Sprintf("requests-%v.xlsx", time.Now().Format("20060102-150405"))
	ctx.Set("Content-Type", "application/vnd.ms-excel")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.SendStream(data)
}

// @Summary Подписать
// @Tags Запросы участников
// @Description Подписание по разовому запросу
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "request ID"
// @Success 200 {object} apimodels.Response{data=votingapimodels.SignatureView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/participant_request/{id}/sign [put]
func (c *participantRequestApiController) sign(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	sign, err := participantrequesthandler.Instance.Sign(id, middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка подписания")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(sign))
}

// @Summary Отказ в подписи
// @Tags Запросы участников
// @Description Отказ по разовому запросу, комментарий обязателен
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "request ID"
// @Param	body body	 votingapimodels.RejectData	true	"request body"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/participant_request/{id}/reject [put]
func (c *participantRequestApiController) reject(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload votingapimodels.RejectData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = participantrequesthandler.Instance.Reject(id, middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка отказа в подписи")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary История запроса
// @Tags Запросы участников
// @Description Журнал изменений статуса запроса
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "request ID"
// @Success 200 {object} apimodels.Response{data=[]votingapimodels.RequestHistoryView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/participant_request/{id}/history [get]
func (c *participantRequestApiController) history(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	list, err := participantrequesthandler.Instance.History(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения истории запроса")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}
