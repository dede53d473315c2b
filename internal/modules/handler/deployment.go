package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZIXNRIXZ/Collabhub/internal/modules/serializer"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/service"
)

type DeploymentHandler struct {
	svc service.DeploymentService
}

func NewDeploymentHandler(s service.DeploymentService) *DeploymentHandler {
	return &DeploymentHandler{svc: s}
}

type GetDeploymentLogsReq struct {
	Limit    int    `form:"limit,default=20" json:"limit" binding:"required,min=1,max=200" example:"20"`
	Cursor   string `form:"cursor" json:"cursor"`
	TimeDesc bool   `form:"time_desc,default=true" json:"time_desc" example:"true"`
}

// GetLogs godoc
//
//	@Summary		Deployment history
//	@Description	Deployment logs with cursor-based pagination, newest first by default
//	@Tags			deployment
//	@Produce		json
//	@Param			limit		query	integer	false	"Limit of logs to return, default 20. Max 200."
//	@Param			cursor		query	string	false	"Cursor from the previous page"
//	@Param			time_desc	query	boolean	false	"Order by created_at descending (default true)"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.GetDeploymentLogsOutput}
//	@Router			/deployment/logs [get]
func (h *DeploymentHandler) GetLogs(c *gin.Context) {
	req := GetDeploymentLogsReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.GetLogs(c.Request.Context(), service.GetDeploymentLogsInput{
		Limit:    req.Limit,
		Cursor:   req.Cursor,
		TimeDesc: req.TimeDesc,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// GetStats godoc
//
//	@Summary	Deployment stats
//	@Tags		deployment
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.DeploymentStats}
//	@Router		/deployment/stats [get]
func (h *DeploymentHandler) GetStats(c *gin.Context) {
	stats, err := h.svc.GetStats(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: stats})
}

type TriggerDeploymentReq struct {
	Environment string `json:"environment" binding:"required,oneof=staging production" enums:"staging,production" example:"staging"`
	Branch      string `json:"branch" binding:"required" example:"main"`
}

// TriggerDeployment godoc
//
//	@Summary		Trigger deployment
//	@Description	Appends a deployment log in the building state
//	@Tags			deployment
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.TriggerDeploymentReq	true	"Deployment target"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.DeploymentLog}
//	@Failure		400	{object}	serializer.Response
//	@Router			/deployment [post]
func (h *DeploymentHandler) TriggerDeployment(c *gin.Context) {
	u, ok := mustUser(c)
	if !ok {
		return
	}
	req := TriggerDeploymentReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	uid := u.ID
	l, err := h.svc.Trigger(c.Request.Context(), service.TriggerDeploymentInput{
		UserID:      &uid,
		Environment: req.Environment,
		Branch:      req.Branch,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: l})
}
