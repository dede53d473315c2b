package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/serializer"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/service"
)

type CollabHandler struct {
	svc service.CollabService
}

func NewCollabHandler(s service.CollabService) *CollabHandler {
	return &CollabHandler{svc: s}
}

// GetSessions godoc
//
//	@Summary	List collaboration sessions
//	@Tags		collab
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=[]model.CollaborationSession}
//	@Router		/collab/session [get]
func (h *CollabHandler) GetSessions(c *gin.Context) {
	sessions, err := h.svc.ListSessions(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	if sessions == nil {
		sessions = []model.CollaborationSession{}
	}
	c.JSON(http.StatusOK, serializer.Response{Data: sessions})
}

type CreateSessionReq struct {
	Name     string `json:"name" example:"Interview pairing"`
	Code     string `json:"code" example:"console.log('hi')"`
	Language string `json:"language" example:"javascript"`
}

// CreateSession godoc
//
//	@Summary		Create collaboration session
//	@Description	The caller becomes the first member
//	@Tags			collab
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CreateSessionReq	true	"Session"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.CollaborationSession}
//	@Failure		400	{object}	serializer.Response
//	@Router			/collab/session [post]
func (h *CollabHandler) CreateSession(c *gin.Context) {
	u, ok := mustUser(c)
	if !ok {
		return
	}
	req := CreateSessionReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	sess, err := h.svc.CreateSession(c.Request.Context(), service.CreateSessionInput{
		Creator:  u,
		Name:     req.Name,
		Code:     req.Code,
		Language: req.Language,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: sess})
}

// JoinSession godoc
//
//	@Summary	Join collaboration session
//	@Tags		collab
//	@Produce	json
//	@Param		session_id	path	string	true	"Session ID"	format(uuid)
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.CollaborationSession}
//	@Failure	404	{object}	serializer.Response
//	@Router		/collab/session/{session_id}/members [post]
func (h *CollabHandler) JoinSession(c *gin.Context) {
	u, ok := mustUser(c)
	if !ok {
		return
	}
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid session_id", err))
		return
	}

	sess, err := h.svc.JoinSession(c.Request.Context(), sessionID, u)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: sess})
}

type UpdateSessionCodeReq struct {
	Code string `json:"code" example:"const x = 2"`
}

// UpdateSessionCode godoc
//
//	@Summary		Save session code
//	@Description	Overwrites the stored buffer. Concurrent saves are not merged; the last one wins.
//	@Tags			collab
//	@Accept			json
//	@Produce		json
//	@Param			session_id	path	string							true	"Session ID"	format(uuid)
//	@Param			payload		body	handler.UpdateSessionCodeReq	true	"Code"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.CollaborationSession}
//	@Failure		404	{object}	serializer.Response
//	@Router			/collab/session/{session_id}/code [put]
func (h *CollabHandler) UpdateSessionCode(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid session_id", err))
		return
	}
	req := UpdateSessionCodeReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	sess, err := h.svc.UpdateSessionCode(c.Request.Context(), service.UpdateSessionCodeInput{
		SessionID: sessionID,
		Code:      req.Code,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: sess})
}

type CompileCodeReq struct {
	Code     string `json:"code" binding:"required" example:"print(1)"`
	Language string `json:"language" binding:"required" example:"python"`
}

// CompileCode godoc
//
//	@Summary		Compile code
//	@Description	Forwards code to the configured compiler service
//	@Tags			collab
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CompileCodeReq	true	"Code"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=httpclient.CompileResult}
//	@Failure		502	{object}	serializer.Response
//	@Failure		503	{object}	serializer.Response
//	@Router			/collab/compile [post]
func (h *CollabHandler) CompileCode(c *gin.Context) {
	req := CompileCodeReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.CompileCode(c.Request.Context(), service.CompileCodeInput{
		Code:     req.Code,
		Language: req.Language,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}
