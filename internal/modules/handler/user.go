package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZIXNRIXZ/Collabhub/internal/modules/serializer"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/service"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{svc: s}
}

// GetMe godoc
//
//	@Summary	Current user
//	@Tags		user
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.User}
//	@Router		/user/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	u, ok := mustUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: u})
}

type UpdateProfileReq struct {
	Name      *string `json:"name" example:"Ada"`
	AvatarURL *string `json:"avatar_url" example:"https://example.com/ada.png"`
}

// UpdateMe godoc
//
//	@Summary	Update profile
//	@Tags		user
//	@Accept		json
//	@Produce	json
//	@Param		payload	body	handler.UpdateProfileReq	true	"Profile fields to change"
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.User}
//	@Failure	400	{object}	serializer.Response
//	@Router		/user/me [patch]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	u, ok := mustUser(c)
	if !ok {
		return
	}
	req := UpdateProfileReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.UpdateProfile(c.Request.Context(), service.UpdateProfileInput{
		UserID:    u.ID,
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}
