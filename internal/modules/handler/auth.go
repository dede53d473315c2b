package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZIXNRIXZ/Collabhub/internal/modules/serializer"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/service"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{svc: s}
}

type RegisterReq struct {
	Email    string `json:"email" binding:"required" example:"ada@example.com"`
	Password string `json:"password" binding:"required" example:"correct-horse-battery"`
	Name     string `json:"name" example:"Ada Lovelace"`
}

// Register godoc
//
//	@Summary		Register
//	@Description	Create an account and return a bearer token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.RegisterReq	true	"Register payload"
//	@Success		201		{object}	serializer.Response{data=service.AuthOutput}
//	@Failure		400		{object}	serializer.Response
//	@Failure		409		{object}	serializer.Response
//	@Router			/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	req := RegisterReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: out})
}

type LoginReq struct {
	Email    string `json:"email" binding:"required" example:"ada@example.com"`
	Password string `json:"password" binding:"required" example:"correct-horse-battery"`
}

// Login godoc
//
//	@Summary		Login
//	@Description	Exchange email and password for a bearer token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.LoginReq	true	"Login payload"
//	@Success		200		{object}	serializer.Response{data=service.AuthOutput}
//	@Failure		401		{object}	serializer.Response
//	@Router			/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	req := LoginReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}
