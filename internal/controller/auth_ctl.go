package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"techmart/internal/api/dto"
	"techmart/internal/middleware"
	"techmart/internal/model"
	"techmart/internal/service"
)

type AuthController struct {
	authSvc *service.AuthService
	userSvc *service.UserService
}

func NewAuthController(authSvc *service.AuthService, userSvc *service.UserService) *AuthController {
	return &AuthController{authSvc: authSvc, userSvc: userSvc}
}

func toUserResp(u *model.User) dto.UserResp {
	return dto.UserResp{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		MobileNumber: u.MobileNumber,
		ProfileImage: u.ProfileImage,
		Role:         string(u.Role),
		IsEnabled:    u.IsEnabled,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
	}
}

// Login 登录
// @Summary 登录
// @Description 邮箱密码登录，返回 JWT
// @Tags Auth (认证)
// @Accept json
// @Produce json
// @Param request body dto.LoginReq true "登录参数"
// @Success 200 {object} dto.LoginResp "登录成功"
// @Failure 400 {object} map[string]string "参数错误"
// @Failure 401 {object} map[string]string "邮箱或密码错误"
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	user, token, err := c.authSvc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.LoginResp{Token: token, User: toUserResp(user)})
}

// Register 注册
// @Summary 注册
// @Description 注册普通用户账号
// @Tags Auth (认证)
// @Accept json
// @Produce json
// @Param request body dto.RegisterReq true "注册参数"
// @Success 200 {object} dto.LoginResp "注册成功并自动登录"
// @Failure 400 {object} map[string]string "参数错误"
// @Failure 409 {object} map[string]string "邮箱已被注册"
// @Router /api/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	user, err := c.authSvc.Register(ctx.Request.Context(), req.Name, req.Email, req.Password, req.MobileNumber)
	if err != nil {
		writeError(ctx, err)
		return
	}

	token, err := middleware.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, dto.LoginResp{Token: token, User: toUserResp(user)})
}

// Me 当前用户信息
// @Summary 当前用户信息
// @Tags Auth (认证)
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResp
// @Failure 401 {object} map[string]string "未认证"
// @Router /api/auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	claims := middleware.ClaimsFrom(ctx)
	user, err := c.authSvc.GetByID(ctx.Request.Context(), claims.UserID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toUserResp(user))
}

// UpdateProfile 更新个人资料
// @Summary 更新个人资料
// @Tags Auth (认证)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileReq true "资料"
// @Success 200 {object} dto.UserResp
// @Failure 401 {object} map[string]string "未认证"
// @Router /api/auth/me [put]
func (c *AuthController) UpdateProfile(ctx *gin.Context) {
	claims := middleware.ClaimsFrom(ctx)

	var req dto.UpdateProfileReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	user, err := c.userSvc.UpdateProfile(ctx.Request.Context(), claims.UserID, req.Name, req.MobileNumber, req.ProfileImage)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toUserResp(user))
}
