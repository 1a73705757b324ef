package handler

import (
	"github.com/labstack/echo/v4"

	"typeduel-self/internal/entity/battle_runtime"
	"typeduel-self/internal/middleware"
	"typeduel-self/internal/modules/battle/service"
	"typeduel-self/internal/pkg/response"
)

// InvitationHandler 对战邀请 Handler
type InvitationHandler struct {
	invitationService *service.InvitationService
	respWriter        response.Writer
}

// NewInvitationHandler 创建邀请 Handler
func NewInvitationHandler(serviceContainer *service.ServiceContainer, respWriter response.Writer) *InvitationHandler {
	return &InvitationHandler{
		invitationService: serviceContainer.GetInvitationService(),
		respWriter:        respWriter,
	}
}

// CreateInvitationRequest HTTP 发起邀请请求
type CreateInvitationRequest struct {
	ToUserID         string `json:"to_user_id" validate:"required" example:"user-uuid-002"`
	Mode             string `json:"mode" validate:"required,oneof=text code" example:"text"`
	BattleType       string `json:"battle_type" validate:"required,oneof=speed accuracy endurance balanced" example:"speed"`
	TimeLimitSeconds int    `json:"time_limit_seconds,omitempty" validate:"omitempty,min=15,max=600" example:"60"`
}

// RespondInvitationRequest HTTP 响应邀请请求
type RespondInvitationRequest struct {
	Action string `json:"action" validate:"required,oneof=accept reject" example:"accept"`
}

// InvitationResponse HTTP 邀请响应
type InvitationResponse struct {
	ID               string `json:"id"`
	FromUserID       string `json:"from_user_id"`
	ToUserID         string `json:"to_user_id"`
	BattleID         string `json:"battle_id,omitempty"`
	Status           string `json:"status"`
	BattleMode       string `json:"battle_mode"`
	BattleType       string `json:"battle_type"`
	TimeLimitSeconds int    `json:"time_limit_seconds"`
	CreatedAt        string `json:"created_at"`
	ExpiresAt        string `json:"expires_at"`
}

func toInvitationResponse(inv *battle_runtime.BattleInvitation) *InvitationResponse {
	return &InvitationResponse{
		ID:               inv.ID,
		FromUserID:       inv.FromUserID,
		ToUserID:         inv.ToUserID,
		BattleID:         inv.BattleID.String,
		Status:           inv.Status,
		BattleMode:       inv.BattleMode,
		BattleType:       inv.BattleType,
		TimeLimitSeconds: inv.TimeLimitSeconds,
		CreatedAt:        inv.CreatedAt.Format(timeLayout),
		ExpiresAt:        inv.ExpiresAt.Format(timeLayout),
	}
}

func toInvitationListResponse(invitations []*battle_runtime.BattleInvitation) []*InvitationResponse {
	out := make([]*InvitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		out = append(out, toInvitationResponse(inv))
	}
	return out
}

// CreateInvitation 发起邀请
// @Summary 发起对战邀请
// @Description 向指定用户发起限时 5 分钟的对战邀请
// @Tags 邀请
// @Accept json
// @Produce json
// @Param request body CreateInvitationRequest true "邀请请求"
// @Success 200 {object} response.Response{data=InvitationResponse} "发起成功"
// @Failure 409 {object} response.Response "不能邀请自己"
// @Router /battles/invitations [post]
func (h *InvitationHandler) CreateInvitation(c echo.Context) error {
	var req CreateInvitationRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}
	if err := c.Validate(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, err.Error())
	}
	userID, err := middleware.GetCurrentUserID(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	invitation, err := h.invitationService.Invite(c.Request().Context(), userID, req.ToUserID, &service.InviteInput{
		Mode:             req.Mode,
		BattleType:       req.BattleType,
		TimeLimitSeconds: req.TimeLimitSeconds,
	})
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, toInvitationResponse(invitation))
}

// ListInvitations 邀请列表
// @Summary 邀请列表
// @Description 当前用户收到和发出的待响应邀请
// @Tags 邀请
// @Produce json
// @Success 200 {object} response.Response "获取成功"
// @Router /battles/invitations [get]
func (h *InvitationHandler) ListInvitations(c echo.Context) error {
	userID, err := middleware.GetCurrentUserID(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	ctx := c.Request().Context()

	incoming, err := h.invitationService.ListIncoming(ctx, userID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	outgoing, err := h.invitationService.ListOutgoing(ctx, userID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, map[string]interface{}{
		"incoming": toInvitationListResponse(incoming),
		"outgoing": toInvitationListResponse(outgoing),
	})
}

// RespondInvitation 响应邀请
// @Summary 响应对战邀请
// @Description 接受或拒绝邀请；接受时直接创建并开始对战
// @Tags 邀请
// @Accept json
// @Produce json
// @Param invitation_id path string true "邀请ID"
// @Param request body RespondInvitationRequest true "响应动作"
// @Success 200 {object} response.Response "响应成功"
// @Failure 403 {object} response.Response "不是接收者"
// @Failure 409 {object} response.Response "邀请已过期或已处理"
// @Router /battles/invitations/{invitation_id}/respond [post]
func (h *InvitationHandler) RespondInvitation(c echo.Context) error {
	invitationID := c.Param("invitation_id")
	if invitationID == "" {
		return response.EchoBadRequest(c, h.respWriter, "邀请ID不能为空")
	}
	var req RespondInvitationRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}
	if err := c.Validate(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, err.Error())
	}
	userID, err := middleware.GetCurrentUserID(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	battle, err := h.invitationService.Respond(c.Request().Context(), invitationID, userID, req.Action == "accept")
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	if battle == nil {
		return response.EchoOK(c, h.respWriter, map[string]interface{}{"status": battle_runtime.InvitationStatusRejected})
	}
	return response.EchoOK(c, h.respWriter, map[string]interface{}{
		"status": battle_runtime.InvitationStatusAccepted,
		"battle": toBattleResponse(battle),
	})
}
