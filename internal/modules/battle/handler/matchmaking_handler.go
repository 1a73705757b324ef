package handler

import (
	"github.com/labstack/echo/v4"

	"typeduel-self/internal/middleware"
	"typeduel-self/internal/modules/battle/service"
	"typeduel-self/internal/pkg/response"
)

// MatchmakingHandler 快速匹配 Handler
type MatchmakingHandler struct {
	matchmakingService *service.MatchmakingService
	respWriter         response.Writer
}

// NewMatchmakingHandler 创建匹配 Handler
func NewMatchmakingHandler(serviceContainer *service.ServiceContainer, respWriter response.Writer) *MatchmakingHandler {
	return &MatchmakingHandler{
		matchmakingService: serviceContainer.GetMatchmakingService(),
		respWriter:         respWriter,
	}
}

// QuickMatchRequest HTTP 快速匹配请求
type QuickMatchRequest struct {
	Mode             string `json:"mode" validate:"required,oneof=text code" example:"text"`
	BattleType       string `json:"battle_type" validate:"required,oneof=speed accuracy endurance balanced" example:"balanced"`
	Difficulty       string `json:"difficulty,omitempty" example:"easy"`
	TimeLimitSeconds int    `json:"time_limit_seconds,omitempty" validate:"omitempty,min=15,max=600" example:"60"`
}

// QuickMatch 快速匹配
// @Summary 快速匹配
// @Description 在当前在线用户里按积分就近匹配一个对手并立即开战
// @Tags 匹配
// @Accept json
// @Produce json
// @Param request body QuickMatchRequest true "匹配请求"
// @Success 200 {object} response.Response{data=BattleResponse} "匹配成功"
// @Failure 503 {object} response.Response "当前没有可匹配的对手"
// @Router /battles/quick-match [post]
func (h *MatchmakingHandler) QuickMatch(c echo.Context) error {
	var req QuickMatchRequest
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

	battle, err := h.matchmakingService.QuickMatch(c.Request().Context(), userID, &service.CreateBattleInput{
		Mode:             req.Mode,
		BattleType:       req.BattleType,
		Difficulty:       req.Difficulty,
		TimeLimitSeconds: req.TimeLimitSeconds,
	})
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, toBattleResponse(battle))
}
