package handler

import (
	"github.com/labstack/echo/v4"

	"typeduel-self/internal/entity/battle_runtime"
	"typeduel-self/internal/middleware"
	"typeduel-self/internal/modules/battle/service"
	"typeduel-self/internal/pkg/response"
)

// RatingHandler 对战积分 Handler
type RatingHandler struct {
	ratingService *service.RatingService
	respWriter    response.Writer
}

// NewRatingHandler 创建积分 Handler
func NewRatingHandler(serviceContainer *service.ServiceContainer, respWriter response.Writer) *RatingHandler {
	return &RatingHandler{
		ratingService: serviceContainer.GetRatingService(),
		respWriter:    respWriter,
	}
}

// RatingResponse HTTP 积分响应
type RatingResponse struct {
	UserID        string  `json:"user_id"`
	Rating        int     `json:"rating"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Draws         int     `json:"draws"`
	TotalBattles  int     `json:"total_battles"`
	WinStreak     int     `json:"win_streak"`
	BestWinStreak int     `json:"best_win_streak"`
	WinRate       float64 `json:"win_rate"`
}

func toRatingResponse(r *battle_runtime.BattleRating) *RatingResponse {
	return &RatingResponse{
		UserID:        r.UserID,
		Rating:        r.Rating,
		Wins:          r.Wins,
		Losses:        r.Losses,
		Draws:         r.Draws,
		TotalBattles:  r.TotalBattles,
		WinStreak:     r.WinStreak,
		BestWinStreak: r.BestWinStreak,
		WinRate:       r.WinRate(),
	}
}

// GetMyRating 我的积分
// @Summary 我的积分
// @Description 当前用户的积分与战绩，没有记录时返回默认初始值
// @Tags 积分
// @Produce json
// @Success 200 {object} response.Response{data=RatingResponse} "获取成功"
// @Router /battles/ratings/me [get]
func (h *RatingHandler) GetMyRating(c echo.Context) error {
	userID, err := middleware.GetCurrentUserID(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	rating, err := h.ratingService.GetUserRating(c.Request().Context(), userID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, toRatingResponse(rating))
}

// GetUserRating 指定用户积分
// @Summary 指定用户积分
// @Tags 积分
// @Produce json
// @Param user_id path string true "用户ID"
// @Success 200 {object} response.Response{data=RatingResponse} "获取成功"
// @Router /battles/ratings/{user_id} [get]
func (h *RatingHandler) GetUserRating(c echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return response.EchoBadRequest(c, h.respWriter, "用户ID不能为空")
	}

	rating, err := h.ratingService.GetUserRating(c.Request().Context(), userID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, toRatingResponse(rating))
}
