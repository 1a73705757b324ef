package handler

import (
	"github.com/labstack/echo/v4"

	"typeduel-self/internal/entity/battle_runtime"
	"typeduel-self/internal/middleware"
	"typeduel-self/internal/modules/battle/service"
	"typeduel-self/internal/pkg/response"
)

// BattleHandler 对战生命周期 Handler
type BattleHandler struct {
	battleService *service.BattleService
	respWriter    response.Writer
}

// NewBattleHandler 创建对战 Handler
func NewBattleHandler(serviceContainer *service.ServiceContainer, respWriter response.Writer) *BattleHandler {
	return &BattleHandler{
		battleService: serviceContainer.GetBattleService(),
		respWriter:    respWriter,
	}
}

// ==================== HTTP Request/Response Models ====================

// CreateBattleRequest HTTP 创建对战请求
type CreateBattleRequest struct {
	Mode             string `json:"mode" validate:"required,oneof=text code" example:"text"`                              // 内容模式
	BattleType       string `json:"battle_type" validate:"required,oneof=speed accuracy endurance balanced" example:"speed"` // 计分方式
	Difficulty       string `json:"difficulty,omitempty" example:"medium"`                                                 // 可选难度
	TimeLimitSeconds int    `json:"time_limit_seconds,omitempty" validate:"omitempty,min=15,max=600" example:"60"`         // 时限（秒）
	CountdownSeconds int    `json:"countdown_seconds,omitempty" validate:"omitempty,min=0,max=10" example:"3"`             // 开赛倒计时（秒）
}

// ProgressRequest HTTP 进度上报/成绩提交请求
type ProgressRequest struct {
	WPM             float64 `json:"wpm" validate:"min=0" example:"84.5"`                   // 每分钟词数
	Accuracy        float64 `json:"accuracy" validate:"min=0,max=100" example:"96.2"`      // 准确率百分比
	Mistakes        int     `json:"mistakes" validate:"min=0" example:"3"`                 // 失误数
	ProgressPercent float64 `json:"progress_percent" validate:"min=0,max=100" example:"42"` // 完成进度百分比
}

// BattleResponse HTTP 对战响应
type BattleResponse struct {
	ID               string `json:"id"`
	CreatorID        string `json:"creator_id"`
	OpponentID       string `json:"opponent_id,omitempty"`
	Status           string `json:"status"`
	Mode             string `json:"mode"`
	BattleType       string `json:"battle_type"`
	ChallengeID      string `json:"challenge_id"`
	ChallengeBody    string `json:"challenge_body,omitempty"`
	WinnerID         string `json:"winner_id,omitempty"`
	TimeLimitSeconds int    `json:"time_limit_seconds"`
	CountdownSeconds int    `json:"countdown_seconds"`
	RematchOf        string `json:"rematch_of,omitempty"`
	IsAutoMatch      bool   `json:"is_auto_match"`
	CreatedAt        string `json:"created_at"`
	StartedAt        string `json:"started_at,omitempty"`
	FinishedAt       string `json:"finished_at,omitempty"`
}

const timeLayout = "2006-01-02 15:04:05"

func toBattleResponse(b *battle_runtime.Battle) *BattleResponse {
	resp := &BattleResponse{
		ID:               b.ID,
		CreatorID:        b.CreatorID,
		OpponentID:       b.OpponentID.String,
		Status:           b.Status,
		Mode:             b.Mode,
		BattleType:       b.BattleType,
		ChallengeID:      b.ChallengeID,
		ChallengeBody:    b.ChallengeBody,
		WinnerID:         b.WinnerID.String,
		TimeLimitSeconds: b.TimeLimitSeconds,
		CountdownSeconds: b.CountdownSeconds,
		RematchOf:        b.RematchOf.String,
		IsAutoMatch:      b.IsAutoMatch,
		CreatedAt:        b.CreatedAt.Format(timeLayout),
	}
	if b.StartedAt.Valid {
		resp.StartedAt = b.StartedAt.Time.Format(timeLayout)
	}
	if b.FinishedAt.Valid {
		resp.FinishedAt = b.FinishedAt.Time.Format(timeLayout)
	}
	return resp
}

func toBattleListResponse(battles []*battle_runtime.Battle) []*BattleResponse {
	out := make([]*BattleResponse, 0, len(battles))
	for _, b := range battles {
		resp := toBattleResponse(b)
		// 列表里不回传完整内容，详情接口才给
		resp.ChallengeBody = ""
		out = append(out, resp)
	}
	return out
}

// ParticipantResponse HTTP 参与者响应
type ParticipantResponse struct {
	UserID          string   `json:"user_id"`
	WPM             *float64 `json:"wpm,omitempty"`
	Accuracy        *float64 `json:"accuracy,omitempty"`
	Mistakes        int      `json:"mistakes"`
	ProgressPercent float64  `json:"progress_percent"`
	IsFinished      bool     `json:"is_finished"`
	FinishedAt      string   `json:"finished_at,omitempty"`
}

func toParticipantResponse(p *battle_runtime.BattleParticipant) *ParticipantResponse {
	resp := &ParticipantResponse{
		UserID:          p.UserID,
		Mistakes:        p.Mistakes,
		ProgressPercent: p.ProgressPercent,
		IsFinished:      p.IsFinished,
	}
	if p.WPM.Valid {
		wpm := p.WPM.Float64
		resp.WPM = &wpm
	}
	if p.Accuracy.Valid {
		accuracy := p.Accuracy.Float64
		resp.Accuracy = &accuracy
	}
	if p.FinishedAt.Valid {
		resp.FinishedAt = p.FinishedAt.Time.Format(timeLayout)
	}
	return resp
}

// BattleDetailResponse HTTP 对战详情响应
type BattleDetailResponse struct {
	Battle       *BattleResponse        `json:"battle"`
	Participants []*ParticipantResponse `json:"participants"`
	CanJoin      bool                   `json:"can_join"`
	CanPlay      bool                   `json:"can_play"`
}

// ==================== HTTP Handlers ====================

// CreateBattle 创建对战
// @Summary 创建对战
// @Description 创建一场等待对手的对战，创建时固化挑战内容快照
// @Tags 对战
// @Accept json
// @Produce json
// @Param request body CreateBattleRequest true "创建对战请求"
// @Success 200 {object} response.Response{data=BattleResponse} "创建成功"
// @Failure 400 {object} response.Response "请求参数错误"
// @Failure 503 {object} response.Response "没有可用的挑战内容"
// @Router /battles [post]
func (h *BattleHandler) CreateBattle(c echo.Context) error {
	var req CreateBattleRequest
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

	battle, err := h.battleService.Create(c.Request().Context(), userID, &service.CreateBattleInput{
		Mode:             req.Mode,
		BattleType:       req.BattleType,
		Difficulty:       req.Difficulty,
		TimeLimitSeconds: req.TimeLimitSeconds,
		CountdownSeconds: req.CountdownSeconds,
	})
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, toBattleResponse(battle))
}

// ListBattles 对战列表
// @Summary 对战列表
// @Description 开放的等待对手的对战，以及当前用户最近参与的对战
// @Tags 对战
// @Produce json
// @Success 200 {object} response.Response "获取成功"
// @Router /battles [get]
func (h *BattleHandler) ListBattles(c echo.Context) error {
	userID, err := middleware.GetCurrentUserID(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	listing, err := h.battleService.ListOpen(c.Request().Context(), userID, 20)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, map[string]interface{}{
		"open": toBattleListResponse(listing.Open),
		"mine": toBattleListResponse(listing.Mine),
	})
}

// GetBattle 对战详情
// @Summary 对战详情
// @Tags 对战
// @Produce json
// @Param battle_id path string true "对战ID"
// @Success 200 {object} response.Response{data=BattleDetailResponse} "获取成功"
// @Failure 404 {object} response.Response "对战不存在"
// @Router /battles/{battle_id} [get]
func (h *BattleHandler) GetBattle(c echo.Context) error {
	battleID := c.Param("battle_id")
	if battleID == "" {
		return response.EchoBadRequest(c, h.respWriter, "对战ID不能为空")
	}
	userID, err := middleware.GetCurrentUserID(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	detail, err := h.battleService.Get(c.Request().Context(), battleID, userID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	resp := &BattleDetailResponse{
		Battle:       toBattleResponse(detail.Battle),
		Participants: make([]*ParticipantResponse, 0, len(detail.Participants)),
		CanJoin:      detail.CanJoin,
		CanPlay:      detail.CanPlay,
	}
	for _, p := range detail.Participants {
		resp.Participants = append(resp.Participants, toParticipantResponse(p))
	}
	return response.EchoOK(c, h.respWriter, resp)
}

// JoinBattle 加入对战
// @Summary 加入对战
// @Description 加入等待中的对战并立即开始
// @Tags 对战
// @Produce json
// @Param battle_id path string true "对战ID"
// @Success 200 {object} response.Response{data=BattleResponse} "加入成功"
// @Failure 404 {object} response.Response "对战不存在"
// @Failure 409 {object} response.Response "对战不可加入"
// @Router /battles/{battle_id}/join [post]
func (h *BattleHandler) JoinBattle(c echo.Context) error {
	battleID := c.Param("battle_id")
	if battleID == "" {
		return response.EchoBadRequest(c, h.respWriter, "对战ID不能为空")
	}
	userID, err := middleware.GetCurrentUserID(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	battle, err := h.battleService.Join(c.Request().Context(), battleID, userID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, toBattleResponse(battle))
}

// UpdateProgress 进度上报
// @Summary 进度上报
// @Description 进行中对战的实时进度，越界指标会被裁剪
// @Tags 对战
// @Accept json
// @Produce json
// @Param battle_id path string true "对战ID"
// @Param request body ProgressRequest true "进度"
// @Success 200 {object} response.Response "上报成功"
// @Failure 403 {object} response.Response "不是参与者"
// @Failure 409 {object} response.Response "对战未进行中"
// @Router /battles/{battle_id}/progress [post]
func (h *BattleHandler) UpdateProgress(c echo.Context) error {
	battleID := c.Param("battle_id")
	var req ProgressRequest
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

	if err := h.battleService.UpdateProgress(c.Request().Context(), battleID, userID, &service.ProgressInput{
		WPM:             req.WPM,
		Accuracy:        req.Accuracy,
		Mistakes:        req.Mistakes,
		ProgressPercent: req.ProgressPercent,
	}); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, map[string]interface{}{"accepted": true})
}

// SubmitResult 提交最终成绩
// @Summary 提交最终成绩
// @Description 提交本方最终成绩；双方都提交后对战结束并结算积分
// @Tags 对战
// @Accept json
// @Produce json
// @Param battle_id path string true "对战ID"
// @Param request body ProgressRequest true "最终成绩"
// @Success 200 {object} response.Response{data=service.SubmitResultOutput} "提交成功"
// @Failure 409 {object} response.Response "成绩已提交"
// @Router /battles/{battle_id}/result [post]
func (h *BattleHandler) SubmitResult(c echo.Context) error {
	battleID := c.Param("battle_id")
	var req ProgressRequest
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

	result, err := h.battleService.SubmitResult(c.Request().Context(), battleID, userID, &service.ProgressInput{
		WPM:             req.WPM,
		Accuracy:        req.Accuracy,
		Mistakes:        req.Mistakes,
		ProgressPercent: req.ProgressPercent,
	})
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, result)
}

// OpponentProgress 对手进度
// @Summary 对手进度
// @Description 对手实时进度；准确率在对手完赛前默认不下发
// @Tags 对战
// @Produce json
// @Param battle_id path string true "对战ID"
// @Success 200 {object} response.Response{data=service.OpponentProgress} "获取成功"
// @Failure 403 {object} response.Response "不是参与者"
// @Router /battles/{battle_id}/opponent-progress [get]
func (h *BattleHandler) OpponentProgress(c echo.Context) error {
	battleID := c.Param("battle_id")
	userID, err := middleware.GetCurrentUserID(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	progress, err := h.battleService.GetOpponentProgress(c.Request().Context(), battleID, userID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, progress)
}

// Rematch 再来一局
// @Summary 再来一局
// @Description 基于已结束的对战创建一局新对战，双方直接进入进行中
// @Tags 对战
// @Produce json
// @Param battle_id path string true "原对战ID"
// @Success 200 {object} response.Response{data=BattleResponse} "创建成功"
// @Failure 409 {object} response.Response "原对战尚未结束"
// @Router /battles/{battle_id}/rematch [post]
func (h *BattleHandler) Rematch(c echo.Context) error {
	battleID := c.Param("battle_id")
	userID, err := middleware.GetCurrentUserID(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	battle, err := h.battleService.Rematch(c.Request().Context(), battleID, userID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, toBattleResponse(battle))
}

// CancelBattle 取消对战
// @Summary 取消对战
// @Description 创建者取消还没有对手加入的对战
// @Tags 对战
// @Produce json
// @Param battle_id path string true "对战ID"
// @Success 200 {object} response.Response "取消成功"
// @Failure 409 {object} response.Response "对战已开始"
// @Router /battles/{battle_id} [delete]
func (h *BattleHandler) CancelBattle(c echo.Context) error {
	battleID := c.Param("battle_id")
	userID, err := middleware.GetCurrentUserID(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	if err := h.battleService.Cancel(c.Request().Context(), battleID, userID); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, map[string]interface{}{"cancelled": true})
}
