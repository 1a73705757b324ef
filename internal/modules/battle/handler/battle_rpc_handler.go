package handler

import (
	"context"
	"encoding/json"

	"typeduel-self/internal/modules/battle/service"
	"typeduel-self/internal/pkg/xerrors"
)

// BattleRPCHandler 对战 RPC 处理器
// 提供给兄弟服务器（管理端、社交端）调用的对战查询接口，载荷为 JSON
type BattleRPCHandler struct {
	battleService *service.BattleService
	ratingService *service.RatingService
}

// NewBattleRPCHandler 创建对战 RPC Handler
func NewBattleRPCHandler(serviceContainer *service.ServiceContainer) *BattleRPCHandler {
	return &BattleRPCHandler{
		battleService: serviceContainer.GetBattleService(),
		ratingService: serviceContainer.GetRatingService(),
	}
}

// ==================== RPC Methods ====================

// GetBattleDetailRequest 对战详情查询请求
type GetBattleDetailRequest struct {
	BattleID string `json:"battle_id"`
	ViewerID string `json:"viewer_id,omitempty"`
}

// GetBattleDetailResponse 对战详情查询响应
type GetBattleDetailResponse struct {
	Battle       *BattleResponse        `json:"battle"`
	Participants []*ParticipantResponse `json:"participants"`
}

// GetBattleDetail 获取对战详情
// 供管理端查询对战信息，包含双方参与者的完整指标
func (h *BattleRPCHandler) GetBattleDetail(data []byte) ([]byte, error) {
	req := &GetBattleDetailRequest{}
	if err := json.Unmarshal(data, req); err != nil {
		return nil, xerrors.NewInvalidArgumentError("request", "invalid json data")
	}
	if req.BattleID == "" {
		return nil, xerrors.NewInvalidArgumentError("battle_id", "battle_id is required")
	}

	ctx := context.Background()

	detail, err := h.battleService.Get(ctx, req.BattleID, req.ViewerID)
	if err != nil {
		return nil, err
	}

	participants := make([]*ParticipantResponse, len(detail.Participants))
	for i, p := range detail.Participants {
		participants[i] = toParticipantResponse(p)
	}

	resp := &GetBattleDetailResponse{
		Battle:       toBattleResponse(detail.Battle),
		Participants: participants,
	}

	return json.Marshal(resp)
}

// GetUserRatingRequest 用户积分查询请求
type GetUserRatingRequest struct {
	UserID string `json:"user_id"`
}

// GetUserRating 获取用户积分与战绩
// 从未对战过的用户返回默认初始积分
func (h *BattleRPCHandler) GetUserRating(data []byte) ([]byte, error) {
	req := &GetUserRatingRequest{}
	if err := json.Unmarshal(data, req); err != nil {
		return nil, xerrors.NewInvalidArgumentError("request", "invalid json data")
	}
	if req.UserID == "" {
		return nil, xerrors.NewInvalidArgumentError("user_id", "user_id is required")
	}

	ctx := context.Background()

	rating, err := h.ratingService.GetUserRating(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	return json.Marshal(toRatingResponse(rating))
}
