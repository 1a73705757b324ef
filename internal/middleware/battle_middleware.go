package middleware

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"typeduel-self/internal/pkg/ctxkey"
	"typeduel-self/internal/pkg/log"
	"typeduel-self/internal/pkg/response"
	"typeduel-self/internal/pkg/xerrors"
)

// BattleMiddleware 对战上下文中间件 - 校验当前用户是路径参数 :battle_id 对战的参与者
// 这个中间件应该在 AuthMiddleware 之后使用，因为需要 user_id
//
// 工作流程：
// 1. 从 context 获取 user_id（由 AuthMiddleware 设置）
// 2. 查询 battles 表确认该用户是创建者或应战者
// 3. 将 battle_id 设置到 context 供后续 handler 使用
//
// 使用场景：
// - 进度上报、结果提交、取消等只有参与者才能调用的 API
// - 不应用在创建对战、开放列表等不依赖参与关系的 API
func BattleMiddleware(db *sql.DB, respWriter response.Writer, logger log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			// 1. 获取 user_id（由 AuthMiddleware 设置）
			userID := ctxkey.GetString(ctx, ctxkey.UserID)
			if userID == "" {
				logger.WarnContext(ctx, "BattleMiddleware: 未找到 user_id，请确保 AuthMiddleware 在之前执行")
				err := xerrors.New(
					xerrors.CodeAuthenticationFailed,
					"未找到用户信息",
				).WithService("middleware", "battle")
				return respWriter.WriteError(ctx, c.Response().Writer, err)
			}

			battleID := c.Param("battle_id")
			if battleID == "" {
				err := xerrors.NewValidationError("battle_id", "缺少对战ID").
					WithService("middleware", "battle")
				return respWriter.WriteError(ctx, c.Response().Writer, err)
			}

			// 2. 校验参与关系
			var creatorID string
			var opponentID sql.NullString
			err := db.QueryRowContext(ctx,
				`SELECT creator_id, opponent_id
				 FROM battle_runtime.battles
				 WHERE id = $1`,
				battleID,
			).Scan(&creatorID, &opponentID)

			if err != nil {
				if err == sql.ErrNoRows {
					logger.WarnContext(ctx, "对战不存在", log.String("battle_id", battleID))
					return respWriter.WriteError(ctx, c.Response().Writer,
						xerrors.NewBattleNotFoundError(battleID).WithService("middleware", "battle"))
				}

				logger.Error("查询对战失败", err, log.String("battle_id", battleID))
				appErr := xerrors.Wrap(err, xerrors.CodeDatabaseError, "查询对战失败").
					WithService("middleware", "battle")
				return respWriter.WriteError(ctx, c.Response().Writer, appErr)
			}

			if userID != creatorID && (!opponentID.Valid || userID != opponentID.String) {
				logger.WarnContext(ctx, "用户不是对战参与者",
					log.String("user_id", userID),
					log.String("battle_id", battleID),
				)
				return respWriter.WriteError(ctx, c.Response().Writer,
					xerrors.NewNotParticipantError(battleID, userID).WithService("middleware", "battle"))
			}

			// 3. 设置 battle_id 到 context
			ctx = ctxkey.WithValue(ctx, ctxkey.BattleID, battleID)
			c.SetRequest(c.Request().WithContext(ctx))

			// 也设置到 Echo Context，便于直接访问
			c.Set(string(ctxkey.BattleID), battleID)

			logger.DebugContext(ctx,
				"对战上下文设置成功",
				log.String("user_id", userID),
				log.String("battle_id", battleID),
			)

			return next(c)
		}
	}
}

// GetCurrentBattleID 从 Echo Context 中获取当前对战 ID（快捷方法）
func GetCurrentBattleID(c echo.Context) (string, error) {
	battleID := c.Get(string(ctxkey.BattleID))
	if battleID == nil {
		return "", xerrors.New(
			xerrors.CodeBattleNotFound,
			"未找到当前对战信息",
		)
	}

	battleIDStr, ok := battleID.(string)
	if !ok {
		return "", xerrors.New(
			xerrors.CodeInternalError,
			"对战信息类型错误",
		)
	}

	return battleIDStr, nil
}
