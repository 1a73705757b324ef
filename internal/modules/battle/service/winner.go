// File: internal/modules/battle/service/winner.go
package service

import (
	"typeduel-self/internal/entity/battle_runtime"
	"typeduel-self/internal/pkg/xerrors"
)

// BattleType 对战计分方式，闭集
type BattleType string

const (
	BattleTypeSpeed     BattleType = "speed"
	BattleTypeAccuracy  BattleType = "accuracy"
	BattleTypeEndurance BattleType = "endurance"
	BattleTypeBalanced  BattleType = "balanced"
)

// IsValid 检查计分方式是否在闭集内
func (t BattleType) IsValid() bool {
	_, ok := resolvers[t]
	return ok
}

// Outcome 对战裁决结果
// 零值（OutcomePending）表示尚不可裁决，绝不与"平局"混用
type Outcome int

const (
	OutcomePending Outcome = iota // 有参与者未完赛，不可裁决
	OutcomeDraw
	OutcomeCreator
	OutcomeOpponent
)

// String 返回裁决结果的字符串表示
func (o Outcome) String() string {
	switch o {
	case OutcomeDraw:
		return "draw"
	case OutcomeCreator:
		return "creator"
	case OutcomeOpponent:
		return "opponent"
	default:
		return "pending"
	}
}

// IsDecided 是否已产生终局裁决（胜负或平局）
func (o Outcome) IsDecided() bool {
	return o != OutcomePending
}

// metricPair 按 creator/opponent 顺序取出的一组可比指标
type metricPair struct {
	creator, opponent float64
}

// pick 值大者胜。less=true 时反转为值小者胜（如失误数）
func (m metricPair) pick(less bool) Outcome {
	a, b := m.creator, m.opponent
	if less {
		a, b = b, a
	}
	switch {
	case a > b:
		return OutcomeCreator
	case b > a:
		return OutcomeOpponent
	default:
		return OutcomePending // 本级打平，交给下一级决胜
	}
}

// resolverFunc 单个计分方式的裁决链
type resolverFunc func(creator, opponent *battle_runtime.BattleParticipant) Outcome

// resolvers 计分方式 -> 裁决链。新增计分方式只改这张表
var resolvers = map[BattleType]resolverFunc{
	// 速度赛: WPM 高者胜，平则准确率决胜
	BattleTypeSpeed: func(c, o *battle_runtime.BattleParticipant) Outcome {
		if out := wpmPair(c, o).pick(false); out.IsDecided() {
			return out
		}
		if out := accuracyPair(c, o).pick(false); out.IsDecided() {
			return out
		}
		return OutcomeDraw
	},
	// 准确赛: 准确率高者胜，平则 WPM 决胜
	BattleTypeAccuracy: func(c, o *battle_runtime.BattleParticipant) Outcome {
		if out := accuracyPair(c, o).pick(false); out.IsDecided() {
			return out
		}
		if out := wpmPair(c, o).pick(false); out.IsDecided() {
			return out
		}
		return OutcomeDraw
	},
	// 耐力赛: 失误少者胜，平则 WPM 决胜
	BattleTypeEndurance: func(c, o *battle_runtime.BattleParticipant) Outcome {
		if out := mistakesPair(c, o).pick(true); out.IsDecided() {
			return out
		}
		if out := wpmPair(c, o).pick(false); out.IsDecided() {
			return out
		}
		return OutcomeDraw
	},
	// 综合赛: wpm * (accuracy / 100) 高者胜，平即平局
	BattleTypeBalanced: func(c, o *battle_runtime.BattleParticipant) Outcome {
		if out := compositePair(c, o).pick(false); out.IsDecided() {
			return out
		}
		return OutcomeDraw
	},
}

func wpmPair(c, o *battle_runtime.BattleParticipant) metricPair {
	return metricPair{creator: c.WPM.Float64, opponent: o.WPM.Float64}
}

func accuracyPair(c, o *battle_runtime.BattleParticipant) metricPair {
	return metricPair{creator: c.Accuracy.Float64, opponent: o.Accuracy.Float64}
}

func mistakesPair(c, o *battle_runtime.BattleParticipant) metricPair {
	return metricPair{creator: float64(c.Mistakes), opponent: float64(o.Mistakes)}
}

func compositePair(c, o *battle_runtime.BattleParticipant) metricPair {
	return metricPair{
		creator:  c.WPM.Float64 * (c.Accuracy.Float64 / 100),
		opponent: o.WPM.Float64 * (o.Accuracy.Float64 / 100),
	}
}

// ResolveWinner 按计分方式裁决一场对战
// 任一参与者未完赛或缺指标时返回 OutcomePending，绝不提前裁决
func ResolveWinner(battleType BattleType, creator, opponent *battle_runtime.BattleParticipant) (Outcome, error) {
	resolve, ok := resolvers[battleType]
	if !ok {
		return OutcomePending, xerrors.New(xerrors.CodeInvalidParams, "未知的对战计分方式: "+string(battleType))
	}
	if creator == nil || opponent == nil {
		return OutcomePending, nil
	}
	if !creator.IsFinished || !opponent.IsFinished {
		return OutcomePending, nil
	}
	if !creator.HasMetrics() || !opponent.HasMetrics() {
		return OutcomePending, nil
	}
	return resolve(creator, opponent), nil
}
