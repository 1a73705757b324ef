// File: internal/entity/battle_runtime/challenge.go
package battle_runtime

import (
	"time"
)

// Challenge 打字挑战内容，对战逻辑只关心 id 和正文
type Challenge struct {
	ID         string    `boil:"id" json:"id"`
	Mode       string    `boil:"mode" json:"mode"` // text / code
	Difficulty string    `boil:"difficulty" json:"difficulty"`
	Body       string    `boil:"body" json:"body"`
	CreatedAt  time.Time `boil:"created_at" json:"created_at"`
}

// TableName 返回表名
func (Challenge) TableName() string {
	return "battle_runtime.challenges"
}
