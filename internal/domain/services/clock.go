package services

import "time"

// JST 日付の解決に使う固定タイムゾーン（UTC+9）。
// ホストのローカルタイムゾーンには依存しない
var JST = time.FixedZone("JST", 9*60*60)

// InterfaceClock 「今」を供給する時計。テストでは偽の時計に差し替える
type InterfaceClock interface {
	Now() time.Time
}

// jstClock JSTの実時刻を返す時計
type jstClock struct{}

func (jstClock) Now() time.Time {
	return time.Now().In(JST)
}

// NewJSTClock JST固定の実時計を作成する
func NewJSTClock() InterfaceClock {
	return jstClock{}
}
