package punch

import (
	"strings"
	"time"
)

const (
	// ClockInIndicator は打刻種別が出勤であることを示す部分文字列です。
	ClockInIndicator = "Entrada"
	// LateSuffix は遅刻した出勤打刻の種別に付与される接尾辞です。
	LateSuffix = " (⚠️ ATRASO)"

	// 05:55:00 ちょうどまでは定刻扱い。
	cutoffSeconds = 5*60*60 + 55*60
)

// ReferenceLocation は遅刻判定の既定タイムゾーン (ブラジル公式時間、UTC-03:00、夏時間なし) です。
var ReferenceLocation = time.FixedZone("BRT", -3*60*60)

// Classify は打刻種別と打刻時刻から保存用の種別ラベルを決定します。
// 出勤を示す種別が締め時刻より後に打刻された場合のみ LateSuffix を付与し、
// それ以外は kind をそのまま返します。loc が nil の場合は ReferenceLocation で評価します。
func Classify(kind string, at time.Time, loc *time.Location) string {
	if !strings.Contains(kind, ClockInIndicator) {
		return kind
	}
	if IsLate(at, loc) {
		return kind + LateSuffix
	}
	return kind
}

// IsLate は at の時刻 (loc 基準) が締め時刻 05:55:00 を過ぎているかを返します。
func IsLate(at time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = ReferenceLocation
	}
	local := at.In(loc)
	seconds := local.Hour()*60*60 + local.Minute()*60 + local.Second()
	return seconds > cutoffSeconds
}
