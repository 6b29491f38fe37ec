package employee

import "time"

// DefaultPIN は PIN 未指定で登録された社員に割り当てられる PIN です。
const DefaultPIN = "1234"

// Employee は打刻対象の社員エンティティです。
type Employee struct {
	ID           int64
	Name         string
	PINHash      string
	LunchBreak   string
	Workdays     string
	ProfilePhoto *string
	BiometricID  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
