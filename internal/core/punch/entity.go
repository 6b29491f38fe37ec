package punch

import "time"

const (
	// DateLayout は打刻日付の表現形式です。
	DateLayout = "2006-01-02"
	// TimeLayout は打刻時刻の表現形式です。
	TimeLayout = "15:04:05"
)

// Record は一件の打刻記録です。作成後に更新されることはありません。
type Record struct {
	ID           int64
	EmployeeID   int64
	EmployeeName string
	Date         string
	Time         string
	Kind         string
	PunchedAt    time.Time
	Photo        *string
}
