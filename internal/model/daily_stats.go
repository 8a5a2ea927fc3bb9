package model

type DailyStat struct {
	BaseModel
	LinkID uint   `gorm:"uniqueIndex:idx_link_date;not null" json:"-"`
	Date   string `gorm:"size:10;uniqueIndex:idx_link_date" json:"date"` // YYYY-MM-DD
	PV     int64  `gorm:"default:0" json:"pv"`
	UV     int64  `gorm:"default:0" json:"uv"`
}
