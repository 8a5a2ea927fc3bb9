package model

// 列宽（字符数）
const (
	MaxOgTitleLen       = 512
	MaxOgDescriptionLen = 4096
)

// Link 短链，创建后 ShortCode / OriginalURL / OG 信息不再变化
type Link struct {
	BaseModel
	ShortCode     string  `gorm:"uniqueIndex;size:32;not null" json:"shortCode"`
	OriginalURL   string  `gorm:"type:text;not null" json:"originalUrl"`
	OgTitle       string  `gorm:"size:512" json:"ogTitle,omitempty"`
	OgDescription string  `gorm:"type:text" json:"ogDescription,omitempty"`
	OgImage       string  `gorm:"size:512" json:"ogImage,omitempty"` // 本地缓存路径，如 /uploads/xxx.jpg
	Clicks        []Click `gorm:"foreignKey:LinkID" json:"clicks,omitempty"`
}
