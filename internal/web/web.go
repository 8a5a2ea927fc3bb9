package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static/index.html
var IndexPage []byte

//go:embed static/analytics.html
var AnalyticsPage []byte

// 模板名称
const (
	PreviewTemplate  = "preview.tmpl"
	LocationTemplate = "loc.tmpl"
)

// Templates 解析内置模板，供 gin SetHTMLTemplate 使用
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.tmpl")
}

// PreviewData 社交预览页参数
type PreviewData struct {
	Title       string
	Description string
	Image       string // 绝对地址
	URL         string
	RefreshURL  string
}

// LocationData 定位中转页参数
type LocationData struct {
	ShortCode   string
	OriginalURL string
	// 浏览器定位超时（毫秒）与倒计时（秒）
	TimeoutMillis    int64
	CountdownSeconds int
}
