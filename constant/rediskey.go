package constant

import (
	"fmt"
	"time"
)

// 常量定义
const (
	BasePrefix = "redirect:"
	Separator  = ":"
)

// Redis 键模板
const (
	ShortCode = BasePrefix + "shortcode:%s"
	DailyPV   = BasePrefix + "pv" + Separator + "%s"                    // redirect:pv:yyyyMMdd
	DailyUV   = BasePrefix + "uv" + Separator + "%s" + Separator + "%s" // redirect:uv:yyyyMMdd:shortcode
	TotalPV   = BasePrefix + "total_pv" + Separator + "%s"              // redirect:total_pv:shortcode
	TotalUV   = BasePrefix + "total_uv" + Separator + "%s"              // redirect:total_uv:shortcode
)

// 过期时间（秒）
const (
	MissingLinkTTL = 300       // 不存在的短链缓存 5 分钟，防止缓存穿透
	DailyKeyTTL    = 3 * 86400 // 每日计数保留 3 天，等待定时任务落库
)

// GetShortCodeKey 生成 shortCode key
func GetShortCodeKey(shortcode string) string {
	return fmt.Sprintf(ShortCode, shortcode)
}

// GetDateKey 生成指定时间的日期键（格式：yyyyMMdd）
func GetDateKey(t time.Time) string {
	return t.Format("20060102")
}

// GetStatDate 落库使用的日期（格式：yyyy-MM-dd）
func GetStatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// GetDailyPVKey 生成每日 PV 键（格式：redirect:pv:yyyyMMdd）
func GetDailyPVKey(date string) string {
	return fmt.Sprintf(DailyPV, date)
}

// GetDailyUVKey 生成每日 UV 键（格式：redirect:uv:yyyyMMdd:shortcode）
func GetDailyUVKey(shortcode, date string) string {
	return fmt.Sprintf(DailyUV, date, shortcode)
}

// GetTotalUVKey 生成总 UV 键（格式：redirect:total_uv:shortcode）
func GetTotalUVKey(shortcode string) string {
	return fmt.Sprintf(TotalUV, shortcode)
}

// GetTotalPVKey 生成总 PV 键（格式：redirect:total_pv:shortcode）
func GetTotalPVKey(shortcode string) string {
	return fmt.Sprintf(TotalPV, shortcode)
}
