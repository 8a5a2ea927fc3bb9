package model

import "time"

const UnknownLocation = "Unknown"

const (
	MaxIPAddressLen = 64
	MaxUserAgentLen = 512
)

// Click 一次访问记录，只追加不修改
type Click struct {
	ID            uint           `gorm:"primaryKey" json:"-"`
	LinkID        uint           `gorm:"index;not null" json:"-"`
	IPAddress     string         `gorm:"size:64" json:"ipAddress"`
	UserAgent     string         `gorm:"size:512" json:"userAgent"`
	Location      Location       `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Geo           *GeoRecord     `gorm:"serializer:json" json:"geo,omitempty"`
	ExactLocation *ExactLocation `gorm:"serializer:json" json:"exactLocation,omitempty"`
	Timestamp     time.Time      `gorm:"index;not null" json:"timestamp"`
}

// Location 粗粒度地理位置（由 IP 解析）
type Location struct {
	Country  string `gorm:"size:64" json:"country"`
	City     string `gorm:"size:128" json:"city"`
	Region   string `gorm:"size:64" json:"region"`
	Timezone string `gorm:"size:64" json:"timezone"`
}

// UnknownLocationValue 所有字段均为 Unknown
func UnknownLocationValue() Location {
	return Location{
		Country:  UnknownLocation,
		City:     UnknownLocation,
		Region:   UnknownLocation,
		Timezone: UnknownLocation,
	}
}

// GeoRecord IP 库原始查询结果
type GeoRecord struct {
	Country   string     `json:"country"`
	Region    string     `json:"region"`
	City      string     `json:"city"`
	Timezone  string     `json:"timezone"`
	EU        bool       `json:"eu"`
	LL        [2]float64 `json:"ll"`
	Metro     uint       `json:"metro"`
	Area      uint16     `json:"area"` // 精度半径（公里）
	Continent string     `json:"continent,omitempty"`
}

// ToLocation 转换为粗粒度位置，空字段填充 Unknown
func (g *GeoRecord) ToLocation() Location {
	if g == nil {
		return UnknownLocationValue()
	}
	return Location{
		Country:  orUnknown(g.Country),
		City:     orUnknown(g.City),
		Region:   orUnknown(g.Region),
		Timezone: orUnknown(g.Timezone),
	}
}

// ExactLocation 浏览器上报的精确坐标
type ExactLocation struct {
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	Address     map[string]string `json:"address,omitempty"`
	DisplayName string            `json:"displayName,omitempty"`
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownLocation
	}
	return s
}
