package geo

import (
	"errors"
	"net"
	"os"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"

	"shortlink-geo/internal/model"
	"shortlink-geo/pkg/logging"
	"shortlink-geo/pkg/utils"
)

// Resolver IP 到地理位置的查询，未命中时返回 nil, nil
type Resolver interface {
	Lookup(ip string) (*model.GeoRecord, error)
}

// NopResolver 未配置 IP 库时使用，所有查询均未命中
type NopResolver struct{}

func (NopResolver) Lookup(string) (*model.GeoRecord, error) {
	return nil, nil
}

// MaxMindResolver 基于 GeoLite2-City 数据库
type MaxMindResolver struct {
	reader *geoip2.Reader
}

// OpenMaxMind 打开 mmdb 文件
func OpenMaxMind(path string) (*MaxMindResolver, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &MaxMindResolver{reader: reader}, nil
}

// NewResolver 文件不存在时降级为 NopResolver，位置全部记为 Unknown
func NewResolver(path string) Resolver {
	if path == "" {
		logging.Logger.Warn("GeoIP database not configured, locations will be Unknown")
		return NopResolver{}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logging.Logger.Warn("GeoIP database not found, locations will be Unknown", zap.String("path", path))
		return NopResolver{}
	}
	r, err := OpenMaxMind(path)
	if err != nil {
		logging.Logger.Error("Failed to open GeoIP database", zap.String("path", path), zap.Error(err))
		return NopResolver{}
	}
	logging.Logger.Info("GeoIP database loaded", zap.String("path", path))
	return r
}

func (m *MaxMindResolver) Lookup(ip string) (*model.GeoRecord, error) {
	parsed := net.ParseIP(utils.LookupIP(ip))
	if parsed == nil {
		return nil, nil
	}

	city, err := m.reader.City(parsed)
	if err != nil {
		return nil, err
	}
	// 私有地址等查询结果为空记录
	if city.Country.IsoCode == "" && len(city.City.Names) == 0 {
		return nil, nil
	}

	record := &model.GeoRecord{
		Country:   city.Country.IsoCode,
		City:      city.City.Names["en"],
		Timezone:  city.Location.TimeZone,
		EU:        city.Country.IsInEuropeanUnion,
		LL:        [2]float64{city.Location.Latitude, city.Location.Longitude},
		Metro:     city.Location.MetroCode,
		Area:      city.Location.AccuracyRadius,
		Continent: city.Continent.Code,
	}
	if len(city.Subdivisions) > 0 {
		record.Region = city.Subdivisions[0].IsoCode
	}
	return record, nil
}

func (m *MaxMindResolver) Close() error {
	return m.reader.Close()
}

// Locate 查询 IP 并生成粗粒度位置，查询失败时所有字段为 Unknown
func Locate(r Resolver, ip string) (model.Location, *model.GeoRecord) {
	if r == nil {
		return model.UnknownLocationValue(), nil
	}
	record, err := r.Lookup(ip)
	if err != nil {
		logging.Logger.Warn("GeoIP lookup failed", zap.String("ip", ip), zap.Error(err))
		return model.UnknownLocationValue(), nil
	}
	return record.ToLocation(), record
}
