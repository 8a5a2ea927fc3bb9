package i18n

import (
	"context"
	"embed"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

type localizerKey struct{}

// SupportedLanguages 已加载的语言列表
var SupportedLanguages []string

var defaultLocalizer *i18n.Localizer

// InitI18n 加载内置语言包
func InitI18n(defaultLang string) (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.MustParse(defaultLang))
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	SupportedLanguages = make([]string, 0)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		filePath := path.Join("locales", entry.Name())
		file, err := localeFS.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		if _, err := bundle.ParseMessageFileBytes(file, filePath); err != nil {
			return nil, err
		}
		SupportedLanguages = append(SupportedLanguages, extractLanguageFromPath(filePath))
	}

	defaultLocalizer = i18n.NewLocalizer(bundle, defaultLang)
	return bundle, nil
}

// 从文件路径中提取语言标签（en.toml -> "en"）
func extractLanguageFromPath(filePath string) string {
	baseName := path.Base(filePath)
	return strings.TrimSuffix(baseName, path.Ext(baseName))
}

// WithLocalizer 将 Localizer 写入 context
func WithLocalizer(ctx context.Context, localizer *i18n.Localizer) context.Context {
	return context.WithValue(ctx, localizerKey{}, localizer)
}

// T 翻译消息，找不到翻译时返回 key 本身
func T(ctx context.Context, key string, data map[string]interface{}) string {
	localizer, ok := ctx.Value(localizerKey{}).(*i18n.Localizer)
	if !ok || localizer == nil {
		localizer = defaultLocalizer
	}
	if localizer == nil {
		return key
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil || msg == "" {
		return key
	}
	return msg
}
