package i18n

import (
	"context"
	"testing"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitI18nLoadsEmbeddedLocales(t *testing.T) {
	bundle, err := InitI18n("en")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"en", "zh"}, SupportedLanguages)

	ctx := context.Background()
	assert.Equal(t, "Link not found", T(ctx, "error.link_not_found", nil))

	zh := WithLocalizer(ctx, i18n.NewLocalizer(bundle, "zh"))
	assert.Equal(t, "短链不存在", T(zh, "error.link_not_found", nil))
}

func TestTFallsBackToKey(t *testing.T) {
	_, err := InitI18n("en")
	require.NoError(t, err)
	assert.Equal(t, "error.not_defined", T(context.Background(), "error.not_defined", nil))
}
