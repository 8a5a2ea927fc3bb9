package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"shortlink-geo/internal/model"
	"shortlink-geo/pkg/logging"
	"shortlink-geo/pkg/utils"
)

const maxPageBytes = 2 << 20

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".svg": true, ".avif": true,
}

// Metadata 页面社交预览信息，抓取失败时字段为空
type Metadata struct {
	Title       string
	Description string
	Image       string // 本地路径，如 /uploads/1700000000000-1a2b3c4d.jpg
}

// Options 抓取配置
type Options struct {
	Timeout       time.Duration
	AssetDir      string
	URLPrefix     string
	MaxImageBytes int64
	UserAgent     string
}

// Fetcher 抓取目标页 og 标签并缓存预览图
type Fetcher struct {
	opts   Options
	client *http.Client
	now    func() time.Time
}

func NewFetcher(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = 5 << 20
	}
	if opts.URLPrefix == "" {
		opts.URLPrefix = "/uploads"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (compatible; shortlink-geo/1.0; +preview)"
	}
	return &Fetcher{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		now:    time.Now,
	}
}

// Fetch 尽力而为，任何错误只记日志
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) Metadata {
	var meta Metadata
	if !utils.IsHTTPURL(targetURL) {
		return meta
	}

	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	tags, err := f.fetchTags(ctx, targetURL)
	if err != nil {
		logging.Logger.Warn("Failed to fetch OG metadata", zap.String("url", targetURL), zap.Error(err))
		return meta
	}
	meta.Title = utils.TruncateRunes(tags["og:title"], model.MaxOgTitleLen)
	meta.Description = utils.TruncateRunes(tags["og:description"], model.MaxOgDescriptionLen)

	imageURL := tags["og:image"]
	if imageURL == "" {
		return meta
	}
	resolved, err := resolveURL(targetURL, imageURL)
	if err != nil {
		logging.Logger.Warn("Invalid og:image url", zap.String("image", imageURL), zap.Error(err))
		return meta
	}
	local, err := f.saveImage(ctx, resolved)
	if err != nil {
		logging.Logger.Warn("Failed to cache preview image", zap.String("image", resolved), zap.Error(err))
		return meta
	}
	meta.Image = local
	return meta
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp, nil
}

func (f *Fetcher) fetchTags(ctx context.Context, pageURL string) (map[string]string, error) {
	resp, err := f.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return ParseOpenGraph(io.LimitReader(resp.Body, maxPageBytes))
}

// ParseOpenGraph 解析 <meta property|name="og:*" content="..."> ，遇到 body 停止
func ParseOpenGraph(r io.Reader) (map[string]string, error) {
	tags := make(map[string]string)
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return tags, nil
			}
			return tags, z.Err()
		case html.EndTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Head {
				return tags, nil
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch atom.Lookup(name) {
			case atom.Body:
				return tags, nil
			case atom.Meta:
				if !hasAttr {
					continue
				}
				var key, content string
				for {
					k, v, more := z.TagAttr()
					switch string(k) {
					case "property", "name":
						if key == "" {
							key = strings.ToLower(strings.TrimSpace(string(v)))
						}
					case "content":
						content = strings.TrimSpace(string(v))
					}
					if !more {
						break
					}
				}
				// 以第一次出现为准
				if strings.HasPrefix(key, "og:") && content != "" {
					if _, ok := tags[key]; !ok {
						tags[key] = content
					}
				}
			}
		}
	}
}

func resolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	u := b.ResolveReference(r)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return u.String(), nil
}

func (f *Fetcher) saveImage(ctx context.Context, imageURL string) (string, error) {
	if f.opts.AssetDir == "" {
		return "", errors.New("asset dir not configured")
	}
	resp, err := f.get(ctx, imageURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.ContentLength > f.opts.MaxImageBytes {
		return "", fmt.Errorf("image too large: %d bytes", resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxImageBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > f.opts.MaxImageBytes {
		return "", fmt.Errorf("image exceeds %d bytes", f.opts.MaxImageBytes)
	}

	if err := os.MkdirAll(f.opts.AssetDir, 0o755); err != nil {
		return "", err
	}
	name := f.imageName(imageURL, resp.Header.Get("Content-Type"))
	if err := os.WriteFile(filepath.Join(f.opts.AssetDir, name), data, 0o644); err != nil {
		return "", err
	}
	return strings.TrimRight(f.opts.URLPrefix, "/") + "/" + name, nil
}

// imageName 时间戳加随机后缀，避免同一毫秒内并发创建时文件名冲突
func (f *Fetcher) imageName(imageURL, contentType string) string {
	return fmt.Sprintf("%d-%s%s", f.now().UnixMilli(), uuid.NewString()[:8], imageExt(imageURL, contentType))
}

func imageExt(imageURL, contentType string) string {
	if u, err := url.Parse(imageURL); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); imageExts[ext] {
			return ext
		}
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "image/jpeg":
			return ".jpg"
		case "image/svg+xml":
			return ".svg"
		}
		if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 && imageExts[exts[0]] {
			return exts[0]
		}
	}
	return ".jpg"
}
