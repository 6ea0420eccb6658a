package resource

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"edu-resources/internal/utils/platformerrors"
)

// User-facing validation messages.
const (
	MsgMissingFile   = "请选择要上传的文件"
	MsgInvalidType   = "资源类型无效，只能是 video、ppt 或 ai"
	MsgMissingTitle  = "请输入资源标题"
	MsgEmptyFile     = "文件内容为空"
	MsgUnreadable    = "文件读取失败"
	MsgInvalidURL    = "链接格式不正确"
	MsgNotFound      = "资源不存在"
	MsgUploadFailed  = "文件上传失败，请重试"
	MsgTooLargeFmt   = "文件大小不能超过 %s"
	MsgInvalidFilter = "查询参数无效"
)

var mismatchMessages = map[Type]string{
	TypeVideo: "视频文件格式不正确，请上传 .mp4、.webm 或 .ogg 文件",
	TypePPT:   "PPT 文件格式不正确，请上传 .ppt 或 .pptx 文件",
	TypeAI:    "AI 配置文件格式不正确，请上传 .html、.json 或 .txt 文件",
}

var allowedMIMEs = map[Type][]string{
	TypeVideo: {"video/mp4", "video/webm", "video/ogg"},
	TypePPT: {
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	},
	TypeAI: {"text/html", "application/json", "text/plain"},
}

var safeExtension = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// AllowedMIMEs returns the declared content types accepted for t.
func AllowedMIMEs(t Type) []string {
	out := make([]string, len(allowedMIMEs[t]))
	copy(out, allowedMIMEs[t])
	return out
}

func validationError(ctx context.Context, message, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, message, nil, code)
}

// TooLargeError reports a file over the configured ceiling.
func TooLargeError(ctx context.Context, limit int64) error {
	return validationError(ctx, fmt.Sprintf(MsgTooLargeFmt, FormatLimit(limit)), "c5e0a1f2-3b4d-4e6f-8a7b-9c0d1e2f3a4b")
}

// FormatLimit renders a byte ceiling the way it is advertised to users:
// whole binary megabytes and kilobytes as "100MB" and "4KB", anything else
// in IEC units.
func FormatLimit(limit int64) string {
	switch {
	case limit >= humanize.MiByte && limit%humanize.MiByte == 0:
		return fmt.Sprintf("%dMB", limit/humanize.MiByte)
	case limit >= humanize.KiByte && limit%humanize.KiByte == 0:
		return fmt.Sprintf("%dKB", limit/humanize.KiByte)
	default:
		return humanize.IBytes(uint64(limit))
	}
}

// checkType validates the declared resource type.
func checkType(ctx context.Context, raw string) (Type, error) {
	t, ok := ParseType(raw)
	if !ok {
		return "", validationError(ctx, MsgInvalidType, "0b6f3c1d-2a4e-4f5b-9c8d-7e6f5a4b3c2d")
	}
	return t, nil
}

// checkTitle trims and requires a non-empty title.
func checkTitle(ctx context.Context, raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", validationError(ctx, MsgMissingTitle, "1c7a4d2e-3b5f-4a6c-8d9e-0f1a2b3c4d5e")
	}
	return title, nil
}

// normalizeMediaType strips parameters and lowercases a content type.
func normalizeMediaType(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.SplitN(raw, ";", 2)[0]))
	}
	return mediaType
}

func listContains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// sniffedMatches reports whether detected, or any of its ancestors in the
// mimetype hierarchy, is one of allowed.
func sniffedMatches(detected *mimetype.MIME, allowed []string) bool {
	for m := detected; m != nil; m = m.Parent() {
		for _, candidate := range allowed {
			if m.Is(candidate) {
				return true
			}
		}
	}
	return false
}

// checkMIME enforces the type/MIME allow-list on the declared content type
// and rejects content that sniffs as another resource type's format.
// It returns the effective content type to store the file with.
func checkMIME(ctx context.Context, t Type, declared string, head []byte) (string, error) {
	detected := mimetype.Detect(head)

	effective := normalizeMediaType(declared)
	if effective == "" || effective == "application/octet-stream" {
		effective = normalizeMediaType(detected.String())
	}

	mismatch := validationError(ctx, mismatchMessages[t], "2d8b5e3f-4c6a-4b7d-9e0f-1a2b3c4d5e6f")
	if !listContains(allowedMIMEs[t], effective) {
		return "", mismatch
	}

	if sniffedMatches(detected, allowedMIMEs[t]) {
		return effective, nil
	}
	for _, other := range Types {
		if other != t && sniffedMatches(detected, allowedMIMEs[other]) {
			return "", mismatch
		}
	}
	return effective, nil
}

// storageExtension picks the extension for the synthesized storage name.
// The client file name only contributes its base extension, and only when it
// looks like a plain short extension.
func storageExtension(fileName, contentType string) string {
	base := path.Base(strings.ReplaceAll(fileName, `\`, "/"))
	ext := strings.ToLower(path.Ext(base))
	if safeExtension.MatchString(ext) {
		return ext
	}
	if m := mimetype.Lookup(contentType); m != nil {
		return m.Extension()
	}
	return ""
}

// storageName derives a collision-resistant storage name from the resource
// type and a fresh random token, keeping the original extension.
func storageName(t Type, fileName, contentType string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s_%s%s", t, token, storageExtension(fileName, contentType))
}

// checkLinkURL requires an absolute http(s) URL.
func checkLinkURL(ctx context.Context, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", validationError(ctx, MsgInvalidURL, "3e9c6f4a-5d7b-4c8e-8f1a-2b3c4d5e6f7a")
	}
	return u.String(), nil
}

// linkFileName mirrors the last path segment of a link as its file name.
func linkFileName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "unknown"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "unknown"
	}
	return name
}
