package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

var AllowedThumbnailTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// MaxThumbnailSize 缩略图上限 5MB
const MaxThumbnailSize = 5 << 20

// 内容 ID 前缀，沿用旧数据的命名
const (
	ContentIDPrefix    = "content_"
	OurContentIDPrefix = "our_content_"
)
