package config

import "time"

const (
	// Audit
	StatusUpdateMessageFormat = "Status updated to %s"

	// Snapshot cache
	SnapshotCacheKey      = "complaints:snapshot"
	SnapshotGenerationKey = "complaints:snapshot:gen"
	DefaultSnapshotTTL    = 5 * time.Minute

	// Live feed
	EventsChannel = "complaints:events"

	// Store
	DefaultStoreTimeout = 5 * time.Second

	// Images
	ImageFolder       = "issues"
	MaxImageSizeBytes = 10 << 20
	DefaultImageType  = "image/jpeg"
	PublicURLBase     = "https://storage.googleapis.com"
)

// ImageExtensions maps the accepted upload content types to object name extensions.
var ImageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}
