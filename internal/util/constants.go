package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// gin context keys
const (
	ContextUserKey  = "user"
	ContextTokenKey = "token"
)

const (
	HeaderIdempotencyKey     = "Idempotency-Key"
	HeaderIdempotentReplayed = "Idempotent-Replayed"
	MaxIdempotencyKeyLength  = 128
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Catalog file extensions accepted by the curriculum importer.
var CatalogExtensions = []string{".yaml", ".yml", ".xlsx"}
