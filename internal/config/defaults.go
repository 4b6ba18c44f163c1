package config

const (
	defaultAssetDir       = "data"
	defaultUploadDir      = "uploads"
	defaultQRDir          = "static/qrcodes"
	defaultManifest       = "images.json"
	defaultAddr           = ":8080"
	defaultQRPublicPath   = "/static/qrcodes"
	defaultAssetPath      = "/data"
	defaultPublishURL     = "https://api.imgbb.com/1/upload"
	defaultQRVersion      = 1
	defaultQRModuleSize   = 10
	defaultQRBorder       = 4
	defaultIDStrategy     = IDStrategyUnique
	defaultSnapshotMinLen = 100
	defaultLogLevel       = "info"
	defaultLogFormat      = "auto"
)

// Snapshot id strategies.
const (
	IDStrategyUnique    = "unique"
	IDStrategyTimestamp = "timestamp"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			AssetDir:  defaultAssetDir,
			UploadDir: defaultUploadDir,
			QRDir:     defaultQRDir,
			Manifest:  defaultManifest,
		},
		Server: Server{
			Addr:         defaultAddr,
			QRPublicPath: defaultQRPublicPath,
			AssetPath:    defaultAssetPath,
		},
		Publisher: Publisher{
			Endpoint: defaultPublishURL,
		},
		QR: QR{
			Version:    defaultQRVersion,
			ModuleSize: defaultQRModuleSize,
			Border:     defaultQRBorder,
		},
		Snapshot: Snapshot{
			IDStrategy: defaultIDStrategy,
			MinBytes:   defaultSnapshotMinLen,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
