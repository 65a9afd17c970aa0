package config

const (
	defaultConfigPath            = "~/.config/backoffice/config.toml"
	defaultDataDir               = "~/.local/share/backoffice"
	defaultLogDir                = "~/.local/share/backoffice/logs"
	defaultExtensionsDir         = "~/.local/share/backoffice/extensions"
	defaultContentTypesFile      = "~/.config/backoffice/contenttypes.yml"
	defaultFilesDir              = "~/.local/share/backoffice/files"
	defaultThemeDir              = "~/.local/share/backoffice/theme"
	defaultAPIBind               = "127.0.0.1:7488"
	defaultMountPrefix           = "/async"
	defaultSiteName              = "Backoffice"
	defaultSiteVersion           = "1.0.0"
	defaultLocale                = "en"
	defaultDatabaseFile          = "backoffice.db"
	defaultTablePrefix           = "bo_"
	defaultUploadNamespace       = "files"
	defaultNewsCacheTTLSeconds   = 7200
	defaultNewsConnectTimeout    = 5
	defaultMailPort              = 587
	defaultMailTestInterval      = 10
	defaultSessionCookieName     = "backoffice_session"
	defaultSessionTTLMinutes     = 720
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultActivityLevel         = "info"
	defaultUploadsPermission     = "files:uploads"
	defaultUploadsPermittedRoles = "editor"
)

var defaultAcceptFileTypes = []string{
	"twig", "html", "js", "css", "scss", "gif", "jpg", "jpeg", "png", "ico", "zip",
	"tgz", "txt", "md", "doc", "docx", "pdf", "epub", "xls", "xlsx", "csv", "ppt",
	"pptx", "mp3", "ogg", "wav", "m4a", "mp4", "m4v", "ogv", "wmv", "avi", "webm", "svg",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	accept := make([]string, len(defaultAcceptFileTypes))
	copy(accept, defaultAcceptFileTypes)
	return Config{
		Paths: Paths{
			DataDir:          defaultDataDir,
			LogDir:           defaultLogDir,
			ExtensionsDir:    defaultExtensionsDir,
			ContentTypesFile: defaultContentTypesFile,
			APIBind:          defaultAPIBind,
			MountPrefix:      defaultMountPrefix,
		},
		Site: Site{
			Name:    defaultSiteName,
			Version: defaultSiteVersion,
			Locale:  defaultLocale,
		},
		Database: Database{
			Prefix: defaultTablePrefix,
		},
		Filesystem: Filesystem{
			Namespaces: map[string]string{
				"files": defaultFilesDir,
				"theme": defaultThemeDir,
			},
			UploadNamespace: defaultUploadNamespace,
			AcceptFileTypes: accept,
		},
		News: News{
			CacheTTLSeconds:       defaultNewsCacheTTLSeconds,
			ConnectTimeoutSeconds: defaultNewsConnectTimeout,
		},
		Mail: Mail{
			Port:                defaultMailPort,
			TLS:                 true,
			TestIntervalSeconds: defaultMailTestInterval,
		},
		Session: Session{
			CookieName: defaultSessionCookieName,
			TTLMinutes: defaultSessionTTLMinutes,
		},
		Permissions: map[string][]string{
			defaultUploadsPermission: {"admin", defaultUploadsPermittedRoles},
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			ActivityLevel: defaultActivityLevel,
		},
	}
}
