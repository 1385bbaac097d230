package utils

import "time"

// Nexus endpoints, relative to the base URL
const (
	ExtDirectPath  = "/service/extdirect"
	BrowsePath     = "/service/rest/repository/browse"
	RepositoryPath = "/repository"
)

// ExtDirect envelope for folder deletion
const (
	ExtDirectAction       = "coreui_Component"
	ExtDirectDeleteMethod = "deleteFolder"
	ExtDirectType         = "rpc"
)

// Deletion polling
const (
	DefaultPollInterval = 1 * time.Second
	DefaultPollTimeout  = 30 * time.Second
)

// Request limits
const (
	DefaultRequestTimeoutSeconds = 60
	MaxRequestTimeoutSeconds     = 3600
	MaxErrorBodyBytes            = 4 * 1024
)

// DefaultContentType is used when no better guess is available
const DefaultContentType = "application/octet-stream"

// Schema version
const SchemaVersion = "1.0"

// Config file and environment
const (
	DefaultConfigFileName = "nxraw.toml"
	EnvPrefix             = "NXRAW_"
	KeyringService        = "nxraw"
)
