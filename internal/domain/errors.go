package domain

import "errors"

// Filesystem errors - 檔案系統層錯誤
var (
	// ErrNotFound indicates the requested path does not exist
	ErrNotFound = errors.New("path not found")

	// ErrNotDirectory indicates expected a directory but got a file
	ErrNotDirectory = errors.New("not a directory")

	// ErrNotFile indicates expected a file but got a directory
	ErrNotFile = errors.New("not a file")

	// ErrPermissionDenied indicates insufficient permissions
	ErrPermissionDenied = errors.New("permission denied")
)

// Sync errors - 同步邏輯層錯誤
var (
	// ErrPathCollision indicates two artifacts mapped to the same
	// physical path within a single sync invocation
	ErrPathCollision = errors.New("physical path collision")

	// ErrSyncInProgress indicates another sync is already running
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrSnapshotInvalid indicates a malformed content tree snapshot
	ErrSnapshotInvalid = errors.New("invalid content snapshot")
)

// Config errors - 設定檔錯誤
var (
	// ErrConfigNotFound indicates config file not found
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates config file is malformed
	ErrConfigInvalid = errors.New("invalid config")

	// ErrRootNotFound indicates referenced sync root doesn't exist
	ErrRootNotFound = errors.New("sync root not found")
)
