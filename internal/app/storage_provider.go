package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/platform/storage"
)

type StorageMode string

const (
	StorageModeLocal    StorageMode = "local"
	StorageModeGCS      StorageMode = "gcs"
	StorageModeEmulator StorageMode = "emulator"
)

type StorageBootstrapErrorCode string

const (
	StorageBootstrapErrorInvalidMode         StorageBootstrapErrorCode = "invalid_mode"
	StorageBootstrapErrorMissingBucket       StorageBootstrapErrorCode = "missing_bucket"
	StorageBootstrapErrorMissingEmulatorHost StorageBootstrapErrorCode = "missing_emulator_host"
	StorageBootstrapErrorConnectFailed       StorageBootstrapErrorCode = "connect_failed"
)

type StorageBootstrapError struct {
	Code  StorageBootstrapErrorCode
	Mode  string
	Cause error
}

func (e *StorageBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf("object storage bootstrap failed (code=%s mode=%q): %v", e.Code, e.Mode, e.Cause)
}

func (e *StorageBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ResolveStorageMode validates the configured mode string.
func ResolveStorageMode(raw string) (StorageMode, error) {
	mode := StorageMode(strings.ToLower(strings.TrimSpace(raw)))
	if mode == "" {
		return StorageModeLocal, nil
	}
	switch mode {
	case StorageModeLocal, StorageModeGCS, StorageModeEmulator:
		return mode, nil
	}
	return "", &StorageBootstrapError{
		Code:  StorageBootstrapErrorInvalidMode,
		Mode:  raw,
		Cause: fmt.Errorf("unsupported object storage mode %q", raw),
	}
}

func resolveObjectStore(ctx context.Context, log *logger.Logger, cfg Config) (storage.ObjectStore, error) {
	mode, err := ResolveStorageMode(cfg.StorageMode)
	if err != nil {
		log.Error("Object storage provider selection failed", "mode", cfg.StorageMode, "error", err)
		return nil, err
	}
	log.Info("Selecting object storage provider", "mode", mode)

	switch mode {
	case StorageModeLocal:
		store, lerr := storage.NewLocalStore(log, cfg.StorageRoot, cfg.StorageBaseURL)
		if lerr != nil {
			return nil, &StorageBootstrapError{Code: StorageBootstrapErrorConnectFailed, Mode: string(mode), Cause: lerr}
		}
		return store, nil

	case StorageModeGCS, StorageModeEmulator:
		if strings.TrimSpace(cfg.GCSBucket) == "" {
			return nil, &StorageBootstrapError{
				Code:  StorageBootstrapErrorMissingBucket,
				Mode:  string(mode),
				Cause: fmt.Errorf("GCS_BUCKET is required for mode %q", mode),
			}
		}
		emulatorHost := ""
		if mode == StorageModeEmulator {
			emulatorHost = strings.TrimSpace(cfg.GCSEmulatorHost)
			if emulatorHost == "" {
				return nil, &StorageBootstrapError{
					Code:  StorageBootstrapErrorMissingEmulatorHost,
					Mode:  string(mode),
					Cause: fmt.Errorf("STORAGE_EMULATOR_HOST is required for mode %q", mode),
				}
			}
		}
		store, gerr := storage.NewGCSStore(ctx, log, cfg.GCSBucket, emulatorHost)
		if gerr != nil {
			return nil, &StorageBootstrapError{Code: StorageBootstrapErrorConnectFailed, Mode: string(mode), Cause: gerr}
		}
		return store, nil
	}

	return nil, &StorageBootstrapError{
		Code:  StorageBootstrapErrorInvalidMode,
		Mode:  string(mode),
		Cause: fmt.Errorf("unsupported object storage mode %q", mode),
	}
}
