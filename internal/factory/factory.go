package factory

import (
	"fmt"

	"github.com/sunflower-vision/report-export-go/internal/config"
	"github.com/sunflower-vision/report-export-go/internal/storage"
)

// SaverFactory creates artifact savers
type SaverFactory interface {
	CreateSaver(cfg *config.Config) (storage.FileSaver, error)
}

// DefaultSaverFactory builds savers from configuration
type DefaultSaverFactory struct{}

// NewSaverFactory creates the default saver factory
func NewSaverFactory() SaverFactory {
	return &DefaultSaverFactory{}
}

// CreateSaver selects the artifact saver backend named by the config.
func (f *DefaultSaverFactory) CreateSaver(cfg *config.Config) (storage.FileSaver, error) {
	switch cfg.Saver {
	case config.SaverDisk:
		return storage.NewDiskSaver(cfg.OutputDir)
	case config.SaverAzure:
		return storage.NewAzureBlobSaver(cfg.AzureAccount, cfg.AzureKey, cfg.AzureContainer)
	default:
		return nil, fmt.Errorf("unsupported saver type: %s", cfg.Saver)
	}
}
