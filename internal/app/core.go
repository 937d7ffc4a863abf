package app

import (
	"go.uber.org/zap"

	"mindmap/internal/config"
	"mindmap/internal/layout"
	"mindmap/internal/service"
	"mindmap/internal/storage"
)

// Core is the storage and service graph shared by the GUI, the standalone
// MCP server and the CLI commands.
type Core struct {
	DB        *storage.DB
	Store     *storage.MindmapStore
	Approvals *storage.ApprovalStore
	Mindmaps  *service.MindmapService
	Settings  *service.SettingsService
	Backups   *service.BackupService
}

// OpenCore opens storage from cfg and wires the services around it.
func OpenCore(cfg *config.Config, logger *zap.Logger, emitter service.EventEmitter) (*Core, error) {
	dsn := cfg.DBDSN
	if cfg.DBDriver == "sqlite" && dsn == "" {
		dsn = cfg.DBPath()
	}
	db, err := storage.Open(cfg.DBDriver, dsn, cfg.DataDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("storage opened", zap.String("driver", db.Driver()), zap.String("dataDir", cfg.DataDir))

	store := storage.NewMindmapStore(db)
	mindmaps := service.NewMindmapService(
		store,
		storage.NewElementStore(db),
		storage.NewHistoryLogStore(db),
		layout.New(cfg.Layout),
		emitter,
		logger,
	)
	return &Core{
		DB:        db,
		Store:     store,
		Approvals: storage.NewApprovalStore(db),
		Mindmaps:  mindmaps,
		Settings:  service.NewSettingsService(storage.NewSettingsStore(db), service.WindowSize{Width: cfg.Width, Height: cfg.Height}),
		Backups:   service.NewBackupService(mindmaps, cfg.BackupDir, cfg.BackupKeep, emitter, logger),
	}, nil
}

// Close releases the database.
func (c *Core) Close() error {
	c.Backups.Stop()
	return c.DB.Close()
}
