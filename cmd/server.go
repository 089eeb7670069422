package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zencms/cache"
	"zencms/core/audio"
	"zencms/core/changefeed"
	"zencms/db"
	"zencms/logger"
	"zencms/repository"
	"zencms/server"
	"zencms/service"
	"zencms/storage"

	"github.com/spf13/cobra"
)

var serveMemory bool

// relayRetry 变更频道订阅中断后的重连间隔
const relayRetry = 5 * time.Second

var serverCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "启动函数服务器",
	Long:    `启动 HTTP 函数服务器：远程函数、素材上传、管理员登录和变更推送。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServer(ctx)
	},
}

func runServer(ctx context.Context) error {
	repos, closeRepos, err := openRepositories(ctx)
	if err != nil {
		return err
	}
	defer closeRepos()

	hub := changefeed.NewHub()
	go hub.Run()
	defer hub.Stop()

	opts := service.Options{Notifier: hub}
	if !serveMemory && cfg.RedisEnabled() {
		if err := cache.ConnectRedis(cfg); err != nil {
			logger.Warn("Redis 不可用，缓存和跨实例变更广播已禁用", logger.ErrorField(err))
		} else {
			defer cache.CloseRedis()
			relay := cache.NewRelay(cache.NewEventBus(), hub, relayRetry)
			opts.Notifier = relay
			opts.CategoryCache = cache.NewCategoryCache()
			opts.TitleCache = cache.NewTitleCache()
			go relay.Run(ctx)
		}
	}

	deps := server.Deps{
		Services: service.New(repos, opts),
		Hub:      hub,
	}
	if cfg.FFprobePath != "" {
		deps.Probe = audio.NewFFprobe(cfg.FFprobePath)
	}
	if err := storage.InitMinio(cfg); err != nil {
		logger.Warn("MinIO 不可用，上传接口已禁用", logger.ErrorField(err))
	} else {
		deps.Store = storage.GetMinioStore()
	}

	return server.New(cfg, deps).Run(ctx)
}

// openRepositories 连接 MySQL 并迁移表结构；--memory 时使用内存仓库
func openRepositories(ctx context.Context) (service.Repositories, func(), error) {
	if serveMemory {
		logger.Info("使用内存仓库，数据不会持久化")
		return service.MemoryRepositories(), func() {}, nil
	}

	initCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := db.EnsureDatabase(initCtx, cfg); err != nil {
		return service.Repositories{}, nil, fmt.Errorf("failed to ensure database: %w", err)
	}
	if err := db.ConnectGormDB(cfg); err != nil {
		return service.Repositories{}, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrateModels(); err != nil {
		db.CloseGormDB()
		return service.Repositories{}, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	repos := service.Repositories{
		Categories: repository.NewGormCategoryRepository(db.GormDB),
		Music:      repository.NewGormMusicRepository(db.GormDB),
		Images:     repository.NewGormImageRepository(db.GormDB),
		Audios:     repository.NewGormAudioRepository(db.GormDB),
		Titles:     repository.NewGormTitleRepository(db.GormDB),
		Homepage:   repository.NewGormHomepageRepository(db.GormDB),
	}
	return repos, func() { db.CloseGormDB() }, nil
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().BoolVar(&serveMemory, "memory", false, "使用内存仓库运行（开发调试用，不连接 MySQL 和 Redis）")
}
