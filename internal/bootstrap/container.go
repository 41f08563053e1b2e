package bootstrap

import (
	"context"

	"github.com/framekeep/framekeep/internal/config"
	"github.com/framekeep/framekeep/internal/infra/blob"
	"github.com/framekeep/framekeep/internal/infra/cache"
	"github.com/framekeep/framekeep/internal/infra/db"
	"github.com/framekeep/framekeep/internal/infra/logger"
	"github.com/framekeep/framekeep/internal/infra/notify"
	"github.com/framekeep/framekeep/internal/infra/queue"
	"github.com/framekeep/framekeep/internal/modules/handler"
	"github.com/framekeep/framekeep/internal/modules/model"
	"github.com/framekeep/framekeep/internal/modules/repo"
	"github.com/framekeep/framekeep/internal/modules/service"
	"github.com/framekeep/framekeep/internal/worker"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		// [optional] auto migrate
		if cfg.Database.AutoMigrate {
			_ = d.AutoMigrate(
				&model.User{},
				&model.Library{},
				&model.Album{},
				&model.Stack{},
				&model.Asset{},
				&model.Exif{},
			)
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return cache.New(cfg), nil
	})

	// RabbitMQ connection + job publisher
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return amqp.Dial(cfg.RabbitMQ.URL)
	})
	do.Provide(inj, func(i *do.Injector) (*queue.Publisher, error) {
		return queue.NewPublisher(
			do.MustInvoke[*amqp.Connection](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		)
	})

	// S3
	do.Provide(inj, func(i *do.Injector) (*blob.S3Deps, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return blob.NewS3(context.Background(), cfg)
	})

	// Notification sink
	do.Provide(inj, func(i *do.Injector) (notify.Sender, error) {
		return notify.NewRedisSender(
			do.MustInvoke[*redis.Client](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.AssetRepo, error) {
		return repo.NewAssetRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.StackRepo, error) {
		return repo.NewStackRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.UserRepo, error) {
		return repo.NewUserRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.AccessRepo, error) {
		return repo.NewAccessRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.AccessChecker, error) {
		return service.NewAccessChecker(do.MustInvoke[repo.AccessRepo](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.StackService, error) {
		return service.NewStackService(
			do.MustInvoke[repo.AssetRepo](i),
			do.MustInvoke[repo.StackRepo](i),
			do.MustInvoke[service.AccessChecker](i),
			do.MustInvoke[notify.Sender](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.AssetService, error) {
		return service.NewAssetService(
			do.MustInvoke[repo.AssetRepo](i),
			do.MustInvoke[repo.StackRepo](i),
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[service.AccessChecker](i),
			do.MustInvoke[*queue.Publisher](i),
			do.MustInvoke[notify.Sender](i),
			do.MustInvoke[*blob.S3Deps](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.TrashService, error) {
		return service.NewTrashService(
			do.MustInvoke[repo.AssetRepo](i),
			do.MustInvoke[*queue.Publisher](i),
			do.MustInvoke[notify.Sender](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.DownloadService, error) {
		return service.NewDownloadService(
			do.MustInvoke[repo.AssetRepo](i),
			do.MustInvoke[service.AccessChecker](i),
			do.MustInvoke[*blob.S3Deps](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Worker
	do.Provide(inj, func(i *do.Injector) (*worker.Worker, error) {
		return worker.New(
			do.MustInvoke[*amqp.Connection](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[service.AssetService](i),
			do.MustInvoke[*blob.S3Deps](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.AssetHandler, error) {
		return handler.NewAssetHandler(do.MustInvoke[service.AssetService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.StackHandler, error) {
		return handler.NewStackHandler(do.MustInvoke[service.StackService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.TrashHandler, error) {
		return handler.NewTrashHandler(do.MustInvoke[service.TrashService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.DownloadHandler, error) {
		return handler.NewDownloadHandler(do.MustInvoke[service.DownloadService](i)), nil
	})

	return inj
}
