package container

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/printdesk/pd-backend/internal/api"
	"github.com/printdesk/pd-backend/internal/auth"
	"github.com/printdesk/pd-backend/internal/aws"
	"github.com/printdesk/pd-backend/internal/config"
	"github.com/printdesk/pd-backend/internal/database"
	"github.com/printdesk/pd-backend/internal/fleet"
	"github.com/printdesk/pd-backend/internal/logging"
	"github.com/printdesk/pd-backend/internal/media"
	"github.com/printdesk/pd-backend/internal/notifications"
	"github.com/printdesk/pd-backend/internal/queue"
	"github.com/printdesk/pd-backend/internal/settings"
)

const emailTemplateDir = "templates/email"

type Container struct {
	Config        *config.Config
	Database      *database.Database
	Queue         *queue.TaskQueue
	RedisClient   *redis.Client
	AuthService   *auth.AuthService
	Authenticator *auth.Authenticator
	Authorizer    *auth.Authorizer
	Fleet         *fleet.Service
	Notifier      *notifications.NotificationDispatcher
	Media         *media.Service
	Settings      *settings.Watcher
	S3Service     *aws.S3Service
	EmailService  *aws.SESService
	Server        *api.Server
	Worker        *queue.Worker
}

func New(cfg config.Config) (*Container, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}

	taskQueue, err := queue.NewQueue(&cfg.Redis)
	if err != nil {
		return nil, err
	}

	// Two separate Redis connection pools are used: the asynq task
	// queue manages its own connection, and this client is used for
	// auth state (OTP hashes, refresh tokens) and the settings channel.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	jwtService, err := auth.NewJWTService([]byte(cfg.JWT.SigningKey), cfg.JWT.Issuer, cfg.JWT.Expiry)
	if err != nil {
		return nil, err
	}

	authService := auth.NewAuthService(redisClient, jwtService, db.Store(), cfg.Auth)
	authenticator := auth.NewAuthenticator(jwtService, db.Store())
	authorizer := auth.NewAuthorizer()

	fleetService := fleet.NewService(db.Store())

	sesService, err := aws.NewSESService(context.Background(), cfg.AWS)
	if err != nil {
		return nil, err
	}

	s3Service, err := aws.NewS3Service(context.Background(), cfg.AWS)
	if err != nil {
		return nil, err
	}

	// localstack-specific config (buckets are not managed by app in prod)
	if cfg.AWS.EndpointURL != "" {
		if err := s3Service.CreateBucket(context.Background()); err != nil {
			logging.Info("S3 bucket creation attempted", "bucket", cfg.AWS.Bucket, "result", err)
		}
	}

	mediaService := media.NewService(s3Service)

	emailTemplates, err := notifications.LoadTemplates(emailTemplateDir)
	if err != nil {
		return nil, err
	}
	notificationService := notifications.NewNotificationService(db.Store())
	dispatcher := notifications.NewNotificationDispatcher(
		notificationService,
		taskQueue,
		emailTemplates,
		notifications.NewEmailLookupFunc(db.Store()),
	)

	settingsWatcher := settings.NewWatcher(db.Store(), redisClient)

	worker := queue.NewWorker(&cfg.Redis, sesService)

	server := api.NewServer(db, fleetService, authService, authorizer, dispatcher, mediaService, taskQueue, settingsWatcher)

	logging.Info("Connected to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port)

	return &Container{
		Config:        &cfg,
		Database:      db,
		Queue:         taskQueue,
		RedisClient:   redisClient,
		AuthService:   authService,
		Authenticator: authenticator,
		Authorizer:    authorizer,
		Fleet:         fleetService,
		Notifier:      dispatcher,
		Media:         mediaService,
		Settings:      settingsWatcher,
		S3Service:     s3Service,
		EmailService:  sesService,
		Server:        server,
		Worker:        worker,
	}, nil
}

func (c *Container) Cleanup() {
	if c.Queue != nil {
		c.Queue.Close()
		logging.Info("Queue client closed")
	}
	if c.Worker != nil {
		c.Worker.Close()
		logging.Info("Worker closed")
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
		logging.Info("Redis client closed")
	}
	if c.Database != nil {
		c.Database.Close()
		logging.Info("Database connection closed")
	}
}
