package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yashrajoria/lezzetli-admin/auth"
	apperrors "github.com/yashrajoria/lezzetli-admin/common/errors"
	"github.com/yashrajoria/lezzetli-admin/common/logger"
	commonmw "github.com/yashrajoria/lezzetli-admin/common/middleware"
	"github.com/yashrajoria/lezzetli-admin/consumer"
	"github.com/yashrajoria/lezzetli-admin/controllers"
	"github.com/yashrajoria/lezzetli-admin/metrics"
	"github.com/yashrajoria/lezzetli-admin/middleware"
	aws_pkg "github.com/yashrajoria/lezzetli-admin/pkg/aws"
	ddb "github.com/yashrajoria/lezzetli-admin/pkg/dynamodb"
	"github.com/yashrajoria/lezzetli-admin/repository"
	"github.com/yashrajoria/lezzetli-admin/routes"
	"github.com/yashrajoria/lezzetli-admin/sender"
	"github.com/yashrajoria/lezzetli-admin/services"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const serviceName = "lezzetli-admin"

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		panic("config load failed: " + err.Error())
	}

	// --- AWS setup ---
	awsCfg, err := aws_pkg.LoadAWSConfig(context.Background(), aws_pkg.Options{
		Region:   cfg.AWSRegion,
		Endpoint: cfg.AWSEndpoint,
	})
	if err != nil {
		panic("failed to load AWS config: " + err.Error())
	}

	// --- Logging (CloudWatch Logs is non-fatal) ---
	var cwWriter *aws_pkg.CloudWatchLogsClient
	if cfg.CloudWatchEnabled {
		cwWriter, err = aws_pkg.NewCloudWatchLogsClient(context.Background(), awsCfg, "/lezzetli/"+serviceName, serviceName)
		if err != nil {
			cwWriter = nil
		}
	}
	var log *zap.Logger
	if cwWriter != nil {
		log = logger.InitializeWithWriter(cfg.AppEnv, cwWriter)
	} else {
		log = logger.Initialize(cfg.AppEnv)
	}
	defer log.Sync()
	if cfg.CloudWatchEnabled && cwWriter == nil {
		log.Warn("CloudWatch Logs writer init failed (non-fatal)")
	}

	// --- Document store ---
	var (
		base        repository.Store
		mongoClient *mongo.Client
	)
	switch cfg.StoreDriver {
	case DriverMongo:
		mongoClient, err = repository.ConnectMongo(context.Background(), cfg.MongoURL)
		if err != nil {
			log.Fatal("MongoDB connection failed", zap.Error(err))
		}
		base = repository.NewMongoStore(mongoClient.Database(cfg.MongoDBName))
	case DriverMemory:
		log.Warn("using in-memory store; data is lost on restart")
		base = repository.NewMemoryStore()
	default:
		base = repository.NewDynamoStore(ddb.NewClient(awsCfg, cfg.AWSEndpoint), cfg.DDBTablePrefix)
	}
	policy := repository.DefaultRetryPolicy()
	policy.Timeout = cfg.StoreTimeout
	policy.Retries = uint64(cfg.StoreRetries)
	store := repository.NewRetryStore(base, policy)

	// --- Credentials ---
	var denylist auth.Denylist
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		redisClient = redis.NewClient(opts)
		denylist = auth.NewRedisDenylist(redisClient)
	} else {
		log.Warn("REDIS_URL not set; revoked sessions are tracked in memory")
		denylist = auth.NewMemoryDenylist()
	}
	secret := []byte(cfg.JWTSecret)
	verifier := auth.NewVerifier(secret, denylist)
	issuer := auth.NewIssuer(secret, cfg.TokenTTL)
	hasher := auth.BcryptHasher{}

	// --- AWS collaborators ---
	objects := aws_pkg.NewObjectStore(awsCfg, cfg.S3Bucket, cfg.S3Endpoint, cfg.CloudFrontDomain)
	metricsClient := aws_pkg.NewMetricsClient(awsCfg, "", cfg.CloudWatchEnabled)

	var events services.EventPublisher
	if cfg.OrderEventsTopicARN != "" {
		events = aws_pkg.NewSNSPublisher(awsCfg, cfg.OrderEventsTopicARN)
	} else {
		log.Warn("ORDER_EVENTS_TOPIC_ARN not set; domain events are not published")
	}

	var smtpSender *sender.SMTPSender
	if cfg.SMTPConfigured() {
		smtpSender, err = sender.NewSMTPSender(sender.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
		})
		if err != nil {
			log.Fatal("Failed to init SMTP sender", zap.Error(err))
		}
	}

	var (
		mailer        services.WelcomeMailer
		emailConsumer *consumer.EmailConsumer
	)
	switch {
	case cfg.EmailQueueURL != "":
		queue := aws_pkg.NewQueue(awsCfg, cfg.EmailQueueURL)
		mailer = sender.NewQueueMailer(queue)
		if smtpSender != nil {
			emailConsumer = consumer.NewEmailConsumer(queue, smtpSender, log)
		} else {
			log.Warn("EMAIL_QUEUE_URL set without SMTP credentials; queued e-mails are not consumed here")
		}
	case smtpSender != nil:
		mailer = sender.NewDirectMailer(smtpSender)
	default:
		log.Warn("no mail transport configured; welcome e-mails are skipped")
	}

	// --- Dependency injection ---
	resolver := services.NewResolver(store, cfg.ResolveConcurrency, log)
	orderService := services.NewOrderService(store, resolver, events, metricsClient, services.OrderConfig{PageSize: cfg.OrdersPageSize}, log)
	menuService := services.NewMenuService(store, resolver, log)
	menuItemService := services.NewMenuItemService(store, objects, log)
	companyService := services.NewCompanyService(store, hasher, objects, mailer, events, metricsClient, log)
	partyService := services.NewPartyService(store, resolver, log)
	dashboardService := services.NewDashboardService(store)
	authService := services.NewAuthService(store, hasher, issuer, verifier, denylist, log)

	ctrl := routes.Controllers{
		Auth:      controllers.NewAuthController(authService),
		Dashboard: controllers.NewDashboardController(dashboardService),
		Orders:    controllers.NewOrderController(orderService),
		Menus:     controllers.NewMenuController(menuService),
		MenuItems: controllers.NewMenuItemController(menuItemService),
		Companies: controllers.NewCompanyController(companyService),
		Users:     controllers.NewUserController(partyService),
	}

	// --- HTTP router ---
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(commonmw.RequestLogger(log))
	r.Use(commonmw.Timeout(30 * time.Second))
	r.Use(commonmw.SecurityHeaders())
	r.Use(commonmw.CORS(cfg.AllowedOrigins))
	r.Use(metrics.Middleware())
	r.Use(commonmw.MetricsMiddleware(metricsClient, serviceName))
	r.Use(middleware.Flash(middleware.CookieOptions{Secure: cfg.CookieSecure}))
	r.Use(apperrors.ErrorMiddleware())

	r.GET("/metrics", metrics.Handler())

	loginLimiter := commonmw.NewRateLimiter(rate.Every(6*time.Second), 5, 10*time.Minute)
	routes.RegisterRoutes(r, ctrl, verifier, commonmw.RateLimit(loginLimiter))

	// --- E-mail consumer ---
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()
	if emailConsumer != nil {
		go emailConsumer.Start(consumerCtx)
	}

	// --- HTTP server ---
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("Admin service started", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	consumerCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if mongoClient != nil {
		if err := repository.DisconnectMongo(mongoClient); err != nil {
			log.Error("MongoDB disconnect error", zap.Error(err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Redis close error", zap.Error(err))
		}
	}

	log.Info("Admin service stopped gracefully")
}
