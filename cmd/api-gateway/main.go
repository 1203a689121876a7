package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/walideltayeh/school-booking-api/api/swagger"
	"github.com/walideltayeh/school-booking-api/internal/handler"
	"github.com/walideltayeh/school-booking-api/internal/middleware"
	"github.com/walideltayeh/school-booking-api/internal/repository"
	"github.com/walideltayeh/school-booking-api/internal/service"
	"github.com/walideltayeh/school-booking-api/pkg/cache"
	"github.com/walideltayeh/school-booking-api/pkg/config"
	"github.com/walideltayeh/school-booking-api/pkg/database"
	"github.com/walideltayeh/school-booking-api/pkg/logger"
	corsmiddleware "github.com/walideltayeh/school-booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/walideltayeh/school-booking-api/pkg/middleware/requestid"
)

// @title School Booking API
// @version 0.1.0
// @description Room/time booking and conflict resolution engine
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var cacheRepo *repository.CacheRepository
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
	} else {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
	}

	validate := validator.New()

	bookingRepo := repository.NewBookingRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	sectionRepo := repository.NewClassSectionRepository(db)

	metricsSvc := service.NewMetricsService()
	conflictSvc := service.NewConflictService(bookingRepo, periodRepo, sectionRepo, logr)
	bookingSvc := service.NewBookingService(bookingRepo, conflictSvc, periodRepo, roomRepo, sectionRepo, metricsSvc, validate, logr)
	periodSvc := service.NewPeriodService(periodRepo, validate, logr)
	sectionSvc := service.NewClassSectionService(sectionRepo, logr)

	var roomSvc *service.RoomService
	var suggestionSvc *service.SuggestionService
	if cacheRepo != nil {
		roomSvc = service.NewRoomService(roomRepo, cacheRepo, validate, logr)
		suggestionSvc = service.NewSuggestionService(roomRepo, sectionRepo, conflictSvc, cacheRepo, cfg.Booking.RoomCacheTTL, validate, logr)
	} else {
		roomSvc = service.NewRoomService(roomRepo, nil, validate, logr)
		suggestionSvc = service.NewSuggestionService(roomRepo, sectionRepo, conflictSvc, nil, cfg.Booking.RoomCacheTTL, validate, logr)
	}

	var exportSvc *service.ScheduleExportService
	if cfg.Booking.ExportEnabled {
		exportSvc = service.NewScheduleExportService(bookingRepo, roomRepo, nil, nil, logr)
	}

	bookingHandler := handler.NewBookingHandler(bookingSvc)
	roomHandler := handler.NewRoomHandler(roomSvc, suggestionSvc, bookingSvc, exportSvc)
	periodHandler := handler.NewPeriodHandler(periodSvc)
	sectionHandler := handler.NewClassSectionHandler(sectionSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/bookings", bookingHandler.List)
		api.POST("/bookings", bookingHandler.Commit)
		api.POST("/bookings/check", bookingHandler.Check)
		api.POST("/bookings/batch-delete", bookingHandler.DeleteBatch)
		api.GET("/bookings/:id", bookingHandler.Get)
		api.PUT("/bookings/:id", bookingHandler.Update)
		api.DELETE("/bookings/:id", bookingHandler.Delete)

		api.GET("/rooms", roomHandler.List)
		api.POST("/rooms", roomHandler.Create)
		api.POST("/rooms/suggestions", roomHandler.Suggest)
		api.GET("/rooms/:id", roomHandler.Get)
		api.PUT("/rooms/:id", roomHandler.Update)
		api.DELETE("/rooms/:id", roomHandler.Delete)
		api.GET("/rooms/:id/bookings", roomHandler.Bookings)
		api.GET("/rooms/:id/bookings/export", roomHandler.Export)

		api.GET("/periods", periodHandler.List)
		api.POST("/periods", periodHandler.Create)

		api.GET("/class-sections/:id", sectionHandler.Get)
		api.GET("/class-sections/:id/bookings", bookingHandler.ListByClassSection)
		api.GET("/teachers/:id/class-sections", sectionHandler.ListByTeacher)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
