package main

import (
	"errors"
	"flag"
	"time"

	"github.com/station-rewards/internal/config"
	"github.com/station-rewards/internal/logger"
	"github.com/station-rewards/internal/models"
	"github.com/station-rewards/internal/queue"
	"github.com/station-rewards/internal/repository"
	"github.com/station-rewards/internal/service"

	"gorm.io/gorm"
)

var seedStations = []models.Station{
	{Code: "A-100", Name: "Aramco Station A", Address: "King Fahd Rd", Latitude: 24.7136, Longitude: 46.6753, IsActive: true},
	{Code: "B-200", Name: "Aramco Station B", Address: "Olaya St", Latitude: 24.716, Longitude: 46.68, IsActive: true},
	{Code: "C-300", Name: "Aramco Station C", Address: "Takhassusi St", Latitude: 24.718, Longitude: 46.6825, IsActive: true},
}

type demoReview struct {
	station string
	name    string
	contact string
	rating  int
	comment string
}

var demoReviews = []demoReview{
	{station: "A-100", name: "Sara", contact: "+966500000001", rating: 5, comment: "Fast and friendly"},
	{station: "A-100", name: "Omar", contact: "omar@example.com", rating: 4, comment: "Clean restrooms"},
	{station: "B-200", name: "Lina", contact: "+966500000002", rating: 3, comment: "Queue was long"},
	{station: "C-300", name: "Fahad", contact: "+966500000003", rating: 5, comment: ""},
}

func main() {
	var demo bool
	flag.BoolVar(&demo, "demo", false, "同时写入演示评价")
	flag.Parse()

	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	for _, station := range seedStations {
		var existing models.Station
		err := models.DB.Unscoped().Where("code = ?", station.Code).First(&existing).Error
		switch {
		case err == nil:
			stdLog.Printf("Station already exists: %s", station.Code)
		case errors.Is(err, gorm.ErrRecordNotFound):
			station := station
			if err := models.DB.Create(&station).Error; err != nil {
				stdLog.Printf("Failed to create station %s: %v", station.Code, err)
				continue
			}
			stdLog.Printf("Created station: %s (%s)", station.Code, station.Name)
		default:
			stdLog.Printf("Failed to load station %s: %v", station.Code, err)
		}
	}

	if !demo {
		stdLog.Printf("Seed completed")
		return
	}

	// 演示评价走正式提交流程，冷却与发券规则同样生效
	queueClient, err := queue.NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		stdLog.Fatalf("Failed to create queue client: %v", err)
	}
	rewards := cfg.Rewards.Normalize()
	stationRepo := repository.NewStationRepository(models.DB)
	customerRepo := repository.NewCustomerRepository(models.DB)
	reviewRepo := repository.NewReviewRepository(models.DB)
	couponRepo := repository.NewCouponRepository(models.DB)
	visits := service.NewVisitCounter(rewards.VisitThreshold)
	issuer := service.NewCouponIssuer(rewards, couponRepo, customerRepo, stationRepo, reviewRepo, queueClient)
	reviews := service.NewReviewService(rewards, reviewRepo, customerRepo, stationRepo, visits, issuer)

	now := time.Now()
	for _, item := range demoReviews {
		result, err := reviews.SubmitReview(service.SubmitReviewInput{
			StationRef: item.station,
			Rating:     item.rating,
			Comment:    item.comment,
			Name:       item.name,
			Contact:    item.contact,
		}, now)
		if err != nil {
			var cooldown *service.CooldownError
			if errors.As(err, &cooldown) {
				stdLog.Printf("Skip demo review for %s: cooldown %s", item.contact, cooldown.RetryAfter.Round(time.Minute))
				continue
			}
			stdLog.Printf("Failed to submit demo review for %s: %v", item.contact, err)
			continue
		}
		stdLog.Printf("Demo review #%d at %s: visits=%d left=%d", result.Review.ID, item.station, result.Visits, result.VisitsLeft)
	}
	stdLog.Printf("Seed completed")
}
