package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"crewsheet/internal/config"
	"crewsheet/internal/handler"
	"crewsheet/internal/logger"
	"crewsheet/internal/middleware"
	"crewsheet/internal/model"
	"crewsheet/internal/service"
	"crewsheet/internal/week"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log)
	middleware.SetSecret(cfg.Auth.JWTSecret)

	epoch, err := cfg.EpochDate()
	if err != nil {
		slog.Error("bad calendar config", "err", err)
		os.Exit(1)
	}
	cal, err := week.Generate(epoch, time.Now(), cfg.Calendar.HorizonMonths)
	if err != nil {
		slog.Error("calendar generation failed", "err", err)
		os.Exit(1)
	}
	weeks := week.NewHolder(cal)
	slog.Info("calendar generated", "epoch", cfg.Calendar.Epoch, "weeks", cal.Len())

	db, err := cfg.OpenGormDB()
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(&model.Member{}, &model.SheetRecord{}); err != nil {
		slog.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	authSvc := service.NewAuthService(db)
	sheetSvc := service.NewTimesheetService(db, weeks)
	notifier := service.NewNotifier(cfg.Notify.WebhookURL, cfg.Notify.ImageHosts)

	authH := handler.NewAuthHandler(authSvc)
	weekH := handler.NewWeekHandler(weeks, epoch, cfg.Calendar.HorizonMonths)
	sheetH := handler.NewSheetHandler(sheetSvc, weeks)
	exportH := handler.NewExportHandler(sheetSvc, weeks)
	importH := handler.NewImportHandler(sheetSvc, authSvc, weeks)
	notifyH := handler.NewNotifyHandler(notifier)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.POST("/api/login", authH.Login)
	api := r.Group("/api", middleware.JWTAuth())
	api.GET("/weeks", weekH.List)
	api.GET("/weeks/current", weekH.Current)
	api.GET("/weeks/for-date", weekH.ForDate)
	api.GET("/weeks/:id", weekH.Get)
	api.POST("/weeks/regenerate", weekH.Regenerate)
	api.GET("/months", weekH.Months)
	api.GET("/teams/:team/weeks/:week/sheets", sheetH.ListWeek)
	api.GET("/teams/:team/weeks/:week/sheets/:member", sheetH.Get)
	api.PUT("/teams/:team/weeks/:week/sheets/:member", sheetH.Put)
	api.DELETE("/teams/:team/weeks/:week/sheets/:member", sheetH.Delete)
	api.GET("/teams/:team/dashboard", sheetH.Dashboard)
	api.GET("/teams/:team/weeks/:week/export", exportH.Week)
	api.POST("/teams/:team/import/preview", importH.Preview)
	api.POST("/teams/:team/import/confirm", importH.Confirm)
	api.POST("/notify", notifyH.Send)

	slog.Info("server starting", "addr", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		slog.Error("server failed", "err", err)
	}
}
