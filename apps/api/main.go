package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/neolearn/neolearn/apps/api/echo"
	"github.com/neolearn/neolearn/core"
	"github.com/neolearn/neolearn/core/progress"
	"github.com/neolearn/neolearn/core/session"
	"github.com/neolearn/neolearn/core/topic"
	"github.com/neolearn/neolearn/core/user"
	emailsvc "github.com/neolearn/neolearn/services/email"
	logsvc "github.com/neolearn/neolearn/services/logger"
	tutorsvc "github.com/neolearn/neolearn/services/tutor"
	"github.com/neolearn/neolearn/storage/database"
	sqliterepos "github.com/neolearn/neolearn/storage/database/sqlite"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()
	if err = database.Migrate(db); err != nil {
		logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrSvc := user.NewService(sqliterepos.NewUserRepository(db), mailSvc, conf)
	topicSvc := topic.NewService(sqliterepos.NewTopicRepository(db))
	progressSvc := progress.NewService(sqliterepos.NewProgressRepository(db))

	if conf.Tutor.APIKey == "" {
		logger.Error("no tutor API key configured; chat turns will fail until one is set")
	}
	tutorClient := tutorsvc.NewGeminiClient(conf)

	convStore := session.NewStore()
	chat := session.NewController(convStore, topicSvc, progressSvc, tutorClient)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// sweep idle conversations
	scheduler := gocron.NewScheduler(time.UTC)
	_, err = scheduler.Every(conf.Session.SweepEvery).Do(func() {
		if n := convStore.DeleteIdle(conf.Session.TTL); n > 0 {
			logger.Info(fmt.Sprintf("swept %d idle conversation(s)", n))
		}
	})
	if err != nil {
		logger.Fatal(fmt.Sprintf("scheduling conversation sweeper: %v", err), err)
	}
	scheduler.StartAsync()
	defer scheduler.Stop()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:        conf,
			Logger:      logger,
			UserSvc:     usrSvc,
			TopicSvc:    topicSvc,
			ProgressSvc: progressSvc,
			Chat:        chat,
			Validate:    validate,
			Translator:  translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
