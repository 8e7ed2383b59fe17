package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/matludke/tempocerto/apps/api/echo"
	"github.com/matludke/tempocerto/core"
	"github.com/matludke/tempocerto/core/activity"
	"github.com/matludke/tempocerto/core/study"
	"github.com/matludke/tempocerto/core/user"
	emailsvc "github.com/matludke/tempocerto/services/email"
	logsvc "github.com/matludke/tempocerto/services/logger"
	textgensvc "github.com/matludke/tempocerto/services/textgen"
	"github.com/matludke/tempocerto/storage/database"
	"github.com/matludke/tempocerto/storage/database/sqlxrepos"
)

// TODO:
// - APM/Tracing
// - rate limiting on the login-code endpoints
func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, core.Conf)
	logger.Enable(!core.Conf.Debug)

	// set up DB
	db, err := database.Open(core.Conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() { _ = db.Close() }()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	textGen := textgensvc.NewOpenAIService(logger)

	usrSvc := user.NewService(
		sqlxrepos.NewUserRepository(db),
		sqlxrepos.NewCodeRepository(db),
		mailSvc,
		textGen,
		logger,
	)
	actSvc := activity.NewService(sqlxrepos.NewActivityRepository(db))
	studySvc := study.NewService(sqlxrepos.NewStudyRepository(db), actSvc, textGen)

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(
		&echoapi.Options{
			Address:        core.Conf.Server.Address(),
			UserSvc:        usrSvc,
			ActivitySvc:    actSvc,
			StudySvc:       studySvc,
			Logger:         logger,
			SignalShutdown: func() { shutdown <- syscall.SIGTERM },
		},
	)
	go server.Start()

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}
