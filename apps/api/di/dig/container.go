package dig_container

import (
	"context"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/ratiba/apps/api/echo"
	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/roster"
	"github.com/trezcool/ratiba/core/schedule"
	emailsvc "github.com/trezcool/ratiba/services/email"
	logsvc "github.com/trezcool/ratiba/services/logger"
	notifysvc "github.com/trezcool/ratiba/services/notify"
	"github.com/trezcool/ratiba/storage"
	"github.com/trezcool/ratiba/storage/lock"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// StoreCloser releases the store connections.
	StoreCloser func() error

	Stores struct {
		dig.Out
		Entries schedule.Repository
		Roster  roster.Repository
		Close   StoreCloser
	}

	scheduleServiceParams struct {
		dig.In
		Entries    schedule.Repository
		Directory  *roster.Service
		Validate   *validator.Validate
		Translator ut.Translator
		Logger     core.Logger
		Locker     schedule.Locker
		Notifier   schedule.Notifier
	}
)

func newNamedLogger(conf *core.Config, name string) core.Logger {
	zapLogger, err := logsvc.NewZap(conf, name)
	if err != nil {
		log.Fatalf("setting up %s logger: %v", name, err)
	}
	return logsvc.NewRollbarLogger(zapLogger, conf)
}

func newLogger(conf *core.Config) core.Logger {
	return newNamedLogger(conf, "api")
}

func newDBLogger(conf *core.Config) core.Logger {
	return newNamedLogger(conf, "db")
}

func newStores(conf *core.Config, loggerParam DBLoggerParam) Stores {
	logger := loggerParam.Logger
	if conf.Database.Engine == core.EngineMemory {
		logger.Warn("using the in-memory store: data is lost on shutdown")
	}

	stores, err := storage.Open(context.Background(), conf, storage.Options{Migrate: true})
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up %s store: %v", conf.Database.Engine, err), err)
	}
	return Stores{
		Entries: stores.Entries,
		Roster:  stores.Roster,
		Close:   func() error { return stores.Close(context.Background()) },
	}
}

// newLocker uses Redis when configured, so that every API instance shares the locks.
func newLocker(conf *core.Config, logger core.Logger) schedule.Locker {
	if conf.Redis.Addr == "" {
		return lock.NewLocal()
	}
	client, err := lock.NewRedisClient(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up redis: %v", err), err)
	}
	return lock.NewRedis(client, conf.Redis.LockTTL)
}

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)
	return validate, translator
}

func newNotifier(
	conf *core.Config,
	email core.EmailService,
	directory *roster.Service,
	entries schedule.Repository,
	logger core.Logger,
) schedule.Notifier {
	if !conf.NotifyTeachers {
		return nil
	}
	return notifysvc.NewMailNotifier(email, directory, entries, logger)
}

func newScheduleService(p scheduleServiceParams) *schedule.Service {
	return schedule.NewService(schedule.ServiceDeps{
		Repo:       p.Entries,
		Directory:  p.Directory,
		Validate:   p.Validate,
		Translator: p.Translator,
		Logger:     p.Logger,
		Locker:     p.Locker,
		Notifier:   p.Notifier,
	})
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	scheduleSvc *schedule.Service,
	rosterSvc *roster.Service,
	validate *validator.Validate,
	translator ut.Translator,
) *echoapi.Server {
	return echoapi.NewServer(echoapi.Deps{
		Conf:        conf,
		Logger:      logger,
		ScheduleSvc: scheduleSvc,
		RosterSvc:   rosterSvc,
		Validate:    validate,
		Translator:  translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	return NewWithConfig(core.NewConfig)
}

// NewWithConfig is New with a custom config provider.
func NewWithConfig(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStores))
	must(c.Provide(newLocker))
	must(c.Provide(emailsvc.NewService))
	must(c.Provide(newValidator))
	must(c.Provide(roster.NewService))
	must(c.Provide(newNotifier))
	must(c.Provide(newScheduleService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
