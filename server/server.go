package server

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/viper"
	"github.com/vigil-app/vigil/server/auth/key"
	"github.com/vigil-app/vigil/server/logger"
	"github.com/vigil-app/vigil/server/mailer"
	"github.com/vigil-app/vigil/server/models"
	"github.com/vigil-app/vigil/server/overdue"
	"github.com/vigil-app/vigil/server/work"
	"github.com/vigil-app/vigil/shared"
)

var (
	logg     = logger.NewLogger()
	validate *validator.Validate

	appConfig      *shared.ServerConfig
	authKeyPair    *key.KeyPair
	mailClient     *mailer.Client
	overdueChecker *overdue.Checker
	workerPool     *work.WorkerPoolAdapter
	serverRootDir  string
)

func init() {
	validate = validator.New()
	fatalOnError(RegisterValidators(validate))
}

func Start(config *viper.Viper, devMode, testMode bool) {
	appConfig = parseServerConfig(config)
	serverRootDir = configDirectory(devMode)

	fatalOnError(models.AutoMigrate(appConfig.Sqlite.PassPhrase, serverRootDir))

	var err error
	authKeyPair, err = key.NewKeyPairFromRSAPrivateKeyPem(appConfig.Vigil.PrivateKeyPem)
	fatalOnError(err)

	mailClient = mailer.NewClient(appConfig.Mailer, testMode)
	overdueChecker = overdue.NewChecker(mailClient)

	workerPool = work.NewWorkerAdapter(appConfig.Vigil.Cron.TimeZone)
	registerJobHandlers(workerPool)
	enqueueJobs(workerPool)
	fatalOnError(workerPool.Start())

	router := mux.NewRouter()
	registerRoutes(router)

	// OPTIONS preflights get an empty 200 so browser clients & external
	// schedulers can hit any endpoint cross-origin
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:       []string{"Authorization", "Content-Type"},
		OptionsSuccessStatus: http.StatusOK,
	}).Handler(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%v", appConfig.Vigil.Listener.Port),
		Handler: corsHandler,
	}
	go serve(server)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	cleanup(workerPool, server, sqliteBackupEnabled())
}

func registerRoutes(router *mux.Router) {
	router.Use(loggingMiddleware, initialContextMiddleware)

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.HandleFunc("/login", logIn).Methods("POST")
	router.HandleFunc("/.well-known/jwks.json", jwks).Methods("GET")

	// Any method runs a cycle - the trigger is "run one batch now"
	router.HandleFunc("/jobs/check-overdue", checkOverdue)

	userRouter := router.PathPrefix("/users/{uid}").Subrouter()
	userRouter.Use(protectedRouteMiddleware)
	userRouter.HandleFunc("", findUser).Methods("GET")
	userRouter.HandleFunc("", updateUser).Methods("PATCH")
	userRouter.HandleFunc("", deleteUser).Methods("DELETE")
	userRouter.HandleFunc("/checkins", createCheckin).Methods("POST")
	userRouter.HandleFunc("/checkins", findCheckins).Methods("GET")
	userRouter.HandleFunc("/alerts", findAlerts).Methods("GET")
	userRouter.HandleFunc("/contacts", createContact).Methods("POST")
	userRouter.HandleFunc("/contacts", findContacts).Methods("GET")
	userRouter.HandleFunc("/contacts/{id}", updateContact).Methods("PUT")
	userRouter.HandleFunc("/contacts/{id}", deleteContact).Methods("DELETE")
	userRouter.HandleFunc("/checkin_settings", updateCheckinSettings).Methods("PUT")

	createUserRouter := router.PathPrefix("/users").Subrouter()
	createUserRouter.Use(adminRouteMiddleware)
	createUserRouter.HandleFunc("", createUser).Methods("POST")
}
