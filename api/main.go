package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
)

const version = "1.0.0"

type config struct {
	port int
	env  string
	db   struct {
		dsn                string
		maxOpenConnections int
		maxIdleConnections int
		maxIdleTime        time.Duration
	}
	smtp struct {
		host     string
		port     int
		username string
		password string
		sender   string
	}
	jwtSecret string
	gemini    struct {
		apiKey string
		model  string
	}
	cors struct {
		trustedOrigin string
	}
}

type application struct {
	config  config
	storage *storage
	mailer  *mailer
	advice  adviceProvider
	now     func() time.Time
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	var cfg config
	flag.IntVar(&cfg.port, "port", 5000, "Server Port")
	flag.StringVar(&cfg.env, "env", "development", "Environment [development|production]")

	flag.StringVar(&cfg.db.dsn, "db-dsn", os.Getenv("DB_DSN"), "PostgreSQL DSN")
	flag.IntVar(&cfg.db.maxOpenConnections, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.IntVar(&cfg.db.maxIdleConnections, "db-max-idle-conns", 25, "PostgreSQL max idle connections")
	var maxIdleTime string
	flag.StringVar(&maxIdleTime, "db-max-idle-time", "15m", "PostgreSQL max connection idle time")

	flag.StringVar(&cfg.smtp.host, "smtp-host", os.Getenv("SMTP_HOST"), "SMTP host (leave empty to disable mail)")
	var smtpPort string
	flag.StringVar(&smtpPort, "smtp-port", os.Getenv("SMTP_PORT"), "SMTP port")
	flag.StringVar(&cfg.smtp.username, "smtp-username", os.Getenv("SMTP_USERNAME"), "SMTP username")
	flag.StringVar(&cfg.smtp.password, "smtp-password", os.Getenv("SMTP_PASSWORD"), "SMTP password")
	flag.StringVar(&cfg.smtp.sender, "smtp-sender", os.Getenv("SMTP_SENDER"), "SMTP sender")

	flag.StringVar(&cfg.jwtSecret, "jwt-secret", os.Getenv("JWT_SECRET"), "JWT secret")
	flag.StringVar(&cfg.gemini.apiKey, "gemini-api-key", os.Getenv("GEMINI_API_KEY"), "Gemini API key")
	flag.StringVar(&cfg.gemini.model, "gemini-model", "gemini-2.5-flash", "Gemini model")
	flag.StringVar(&cfg.cors.trustedOrigin, "cors-trusted-origin", "http://localhost:3000", "Trusted CORS origin")
	flag.Parse()

	d, err := time.ParseDuration(maxIdleTime)
	if err != nil {
		cfg.db.maxIdleTime = 15 * time.Minute
		log.Printf(`invalid value %s for flag "db-max-idle-time" defaulting to %s`, maxIdleTime, cfg.db.maxIdleTime)
	} else {
		cfg.db.maxIdleTime = d
	}

	if smtpPort != "" {
		p, err := strconv.Atoi(smtpPort)
		if err != nil {
			log.Fatal(err)
		}
		cfg.smtp.port = p
	} else {
		cfg.smtp.port = 25
	}

	db, err := openDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("established a connection with database")

	storage := newStorage(db)
	err = storage.ensureSchema()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.jwtSecret == "" {
		secret := make([]byte, 32)
		_, err = rand.Read(secret[:])
		if err != nil {
			log.Fatal(err)
		}
		cfg.jwtSecret = string(secret)
	}

	app := &application{
		config:  cfg,
		storage: storage,
		advice:  newGeminiProvider(cfg.gemini.apiKey, cfg.gemini.model),
		now:     time.Now,
	}
	if cfg.smtp.host != "" {
		app.mailer = newMailer(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.port),
		Handler:      composeRoutes(app),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	log.Printf("Starting %s server on port %d\n", cfg.env, cfg.port)
	err = srv.ListenAndServe()
	log.Fatal(err)
}
