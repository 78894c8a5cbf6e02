package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/oklog/run"
	"github.com/peterbourgon/ff"
	"github.com/sentriz/gormstore"

	"go.senan.xyz/ams"
	"go.senan.xyz/ams/db"
	"go.senan.xyz/ams/passhash"
	"go.senan.xyz/ams/server/ctrladmin"
	"go.senan.xyz/ams/server/ctrlbase"
	"go.senan.xyz/ams/sessionstore"
)

func main() {
	set := flag.NewFlagSet(ams.Name, flag.ExitOnError)
	confListenAddr := set.String("listen-addr", "0.0.0.0:4848", "listen address (optional)")

	confTLSCert := set.String("tls-cert", "", "path to TLS certificate (optional)")
	confTLSKey := set.String("tls-key", "", "path to TLS private key (optional)")

	confDBPath := set.String("db-path", "ams.db", "path to database (optional)")

	confProxyPrefix := set.String("proxy-prefix", "", "url path prefix to use if behind proxy. eg '/ams' (optional)")
	confHTTPLog := set.Bool("http-log", true, "http request logging (optional)")
	confLogLevel := set.String("log-level", "info", "one of debug, info, warn, error (optional)")

	confInitAdminEmail := set.String("init-admin-email", "admin@localhost", "email of the super admin created on first start (optional)")
	confInitAdminPassword := set.String("init-admin-password", "admin", "password of the super admin created on first start (optional)")

	confShowVersion := set.Bool("version", false, "show ams version")
	_ = set.String("config-path", "", "path to config (optional)")

	if err := ff.Parse(set, os.Args[1:],
		ff.WithConfigFileFlag("config-path"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithEnvVarPrefix(ams.NameUpper),
	); err != nil {
		log.Fatal("error parsing args", "err", err)
	}

	if *confShowVersion {
		fmt.Printf("v%s\n", ams.Version)
		os.Exit(0)
	}

	level, err := log.ParseLevel(*confLogLevel)
	if err != nil {
		log.Fatal("invalid log level", "level", *confLogLevel, "err", err)
	}
	log.SetLevel(level)

	dbc, err := db.New(*confDBPath, db.DefaultOptions())
	if err != nil {
		log.Fatal("error opening database", "err", err)
	}
	defer dbc.Close()

	initAdminHash, err := passhash.Hash(*confInitAdminPassword)
	if err != nil {
		log.Fatal("error hashing initial admin password", "err", err)
	}
	err = dbc.Migrate(db.MigrationContext{
		InitAdminEmail:        *confInitAdminEmail,
		InitAdminPasswordHash: initAdminHash,
	})
	if err != nil {
		log.Fatal("error migrating database", "err", err)
	}

	proxyPrefixExpr := regexp.MustCompile(`^\/*(.*?)\/*$`)
	*confProxyPrefix = proxyPrefixExpr.ReplaceAllString(*confProxyPrefix, `/$1`)

	log.Info("starting", "name", ams.Name, "version", ams.Version)
	set.VisitAll(func(f *flag.Flag) {
		if f.Name == "init-admin-password" {
			return
		}
		log.Info("config", "flag", f.Name, "value", f.Value.String())
	})

	flashKey, err := flashSessionKey(dbc)
	if err != nil {
		log.Fatal("error getting flash session key", "err", err)
	}
	flashStore := gormstore.New(dbc.DB, flashKey)
	flashStore.SessionOpts.HttpOnly = true
	flashStore.SessionOpts.SameSite = http.SameSiteLaxMode

	ctrlBase := &ctrlbase.Controller{
		DB:          dbc,
		ProxyPrefix: *confProxyPrefix,
	}
	ctrlAdmin, err := ctrladmin.New(ctrlBase, flashStore, sessionstore.NewMemory())
	if err != nil {
		log.Fatal("error creating admin controller", "err", err)
	}

	mux := mux.NewRouter()
	ctrlbase.AddRoutes(ctrlBase, mux, *confHTTPLog)
	ctrladmin.AddRoutes(ctrlAdmin, mux.PathPrefix("/admin").Subrouter())

	var g run.Group

	server := &http.Server{
		Addr:              *confListenAddr,
		Handler:           mux,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      80 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	g.Add(func() error {
		log.Info("starting job", "job", "http", "addr", *confListenAddr)
		if *confTLSCert != "" && *confTLSKey != "" {
			return server.ListenAndServeTLS(*confTLSCert, *confTLSKey)
		}
		return server.ListenAndServe()
	}, func(_ error) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	})

	done := make(chan struct{})
	g.Add(func() error {
		log.Info("starting job", "job", "flash session clean")
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				flashStore.Cleanup()
			case <-done:
				return nil
			}
		}
	}, func(_ error) {
		close(done)
	})

	g.Add(run.SignalHandler(context.Background(), os.Interrupt, syscall.SIGTERM))

	err = g.Run()
	var sigErr run.SignalError
	switch {
	case errors.As(err, &sigErr):
		log.Info("stopped", "signal", sigErr.Signal)
	case errors.Is(err, http.ErrServerClosed):
	case err != nil:
		log.Fatal("error in job", "err", err)
	}
}

// flashSessionKey returns the key flash cookies are signed with, creating and
// storing one on first start so cookies survive restarts
func flashSessionKey(dbc *db.DB) ([]byte, error) {
	key, err := dbc.GetSetting(db.FlashSessionKey)
	if err != nil {
		return nil, err
	}
	if key != "" {
		return []byte(key), nil
	}
	newKey := securecookie.GenerateRandomKey(32)
	if newKey == nil {
		return nil, errors.New("couldn't generate key")
	}
	if err := dbc.SetSetting(db.FlashSessionKey, string(newKey)); err != nil {
		return nil, err
	}
	return newKey, nil
}
