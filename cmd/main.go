package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dtroode/gophsocial/internal/config"
	"github.com/dtroode/gophsocial/internal/logger"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	flag.Usage = usage
	version := flag.Bool("version", false, "print build information and exit")
	flag.Parse()
	if *version {
		logAppVersion()
		return
	}
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	backend, closeBackend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize snapshot storage", "error", err, "backend", cfg.Persistence.Backend)
	}
	defer closeBackend()

	a, err := newApp(ctx, cfg, logger, backend, os.Stdout)
	if err != nil {
		logger.Fatal("failed to initialize client", "error", err)
	}
	defer a.close()

	if err := a.run(ctx, flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			usage()
			os.Exit(2)
		}
		logger.Error("command failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: %s [flags] <command> [args]

Commands:
  feed [-page N] [-limit N] [-view home|following|all]
  posts -user USERNAME | -tag TAG [-page N] [-limit N]
  my-posts [-page N] [-limit N]
  post -content TEXT -images URL,... -tags TAG,...
  edit POST_ID -content TEXT -images URL,... -tags TAG,...
  remove-image POST_ID IMAGE_ID
  like POST_ID
  bookmark POST_ID
  delete POST_ID
  comments POST_ID
  comment add POST_ID TEXT | edit COMMENT_ID TEXT | delete COMMENT_ID | like COMMENT_ID
  profile [USERNAME]
  update-profile [-first-name X] [-last-name X] [-bio X] [-location X] [-country-code X] [-phone X] [-dob YYYY-MM-DD]
  cover IMAGE_URL
  followers USERNAME
  following USERNAME
  follow ACCOUNT_ID
  bookmarks
  logout
  watch

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
