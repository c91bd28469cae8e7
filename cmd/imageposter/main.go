package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/imageposter/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	prefsPath := flag.String("prefs", "", "override prefs path (optional)")
	envFile := flag.String("env", "", "read credentials from this .env file (defaults to ./.env when present)")
	headless := flag.Bool("headless", false, "publish without the TUI")
	dir := flag.String("dir", "", "directory of images to upload")
	fileList := flag.String("files", "", `image files separated by ", "`)
	title := flag.String("title", "", "post title")
	email := flag.String("email", "", "dtf.ru login")
	token := flag.String("token", "", "osnova-remember session token")
	watermark := flag.Bool("watermark", false, "append the watermark blocks (defaults to the saved choice)")
	noBrowser := flag.Bool("no-browser", false, "do not open the draft in a browser")
	logout := flag.Bool("logout", false, "forget the saved session and exit")
	flag.Parse()

	if *dir != "" && *fileList != "" {
		fmt.Fprintln(os.Stderr, "imageposter: -dir and -files are mutually exclusive")
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		EnvFile:    *envFile,
		Headless:   *headless,
		Source:     *dir,
		Title:      *title,
		Email:      *email,
		Token:      *token,
		NoBrowser:  *noBrowser,
		Logout:     *logout,
	}
	if *fileList != "" {
		opts.Source = *fileList
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "watermark" {
			opts.Watermark = watermark
		}
	})

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "imageposter: %v\n", err)
		return 1
	}
	return 0
}
