package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"

	"popreel/internal/config"
	"popreel/internal/logger"
	"popreel/internal/upload"
)

func main() {
	apiURL := flag.String("api", getEnv("POPREEL_API", "http://localhost:8080"), "PopReel API base URL")
	token := flag.String("token", os.Getenv("POPREEL_TOKEN"), "session token (or use -email/-password)")
	email := flag.String("email", "", "account email")
	password := flag.String("password", os.Getenv("POPREEL_PASSWORD"), "account password")
	title := flag.String("title", "", "video title")
	description := flag.String("description", "", "video description")
	poster := flag.String("poster", "", "optional JPEG/PNG poster image")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] VIDEO\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		logger.SetLevel("debug")
	} else {
		logger.SetLevel("error")
	}

	uploadConfig, err := config.LoadUploadConfig()
	if err != nil {
		log.Fatalf("🚨 Failed to load upload config: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if *token == "" && *email != "" {
		*token, err = upload.Login(ctx, *apiURL, *email, *password)
		if err != nil {
			log.Fatalf("🚨 Login failed: %v", err)
		}
	}

	o := upload.NewOrchestrator(
		upload.PolicyFrom(uploadConfig.Upload),
		upload.NewCredentialClient(*apiURL).WithToken(*token),
		upload.NewStorageTransferer(uploadConfig.Upload.UploadEndpoint, &http.Client{}),
		upload.NewMetadataClient(*apiURL, *token),
		upload.WithObserver(func(s upload.Session) {
			logger.Debugf("session: %s %d%%", s.State, s.Progress)
		}),
	)

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for range interrupts {
			if o.Cancel() {
				fmt.Println("\nCancelling upload... 🛑")
				continue
			}
			stop()
			os.Exit(130)
		}
	}()

	file, err := upload.OpenLocalFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("🚨 %v", err)
	}

	stdin := bufio.NewReader(os.Stdin)
	*title, *description = fillDetails(stdin, os.Stdout, *title, *description)
	if err := checkDetails(*title, *description); err != nil {
		fmt.Fprintln(os.Stderr, "Use -title and -description to describe the video.")
		fail(err)
	}

	total := uint64(file.Size())
	_, err = o.Upload(ctx, file, func(pct int) {
		sent := total * uint64(pct) / 100
		fmt.Printf("\rUploading %s %3d%% (%s / %s)", file.Name(), pct, humanize.IBytes(sent), humanize.IBytes(total))
	})
	fmt.Println()
	if err != nil {
		fail(err)
	}

	if *poster != "" {
		url, err := upload.NewPosterClient(*apiURL, *token).Upload(ctx, filepath.Base(*poster), *poster)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Poster upload failed, using the video as thumbnail: %v\n", err)
		} else if err := o.SetThumbnail(url); err != nil {
			fail(err)
		}
	}

	video, err := o.Commit(ctx, *title, *description)
	for err != nil {
		switch {
		case errors.Is(err, upload.ErrValidation):
			if errors.Is(err, upload.ErrMissingTitle) {
				*title = ""
			}
			if errors.Is(err, upload.ErrMissingDescription) {
				*description = ""
			}
			*title, *description = fillDetails(stdin, os.Stdout, *title, *description)
			if checkDetails(*title, *description) != nil {
				fail(err)
			}
		case errors.Is(err, upload.ErrCommitFailed):
			t, d := upload.Describe(err)
			fmt.Fprintf(os.Stderr, "%s: %s\n", t, d)
			if !confirm(stdin, os.Stdout, "Retry saving?") {
				fail(err)
			}
		default:
			fail(err)
		}
		video, err = o.Commit(ctx, *title, *description)
	}

	fmt.Printf("Video published! ✅\n  id:  %s\n  url: %s\n", video.ID, video.VideoURL)
}

func fail(err error) {
	title, description := upload.Describe(err)
	if description != "" {
		fmt.Fprintf(os.Stderr, "%s: %s\n", title, description)
	} else {
		fmt.Fprintln(os.Stderr, title)
	}
	os.Exit(1)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
