package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/docopt/docopt-go"
	"go.uber.org/zap"

	"github.com/BarkinBalci/socials-sync-service/internal/auth"
	"github.com/BarkinBalci/socials-sync-service/internal/config"
	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/dto"
	"github.com/BarkinBalci/socials-sync-service/internal/feed"
	"github.com/BarkinBalci/socials-sync-service/internal/logger"
	"github.com/BarkinBalci/socials-sync-service/internal/mutation"
	"github.com/BarkinBalci/socials-sync-service/internal/service"
	"github.com/BarkinBalci/socials-sync-service/internal/store"
	"github.com/BarkinBalci/socials-sync-service/internal/store/backend"
)

const version = "0.1.0"

const usage = `Socials operator control.

Talks to the configured document store directly (STORE_* environment).

Usage:
    socialsctl watch [--user=<user>] [--count=<count>]
    socialsctl create --user=<user> --name=<name> --date=<millis>
        --location=<location> --image=<url> [--description=<text>]
    socialsctl toggle <id> --user=<user>
    socialsctl delete <id> --user=<user>
    socialsctl token --user=<user> [--ttl=<duration>]

Options:
    -h --help               Show this screen.
    --version               Show version.
    --user=<user>           Acting user (email).
    --count=<count>         Exit after this many snapshots.
    --name=<name>           Event name.
    --date=<millis>         Event date, epoch milliseconds.
    --location=<location>   Event location.
    --image=<url>           Event image url.
    --description=<text>    Event description.
    --ttl=<duration>        Token lifetime [default: 24h].`

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], version)
	if err != nil {
		fail(err)
	}
	if err := execute(opts); err != nil {
		fail(err)
	}
}

func execute(opts docopt.Opts) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if token_, _ := opts.Bool("token"); token_ {
		return token(cfg, opts)
	}

	log, err := logger.New(cfg.Service.Environment)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withService(ctx, cfg, log, func(svc *service.SocialService) error {
		return run(ctx, svc, opts)
	})
}

func run(ctx context.Context, svc *service.SocialService, opts docopt.Opts) error {
	user, _ := opts.String("--user")
	if user != "" {
		ctx = auth.WithIdentity(ctx, auth.Identity{Email: user})
	}

	if watch_, _ := opts.Bool("watch"); watch_ {
		return watch(ctx, svc, user, opts)
	} else if create_, _ := opts.Bool("create"); create_ {
		return create(ctx, svc, opts)
	} else if toggle_, _ := opts.Bool("toggle"); toggle_ {
		id, _ := opts.String("<id>")
		resp, err := svc.ToggleInterest(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(resp)
	} else if delete_, _ := opts.Bool("delete"); delete_ {
		id, _ := opts.String("<id>")
		if err := svc.DeleteRecord(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "deleted %s\n", id)
	}
	return nil
}

func withService(ctx context.Context, cfg *config.Config, log *zap.Logger, fn func(*service.SocialService) error) error {
	docs, err := backend.Open(ctx, cfg.Store, cfg.Feed.BufferSize, log)
	if err != nil {
		return err
	}
	defer docs.Close()

	direction, err := domain.ParseDirection(cfg.Feed.OrderDirection)
	if err != nil {
		return err
	}

	coordinator := mutation.NewCoordinator(docs, nil, mutation.Config{
		Collection:  cfg.Store.Collection,
		MaxAttempts: cfg.Mutation.MaxAttempts,
		Backoff: mutation.Backoff{
			Base: cfg.Mutation.BackoffBase(),
			Max:  cfg.Mutation.BackoffMax(),
		},
	}, log)

	return fn(newService(docs, coordinator, cfg, direction, log))
}

func newService(docs store.Backend, coordinator *mutation.Coordinator, cfg *config.Config, direction domain.Direction, log *zap.Logger) *service.SocialService {
	return service.NewSocialService(
		feed.NewFeed(docs, cfg.Store.Collection, feed.NewJSONRecordParser(), log),
		coordinator,
		docs,
		service.FeedConfig{
			Collection: cfg.Store.Collection,
			OrderKey:   cfg.Feed.OrderKey,
			Direction:  direction,
		},
		log)
}

// watch prints one JSON line per snapshot until interrupted or --count is reached
func watch(ctx context.Context, svc *service.SocialService, viewer string, opts docopt.Opts) error {
	limit := 0
	if raw, err := opts.String("--count"); err == nil && raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 {
			return fmt.Errorf("invalid --count: %s", raw)
		}
	}

	sub, err := svc.OpenFeed(ctx)
	if err != nil {
		return err
	}
	defer sub.Cancel()

	seen := 0
	for update := range sub.Updates() {
		if err := printJSON(service.BuildSnapshotResponse(update.Snapshot, viewer, update.Err)); err != nil {
			return err
		}
		seen++
		if limit > 0 && seen >= limit {
			return nil
		}
	}
	return sub.Err()
}

func create(ctx context.Context, svc *service.SocialService, opts docopt.Opts) error {
	rawDate, _ := opts.String("--date")
	date, err := strconv.ParseInt(rawDate, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid --date: %s", rawDate)
	}

	req := &dto.CreateSocialRequest{EventDate: date}
	req.EventName, _ = opts.String("--name")
	req.EventLocation, _ = opts.String("--location")
	req.EventImage, _ = opts.String("--image")
	req.EventDescription, _ = opts.String("--description")

	resp, err := svc.CreateSocial(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(resp)
}

// token mints a bearer token for the API, signed with AUTH_JWT_SECRET
func token(cfg *config.Config, opts docopt.Opts) error {
	user, _ := opts.String("--user")
	rawTTL, _ := opts.String("--ttl")
	ttl, err := time.ParseDuration(rawTTL)
	if err != nil {
		return fmt.Errorf("invalid --ttl: %w", err)
	}

	verifier, err := auth.NewVerifier(cfg.Auth.JWTSecret, 1, time.Minute)
	if err != nil {
		return err
	}
	signed, err := verifier.Issue(auth.Identity{ID: user, Email: user}, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, signed)
	return nil
}

func printJSON(v any) error {
	return json.NewEncoder(os.Stdout).Encode(v)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "socialsctl: %v\n", err)
	os.Exit(1)
}
