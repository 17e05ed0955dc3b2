// Command server runs the attest identity service: DID lifecycle,
// credential issuance and verification, and selective-disclosure
// presentations, all tenant-scoped behind a JSON API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"attest/internal/audit"
	auditstore "attest/internal/audit/store"
	credmetrics "attest/internal/credential/metrics"
	credservice "attest/internal/credential/service"
	credstore "attest/internal/credential/store"
	"attest/internal/did/codec"
	"attest/internal/did/keygen"
	"attest/internal/did/keyvault"
	didmetrics "attest/internal/did/metrics"
	didservice "attest/internal/did/service"
	didstore "attest/internal/did/store"
	"attest/internal/platform/config"
	"attest/internal/platform/httpserver"
	"attest/internal/platform/logger"
	"attest/internal/platform/postgres"
	platformredis "attest/internal/platform/redis"
	rlmetrics "attest/internal/ratelimit/metrics"
	rlservice "attest/internal/ratelimit/service"
	"attest/internal/ratelimit/store/bucket"
	transport "attest/internal/transport/http"
	vpservice "attest/internal/vp/service"
)

func main() {
	log := logger.New()
	if err := run(log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		dids        didstore.Store
		credentials credstore.Store
	)
	db, err := postgres.Open(cfg.PostgresURL)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		dids = didstore.NewPostgres(db)
		credentials = credstore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		dids = didstore.NewInMemoryStore()
		credentials = credstore.NewInMemoryStore()
		log.Info("using in-memory stores")
	}

	vault, ephemeral, err := keyvault.FromConfig(cfg.KeyVault)
	if err != nil {
		return err
	}
	if ephemeral {
		log.Warn("no vault key configured, using an ephemeral key: persisted DIDs will not survive a restart")
	}

	// Rate limiting: Redis-backed when configured, node-local otherwise.
	var limiterStore rlservice.BucketStore
	memoryBuckets := bucket.NewInMemoryBucketStore()
	limiterStore = memoryBuckets
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		limiterStore = bucket.NewRedisBucketStore(redisClient.Client)
		log.Info("using redis rate limit store")
	}
	limiter, err := rlservice.New(limiterStore,
		rlservice.WithPolicies(rlservice.PoliciesFromConfig(cfg.RateLimit)),
		rlservice.WithLogger(log),
		rlservice.WithMetrics(rlmetrics.New()),
	)
	if err != nil {
		return err
	}

	trail, err := audit.New(auditstore.NewInMemoryStore(), audit.WithLogger(log))
	if err != nil {
		return err
	}

	codecs := []codec.Codec{codec.NewKeyCodec()}
	if cfg.DidWebHost != "" {
		webCodec, err := codec.NewWebCodec(cfg.DidWebHost)
		if err != nil {
			return err
		}
		codecs = append(codecs, webCodec)
	}
	registry := codec.NewRegistry(codecs...)
	dMetrics := didmetrics.New()
	creation, err := didservice.NewCreationService(dids, registry, keygen.New(), vault, limiter,
		didservice.WithCreationLogger(log),
		didservice.WithCreationMetrics(dMetrics),
		didservice.WithCreationTrail(trail),
	)
	if err != nil {
		return err
	}
	resolution, err := didservice.NewResolutionService(dids, registry,
		didservice.WithResolutionLogger(log),
		didservice.WithResolutionMetrics(dMetrics),
	)
	if err != nil {
		return err
	}
	signing, err := didservice.NewSigningService(dids, vault,
		didservice.WithSigningLogger(log),
		didservice.WithSigningMetrics(dMetrics),
	)
	if err != nil {
		return err
	}

	cMetrics := credmetrics.New()
	issuance, err := credservice.NewIssuanceService(credentials, resolution, signing, limiter,
		credservice.WithIssuanceLogger(log),
		credservice.WithIssuanceMetrics(cMetrics),
		credservice.WithIssuanceTrail(trail),
	)
	if err != nil {
		return err
	}
	verification, err := credservice.NewVerificationService(credentials, dids, limiter,
		credservice.WithVerificationLogger(log),
		credservice.WithVerificationMetrics(cMetrics),
		credservice.WithVerificationTrail(trail),
	)
	if err != nil {
		return err
	}

	presentations, err := vpservice.New(vpservice.SDJWT{}, verification, signing, resolution, dids,
		vpservice.WithLogger(log),
	)
	if err != nil {
		return err
	}

	router := transport.NewRouter(log,
		transport.NewDidHandler(creation, resolution, signing, log),
		transport.NewCredentialHandler(issuance, verification, log),
		transport.NewPresentationHandler(presentations, log),
	)
	server := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		err := trail.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		err := memoryBuckets.Run(ctx, cfg.RateLimit.SweepInterval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
