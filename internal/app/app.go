package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/infantry-community/internal/config"
	"github.com/riskibarqy/infantry-community/internal/domain/donation"
	"github.com/riskibarqy/infantry-community/internal/domain/dueling"
	"github.com/riskibarqy/infantry-community/internal/domain/elo"
	"github.com/riskibarqy/infantry-community/internal/domain/jobscheduler"
	"github.com/riskibarqy/infantry-community/internal/domain/playerstats"
	"github.com/riskibarqy/infantry-community/internal/domain/profile"
	"github.com/riskibarqy/infantry-community/internal/domain/season"
	"github.com/riskibarqy/infantry-community/internal/domain/squad"
	"github.com/riskibarqy/infantry-community/internal/domain/squadrating"
	"github.com/riskibarqy/infantry-community/internal/domain/tournament"
	"github.com/riskibarqy/infantry-community/internal/infrastructure/account/supabase"
	"github.com/riskibarqy/infantry-community/internal/infrastructure/jobqueue"
	"github.com/riskibarqy/infantry-community/internal/infrastructure/notify/discord"
	"github.com/riskibarqy/infantry-community/internal/infrastructure/payment"
	cacherepo "github.com/riskibarqy/infantry-community/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/infantry-community/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/infantry-community/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/infantry-community/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/infantry-community/internal/platform/cache"
	idgen "github.com/riskibarqy/infantry-community/internal/platform/id"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
	"github.com/riskibarqy/infantry-community/internal/platform/resilience"
	"github.com/riskibarqy/infantry-community/internal/usecase"
)

type repositories struct {
	profiles     profile.Repository
	squads       squad.Repository
	seasons      season.Repository
	elo          elo.Repository
	stats        playerstats.Repository
	duels        dueling.Repository
	tournaments  tournament.Repository
	donations    donation.Repository
	squadRatings squadrating.Repository
	dispatches   jobscheduler.Repository
}

// Services is the usecase layer wired against the configured storage. The
// API server and the admin commands share it.
type Services struct {
	Profiles     *usecase.ProfileService
	Squads       *usecase.SquadService
	RosterLock   *usecase.RosterLockService
	Elo          *usecase.EloService
	PlayerStats  *usecase.PlayerStatsService
	Dueling      *usecase.DuelingService
	Tournaments  *usecase.TournamentService
	Donations    *usecase.DonationService
	SquadRatings *usecase.SquadRatingService
	Jobs         *usecase.JobService
}

type App struct {
	Config   config.Config
	Logger   *logging.Logger
	Services Services

	db *sqlx.DB
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		repos repositories
		db    *sqlx.DB
	)
	if cfg.UsesDatabase() {
		opened, err := openDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		db = opened
		if cfg.DBBootstrapSeed {
			if err := postgres.BootstrapSeed(ctx, db); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		repos = postgresRepositories(db)
		logger.Info("storage ready", "backend", "postgres", "db_name", dbNameFromURL(cfg.DBURL))
	} else {
		repos = memoryRepositories()
		logger.Warn("storage ready", "backend", "memory", "reason", "DATABASE_URL empty")
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		repos.elo = cacherepo.NewEloRepository(repos.elo, store)
		repos.stats = cacherepo.NewPlayerStatsRepository(repos.stats, store)
		repos.donations = cacherepo.NewDonationRepository(repos.donations, store)
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Services: newServices(cfg, repos, logger),
		db:       db,
	}, nil
}

func postgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		profiles:     postgres.NewProfileRepository(db),
		squads:       postgres.NewSquadRepository(db),
		seasons:      postgres.NewSeasonRepository(db),
		elo:          postgres.NewEloRepository(db),
		stats:        postgres.NewPlayerStatsRepository(db),
		duels:        postgres.NewDuelingRepository(db),
		tournaments:  postgres.NewTournamentRepository(db),
		donations:    postgres.NewDonationRepository(db),
		squadRatings: postgres.NewSquadRatingRepository(db),
		dispatches:   postgres.NewJobDispatchRepository(db),
	}
}

func memoryRepositories() repositories {
	return repositories{
		profiles:     memory.NewProfileRepository(memory.SeedProfiles()...),
		squads:       memory.NewSquadRepository(),
		seasons:      memory.NewSeasonRepository(memory.SeedSeasons()...),
		elo:          memory.NewEloRepository(),
		stats:        memory.NewPlayerStatsRepository(),
		duels:        memory.NewDuelingRepository(),
		tournaments:  memory.NewTournamentRepository(),
		donations:    memory.NewDonationRepository(),
		squadRatings: memory.NewSquadRatingRepository(),
		dispatches:   memory.NewJobDispatchRepository(),
	}
}

func newServices(cfg config.Config, repos repositories, logger *logging.Logger) Services {
	ids := idgen.NewUUIDGenerator()

	var queue usecase.JobQueue
	if cfg.QStashEnabled {
		queue = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker:   breakerConfig("qstash", cfg.QStashCircuit, logger),
		}, logger)
	}

	var notifier usecase.DonationNotifier
	if cfg.DiscordWebhookURL != "" {
		notifier = discord.NewNotifier(discord.Config{
			WebhookURL:     cfg.DiscordWebhookURL,
			Username:       cfg.DiscordUsername,
			Timeout:        cfg.DiscordTimeout,
			CircuitBreaker: breakerConfig("discord", cfg.DiscordCircuit, logger),
		}, logger)
	}

	rosterLock := usecase.NewRosterLockService(repos.seasons, logger)
	eloService := usecase.NewEloService(repos.elo, repos.stats, repos.duels, usecase.EloConfig{Workers: cfg.EloWorkers}, logger)
	jobs := usecase.NewJobService(eloService, queue, repos.dispatches, usecase.JobConfig{
		QueueEnabled: cfg.QStashEnabled,
		DedupBucket:  cfg.JobDedupBucket,
	}, logger)

	return Services{
		Profiles:     usecase.NewProfileService(repos.profiles, repos.squads, repos.elo, repos.stats, logger),
		Squads:       usecase.NewSquadService(repos.squads, repos.profiles, rosterLock, ids, logger),
		RosterLock:   rosterLock,
		Elo:          eloService,
		PlayerStats:  usecase.NewPlayerStatsService(repos.stats, jobs, cfg.StatsWorkers, logger),
		Dueling:      usecase.NewDuelingService(repos.duels, repos.profiles, eloService, ids, logger),
		Tournaments:  usecase.NewTournamentService(repos.tournaments, repos.profiles, ids, logger),
		Donations:    usecase.NewDonationService(repos.donations, repos.profiles, notifier, ids, usecase.DonationConfig{KofiVerificationToken: cfg.KofiVerificationToken}, logger),
		SquadRatings: usecase.NewSquadRatingService(repos.squadRatings, repos.profiles, ids, logger),
		Jobs:         jobs,
	}
}

func breakerConfig(name string, c config.Circuit, logger *logging.Logger) resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		Enabled:          c.Enabled,
		FailureThreshold: c.FailureCount,
		OpenTimeout:      c.OpenTimeout,
		HalfOpenMaxReq:   c.HalfOpenMaxReq,
		Name:             name,
		OnStateChange: func(name string, from, to resilience.CircuitState) {
			if to == resilience.CircuitStateOpen {
				logger.Warn("circuit breaker opened", "dependency", name, "from", from)
				return
			}
			logger.Info("circuit breaker state changed", "dependency", name, "from", from, "to", to)
		},
	}
}

// NewHTTPServer builds the API server on top of the wired services.
func (a *App) NewHTTPServer() (*http.Server, error) {
	cfg := a.Config

	tokens := supabase.NewClient(nil, supabase.Config{
		BaseURL:        cfg.SupabaseURL,
		ServiceRoleKey: cfg.SupabaseServiceRoleKey,
		JWTSecret:      cfg.SupabaseJWTSecret,
		CacheTTL:       cfg.SupabaseCacheTTL,
		CacheMaxItems:  cfg.SupabaseCacheMaxItems,
		Timeout:        cfg.SupabaseTimeout,
		CircuitBreaker: breakerConfig("supabase", cfg.SupabaseCircuit, a.Logger),
	}, a.Logger)

	webhooks := payment.NewVerifier(payment.Config{
		StripeWebhookSecret:   cfg.StripeWebhookSecret,
		StripeTolerance:       cfg.StripeWebhookTolerance,
		SquareSignatureKey:    cfg.SquareWebhookSignatureKey,
		SquareNotificationURL: cfg.SquareNotificationURL,
	})

	svc := a.Services
	handler := httpapi.NewHandler(
		svc.Profiles,
		svc.Squads,
		svc.RosterLock,
		svc.Elo,
		svc.PlayerStats,
		svc.Dueling,
		svc.Tournaments,
		svc.Donations,
		svc.SquadRatings,
		svc.Jobs,
		webhooks,
		a.Logger,
	)
	router := httpapi.NewRouter(handler, tokens, a.Logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
