package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/steadyhabits/backend/config"
	"github.com/steadyhabits/backend/internal/domain"
	"github.com/steadyhabits/backend/internal/domain/progress"
	"github.com/steadyhabits/backend/internal/repository"
	"github.com/steadyhabits/backend/pkg/kafka"
	"github.com/steadyhabits/backend/pkg/logger"
	"github.com/steadyhabits/backend/pkg/pubsub"
	"github.com/steadyhabits/backend/pkg/router"
	"github.com/steadyhabits/backend/pkg/xcontext"
	"github.com/steadyhabits/backend/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App
	ctx context.Context

	configs *config.Configs
	logger  logger.Logger

	db          *gorm.DB
	redisClient xredis.Client
	publisher   pubsub.Publisher

	userRepo          repository.UserRepository
	habitRepo         repository.HabitRepository
	habitLogRepo      repository.HabitLogRepository
	milestoneRepo     repository.MilestoneRepository
	achievementRepo   repository.AchievementRepository
	friendshipRepo    repository.FriendshipRepository
	bestFriendRepo    repository.BestFriendRepository
	roomRepo          repository.RoomRepository
	supportActionRepo repository.SupportActionRepository

	engine *progress.Engine

	userDomain        domain.UserDomain
	habitDomain       domain.HabitDomain
	friendDomain      domain.FriendDomain
	achievementDomain domain.AchievementDomain
	roomDomain        domain.RoomDomain
	supportDomain     domain.SupportDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig() {
	s.configs = &config.Configs{
		Env: getEnv("ENV", "local"),
		Database: config.DatabaseConfigs{
			Host:     getEnv("MYSQL_HOST", "localhost"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			Database: getEnv("MYSQL_DATABASE", "steadyhabits"),
			User:     getEnv("MYSQL_USER", "steadyhabits"),
			Password: getEnv("MYSQL_PASSWORD", "secret"),
		},
		ApiServer: config.ServerConfigs{
			Host: getEnv("API_HOST", ""),
			Port: getEnv("API_PORT", "8080"),
			Cert: getEnv("API_CERT", ""),
			Key:  getEnv("API_KEY", ""),
		},
		MetricsServer: config.ServerConfigs{
			Host: getEnv("METRICS_HOST", ""),
			Port: getEnv("METRICS_PORT", "9000"),
		},
		Auth: config.AuthConfigs{
			TokenSecret: getEnv("TOKEN_SECRET", "token-secret"),
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: getEnvDuration("ACCESS_TOKEN_DURATION", time.Hour*24*7),
			},
		},
		Session: config.SessionConfigs{
			Secret: getEnv("SESSION_SECRET", "session-secret"),
			Name:   "session",
		},
		Redis: config.RedisConfigs{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: config.KafkaConfigs{
			Addr:              getEnv("KAFKA_ADDR", "localhost:9092"),
			NotificationTopic: getEnv("KAFKA_NOTIFICATION_TOPIC", "notifications"),
		},
		Progress: config.ProgressConfigs{
			StreakCacheTTL: getEnvDuration("STREAK_CACHE_TTL", time.Hour*24),
		},
		Social: config.SocialConfigs{
			MaxBestFriends:                  getEnvInt("MAX_BEST_FRIENDS", 3),
			DeclinedRerequestBySameUserOnly: getEnv("DECLINED_REREQUEST_BY_SAME_USER_ONLY", "false") == "true",
		},
	}

	s.ctx = xcontext.WithConfigs(context.Background(), *s.configs)
}

func (s *srv) loadLogger() {
	level := logger.INFO
	if s.configs.Env == "local" {
		level = logger.DEBUG
	}

	s.logger = logger.NewLogger(level)
	s.ctx = xcontext.WithLogger(s.ctx, s.logger)
}

func (s *srv) loadDatabase() {
	var err error
	s.db, err = gorm.Open(mysql.Open(s.configs.Database.ConnectionString()), &gorm.Config{TranslateError: true})
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithDB(s.ctx, s.db)
}

func (s *srv) loadRedis() {
	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}

	s.redisClient = redisClient
}

func (s *srv) loadPublisher() {
	s.publisher = kafka.NewPublisher("steadyhabits-api", []string{s.configs.Kafka.Addr})
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.habitRepo = repository.NewHabitRepository()
	s.habitLogRepo = repository.NewHabitLogRepository()
	s.milestoneRepo = repository.NewMilestoneRepository()
	s.achievementRepo = repository.NewAchievementRepository()
	s.friendshipRepo = repository.NewFriendshipRepository()
	s.bestFriendRepo = repository.NewBestFriendRepository()
	s.roomRepo = repository.NewRoomRepository()
	s.supportActionRepo = repository.NewSupportActionRepository()
}

func (s *srv) loadEngine() {
	s.engine = progress.NewEngine(
		s.milestoneRepo,
		s.achievementRepo,
		s.friendshipRepo,
		s.roomRepo,
		s.supportActionRepo,
		progress.NewStreakCalculator(s.habitLogRepo, s.redisClient),
		s.publisher,
	)
}

func (s *srv) loadDomains() {
	s.userDomain = domain.NewUserDomain(s.userRepo)
	s.habitDomain = domain.NewHabitDomain(s.habitRepo, s.habitLogRepo, s.milestoneRepo, s.engine)
	s.friendDomain = domain.NewFriendDomain(s.friendshipRepo, s.bestFriendRepo, s.userRepo, s.engine)
	s.achievementDomain = domain.NewAchievementDomain(s.achievementRepo, s.userRepo)
	s.roomDomain = domain.NewRoomDomain(s.roomRepo, s.engine)
	s.supportDomain = domain.NewSupportDomain(s.supportActionRepo, s.friendshipRepo, s.userRepo, s.engine)
}

func getEnv(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return def
}

func getEnvInt(key string, def int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}

	return value
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}

	return value
}
