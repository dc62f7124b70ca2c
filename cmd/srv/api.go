package main

import (
	"net/http"

	"github.com/steadyhabits/backend/internal/middleware"
	"github.com/steadyhabits/backend/pkg/prometheus"
	"github.com/steadyhabits/backend/pkg/router"

	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()
	s.loadRedis()
	s.loadPublisher()
	s.loadRepos()
	s.loadEngine()
	s.loadDomains()
	s.loadRouter()

	go func() {
		promHandler := prometheus.NewHandler()

		httpSrv := &http.Server{
			Addr:    s.configs.MetricsServer.Address(),
			Handler: promHandler,
		}
		s.logger.Infof("Starting prometheus on port: %s", s.configs.MetricsServer.Port)
		if err := httpSrv.ListenAndServe(); err != nil {
			panic(err)
		}
		s.logger.Infof("Server prometheus stop")
	}()

	s.server = &http.Server{
		Addr:    s.configs.ApiServer.Address(),
		Handler: s.router.Handler(),
	}

	s.logger.Infof("Starting server on port: %s", s.configs.ApiServer.Port)
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}

	s.logger.Infof("Server stopped")
	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.db, *s.configs, s.logger)
	s.router.Before(middleware.WithStartTime())
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())

	// Public API
	{
		router.POST(s.router, "/register", s.userDomain.Register)
		router.GET(s.router, "/getAchievements", s.achievementDomain.GetAchievements)
	}

	// These following APIs need authentication with an access token.
	authRouter := s.router.Branch()
	authRouter.Before(middleware.WithAuth())
	{
		// User API
		router.GET(authRouter, "/getMe", s.userDomain.GetMe)

		// Habit API
		router.POST(authRouter, "/createHabit", s.habitDomain.CreateHabit)
		router.GET(authRouter, "/getMyHabits", s.habitDomain.GetMyHabits)
		router.POST(authRouter, "/logHabit", s.habitDomain.LogHabit)
		router.POST(authRouter, "/amendHabitLog", s.habitDomain.AmendHabitLog)
		router.GET(authRouter, "/getStreak", s.habitDomain.GetStreak)
		router.GET(authRouter, "/getMyMilestones", s.habitDomain.GetMyMilestones)

		// Friendship API
		router.POST(authRouter, "/requestFriendship", s.friendDomain.RequestFriendship)
		router.POST(authRouter, "/respondFriendship", s.friendDomain.RespondFriendship)
		router.POST(authRouter, "/blockFriendship", s.friendDomain.BlockFriendship)
		router.GET(authRouter, "/getMyFriends", s.friendDomain.GetMyFriends)

		// Best friend API
		router.POST(authRouter, "/addBestFriend", s.friendDomain.AddBestFriend)
		router.POST(authRouter, "/removeBestFriend", s.friendDomain.RemoveBestFriend)
		router.GET(authRouter, "/getMyBestFriends", s.friendDomain.GetMyBestFriends)

		// Achievement API
		router.POST(authRouter, "/createAchievement", s.achievementDomain.CreateAchievement)
		router.GET(authRouter, "/getMyAchievements", s.achievementDomain.GetMyAchievements)

		// Room API
		router.POST(authRouter, "/createRoom", s.roomDomain.CreateRoom)
		router.GET(authRouter, "/getMyRooms", s.roomDomain.GetMyRooms)

		// Support API
		router.POST(authRouter, "/giveSupport", s.supportDomain.GiveSupport)
	}
}
