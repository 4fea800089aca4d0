package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/seed"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机教练, 2: 插入随机球员并创建一场比赛, 3: 插入演示球队)")
	flag.IntVar(&n, "n", 12, "要插入的记录数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的教练数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("无法生成随机教练", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateUser(user); err != nil {
				slog.Error("无法插入教练", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入教练成功", slog.Int("count", cnt))
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的球员数量")
			return
		}

		playerIDs := make([]int64, 0, n)
		for i := 0; i < n; i++ {
			player := utils.GenerateRandomPlayer()
			if err := repo.CreatePlayer(player); err != nil {
				slog.Error("无法插入球员", slog.String("error", err.Error()))
				continue
			}
			playerIDs = append(playerIDs, player.ID)
		}

		slog.Info("插入球员成功", slog.Int("count", len(playerIDs)))
		if len(playerIDs) == 0 {
			return
		}

		game := utils.GenerateRandomGame(playerIDs)
		if err := repo.CreateGame(game); err != nil {
			slog.Error("无法插入比赛", slog.String("error", err.Error()))
			return
		}

		slog.Info("插入比赛成功", slog.Int64("gameID", game.ID), slog.String("name", game.Name))
	case 3:
		seed.SeedDemoRoster(repo)
	default:
		slog.Error("指定的操作非法")
	}
}
