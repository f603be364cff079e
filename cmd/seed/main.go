package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/balancer"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/config"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/repository"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/seed"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var eventID int64
	var csvPath string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机组织者, 2: 插入随机活动及参与者, 3: 从 CSV 导入参与者, 4: 查看活动的元数据覆盖率)")
	flag.IntVar(&n, "n", 20, "要插入的记录数量")
	flag.Int64Var(&eventID, "event-id", 0, "活动 ID")
	flag.StringVar(&csvPath, "csv", "./participants.csv", "参与者 CSV 文件路径")
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

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的组织者数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomOrganizer(cfg.InitialAdmin.Password, "example.com")
			if err != nil {
				slog.Error("无法生成随机组织者", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateUser(user); err != nil {
				slog.Error("无法插入组织者", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入组织者成功", slog.Int("count", cnt))
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的参与者数量")
			return
		}

		// 活动归属于初始管理员
		admin, err := repo.GetUserByUsername(cfg.InitialAdmin.Username)
		if err != nil {
			slog.Error("无法获取初始管理员", slog.String("error", err.Error()))
			return
		}

		event := utils.GenerateRandomEvent(cfg.Seed.EventName, admin.ID)
		if err := repo.CreateEvent(event); err != nil {
			slog.Error("无法插入活动", slog.String("error", err.Error()))
			return
		}

		participants := make([]*domain.Participant, n)
		for i := range participants {
			participants[i] = utils.GenerateRandomParticipant(event.ID, cfg.Seed.MissingMetadataRate)
		}

		if err := repo.InsertParticipants(participants); err != nil {
			// 随机生成的用户名可能重复，重新运行即可
			slog.Error("无法插入参与者", slog.String("error", err.Error()))
			return
		}

		slog.Info("插入活动成功", slog.Int64("event_id", event.ID), slog.Int("participants", n))
	case 3:
		if eventID <= 0 {
			slog.Error("请输入合法的活动 ID")
			return
		}

		seed.ImportParticipants(repo, eventID, csvPath)
	case 4:
		if eventID <= 0 {
			slog.Error("请输入合法的活动 ID")
			return
		}

		if _, err := repo.GetEventByID(eventID); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("指定的活动不存在", slog.Int64("event_id", eventID))
			default:
				slog.Error("无法获取活动", slog.String("error", err.Error()))
			}
			return
		}

		participants, err := repo.GetParticipantsByEventID(eventID)
		if err != nil {
			slog.Error("无法获取参与者", slog.String("error", err.Error()))
			return
		}

		coverage := balancer.MetadataCoverage(participants)
		preset := balancer.RecommendPreset(len(participants))
		slog.Info(
			"元数据覆盖率",
			slog.Int("participants", len(participants)),
			slog.Float64("coverage", coverage),
			slog.Bool("can_use_balanced", balancer.CanUseBalanced(coverage)),
			slog.String("recommended_preset", string(preset.Name)),
			slog.Duration("estimated_runtime", balancer.EstimateRuntime(preset.Parameters.Iterations, len(participants))),
		)
	default:
		slog.Error("指定的操作非法")
	}
}
