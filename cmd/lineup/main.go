package main

import (
	"flag"
	"io"
	"log/slog"
	"math/rand"
	"os"

	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/roster"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/scheduler"
)

func main() {
	/**********************************************
	 * 读取配置，命令行参数优先于环境变量
	 **********************************************/
	sc, gc, err := config.LoadSchedulerConfig()
	if err != nil {
		slog.Error("无法加载配置", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var rosterPath string
	var output string
	var seed int64
	var verbose bool
	parameters := &scheduler.Parameters{}

	flag.StringVar(&rosterPath, "roster", "", "球员名单文件 (YAML)")
	flag.StringVar(&output, "o", "", "输出的 CSV 文件，默认输出到标准输出")
	flag.Int64Var(&seed, "seed", 0, "随机数种子，为 0 时使用当前时间")
	flag.BoolVar(&verbose, "v", false, "输出每次找到更优解的日志")
	flag.Float64Var(&parameters.InitialTemperature, "temperature", sc.InitialTemperature, "初始温度")
	flag.Float64Var(&parameters.CoolingRate, "cooling", sc.CoolingRate, "降温系数")
	flag.Float64Var(&parameters.DiversityPenalty, "diversity", sc.DiversityPenalty, "重复位置惩罚，为 0 时不启用")
	iterations := flag.Int("iterations", int(sc.Iterations), "迭代次数")
	flag.Parse()

	parameters.Iterations = int32(*iterations)

	/**********************************************
	 * 创建 logger，日志输出到标准错误，避免和 CSV 混在一起
	 **********************************************/
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if rosterPath == "" {
		logger.Error("未指定球员名单文件")
		flag.Usage()
		os.Exit(2)
	}

	/**********************************************
	 * 读取球员名单
	 **********************************************/
	game, players, err := roster.Load(rosterPath, gc)
	if err != nil {
		logger.Error("无法读取球员名单", slog.String("path", rosterPath), slog.String("error", err.Error()))
		os.Exit(1)
	}

	/**********************************************
	 * 自动排阵
	 **********************************************/
	opts := []scheduler.Option{scheduler.WithLogger(logger)}
	if seed != 0 {
		opts = append(opts, scheduler.WithRand(rand.New(rand.NewSource(seed))))
	}

	s, err := scheduler.New(parameters, game, players, opts...)
	if err != nil {
		logger.Error("参数不合法", slog.String("error", err.Error()))
		os.Exit(1)
	}

	res, err := s.Schedule()
	if err != nil {
		logger.Error("自动排阵失败", slog.String("error", err.Error()))
		os.Exit(1)
	}

	table, err := s.Table(res.Solution)
	if err != nil {
		logger.Error("无法生成阵容表", slog.String("error", err.Error()))
		os.Exit(1)
	}

	/**********************************************
	 * 输出结果
	 **********************************************/
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			logger.Error("无法创建输出文件", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if err := scheduler.WriteCSV(w, table); err != nil {
		logger.Error("无法写入阵容表", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("阵容已生成",
		slog.String("game", game.Name),
		slog.Float64("cost", res.Cost),
		slog.Float64("sitting", res.Breakdown.Sitting),
		slog.Float64("eligibility", res.Breakdown.Eligibility),
		slog.Float64("skill", res.Breakdown.Skill),
		slog.Float64("diversity", res.Breakdown.Diversity),
		slog.Float64("battingOrder", res.Breakdown.BattingOrder),
	)
}
