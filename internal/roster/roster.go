// Package roster 读取命令行工具使用的球员名单文件
package roster

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/utils"
	"gopkg.in/yaml.v3"
)

// File 对应名单文件的结构，game 中未填写的字段使用配置中的默认值
type File struct {
	Game struct {
		Name              string `yaml:"name"`
		Innings           int32  `yaml:"innings" validate:"min=0"`
		MaxPrimaryOnField *int32 `yaml:"maxPrimaryOnField" validate:"omitempty,min=0"`
		Mode              string `yaml:"mode" validate:"omitempty,oneof=regular playoff"`
	} `yaml:"game"`
	Players []struct {
		Name      string   `yaml:"name" validate:"required"`
		Category  string   `yaml:"category" validate:"required,oneof=M O"`
		Positions []string `yaml:"positions" validate:"dive,required"`
		Skill     int32    `yaml:"skill" validate:"required,min=1,max=5"`
	} `yaml:"players" validate:"required,min=1,dive"`
}

func Load(path string, defaults *config.GameConfig) (*domain.Game, []*domain.Player, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return Parse(data, defaults)
}

func Parse(data []byte, defaults *config.GameConfig) (*domain.Game, []*domain.Player, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("无法解析名单文件: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(f); err != nil {
		return nil, nil, fmt.Errorf("名单文件格式错误: %w", err)
	}

	game := &domain.Game{
		Name:              f.Game.Name,
		Innings:           f.Game.Innings,
		MaxPrimaryOnField: defaults.MaxPrimaryOnField,
		Mode:              domain.GameMode(f.Game.Mode),
		PlayedAt:          time.Now(),
	}
	if game.Innings == 0 {
		game.Innings = defaults.Innings
	}
	if f.Game.MaxPrimaryOnField != nil {
		game.MaxPrimaryOnField = *f.Game.MaxPrimaryOnField
	}
	if game.Mode == "" {
		game.Mode = domain.GameMode(defaults.Mode)
	}

	// 名单文件中的球员没有 ID，按顺序编号
	players := make([]*domain.Player, len(f.Players))
	for i, p := range f.Players {
		players[i] = &domain.Player{
			ID:        int64(i + 1),
			Name:      p.Name,
			Category:  domain.Category(p.Category),
			Positions: p.Positions,
			Skill:     p.Skill,
			IsActive:  true,
		}
		game.PlayerIDs = append(game.PlayerIDs, players[i].ID)
	}

	if err := utils.ValidateGame(game); err != nil {
		return nil, nil, err
	}
	if err := utils.ValidateRoster(players); err != nil {
		return nil, nil, err
	}

	return game, players, nil
}
