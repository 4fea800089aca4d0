package domain

type Position string

// 按重要程度从高到低排列
const (
	PositionPitcher          Position = "P"
	PositionShortstop        Position = "SS"
	PositionFirstBase        Position = "1B"
	PositionLeftField        Position = "LF"
	PositionLeftCenterField  Position = "LCF"
	PositionThirdBase        Position = "3B"
	PositionSecondBase       Position = "2B"
	PositionRightCenterField Position = "RCF"
	PositionRightField       Position = "RF"
	PositionCatcher          Position = "C"

	PositionBench Position = "SIT"
)

// FieldPositions 为所有的守备位置（不含替补席），顺序即重要程度排名
var FieldPositions = []Position{
	PositionPitcher,
	PositionShortstop,
	PositionFirstBase,
	PositionLeftField,
	PositionLeftCenterField,
	PositionThirdBase,
	PositionSecondBase,
	PositionRightCenterField,
	PositionRightField,
	PositionCatcher,
}

var InfieldPositions = []Position{
	PositionCatcher,
	PositionFirstBase,
	PositionSecondBase,
	PositionThirdBase,
	PositionShortstop,
}

var OutfieldPositions = []Position{
	PositionLeftField,
	PositionLeftCenterField,
	PositionRightCenterField,
	PositionRightField,
}

// 球员可以声明的特殊位置标记
const (
	TokenAnyButPitcher = "*"
	TokenInfield       = "IF"
	TokenOutfield      = "OF"
)

func IsFieldPosition(p Position) bool {
	for _, fp := range FieldPositions {
		if fp == p {
			return true
		}
	}
	return false
}

func IsValidPositionToken(token string) bool {
	switch token {
	case TokenAnyButPitcher, TokenInfield, TokenOutfield:
		return true
	}
	return IsFieldPosition(Position(token))
}
