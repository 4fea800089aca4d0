package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateUsernameFromChineseName 取名字每个字拼音的前若干个字母，再加上若干位数字
func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, py := range pinyinArray {
		length := rand.Intn(len(py)) + 1
		username += py[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

var roles = []domain.Role{
	domain.RoleCoach,
	domain.RoleHeadCoach,
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         roles[rand.Intn(len(roles))],
	}

	return user, nil
}

var positionTokens = []string{
	domain.TokenAnyButPitcher,
	domain.TokenInfield,
	domain.TokenOutfield,
	string(domain.PositionPitcher),
	string(domain.PositionCatcher),
	string(domain.PositionFirstBase),
	string(domain.PositionSecondBase),
	string(domain.PositionThirdBase),
	string(domain.PositionShortstop),
	string(domain.PositionRightField),
}

// GenerateRandomPlayer 随机生成一个球员，名字后面附加拼音缩写以避免重名
func GenerateRandomPlayer() *domain.Player {
	name := GenerateRandomChineseName()

	category := domain.CategoryPrimary
	if rand.Intn(3) == 0 {
		category = domain.CategoryOther
	}

	tokens := GenerateRandomSubset(positionTokens, 3)

	return &domain.Player{
		Name:      fmt.Sprintf("%s(%s)", name, GenerateUsernameFromChineseName(name)),
		Category:  category,
		Positions: tokens,
		Skill:     int32(rand.Intn(domain.MaxSkill-domain.MinSkill+1) + domain.MinSkill),
		IsActive:  true,
	}
}

func GenerateRandomGame(playerIDs []int64) *domain.Game {
	mode := domain.GameModeRegular
	if rand.Intn(4) == 0 {
		mode = domain.GameModePlayoff
	}

	return &domain.Game{
		Name:              "友谊赛" + GenerateRandomID(3, 3),
		Innings:           int32(rand.Intn(3) + 4), // 4~6 局
		MaxPrimaryOnField: 7,
		Mode:              mode,
		PlayerIDs:         playerIDs,
		PlayedAt:          time.Now().Add(time.Hour * 24 * time.Duration(rand.Intn(30)+1)),
	}
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[rand.Intn(len(letters))]
	}
	return string(randomPassword)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	randomID := make([]rune, letterLength+digitLength)
	for i := range randomID {
		if i < letterLength {
			randomID[i] = letters[rand.Intn(len(letters))]
		} else {
			randomID[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(randomID)
}

// 使用 Fisher-Yates 洗牌算法来生成一个随机子集，长度在 1 到 maxLen 之间
func GenerateRandomSubset[T any](arr []T, maxLen int) []T {
	arrCopy := append([]T{}, arr...) // 复制数组，避免修改原数组

	for i := 0; i < len(arrCopy)-1; i++ {
		j := rand.Intn(len(arrCopy)-i) + i
		arrCopy[i], arrCopy[j] = arrCopy[j], arrCopy[i]
	}

	l := rand.Intn(min(maxLen, len(arrCopy))) + 1
	return arrCopy[:l]
}
