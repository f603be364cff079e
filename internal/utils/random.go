package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "庆",
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

// GenerateUsernameFromChineseName 取每个字拼音的前若干个字母，再加上随机数字
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

func GenerateRandomOrganizer(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         domain.RoleOrganizer,
	}, nil
}

// GenerateRandomMetadata 每一项以 missingRate% 的概率缺失
func GenerateRandomMetadata(missingRate int) domain.PlayerMetadata {
	present := func() bool {
		return rand.Intn(100) >= missingRate
	}

	var m domain.PlayerMetadata
	if present() {
		ehp := float64(rand.Intn(1500)) + rand.Float64()
		m.EHP = &ehp
	}
	if present() {
		ehb := float64(rand.Intn(800)) + rand.Float64()
		m.EHB = &ehb
	}
	if present() {
		tz := int32(rand.Intn(27) - 12) // -12 ~ 14
		m.Timezone = &tz
	}
	if present() {
		hours := float64(rand.Intn(16)) + float64(rand.Intn(4))*0.25
		m.DailyHours = &hours
	}
	return m
}

func GenerateRandomParticipant(eventID int64, missingRate int) *domain.Participant {
	return &domain.Participant{
		EventID:  eventID,
		Username: GenerateUsernameFromChineseName(GenerateRandomChineseName()),
		Metadata: GenerateRandomMetadata(missingRate),
	}
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

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

// GenerateRandomEvent 生成一个在未来一个月内开始、持续一到三天的活动
func GenerateRandomEvent(name string, organizerID int64) *domain.Event {
	start := time.Now().Add(time.Duration(rand.Intn(30)+1) * 24 * time.Hour).Truncate(time.Hour)

	return &domain.Event{
		Name:        fmt.Sprintf("%s%s", name, GenerateRandomID(2, 3)),
		Description: "自动生成的测试活动",
		OrganizerID: organizerID,
		StartTime:   start,
		EndTime:     start.Add(time.Duration(rand.Intn(3)+1) * 24 * time.Hour),
	}
}
