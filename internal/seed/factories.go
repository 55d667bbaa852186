// Package seed provides helpers to create bot accounts and demo content for
// the community. These helpers back the admin bulk operations and the
// development seeder; they are never reachable from user-facing flows.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"inschoolz/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// BotUsernamePrefix marks accounts created by bulk operations so cleanup can
// find them later.
const BotUsernamePrefix = "bot_"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

var (
	postTitles = []string{
		"오늘 급식 어땠어?",
		"중간고사 범위 아는 사람?",
		"체육대회 반티 추천해줘",
		"수행평가 너무 많지 않냐",
		"우리 학교 매점 최고 메뉴",
		"등굣길 버스 놓친 썰",
		"야자 째고 싶다",
		"내일 비 온대 체육 하려나",
		"학원 숙제 언제 다 하냐",
		"방학 계획 세운 사람?",
	}

	postBodies = []string{
		"진짜 궁금해서 올려봄. 댓글로 알려줘!",
		"나만 그런 건 아니지? 공감하면 좋아요",
		"급해요 ㅠㅠ 아는 사람 답 좀",
		"오늘따라 학교가 너무 길게 느껴진다...",
		"다들 어떻게 생각하는지 궁금함",
		"이거 우리 반만 그런 거야?",
	}

	commentBodies = []string{
		"ㅋㅋㅋㅋ 완전 공감",
		"나도 그랬음",
		"정보 감사!",
		"이거 진짜임?",
		"좋은 글이네요",
		"우리 학교도 똑같아 ㅋㅋ",
		"댓글 남기고 갑니다",
	}

	botRealNames = []string{
		"김민준", "이서연", "박지호", "최수아", "정도윤",
		"강하은", "조시우", "윤지민", "임서준", "한예은",
	}
)

func (f *Factory) pick(pool []string) string {
	return pool[f.rng.Intn(len(pool))]
}

// spreadBack returns a timestamp up to maxDays in the past so generated
// content does not pile up at one instant.
func (f *Factory) spreadBack(maxDays int) time.Time {
	if maxDays <= 0 {
		maxDays = 30
	}
	back := time.Duration(f.rng.Intn(maxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}

// BuildBotUser constructs a bot account without persisting it.
func (f *Factory) BuildBotUser(school *models.School) *models.User {
	user := &models.User{
		Username: fmt.Sprintf("%s%s%d", BotUsernamePrefix, gofakeit.Username(), gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		RealName: f.pick(botRealNames),
		Role:     models.UserRoleStudent,
		Status:   models.UserStatusActive,
	}
	user.Stats.Level = 1
	user.Stats.CurrentExp = 0
	user.Stats.TotalExperience = 0
	user.Stats.CurrentLevelRequiredXp = models.RequiredXpForLevel(1)

	if school != nil {
		user.SchoolID = &school.ID
		user.Sido = school.Sido
		user.Sigungu = school.Sigungu
	}

	hashed, _ := bcrypt.GenerateFromPassword([]byte(gofakeit.Password(true, true, true, false, false, 16)), bcrypt.MinCost)
	user.Password = string(hashed)
	return user
}

// CreateBotUsersBatch persists bot users in chunks.
func (f *Factory) CreateBotUsersBatch(users []*models.User) error {
	if len(users) == 0 {
		return nil
	}
	return f.db.CreateInBatches(&users, 200).Error
}

// BuildPost constructs a bot post on the given board.
func (f *Factory) BuildPost(author *models.User, board *models.Board) *models.Post {
	post := &models.Post{
		UserID:      author.ID,
		BoardID:     board.ID,
		Title:       f.pick(postTitles),
		Content:     f.pick(postBodies) + "\n\n" + gofakeit.Sentence(8),
		IsAnonymous: f.rng.Intn(3) == 0,
		IsBot:       true,
		CreatedAt:   f.spreadBack(30),
	}
	if board.Scope == models.BoardScopeSchool {
		post.SchoolID = author.SchoolID
	}
	if board.Scope == models.BoardScopeRegional {
		post.Sido = author.Sido
		post.Sigungu = author.Sigungu
	}
	return post
}

// CreatePostsBatch persists posts in chunks.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.CreateInBatches(&posts, 500).Error
}

// BuildComment constructs a bot comment on the given post.
func (f *Factory) BuildComment(author *models.User, post *models.Post) *models.Comment {
	return &models.Comment{
		UserID:      author.ID,
		PostID:      post.ID,
		Content:     f.pick(commentBodies),
		IsAnonymous: f.rng.Intn(2) == 0,
		IsBot:       true,
		CreatedAt:   post.CreatedAt.Add(time.Duration(f.rng.Intn(48)) * time.Hour),
	}
}

// CreateCommentsBatch persists comments in chunks and bumps the affected
// posts' comment counters.
func (f *Factory) CreateCommentsBatch(comments []*models.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	if err := f.db.CreateInBatches(&comments, 500).Error; err != nil {
		return err
	}

	perPost := make(map[uint]int)
	for _, c := range comments {
		perPost[c.PostID]++
	}
	for postID, n := range perPost {
		if err := f.db.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", n)).Error; err != nil {
			return err
		}
	}
	return nil
}
