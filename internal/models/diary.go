package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DiaryEntry is a short-form post, optionally tagged with one emotion.
// Nickname is a display-name snapshot taken at post time; NULL means the
// entry was posted anonymously. UserID is NULL once the account is deleted.
type DiaryEntry struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"`
	Nickname     *string        `gorm:"size:280" json:"nickname"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	Emotion      *string        `gorm:"size:30;index" json:"emotion"`
	IsPublic     bool           `gorm:"default:true;index" json:"is_public"`
	LikeCount    int            `gorm:"default:0" json:"like_count"`
	CommentCount int            `gorm:"default:0" json:"comment_count"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (DiaryEntry) TableName() string {
	return "diary_entries"
}

// Emotions is the fixed tag set, negative feelings first.
var Emotions = []string{
	"fear", "sadness", "anger", "disgust",
	"indifference", "guilt", "loneliness", "shame",
	"joy", "gratitude", "achievement", "happiness",
}

// EmotionLabels maps tags to the Japanese badge labels shown by clients.
var EmotionLabels = map[string]string{
	"fear":         "恐怖",
	"sadness":      "悲しみ",
	"anger":        "怒り",
	"disgust":      "悔しい",
	"indifference": "無価値感",
	"guilt":        "罪悪感",
	"loneliness":   "寂しさ",
	"shame":        "恥ずかしさ",
	"joy":          "嬉しい",
	"gratitude":    "感謝",
	"achievement":  "達成感",
	"happiness":    "幸せ",
}

func ValidEmotion(tag string) bool {
	_, ok := EmotionLabels[tag]
	return ok
}
