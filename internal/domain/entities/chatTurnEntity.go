package entities

import "time"

const ChatHistoryTable = "chat_history"

// ChatTurn is one persisted user message and the reply it produced.
type ChatTurn struct {
	ID          uint      `json:"id" bson:"id" gorm:"primaryKey;autoIncrement"`
	UserMessage string    `json:"user_message" bson:"user_message" gorm:"type:text;not null"`
	BotReply    string    `json:"bot_reply" bson:"bot_reply" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

func (ChatTurn) TableName() string { return ChatHistoryTable }
