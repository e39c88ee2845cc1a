package services

import (
	"fmt"
	"log"

	"classbooking_go/config"

	"github.com/line/line-bot-sdk-go/linebot"
)

// LineMessagingService 將登記結果推播到行政群組
type LineMessagingService struct {
	Bot     *linebot.Client
	GroupID string
}

// NewLineMessagingService 建立 LINE 推播服務；缺少憑證時停用推播
func NewLineMessagingService() *LineMessagingService {
	secret := config.AppConfig.LineChannelSecret
	token := config.AppConfig.LineChannelToken

	if secret == "" || token == "" {
		log.Println("LINE Messaging API disabled: missing LINE_CHANNEL_SECRET or LINE_CHANNEL_ACCESS_TOKEN")
		return &LineMessagingService{Bot: nil}
	}

	bot, err := linebot.New(secret, token)
	if err != nil {
		log.Fatalf("Cannot create LINE bot client: %v", err)
	}

	return &LineMessagingService{Bot: bot, GroupID: config.AppConfig.LineGroupID}
}

// NotifyBooking 推播一筆登記通知到設定的群組
func (s *LineMessagingService) NotifyBooking(message string) error {
	if s.Bot == nil || s.GroupID == "" {
		return fmt.Errorf("LINE Bot client is not configured")
	}

	_, err := s.Bot.PushMessage(s.GroupID, linebot.NewTextMessage(message)).Do()
	if err != nil {
		return fmt.Errorf("LINE Messaging API failed: %v", err)
	}
	return nil
}
