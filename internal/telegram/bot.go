package telegram

import (
	"fmt"
	"net/http"

	"lotto-analyzer/internal/config"
	"lotto-analyzer/internal/database"
	"lotto-analyzer/internal/logger"
	"lotto-analyzer/internal/predictor"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier Telegram推送
type Notifier struct {
	api     *tgbotapi.BotAPI
	chatIDs []int64
}

// NewNotifier 创建推送客户端，APIEndpoint 为空时使用官方地址
func NewNotifier(cfg *config.Telegram) (*Notifier, error) {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	client := &http.Client{Timeout: cfg.Timeout}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %v", err)
	}

	bot.Debug = false
	logger.Infof("Telegram bot authorized on account: %s", bot.Self.UserName)

	return &Notifier{
		api:     bot,
		chatIDs: cfg.ChatIDs,
	}, nil
}

// Broadcast 向所有私聊用户推送本次预测
// 单个用户发送失败只记录日志，全部失败时返回错误
func (n *Notifier) Broadcast(run *predictor.Run, latest database.Draw) error {
	message := formatPredictionBroadcast(run, latest)

	sent, failed := 0, 0
	var lastErr error
	for _, chatID := range n.chatIDs {
		// 正数ID表示用户，负数ID表示群组
		if chatID <= 0 {
			logger.Debugf("Skipping message to group chat %d", chatID)
			continue
		}
		if err := n.sendMessage(chatID, message); err != nil {
			logger.Errorf("Failed to send message to user %d: %v", chatID, err)
			lastErr = err
			failed++
			continue
		}
		sent++
	}

	if sent == 0 && failed > 0 {
		return fmt.Errorf("failed to broadcast to any of %d users: %w", failed, lastErr)
	}

	logger.Infof("Broadcasted prediction run %s to %d private users", run.ID, sent)
	return nil
}

// sendMessage 发送 Markdown 消息
func (n *Notifier) sendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	_, err := n.api.Send(msg)
	return err
}

// BotName 机器人用户名
func (n *Notifier) BotName() string {
	return n.api.Self.UserName
}
