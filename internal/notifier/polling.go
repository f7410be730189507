package notifier

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CommandHandler is called when a user command is received.
type CommandHandler func(ctx context.Context, command string) string

// pollTimeout is the long-poll wait asked of getUpdates, in seconds.
const pollTimeout = 30

// pollBackoff is how long polling pauses after a failed request.
var pollBackoff = 5 * time.Second

type telegramUpdate struct {
	UpdateID int              `json:"update_id"`
	Message  *telegramMessage `json:"message"`
}

type telegramMessage struct {
	Text string `json:"text"`
	Chat struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is cancelled.
// Messages from chats other than the configured one are ignored.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	// The HTTP timeout must outlast the server-side long poll.
	client := &http.Client{Timeout: (pollTimeout + 5) * time.Second, Transport: t.Client.Transport}
	offset := 0

	for {
		updates, err := t.getUpdates(ctx, client, offset)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("[INFO] Telegram polling stopped")
				return
			}
			log.Printf("[WARN] polling request failed: %v", err)
			if sleepCtx(ctx, pollBackoff) != nil {
				log.Println("[INFO] Telegram polling stopped")
				return
			}
			continue
		}
		for _, update := range updates {
			offset = update.UpdateID + 1
			t.handleUpdate(ctx, update, handler)
		}
	}
}

func (t *TelegramNotifier) getUpdates(ctx context.Context, client *http.Client, offset int) ([]telegramUpdate, error) {
	payload := map[string]interface{}{
		"offset":          offset,
		"timeout":         pollTimeout,
		"allowed_updates": []string{"message"},
	}
	var updates []telegramUpdate
	if err := t.call(ctx, client, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (t *TelegramNotifier) handleUpdate(ctx context.Context, update telegramUpdate, handler CommandHandler) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}
	if strconv.FormatInt(msg.Chat.ID, 10) != t.ChatID {
		log.Printf("[WARN] ignoring message from chat %d", msg.Chat.ID)
		return
	}
	text := strings.TrimSpace(msg.Text)
	log.Printf("[INFO] received command: %s", text)
	reply := handler(ctx, text)
	if reply == "" {
		return
	}
	if err := t.Send(ctx, reply); err != nil {
		log.Printf("[ERROR] send reply: %v", err)
	}
}
