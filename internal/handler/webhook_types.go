package handler

// Telegram Bot API webhook types, reduced to the fields the agent reads.

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
	Caption   string `json:"caption,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// Content returns the usable text of a message. Forwarded purchase receipts
// sometimes arrive as photo captions.
func (m *Message) Content() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

// Webhook response types: replying inside the webhook HTTP response saves a
// round trip to the bot API.

type WebhookReply struct {
	Method      string               `json:"method"`
	ChatID      int64                `json:"chat_id"`
	Text        string               `json:"text"`
	ParseMode   string               `json:"parse_mode,omitempty"`
	ReplyMarkup *ReplyKeyboardMarkup `json:"reply_markup,omitempty"`
}

type ReplyKeyboardMarkup struct {
	Keyboard       [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard bool               `json:"resize_keyboard"`
}

type KeyboardButton struct {
	Text string `json:"text"`
}

func NewWebhookReply(chatID int64, text string, keyboard [][]string) *WebhookReply {
	reply := &WebhookReply{
		Method:    "sendMessage",
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	if len(keyboard) > 0 {
		markup := &ReplyKeyboardMarkup{ResizeKeyboard: true}
		for _, row := range keyboard {
			buttons := make([]KeyboardButton, 0, len(row))
			for _, caption := range row {
				buttons = append(buttons, KeyboardButton{Text: caption})
			}
			markup.Keyboard = append(markup.Keyboard, buttons)
		}
		reply.ReplyMarkup = markup
	}

	return reply
}
