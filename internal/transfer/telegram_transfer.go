package transfer

type TelegramUser struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

type TelegramGetMeResponse struct {
	OK          bool         `json:"ok"`
	Result      TelegramUser `json:"result"`
	Description string       `json:"description"`
}

type TelegramCountResponse struct {
	OK          bool   `json:"ok"`
	Result      int64  `json:"result"`
	Description string `json:"description"`
}

type TelegramSendResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}
