package transfer

type InstagramUserInfo struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	MediaCount     int64  `json:"media_count"`
	FollowersCount int64  `json:"followers_count"`
}

type InstagramErrorResponse struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		FbtraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}
